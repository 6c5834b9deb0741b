// Package game is the windowed front end: an ebiten Game that hosts the
// particle field behind the journal HUD.
package game

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/lifequest/internal/config"
	"github.com/iburimskiy/lifequest/internal/field"
	"github.com/iburimskiy/lifequest/internal/field/ebitensurface"
	"github.com/iburimskiy/lifequest/internal/ritual"
	"github.com/iburimskiy/lifequest/internal/session"
)

// fieldKey identifies the look of the running field. A change remounts it.
type fieldKey struct {
	stage int
	mode  ritual.Mode
}

type Game struct {
	ctx     context.Context
	cfg     *config.Config
	sess    *session.Session
	dialogs Dialogs
	log     *zap.Logger

	host     *ebitensurface.Host
	renderer *field.Renderer
	key      fieldKey

	width, height int
	scale         float64

	// text typed on the auth view
	signature string
	runes     []rune

	lastErr error
}

// New wires a game over sess. ctx bounds classification requests.
func New(ctx context.Context, cfg *config.Config, sess *session.Session, dialogs Dialogs, log *zap.Logger) *Game {
	if dialogs == nil {
		dialogs = NativeDialogs{}
	}
	g := &Game{
		ctx:     ctx,
		cfg:     cfg,
		sess:    sess,
		dialogs: dialogs,
		log:     log,
		host:    ebitensurface.NewHost(cfg.Window.Width, cfg.Window.Height),
		width:   cfg.Window.Width,
		height:  cfg.Window.Height,
		scale:   1,
		key:     fieldKey{stage: -1},
	}
	g.remount()
	return g
}

func (g *Game) Update() error {
	g.sess.Update()
	if g.sess.Poll() {
		if err := g.sess.LastErr(); err != nil {
			g.lastErr = err
		}
	}
	if err := g.handleInput(); err != nil {
		return err
	}
	g.remount()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.host.Draw(screen)

	switch g.sess.View() {
	case session.Landing:
		g.drawLanding(screen)
	case session.Auth:
		g.drawAuth(screen)
	case session.App:
		g.drawApp(screen)
	}
	g.drawEffects(screen)
	g.drawStatus(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	bw, bh := g.host.Layout(outsideWidth, outsideHeight)
	if outsideWidth > 0 {
		g.scale = float64(bw) / float64(outsideWidth)
	}
	return bw, bh
}

// Close stops the field and waits for outstanding requests.
func (g *Game) Close() {
	if g.renderer != nil {
		g.renderer.Stop()
	}
	g.sess.Close()
}

// remount restarts the field when the stage or ritual mode changed.
func (g *Game) remount() {
	k := fieldKey{stage: g.sess.Stage(), mode: g.sess.Ritual().Mode()}
	if k == g.key {
		return
	}
	if g.renderer != nil {
		g.renderer.Stop()
	}
	g.key = k
	g.renderer = field.Mount(g.host, g.host.Surface(), g.fieldOptions())
	g.log.Debug("Field mounted", zap.Int("stage", k.stage), zap.Stringer("mode", k.mode))
}

func (g *Game) fieldOptions() field.Options {
	opts := field.DefaultOptions()
	fc := g.cfg.Field
	opts.Gap = fc.Gap
	opts.Radius = fc.Radius
	opts.Opacity = fc.Opacity
	opts.SpeedMin, opts.SpeedMax, opts.SpeedScale = fc.SpeedMin, fc.SpeedMax, fc.SpeedScale
	opts.Stage = g.sess.Stage()

	pal := g.sess.Palette()
	opts.Color = pickColor(opts.Color, pal.Color, fc.Color)
	opts.GlowColor = pickColor(opts.GlowColor, pal.Glow, fc.GlowColor)
	return opts
}

// pickColor returns the first candidate that parses, or def.
func pickColor(def color.NRGBA, candidates ...string) color.NRGBA {
	for _, s := range candidates {
		if c, err := field.ParseColor(s); err == nil {
			return c
		}
	}
	return def
}
