package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/lifequest/internal/config"
	"github.com/iburimskiy/lifequest/internal/field"
	"github.com/iburimskiy/lifequest/internal/quest"
)

var (
	gold      = color.RGBA{R: 212, G: 175, B: 55, A: 255}
	panel     = color.RGBA{R: 16, G: 18, B: 26, A: 200}
	panelEdge = color.RGBA{R: 60, G: 64, B: 80, A: 255}
	barTrack  = color.RGBA{R: 40, G: 42, B: 52, A: 220}
)

const helpLine = "Enter log | Tab hint | F2 ritual | F5 export | F6 import | F7 csv | F9 reset | F10 leave"

// print draws s at CSS coordinates x, y.
func (g *Game) print(screen *ebiten.Image, s string, x, y float64) {
	ebitenutil.DebugPrintAt(screen, s, int(x*g.scale), int(y*g.scale))
}

func (g *Game) printCentered(screen *ebiten.Image, s string, y float64) {
	x := (float64(g.width) - float64(textWidth(s))/g.scale) / 2
	g.print(screen, s, x, y)
}

func (g *Game) rect(screen *ebiten.Image, x, y, w, h float64, c color.Color) {
	k := float32(g.scale)
	vector.DrawFilledRect(screen, float32(x)*k, float32(y)*k, float32(w)*k, float32(h)*k, c, false)
}

func (g *Game) frame(screen *ebiten.Image, x, y, w, h float64, c color.Color) {
	k := float32(g.scale)
	vector.StrokeRect(screen, float32(x)*k, float32(y)*k, float32(w)*k, float32(h)*k, k, c, false)
}

func (g *Game) drawLanding(screen *ebiten.Image) {
	mid := float64(g.height) / 2
	g.printCentered(screen, "L I F E   Q U E S T", mid-40)
	g.printCentered(screen, "Every deed you write becomes a quest.", mid-10)
	g.printCentered(screen, "Press Enter to begin  |  Esc to leave", mid+30)
}

func (g *Game) drawAuth(screen *ebiten.Image) {
	mid := float64(g.height) / 2
	w := math.Min(360, float64(g.width)-2*config.InputMarginX)
	x := (float64(g.width) - w) / 2

	g.printCentered(screen, "Inscribe your soul signature", mid-50)
	g.rect(screen, x, mid-12, w, config.InputHeight*0.8, panel)
	g.frame(screen, x, mid-12, w, config.InputHeight*0.8, gold)
	g.print(screen, g.signature+g.caret(), x+10, mid-4)
	g.printCentered(screen, "Enter to attune  |  Esc to return", mid+40)
}

func (g *Game) caret() string {
	if int(g.sess.Now().UnixMilli()/500)%2 == 0 {
		return "_"
	}
	return ""
}

func (g *Game) drawApp(screen *ebiten.Image) {
	y := g.drawHeader(screen)
	g.drawQuests(screen, y+config.LineHeight)
	g.drawInput(screen)
	g.drawPopups(screen)
}

// drawHeader draws level, XP bar and world name and returns the y below it.
func (g *Game) drawHeader(screen *ebiten.Image) float64 {
	st := g.sess.Stats()
	x, y := float64(config.HeaderX), float64(config.HeaderY)
	w := float64(g.width) - 2*x

	g.print(screen, fmt.Sprintf("LV %d  %s  ::  %s", st.Level, st.Title, g.sess.Signature()), x, y)
	xp := fmt.Sprintf("%d / %d XP", st.XP, st.MaxXP)
	g.print(screen, xp, x+w-float64(textWidth(xp))/g.scale, y)

	y += config.LineHeight + 4
	g.rect(screen, x, y, w, config.XPBarHeight, barTrack)
	g.rect(screen, x, y, w*clamp01(st.Fraction()), config.XPBarHeight, gold)

	y += config.XPBarHeight + 6
	world := g.sess.WorldName()
	if t := g.sess.Ritual(); t.Active() {
		world += "  " + t.Clock()
	}
	g.print(screen, world, x, y)
	return y + config.LineHeight
}

// drawQuests lists the history newest first until the input box.
func (g *Game) drawQuests(screen *ebiten.Image, top float64) {
	qs := g.sess.Quests()
	x := float64(config.HeaderX)
	w := float64(g.width) - 2*x
	bottom := g.inputTop() - config.LineHeight
	cols := int(w*g.scale)/glyphW - 4

	y := top
	for i := len(qs) - 1; i >= 0 && y+config.CardHeight <= bottom; i-- {
		q := qs[i]
		g.rect(screen, x, y, w, config.CardHeight-4, panel)
		aura, err := field.ParseColor(q.AuraColor)
		if err != nil {
			aura = field.MustColor(quest.DefaultAura)
		}
		g.rect(screen, x, y, 3, config.CardHeight-4, aura)

		head := fmt.Sprintf("%s [%s] %s  +%d XP  %s", quest.IconText(q.IconHTML), q.Rank, q.Title, q.XPAwarded, stamp(q.Timestamp))
		g.print(screen, fit(head, cols), x+10, y+2)
		g.print(screen, fit(q.Summary, cols), x+10, y+2+config.LineHeight)
		y += config.CardHeight
	}
}

func (g *Game) inputTop() float64 {
	return float64(g.height) - config.InputHeight - 3*config.LineHeight
}

func (g *Game) drawInput(screen *ebiten.Image) {
	x := float64(config.InputMarginX)
	y := g.inputTop()
	w := float64(g.width) - 2*x

	g.rect(screen, x, y, w, config.InputHeight, panel)
	edge := color.Color(panelEdge)
	if g.sess.Input() != "" {
		edge = gold
	}
	g.frame(screen, x, y, w, config.InputHeight, edge)

	var line string
	switch {
	case g.sess.Loading():
		line = "The oracle weighs your deed..."
	case g.sess.Input() == "":
		line = g.sess.Hint() + "  (Tab)"
	default:
		line = "> " + g.sess.Input() + g.caret()
	}
	cols := int(w*g.scale)/glyphW - 4
	g.print(screen, fit(line, cols), x+12, y+(config.InputHeight-glyphH/g.scale)/2)
	g.print(screen, helpLine, x, y+config.InputHeight+4)
}

func (g *Game) drawPopups(screen *ebiten.Image) {
	base := g.inputTop() - 8
	for i, p := range g.sess.Popups() {
		rise := (1 - g.sess.PopupFade(p)) * 40
		s := fmt.Sprintf("+%d XP", p.Amount)
		x := float64(g.width) - config.InputMarginX - float64(textWidth(s))/g.scale - float64(i)*60
		g.print(screen, s, x, base-config.LineHeight-rise)
	}
}

// drawEffects paints the level up flash and the evolution rings.
func (g *Game) drawEffects(screen *ebiten.Image) {
	w, h := float64(g.width), float64(g.height)
	if g.sess.Transitioning() {
		g.rect(screen, 0, 0, w, h, color.RGBA{A: 140})
	}
	if f := g.sess.LevelUpFade(); f > 0 {
		r, gg, b := hsvToRgb(45+(1-f)*60, 0.7, 1)
		g.rect(screen, 0, 0, w, h, color.NRGBA{R: r, G: gg, B: b, A: uint8(f * 40)})
		g.printCentered(screen, fmt.Sprintf("LEVEL UP  ::  %s", g.sess.Stats().Title), h/3)
	}
	if f := g.sess.EvolutionFade(); f > 0 {
		k := float32(g.scale)
		cx, cy := float32(w/2)*k, float32(h/2)*k
		spread := (1 - f) * math.Hypot(w, h) / 2
		for i := 0; i < 3; i++ {
			r := spread - float64(i)*30
			if r <= 0 {
				continue
			}
			cr, cg, cb := hsvToRgb(float64(i)*40+(1-f)*180, 0.6, 1)
			c := color.NRGBA{R: cr, G: cg, B: cb, A: uint8(clamp01(f) * 160)}
			vector.StrokeCircle(screen, cx, cy, float32(r)*k, 2*k, c, true)
		}
		g.printCentered(screen, "EVOLUTION  ::  "+g.sess.WorldName(), h/3+config.LineHeight*2)
	}
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	err := g.lastErr
	if err == nil {
		err = g.sess.LastErr()
	}
	if err == nil {
		return
	}
	g.print(screen, "Error: "+err.Error(), config.HeaderX, float64(g.height)-config.LineHeight-2)
}
