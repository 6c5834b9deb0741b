package game

import (
	"errors"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/lifequest/internal/journal"
	"github.com/iburimskiy/lifequest/internal/session"
)

// repeating reports a key press, repeating while the key is held.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d >= 30 && (d-30)%3 == 0)
}

func (g *Game) handleInput() error {
	if g.sess.Transitioning() {
		return nil
	}
	switch g.sess.View() {
	case session.Landing:
		return g.landingInput()
	case session.Auth:
		g.authInput()
	case session.App:
		g.appInput()
	}
	return nil
}

func (g *Game) landingInput() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.sess.Navigate(session.Auth)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	}
	return nil
}

func (g *Game) authInput() {
	g.signature = g.typed(g.signature)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if err := g.sess.Login(g.signature); err != nil {
			g.lastErr = err
			return
		}
		g.signature, g.lastErr = "", nil
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.signature = ""
		g.sess.Navigate(session.Landing)
	}
}

func (g *Game) appInput() {
	if !g.sess.Loading() {
		g.sess.SetInput(g.typed(g.sess.Input()))
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.sess.FillHint()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		err := g.sess.Submit(g.ctx)
		switch {
		case errors.Is(err, session.ErrEmptyInput), errors.Is(err, session.ErrBusy):
		case err != nil:
			g.lastErr = err
		default:
			g.lastErr = nil
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.sess.ToggleRitual()
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.exportFragment()
	case inpututil.IsKeyJustPressed(ebiten.KeyF6):
		g.importFragment()
	case inpututil.IsKeyJustPressed(ebiten.KeyF7):
		g.exportCSV()
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		g.reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyF10):
		g.keep(g.sess.Logout())
	}
}

// typed applies this tick's characters and backspaces to s.
func (g *Game) typed(s string) string {
	g.runes = ebiten.AppendInputChars(g.runes[:0])
	for _, r := range g.runes {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		s += string(r)
	}
	if repeating(ebiten.KeyBackspace) && s != "" {
		rs := []rune(s)
		s = string(rs[:len(rs)-1])
	}
	return s
}

func (g *Game) keep(err error) {
	if err != nil {
		g.lastErr = err
		g.log.Error("Action failed", zap.Error(err))
	}
}

func (g *Game) exportFragment() {
	code, err := g.sess.ExportFragment()
	if err != nil {
		g.keep(err)
		return
	}
	g.keep(g.dialogs.ShowFragment(code))
}

func (g *Game) importFragment() {
	code, ok, err := g.dialogs.AskFragment()
	if err != nil || !ok {
		g.keep(err)
		return
	}
	if err := g.sess.ImportFragment(strings.TrimSpace(code)); err != nil {
		g.keep(err)
		g.dialogs.Error("The soul fragment is corrupted or invalid.")
	}
}

func (g *Game) exportCSV() {
	path, ok, err := g.dialogs.SaveCSVPath()
	if err != nil || !ok {
		g.keep(err)
		return
	}
	g.keep(journal.WriteCSVFile(path, g.sess.Quests()))
}

func (g *Game) reset() {
	ok, err := g.dialogs.ConfirmReset()
	if err != nil || !ok {
		g.keep(err)
		return
	}
	g.keep(g.sess.Reset())
}
