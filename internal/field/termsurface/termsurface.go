// Package termsurface previews the particle field in a terminal.
//
// Each terminal cell stands for a CellWidth×CellHeight block of CSS pixels.
// A point lands in the cell under its center and is drawn as a glyph whose
// weight follows its alpha.
package termsurface

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/lifequest/internal/field"
)

// Default cell geometry in CSS pixels; terminal cells are about twice as
// tall as they are wide.
const (
	CellWidth  = 6.0
	CellHeight = 12.0
)

var glyphs = []rune{'.', '·', '•', '●'}

// Surface draws field shapes as terminal glyphs.
type Surface struct {
	screen       tcell.Screen
	cellW, cellH float64
}

func (s *Surface) Resize(int, int, float64, float64, float64) {}

func (s *Surface) Clear(float64, float64) { s.screen.Clear() }

func (s *Surface) FillCircle(x, y, r float64, p field.Paint) {
	a := alpha(p)
	idx := int(a * float64(len(glyphs)))
	if idx >= len(glyphs) {
		idx = len(glyphs) - 1
	}
	s.put(x, y, glyphs[idx], p, a)
}

func (s *Surface) FillPolygon(pts []field.Vec, p field.Paint) {
	if len(pts) == 0 {
		return
	}
	var cx, cy float64
	for _, v := range pts {
		cx += v.X
		cy += v.Y
	}
	n := float64(len(pts))
	s.put(cx/n, cy/n, '◆', p, alpha(p))
}

func (s *Surface) put(x, y float64, ch rune, p field.Paint, a float64) {
	col := int(math.Floor(x / s.cellW))
	row := int(math.Floor(y / s.cellH))
	w, h := s.screen.Size()
	if col < 0 || row < 0 || col >= w || row >= h {
		return
	}
	c := p.Fill
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(
		int32(float64(c.R)*a), int32(float64(c.G)*a), int32(float64(c.B)*a),
	))
	if p.ShadowBlur > 0 {
		style = style.Bold(true)
	}
	s.screen.SetContent(col, row, ch, nil, style)
}

// alpha is the effective coverage of a paint in [0, 1].
func alpha(p field.Paint) float64 {
	a := float64(p.Fill.A) / 255 * p.Alpha
	if p.ShadowBlur > 0 {
		a = math.Max(a, float64(p.ShadowColor.A)/255*p.Alpha)
	}
	return math.Max(0, math.Min(1, a))
}

// Host drives frames from a ticker and turns tcell resize events into size
// and resize notifications.
type Host struct {
	screen  tcell.Screen
	surface *Surface
	start   time.Time

	cols, rows int

	nextFrame field.FrameHandle
	frames    map[field.FrameHandle]func(float64)

	nextListener int
	observers    map[int]func()
	resizers     map[int]func()
}

// NewHost wraps an initialized screen.
func NewHost(screen tcell.Screen) *Host {
	cols, rows := screen.Size()
	return &Host{
		screen:    screen,
		surface:   &Surface{screen: screen, cellW: CellWidth, cellH: CellHeight},
		start:     time.Now(),
		cols:      cols,
		rows:      rows,
		frames:    map[field.FrameHandle]func(float64){},
		observers: map[int]func(){},
		resizers:  map[int]func(){},
	}
}

// Surface is the drawing target for this host.
func (h *Host) Surface() *Surface { return h.surface }

func (h *Host) Bounds() (float64, float64) {
	return float64(h.cols) * CellWidth, float64(h.rows) * CellHeight
}

func (h *Host) DevicePixelRatio() float64 { return 1 }

func (h *Host) RequestFrame(fn func(float64)) field.FrameHandle {
	h.nextFrame++
	h.frames[h.nextFrame] = fn
	return h.nextFrame
}

func (h *Host) CancelFrame(id field.FrameHandle) { delete(h.frames, id) }

func (h *Host) ObserveSize(fn func()) func() { return h.listen(h.observers, fn) }

func (h *Host) OnResize(fn func()) func() { return h.listen(h.resizers, fn) }

func (h *Host) listen(set map[int]func(), fn func()) func() {
	h.nextListener++
	id := h.nextListener
	set[id] = fn
	return func() { delete(set, id) }
}

// HandleEvent applies one tcell event and reports whether the user asked
// to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		if cols != h.cols || rows != h.rows {
			h.cols, h.rows = cols, rows
			h.screen.Sync()
			notify(h.observers)
			notify(h.resizers)
		}
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			return ev.Rune() == 'q'
		}
	}
	return false
}

// Frame runs pending frame callbacks at now and flushes the screen.
func (h *Host) Frame(now time.Time) {
	ms := float64(now.Sub(h.start).Microseconds()) / 1000
	pending := h.frames
	h.frames = make(map[field.FrameHandle]func(float64), len(pending))
	ids := make([]field.FrameHandle, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		pending[id](ms)
	}
	h.screen.Show()
}

// Run pumps events and frames until ctx ends or the user quits. The caller
// owns the screen and must Fini it afterwards.
func (h *Host) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 30
	}
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if h.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			h.Frame(now)
		}
	}
}

func notify(set map[int]func()) {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := set[id]; ok {
			fn()
		}
	}
}
