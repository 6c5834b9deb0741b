package ebitensurface

import (
	"math"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/lifequest/internal/field"
)

// Host adapts ebiten's Layout/Draw cycle to the field capabilities. Layout
// measures the container and Draw is the display synchronized frame.
type Host struct {
	w, h  float64
	ratio float64
	dpr   func() float64
	start time.Time

	surface *Surface

	nextFrame field.FrameHandle
	frames    map[field.FrameHandle]func(float64)

	nextListener int
	observers    map[int]func()
	resizers     map[int]func()
}

// NewHost returns a host sized w×h until the first Layout call.
func NewHost(w, h int) *Host {
	return &Host{
		w:         float64(w),
		h:         float64(h),
		ratio:     1,
		dpr:       monitorScale,
		start:     time.Now(),
		surface:   NewSurface(),
		frames:    map[field.FrameHandle]func(float64){},
		observers: map[int]func(){},
		resizers:  map[int]func(){},
	}
}

// monitorScale is the device scale factor, or 1 before a monitor is known.
func monitorScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// Surface is the drawing target frames render into.
func (h *Host) Surface() *Surface { return h.surface }

func (h *Host) Bounds() (float64, float64) { return h.w, h.h }

func (h *Host) DevicePixelRatio() float64 { return h.dpr() }

func (h *Host) RequestFrame(fn func(float64)) field.FrameHandle {
	h.nextFrame++
	h.frames[h.nextFrame] = fn
	return h.nextFrame
}

func (h *Host) CancelFrame(id field.FrameHandle) { delete(h.frames, id) }

func (h *Host) ObserveSize(fn func()) func() {
	return h.listen(h.observers, fn)
}

func (h *Host) OnResize(fn func()) func() {
	return h.listen(h.resizers, fn)
}

func (h *Host) listen(set map[int]func(), fn func()) func() {
	h.nextListener++
	id := h.nextListener
	set[id] = fn
	return func() { delete(set, id) }
}

// Layout records the outside size and returns the backing resolution.
// A changed size or scale reaches size observers first, then resize
// listeners.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, hh := float64(outsideWidth), float64(outsideHeight)
	dpr := math.Max(1, h.DevicePixelRatio())
	if w != h.w || hh != h.h || dpr != h.ratio {
		h.w, h.h, h.ratio = w, hh, dpr
		notify(h.observers)
		notify(h.resizers)
	}
	return int(math.Max(1, math.Floor(w*dpr))), int(math.Max(1, math.Floor(hh*dpr)))
}

// Draw runs the frames requested since the previous Draw onto screen.
func (h *Host) Draw(screen *ebiten.Image) {
	h.surface.SetTarget(screen)
	defer h.surface.SetTarget(nil)

	now := float64(time.Since(h.start).Microseconds()) / 1000
	pending := h.frames
	h.frames = make(map[field.FrameHandle]func(float64), len(pending))
	ids := make([]field.FrameHandle, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		pending[id](now)
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
