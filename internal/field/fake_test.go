package field

import "sort"

// fakeHost drives the renderer by hand.
type fakeHost struct {
	w, h float64
	dpr  float64

	next     FrameHandle
	frames   map[FrameHandle]func(float64)
	observe  map[int]func()
	resize   map[int]func()
	listenID int
}

func newFakeHost(w, h float64) *fakeHost {
	return &fakeHost{
		w: w, h: h, dpr: 1,
		frames:  map[FrameHandle]func(float64){},
		observe: map[int]func(){},
		resize:  map[int]func(){},
	}
}

func (f *fakeHost) Bounds() (float64, float64) { return f.w, f.h }
func (f *fakeHost) DevicePixelRatio() float64 { return f.dpr }
func (f *fakeHost) CancelFrame(h FrameHandle) { delete(f.frames, h) }
func (f *fakeHost) pendingFrames() int { return len(f.frames) }
func (f *fakeHost) listeners() (obs, res int) { return len(f.observe), len(f.resize) }

func (f *fakeHost) RequestFrame(fn func(float64)) FrameHandle {
	f.next++
	f.frames[f.next] = fn
	return f.next
}

func (f *fakeHost) ObserveSize(fn func()) func() {
	f.listenID++
	id := f.listenID
	f.observe[id] = fn
	return func() { delete(f.observe, id) }
}

func (f *fakeHost) OnResize(fn func()) func() {
	f.listenID++
	id := f.listenID
	f.resize[id] = fn
	return func() { delete(f.resize, id) }
}

// tick fires every pending frame once, like one display refresh.
func (f *fakeHost) tick(now float64) {
	handles := make([]FrameHandle, 0, len(f.frames))
	for h := range f.frames {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		fn := f.frames[h]
		delete(f.frames, h)
		fn(now)
	}
}

func (f *fakeHost) setSize(w, h float64) {
	f.w, f.h = w, h
	for _, fn := range f.observe {
		fn()
	}
	for _, fn := range f.resize {
		fn()
	}
}

type drawCall struct {
	kind  string // "circle" or "polygon"
	verts int
	x, y  float64
	r     float64
	paint Paint
}

// recorder is a Surface that remembers what it was asked to draw.
type recorder struct {
	backingW, backingH int
	scale              float64
	clears             int
	draws              int
	calls              []drawCall
}

func (r *recorder) Resize(bw, bh int, _, _ float64, scale float64) {
	r.backingW, r.backingH, r.scale = bw, bh, scale
}

func (r *recorder) Clear(float64, float64) {
	r.clears++
	r.calls = r.calls[:0]
}

func (r *recorder) FillCircle(x, y, rad float64, p Paint) {
	r.draws++
	r.calls = append(r.calls, drawCall{kind: "circle", x: x, y: y, r: rad, paint: p})
}

func (r *recorder) FillPolygon(pts []Vec, p Paint) {
	r.draws++
	r.calls = append(r.calls, drawCall{kind: "polygon", verts: len(pts), x: pts[0].X, y: pts[1].Y, paint: p})
}
