package field

import (
	"image/color"
	"math"
	"math/rand"
	"time"
)

// Options configures one mount of the renderer. Start from DefaultOptions.
type Options struct {
	Gap        float64
	Radius     float64
	Color      color.NRGBA
	GlowColor  color.NRGBA
	Opacity    float64
	SpeedMin   float64
	SpeedMax   float64
	SpeedScale float64
	Stage      int

	// Rand feeds per-point attributes. Nil uses a time seeded source.
	Rand *rand.Rand
}

// DefaultOptions returns the stock look: a dim white field at stage 1.
func DefaultOptions() Options {
	return Options{
		Gap:        12,
		Radius:     2,
		Color:      MustColor("rgba(255,255,255,0.1)"),
		GlowColor:  MustColor("rgba(255, 255, 255, 0.8)"),
		Opacity:    1,
		SpeedMin:   0.5,
		SpeedMax:   1.5,
		SpeedScale: 0.8,
		Stage:      1,
	}
}

// Renderer is one running field. It is not safe for concurrent use; every
// method and callback runs on the host's UI goroutine.
type Renderer struct {
	host  Host
	surf  Surface
	opts  Options
	stage Stage
	rng   *rand.Rand

	points  []Point
	diamond [4]Vec

	frame   FrameHandle
	stopped bool

	unobserve func()
	unresize  func()
}

// Mount starts rendering onto surf. A nil host or surface yields a renderer
// that never draws.
func Mount(host Host, surf Surface, opts Options) *Renderer {
	r := &Renderer{host: host, surf: surf, opts: opts, stage: StageFor(opts.Stage)}
	if host == nil || surf == nil {
		r.stopped = true
		return r
	}
	if r.opts.Gap <= 0 {
		r.opts.Gap = DefaultOptions().Gap
	}
	r.rng = opts.Rand
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r.unobserve = host.ObserveSize(func() {
		r.resize()
		r.regenerate()
	})
	r.resize()
	r.regenerate()
	r.unresize = host.OnResize(r.regenerate)
	r.frame = host.RequestFrame(r.draw)
	return r
}

// Stop halts the loop and releases every host registration. It is safe to
// call more than once.
func (r *Renderer) Stop() {
	if r == nil || r.stopped {
		return
	}
	r.stopped = true
	r.host.CancelFrame(r.frame)
	if r.unresize != nil {
		r.unresize()
		r.unresize = nil
	}
	if r.unobserve != nil {
		r.unobserve()
		r.unobserve = nil
	}
}

// Stopped reports whether the renderer has been torn down.
func (r *Renderer) Stopped() bool { return r.stopped }

// Options returns the configuration the renderer was mounted with.
func (r *Renderer) Options() Options { return r.opts }

// Points returns the current point set.
func (r *Renderer) Points() []Point { return r.points }

func (r *Renderer) resize() {
	if r.stopped {
		return
	}
	w, h := r.host.Bounds()
	dpr := math.Max(1, r.host.DevicePixelRatio())
	bw := int(math.Max(1, math.Floor(w*dpr)))
	bh := int(math.Max(1, math.Floor(h*dpr)))
	r.surf.Resize(bw, bh, w, h, dpr)
}

func (r *Renderer) regenerate() {
	if r.stopped {
		return
	}
	w, h := r.host.Bounds()
	r.points = Generate(w, h, r.opts.Gap, r.opts.SpeedMin, r.opts.SpeedMax, r.rng)
}

func (r *Renderer) draw(now float64) {
	if r.stopped {
		return
	}
	w, h := r.host.Bounds()
	r.surf.Clear(w, h)

	t := now / 1000 * r.opts.SpeedScale
	for _, p := range r.points {
		s := Sample{
			X:         p.X,
			Y:         p.Y,
			Radius:    r.opts.Radius * p.SizeMult,
			Intensity: Brightness(t, p.Speed, p.Phase),
		}
		r.stage.Modulate(p, t, &s)
		paint := Shade(s.Intensity, r.opts.Opacity, r.stage, r.opts.Color, r.opts.GlowColor)

		if r.stage.Angular(p) {
			d := s.Radius * 1.5
			r.diamond = [4]Vec{
				{s.X, s.Y - d},
				{s.X + d, s.Y},
				{s.X, s.Y + d},
				{s.X - d, s.Y},
			}
			r.surf.FillPolygon(r.diamond[:], paint)
			continue
		}
		r.surf.FillCircle(s.X, s.Y, s.Radius, paint)
	}

	r.frame = r.host.RequestFrame(r.draw)
}
