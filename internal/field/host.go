// Package field renders an ambient field of glowing points that breathe
// in and out over time.
//
// The renderer owns nothing but its point set. Everything it needs from the
// outside world (container size, display refresh, a place to paint) comes
// in through the capability interfaces below, so the core runs the same in
// an ebiten window, in a terminal, or in a test with fakes.
package field

import "image/color"

// Container reports the measured box the field fills, in CSS pixels.
type Container interface {
	Bounds() (w, h float64)
	DevicePixelRatio() float64
}

// SizeObserver notifies fn whenever the container box changes.
type SizeObserver interface {
	ObserveSize(fn func()) (unsubscribe func())
}

// ResizeEvents delivers the window level resize event.
type ResizeEvents interface {
	OnResize(fn func()) (remove func())
}

// FrameHandle identifies a pending frame request.
type FrameHandle uint64

// FrameScheduler fires callbacks once per display refresh with a
// monotonically increasing timestamp in milliseconds.
type FrameScheduler interface {
	RequestFrame(fn func(nowMillis float64)) FrameHandle
	CancelFrame(h FrameHandle)
}

// Host bundles every capability the renderer consumes.
type Host interface {
	Container
	SizeObserver
	ResizeEvents
	FrameScheduler
}

// Vec is a point in CSS pixel space.
type Vec struct {
	X, Y float64
}

// Paint describes how a shape is filled.
type Paint struct {
	Fill        color.NRGBA
	Alpha       float64 // multiplied into Fill's own alpha
	ShadowColor color.NRGBA
	ShadowBlur  float64 // 0 disables the shadow
}

// Surface is a 2-D drawing target. Coordinates are CSS pixels; the surface
// applies the scale passed to Resize itself. FillPolygon must not retain
// pts after it returns.
type Surface interface {
	Resize(backingW, backingH int, cssW, cssH, scale float64)
	Clear(w, h float64)
	FillCircle(x, y, r float64, p Paint)
	FillPolygon(pts []Vec, p Paint)
}
