// Package ebitensurface runs the particle field inside an ebiten game loop.
package ebitensurface

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/lifequest/internal/field"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Surface paints field shapes onto an ebiten image. The target is swapped
// in by Host on every Draw.
type Surface struct {
	target *ebiten.Image
	scale  float32

	cssW, cssH         float64
	backingW, backingH int

	path     vector.Path
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewSurface returns a surface with unit scale and no target.
func NewSurface() *Surface {
	return &Surface{scale: 1}
}

// SetTarget points subsequent drawing at img. A nil target drops draws.
func (s *Surface) SetTarget(img *ebiten.Image) { s.target = img }

// BackingSize reports the resolution the field asked for.
func (s *Surface) BackingSize() (int, int) { return s.backingW, s.backingH }

func (s *Surface) Resize(backingW, backingH int, cssW, cssH, scale float64) {
	s.backingW, s.backingH = backingW, backingH
	s.cssW, s.cssH = cssW, cssH
	s.scale = float32(scale)
}

func (s *Surface) Clear(w, h float64) {
	if s.target == nil {
		return
	}
	s.target.Clear()
}

func (s *Surface) FillCircle(x, y, r float64, p field.Paint) {
	if s.target == nil {
		return
	}
	cx, cy, cr := float32(x)*s.scale, float32(y)*s.scale, float32(r)*s.scale
	if p.ShadowBlur > 0 {
		halo := cr + float32(p.ShadowBlur)*s.scale/2
		vector.DrawFilledCircle(s.target, cx, cy, halo, shadow(p), true)
	}
	vector.DrawFilledCircle(s.target, cx, cy, cr, fill(p), true)
}

func (s *Surface) FillPolygon(pts []field.Vec, p field.Paint) {
	if s.target == nil || len(pts) < 3 {
		return
	}
	if p.ShadowBlur > 0 {
		cx, cy := centroid(pts)
		s.fillPath(pts, cx, cy, 1+p.ShadowBlur/(2*radius(pts, cx, cy)), shadow(p))
	}
	s.fillPath(pts, 0, 0, 1, fill(p))
}

// fillPath fills pts grown by factor k around (cx, cy).
func (s *Surface) fillPath(pts []field.Vec, cx, cy, k float64, c color.NRGBA) {
	s.path = vector.Path{}
	for i, v := range pts {
		x := float32(cx+(v.X-cx)*k) * s.scale
		y := float32(cy+(v.Y-cy)*k) * s.scale
		if i == 0 {
			s.path.MoveTo(x, y)
			continue
		}
		s.path.LineTo(x, y)
	}
	s.path.Close()

	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
	for i := range s.vertices {
		s.vertices[i].SrcX, s.vertices[i].SrcY = 1, 1
		s.vertices[i].ColorR = float32(c.R) / 0xff
		s.vertices[i].ColorG = float32(c.G) / 0xff
		s.vertices[i].ColorB = float32(c.B) / 0xff
		s.vertices[i].ColorA = float32(c.A) / 0xff
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true, FillRule: ebiten.FillRuleNonZero}
	s.target.DrawTriangles(s.vertices, s.indices, whiteSubImage, op)
}

func fill(p field.Paint) color.NRGBA {
	c := p.Fill
	c.A = uint8(clamp01(float64(c.A)/255*p.Alpha) * 255)
	return c
}

// shadow approximates canvas shadow blur with a translucent halo.
func shadow(p field.Paint) color.NRGBA {
	c := p.ShadowColor
	c.A = uint8(clamp01(float64(c.A)/255*p.Alpha*0.35) * 255)
	return c
}

func centroid(pts []field.Vec) (float64, float64) {
	var x, y float64
	for _, v := range pts {
		x += v.X
		y += v.Y
	}
	n := float64(len(pts))
	return x / n, y / n
}

func radius(pts []field.Vec, cx, cy float64) float64 {
	var m float64
	for _, v := range pts {
		d := (v.X-cx)*(v.X-cx) + (v.Y-cy)*(v.Y-cy)
		if d > m {
			m = d
		}
	}
	if m == 0 {
		return 1
	}
	return math.Sqrt(m)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
