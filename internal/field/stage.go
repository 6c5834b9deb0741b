package field

import (
	"image/color"
	"math"
)

// Glow threshold: only points brighter than this pick up the glow color.
const glowThreshold = 0.7

// Sample is the per-frame draw state of one point. Stages mutate it.
type Sample struct {
	X, Y      float64
	Radius    float64
	Intensity float64
}

// Stage is one visual variant of the field. Adding a stage means adding one
// implementation and registering it in StageFor.
type Stage interface {
	// Level is the integer selector this stage answers to.
	Level() int
	// Modulate applies the stage effect to s for point p at scaled time t.
	Modulate(p Point, t float64, s *Sample)
	// Angular reports whether p is drawn as a diamond instead of a circle.
	Angular(p Point) bool
	// GlowBase is the shadow blur at full intensity before the ramp.
	GlowBase() float64
}

type void struct{}

func (void) Level() int { return 1 }
func (void) Modulate(Point, float64, *Sample) {}
func (void) Angular(Point) bool { return false }
func (void) GlowBase() float64 { return 8 }

// garden sways every point along a slow ellipse.
type garden struct{ void }

func (garden) Level() int { return 2 }

func (garden) Modulate(p Point, t float64, s *Sample) {
	s.X += math.Sin(t+p.OffsetPhase) * 8
	s.Y += math.Cos(t*0.5+p.OffsetPhase) * 4
}

// crystal sharpens the flicker and turns half the points into diamonds.
type crystal struct{ void }

func (crystal) Level() int { return 3 }

func (crystal) Modulate(_ Point, _ float64, s *Sample) {
	s.Intensity = s.Intensity * s.Intensity * s.Intensity
}

func (crystal) Angular(p Point) bool { return p.Phase > math.Pi }

// stars adds a fast twinkle and enlarges the occasional big point.
type stars struct{ void }

func (stars) Level() int { return 4 }

func (stars) Modulate(p Point, t float64, s *Sample) {
	twinkle := math.Sin(t*5+p.Phase*10)*0.5 + 0.5
	s.Intensity *= 0.7 + twinkle*0.3
	if p.SizeMult > 1.8 {
		s.Radius *= 1.2
	}
}

func (stars) GlowBase() float64 { return 12 }

var stages = [...]Stage{void{}, garden{}, crystal{}, stars{}}

// StageFor maps the integer selector onto a stage. Unknown values fall back
// to stage 1.
func StageFor(n int) Stage {
	if n < 1 || n > len(stages) {
		return stages[0]
	}
	return stages[n-1]
}

// Shade picks fill and glow for a point of the given intensity.
func Shade(intensity, opacity float64, st Stage, base, glow color.NRGBA) Paint {
	if intensity > glowThreshold {
		return Paint{
			Fill:        glow,
			Alpha:       opacity,
			ShadowColor: glow,
			ShadowBlur:  st.GlowBase() * (intensity - glowThreshold) * 3,
		}
	}
	return Paint{Fill: base, Alpha: opacity * (0.3 + intensity*0.5)}
}
