package field

import (
	"math"
	"math/rand"
)

// Size multiplier range applied to every point's drawn radius.
const (
	sizeMultMin  = 0.5
	sizeMultSpan = 1.5
)

// Point is one sample of the field. Points carry no identity beyond their
// index and are thrown away on every regeneration.
type Point struct {
	X, Y        float64
	Phase       float64 // brightness phase, [0, 2π)
	Speed       float64 // oscillation multiplier, [speedMin, speedMax)
	SizeMult    float64 // radius multiplier, [0.5, 2.0)
	OffsetPhase float64 // secondary phase for sway and twinkle, [0, 2π)
}

// GridSize returns the column and row counts needed to cover a w×h box with
// one extra cell of margin on every edge.
func GridSize(w, h, gap float64) (cols, rows int) {
	cols = int(math.Ceil(w/gap)) + 2
	rows = int(math.Ceil(h/gap)) + 2
	return cols, rows
}

// Generate lays out a fresh point set over a w×h box. Odd rows are shifted
// by half a cell so the grid tiles like brickwork.
func Generate(w, h, gap, speedMin, speedMax float64, rng *rand.Rand) []Point {
	if gap <= 0 {
		return nil
	}
	cols, rows := GridSize(w, h, gap)
	pts := make([]Point, 0, cols*rows)
	for i := -1; i < cols-1; i++ {
		for j := -1; j < rows-1; j++ {
			x := float64(i) * gap
			if j%2 != 0 {
				x += gap * 0.5
			}
			pts = append(pts, Point{
				X:           x,
				Y:           float64(j) * gap,
				Phase:       rng.Float64() * 2 * math.Pi,
				Speed:       speedMin + rng.Float64()*(speedMax-speedMin),
				SizeMult:    sizeMultMin + rng.Float64()*sizeMultSpan,
				OffsetPhase: rng.Float64() * 2 * math.Pi,
			})
		}
	}
	return pts
}

// Brightness is the eased triangle wave driving each point: it ramps from
// 0.1 to 1.0 and back with period 2/speed.
func Brightness(time, speed, phase float64) float64 {
	mod := math.Mod(time*speed+phase, 2)
	if mod < 0 {
		mod += 2
	}
	lin := mod
	if mod >= 1 {
		lin = 2 - mod
	}
	return 0.1 + 0.9*(lin*lin)
}
