package viewport

import (
	"fmt"
	"math"
)

// Transform maps simulation space to screen space: screen = sim*K + (X, Y).
type Transform struct {
	X, Y float64
	K    float64
}

// Identity is the transform with no pan and unit scale.
var Identity = Transform{K: 1}

// Apply maps a simulation-space point to the screen.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a screen point back to simulation space.
func (t Transform) Invert(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.K, (sy - t.Y) / t.K
}

// Scale returns a copy scaled to k about the screen point (px, py).
func (t Transform) Scale(k, px, py float64) Transform {
	x, y := t.Invert(px, py)
	return Transform{X: px - x*k, Y: py - y*k, K: k}
}

// Translate returns a copy panned by (dx, dy) screen pixels.
func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{X: t.X + dx, Y: t.Y + dy, K: t.K}
}

func (t Transform) finite() bool {
	for _, v := range [...]float64{t.X, t.Y, t.K} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String renders the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}
