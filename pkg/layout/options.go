package layout

import "math"

// Point is a position in simulation space.
type Point struct {
	X, Y float64
}

// Options carries every simulation tunable. Zero values are not defaults; use
// DefaultOptions and override fields.
type Options struct {
	LinkDistance   float64
	LinkIterations int

	ChargeStrength    float64
	ChargeDistanceMin float64
	ChargeDistanceMax float64

	CenterX, CenterY float64

	CollideRadius     float64
	CollideStrength   float64
	CollideIterations int

	Alpha         float64
	AlphaMin      float64
	AlphaDecay    float64
	AlphaTarget   float64
	VelocityDecay float64

	// DragAlphaTarget is the temperature held while a node is dragged.
	DragAlphaTarget float64
	// RestartAlpha is the temperature used by an explicit restart.
	RestartAlpha float64

	Seed uint64

	// Previous seeds matching node ids with positions from an earlier
	// simulation. Nil means every node starts on the spiral.
	Previous map[int64]Point
}

// DefaultOptions returns the stock tuning for a viewport of the given size.
func DefaultOptions(width, height float64) Options {
	return Options{
		LinkDistance:      150,
		LinkIterations:    1,
		ChargeStrength:    -300,
		ChargeDistanceMin: 1,
		ChargeDistanceMax: math.Inf(1),
		CenterX:           width / 2,
		CenterY:           height / 2,
		CollideRadius:     60,
		CollideStrength:   1,
		CollideIterations: 1,
		Alpha:             1,
		AlphaMin:          0.001,
		AlphaDecay:        1 - math.Pow(0.001, 1.0/300),
		AlphaTarget:       0,
		VelocityDecay:     0.4,
		DragAlphaTarget:   0.3,
		RestartAlpha:      0.3,
		Seed:              1,
	}
}
