package layout

import (
	"math"

	"github.com/vanderheijden86/mindmap/pkg/graph"
)

// Force nudges body velocities (or positions) once per tick.
type Force interface {
	// Initialize binds the force to the current bodies. It is called when the
	// force is added and whenever the body set changes.
	Initialize(bodies []*Body, jiggle func() float64)
	// Apply runs one step at the given temperature.
	Apply(alpha float64)
}

// LinkForce pulls connected bodies toward a target separation.
type LinkForce struct {
	Distance   float64
	Iterations int

	edges     []graph.Edge
	bodies    []*Body
	jiggle    func() float64
	links     [][2]int
	strengths []float64
	bias      []float64
}

// NewLinkForce creates a link force over edges.
func NewLinkForce(edges []graph.Edge, distance float64, iterations int) *LinkForce {
	return &LinkForce{Distance: distance, Iterations: iterations, edges: edges}
}

func (f *LinkForce) Initialize(bodies []*Body, jiggle func() float64) {
	f.bodies = bodies
	f.jiggle = jiggle

	index := make(map[int64]int, len(bodies))
	for i, b := range bodies {
		index[b.ID] = i
	}
	count := make([]int, len(bodies))
	f.links = f.links[:0]
	for _, e := range f.edges {
		s, okS := index[e.Source]
		t, okT := index[e.Target]
		// self links carry no geometry
		if !okS || !okT || s == t {
			continue
		}
		f.links = append(f.links, [2]int{s, t})
		count[s]++
		count[t]++
	}

	f.strengths = make([]float64, len(f.links))
	f.bias = make([]float64, len(f.links))
	for i, l := range f.links {
		cs, ct := float64(count[l[0]]), float64(count[l[1]])
		f.strengths[i] = 1 / math.Min(cs, ct)
		f.bias[i] = cs / (cs + ct)
	}
}

func (f *LinkForce) Apply(alpha float64) {
	iters := max(f.Iterations, 1)
	for k := 0; k < iters; k++ {
		for i, l := range f.links {
			src, dst := f.bodies[l[0]], f.bodies[l[1]]
			x := dst.X + dst.VX - src.X - src.VX
			if x == 0 {
				x = f.jiggle()
			}
			y := dst.Y + dst.VY - src.Y - src.VY
			if y == 0 {
				y = f.jiggle()
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - f.Distance) / d * alpha * f.strengths[i]
			x *= d
			y *= d

			b := f.bias[i]
			dst.VX -= x * b
			dst.VY -= y * b
			b = 1 - b
			src.VX += x * b
			src.VY += y * b
		}
	}
}

// ManyBodyForce pushes every pair of bodies apart (negative strength) or
// together (positive strength). Pairs are summed directly.
type ManyBodyForce struct {
	Strength    float64
	DistanceMin float64
	DistanceMax float64

	bodies []*Body
	jiggle func() float64
}

// NewManyBodyForce creates a charge force.
func NewManyBodyForce(strength, distanceMin, distanceMax float64) *ManyBodyForce {
	return &ManyBodyForce{Strength: strength, DistanceMin: distanceMin, DistanceMax: distanceMax}
}

func (f *ManyBodyForce) Initialize(bodies []*Body, jiggle func() float64) {
	f.bodies = bodies
	f.jiggle = jiggle
}

func (f *ManyBodyForce) Apply(alpha float64) {
	min2 := f.DistanceMin * f.DistanceMin
	max2 := f.DistanceMax * f.DistanceMax
	for i, n := range f.bodies {
		for j, o := range f.bodies {
			if i == j {
				continue
			}
			x := o.X - n.X
			y := o.Y - n.Y
			l := x*x + y*y
			if l >= max2 {
				continue
			}
			if x == 0 {
				x = f.jiggle()
				l += x * x
			}
			if y == 0 {
				y = f.jiggle()
				l += y * y
			}
			if l < min2 {
				l = math.Sqrt(min2 * l)
			}
			w := f.Strength * alpha / l
			n.VX += x * w
			n.VY += y * w
		}
	}
}

// CenterForce translates all bodies so their mean sits at (X, Y). It does
// not touch velocities.
type CenterForce struct {
	X, Y     float64
	Strength float64

	bodies []*Body
}

// NewCenterForce creates a centering force.
func NewCenterForce(x, y float64) *CenterForce {
	return &CenterForce{X: x, Y: y, Strength: 1}
}

func (f *CenterForce) Initialize(bodies []*Body, _ func() float64) {
	f.bodies = bodies
}

func (f *CenterForce) Apply(float64) {
	if len(f.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range f.bodies {
		sx += b.X
		sy += b.Y
	}
	n := float64(len(f.bodies))
	sx = (sx/n - f.X) * f.Strength
	sy = (sy/n - f.Y) * f.Strength
	for _, b := range f.bodies {
		b.X -= sx
		b.Y -= sy
	}
}

// CollideForce separates bodies whose circles overlap, using positions
// predicted from the current velocity.
type CollideForce struct {
	Radius     float64
	Strength   float64
	Iterations int

	bodies []*Body
	jiggle func() float64
}

// NewCollideForce creates a collision force with a uniform radius.
func NewCollideForce(radius, strength float64, iterations int) *CollideForce {
	return &CollideForce{Radius: radius, Strength: strength, Iterations: iterations}
}

func (f *CollideForce) Initialize(bodies []*Body, jiggle func() float64) {
	f.bodies = bodies
	f.jiggle = jiggle
}

func (f *CollideForce) Apply(float64) {
	ri := f.Radius
	r := ri + ri
	ri2 := ri * ri
	// uniform radii split the correction evenly
	share := ri2 / (ri2 + ri2)

	iters := max(f.Iterations, 1)
	for k := 0; k < iters; k++ {
		for i, n := range f.bodies {
			xi := n.X + n.VX
			yi := n.Y + n.VY
			for _, o := range f.bodies[i+1:] {
				x := xi - o.X - o.VX
				y := yi - o.Y - o.VY
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = f.jiggle()
					l += x * x
				}
				if y == 0 {
					y = f.jiggle()
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * f.Strength
				x *= l
				y *= l
				n.VX += x * share
				n.VY += y * share
				o.VX -= x * (1 - share)
				o.VY -= y * (1 - share)
			}
		}
	}
}
