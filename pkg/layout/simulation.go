// Package layout runs a force-directed simulation that positions the nodes
// of a graph.
//
// The simulation follows the usual velocity Verlet scheme: every tick the
// temperature (alpha) moves toward its target, each force adjusts body
// velocities at that temperature, and velocities are damped and added to
// positions. Pinned bodies stay exactly where they are pinned.
//
// Positions are unresolved until the first tick, which places every body on
// a phyllotaxis spiral around the centre (or at its carried-over position).
package layout

import (
	"math"
	"math/rand/v2"

	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/metrics"
)

const (
	initialRadius = 10
	jiggleScale   = 1e-6
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Force names registered by New.
const (
	ForceLink    = "link"
	ForceCharge  = "charge"
	ForceCenter  = "center"
	ForceCollide = "collide"
)

// Body is the mutable simulation state of one node.
type Body struct {
	ID     int64
	X, Y   float64
	VX, VY float64

	Pinned bool
	FX, FY float64
}

// Simulation owns body positions and pin state for one graph.
type Simulation struct {
	opts   Options
	bodies []*Body
	index  map[int64]int

	names  []string
	forces map[string]Force

	alpha       float64
	alphaTarget float64
	placed      bool
	stopped     bool
	ticks       int

	rng *rand.Rand
}

// New creates a simulation over g with the link, charge, center and collide
// forces configured from opts. The simulation starts hot and running.
func New(g *graph.Graph, opts Options) *Simulation {
	s := &Simulation{
		opts:        opts,
		index:       make(map[int64]int, g.NodeCount()),
		forces:      make(map[string]Force, 4),
		alpha:       opts.Alpha,
		alphaTarget: opts.AlphaTarget,
		rng:         rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	for i, n := range g.Nodes() {
		s.index[n.ID] = i
		s.bodies = append(s.bodies, &Body{ID: n.ID})
	}
	s.stopped = len(s.bodies) == 0

	s.SetForce(ForceLink, NewLinkForce(g.Edges(), opts.LinkDistance, opts.LinkIterations))
	s.SetForce(ForceCharge, NewManyBodyForce(opts.ChargeStrength, opts.ChargeDistanceMin, opts.ChargeDistanceMax))
	s.SetForce(ForceCenter, NewCenterForce(opts.CenterX, opts.CenterY))
	s.SetForce(ForceCollide, NewCollideForce(opts.CollideRadius, opts.CollideStrength, opts.CollideIterations))
	return s
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * jiggleScale
}

// SetForce adds or replaces a named force. A nil force removes it.
func (s *Simulation) SetForce(name string, f Force) {
	if f == nil {
		if _, ok := s.forces[name]; ok {
			delete(s.forces, name)
			for i, n := range s.names {
				if n == name {
					s.names = append(s.names[:i], s.names[i+1:]...)
					break
				}
			}
		}
		return
	}
	if _, ok := s.forces[name]; !ok {
		s.names = append(s.names, name)
	}
	f.Initialize(s.bodies, s.jiggle)
	s.forces[name] = f
}

// Force returns the named force, or nil.
func (s *Simulation) Force(name string) Force {
	return s.forces[name]
}

// SetCenter moves the centering target, e.g. after a resize.
func (s *Simulation) SetCenter(x, y float64) {
	s.opts.CenterX, s.opts.CenterY = x, y
	if c, ok := s.forces[ForceCenter].(*CenterForce); ok {
		c.X, c.Y = x, y
	}
}

// Options returns the options the simulation was built with.
func (s *Simulation) Options() Options { return s.opts }

// Len returns the number of bodies.
func (s *Simulation) Len() int { return len(s.bodies) }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the temperature the simulation is moving toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Ticks returns how many ticks have run.
func (s *Simulation) Ticks() int { return s.ticks }

// Running reports whether Step will do work.
func (s *Simulation) Running() bool { return !s.stopped }

// Placed reports whether positions have been resolved.
func (s *Simulation) Placed() bool { return s.placed }

// SetAlphaTarget sets the temperature the simulation decays toward.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// Reheat holds the simulation at the drag temperature and resumes stepping.
func (s *Simulation) Reheat() {
	s.alphaTarget = s.opts.DragAlphaTarget
	s.stopped = len(s.bodies) == 0
}

// Cool lets the temperature decay back toward zero.
func (s *Simulation) Cool() {
	s.alphaTarget = 0
}

// Restart sets alpha and resumes stepping. A non-positive alpha uses the
// configured restart temperature.
func (s *Simulation) Restart(alpha float64) {
	if alpha <= 0 {
		alpha = s.opts.RestartAlpha
	}
	s.alpha = alpha
	s.stopped = len(s.bodies) == 0
}

// Stop halts stepping. Positions are left as they are.
func (s *Simulation) Stop() { s.stopped = true }

// Step is the frame callback: it ticks once unless the simulation is stopped
// and stops it when the temperature falls below the minimum. It reports
// whether a tick ran.
func (s *Simulation) Step() bool {
	if s.stopped {
		return false
	}
	s.Tick()
	if s.alpha < s.opts.AlphaMin {
		s.stopped = true
		debug.Log("layout: cooled after %d ticks", s.ticks)
	}
	return true
}

// Run steps until the simulation stops or maxTicks is reached, and returns
// the number of ticks run.
func (s *Simulation) Run(maxTicks int) int {
	n := 0
	for n < maxTicks && s.Step() {
		n++
	}
	return n
}

// Tick advances the simulation by one step regardless of temperature.
func (s *Simulation) Tick() {
	defer metrics.Timer(metrics.LayoutTick)()

	s.place()
	s.alpha += (s.alphaTarget - s.alpha) * s.opts.AlphaDecay
	for _, name := range s.names {
		s.forces[name].Apply(s.alpha)
	}

	keep := 1 - s.opts.VelocityDecay
	for _, b := range s.bodies {
		if b.Pinned {
			b.X, b.Y = b.FX, b.FY
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= keep
		b.VY *= keep
		b.X += b.VX
		b.Y += b.VY
	}
	s.ticks++
}

// place resolves initial positions on the first tick.
func (s *Simulation) place() {
	if s.placed {
		return
	}
	s.placed = true
	for i, b := range s.bodies {
		switch {
		case b.Pinned:
			b.X, b.Y = b.FX, b.FY
		case s.opts.Previous != nil:
			if p, ok := s.opts.Previous[b.ID]; ok {
				b.X, b.Y = p.X, p.Y
				continue
			}
			fallthrough
		default:
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			b.X = s.opts.CenterX + r*math.Cos(a)
			b.Y = s.opts.CenterY + r*math.Sin(a)
		}
	}
}

// Position returns where id is. ok is false for unknown ids and before the
// first tick.
func (s *Simulation) Position(id int64) (Point, bool) {
	i, ok := s.index[id]
	if !ok || !s.placed {
		return Point{}, false
	}
	b := s.bodies[i]
	return Point{X: b.X, Y: b.Y}, true
}

// Positions returns a copy of every resolved position, keyed by id.
func (s *Simulation) Positions() map[int64]Point {
	if !s.placed {
		return nil
	}
	out := make(map[int64]Point, len(s.bodies))
	for _, b := range s.bodies {
		out[b.ID] = Point{X: b.X, Y: b.Y}
	}
	return out
}

// Body returns a copy of the state of id.
func (s *Simulation) Body(id int64) (Body, bool) {
	i, ok := s.index[id]
	if !ok {
		return Body{}, false
	}
	return *s.bodies[i], true
}

// Pin fixes id at (x, y) until Unpin.
func (s *Simulation) Pin(id int64, x, y float64) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	b := s.bodies[i]
	b.Pinned = true
	b.FX, b.FY = x, y
}

// Unpin releases id back to the simulation.
func (s *Simulation) Unpin(id int64) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	b := s.bodies[i]
	b.Pinned = false
	b.FX, b.FY = 0, 0
}

// Pinned reports whether id is pinned.
func (s *Simulation) Pinned(id int64) bool {
	i, ok := s.index[id]
	return ok && s.bodies[i].Pinned
}

// Settle pushes overlapping bodies apart until no two centres are closer
// than twice the collision radius, or passes run out. Pinned bodies do not
// move. It reports whether every overlap was resolved.
func (s *Simulation) Settle(passes int) bool {
	defer metrics.Timer(metrics.LayoutSettle)()

	s.place()
	minDist := 2 * s.opts.CollideRadius
	if minDist <= 0 {
		return true
	}
	const slack = 0.01
	for p := 0; p < passes; p++ {
		moved := false
		for i, a := range s.bodies {
			for _, b := range s.bodies[i+1:] {
				if a.Pinned && b.Pinned {
					continue
				}
				dx := b.X - a.X
				dy := b.Y - a.Y
				d := math.Hypot(dx, dy)
				if d >= minDist {
					continue
				}
				if d == 0 {
					dx, dy = s.jiggle(), s.jiggle()
					d = math.Hypot(dx, dy)
				}
				push := (minDist - d + slack) / d
				dx *= push
				dy *= push
				switch {
				case a.Pinned:
					b.X += dx
					b.Y += dy
				case b.Pinned:
					a.X -= dx
					a.Y -= dy
				default:
					a.X -= dx / 2
					a.Y -= dy / 2
					b.X += dx / 2
					b.Y += dy / 2
				}
				moved = true
			}
		}
		if !moved {
			return true
		}
	}
	return s.overlaps(minDist) == 0
}

func (s *Simulation) overlaps(minDist float64) int {
	n := 0
	for i, a := range s.bodies {
		for _, b := range s.bodies[i+1:] {
			if math.Hypot(b.X-a.X, b.Y-a.Y) < minDist {
				n++
			}
		}
	}
	return n
}
