// Package interaction turns pointer gestures into simulation pins, viewport
// changes, selection state and node activation events.
//
// A press on a node starts a drag: the node is pinned where it is and the
// simulation is reheated. Moving the pointer moves the pin; releasing it
// unpins the node and lets the simulation cool. A press and release without
// movement is a click, which raises one activation event. A press on empty
// space pans the viewport instead.
package interaction

import (
	"sort"

	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/viewport"
)

// Point is a screen-space pointer position.
type Point struct {
	X, Y float64
}

// Options configures hit testing and click detection.
type Options struct {
	// HitRadius is the node radius in simulation units used for picking.
	HitRadius float64
	// ClickDistance is how far, in screen pixels, the pointer may travel
	// between press and release for the gesture to still count as a click.
	ClickDistance float64
}

// DefaultOptions matches the rendered node size.
func DefaultOptions() Options {
	return Options{HitRadius: 45, ClickDistance: 0}
}

type gestureKind int

const (
	gestureNode gestureKind = iota + 1
	gesturePan
)

type gesture struct {
	kind  gestureKind
	node  int64
	start Point
	last  Point
	moved bool

	// offset from the pointer to the node centre in simulation space
	dx, dy float64
	// pin is the last pinned position
	pin layout.Point
}

// Layer owns selection and hover state for one mounted graph.
type Layer struct {
	opts Options
	g    *graph.Graph
	sim  *layout.Simulation
	vp   *viewport.Controller

	selected    int64
	hasSelected bool
	highlighted map[int]struct{}

	hovered  int64
	hasHover bool

	active     *gesture
	onActivate []func(id int64)
}

// New binds a layer to a graph, its simulation and the viewport. sim may be
// nil for an empty graph.
func New(g *graph.Graph, sim *layout.Simulation, vp *viewport.Controller, opts Options) *Layer {
	return &Layer{
		opts:        opts,
		g:           g,
		sim:         sim,
		vp:          vp,
		highlighted: make(map[int]struct{}),
	}
}

// OnActivate registers a handler for node activation.
func (l *Layer) OnActivate(fn func(id int64)) {
	if fn != nil {
		l.onActivate = append(l.onActivate, fn)
	}
}

func (l *Layer) activate(id int64) {
	debug.Log("interaction: node %d activated", id)
	for _, fn := range l.onActivate {
		fn(id)
	}
}

// NodeAt returns the topmost node under the screen point. Later nodes are
// drawn over earlier ones, so the search runs back to front.
func (l *Layer) NodeAt(p Point) (int64, bool) {
	if l.sim == nil || l.g.Empty() {
		return 0, false
	}
	x, y := l.vp.ToSimulation(p.X, p.Y)
	r2 := l.opts.HitRadius * l.opts.HitRadius
	nodes := l.g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		pos, ok := l.sim.Position(nodes[i].ID)
		if !ok {
			continue
		}
		dx, dy := pos.X-x, pos.Y-y
		if dx*dx+dy*dy <= r2 {
			return nodes[i].ID, true
		}
	}
	return 0, false
}

// PointerDown starts a gesture.
func (l *Layer) PointerDown(p Point) {
	if l.active != nil {
		l.Cancel()
	}
	g := &gesture{start: p, last: p}
	if id, ok := l.NodeAt(p); ok {
		pos, _ := l.sim.Position(id)
		px, py := l.vp.ToSimulation(p.X, p.Y)
		g.kind = gestureNode
		g.node = id
		g.dx, g.dy = pos.X-px, pos.Y-py
		g.pin = pos
		l.sim.Pin(id, pos.X, pos.Y)
		l.sim.Reheat()
	} else {
		g.kind = gesturePan
		l.vp.Interrupt()
	}
	l.active = g
}

// PointerMove continues a gesture, or updates hover when none is active.
func (l *Layer) PointerMove(p Point) {
	g := l.active
	if g == nil {
		l.Hover(p)
		return
	}
	if !g.moved {
		dx, dy := p.X-g.start.X, p.Y-g.start.Y
		if dx*dx+dy*dy > l.opts.ClickDistance*l.opts.ClickDistance {
			g.moved = true
		}
	}
	switch g.kind {
	case gestureNode:
		x, y := l.vp.ToSimulation(p.X, p.Y)
		g.pin = layout.Point{X: x + g.dx, Y: y + g.dy}
		l.sim.Pin(g.node, g.pin.X, g.pin.Y)
	case gesturePan:
		l.vp.Pan(p.X-g.last.X, p.Y-g.last.Y)
	}
	g.last = p
}

// PointerUp ends a gesture. A node gesture that never moved is a click.
func (l *Layer) PointerUp(p Point) {
	g := l.active
	if g == nil {
		return
	}
	l.PointerMove(p)
	l.active = nil
	if g.kind != gestureNode {
		return
	}
	l.sim.Unpin(g.node)
	l.sim.Cool()
	if !g.moved {
		l.activate(g.node)
	}
}

// Cancel abandons the current gesture without raising a click.
func (l *Layer) Cancel() {
	g := l.active
	l.active = nil
	if g == nil || g.kind != gestureNode || l.sim == nil {
		return
	}
	l.sim.Unpin(g.node)
	l.sim.Cool()
}

// Dragging returns the node being dragged.
func (l *Layer) Dragging() (int64, bool) {
	if l.active == nil || l.active.kind != gestureNode {
		return 0, false
	}
	return l.active.node, true
}

// Activate raises an activation event for id as if it had been clicked.
func (l *Layer) Activate(id int64) bool {
	if !l.g.Has(id) {
		return false
	}
	l.activate(id)
	return true
}

// Select makes id the single selected node, highlights its incident edges
// and asks the viewport to centre on it. Centring is skipped while the node
// has no position.
func (l *Layer) Select(id int64) bool {
	if !l.g.Has(id) {
		return false
	}
	l.Deselect()
	l.selected = id
	l.hasSelected = true
	for _, idx := range l.g.IncidentEdges(id) {
		l.highlighted[idx] = struct{}{}
	}
	if l.sim != nil {
		if pos, ok := l.sim.Position(id); ok {
			l.vp.CenterOn(pos.X, pos.Y)
		}
	}
	return true
}

// Deselect clears the selection and its highlighted edges.
func (l *Layer) Deselect() {
	l.selected = 0
	l.hasSelected = false
	clear(l.highlighted)
}

// Selected returns the selected node.
func (l *Layer) Selected() (int64, bool) {
	return l.selected, l.hasSelected
}

// IsSelected reports whether id is selected.
func (l *Layer) IsSelected(id int64) bool {
	return l.hasSelected && l.selected == id
}

// IsHighlighted reports whether the edge at index idx is highlighted.
func (l *Layer) IsHighlighted(idx int) bool {
	_, ok := l.highlighted[idx]
	return ok
}

// HighlightedEdges returns the highlighted edge indices in ascending order.
func (l *Layer) HighlightedEdges() []int {
	out := make([]int, 0, len(l.highlighted))
	for idx := range l.highlighted {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Hover marks the node under p.
func (l *Layer) Hover(p Point) {
	l.hovered, l.hasHover = l.NodeAt(p)
}

// ClearHover removes the hover mark.
func (l *Layer) ClearHover() {
	l.hovered, l.hasHover = 0, false
}

// Hovered returns the hovered node.
func (l *Layer) Hovered() (int64, bool) {
	return l.hovered, l.hasHover
}

// Wheel forwards a wheel gesture to the viewport.
func (l *Layer) Wheel(p Point, deltaY float64) bool {
	return l.vp.Wheel(p.X, p.Y, deltaY)
}

// Rebind points the layer at a rebuilt graph and simulation. The selection
// survives if its node still exists; a drag on a node that vanished is
// cancelled, otherwise the pin moves to the new simulation.
func (l *Layer) Rebind(g *graph.Graph, sim *layout.Simulation) {
	l.g = g
	l.sim = sim

	if l.hasSelected {
		id := l.selected
		l.Deselect()
		if g.Has(id) {
			l.selected, l.hasSelected = id, true
			for _, idx := range g.IncidentEdges(id) {
				l.highlighted[idx] = struct{}{}
			}
		}
	}
	if l.hasHover && !g.Has(l.hovered) {
		l.ClearHover()
	}

	if a := l.active; a != nil && a.kind == gestureNode {
		if sim == nil || !g.Has(a.node) {
			debug.Log("interaction: dropping drag on vanished node %d", a.node)
			l.active = nil
			return
		}
		sim.Pin(a.node, a.pin.X, a.pin.Y)
		sim.Reheat()
	}
}
