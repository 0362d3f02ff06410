package interaction

import (
	"math"
	"testing"

	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/model"
	"github.com/vanderheijden86/mindmap/pkg/viewport"
)

// chain builds 1-2-3-4 with edges at indices 0, 1 and 2.
func chain(t *testing.T) *graph.Graph {
	t.Helper()
	var convs []model.Conversation
	for i := int64(1); i <= 4; i++ {
		convs = append(convs, model.Conversation{ID: i, Title: "n"})
	}
	g, _ := graph.Build(convs, []model.Link{
		{SourceID: 1, TargetID: 2},
		{SourceID: 3, TargetID: 2},
		{SourceID: 3, TargetID: 4},
	})
	return g
}

// pinnedLayout places nodes exactly at pos with every force removed, so
// positions only change when the test moves them.
func pinnedLayout(g *graph.Graph, pos map[int64]layout.Point) *layout.Simulation {
	opts := layout.DefaultOptions(800, 600)
	opts.Previous = pos
	sim := layout.New(g, opts)
	for _, name := range []string{layout.ForceLink, layout.ForceCharge, layout.ForceCenter, layout.ForceCollide} {
		sim.SetForce(name, nil)
	}
	sim.Tick()
	return sim
}

func spread() map[int64]layout.Point {
	return map[int64]layout.Point{
		1: {X: 100, Y: 100},
		2: {X: 300, Y: 100},
		3: {X: 500, Y: 100},
		4: {X: 700, Y: 100},
	}
}

func newLayer(t *testing.T) (*Layer, *layout.Simulation, *viewport.Controller) {
	t.Helper()
	g := chain(t)
	sim := pinnedLayout(g, spread())
	vp := viewport.New(800, 600, viewport.DefaultOptions())
	return New(g, sim, vp, DefaultOptions()), sim, vp
}

func TestClickRaisesOneActivation(t *testing.T) {
	l, sim, _ := newLayer(t)
	var got []int64
	l.OnActivate(func(id int64) { got = append(got, id) })

	l.PointerDown(Point{X: 302, Y: 98})
	if !sim.Pinned(2) {
		t.Error("press on a node should pin it")
	}
	l.PointerUp(Point{X: 302, Y: 98})

	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("activations = %v, want [2]", got)
	}
	if sim.Pinned(2) {
		t.Error("release should unpin")
	}
	if sim.AlphaTarget() != 0 {
		t.Errorf("alpha target = %v after release", sim.AlphaTarget())
	}
	if _, ok := l.Selected(); ok {
		t.Error("click alone must not select")
	}
}

func TestDragIsNotAClick(t *testing.T) {
	l, sim, _ := newLayer(t)
	activations := 0
	l.OnActivate(func(int64) { activations++ })

	l.PointerDown(Point{X: 100, Y: 100})
	if sim.AlphaTarget() != 0.3 {
		t.Errorf("drag should reheat, alpha target = %v", sim.AlphaTarget())
	}
	l.PointerMove(Point{X: 150, Y: 220})
	sim.Tick()
	p, _ := sim.Position(1)
	if p.X != 150 || p.Y != 220 {
		t.Errorf("dragged node at %+v, want (150,220)", p)
	}
	if id, ok := l.Dragging(); !ok || id != 1 {
		t.Errorf("Dragging() = %d, %v", id, ok)
	}
	l.PointerUp(Point{X: 150, Y: 220})
	if activations != 0 {
		t.Errorf("drag raised %d activations", activations)
	}
}

func TestDragKeepsGrabOffset(t *testing.T) {
	l, sim, _ := newLayer(t)
	l.PointerDown(Point{X: 110, Y: 90})
	l.PointerMove(Point{X: 210, Y: 90})
	b, _ := sim.Body(1)
	if b.FX != 200 || b.FY != 100 {
		t.Errorf("pin = (%v, %v), want (200, 100)", b.FX, b.FY)
	}
}

func TestReleasedNodeMovesUnderForces(t *testing.T) {
	g := chain(t)
	sim := layout.New(g, layout.DefaultOptions(800, 600))
	sim.Run(1000)
	vp := viewport.New(800, 600, viewport.DefaultOptions())
	l := New(g, sim, vp, DefaultOptions())

	start, _ := sim.Position(1)
	sx, sy := vp.ToScreen(start.X, start.Y)
	target := Point{X: sx + 300, Y: sy + 300}

	l.PointerDown(Point{X: sx, Y: sy})
	l.PointerMove(target)
	sim.Tick()
	l.PointerUp(target)

	if sim.Pinned(1) {
		t.Fatal("node still pinned after release")
	}
	px, py := vp.ToSimulation(target.X, target.Y)
	for i := 0; i < 30; i++ {
		sim.Tick()
	}
	p, _ := sim.Position(1)
	if math.Hypot(p.X-px, p.Y-py) < 1 {
		t.Errorf("released node stayed at the drop point %+v", p)
	}
}

func TestBackgroundGesturePans(t *testing.T) {
	l, sim, vp := newLayer(t)
	activations := 0
	l.OnActivate(func(int64) { activations++ })

	l.PointerDown(Point{X: 400, Y: 500})
	l.PointerMove(Point{X: 410, Y: 505})
	l.PointerUp(Point{X: 420, Y: 510})

	if tr := vp.Transform(); tr.X != 20 || tr.Y != 10 {
		t.Errorf("transform = %+v, want pan (20, 10)", tr)
	}
	if activations != 0 {
		t.Error("background gesture must not activate")
	}
	for id := int64(1); id <= 4; id++ {
		if sim.Pinned(id) {
			t.Errorf("node %d pinned by background gesture", id)
		}
	}
}

func TestTopmostNodeWins(t *testing.T) {
	g := chain(t)
	sim := pinnedLayout(g, map[int64]layout.Point{
		1: {X: 100, Y: 100}, 2: {X: 120, Y: 100}, 3: {X: 600, Y: 100}, 4: {X: 700, Y: 100},
	})
	l := New(g, sim, viewport.New(800, 600, viewport.DefaultOptions()), DefaultOptions())
	id, ok := l.NodeAt(Point{X: 110, Y: 100})
	if !ok || id != 2 {
		t.Errorf("NodeAt = %d, %v; want 2 (drawn last)", id, ok)
	}
	if _, ok := l.NodeAt(Point{X: 400, Y: 400}); ok {
		t.Error("empty space should miss")
	}
}

func TestSelectionExclusive(t *testing.T) {
	l, _, vp := newLayer(t)

	l.Select(2)
	if got := l.HighlightedEdges(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("highlight after selecting 2 = %v", got)
	}
	if !vp.Animating() {
		t.Error("select should centre on the node")
	}

	l.Select(4)
	if got := l.HighlightedEdges(); len(got) != 1 || got[0] != 2 {
		t.Errorf("highlight after selecting 4 = %v, want [2]", got)
	}
	if l.IsSelected(2) || !l.IsSelected(4) {
		t.Error("exactly one node should be selected")
	}
	if l.IsHighlighted(0) {
		t.Error("edge of the previous selection still highlighted")
	}

	l.Select(3)
	if got := l.HighlightedEdges(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("highlight after selecting 3 = %v, want [1 2]", got)
	}
}

func TestDeselectKeepsLayout(t *testing.T) {
	l, sim, _ := newLayer(t)
	l.Select(1)
	before := sim.Positions()
	l.Deselect()
	if _, ok := l.Selected(); ok {
		t.Error("selection not cleared")
	}
	if len(l.HighlightedEdges()) != 0 {
		t.Error("highlights not cleared")
	}
	after := sim.Positions()
	for id, p := range before {
		if after[id] != p {
			t.Errorf("node %d moved on deselect", id)
		}
	}
}

func TestSelectBeforePositionLeavesTransform(t *testing.T) {
	g := chain(t)
	sim := layout.New(g, layout.DefaultOptions(800, 600))
	vp := viewport.New(800, 600, viewport.DefaultOptions())
	l := New(g, sim, vp, DefaultOptions())

	if !l.Select(1) {
		t.Fatal("select failed")
	}
	if vp.Animating() || vp.Transform() != viewport.Identity {
		t.Errorf("viewport changed for an unpositioned node: %+v", vp.Transform())
	}
	if !l.IsHighlighted(0) {
		t.Error("highlight should still be applied")
	}
	if l.Select(99) {
		t.Error("unknown node selected")
	}
}

func TestHover(t *testing.T) {
	l, _, _ := newLayer(t)
	l.PointerMove(Point{X: 500, Y: 110})
	if id, ok := l.Hovered(); !ok || id != 3 {
		t.Errorf("Hovered() = %d, %v", id, ok)
	}
	l.PointerMove(Point{X: 500, Y: 400})
	if _, ok := l.Hovered(); ok {
		t.Error("hover should clear over empty space")
	}
}

func TestRebind(t *testing.T) {
	l, _, _ := newLayer(t)
	l.Select(3)
	l.PointerDown(Point{X: 700, Y: 100})

	g, _ := graph.Build(
		[]model.Conversation{{ID: 1, Title: "a"}, {ID: 3, Title: "c"}},
		[]model.Link{{SourceID: 3, TargetID: 1}},
	)
	sim := pinnedLayout(g, map[int64]layout.Point{1: {X: 100, Y: 100}, 3: {X: 500, Y: 100}})
	l.Rebind(g, sim)

	if !l.IsSelected(3) {
		t.Error("selection should survive when the node still exists")
	}
	if got := l.HighlightedEdges(); len(got) != 1 || got[0] != 0 {
		t.Errorf("highlights = %v, want [0]", got)
	}
	if _, ok := l.Dragging(); ok {
		t.Error("drag on a vanished node should be cancelled")
	}

	empty, _ := graph.Build(nil, nil)
	l.Rebind(empty, nil)
	if _, ok := l.Selected(); ok {
		t.Error("selection should clear when its node disappears")
	}
}
