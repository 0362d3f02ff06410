// Package mindmap owns the state of one mounted mind-map view.
//
// A View ties together the graph built from conversation records, the force
// simulation laying it out, the viewport transform, pointer interaction,
// the tag projection and node decorations. Nothing is kept at package level,
// so any number of views can be mounted at once.
//
// A View is not safe for concurrent use. Hosts call it from a single event
// loop; asynchronous lookups run elsewhere and hand their results back
// through the Apply methods, which drop anything that has gone stale.
package mindmap

import (
	"context"
	"fmt"
	"time"

	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/interaction"
	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/lookup"
	"github.com/vanderheijden86/mindmap/pkg/model"
	"github.com/vanderheijden86/mindmap/pkg/render"
	"github.com/vanderheijden86/mindmap/pkg/tagfilter"
	"github.com/vanderheijden86/mindmap/pkg/viewport"
)

// Zoom steps of the zoom buttons.
const (
	ZoomInFactor  = 1.2
	ZoomOutFactor = 0.8
)

// View is one mounted graph.
type View struct {
	surface       render.Surface
	width, height float64

	tuneLayout func(*layout.Options)
	vpOpts     viewport.Options
	ixOpts     interaction.Options
	preserve   bool
	dim        float64
	clock      func() time.Time

	g     *graph.Graph
	sim   *layout.Simulation
	vp    *viewport.Controller
	layer *interaction.Layer

	proj   tagfilter.Projection
	decor  map[int64]lookup.Decoration
	guard  *lookup.Guard
	loader *lookup.Loader
}

// Mount creates a view drawing onto surface with a viewport of width x height
// screen pixels. The view starts with an empty graph.
func Mount(surface render.Surface, width, height float64, opts ...ViewOption) *View {
	v := &View{
		surface: surface,
		width:   width,
		height:  height,
		vpOpts:  viewport.DefaultOptions(),
		ixOpts:  interaction.DefaultOptions(),
		dim:     tagfilter.DefaultDim,
		decor:   make(map[int64]lookup.Decoration),
		guard:   lookup.NewGuard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.g, _ = graph.Build(nil, nil)
	v.vp = viewport.New(width, height, v.vpOpts)
	if v.clock != nil {
		v.vp.SetClock(v.clock)
	}
	v.layer = interaction.New(v.g, nil, v.vp, v.ixOpts)
	return v
}

func (v *View) layoutOptions() layout.Options {
	opts := layout.DefaultOptions(v.width, v.height)
	if v.tuneLayout != nil {
		v.tuneLayout(&opts)
	}
	return opts
}

// Load replaces the graph with one built from convs and links and restarts
// the layout. Records that cannot be used are skipped and counted in the
// returned report. An empty conversation list leaves the view without a
// simulation; it draws the placeholder instead.
func (v *View) Load(convs []model.Conversation, links []model.Link) graph.BuildReport {
	g, rep := graph.Build(convs, links)
	if rep.Skipped() > 0 {
		debug.Log("mindmap: %s", rep)
	}

	var sim *layout.Simulation
	if !g.Empty() {
		opts := v.layoutOptions()
		if v.preserve && v.sim != nil {
			opts.Previous = v.sim.Positions()
		}
		sim = layout.New(g, opts)
	}

	v.g = g
	v.sim = sim
	v.layer.Rebind(g, sim)
	v.proj = v.proj.Rebase(g)
	for id := range v.decor {
		if !g.Has(id) {
			delete(v.decor, id)
		}
	}
	// decorations in flight were requested for the old node set
	v.guard.Invalidate(lookup.KeyDecorations)
	return rep
}

// Resize changes the viewport size and moves the layout centre with it.
func (v *View) Resize(width, height float64) {
	v.width, v.height = width, height
	v.vp.SetSize(width, height)
	if v.sim != nil {
		v.sim.SetCenter(width/2, height/2)
	}
}

// Size returns the viewport size.
func (v *View) Size() (width, height float64) { return v.width, v.height }

// Graph returns the current graph. It is never nil.
func (v *View) Graph() *graph.Graph { return v.g }

// Simulation returns the current simulation, or nil when the graph is empty.
func (v *View) Simulation() *layout.Simulation { return v.sim }

// Viewport returns the viewport controller.
func (v *View) Viewport() *viewport.Controller { return v.vp }

// Interaction returns the pointer layer.
func (v *View) Interaction() *interaction.Layer { return v.layer }

// Guard returns the staleness guard shared by this view's async lookups.
// Hosts use it for their own per-node requests.
func (v *View) Guard() *lookup.Guard { return v.guard }

// Active reports whether further frames would change anything.
func (v *View) Active() bool {
	return (v.sim != nil && v.sim.Running()) || v.vp.Animating()
}

// Frame is the animation frame callback: it steps the simulation once,
// advances any viewport transition to now and draws. It reports whether
// the view is still moving.
func (v *View) Frame(now time.Time) (bool, error) {
	if v.sim != nil {
		v.sim.Step()
	}
	v.vp.Advance(now)
	if err := v.Draw(); err != nil {
		return v.Active(), err
	}
	return v.Active(), nil
}

// Draw renders the current state without advancing it.
func (v *View) Draw() error {
	if v.surface == nil {
		return nil
	}
	if err := v.surface.Draw(v.Scene()); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// Scene builds the display list for the current state.
func (v *View) Scene() render.Scene {
	in := render.SceneInput{
		Graph:       v.g,
		Selection:   v.layer,
		Transform:   v.vp.Transform(),
		Projection:  v.proj,
		Decorations: v.decor,
		Width:       int(v.width),
		Height:      int(v.height),
	}
	if v.sim != nil {
		in.Positions = v.sim
	}
	return render.BuildScene(in)
}

// Settle runs the simulation until it cools, up to maxTicks, then removes
// leftover overlaps. It is meant for headless rendering.
func (v *View) Settle(maxTicks int) int {
	if v.sim == nil {
		return 0
	}
	n := v.sim.Run(maxTicks)
	if !v.sim.Settle(500) {
		debug.Log("mindmap: overlaps remain after settling")
	}
	return n
}

// ZoomIn zooms in one step about the viewport centre.
func (v *View) ZoomIn() bool { return v.vp.ZoomBy(ZoomInFactor) }

// ZoomOut zooms out one step about the viewport centre.
func (v *View) ZoomOut() bool { return v.vp.ZoomBy(ZoomOutFactor) }

// Zoom multiplies the scale by factor. Out of range requests are ignored.
func (v *View) Zoom(factor float64) bool { return v.vp.ZoomBy(factor) }

// ResetView animates back to the identity transform.
func (v *View) ResetView() bool { return v.vp.ResetView() }

// CenterOn animates the camera onto node id. It does nothing and returns
// false if the node has no position yet.
func (v *View) CenterOn(id int64) bool {
	if v.sim == nil {
		return false
	}
	p, ok := v.sim.Position(id)
	if !ok {
		return false
	}
	return v.vp.CenterOn(p.X, p.Y)
}

// Restart reheats the layout.
func (v *View) Restart() {
	if v.sim != nil {
		v.sim.Restart(0)
	}
}

// Stop freezes the layout where it is.
func (v *View) Stop() {
	if v.sim != nil {
		v.sim.Stop()
	}
}

// OnActivate registers a handler for node activation events.
func (v *View) OnActivate(fn func(id int64)) { v.layer.OnActivate(fn) }

// Select selects node id, highlights its links and centres on it.
func (v *View) Select(id int64) bool { return v.layer.Select(id) }

// Deselect clears the selection.
func (v *View) Deselect() { v.layer.Deselect() }

// Selected returns the selected node.
func (v *View) Selected() (int64, bool) { return v.layer.Selected() }

// SelectNext moves the selection delta nodes along the node order, wrapping
// around, and returns the new selection. With nothing selected it starts
// from the first or last node.
func (v *View) SelectNext(delta int) (int64, bool) {
	nodes := v.g.Nodes()
	if len(nodes) == 0 {
		return 0, false
	}
	i := 0
	if id, ok := v.layer.Selected(); ok {
		idx, _ := v.g.IndexOf(id)
		i = ((idx+delta)%len(nodes) + len(nodes)) % len(nodes)
	} else if delta < 0 {
		i = len(nodes) - 1
	}
	id := nodes[i].ID
	v.layer.Select(id)
	return id, true
}

// PointerDown forwards a press at screen point (x, y).
func (v *View) PointerDown(x, y float64) { v.layer.PointerDown(interaction.Point{X: x, Y: y}) }

// PointerMove forwards pointer motion.
func (v *View) PointerMove(x, y float64) { v.layer.PointerMove(interaction.Point{X: x, Y: y}) }

// PointerUp forwards a release.
func (v *View) PointerUp(x, y float64) { v.layer.PointerUp(interaction.Point{X: x, Y: y}) }

// Wheel forwards a wheel movement of deltaY pixels at (x, y).
func (v *View) Wheel(x, y, deltaY float64) bool {
	return v.layer.Wheel(interaction.Point{X: x, Y: y}, deltaY)
}

// NodeAt returns the node under screen point (x, y).
func (v *View) NodeAt(x, y float64) (int64, bool) {
	return v.layer.NodeAt(interaction.Point{X: x, Y: y})
}

// Projection returns the active tag projection.
func (v *View) Projection() tagfilter.Projection { return v.proj }

// SetTagFilterIDs filters by tag using an already resolved member list.
// Any request still in flight is made stale.
func (v *View) SetTagFilterIDs(tag string, ids []int64) {
	v.guard.Invalidate(lookup.KeyTagFilter)
	v.proj = tagfilter.FromIDs(tag, ids, v.g, v.dim)
}

// ClearTagFilter removes the tag filter.
func (v *View) ClearTagFilter() {
	v.guard.Invalidate(lookup.KeyTagFilter)
	v.proj = tagfilter.Projection{}
}

// TagFilterResult is the outcome of a tag membership lookup.
type TagFilterResult struct {
	Token lookup.Token
	Tag   string
	IDs   []int64
}

// RequestTagFilter starts switching the filter to tag. The returned task
// fetches the members and may run on any goroutine; its result must be
// passed to ApplyTagFilter. An empty tag clears the filter at once and
// returns nil, as does a view without a loader.
func (v *View) RequestTagFilter(tag string) func(context.Context) TagFilterResult {
	if tag == "" {
		v.ClearTagFilter()
		return nil
	}
	if v.loader == nil {
		return nil
	}
	tok := v.guard.Begin(lookup.KeyTagFilter)
	loader := v.loader
	return func(ctx context.Context) TagFilterResult {
		return TagFilterResult{Token: tok, Tag: tag, IDs: loader.TagMembers(ctx, tag)}
	}
}

// ApplyTagFilter installs a tag lookup result unless a newer filter request
// or an explicit filter change superseded it. The layout is not touched.
func (v *View) ApplyTagFilter(r TagFilterResult) bool {
	if !v.guard.Valid(r.Token) {
		debug.Log("mindmap: dropping stale members of tag %q", r.Tag)
		return false
	}
	v.proj = tagfilter.FromIDs(r.Tag, r.IDs, v.g, v.dim)
	return true
}

// DecorationsResult is the outcome of a decoration lookup.
type DecorationsResult struct {
	Token       lookup.Token
	Decorations map[int64]lookup.Decoration
}

// RequestDecorations starts fetching tags and message counts for every node.
// The returned task may run on any goroutine; pass its result to
// ApplyDecorations. It returns nil without a loader or nodes.
func (v *View) RequestDecorations() func(context.Context) DecorationsResult {
	if v.loader == nil || v.g.Empty() {
		return nil
	}
	tok := v.guard.Begin(lookup.KeyDecorations)
	ids := make([]int64, 0, v.g.NodeCount())
	for _, n := range v.g.Nodes() {
		ids = append(ids, n.ID)
	}
	loader := v.loader
	return func(ctx context.Context) DecorationsResult {
		return DecorationsResult{Token: tok, Decorations: loader.Decorations(ctx, ids)}
	}
}

// ApplyDecorations merges a decoration lookup result. Results requested
// before the last Load are dropped.
func (v *View) ApplyDecorations(r DecorationsResult) bool {
	if !v.guard.Valid(r.Token) {
		debug.Log("mindmap: dropping stale decorations for %d nodes", len(r.Decorations))
		return false
	}
	v.SetDecorations(r.Decorations)
	return true
}

// SetDecorations merges decorations for nodes in the graph.
func (v *View) SetDecorations(d map[int64]lookup.Decoration) {
	for id, dec := range d {
		if v.g.Has(id) {
			v.decor[id] = dec
		}
	}
}

// Decoration returns the decoration known for id.
func (v *View) Decoration(id int64) (lookup.Decoration, bool) {
	d, ok := v.decor[id]
	return d, ok
}
