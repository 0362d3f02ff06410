// Package tagfilter projects a tag selection onto a graph as an opacity mask.
//
// Nodes outside the tagged subset are dimmed rather than removed, so the
// layout never changes when the filter does.
package tagfilter

import (
	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/model"
)

// DefaultDim is the opacity of nodes and edges outside the subset.
const DefaultDim = 0.15

// Projection is the result of filtering a graph by one tag. The zero value is
// the identity projection.
type Projection struct {
	tag     string
	members map[int64]struct{}
	dim     float64
}

// Project computes the projection of g for tag. Membership rows for other
// tags (including rows without a tag) and for ids that are not in g are
// ignored. An empty tag yields the
// identity projection.
func Project(tag string, membership []model.TagMembership, g *graph.Graph, dim float64) Projection {
	if tag == "" {
		return Projection{}
	}
	p := Projection{
		tag:     tag,
		members: make(map[int64]struct{}),
		dim:     dim,
	}
	for _, m := range membership {
		if m.Tag != tag {
			continue
		}
		if g.Has(m.ConversationID) {
			p.members[m.ConversationID] = struct{}{}
		}
	}
	return p
}

// FromIDs builds a projection from a pre-resolved id list, as returned by a
// tag membership lookup.
func FromIDs(tag string, ids []int64, g *graph.Graph, dim float64) Projection {
	rows := make([]model.TagMembership, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.TagMembership{Tag: tag, ConversationID: id})
	}
	return Project(tag, rows, g, dim)
}

// Identity reports whether the projection filters nothing.
func (p Projection) Identity() bool { return p.tag == "" }

// Tag returns the filtering tag, or "" for the identity projection.
func (p Projection) Tag() string { return p.tag }

// Count returns the number of nodes in the subset. For the identity
// projection it returns -1.
func (p Projection) Count() int {
	if p.Identity() {
		return -1
	}
	return len(p.members)
}

// Contains reports whether id is in the subset.
func (p Projection) Contains(id int64) bool {
	if p.Identity() {
		return true
	}
	_, ok := p.members[id]
	return ok
}

// NodeOpacity returns 1 for nodes in the subset and the dim level otherwise.
func (p Projection) NodeOpacity(id int64) float64 {
	if p.Contains(id) {
		return 1
	}
	return p.dim
}

// EdgeOpacity returns 1 when both endpoints are in the subset.
func (p Projection) EdgeOpacity(e graph.Edge) float64 {
	if p.Contains(e.Source) && p.Contains(e.Target) {
		return 1
	}
	return p.dim
}

// Nodes returns the nodes of g in the subset, in graph order, for list
// display.
func (p Projection) Nodes(g *graph.Graph) []graph.Node {
	if p.Identity() {
		return g.Nodes()
	}
	out := make([]graph.Node, 0, len(p.members))
	for _, n := range g.Nodes() {
		if p.Contains(n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// Rebase recomputes the projection against a rebuilt graph, dropping members
// that no longer exist.
func (p Projection) Rebase(g *graph.Graph) Projection {
	if p.Identity() {
		return p
	}
	out := Projection{tag: p.tag, members: make(map[int64]struct{}, len(p.members)), dim: p.dim}
	for id := range p.members {
		if g.Has(id) {
			out.members[id] = struct{}{}
		}
	}
	return out
}
