// Package graph turns conversation and link records into the node/edge model
// the layout engine and renderer work on.
//
// Building is a pure transform. Malformed conversations are skipped, duplicate
// ids keep their first occurrence, and links whose endpoints are not both
// present are dropped. Nothing here returns an error: every skipped record is
// counted in the BuildReport and logged through pkg/debug.
package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/metrics"
	"github.com/vanderheijden86/mindmap/pkg/model"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Node is one conversation in the graph.
type Node struct {
	ID         int64
	Title      string
	LastUpdate time.Time
	Bookmarked bool
}

// Edge links two conversations. Source and Target keep the stored direction.
type Edge struct {
	Source int64
	Target int64
}

// Key returns the direction-free identity of the edge.
func (e Edge) Key() EdgeKey {
	return NewEdgeKey(e.Source, e.Target)
}

// Touches reports whether id is either endpoint.
func (e Edge) Touches(id int64) bool {
	return e.Source == id || e.Target == id
}

// Other returns the endpoint opposite id.
func (e Edge) Other(id int64) int64 {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// EdgeKey identifies a visual connection: A->B and B->A share a key.
type EdgeKey struct {
	Lo, Hi int64
}

// NewEdgeKey orders the endpoints.
func NewEdgeKey(a, b int64) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{Lo: a, Hi: b}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d<->%d", k.Lo, k.Hi)
}

// BuildReport counts what Build kept and what it skipped.
type BuildReport struct {
	Nodes          int
	Edges          int
	InvalidNodes   int
	DuplicateNodes int
	InvalidLinks   int
	DanglingLinks  int
}

// Skipped returns the total number of discarded records.
func (r BuildReport) Skipped() int {
	return r.InvalidNodes + r.DuplicateNodes + r.InvalidLinks + r.DanglingLinks
}

func (r BuildReport) String() string {
	return fmt.Sprintf("nodes=%d edges=%d skipped(invalid_nodes=%d duplicate_nodes=%d invalid_links=%d dangling_links=%d)",
		r.Nodes, r.Edges, r.InvalidNodes, r.DuplicateNodes, r.InvalidLinks, r.DanglingLinks)
}

// Graph is an immutable snapshot of nodes and edges.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[int64]int

	// incident maps a node id to the indices of edges touching it.
	incident map[int64][]int

	adj *simple.UndirectedGraph
}

// Build maps conversations to nodes and links to edges.
func Build(convs []model.Conversation, links []model.Link) (*Graph, BuildReport) {
	defer metrics.Timer(metrics.GraphBuild)()

	var report BuildReport
	g := &Graph{
		nodes:    make([]Node, 0, len(convs)),
		index:    make(map[int64]int, len(convs)),
		incident: make(map[int64][]int, len(convs)),
		adj:      simple.NewUndirectedGraph(),
	}

	for _, c := range convs {
		if err := c.Validate(); err != nil {
			report.InvalidNodes++
			debug.Log("graph: skipping conversation: %v", err)
			continue
		}
		if _, dup := g.index[c.ID]; dup {
			report.DuplicateNodes++
			debug.Log("graph: skipping duplicate conversation id=%d", c.ID)
			continue
		}
		g.index[c.ID] = len(g.nodes)
		g.nodes = append(g.nodes, Node{
			ID:         c.ID,
			Title:      c.Title,
			LastUpdate: c.UpdatedAt,
			Bookmarked: c.Bookmarked,
		})
		g.adj.AddNode(simple.Node(c.ID))
	}

	g.edges = make([]Edge, 0, len(links))
	for _, l := range links {
		if err := l.Validate(); err != nil {
			report.InvalidLinks++
			debug.Log("graph: skipping link: %v", err)
			continue
		}
		_, okSrc := g.index[l.SourceID]
		_, okDst := g.index[l.TargetID]
		if !okSrc || !okDst {
			report.DanglingLinks++
			debug.Log("graph: dropping dangling link %d->%d", l.SourceID, l.TargetID)
			continue
		}
		idx := len(g.edges)
		g.edges = append(g.edges, Edge{Source: l.SourceID, Target: l.TargetID})
		g.incident[l.SourceID] = append(g.incident[l.SourceID], idx)
		if l.TargetID != l.SourceID {
			g.incident[l.TargetID] = append(g.incident[l.TargetID], idx)
			// simple graphs reject self edges; the adjacency index only needs
			// distinct neighbours.
			g.adj.SetEdge(g.adj.NewEdge(simple.Node(l.SourceID), simple.Node(l.TargetID)))
		}
	}

	report.Nodes = len(g.nodes)
	report.Edges = len(g.edges)
	debug.LogIf(report.Skipped() > 0, "graph: build %s", report)
	return g, report
}

// Empty reports whether the graph has no nodes.
func (g *Graph) Empty() bool {
	return g == nil || len(g.nodes) == 0
}

// Nodes returns the nodes in input order. The slice must not be modified.
func (g *Graph) Nodes() []Node {
	if g == nil {
		return nil
	}
	return g.nodes
}

// Edges returns the edges in input order. The slice must not be modified.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	return g.edges
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}

// Has reports whether id is a node.
func (g *Graph) Has(id int64) bool {
	if g == nil {
		return false
	}
	_, ok := g.index[id]
	return ok
}

// Node returns the node with the given id.
func (g *Graph) Node(id int64) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// IndexOf returns the position of id in Nodes().
func (g *Graph) IndexOf(id int64) (int, bool) {
	if g == nil {
		return 0, false
	}
	i, ok := g.index[id]
	return i, ok
}

// IncidentEdges returns the indices of edges that touch id, in either direction.
func (g *Graph) IncidentEdges(id int64) []int {
	if g == nil {
		return nil
	}
	return g.incident[id]
}

// Neighbors returns the distinct ids connected to id, sorted ascending.
func (g *Graph) Neighbors(id int64) []int64 {
	if !g.Has(id) {
		return nil
	}
	return sortedIDs(g.adj.From(id))
}

// Degree returns the number of distinct neighbours of id.
func (g *Graph) Degree(id int64) int {
	if !g.Has(id) {
		return 0
	}
	return g.adj.From(id).Len()
}

// Components returns the connected components, each sorted ascending, ordered
// by size (largest first) and then by smallest id.
func (g *Graph) Components() [][]int64 {
	if g.Empty() {
		return nil
	}
	raw := topo.ConnectedComponents(g.adj)
	out := make([][]int64, 0, len(raw))
	for _, comp := range raw {
		ids := make([]int64, 0, len(comp))
		for _, n := range comp {
			ids = append(ids, n.ID())
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}

func sortedIDs(it gonum.Nodes) []int64 {
	var ids []int64
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
