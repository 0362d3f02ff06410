// Package render draws a mind map. BuildScene turns the live graph state into
// a display list; backends (SVG, PNG and a terminal cell grid) draw that list.
//
// Decorations such as the bookmark star, tag badge and selection ring are
// carried separately from node geometry. Hit testing only ever looks at a
// node's position and radius.
package render

import (
	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/lookup"
	"github.com/vanderheijden86/mindmap/pkg/metrics"
	"github.com/vanderheijden86/mindmap/pkg/tagfilter"
	"github.com/vanderheijden86/mindmap/pkg/viewport"
)

const (
	// NodeRadius is the drawn and hit-tested node radius in simulation units.
	NodeRadius = 45
	// LabelRunes is how many characters of a title fit in a node.
	LabelRunes = 15
	// MaxTagLines is how many tag names are listed under a node.
	MaxTagLines = 3
	// Placeholder is shown instead of geometry when there are no nodes.
	Placeholder = "No conversations yet. Click the + button to create one!"
)

// Decoration is the purely visual extra state of a node.
type Decoration struct {
	Bookmarked  bool
	Tags        []string
	HasMessages bool
}

// TagCount returns the number shown in the tag badge.
func (d Decoration) TagCount() int { return len(d.Tags) }

// TagLines returns the tag labels listed under a node: up to MaxTagLines
// names prefixed with '#', then "..." if some were left out.
func (d Decoration) TagLines() []string {
	if len(d.Tags) == 0 {
		return nil
	}
	n := min(len(d.Tags), MaxTagLines)
	lines := make([]string, 0, n+1)
	for _, t := range d.Tags[:n] {
		lines = append(lines, "#"+t)
	}
	if len(d.Tags) > MaxTagLines {
		lines = append(lines, "...")
	}
	return lines
}

// NodeShape is one node in simulation coordinates.
type NodeShape struct {
	ID       int64
	X, Y     float64
	Radius   float64
	Label    string
	Title    string
	Selected bool
	Hovered  bool
	Pinned   bool
	// Neighbor marks nodes linked to the selected node.
	Neighbor bool
	Degree   int
	Opacity  float64
	Decor    Decoration
}

// EdgeShape is one edge in simulation coordinates.
type EdgeShape struct {
	Index          int
	Source, Target int64
	X1, Y1, X2, Y2 float64
	Highlighted    bool
	Opacity        float64
}

// Scene is a complete frame.
type Scene struct {
	Width, Height int
	Transform     viewport.Transform
	Edges         []EdgeShape
	Nodes         []NodeShape
	// Placeholder is set, and the shape lists empty, when the graph has no
	// nodes.
	Placeholder string
}

// Empty reports whether the scene is the placeholder.
func (s Scene) Empty() bool { return s.Placeholder != "" }

// Node returns the shape for id.
func (s Scene) Node(id int64) (NodeShape, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeShape{}, false
}

// Positions reports where nodes are. *layout.Simulation implements it.
type Positions interface {
	Position(id int64) (layout.Point, bool)
	Pinned(id int64) bool
}

// Selection reports selection state. *interaction.Layer implements it.
type Selection interface {
	Selected() (int64, bool)
	IsSelected(id int64) bool
	IsHighlighted(edge int) bool
	Hovered() (int64, bool)
}

// SceneInput is everything a frame is built from. Positions and Selection
// may be nil.
type SceneInput struct {
	Graph       *graph.Graph
	Positions   Positions
	Selection   Selection
	Transform   viewport.Transform
	Projection  tagfilter.Projection
	Decorations map[int64]lookup.Decoration
	Width       int
	Height      int
}

// BuildScene assembles the display list. Nodes without a resolved position
// are left out, as are edges with such an endpoint.
func BuildScene(in SceneInput) Scene {
	defer metrics.Timer(metrics.SceneBuild)()

	s := Scene{Width: in.Width, Height: in.Height, Transform: in.Transform}
	if s.Transform.K == 0 {
		s.Transform = viewport.Identity
	}
	if in.Graph.Empty() {
		s.Placeholder = Placeholder
		return s
	}
	if in.Positions == nil {
		return s
	}

	var hovered int64
	hasHover := false
	neighbors := map[int64]bool{}
	if in.Selection != nil {
		hovered, hasHover = in.Selection.Hovered()
		if sel, ok := in.Selection.Selected(); ok {
			for _, id := range in.Graph.Neighbors(sel) {
				neighbors[id] = true
			}
		}
	}

	for i, e := range in.Graph.Edges() {
		a, okA := in.Positions.Position(e.Source)
		b, okB := in.Positions.Position(e.Target)
		if !okA || !okB {
			continue
		}
		s.Edges = append(s.Edges, EdgeShape{
			Index:       i,
			Source:      e.Source,
			Target:      e.Target,
			X1:          a.X,
			Y1:          a.Y,
			X2:          b.X,
			Y2:          b.Y,
			Highlighted: in.Selection != nil && in.Selection.IsHighlighted(i),
			Opacity:     in.Projection.EdgeOpacity(e),
		})
	}

	for _, n := range in.Graph.Nodes() {
		p, ok := in.Positions.Position(n.ID)
		if !ok {
			continue
		}
		d := in.Decorations[n.ID]
		s.Nodes = append(s.Nodes, NodeShape{
			ID:       n.ID,
			X:        p.X,
			Y:        p.Y,
			Radius:   NodeRadius,
			Label:    Truncate(n.Title, LabelRunes),
			Title:    n.Title,
			Selected: in.Selection != nil && in.Selection.IsSelected(n.ID),
			Hovered:  hasHover && hovered == n.ID,
			Pinned:   in.Positions.Pinned(n.ID),
			Neighbor: neighbors[n.ID],
			Degree:   in.Graph.Degree(n.ID),
			Opacity:  in.Projection.NodeOpacity(n.ID),
			Decor: Decoration{
				Bookmarked:  n.Bookmarked,
				Tags:        d.Tags,
				HasMessages: d.Messages > 0,
			},
		})
	}
	return s
}

// HitTest returns the topmost node under the screen point (sx, sy).
func HitTest(s Scene, sx, sy float64) (int64, bool) {
	x, y := s.Transform.Invert(sx, sy)
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		n := s.Nodes[i]
		dx, dy := n.X-x, n.Y-y
		if dx*dx+dy*dy <= n.Radius*n.Radius {
			return n.ID, true
		}
	}
	return 0, false
}

// Truncate shortens s to max runes followed by "..." when it is longer.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
