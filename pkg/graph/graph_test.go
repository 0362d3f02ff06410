package graph

import (
	"testing"

	"github.com/vanderheijden86/mindmap/pkg/model"

	"pgregory.net/rapid"
)

func conv(id int64, title string) model.Conversation {
	return model.Conversation{ID: id, Title: title}
}

func TestBuild_DropsDanglingLink(t *testing.T) {
	convs := []model.Conversation{conv(1, "one"), conv(2, "two"), conv(3, "three")}
	links := []model.Link{{SourceID: 1, TargetID: 2}, {SourceID: 2, TargetID: 99}}

	g, report := Build(convs, links)

	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}
	if got := g.Edges()[0].Key(); got != NewEdgeKey(1, 2) {
		t.Errorf("edge key = %v, want 1<->2", got)
	}
	if report.DanglingLinks != 1 {
		t.Errorf("DanglingLinks = %d, want 1", report.DanglingLinks)
	}
}

func TestBuild_SkipsMalformedAndDuplicateConversations(t *testing.T) {
	convs := []model.Conversation{
		conv(1, "first"),
		conv(1, "shadow"),
		{ID: 0, Title: "no id"},
		{ID: 5},
		conv(6, "six"),
	}
	g, report := Build(convs, nil)

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	n, ok := g.Node(1)
	if !ok || n.Title != "first" {
		t.Errorf("first occurrence should win, got %+v", n)
	}
	if report.DuplicateNodes != 1 || report.InvalidNodes != 2 {
		t.Errorf("report = %s", report)
	}
	if report.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", report.Skipped())
	}
}

func TestBuild_PreservesRecordFields(t *testing.T) {
	c := model.Conversation{ID: 7, Title: "Kept", Bookmarked: true}
	g, _ := Build([]model.Conversation{c}, nil)
	n, ok := g.Node(7)
	if !ok {
		t.Fatal("node 7 missing")
	}
	if n.Title != "Kept" || !n.Bookmarked {
		t.Errorf("fields not copied: %+v", n)
	}
}

func TestIncidentEdges_IgnoresDirection(t *testing.T) {
	convs := []model.Conversation{conv(1, "a"), conv(2, "b"), conv(3, "c")}
	links := []model.Link{
		{SourceID: 1, TargetID: 2},
		{SourceID: 3, TargetID: 1},
		{SourceID: 2, TargetID: 3},
	}
	g, _ := Build(convs, links)

	got := g.IncidentEdges(1)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("IncidentEdges(1) = %v, want [0 1]", got)
	}
	if n := g.Neighbors(1); len(n) != 2 || n[0] != 2 || n[1] != 3 {
		t.Errorf("Neighbors(1) = %v", n)
	}
	if d := g.Degree(2); d != 2 {
		t.Errorf("Degree(2) = %d", d)
	}
}

func TestSelfLinkKeptButNotAdjacent(t *testing.T) {
	g, report := Build([]model.Conversation{conv(1, "loop")}, []model.Link{{SourceID: 1, TargetID: 1}})
	if report.Edges != 1 {
		t.Fatalf("self link should be kept, report %s", report)
	}
	if len(g.IncidentEdges(1)) != 1 {
		t.Errorf("self link should be incident once, got %v", g.IncidentEdges(1))
	}
	if g.Degree(1) != 0 {
		t.Errorf("self link must not count as neighbour")
	}
}

func TestEdgeKeyUndirected(t *testing.T) {
	if NewEdgeKey(4, 2) != NewEdgeKey(2, 4) {
		t.Error("edge keys should ignore direction")
	}
	e := Edge{Source: 9, Target: 3}
	if e.Other(9) != 3 || e.Other(3) != 9 {
		t.Error("Other returned wrong endpoint")
	}
}

func TestComponents(t *testing.T) {
	convs := []model.Conversation{conv(1, "a"), conv(2, "b"), conv(3, "c"), conv(4, "d"), conv(5, "e")}
	links := []model.Link{{SourceID: 1, TargetID: 2}, {SourceID: 2, TargetID: 3}, {SourceID: 4, TargetID: 5}}
	g, _ := Build(convs, links)

	comps := g.Components()
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %v", comps)
	}
	if len(comps[0]) != 3 || comps[0][0] != 1 {
		t.Errorf("largest component = %v", comps[0])
	}
	if len(comps[1]) != 2 || comps[1][0] != 4 {
		t.Errorf("second component = %v", comps[1])
	}
}

func TestNilGraphIsEmpty(t *testing.T) {
	var g *Graph
	if !g.Empty() || g.NodeCount() != 0 || g.Has(1) || g.Nodes() != nil {
		t.Error("nil graph should behave as empty")
	}
}

func TestBuild_NoDanglingEdgesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfNDistinct(rapid.Int64Range(1, 40), 0, 20, rapid.ID[int64]).Draw(t, "ids")
		convs := make([]model.Conversation, 0, len(ids))
		present := make(map[int64]bool, len(ids))
		for _, id := range ids {
			convs = append(convs, conv(id, "c"))
			present[id] = true
		}
		links := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) model.Link {
			return model.Link{
				SourceID: rapid.Int64Range(1, 60).Draw(t, "src"),
				TargetID: rapid.Int64Range(1, 60).Draw(t, "dst"),
			}
		}), 0, 40).Draw(t, "links")

		g, report := Build(convs, links)

		for _, e := range g.Edges() {
			if !present[e.Source] || !present[e.Target] {
				t.Fatalf("edge %v references a missing node", e)
			}
		}
		if report.Edges+report.DanglingLinks != len(links) {
			t.Fatalf("every link must be kept or counted as dangling: %s, links=%d", report, len(links))
		}
	})
}
