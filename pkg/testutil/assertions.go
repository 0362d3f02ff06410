package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/model"
)

// AssertNodeCount verifies the expected number of nodes.
func AssertNodeCount(t testing.TB, g *graph.Graph, expected int) {
	t.Helper()
	if got := g.NodeCount(); got != expected {
		t.Errorf("expected %d nodes, got %d", expected, got)
	}
}

// AssertNoDanglingEdges verifies every edge endpoint is a node of g.
func AssertNoDanglingEdges(t testing.TB, g *graph.Graph) {
	t.Helper()
	for _, e := range g.Edges() {
		if !g.Has(e.Source) || !g.Has(e.Target) {
			t.Errorf("edge %s references a missing node", e.Key())
		}
	}
}

// AssertEdge verifies that a and b are connected, in either direction.
func AssertEdge(t testing.TB, g *graph.Graph, a, b int64) {
	t.Helper()
	want := graph.NewEdgeKey(a, b)
	for _, e := range g.Edges() {
		if e.Key() == want {
			return
		}
	}
	t.Errorf("expected edge %s not found", want)
}

// AssertMinSeparation verifies no two positions are closer than minDist.
func AssertMinSeparation(t testing.TB, pos map[int64]layout.Point, minDist float64) {
	t.Helper()
	ids := make([]int64, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := pos[ids[i]], pos[ids[j]]
			if d := math.Hypot(a.X-b.X, a.Y-b.Y); d < minDist {
				t.Errorf("nodes %d and %d are %.2f apart, want >= %.2f", ids[i], ids[j], d, minDist)
			}
		}
	}
}

// AssertFinite verifies no position is NaN or infinite.
func AssertFinite(t testing.TB, pos map[int64]layout.Point) {
	t.Helper()
	for id, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Errorf("node %d has non-finite position %+v", id, p)
		}
	}
}

// WriteBackupFile writes conversations and links as an application backup
// file in a temp dir and returns its path. Tags are inlined by owner.
func WriteBackupFile(t testing.TB, ds Dataset) string {
	t.Helper()

	type tag struct {
		Name string `json:"name"`
	}
	type message struct {
		Sender    string `json:"sender"`
		Text      string `json:"text"`
		Timestamp string `json:"timestamp"`
	}
	type conversation struct {
		ID         int64     `json:"id"`
		Title      string    `json:"title"`
		UpdatedAt  string    `json:"updated_at"`
		Bookmarked int       `json:"bookmarked"`
		Tags       []tag     `json:"tags"`
		Messages   []message `json:"messages"`
	}

	const layout = "2006-01-02 15:04:05"
	out := struct {
		Conversations []conversation `json:"conversations"`
		Links         []model.Link   `json:"links"`
	}{Links: ds.Links}
	for _, c := range ds.Conversations {
		bc := conversation{
			ID:         c.ID,
			Title:      c.Title,
			UpdatedAt:  c.UpdatedAt.UTC().Format(layout),
			Bookmarked: boolInt(c.Bookmarked),
		}
		for _, tg := range ds.Tags {
			if tg.ConversationID == c.ID {
				bc.Tags = append(bc.Tags, tag{Name: tg.Name})
			}
		}
		for _, m := range ds.Messages {
			if m.ConversationID == c.ID {
				bc.Messages = append(bc.Messages, message{
					Sender: m.Sender, Text: m.Text, Timestamp: m.Timestamp.UTC().Format(layout),
				})
			}
		}
		out.Conversations = append(out.Conversations, bc)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal backup: %v", err)
	}
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write backup: %v", err)
	}
	return path
}
