package export_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/mindmap/pkg/export"
	"github.com/vanderheijden86/mindmap/pkg/render"
)

func TestGenerateMermaid(t *testing.T) {
	s := render.Scene{
		Nodes: []render.NodeShape{
			{ID: 2, Title: `Plan "Q3" [draft]`, Opacity: 1, Selected: true},
			{ID: 1, Title: "", Opacity: 1, Decor: render.Decoration{Bookmarked: true}},
			{ID: 3, Title: "Other", Opacity: 0.15},
		},
		Edges: []render.EdgeShape{
			{Source: 2, Target: 3},
			{Source: 1, Target: 2, Highlighted: true},
		},
	}
	out := export.GenerateMermaid(s)

	require.True(t, strings.HasPrefix(out, "graph LR\n"))
	require.Contains(t, out, `c1["Untitled"]`)
	require.Contains(t, out, `c2["Plan 'Q3' (draft)"]`)
	require.Contains(t, out, "class c2 selected")
	require.Contains(t, out, "class c1 bookmarked")
	require.Contains(t, out, "class c3 dimmed")
	require.Contains(t, out, "c1 === c2")
	require.Contains(t, out, "c2 --- c3")
	require.Less(t, strings.Index(out, `c1["`), strings.Index(out, `c2["`), "nodes should be sorted by id")
}

func TestGenerateMermaidEmpty(t *testing.T) {
	out := export.GenerateMermaid(render.Scene{Placeholder: "No conversations yet"})
	require.Contains(t, out, `empty["No conversations yet"]`)
}

func TestGenerateMermaidLongTitle(t *testing.T) {
	s := render.Scene{Nodes: []render.NodeShape{{ID: 9, Title: strings.Repeat("é", 60), Opacity: 1}}}
	out := export.GenerateMermaid(s)
	require.Contains(t, out, strings.Repeat("é", 37)+"...")
}

func TestSaveSnapshotMermaid(t *testing.T) {
	src := openSample(t)
	out := filepath.Join(t.TempDir(), "map")

	rep, err := export.SaveSnapshot(context.Background(), src, export.SnapshotOptions{Path: out, Format: "mermaid", Select: 1})
	require.NoError(t, err)
	require.Equal(t, export.FormatMermaid, rep.Format)
	require.Equal(t, out+".mmd", rep.Path)

	b, err := os.ReadFile(rep.Path)
	require.NoError(t, err)
	require.Contains(t, string(b), "class c1 selected")
	require.Contains(t, string(b), "c1 === c2")
	require.NotContains(t, string(b), "c99")
}
