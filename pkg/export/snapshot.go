// Package export writes settled mind-map snapshots to disk without a
// terminal: SVG and PNG images, or a JSON document of the final layout.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/graph"
	"github.com/vanderheijden86/mindmap/pkg/layout"
	"github.com/vanderheijden86/mindmap/pkg/lookup"
	"github.com/vanderheijden86/mindmap/pkg/mindmap"
	"github.com/vanderheijden86/mindmap/pkg/render"
)

// Output formats.
const (
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatJSON    = "json"
	FormatMermaid = "mmd"
)

// DefaultMaxTicks bounds the layout run of a snapshot.
const DefaultMaxTicks = 600

// ErrNotInGraph is returned when the conversation to select is not drawn.
var ErrNotInGraph = errors.New("conversation not in graph")

// SnapshotOptions controls snapshot export.
type SnapshotOptions struct {
	Path   string // Output path; format inferred from extension when Format empty
	Format string // "svg", "png", "json" or "mmd" (case-insensitive)

	Width, Height int
	Tag           string // Dim everything outside this tag
	Select        int64  // Conversation to select and highlight; 0 for none
	MaxTicks      int

	Palette *render.Palette
	Layout  func(*layout.Options)
}

// SnapshotReport summarizes a written snapshot.
type SnapshotReport struct {
	Path   string
	Format string
	Build  graph.BuildReport
	Ticks  int
	Nodes  int
	Edges  int
}

// ResolveFormat returns the output format and path, inferring one from the
// other. A path without an extension gets one; an unknown extension with no
// explicit format falls back to SVG.
func ResolveFormat(path, format string) (string, string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png":
			format = FormatPNG
		case ".json":
			format = FormatJSON
		case ".mmd", ".mermaid":
			format = FormatMermaid
		default:
			format = FormatSVG
		}
	}
	if format == "mermaid" {
		format = FormatMermaid
	}
	switch format {
	case FormatSVG, FormatPNG, FormatJSON, FormatMermaid:
	default:
		return "", "", fmt.Errorf("unsupported format %q (want svg, png, json or mmd)", format)
	}
	if path == "" {
		return "", "", fmt.Errorf("output path is required")
	}
	if filepath.Ext(path) == "" {
		path += "." + format
	}
	return format, path, nil
}

// SaveSnapshot loads every conversation from src, runs the layout until it
// settles and writes the final frame to opts.Path.
func SaveSnapshot(ctx context.Context, src datasource.Source, opts SnapshotOptions) (SnapshotReport, error) {
	format, path, err := ResolveFormat(opts.Path, opts.Format)
	if err != nil {
		return SnapshotReport{}, err
	}
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = DefaultMaxTicks
	}

	snap, err := datasource.Load(ctx, src)
	if err != nil {
		return SnapshotReport{}, err
	}

	var rec render.Recorder
	viewOpts := []mindmap.ViewOption{mindmap.WithLoader(lookup.NewLoader(src, 0))}
	if opts.Layout != nil {
		viewOpts = append(viewOpts, mindmap.WithLayout(opts.Layout))
	}
	v := mindmap.Mount(&rec, float64(opts.Width), float64(opts.Height), viewOpts...)
	rep := SnapshotReport{Path: path, Format: format, Build: v.Load(snap.Conversations, snap.Links)}

	if task := v.RequestDecorations(); task != nil {
		v.ApplyDecorations(task(ctx))
	}
	if task := v.RequestTagFilter(opts.Tag); task != nil {
		v.ApplyTagFilter(task(ctx))
	}
	if opts.Select != 0 && !v.Select(opts.Select) {
		return rep, fmt.Errorf("select %d: %w", opts.Select, ErrNotInGraph)
	}

	rep.Ticks = v.Settle(opts.MaxTicks)
	if err := v.Draw(); err != nil {
		return rep, err
	}
	rep.Nodes = len(rec.Last.Nodes)
	rep.Edges = len(rec.Last.Edges)
	debug.Log("export: %d nodes, %d edges settled in %d ticks", rep.Nodes, rep.Edges, rep.Ticks)

	var buf bytes.Buffer
	switch format {
	case FormatSVG:
		err = render.SVGSurface{W: &buf, Palette: opts.Palette}.Draw(rec.Last)
	case FormatPNG:
		err = render.PNGSurface{W: &buf, Palette: opts.Palette}.Draw(rec.Last)
	case FormatJSON:
		err = writeDocument(&buf, rec.Last, v.Projection().Tag(), v.Graph().Components())
	case FormatMermaid:
		buf.WriteString(GenerateMermaid(rec.Last))
	}
	if err != nil {
		return rep, fmt.Errorf("render %s: %w", format, err)
	}

	if err := writeFile(path, buf.Bytes()); err != nil {
		return rep, err
	}
	return rep, nil
}

// writeFile replaces path atomically so a reader never sees half an image.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Document is the JSON rendition of a frame.
type Document struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Tag      string         `json:"tag,omitempty"`
	Selected *int64         `json:"selected,omitempty"`
	Nodes    []DocumentNode `json:"nodes"`
	Edges    []DocumentEdge `json:"edges"`
	// Clusters lists the connected groups of conversations, largest first.
	Clusters [][]int64 `json:"clusters,omitempty"`
}

// DocumentNode is one positioned conversation.
type DocumentNode struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Bookmarked bool     `json:"bookmarked,omitempty"`
	Dimmed     bool     `json:"dimmed,omitempty"`
	Degree     int      `json:"degree"`
	Tags       []string `json:"tags,omitempty"`
}

// DocumentEdge is one drawn link.
type DocumentEdge struct {
	Source      int64 `json:"source"`
	Target      int64 `json:"target"`
	Highlighted bool  `json:"highlighted,omitempty"`
}

// NewDocument converts a scene into its JSON document. clusters are the
// graph's connected components.
func NewDocument(s render.Scene, tag string, clusters [][]int64) Document {
	doc := Document{
		Width:    s.Width,
		Height:   s.Height,
		Tag:      tag,
		Nodes:    make([]DocumentNode, 0, len(s.Nodes)),
		Edges:    make([]DocumentEdge, 0, len(s.Edges)),
		Clusters: clusters,
	}
	for _, n := range s.Nodes {
		if n.Selected {
			id := n.ID
			doc.Selected = &id
		}
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:         n.ID,
			Title:      n.Title,
			X:          n.X,
			Y:          n.Y,
			Bookmarked: n.Decor.Bookmarked,
			Dimmed:     n.Opacity < 1,
			Degree:     n.Degree,
			Tags:       n.Decor.Tags,
		})
	}
	for _, e := range s.Edges {
		doc.Edges = append(doc.Edges, DocumentEdge{Source: e.Source, Target: e.Target, Highlighted: e.Highlighted})
	}
	return doc
}

func writeDocument(buf *bytes.Buffer, s render.Scene, tag string, clusters [][]int64) error {
	data, err := json.MarshalIndent(NewDocument(s, tag, clusters), "", "  ")
	if err != nil {
		return err
	}
	buf.Write(data)
	buf.WriteByte('\n')
	return nil
}
