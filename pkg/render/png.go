package render

import (
	"io"
	"strconv"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/mindmap/pkg/metrics"
)

// WritePNG rasterises s.
func WritePNG(w io.Writer, s Scene) error {
	return WritePNGWithPalette(w, s, DefaultPalette)
}

// WritePNGWithPalette rasterises s using the given colours.
func WritePNGWithPalette(w io.Writer, s Scene, pal Palette) error {
	defer metrics.Timer(metrics.RenderPNG)()

	width, height := max(s.Width, 1), max(s.Height, 1)
	dc := gg.NewContext(width, height)
	dc.SetColor(pal.Background)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if s.Empty() {
		dc.SetColor(pal.Placeholder)
		dc.DrawStringAnchored(s.Placeholder, float64(width)/2, float64(height)/2, 0.5, 0.5)
		return dc.EncodePNG(w)
	}

	dc.Push()
	dc.Translate(s.Transform.X, s.Transform.Y)
	dc.Scale(s.Transform.K, s.Transform.K)

	for _, e := range s.Edges {
		c, lw := pal.Edge, 2.0
		if e.Highlighted {
			c, lw = pal.EdgeActive, 3
		}
		dc.SetColor(fade(c, e.Opacity))
		dc.SetLineWidth(lw)
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}
	for _, n := range s.Nodes {
		drawNodePNG(dc, n, pal)
	}
	dc.Pop()
	return dc.EncodePNG(w)
}

func drawNodePNG(dc *gg.Context, n NodeShape, pal Palette) {
	op := n.Opacity

	dc.SetColor(fade(pal.Shadow, op))
	dc.DrawCircle(n.X+2, n.Y+2, n.Radius+2)
	dc.Fill()

	fill := pal.Node
	if n.Decor.HasMessages {
		// no blur filter in raster output; a wider halo stands in for the glow
		dc.SetColor(fade(pal.NodeMessage, op*0.35))
		dc.DrawCircle(n.X, n.Y, n.Radius+6)
		dc.Fill()
		fill = pal.NodeMessage
	}
	dc.SetColor(fade(fill, op))
	dc.DrawCircle(n.X, n.Y, n.Radius)
	dc.Fill()

	stroke, lw := pal.NodeStroke, 1.0
	switch {
	case n.Selected:
		stroke, lw = pal.Selected, 3
	case n.Hovered:
		stroke, lw = pal.Hover, 2
	}
	dc.SetColor(fade(stroke, op))
	dc.SetLineWidth(lw)
	dc.DrawCircle(n.X, n.Y, n.Radius)
	dc.Stroke()

	dc.SetColor(fade(pal.InnerRing, op))
	dc.SetLineWidth(1)
	dc.DrawCircle(n.X, n.Y, n.Radius-3)
	dc.Stroke()

	dc.SetColor(fade(pal.Label, op))
	dc.DrawStringAnchored(n.Label, n.X, n.Y, 0.5, 0.5)

	if n.Decor.Bookmarked {
		// basicfont has no star glyph
		dc.SetColor(fade(pal.Bookmark, op))
		dc.DrawStringAnchored("*", n.X+25, n.Y-30, 0.5, 0.5)
	}
	if c := n.Decor.TagCount(); c > 0 {
		dc.SetColor(fade(pal.TagBadge, op))
		dc.DrawCircle(n.X+25, n.Y-25, 8)
		dc.Fill()
		dc.SetColor(fade(pal.Label, op))
		dc.DrawStringAnchored(strconv.Itoa(c), n.X+25, n.Y-25, 0.5, 0.5)
	}
	dc.SetColor(fade(pal.TagText, op))
	for i, line := range n.Decor.TagLines() {
		dc.DrawStringAnchored(line, n.X, n.Y+55+float64(i)*15, 0.5, 0.5)
	}
}
