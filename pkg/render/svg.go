package render

import (
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"

	"github.com/vanderheijden86/mindmap/pkg/metrics"
)

// errWriter remembers the first write error so drawing code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG draws s as a standalone SVG document.
func WriteSVG(w io.Writer, s Scene) error {
	return WriteSVGWithPalette(w, s, DefaultPalette)
}

// WriteSVGWithPalette draws s using the given colours.
func WriteSVGWithPalette(w io.Writer, s Scene, pal Palette) error {
	defer metrics.Timer(metrics.RenderSVG)()

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	width, height := float64(s.Width), float64(s.Height)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+css(pal.Background))

	if s.Empty() {
		canvas.Text(width/2, height/2, s.Placeholder,
			fmt.Sprintf("fill:%s;font-size:18px;font-family:sans-serif;text-anchor:middle", css(pal.Placeholder)))
		canvas.End()
		return ew.err
	}

	canvas.Def()
	canvas.Filter("glow", `x="-50%"`, `y="-50%"`, `width="200%"`, `height="200%"`)
	canvas.FeGaussianBlur(svg.Filterspec{Result: "coloredBlur"}, 5, 5)
	canvas.FeMerge([]string{"coloredBlur", "SourceGraphic"})
	canvas.Fend()
	canvas.DefEnd()

	canvas.Gtransform(s.Transform.String())
	for _, e := range s.Edges {
		stroke, width := pal.Edge, 2.0
		if e.Highlighted {
			stroke, width = pal.EdgeActive, 3
		}
		canvas.Line(e.X1, e.Y1, e.X2, e.Y2,
			`class="map-link"`,
			fmt.Sprintf("stroke:%s;stroke-width:%g;opacity:%.2f", css(stroke), width, e.Opacity))
	}
	for _, n := range s.Nodes {
		drawNodeSVG(canvas, n, pal)
	}
	canvas.Gend()
	canvas.End()
	return ew.err
}

func drawNodeSVG(canvas *svg.SVG, n NodeShape, pal Palette) {
	canvas.Group(
		`class="map-node"`,
		`data-id="`+strconv.FormatInt(n.ID, 10)+`"`,
		fmt.Sprintf(`transform="translate(%.2f,%.2f)"`, n.X, n.Y),
		fmt.Sprintf("opacity:%.2f", n.Opacity),
	)

	canvas.Circle(2, 2, n.Radius+2, "fill:"+css(pal.Shadow))

	fill := pal.Node
	var extra []string
	if n.Decor.HasMessages {
		fill = pal.NodeMessage
		extra = append(extra, `filter="url(#glow)"`)
	}
	stroke, strokeW := pal.NodeStroke, 1.0
	switch {
	case n.Selected:
		stroke, strokeW = pal.Selected, 3
	case n.Hovered:
		stroke, strokeW = pal.Hover, 2
	case n.Neighbor:
		stroke, strokeW = pal.Selected, 1.5
	}
	canvas.Circle(0, 0, n.Radius, append(extra,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g", css(fill), css(stroke), strokeW))...)
	canvas.Circle(0, 0, n.Radius-3, fmt.Sprintf("fill:none;stroke:%s;stroke-width:1", css(pal.InnerRing)))

	canvas.Text(0, 0, n.Label,
		fmt.Sprintf("fill:%s;font-size:12px;font-family:sans-serif;text-anchor:middle;dominant-baseline:central", css(pal.Label)))

	if n.Decor.Bookmarked {
		canvas.Text(25, -30, "★",
			fmt.Sprintf("fill:%s;font-size:14px;text-anchor:middle", css(pal.Bookmark)))
	}
	if c := n.Decor.TagCount(); c > 0 {
		canvas.Circle(25, -25, 8, fmt.Sprintf("fill:%s;stroke:white;stroke-width:1", css(pal.TagBadge)))
		canvas.Text(25, -25, strconv.Itoa(c),
			"fill:white;font-size:10px;text-anchor:middle;dominant-baseline:central")
	}
	for i, line := range n.Decor.TagLines() {
		canvas.Text(0, 55+float64(i)*15, line,
			fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;text-anchor:middle", css(pal.TagText)))
	}
	canvas.Gend()
}
