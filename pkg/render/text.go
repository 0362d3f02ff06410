package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/mindmap/pkg/metrics"
)

// One terminal cell covers this many screen pixels.
const (
	CellWidth  = 8
	CellHeight = 16
)

// dimBelow is the opacity under which a shape is drawn in the dimmed style.
const dimBelow = 0.5

// CellKind tells a terminal host how to colour a cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellEdge
	CellEdgeActive
	CellEdgeDim
	CellNode
	CellNodeSelected
	CellNodeHover
	CellNodeNeighbor
	CellNodeDim
	CellLabel
	CellLabelDim
	CellBookmark
	CellBadge
	CellTag
	CellPlaceholder
)

// Cell is one character of the grid. A wide rune occupies two cells; the
// second holds rune 0.
type Cell struct {
	Rune rune
	Kind CellKind
}

// TextCanvas draws scenes onto a grid of terminal cells.
type TextCanvas struct {
	cols, rows int
	cells      []Cell
}

// NewTextCanvas creates a canvas of cols x rows cells.
func NewTextCanvas(cols, rows int) *TextCanvas {
	c := &TextCanvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears it.
func (c *TextCanvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.cells = make([]Cell, c.cols*c.rows)
	c.clear()
}

// Size returns the grid size in cells.
func (c *TextCanvas) Size() (cols, rows int) { return c.cols, c.rows }

// PixelSize returns the screen size the grid stands for.
func (c *TextCanvas) PixelSize() (width, height int) {
	return c.cols * CellWidth, c.rows * CellHeight
}

// Cell returns the cell at (col, row).
func (c *TextCanvas) Cell(col, row int) Cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return Cell{Rune: ' '}
	}
	return c.cells[row*c.cols+col]
}

func (c *TextCanvas) clear() {
	for i := range c.cells {
		c.cells[i] = Cell{Rune: ' '}
	}
}

// set writes one cell. A rune 0 marks the second half of a wide rune; when
// either half of a wide rune is overwritten the other half becomes a blank so
// every row keeps its width.
func (c *TextCanvas) set(col, row int, r rune, k CellKind) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	i := row*c.cols + col
	old := c.cells[i]
	if old.Rune == 0 && r != 0 && col > 0 {
		c.cells[i-1] = Cell{Rune: ' ', Kind: c.cells[i-1].Kind}
	}
	if old.Rune != 0 && runewidth.RuneWidth(old.Rune) == 2 && col+1 < c.cols && c.cells[i+1].Rune == 0 {
		c.cells[i+1] = Cell{Rune: ' '}
	}
	c.cells[i] = Cell{Rune: r, Kind: k}
}

func (c *TextCanvas) setIfEmpty(col, row int, r rune, k CellKind) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	if c.cells[row*c.cols+col].Kind != CellEmpty {
		return
	}
	c.set(col, row, r, k)
}

// text writes s starting at (col, row), honouring wide runes.
func (c *TextCanvas) text(col, row int, s string, k CellKind) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		c.set(col, row, r, k)
		if w == 2 {
			c.set(col+1, row, 0, k)
		}
		col += w
	}
}

// Draw renders s onto the grid. It implements Surface.
func (c *TextCanvas) Draw(s Scene) error {
	defer metrics.Timer(metrics.RenderText)()

	c.clear()
	if s.Empty() {
		w := runewidth.StringWidth(s.Placeholder)
		msg := s.Placeholder
		if w > c.cols {
			msg = runewidth.Truncate(msg, c.cols, "...")
			w = runewidth.StringWidth(msg)
		}
		c.text((c.cols-w)/2, c.rows/2, msg, CellPlaceholder)
		return nil
	}

	// nodes first so edges only fill the gaps between them
	for _, n := range s.Nodes {
		c.drawNode(s, n)
	}
	for _, e := range s.Edges {
		c.drawEdge(s, e)
	}
	return nil
}

func (c *TextCanvas) cellOf(s Scene, x, y float64) (int, int) {
	sx, sy := s.Transform.Apply(x, y)
	return int(math.Floor(sx / CellWidth)), int(math.Floor(sy / CellHeight))
}

func (c *TextCanvas) drawEdge(s Scene, e EdgeShape) {
	x0, y0 := c.cellOf(s, e.X1, e.Y1)
	x1, y1 := c.cellOf(s, e.X2, e.Y2)
	kind := CellEdge
	switch {
	case e.Highlighted:
		kind = CellEdgeActive
	case e.Opacity < dimBelow:
		kind = CellEdgeDim
	}
	r := edgeRune(x1-x0, y1-y0, e.Highlighted)

	// Bresenham
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.setIfEmpty(x0, y0, r, kind)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// edgeRune picks a line character for a cell-space direction. Cells are
// twice as tall as wide, which the slope thresholds account for.
func edgeRune(dx, dy int, active bool) rune {
	adx, ady := math.Abs(float64(dx)), math.Abs(float64(dy))*2
	switch {
	case ady <= adx*0.5:
		if active {
			return '━'
		}
		return '─'
	case adx <= ady*0.5:
		if active {
			return '┃'
		}
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *TextCanvas) drawNode(s Scene, n NodeShape) {
	col, row := c.cellOf(s, n.X, n.Y)
	dim := n.Opacity < dimBelow

	label := n.Label
	lw := runewidth.StringWidth(label)
	inner := lw + 2
	left := col - inner/2 - 1
	right := left + inner + 1

	kind := CellNode
	switch {
	case n.Selected:
		kind = CellNodeSelected
	case n.Hovered:
		kind = CellNodeHover
	case n.Neighbor && !dim:
		kind = CellNodeNeighbor
	case dim:
		kind = CellNodeDim
	}
	tl, tr, bl, br, h, v := boxRunes(n.Selected)

	c.set(left, row-1, tl, kind)
	c.set(right, row-1, tr, kind)
	c.set(left, row+1, bl, kind)
	c.set(right, row+1, br, kind)
	for x := left + 1; x < right; x++ {
		c.set(x, row-1, h, kind)
		c.set(x, row+1, h, kind)
		c.set(x, row, ' ', kind)
	}
	c.set(left, row, v, kind)
	c.set(right, row, v, kind)

	labelKind := CellLabel
	if dim {
		labelKind = CellLabelDim
	}
	c.text(left+2, row, label, labelKind)

	// decorations sit on the top border
	if n.Decor.Bookmarked {
		c.text(right-2, row-1, "★", CellBookmark)
	}
	if count := n.Decor.TagCount(); count > 0 {
		c.text(left+1, row-1, "#"+strconv.Itoa(count), CellBadge)
	}
	for i, line := range n.Decor.TagLines() {
		w := runewidth.StringWidth(line)
		c.text(col-w/2, row+2+i, line, CellTag)
	}
}

func boxRunes(selected bool) (tl, tr, bl, br, h, v rune) {
	if selected {
		return '╔', '╗', '╚', '╝', '═', '║'
	}
	return '╭', '╮', '╰', '╯', '─', '│'
}

// Lines returns the grid as plain text rows.
func (c *TextCanvas) Lines() []string {
	lines := make([]string, c.rows)
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		b.Reset()
		for col := 0; col < c.cols; col++ {
			if r := c.cells[row*c.cols+col].Rune; r != 0 {
				b.WriteRune(r)
			}
		}
		lines[row] = b.String()
	}
	return lines
}

// String returns the grid as plain text.
func (c *TextCanvas) String() string {
	return strings.Join(c.Lines(), "\n")
}

// Styled renders the grid with runs of equal kind passed through style,
// which typically wraps them in terminal colour codes.
func (c *TextCanvas) Styled(style func(k CellKind, s string) string) string {
	var out strings.Builder
	var run strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		cur := CellEmpty
		run.Reset()
		for col := 0; col < c.cols; col++ {
			cell := c.cells[row*c.cols+col]
			if cell.Rune == 0 {
				continue
			}
			if cell.Kind != cur && run.Len() > 0 {
				out.WriteString(style(cur, run.String()))
				run.Reset()
			}
			cur = cell.Kind
			run.WriteRune(cell.Rune)
		}
		if run.Len() > 0 {
			out.WriteString(style(cur, run.String()))
		}
	}
	return out.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
