package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/mindmap/pkg/render"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme holds the colours and pre-computed styles of the map view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Info      lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	Base        lipgloss.Style
	Header      lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	Pane        lipgloss.Style

	// One style per canvas cell kind, built once instead of per frame.
	cells [render.CellPlaceholder + 1]lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Muted:     lipgloss.AdaptiveColor{Light: "#888888", Dark: "#44475A"},
		Info:      lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#6272A4"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
	}
	text := lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}

	t.Base = r.NewStyle().Foreground(text)
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.Status = r.NewStyle().Foreground(t.Secondary)
	t.StatusError = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Pane = r.NewStyle().
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		BorderForeground(t.Border).
		PaddingLeft(1)

	t.cells[render.CellEmpty] = r.NewStyle()
	t.cells[render.CellEdge] = r.NewStyle().Foreground(t.Border)
	t.cells[render.CellEdgeActive] = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.cells[render.CellEdgeDim] = r.NewStyle().Foreground(t.Muted)
	t.cells[render.CellNode] = r.NewStyle().Foreground(t.Secondary)
	t.cells[render.CellNodeSelected] = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.cells[render.CellNodeHover] = r.NewStyle().Foreground(t.Info)
	t.cells[render.CellNodeNeighbor] = r.NewStyle().Foreground(t.Primary)
	t.cells[render.CellNodeDim] = r.NewStyle().Foreground(t.Muted)
	t.cells[render.CellLabel] = t.Base
	t.cells[render.CellLabelDim] = r.NewStyle().Foreground(t.Muted)
	t.cells[render.CellBookmark] = r.NewStyle().Foreground(ThemeFg("#FFD700"))
	t.cells[render.CellBadge] = r.NewStyle().Foreground(t.Info).Bold(true)
	t.cells[render.CellTag] = r.NewStyle().Foreground(t.Secondary).Italic(true)
	t.cells[render.CellPlaceholder] = r.NewStyle().Foreground(t.Secondary).Italic(true)

	return t
}

// StyleCell colours a run of canvas cells of kind k.
func (t Theme) StyleCell(k render.CellKind, s string) string {
	if k == render.CellEmpty || int(k) >= len(t.cells) {
		return s
	}
	return t.cells[k].Render(s)
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
