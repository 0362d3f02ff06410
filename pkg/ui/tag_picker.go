package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// TagPickerModel is a fuzzy search popup for choosing the tag filter.
type TagPickerModel struct {
	allTags       []string
	filtered      []string
	input         textinput.Model
	selectedIndex int
	width         int
	height        int
	theme         Theme
}

// NewTagPickerModel creates a tag picker over tags.
func NewTagPickerModel(tags []string, theme Theme) TagPickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 50
	ti.Width = 30
	ti.Focus()

	m := TagPickerModel{input: ti, theme: theme}
	m.SetTags(tags)
	return m
}

// SetSize updates the picker dimensions
func (m *TagPickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetTags replaces the available tags.
func (m *TagPickerModel) SetTags(tags []string) {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	m.allTags = sorted
	m.filterTags()
}

// MoveUp moves selection up
func (m *TagPickerModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves selection down
func (m *TagPickerModel) MoveDown() {
	if m.selectedIndex < len(m.filtered)-1 {
		m.selectedIndex++
	}
}

// SelectedTag returns the highlighted tag, or "" when nothing matches.
func (m *TagPickerModel) SelectedTag() string {
	if len(m.filtered) == 0 || m.selectedIndex >= len(m.filtered) {
		return ""
	}
	return m.filtered[m.selectedIndex]
}

// UpdateInput processes a key message for the text input
func (m *TagPickerModel) UpdateInput(msg any) {
	m.input, _ = m.input.Update(msg)
	m.filterTags()
}

// Reset clears the input and resets selection
func (m *TagPickerModel) Reset() {
	m.input.SetValue("")
	m.filterTags()
}

// InputValue returns the current input value
func (m *TagPickerModel) InputValue() string {
	return m.input.Value()
}

// FilteredCount returns the number of matching tags.
func (m *TagPickerModel) FilteredCount() int {
	return len(m.filtered)
}

// filterTags ranks tags against the query; best match first, ties alphabetical.
func (m *TagPickerModel) filterTags() {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.filtered = m.allTags
		m.selectedIndex = 0
		return
	}

	matches := fuzzy.Find(query, m.allTags)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Str < matches[j].Str
	})
	m.filtered = make([]string, len(matches))
	for i, match := range matches {
		m.filtered[i] = match.Str
	}

	m.selectedIndex = min(m.selectedIndex, len(m.filtered)-1)
	m.selectedIndex = max(m.selectedIndex, 0)
}

// View renders the picker overlay centred in the view.
func (m *TagPickerModel) View() string {
	if m.width == 0 {
		m.width = 60
	}
	if m.height == 0 {
		m.height = 20
	}

	t := m.theme
	boxWidth := max(min(40, m.width-10), 25)
	maxVisible := 10
	if m.height < 15 {
		maxVisible = max(m.height-7, 3)
	}

	var lines []string
	lines = append(lines, t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).Render("Filter by Tag"), "")

	inputStyle := t.Renderer.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Secondary).
		Padding(0, 1).
		Width(boxWidth - 6)
	lines = append(lines, inputStyle.Render(m.input.View()), "")

	dim := t.Renderer.NewStyle().Foreground(t.Secondary).Italic(true)
	if len(m.filtered) == 0 {
		lines = append(lines, dim.Render("  No matching tags"))
	} else {
		start := 0
		if m.selectedIndex >= maxVisible {
			start = m.selectedIndex - maxVisible + 1
		}
		end := min(start+maxVisible, len(m.filtered))

		for i := start; i < end; i++ {
			style := t.Base
			prefix := "  "
			if i == m.selectedIndex {
				style = t.Renderer.NewStyle().Foreground(t.Primary).Bold(true)
				prefix = "> "
			}
			name := runewidth.Truncate("#"+m.filtered[i], boxWidth-8, "...")
			lines = append(lines, style.Render(prefix+name))
		}

		if len(m.filtered) > maxVisible {
			lines = append(lines, "", dim.Render(fmt.Sprintf("  (%d/%d)", m.selectedIndex+1, len(m.filtered))))
		}
	}

	lines = append(lines, "", dim.Render("↑/↓: navigate | enter: apply | esc: cancel"))

	box := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
