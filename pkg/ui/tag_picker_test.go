package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(p *TagPickerModel, s string) {
	for _, r := range s {
		p.UpdateInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewTagPickerModelSortsTags(t *testing.T) {
	picker := NewTagPickerModel([]string{"zebra", "api", "backend"}, TestTheme())
	if picker.FilteredCount() != 3 {
		t.Fatalf("expected 3 tags, got %d", picker.FilteredCount())
	}
	if got := picker.SelectedTag(); got != "api" {
		t.Errorf("expected first tag api, got %q", got)
	}
}

func TestTagPickerFiltering(t *testing.T) {
	picker := NewTagPickerModel([]string{"work", "homework", "ideas"}, TestTheme())
	typeInto(&picker, "work")

	if picker.InputValue() != "work" {
		t.Fatalf("input not updated: %q", picker.InputValue())
	}
	if picker.FilteredCount() != 2 {
		t.Errorf("expected 2 matches, got %d", picker.FilteredCount())
	}
	if got := picker.SelectedTag(); got != "work" {
		t.Errorf("exact match should rank first, got %q", got)
	}
}

func TestTagPickerNoMatch(t *testing.T) {
	picker := NewTagPickerModel([]string{"work"}, TestTheme())
	typeInto(&picker, "xyz")
	if picker.FilteredCount() != 0 {
		t.Errorf("expected no matches, got %d", picker.FilteredCount())
	}
	if picker.SelectedTag() != "" {
		t.Error("nothing should be selected")
	}
	if !strings.Contains(picker.View(), "No matching tags") {
		t.Error("view should say nothing matches")
	}
}

func TestTagPickerNavigation(t *testing.T) {
	picker := NewTagPickerModel([]string{"a", "b", "c"}, TestTheme())
	picker.MoveUp()
	if picker.SelectedTag() != "a" {
		t.Error("MoveUp at top should stay put")
	}
	picker.MoveDown()
	picker.MoveDown()
	picker.MoveDown()
	if picker.SelectedTag() != "c" {
		t.Errorf("MoveDown should stop at the end, got %q", picker.SelectedTag())
	}
	picker.Reset()
	if picker.SelectedTag() != "a" || picker.InputValue() != "" {
		t.Error("Reset should clear the query and selection")
	}
}

func TestTagPickerSetTags(t *testing.T) {
	picker := NewTagPickerModel(nil, TestTheme())
	if picker.FilteredCount() != 0 {
		t.Fatal("empty picker should have no tags")
	}
	picker.SetTags([]string{"home", "away"})
	if picker.FilteredCount() != 2 || picker.SelectedTag() != "away" {
		t.Errorf("unexpected tags after SetTags: %d %q", picker.FilteredCount(), picker.SelectedTag())
	}
}

func TestTagPickerViewLongList(t *testing.T) {
	var tags []string
	for _, c := range "abcdefghijklmnop" {
		tags = append(tags, string(c)+"-tag")
	}
	picker := NewTagPickerModel(tags, TestTheme())
	picker.SetSize(80, 30)
	for range 12 {
		picker.MoveDown()
	}
	out := picker.View()
	if !strings.Contains(out, "(13/16)") {
		t.Errorf("expected position indicator in view:\n%s", out)
	}
	if !strings.Contains(out, "#m-tag") {
		t.Error("selected tag should be visible")
	}
}
