package ui

import (
	"database/sql"
	"math"
	"os"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/config"
	"github.com/vanderheijden86/mindmap/pkg/testutil"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	return newTestModelAt(t, testutil.WriteSQLite(t, testutil.SampleDataset()))
}

func newTestModelAt(t *testing.T, path string) Model {
	t.Helper()
	src, err := datasource.Open(path)
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	t.Cleanup(func() { src.Close() })

	cfg := config.DefaultConfig()
	cfg.UI.FPS = 120
	cfg.Viewport.ZoomDuration = 0
	cfg.Viewport.ResetDuration = 0
	cfg.Viewport.CenterDuration = 0

	m := NewModel(Options{Source: src, Config: cfg})
	t.Cleanup(m.Stop)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m.drain(t, m.Init())
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// drain runs cmd and every command it leads to, feeding lookup results back
// into the model. Frame ticks are dropped so the layout does not run.
func (m Model) drain(t *testing.T, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for n := 0; len(queue) > 0; n++ {
		if n > 200 {
			t.Fatal("command queue did not drain")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case LoadedMsg, TagFilterMsg, DecorationsMsg, DetailMsg:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLoadsGraph(t *testing.T) {
	m := newTestModel(t)
	g := m.MapView().Graph()
	if g.NodeCount() != 4 {
		t.Fatalf("expected 4 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
	if m.statusIsError {
		t.Fatalf("unexpected error status %q", m.statusMsg)
	}
	if !strings.Contains(m.statusMsg, "skipped") && !strings.Contains(m.statusMsg, "4 conversations") {
		t.Errorf("status should report the load, got %q", m.statusMsg)
	}
	if len(m.tags) != 3 {
		t.Errorf("expected 3 tag names, got %v", m.tags)
	}
	if _, ok := m.MapView().Decoration(2); !ok {
		t.Error("decorations were not applied")
	}
}

func TestModelViewShowsCounts(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	if !strings.Contains(out, "4 conversations") {
		t.Errorf("header missing node count:\n%s", out)
	}
	if !strings.Contains(out, "2 links") {
		t.Errorf("header missing link count:\n%s", out)
	}
	if !strings.Contains(out, "2 clusters") {
		t.Errorf("header missing cluster count:\n%s", out)
	}
}

func TestModelOpenDetail(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	id, ok := m.MapView().Selected()
	if !ok {
		t.Fatal("tab should select a node")
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.showDetail {
		t.Fatal("enter should open the detail pane")
	}
	m = m.drain(t, cmd)

	if m.detail.detail == nil {
		t.Fatal("detail was not loaded")
	}
	if m.detail.detail.Conversation.ID != id {
		t.Errorf("detail shows %d, want %d", m.detail.detail.Conversation.ID, id)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showDetail {
		t.Error("esc should close the detail pane")
	}
	if _, ok := m.MapView().Selected(); ok {
		t.Error("esc should clear the selection")
	}
}

func TestModelDropsStaleDetail(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// Close before the lookup returns.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = m.drain(t, cmd)

	if m.detail.detail != nil {
		t.Error("stale detail result should be dropped")
	}
	if _, ok := m.detail.Showing(); ok {
		t.Error("pane should be empty")
	}
}

func TestModelTagPicker(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(t, m, runes("t"))
	if !m.showPicker {
		t.Fatal("t should open the tag picker")
	}
	m, _ = press(t, m, runes("w"))
	m, _ = press(t, m, runes("o"))
	if got := m.picker.SelectedTag(); got != "work" {
		t.Fatalf("expected picker to select work, got %q", got)
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.showPicker {
		t.Error("enter should close the picker")
	}
	m = m.drain(t, cmd)

	proj := m.MapView().Projection()
	if proj.Tag() != "work" {
		t.Fatalf("expected projection work, got %q", proj.Tag())
	}
	if proj.Count() != 2 {
		t.Errorf("expected 2 members, got %d", proj.Count())
	}
	if !strings.Contains(m.View(), "#work") {
		t.Error("header should show the active tag")
	}

	m, _ = press(t, m, runes("T"))
	if !m.MapView().Projection().Identity() {
		t.Error("T should clear the tag filter")
	}
}

func TestModelTagPickerEscape(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, runes("t"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showPicker {
		t.Error("esc should close the picker")
	}
	if !m.MapView().Projection().Identity() {
		t.Error("cancelled picker must not filter")
	}
}

func TestModelZoomKeysAndWheel(t *testing.T) {
	m := newTestModel(t)
	vp := m.MapView().Viewport()

	m, _ = press(t, m, runes("+"))
	if k := vp.Transform().K; k <= 1 {
		t.Errorf("zoom in should raise the scale, got %v", k)
	}
	m, _ = press(t, m, runes("0"))
	if k := vp.Transform().K; k != 1 {
		t.Errorf("reset should restore scale 1, got %v", k)
	}

	m = update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if k := vp.Transform().K; k <= 1 {
		t.Errorf("wheel up should zoom in, got %v", k)
	}
	m = update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	m = update(t, m, tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if k := vp.Transform().K; k >= 1 {
		t.Errorf("wheel down should zoom out, got %v", k)
	}
}

func TestModelPanKeys(t *testing.T) {
	m := newTestModel(t)
	before := m.MapView().Viewport().Transform()
	m, _ = press(t, m, runes("l"))
	after := m.MapView().Viewport().Transform()
	if after.X >= before.X {
		t.Errorf("pan right should move the map left: %v -> %v", before.X, after.X)
	}
	if after.K != before.K {
		t.Error("panning must not change the scale")
	}
}

func TestModelReloadWithoutChanges(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(FileChangedMsg{})
	m = next.(Model).drain(t, cmd)
	if !strings.Contains(m.statusMsg, "no changes") {
		t.Errorf("expected no-changes status, got %q", m.statusMsg)
	}
	if m.MapView().Graph().NodeCount() != 4 {
		t.Error("graph should be unchanged")
	}
}

func TestModelReloadPicksUpNewTags(t *testing.T) {
	path := testutil.WriteSQLite(t, testutil.SampleDataset())
	m := newTestModelAt(t, path)
	if slices.Contains(m.tags, "newtag") {
		t.Fatal("newtag should not exist yet")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO Tags (name, conversation_id) VALUES ('newtag', 3)`); err != nil {
		t.Fatalf("insert tag: %v", err)
	}
	db.Close()

	next, cmd := m.Update(FileChangedMsg{})
	m = next.(Model).drain(t, cmd)
	if !slices.Contains(m.tags, "newtag") {
		t.Errorf("tags after reload = %v, want newtag", m.tags)
	}
	if m.picker.FilteredCount() != 4 {
		t.Errorf("picker lists %d tags, want 4", m.picker.FilteredCount())
	}
	d, ok := m.MapView().Decoration(3)
	if !ok || !slices.Contains(d.Tags, "newtag") {
		t.Errorf("decoration of 3 = %+v, want newtag", d)
	}
	if strings.Contains(m.statusMsg, "no changes") {
		t.Errorf("status should report the tag change, got %q", m.statusMsg)
	}
}

func TestModelCopyWithoutSelection(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, runes("y"))
	if m.statusMsg != "Nothing selected" {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	found := false
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			found = true
		}
	}
	if !found {
		t.Error("q should quit")
	}
}

func TestModelResizeWithDetail(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	cols, _ := m.canvas.Size()
	if cols != 100-m.detailWidth() {
		t.Errorf("canvas should shrink for the detail pane, got %d cols", cols)
	}
	w, _ := m.MapView().Size()
	if int(w) != cols*8 {
		t.Errorf("view width %v does not match canvas", w)
	}
}

func TestModelClickOpensDetail(t *testing.T) {
	m := newTestModel(t)
	v := m.MapView()
	v.Settle(300)

	pos, ok := v.Simulation().Position(1)
	if !ok {
		t.Fatal("node 1 has no position")
	}
	sx, sy := v.Viewport().ToScreen(pos.X, pos.Y)
	col, row := int(sx)/8, int(sy)/16
	cols, rows := m.canvas.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		t.Skipf("node 1 settled off screen at (%v, %v)", sx, sy)
	}

	m = update(t, m, tea.MouseMsg{X: col, Y: row + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	next, cmd := m.Update(tea.MouseMsg{X: col, Y: row + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if !m.showDetail {
		t.Fatal("clicking a node should open the detail pane")
	}
	if id, ok := v.Selected(); !ok || id != 1 {
		t.Errorf("selected = (%d, %v), want node 1", id, ok)
	}
	hl := v.Interaction().HighlightedEdges()
	if len(hl) != 1 || !v.Graph().Edges()[hl[0]].Touches(1) {
		t.Errorf("expected the 1-2 link highlighted, got %v", hl)
	}
	pos, _ = v.Simulation().Position(1)
	target := v.Viewport().Target()
	cx, cy := target.Apply(pos.X, pos.Y)
	w, h := v.Size()
	if math.Abs(cx-w/2) > 1e-6 || math.Abs(cy-h/2) > 1e-6 {
		t.Errorf("node 1 lands at (%v, %v), want the centre (%v, %v)", cx, cy, w/2, h/2)
	}
	if target.K != v.Viewport().Options().CenterScale {
		t.Errorf("scale = %v, want %v", target.K, v.Viewport().Options().CenterScale)
	}
	m = m.drain(t, cmd)
	if m.detail.detail == nil || m.detail.detail.Conversation.ID != 1 {
		t.Errorf("expected detail of node 1, got %+v", m.detail.detail)
	}
}

func TestModelMotionHovers(t *testing.T) {
	m := newTestModel(t)
	v := m.MapView()
	v.Settle(300)

	pos, _ := v.Simulation().Position(4)
	sx, sy := v.Viewport().ToScreen(pos.X, pos.Y)
	col, row := int(sx)/8, int(sy)/16
	cols, rows := m.canvas.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		t.Skipf("node 4 settled off screen at (%v, %v)", sx, sy)
	}

	m = update(t, m, tea.MouseMsg{X: col, Y: row + 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	if id, ok := v.Interaction().Hovered(); !ok || id != 4 {
		t.Errorf("hovered = (%d, %v), want node 4", id, ok)
	}
	if m.showDetail {
		t.Error("hovering must not open the detail pane")
	}
}

func TestModelExportKey(t *testing.T) {
	m := newTestModel(t)
	t.Chdir(t.TempDir())

	m, cmd := press(t, m, runes("e"))
	var done *exportedMsg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case exportedMsg:
			done = &msg
		}
	}
	if done == nil {
		t.Fatal("e should export the map")
	}
	if done.err != nil {
		t.Fatalf("export failed: %v", done.err)
	}
	m = update(t, m, *done)
	if !strings.HasPrefix(m.statusMsg, "Exported mindmap-") {
		t.Errorf("unexpected status %q", m.statusMsg)
	}
	b, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(b), "<svg") {
		t.Error("export is not an SVG document")
	}
}
