// Package ui is the terminal host of the mind map. It mounts a
// mindmap.View on a render.TextCanvas and drives it from bubbletea:
// keyboard and mouse input become view operations, lookups run as
// commands, and frame ticks are scheduled only while something moves.
package ui

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/config"
	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/lookup"
	"github.com/vanderheijden86/mindmap/pkg/mindmap"
	"github.com/vanderheijden86/mindmap/pkg/render"
	"github.com/vanderheijden86/mindmap/pkg/watcher"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// wheelNotch is the pixel delta of one terminal wheel step.
	wheelNotch = 100
	// panFraction is how much of the canvas one pan key moves.
	panFraction = 0.125
)

// Options configures a Model.
type Options struct {
	Source  datasource.Source
	Config  config.Config
	Watcher *watcher.Watcher // nil disables reloads
	Clock   func() time.Time
}

// activation is written by the view's activate callback and read after
// each pointer event.
type activation struct {
	id  int64
	set bool
}

// Model is the bubbletea model of the map view.
type Model struct {
	src     datasource.Source
	cfg     config.Config
	view    *mindmap.View
	canvas  *render.TextCanvas
	watcher *watcher.Watcher
	clock   func() time.Time
	ctx     context.Context
	cancel  context.CancelFunc

	theme  Theme
	keys   KeyMap
	help   help.Model
	picker TagPickerModel
	detail DetailPane

	width, height int
	showPicker    bool
	showDetail    bool
	ticking       bool
	loaded        bool

	snapshot  datasource.Snapshot
	tags      []string
	clusters  int
	activated *activation

	statusMsg     string
	statusIsError bool
}

// NewModel creates the map view over opts.Source.
func NewModel(opts Options) Model {
	cfg := opts.Config
	renderer := lipgloss.NewRenderer(os.Stdout)
	renderer.SetHasDarkBackground(cfg.UI.Theme != "light")
	theme := DefaultTheme(renderer)

	canvas := render.NewTextCanvas(defaultWidth, defaultHeight-2)
	pw, ph := canvas.PixelSize()

	viewOpts := []mindmap.ViewOption{
		mindmap.WithLayout(cfg.TuneLayout),
		mindmap.WithViewport(cfg.ViewportOptions()),
		mindmap.WithPreservePositions(cfg.Layout.PreservePositions),
		mindmap.WithTagDim(cfg.Render.TagDim),
		mindmap.WithLoader(lookup.NewLoader(opts.Source, 0)),
	}
	if opts.Clock != nil {
		viewOpts = append(viewOpts, mindmap.WithClock(opts.Clock))
	}
	v := mindmap.Mount(canvas, float64(pw), float64(ph), viewOpts...)

	act := &activation{}
	v.OnActivate(func(id int64) { act.id, act.set = id, true })

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		src:       opts.Source,
		cfg:       cfg,
		view:      v,
		canvas:    canvas,
		watcher:   opts.Watcher,
		clock:     opts.Clock,
		ctx:       ctx,
		cancel:    cancel,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		picker:    NewTagPickerModel(nil, theme),
		detail:    NewDetailPane(cfg.UI.Theme != "light"),
		width:     defaultWidth,
		height:    defaultHeight,
		activated: act,
	}
	m.resize()
	return m
}

// MapView returns the mounted mind-map view.
func (m Model) MapView() *mindmap.View { return m.view }

// Stop cancels pending lookups and stops the file watcher.
func (m Model) Stop() {
	m.cancel()
	m.view.Guard().InvalidateAll()
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd(false)}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.picker.SetSize(msg.Width, msg.Height-2)
		m.resize()

	case LoadedMsg:
		cmds = append(cmds, m.applyLoaded(msg)...)

	case FileChangedMsg:
		cmds = append(cmds, m.loadCmd(true))

	case frameMsg:
		m.ticking = false
		if _, err := m.view.Frame(msg.at); err != nil {
			m.setError(err.Error())
		}

	case TagFilterMsg:
		if m.view.ApplyTagFilter(msg.Result) {
			m.setStatus(fmt.Sprintf("Filtered by #%s: %d conversations", msg.Result.Tag, m.view.Projection().Count()))
		}
		m.redraw()

	case DecorationsMsg:
		if m.view.ApplyDecorations(msg.Result) {
			m.redraw()
		}

	case DetailMsg:
		m.applyDetail(msg)

	case exportedMsg:
		if msg.err != nil {
			m.setError("Export failed: " + msg.err.Error())
		} else {
			m.setStatus("Exported " + msg.path)
		}

	case tea.KeyMsg:
		if m.showPicker {
			cmds = append(cmds, m.handlePickerKeys(msg))
			break
		}
		cmd := m.handleKeys(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		if cmd := m.handleMouse(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if cmd := m.ensureTicking(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applyLoaded(msg LoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if msg.Reload && m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	if msg.Err != nil {
		m.setError("Load failed: " + msg.Err.Error())
		return cmds
	}

	if msg.Reload && m.loaded {
		diff := datasource.Diff(m.snapshot, msg.Snapshot)
		if !diff.HasChanges() {
			// Tags live outside the snapshot and may still have changed.
			if slices.Equal(m.tags, msg.Tags) {
				m.setStatus("Database changed: no changes to the map")
			} else {
				m.setStatus(fmt.Sprintf("Reloaded: %d tags", len(msg.Tags)))
			}
			m.setTags(msg.Tags)
			cmds = append(cmds, m.refreshLookups()...)
			m.redraw()
			return cmds
		}
		m.setStatus("Reloaded: " + diff.Summary())
	}

	m.snapshot = msg.Snapshot
	m.setTags(msg.Tags)
	rep := m.view.Load(msg.Snapshot.Conversations, msg.Snapshot.Links)
	m.clusters = len(m.view.Graph().Components())
	m.loaded = true
	if rep.Skipped() > 0 {
		m.setStatus(fmt.Sprintf("Loaded %d conversations (%s)", m.view.Graph().NodeCount(), rep))
	} else if !msg.Reload {
		m.setStatus(fmt.Sprintf("Loaded %d conversations", m.view.Graph().NodeCount()))
	}

	cmds = append(cmds, m.refreshLookups()...)
	if id, ok := m.detail.Showing(); ok && m.showDetail {
		if m.view.Graph().Has(id) {
			cmds = append(cmds, m.openDetail(id))
		} else {
			m.closeDetail()
		}
	}
	m.redraw()
	return cmds
}

func (m *Model) setTags(tags []string) {
	m.tags = tags
	m.picker.SetTags(tags)
}

// refreshLookups re-requests node decorations and the active tag filter.
func (m *Model) refreshLookups() []tea.Cmd {
	var cmds []tea.Cmd
	if task := m.view.RequestDecorations(); task != nil {
		cmds = append(cmds, decorationsCmd(m.ctx, task))
	}
	if tag := m.view.Projection().Tag(); tag != "" {
		if task := m.view.RequestTagFilter(tag); task != nil {
			cmds = append(cmds, tagFilterCmd(m.ctx, task))
		}
	}
	return cmds
}

func (m *Model) applyDetail(msg DetailMsg) {
	if !m.view.Guard().Valid(msg.Token) {
		debug.Log("ui: dropping stale detail for %d", msg.ID)
		return
	}
	if msg.Err != nil {
		m.detail.Clear()
		m.setError(fmt.Sprintf("Conversation %d: %v", msg.ID, msg.Err))
		return
	}
	m.detail.Set(msg.Detail)
}

func (m *Model) handleKeys(msg tea.KeyMsg) tea.Cmd {
	pw, ph := m.canvas.PixelSize()
	panX, panY := float64(pw)*panFraction, float64(ph)*panFraction

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.ZoomIn):
		m.view.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.view.ZoomOut()
	case key.Matches(msg, m.keys.Reset):
		m.view.ResetView()
	case key.Matches(msg, m.keys.Up):
		m.view.Viewport().Pan(0, panY)
	case key.Matches(msg, m.keys.Down):
		m.view.Viewport().Pan(0, -panY)
	case key.Matches(msg, m.keys.Left):
		m.view.Viewport().Pan(panX, 0)
	case key.Matches(msg, m.keys.Right):
		m.view.Viewport().Pan(-panX, 0)
	case key.Matches(msg, m.keys.Next), key.Matches(msg, m.keys.Prev):
		delta := 1
		if key.Matches(msg, m.keys.Prev) {
			delta = -1
		}
		if id, ok := m.view.SelectNext(delta); ok && m.showDetail {
			return m.openDetail(id)
		}
	case key.Matches(msg, m.keys.Open):
		if id, ok := m.view.Selected(); ok {
			return m.openDetail(id)
		}
	case key.Matches(msg, m.keys.Close):
		if m.showDetail {
			m.closeDetail()
		}
		m.view.Deselect()
	case key.Matches(msg, m.keys.Center):
		if id, ok := m.view.Selected(); ok {
			m.view.CenterOn(id)
		}
	case key.Matches(msg, m.keys.Tags):
		if len(m.tags) == 0 {
			m.setStatus("No tags in this database")
			break
		}
		m.picker.Reset()
		m.showPicker = true
	case key.Matches(msg, m.keys.ClearTag):
		m.view.ClearTagFilter()
		m.setStatus("Tag filter cleared")
	case key.Matches(msg, m.keys.Restart):
		m.view.Restart()
	case key.Matches(msg, m.keys.Stop):
		m.view.Stop()
		m.setStatus("Layout frozen")
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.Export):
		name := fmt.Sprintf("mindmap-%s.svg", m.now().Format("20060102-150405"))
		return exportCmd(m.view.Scene(), name)
	case key.Matches(msg, m.keys.Scroll):
		if msg.String() == "pgdown" {
			m.detail.ScrollDown(m.canvasRows() / 2)
		} else {
			m.detail.ScrollUp(m.canvasRows() / 2)
		}
	}
	m.redraw()
	return nil
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.showPicker = false
	case "down", "ctrl+n":
		m.picker.MoveDown()
	case "up", "ctrl+p":
		m.picker.MoveUp()
	case "enter":
		m.showPicker = false
		tag := m.picker.SelectedTag()
		if tag == "" {
			return nil
		}
		m.setStatus("Filtering by #" + tag + "…")
		if task := m.view.RequestTagFilter(tag); task != nil {
			return tagFilterCmd(m.ctx, task)
		}
	default:
		m.picker.UpdateInput(msg)
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	col, row := msg.X, msg.Y-1
	cols, rows := m.canvas.Size()
	if m.showPicker || col < 0 || row < 0 || col >= cols || row >= rows {
		return nil
	}
	x := float64(col*render.CellWidth + render.CellWidth/2)
	y := float64(row*render.CellHeight + render.CellHeight/2)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.view.PointerDown(x, y)
		case tea.MouseButtonWheelUp:
			m.view.Wheel(x, y, -wheelNotch)
		case tea.MouseButtonWheelDown:
			m.view.Wheel(x, y, wheelNotch)
		}
	case tea.MouseActionMotion:
		m.view.PointerMove(x, y)
	case tea.MouseActionRelease:
		m.view.PointerUp(x, y)
	}
	m.redraw()

	if m.activated.set {
		id := m.activated.id
		m.activated.set = false
		m.view.Select(id)
		return m.openDetail(id)
	}
	return nil
}

// openDetail shows the pane and starts loading conversation id into it.
func (m *Model) openDetail(id int64) tea.Cmd {
	if !m.showDetail {
		m.showDetail = true
		m.resize()
	}
	m.detail.Loading(id)
	tok := m.view.Guard().Begin(lookup.KeyDetail)
	return detailCmd(m.ctx, m.src, tok, id)
}

func (m *Model) closeDetail() {
	m.view.Guard().Invalidate(lookup.KeyDetail)
	m.showDetail = false
	m.detail.Clear()
	m.resize()
}

func (m *Model) copySelected() {
	id, ok := m.view.Selected()
	if !ok {
		m.setStatus("Nothing selected")
		return
	}
	n, _ := m.view.Graph().Node(id)
	if err := clipboard.WriteAll(n.Title); err != nil {
		m.setError("Clipboard error: " + err.Error())
		return
	}
	m.setStatus(fmt.Sprintf("Copied %q", render.Truncate(n.Title, 40)))
}

// ensureTicking schedules the next frame while the view is moving.
func (m *Model) ensureTicking() tea.Cmd {
	if m.ticking || !m.view.Active() {
		return nil
	}
	m.ticking = true
	return frameCmd(m.cfg.UI.FPS)
}

func (m Model) now() time.Time {
	if m.clock != nil {
		return m.clock()
	}
	return time.Now()
}

func (m *Model) setStatus(s string) { m.statusMsg, m.statusIsError = s, false }
func (m *Model) setError(s string)  { m.statusMsg, m.statusIsError = s, true }

func (m *Model) redraw() {
	if err := m.view.Draw(); err != nil {
		m.setError(err.Error())
	}
}

func (m Model) detailWidth() int {
	if !m.showDetail {
		return 0
	}
	ratio := m.cfg.UI.DetailRatio
	if ratio <= 0 {
		ratio = 0.4
	}
	return max(int(float64(m.width)*ratio), 20)
}

func (m Model) footerHeight() int {
	if m.help.ShowAll {
		return 1 + len(m.keys.FullHelp()[0])
	}
	return 1
}

func (m Model) canvasRows() int {
	return max(m.height-1-m.footerHeight(), 1)
}

// resize fits the canvas and the view to the terminal.
func (m *Model) resize() {
	cols := max(m.width-m.detailWidth(), 1)
	rows := m.canvasRows()
	m.canvas.Resize(cols, rows)
	pw, ph := m.canvas.PixelSize()
	m.view.Resize(float64(pw), float64(ph))
	m.detail.SetSize(max(m.detailWidth()-2, 1), rows)
	m.help.Width = m.width
	m.redraw()
}

func (m Model) View() string {
	header := m.renderHeader()

	var body string
	if m.showPicker {
		m.picker.SetSize(m.width, m.canvasRows())
		body = m.picker.View()
	} else {
		body = m.canvas.Styled(m.theme.StyleCell)
		if m.showDetail {
			pane := m.theme.Pane.Width(m.detailWidth() - 1).Height(m.canvasRows()).Render(m.detail.View())
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, pane)
		}
	}

	return header + "\n" + body + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	g := m.view.Graph()
	parts := []string{"mm", fmt.Sprintf("%d conversations", g.NodeCount()), fmt.Sprintf("%d links", g.EdgeCount())}
	if m.clusters > 1 {
		parts = append(parts, fmt.Sprintf("%d clusters", m.clusters))
	}
	if tag := m.view.Projection().Tag(); tag != "" {
		parts = append(parts, fmt.Sprintf("#%s (%d)", tag, m.view.Projection().Count()))
	}
	parts = append(parts, fmt.Sprintf("zoom %d%%", int(m.view.Viewport().Transform().K*100+0.5)))
	if m.view.Active() {
		parts = append(parts, "laying out…")
	}
	return m.theme.Header.Width(m.width).Render(strings.Join(parts, " · "))
}

func (m Model) renderFooter() string {
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}
	if m.statusMsg != "" {
		style := m.theme.Status
		if m.statusIsError {
			style = m.theme.StatusError
		}
		return style.Render(render.Truncate(m.statusMsg, max(m.width, 1)))
	}
	return m.help.View(m.keys)
}
