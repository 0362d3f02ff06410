package ui

import (
	"bytes"
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/lookup"
	"github.com/vanderheijden86/mindmap/pkg/mindmap"
	"github.com/vanderheijden86/mindmap/pkg/model"
	"github.com/vanderheijden86/mindmap/pkg/render"
	"github.com/vanderheijden86/mindmap/pkg/watcher"
)

// LoadedMsg carries a fresh read of the data source.
type LoadedMsg struct {
	Snapshot datasource.Snapshot
	Tags     []string
	Err      error
	Reload   bool // triggered by a file change
}

// FileChangedMsg is sent when the database changes on disk
type FileChangedMsg struct{}

// TagFilterMsg carries a tag membership lookup back to the view.
type TagFilterMsg struct {
	Result mindmap.TagFilterResult
}

// DecorationsMsg carries node decorations back to the view.
type DecorationsMsg struct {
	Result mindmap.DecorationsResult
}

// DetailMsg carries the content of the detail pane.
type DetailMsg struct {
	Token  lookup.Token
	ID     int64
	Detail Detail
	Err    error
}

type frameMsg struct{ at time.Time }

type exportedMsg struct {
	path string
	err  error
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

func frameCmd(fps int) tea.Cmd {
	if fps <= 0 {
		fps = 30
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg{at: t}
	})
}

func (m Model) loadCmd(reload bool) tea.Cmd {
	ctx, src := m.ctx, m.src
	return func() tea.Msg {
		snap, err := datasource.Load(ctx, src)
		if err != nil {
			return LoadedMsg{Err: err, Reload: reload}
		}
		// Tag names only feed the picker; a failure leaves it empty.
		tags, _ := src.ListTagNames(ctx)
		return LoadedMsg{Snapshot: snap, Tags: tags, Reload: reload}
	}
}

func tagFilterCmd(ctx context.Context, task func(context.Context) mindmap.TagFilterResult) tea.Cmd {
	return func() tea.Msg {
		return TagFilterMsg{Result: task(ctx)}
	}
}

func decorationsCmd(ctx context.Context, task func(context.Context) mindmap.DecorationsResult) tea.Cmd {
	return func() tea.Msg {
		return DecorationsMsg{Result: task(ctx)}
	}
}

// detailCmd fetches the conversation, its messages and its tags together.
func detailCmd(ctx context.Context, src datasource.Source, tok lookup.Token, id int64) tea.Cmd {
	return func() tea.Msg {
		var (
			d    Detail
			tags []model.Tag
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			c, err := src.Conversation(gctx, id)
			d.Conversation = c
			return err
		})
		g.Go(func() error {
			msgs, err := src.ListMessages(gctx, id)
			d.Messages = msgs
			return err
		})
		g.Go(func() error {
			var err error
			tags, err = src.ListTagsForNode(gctx, id)
			if err != nil {
				// The pane still opens, just without tags.
				debug.Log("ui: tags of %d: %v", id, err)
				tags = nil
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return DetailMsg{Token: tok, ID: id, Err: err}
		}
		for _, t := range tags {
			d.Tags = append(d.Tags, t.Name)
		}
		return DetailMsg{Token: tok, ID: id, Detail: d}
	}
}

// exportCmd writes the scene on screen as an SVG file.
func exportCmd(sc render.Scene, path string) tea.Cmd {
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := (render.SVGSurface{W: &buf}).Draw(sc); err != nil {
			return exportedMsg{path: path, err: err}
		}
		return exportedMsg{path: path, err: os.WriteFile(path, buf.Bytes(), 0o644)}
	}
}
