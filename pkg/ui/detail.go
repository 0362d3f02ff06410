package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/mindmap/pkg/model"
)

// maxDetailMessages bounds how many messages the pane renders.
const maxDetailMessages = 200

// Detail is the content of the conversation detail pane.
type Detail struct {
	Conversation model.Conversation
	Tags         []string
	Messages     []model.Message
}

// Markdown renders the conversation as a markdown document.
func (d Detail) Markdown() string {
	var b strings.Builder
	title := strings.TrimSpace(d.Conversation.Title)
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	var meta []string
	if d.Conversation.Bookmarked {
		meta = append(meta, "★ bookmarked")
	}
	if !d.Conversation.UpdatedAt.IsZero() {
		meta = append(meta, "updated "+d.Conversation.UpdatedAt.Format("2006-01-02 15:04"))
	}
	meta = append(meta, fmt.Sprintf("%d messages", len(d.Messages)))
	b.WriteString("*" + strings.Join(meta, " · ") + "*\n\n")

	if len(d.Tags) > 0 {
		tags := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			tags[i] = "`#" + t + "`"
		}
		b.WriteString(strings.Join(tags, " ") + "\n\n")
	}

	b.WriteString("---\n\n")
	msgs := d.Messages
	if len(msgs) > maxDetailMessages {
		fmt.Fprintf(&b, "*%d earlier messages not shown*\n\n", len(msgs)-maxDetailMessages)
		msgs = msgs[len(msgs)-maxDetailMessages:]
	}
	for _, m := range msgs {
		who := "Assistant"
		if m.IsUser() {
			who = "You"
		}
		fmt.Fprintf(&b, "**%s**\n\n%s\n\n", who, strings.TrimSpace(m.Text))
	}
	if len(msgs) == 0 {
		b.WriteString("*No messages yet.*\n")
	}
	return b.String()
}

// DetailPane shows one conversation in a scrollable viewport.
type DetailPane struct {
	vp       viewport.Model
	detail   *Detail
	loading  int64
	rendered string
	wrap     int
	dark     bool
}

// NewDetailPane creates an empty pane.
func NewDetailPane(dark bool) DetailPane {
	return DetailPane{vp: viewport.New(40, 10), dark: dark}
}

// SetSize updates the pane dimensions and re-renders if the wrap width changed.
func (p *DetailPane) SetSize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
	if width != p.wrap {
		p.render()
	}
}

// Loading marks the pane as waiting for conversation id.
func (p *DetailPane) Loading(id int64) {
	p.loading = id
	p.detail = nil
	p.vp.SetContent(fmt.Sprintf("Loading conversation %d…", id))
}

// Set shows d.
func (p *DetailPane) Set(d Detail) {
	p.loading = 0
	p.detail = &d
	p.render()
	p.vp.GotoTop()
}

// Showing returns the id of the shown or loading conversation.
func (p *DetailPane) Showing() (int64, bool) {
	if p.detail != nil {
		return p.detail.Conversation.ID, true
	}
	return p.loading, p.loading != 0
}

// Clear empties the pane.
func (p *DetailPane) Clear() {
	p.detail = nil
	p.loading = 0
	p.rendered = ""
	p.vp.SetContent("")
}

// ScrollDown scrolls by n lines.
func (p *DetailPane) ScrollDown(n int) { p.vp.ScrollDown(n) }

// ScrollUp scrolls by n lines.
func (p *DetailPane) ScrollUp(n int) { p.vp.ScrollUp(n) }

// View renders the pane.
func (p *DetailPane) View() string { return p.vp.View() }

func (p *DetailPane) render() {
	p.wrap = p.vp.Width
	if p.detail == nil {
		return
	}
	md := p.detail.Markdown()
	style := "dark"
	if !p.dark {
		style = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(p.wrap-2, 20)),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			p.rendered = out
			p.vp.SetContent(out)
			return
		}
	}
	p.rendered = md
	p.vp.SetContent(md)
}
