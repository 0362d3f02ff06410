package export

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/vanderheijden86/mindmap/pkg/render"
)

// GenerateMermaid renders a frame as a Mermaid flowchart. Conversations
// become nodes labelled with their titles, links become undirected edges,
// and the selection, bookmarks and dimmed nodes get their own classes.
func GenerateMermaid(s render.Scene) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	sb.WriteString("    classDef selected fill:#BD93F9,stroke:#333,color:#000\n")
	sb.WriteString("    classDef bookmarked fill:#F1FA8C,stroke:#333,color:#000\n")
	sb.WriteString("    classDef dimmed fill:#44475A,stroke:#6272A4,color:#888\n")
	sb.WriteString("\n")

	if s.Empty() {
		fmt.Fprintf(&sb, "    empty[\"%s\"]\n", sanitizeMermaidText(s.Placeholder))
		return sb.String()
	}

	nodes := append([]render.NodeShape(nil), s.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	for _, n := range nodes {
		title := sanitizeMermaidText(n.Title)
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", mermaidID(n.ID), title)

		switch {
		case n.Selected:
			fmt.Fprintf(&sb, "    class %s selected\n", mermaidID(n.ID))
		case n.Opacity < 1:
			fmt.Fprintf(&sb, "    class %s dimmed\n", mermaidID(n.ID))
		case n.Decor.Bookmarked:
			fmt.Fprintf(&sb, "    class %s bookmarked\n", mermaidID(n.ID))
		}
	}

	sb.WriteString("\n")

	edges := append([]render.EdgeShape(nil), s.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	for _, e := range edges {
		link := "---"
		if e.Highlighted {
			link = "==="
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.Source), link, mermaidID(e.Target))
	}

	return sb.String()
}

// mermaidID turns a conversation id into a node identifier. Negative ids
// keep a distinct prefix so they cannot collide with positive ones.
func mermaidID(id int64) string {
	if id < 0 {
		return fmt.Sprintf("cn%d", -id)
	}
	return fmt.Sprintf("c%d", id)
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
// Removes/escapes characters that break Mermaid syntax.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)

	result = strings.TrimSpace(result)

	// Truncate if too long (UTF-8 safe using runes)
	runes := []rune(result)
	if len(runes) > 40 {
		result = string(runes[:37]) + "..."
	}
	return result
}
