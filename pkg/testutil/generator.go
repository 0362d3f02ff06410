// Package testutil provides test fixture generators for conversation graphs.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/mindmap/pkg/model"
)

// GraphFixture represents an abstract graph for testing layout and
// interaction code.
type GraphFixture struct {
	Description string   `json:"description"`
	Nodes       []string `json:"nodes"`
	Edges       [][2]int `json:"edges"` // [from_idx, to_idx]
}

// GeneratorConfig controls record generation.
type GeneratorConfig struct {
	Seed         int64     // Random seed for determinism (0 = use current time)
	TitlePrefix  string    // Prefix for conversation titles (default: "Conversation")
	BaseTime     time.Time // Base time for timestamps (default: fixed time)
	BookmarkRate float64   // Probability that a conversation is bookmarked
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42, // Deterministic
		TitlePrefix: "Conversation",
		BaseTime:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Generator creates test fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.TitlePrefix == "" {
		cfg.TitlePrefix = "Conversation"
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) names(size int, prefix string) []string {
	nodes := make([]string, size)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return nodes
}

// Chain creates a path n0 - n1 - ... - n{size-1}.
func (g *Generator) Chain(size int) GraphFixture {
	f := GraphFixture{Description: fmt.Sprintf("chain of %d", size), Nodes: g.names(size, "chain")}
	for i := 1; i < size; i++ {
		f.Edges = append(f.Edges, [2]int{i - 1, i})
	}
	return f
}

// Star creates a hub linked to every spoke. The hub is node 0.
func (g *Generator) Star(spokes int) GraphFixture {
	f := GraphFixture{Description: fmt.Sprintf("star with %d spokes", spokes), Nodes: g.names(spokes+1, "star")}
	for i := 1; i <= spokes; i++ {
		f.Edges = append(f.Edges, [2]int{0, i})
	}
	return f
}

// Cycle creates a ring n0 - n1 - ... - n{size-1} - n0.
func (g *Generator) Cycle(size int) GraphFixture {
	f := GraphFixture{Description: fmt.Sprintf("cycle of %d", size), Nodes: g.names(size, "cycle")}
	for i := 0; i < size && size > 1; i++ {
		f.Edges = append(f.Edges, [2]int{i, (i + 1) % size})
	}
	return f
}

// Tree creates a tree with given depth and branching factor.
func (g *Generator) Tree(depth, breadth int) GraphFixture {
	f := GraphFixture{Description: fmt.Sprintf("tree depth=%d breadth=%d", depth, breadth)}
	f.Nodes = append(f.Nodes, "tree-0")
	level := []int{0}
	for d := 0; d < depth; d++ {
		var next []int
		for _, parent := range level {
			for b := 0; b < breadth; b++ {
				idx := len(f.Nodes)
				f.Nodes = append(f.Nodes, fmt.Sprintf("tree-%d", idx))
				f.Edges = append(f.Edges, [2]int{parent, idx})
				next = append(next, idx)
			}
		}
		level = next
	}
	return f
}

// Disconnected creates multiple isolated chains of componentSize nodes.
func (g *Generator) Disconnected(components, componentSize int) GraphFixture {
	f := GraphFixture{Description: fmt.Sprintf("%d components of %d", components, componentSize)}
	for c := 0; c < components; c++ {
		base := len(f.Nodes)
		for i := 0; i < componentSize; i++ {
			f.Nodes = append(f.Nodes, fmt.Sprintf("comp%d-%d", c, i))
			if i > 0 {
				f.Edges = append(f.Edges, [2]int{base + i - 1, base + i})
			}
		}
	}
	return f
}

// Complete creates a graph with an edge between every pair of nodes.
func (g *Generator) Complete(size int) GraphFixture {
	f := GraphFixture{Description: fmt.Sprintf("complete K%d", size), Nodes: g.names(size, "k")}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			f.Edges = append(f.Edges, [2]int{i, j})
		}
	}
	return f
}

// Random creates a random graph where each pair is linked with probability
// density.
func (g *Generator) Random(size int, density float64) GraphFixture {
	f := GraphFixture{Description: fmt.Sprintf("random n=%d p=%.2f", size, density), Nodes: g.names(size, "rnd")}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if g.rng.Float64() < density {
				f.Edges = append(f.Edges, [2]int{i, j})
			}
		}
	}
	return f
}

// Records converts a fixture into conversation and link records. Node i gets
// ID i+1; timestamps count down from the base time so the first node is the
// most recently updated.
func (g *Generator) Records(f GraphFixture) ([]model.Conversation, []model.Link) {
	convs := make([]model.Conversation, len(f.Nodes))
	for i, name := range f.Nodes {
		convs[i] = model.Conversation{
			ID:         int64(i + 1),
			Title:      fmt.Sprintf("%s %s", g.cfg.TitlePrefix, name),
			UpdatedAt:  g.cfg.BaseTime.Add(-time.Duration(i) * time.Hour),
			Bookmarked: g.cfg.BookmarkRate > 0 && g.rng.Float64() < g.cfg.BookmarkRate,
		}
	}
	links := make([]model.Link, 0, len(f.Edges))
	for _, e := range f.Edges {
		links = append(links, model.Link{SourceID: int64(e[0] + 1), TargetID: int64(e[1] + 1)})
	}
	return convs, links
}

// Tags assigns every conversation one of names in round-robin order, plus a
// second tag with probability extra.
func (g *Generator) Tags(convs []model.Conversation, names []string, extra float64) []model.Tag {
	if len(names) == 0 {
		return nil
	}
	var tags []model.Tag
	for i, c := range convs {
		first := names[i%len(names)]
		tags = append(tags, model.Tag{Name: first, ConversationID: c.ID})
		if len(names) > 1 && g.rng.Float64() < extra {
			second := names[(i+1)%len(names)]
			tags = append(tags, model.Tag{Name: second, ConversationID: c.ID})
		}
	}
	for i := range tags {
		tags[i].ID = int64(i + 1)
	}
	return tags
}

// Messages creates perConv alternating user and assistant messages for each
// conversation.
func (g *Generator) Messages(convs []model.Conversation, perConv int) []model.Message {
	var msgs []model.Message
	for _, c := range convs {
		for i := 0; i < perConv; i++ {
			sender := "user"
			if i%2 == 1 {
				sender = "assistant"
			}
			msgs = append(msgs, model.Message{
				ID:             int64(len(msgs) + 1),
				ConversationID: c.ID,
				Sender:         sender,
				Text:           fmt.Sprintf("message %d of %s", i+1, c.Title),
				Timestamp:      c.UpdatedAt.Add(time.Duration(i) * time.Minute),
			})
		}
	}
	return msgs
}
