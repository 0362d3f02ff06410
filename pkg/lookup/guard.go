// Package lookup runs the asynchronous collaborator calls of a graph view
// (tag decorations, tag membership, message counts) and guards their
// completions against staleness.
//
// Every request takes a Token from a Guard before it starts. When the result
// arrives it is applied only if the token is still the newest one for its
// key; switching tags or conversations simply begins a newer token, so an
// older completion is dropped without any cancellation plumbing.
package lookup

import "sync"

// Token identifies one in-flight request for a key.
type Token struct {
	key string
	gen uint64
}

// Key returns the key the token was issued for.
func (t Token) Key() string { return t.key }

// Guard hands out tokens per key. It is safe for concurrent use.
type Guard struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{gens: make(map[string]uint64)}
}

// Begin starts a new request for key, making every earlier token for the
// same key stale.
func (g *Guard) Begin(key string) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[key]++
	return Token{key: key, gen: g.gens[key]}
}

// Valid reports whether t is still the newest token for its key.
func (g *Guard) Valid(t Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return t.gen != 0 && g.gens[t.key] == t.gen
}

// Invalidate makes every outstanding token for key stale.
func (g *Guard) Invalidate(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[key]++
}

// InvalidateAll makes every outstanding token stale.
func (g *Guard) InvalidateAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.gens {
		g.gens[k]++
	}
}

// Common guard keys.
const (
	KeyTagFilter   = "tag-filter"
	KeyDecorations = "decorations"
	KeyDetail      = "detail"
)
