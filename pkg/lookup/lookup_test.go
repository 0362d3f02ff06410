package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vanderheijden86/mindmap/pkg/model"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	tags     map[int64][]model.Tag
	members  map[string][]model.TagMembership
	messages map[int64]int
	failTags map[int64]bool

	tagCalls atomic.Int32
	block    chan struct{}
}

func (f *fakeSource) ListTagsForNode(ctx context.Context, id int64) ([]model.Tag, error) {
	f.tagCalls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failTags[id] {
		return nil, errors.New("database is locked")
	}
	return f.tags[id], nil
}

func (f *fakeSource) ListTagMembership(_ context.Context, tag string) ([]model.TagMembership, error) {
	if tag == "broken" {
		return nil, errors.New("no such table: Tags")
	}
	return f.members[tag], nil
}

func (f *fakeSource) CountMessages(_ context.Context, id int64) (int, error) {
	return f.messages[id], nil
}

func newFake() *fakeSource {
	return &fakeSource{
		tags: map[int64][]model.Tag{
			1: {{Name: "go", ConversationID: 1}, {Name: "ai", ConversationID: 1}},
			2: {{Name: "go", ConversationID: 2}},
		},
		members: map[string][]model.TagMembership{
			"go": {{Tag: "go", ConversationID: 1}, {Tag: "go", ConversationID: 2}},
		},
		messages: map[int64]int{1: 4},
		failTags: map[int64]bool{3: true},
	}
}

func TestGuardDropsStaleTokens(t *testing.T) {
	g := NewGuard()
	first := g.Begin(KeyTagFilter)
	require.True(t, g.Valid(first))

	second := g.Begin(KeyTagFilter)
	require.False(t, g.Valid(first), "older token must be stale")
	require.True(t, g.Valid(second))

	other := g.Begin(KeyDetail)
	require.True(t, g.Valid(second), "keys are independent")
	require.Equal(t, KeyDetail, other.Key())

	g.Invalidate(KeyTagFilter)
	require.False(t, g.Valid(second))

	g.InvalidateAll()
	require.False(t, g.Valid(other))
	require.False(t, g.Valid(Token{}), "zero token is never valid")
}

func TestGuardConcurrentUse(t *testing.T) {
	g := NewGuard()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			tok := g.Begin(fmt.Sprintf("node:%d", id%5))
			_ = g.Valid(tok)
		}(int64(i))
	}
	wg.Wait()
	require.True(t, g.Valid(g.Begin("node:1")))
}

func TestNodeTagsAndFailureDegrades(t *testing.T) {
	l := NewLoader(newFake(), 2)
	ctx := context.Background()

	require.Equal(t, []string{"go", "ai"}, l.NodeTags(ctx, 1))
	require.Empty(t, l.NodeTags(ctx, 3), "failed lookup degrades to no tags")
	require.Empty(t, l.NodeTags(ctx, 42))
}

func TestTagMembers(t *testing.T) {
	l := NewLoader(newFake(), 0)
	ctx := context.Background()

	require.ElementsMatch(t, []int64{1, 2}, l.TagMembers(ctx, "go"))
	require.Empty(t, l.TagMembers(ctx, "none"))
	require.Empty(t, l.TagMembers(ctx, "broken"))
}

func TestDecorations(t *testing.T) {
	l := NewLoader(newFake(), 2)
	got := l.Decorations(context.Background(), []int64{1, 2, 3})

	require.Len(t, got, 3)
	require.Equal(t, Decoration{Tags: []string{"go", "ai"}, Messages: 4}, got[1])
	require.Equal(t, []string{"go"}, got[2].Tags)
	require.Empty(t, got[3].Tags)
}

func TestNodeTagsDeduplicatesConcurrentCalls(t *testing.T) {
	src := newFake()
	src.block = make(chan struct{})
	l := NewLoader(src, 4)

	var wg sync.WaitGroup
	results := make([][]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.NodeTags(context.Background(), 1)
		}(i)
	}
	// let every caller join the in-flight query before releasing it
	time.Sleep(50 * time.Millisecond)
	close(src.block)
	wg.Wait()

	require.Less(t, src.tagCalls.Load(), int32(len(results)), "callers should share the in-flight query")
	for _, r := range results {
		require.Equal(t, []string{"go", "ai"}, r)
	}
}

func TestDecorationsCancelled(t *testing.T) {
	src := newFake()
	src.block = make(chan struct{})
	l := NewLoader(src, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got := l.Decorations(ctx, []int64{1, 2})
	require.LessOrEqual(t, len(got), 2)
	for _, d := range got {
		require.Empty(t, d.Tags)
	}
}
