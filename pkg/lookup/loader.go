package lookup

import (
	"context"
	"strconv"
	"sync"

	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/metrics"
	"github.com/vanderheijden86/mindmap/pkg/model"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultConcurrency bounds parallel per-node lookups.
const DefaultConcurrency = 8

// Source is the read side of the persistence collaborator that lookups need.
type Source interface {
	ListTagsForNode(ctx context.Context, id int64) ([]model.Tag, error)
	ListTagMembership(ctx context.Context, tag string) ([]model.TagMembership, error)
	CountMessages(ctx context.Context, id int64) (int, error)
}

// Decoration is the per-node data drawn as badges.
type Decoration struct {
	Tags     []string
	Messages int
}

// Loader performs lookups against a Source. Failures degrade to empty
// results and are logged; callers never see an error.
type Loader struct {
	src   Source
	limit int
	group singleflight.Group
}

// NewLoader creates a loader with at most limit concurrent node lookups.
func NewLoader(src Source, limit int) *Loader {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Loader{src: src, limit: limit}
}

// NodeTags returns the tag names of one node. Concurrent calls for the same
// node share one query.
func (l *Loader) NodeTags(ctx context.Context, id int64) []string {
	defer metrics.Timer(metrics.TagLookup)()

	v, err, _ := l.group.Do("tags:"+strconv.FormatInt(id, 10), func() (any, error) {
		tags, err := l.src.ListTagsForNode(ctx, id)
		if err != nil {
			return nil, err
		}
		return model.TagNames(tags), nil
	})
	if err != nil {
		debug.Log("lookup: tags for node %d failed: %v", id, err)
		return nil
	}
	names, _ := v.([]string)
	return names
}

// MessageCount returns how many messages a node has, or 0 on failure.
func (l *Loader) MessageCount(ctx context.Context, id int64) int {
	v, err, _ := l.group.Do("messages:"+strconv.FormatInt(id, 10), func() (any, error) {
		return l.src.CountMessages(ctx, id)
	})
	if err != nil {
		debug.Log("lookup: message count for node %d failed: %v", id, err)
		return 0
	}
	n, _ := v.(int)
	return n
}

// Decorations fetches tags and message counts for ids with bounded
// parallelism. Nodes whose lookups fail get an empty decoration; if ctx is
// cancelled the nodes not yet fetched are left out.
func (l *Loader) Decorations(ctx context.Context, ids []int64) map[int64]Decoration {
	out := make(map[int64]Decoration, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d := Decoration{
				Tags:     l.NodeTags(gctx, id),
				Messages: l.MessageCount(gctx, id),
			}
			mu.Lock()
			out[id] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		debug.Log("lookup: decorations interrupted after %d/%d nodes: %v", len(out), len(ids), err)
	}
	return out
}

// TagMembers returns the conversation ids carrying tag.
func (l *Loader) TagMembers(ctx context.Context, tag string) []int64 {
	defer metrics.Timer(metrics.TagLookup)()

	v, err, _ := l.group.Do("members:"+tag, func() (any, error) {
		rows, err := l.src.ListTagMembership(ctx, tag)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ConversationID)
		}
		return ids, nil
	})
	if err != nil {
		debug.Log("lookup: members of tag %q failed: %v", tag, err)
		return nil
	}
	ids, _ := v.([]int64)
	return ids
}
