package datasource

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/metrics"
	"github.com/vanderheijden86/mindmap/pkg/model"
)

// Snapshot is the node and link lists a view is built from.
type Snapshot struct {
	Conversations []model.Conversation
	Links         []model.Link
}

// Load reads the conversation and link lists from src.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	defer metrics.Timer(metrics.DatasourceLoad)()
	defer debug.LogEnterExit("datasource.Load")()

	convs, err := src.ListConversations(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load conversations: %w", err)
	}
	links, err := src.ListLinks(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load links: %w", err)
	}
	debug.Log("datasource: loaded %d conversations, %d links", len(convs), len(links))
	return Snapshot{Conversations: convs, Links: links}, nil
}

// LoadFile opens path, loads it and closes it again.
func LoadFile(ctx context.Context, path string) (Snapshot, error) {
	src, err := Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer src.Close()
	return Load(ctx, src)
}

// ExportBackup reads everything from src into a backup, in the layout the
// application writes.
func ExportBackup(ctx context.Context, src Source) (Backup, error) {
	snap, err := Load(ctx, src)
	if err != nil {
		return Backup{}, err
	}
	b := Backup{Links: snap.Links}
	for _, c := range snap.Conversations {
		bc := BackupConversation{
			ID:         c.ID,
			Title:      c.Title,
			UpdatedAt:  flexTime{c.UpdatedAt},
			Bookmarked: flexBool(c.Bookmarked),
		}
		msgs, err := src.ListMessages(ctx, c.ID)
		if err != nil {
			return Backup{}, err
		}
		for _, m := range msgs {
			bc.Messages = append(bc.Messages, BackupMessage{
				ID: m.ID, Sender: m.Sender, Text: m.Text, Timestamp: flexTime{m.Timestamp},
			})
		}
		tags, err := src.ListTagsForNode(ctx, c.ID)
		if err != nil {
			return Backup{}, err
		}
		for _, t := range tags {
			bc.Tags = append(bc.Tags, BackupTag{ID: t.ID, Name: t.Name})
		}
		b.Conversations = append(b.Conversations, bc)
	}
	return b, nil
}
