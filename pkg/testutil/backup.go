package testutil

import (
	"github.com/vanderheijden86/mindmap/internal/datasource"
)

// Backup converts the dataset into the application's backup layout, with
// messages and tags inlined under their conversations.
func (ds Dataset) Backup() datasource.Backup {
	b := datasource.Backup{Links: ds.Links, AppVersion: "testutil"}
	index := make(map[int64]int, len(ds.Conversations))
	for _, c := range ds.Conversations {
		bc := datasource.BackupConversation{ID: c.ID, Title: c.Title}
		bc.CreatedAt.Time = c.UpdatedAt
		bc.UpdatedAt.Time = c.UpdatedAt
		if c.Bookmarked {
			bc.Bookmarked = true
		}
		index[c.ID] = len(b.Conversations)
		b.Conversations = append(b.Conversations, bc)
	}
	for _, m := range ds.Messages {
		i, ok := index[m.ConversationID]
		if !ok {
			continue
		}
		bm := datasource.BackupMessage{ID: m.ID, Sender: m.Sender, Text: m.Text}
		bm.Timestamp.Time = m.Timestamp
		b.Conversations[i].Messages = append(b.Conversations[i].Messages, bm)
	}
	for _, t := range ds.Tags {
		if i, ok := index[t.ConversationID]; ok {
			b.Conversations[i].Tags = append(b.Conversations[i].Tags, datasource.BackupTag{ID: t.ID, Name: t.Name})
		}
	}
	return b
}
