package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/model"
)

// Dataset is the content of a fixture database.
type Dataset struct {
	Conversations []model.Conversation
	Links         []model.Link
	Tags          []model.Tag
	Messages      []model.Message
}

// WriteSQLite creates an application database in a temp dir and returns its
// path. Timestamps are stored the way SQLite's CURRENT_TIMESTAMP writes them.
func WriteSQLite(t testing.TB, ds Dataset) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(datasource.Schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	const layout = "2006-01-02 15:04:05"
	for _, c := range ds.Conversations {
		ts := c.UpdatedAt.UTC().Format(layout)
		if _, err := db.Exec(
			`INSERT INTO Conversations (id, title, created_at, updated_at, bookmarked) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Title, ts, ts, boolInt(c.Bookmarked),
		); err != nil {
			t.Fatalf("insert conversation %d: %v", c.ID, err)
		}
	}
	for _, l := range ds.Links {
		if _, err := db.Exec(
			`INSERT INTO ConversationLinks (source_conversation_id, target_conversation_id) VALUES (?, ?)`,
			l.SourceID, l.TargetID,
		); err != nil {
			t.Fatalf("insert link %d->%d: %v", l.SourceID, l.TargetID, err)
		}
	}
	for _, tag := range ds.Tags {
		if _, err := db.Exec(
			`INSERT INTO Tags (name, conversation_id) VALUES (?, ?)`,
			tag.Name, tag.ConversationID,
		); err != nil {
			t.Fatalf("insert tag %q: %v", tag.Name, err)
		}
	}
	for _, m := range ds.Messages {
		if _, err := db.Exec(
			`INSERT INTO Messages (conversation_id, sender, text, timestamp) VALUES (?, ?, ?, ?)`,
			m.ConversationID, m.Sender, m.Text, m.Timestamp.UTC().Format(layout),
		); err != nil {
			t.Fatalf("insert message: %v", err)
		}
	}
	return path
}

// SampleDataset is a small graph with tags and messages:
//
//	1 - 2 - 3    4 (isolated, bookmarked)
//
// plus a dangling link from 3 to 99.
func SampleDataset() Dataset {
	g := NewDefault()
	convs, links := g.Records(g.Chain(3))
	convs = append(convs, model.Conversation{
		ID: 4, Title: "Bookmarked notes", UpdatedAt: convs[0].UpdatedAt.Add(-48 * time.Hour), Bookmarked: true,
	})
	links = append(links, model.Link{SourceID: 3, TargetID: 99})
	return Dataset{
		Conversations: convs,
		Links:         links,
		Tags: []model.Tag{
			{Name: "work", ConversationID: 1},
			{Name: "work", ConversationID: 2},
			{Name: "ideas", ConversationID: 2},
			{Name: "home", ConversationID: 4},
		},
		Messages: g.Messages(convs[:2], 2),
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
