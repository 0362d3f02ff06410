package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/mindmap/pkg/debug"
	"github.com/vanderheijden86/mindmap/pkg/model"
)

// SQLiteReader provides read access to the application database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	// Read-only: the application may hold the write lock while we poll.
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot open database %s: %w", path, err)
	}

	for _, pragma := range []string{
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	} {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("datasource: %s: %v", pragma, err)
		}
	}

	return &SQLiteReader{db: db, path: path}, nil
}

// Path returns the database file.
func (r *SQLiteReader) Path() string { return r.path }

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListConversations returns every conversation, most recently updated first.
func (r *SQLiteReader) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, updated_at, bookmarked
		FROM Conversations
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			debug.Log("datasource: skipping conversation row: %v", err)
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(s scanner) (model.Conversation, error) {
	var (
		c          model.Conversation
		title      sql.NullString
		updatedAt  any
		bookmarked sql.NullInt64
	)
	if err := s.Scan(&c.ID, &title, &updatedAt, &bookmarked); err != nil {
		return model.Conversation{}, err
	}
	c.Title = title.String
	c.UpdatedAt = parseTime(updatedAt)
	c.Bookmarked = bookmarked.Valid && bookmarked.Int64 != 0
	return c, nil
}

// Conversation returns one conversation.
func (r *SQLiteReader) Conversation(ctx context.Context, id int64) (model.Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, updated_at, bookmarked
		FROM Conversations
		WHERE id = ?
	`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Conversation{}, fmt.Errorf("conversation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Conversation{}, fmt.Errorf("conversation %d: %w", id, err)
	}
	return c, nil
}

// ListLinks returns every conversation link.
func (r *SQLiteReader) ListLinks(ctx context.Context) ([]model.Link, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT source_conversation_id, target_conversation_id
		FROM ConversationLinks
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var out []model.Link
	for rows.Next() {
		var l model.Link
		if err := rows.Scan(&l.SourceID, &l.TargetID); err != nil {
			debug.Log("datasource: skipping link row: %v", err)
			continue
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return out, nil
}

// ListTagsForNode returns the tags of one conversation.
func (r *SQLiteReader) ListTagsForNode(ctx context.Context, id int64) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, conversation_id
		FROM Tags
		WHERE conversation_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("tags of conversation %d: %w", id, err)
	}
	defer rows.Close()

	var out []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.ConversationID); err != nil {
			return nil, fmt.Errorf("tags of conversation %d: %w", id, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTagMembership returns the conversations carrying tag.
func (r *SQLiteReader) ListTagMembership(ctx context.Context, tag string) ([]model.TagMembership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, conversation_id
		FROM Tags
		WHERE name = ?
		ORDER BY conversation_id
	`, tag)
	if err != nil {
		return nil, fmt.Errorf("members of tag %q: %w", tag, err)
	}
	defer rows.Close()

	var out []model.TagMembership
	for rows.Next() {
		var m model.TagMembership
		if err := rows.Scan(&m.Tag, &m.ConversationID); err != nil {
			return nil, fmt.Errorf("members of tag %q: %w", tag, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListTagNames returns the distinct tag names in alphabetical order.
func (r *SQLiteReader) ListTagNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT name FROM Tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tag names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tag names: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// CountMessages returns the number of messages in a conversation.
func (r *SQLiteReader) CountMessages(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM Messages WHERE conversation_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages of %d: %w", id, err)
	}
	return n, nil
}

// ListMessages returns a conversation thread, oldest first.
func (r *SQLiteReader) ListMessages(ctx context.Context, id int64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender, text, timestamp
		FROM Messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("messages of %d: %w", id, err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var (
			m  model.Message
			ts any
		)
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender, &m.Text, &ts); err != nil {
			return nil, fmt.Errorf("messages of %d: %w", id, err)
		}
		m.Timestamp = parseTime(ts)
		out = append(out, m)
	}
	return out, rows.Err()
}

// parseTime converts a DATETIME column value. The driver returns time.Time
// for declared DATETIME columns in most cases, but text written by other
// tools comes back as a string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	case int64:
		return time.Unix(t, 0).UTC()
	default:
		return time.Time{}
	}
}

func parseTimeString(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	debug.Log("datasource: unparseable timestamp %q", s)
	return time.Time{}
}
