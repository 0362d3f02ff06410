package datasource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/mindmap/pkg/model"
)

// Backup is the JSON export written by the application: every conversation
// with its thread and tags inlined, plus the link list.
type Backup struct {
	Conversations []BackupConversation `json:"conversations"`
	Links         []model.Link         `json:"links"`
	Timestamp     string               `json:"timestamp,omitempty"`
	AppVersion    string               `json:"appVersion,omitempty"`
}

// BackupConversation is one conversation in a backup.
type BackupConversation struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	CreatedAt  flexTime        `json:"created_at"`
	UpdatedAt  flexTime        `json:"updated_at"`
	Bookmarked flexBool        `json:"bookmarked"`
	Messages   []BackupMessage `json:"messages,omitempty"`
	Tags       []BackupTag     `json:"tags,omitempty"`
}

// BackupMessage is one message in a backup.
type BackupMessage struct {
	ID        int64    `json:"id"`
	Sender    string   `json:"sender"`
	Text      string   `json:"text"`
	Timestamp flexTime `json:"timestamp"`
}

// BackupTag is one tag in a backup.
type BackupTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// flexTime accepts the timestamp spellings found in backups.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int64
		if nerr := json.Unmarshal(b, &n); nerr != nil {
			return fmt.Errorf("timestamp %s: %w", b, err)
		}
		t.Time = time.Unix(n, 0).UTC()
		return nil
	}
	t.Time = parseTimeString(s)
	return nil
}

func (t flexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02 15:04:05"))
}

// flexBool accepts SQLite's 0/1 integers as well as JSON booleans.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "true", "1", `"1"`, `"true"`:
		*f = true
	case "false", "0", "null", `"0"`, `"false"`, `""`:
		*f = false
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("bookmarked: unexpected value %s", b)
		}
		*f = n != 0
	}
	return nil
}

// JSONSource serves a backup file from memory.
type JSONSource struct {
	path     string
	convs    []model.Conversation
	byID     map[int64]int
	links    []model.Link
	tags     map[int64][]model.Tag
	messages map[int64][]model.Message
}

// OpenJSON reads a backup file.
func OpenJSON(path string) (*JSONSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse backup %s: %w", path, err)
	}
	src := NewJSONSource(b)
	src.path = path
	return src, nil
}

// NewJSONSource serves an already decoded backup.
func NewJSONSource(b Backup) *JSONSource {
	s := &JSONSource{
		byID:     make(map[int64]int, len(b.Conversations)),
		links:    append([]model.Link(nil), b.Links...),
		tags:     make(map[int64][]model.Tag),
		messages: make(map[int64][]model.Message),
	}
	for _, c := range b.Conversations {
		s.byID[c.ID] = len(s.convs)
		s.convs = append(s.convs, model.Conversation{
			ID:         c.ID,
			Title:      c.Title,
			UpdatedAt:  c.UpdatedAt.Time,
			Bookmarked: bool(c.Bookmarked),
		})
		for _, t := range c.Tags {
			s.tags[c.ID] = append(s.tags[c.ID], model.Tag{ID: t.ID, Name: t.Name, ConversationID: c.ID})
		}
		for _, m := range c.Messages {
			s.messages[c.ID] = append(s.messages[c.ID], model.Message{
				ID:             m.ID,
				ConversationID: c.ID,
				Sender:         m.Sender,
				Text:           m.Text,
				Timestamp:      m.Timestamp.Time,
			})
		}
	}
	sort.SliceStable(s.convs, func(i, j int) bool {
		return s.convs[i].UpdatedAt.After(s.convs[j].UpdatedAt)
	})
	for i, c := range s.convs {
		s.byID[c.ID] = i
	}
	return s
}

// Path returns the backup file, if the source was read from one.
func (s *JSONSource) Path() string { return s.path }

// Close implements Source.
func (s *JSONSource) Close() error { return nil }

// ListConversations implements Source.
func (s *JSONSource) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.Conversation(nil), s.convs...), nil
}

// Conversation implements Source.
func (s *JSONSource) Conversation(_ context.Context, id int64) (model.Conversation, error) {
	i, ok := s.byID[id]
	if !ok {
		return model.Conversation{}, fmt.Errorf("conversation %d: %w", id, ErrNotFound)
	}
	return s.convs[i], nil
}

// ListLinks implements Source.
func (s *JSONSource) ListLinks(ctx context.Context) ([]model.Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.Link(nil), s.links...), nil
}

// ListTagsForNode implements Source.
func (s *JSONSource) ListTagsForNode(_ context.Context, id int64) ([]model.Tag, error) {
	return append([]model.Tag(nil), s.tags[id]...), nil
}

// ListTagMembership implements Source.
func (s *JSONSource) ListTagMembership(_ context.Context, tag string) ([]model.TagMembership, error) {
	var out []model.TagMembership
	for _, c := range s.convs {
		for _, t := range s.tags[c.ID] {
			if t.Name == tag {
				out = append(out, model.TagMembership{Tag: tag, ConversationID: c.ID})
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConversationID < out[j].ConversationID })
	return out, nil
}

// ListTagNames implements Source.
func (s *JSONSource) ListTagNames(context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, tags := range s.tags {
		for _, t := range tags {
			if _, ok := seen[t.Name]; !ok {
				seen[t.Name] = struct{}{}
				out = append(out, t.Name)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// CountMessages implements Source.
func (s *JSONSource) CountMessages(_ context.Context, id int64) (int, error) {
	return len(s.messages[id]), nil
}

// ListMessages implements Source.
func (s *JSONSource) ListMessages(_ context.Context, id int64) ([]model.Message, error) {
	msgs := append([]model.Message(nil), s.messages[id]...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

// WriteBackup encodes b as an indented backup file.
func WriteBackup(path string, b Backup) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}
