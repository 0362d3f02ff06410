// Package datasource reads conversations, links, tags and messages from the
// stores the mind map is fed from: the application's SQLite database, opened
// read-only, or a JSON backup file exported by the application.
//
// Nothing in this package writes. Creating, renaming, linking and deleting
// conversations belongs to the application; the mind map only re-reads.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/mindmap/pkg/model"
)

// Kind identifies the storage format of a source.
type Kind string

const (
	// KindSQLite is the application database.
	KindSQLite Kind = "sqlite"
	// KindJSON is a backup file.
	KindJSON Kind = "json"
)

// Common errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported data source format")
)

// Source is the read side of the persistence collaborator.
type Source interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	ListLinks(ctx context.Context) ([]model.Link, error)
	ListTagsForNode(ctx context.Context, id int64) ([]model.Tag, error)
	ListTagMembership(ctx context.Context, tag string) ([]model.TagMembership, error)
	ListTagNames(ctx context.Context) ([]string, error)
	CountMessages(ctx context.Context, id int64) (int, error)
	ListMessages(ctx context.Context, id int64) ([]model.Message, error)
	// Conversation returns a single conversation or ErrNotFound.
	Conversation(ctx context.Context, id int64) (model.Conversation, error)
	Close() error
}

// DetectKind infers the format of path from its extension.
func DetectKind(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite, nil
	case ".json":
		return KindJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Open opens path with the reader matching its extension.
func Open(path string) (Source, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open data source: %w", err)
	}
	switch kind {
	case KindSQLite:
		return NewSQLiteReader(path)
	default:
		return OpenJSON(path)
	}
}
