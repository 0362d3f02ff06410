package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/vanderheijden86/mindmap/internal/datasource"
	"github.com/vanderheijden86/mindmap/pkg/lookup"
	"github.com/vanderheijden86/mindmap/pkg/model"
	"github.com/vanderheijden86/mindmap/pkg/testutil"
)

// brokenTags is a source whose tag lookups always fail.
type brokenTags struct {
	datasource.Source
}

func (brokenTags) ListTagsForNode(context.Context, int64) ([]model.Tag, error) {
	return nil, errors.New("tags table locked")
}

func openSample(t *testing.T) datasource.Source {
	t.Helper()
	src, err := datasource.Open(testutil.WriteSQLite(t, testutil.SampleDataset()))
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestDetailCmdLoadsEverything(t *testing.T) {
	src := openSample(t)
	tok := lookup.NewGuard().Begin(lookup.KeyDetail)

	msg := detailCmd(context.Background(), src, tok, 1)().(DetailMsg)
	if msg.Err != nil {
		t.Fatalf("unexpected error: %v", msg.Err)
	}
	if msg.Detail.Conversation.ID != 1 {
		t.Errorf("conversation = %d, want 1", msg.Detail.Conversation.ID)
	}
	if len(msg.Detail.Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(msg.Detail.Messages))
	}
	if len(msg.Detail.Tags) != 1 || msg.Detail.Tags[0] != "work" {
		t.Errorf("tags = %v, want [work]", msg.Detail.Tags)
	}
}

func TestDetailCmdTagFailureKeepsConversation(t *testing.T) {
	src := brokenTags{openSample(t)}
	tok := lookup.NewGuard().Begin(lookup.KeyDetail)

	msg := detailCmd(context.Background(), src, tok, 1)().(DetailMsg)
	if msg.Err != nil {
		t.Fatalf("a tag failure should not fail the detail: %v", msg.Err)
	}
	if msg.Detail.Conversation.ID != 1 {
		t.Errorf("conversation = %d, want 1", msg.Detail.Conversation.ID)
	}
	if len(msg.Detail.Messages) != 2 {
		t.Errorf("got %d messages, want 2", len(msg.Detail.Messages))
	}
	if len(msg.Detail.Tags) != 0 {
		t.Errorf("tags = %v, want none", msg.Detail.Tags)
	}
}
