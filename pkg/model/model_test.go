package model

import (
	"strings"
	"testing"
)

func TestConversationValidate(t *testing.T) {
	tests := []struct {
		name    string
		conv    Conversation
		wantErr string
	}{
		{"valid", Conversation{ID: 1, Title: "Hello"}, ""},
		{"missing id", Conversation{Title: "Hello"}, "ID failed required"},
		{"negative id", Conversation{ID: -4, Title: "Hello"}, "ID failed gt=0"},
		{"missing title", Conversation{ID: 2}, "Title failed required"},
		{"blank title", Conversation{ID: 3, Title: "   "}, "title is blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conv.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLinkValidate(t *testing.T) {
	if err := (Link{SourceID: 1, TargetID: 2}).Validate(); err != nil {
		t.Fatalf("valid link rejected: %v", err)
	}
	if err := (Link{SourceID: 1}).Validate(); err == nil {
		t.Fatal("link without target accepted")
	}
}

func TestTagNames(t *testing.T) {
	if got := TagNames(nil); got != nil {
		t.Errorf("TagNames(nil) = %v, want nil", got)
	}
	got := TagNames([]Tag{{Name: "go"}, {Name: "ai"}})
	if len(got) != 2 || got[0] != "go" || got[1] != "ai" {
		t.Errorf("TagNames = %v", got)
	}
}

func TestMessageIsUser(t *testing.T) {
	if !(Message{Sender: "User"}).IsUser() {
		t.Error("User sender not recognised")
	}
	if (Message{Sender: "ai"}).IsUser() {
		t.Error("ai sender treated as user")
	}
}
