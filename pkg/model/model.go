// Package model defines the records the mind map consumes from the
// persistence layer: conversations, the links between them, their tags and
// their message threads.
package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Conversation is one row of the Conversations table.
type Conversation struct {
	ID         int64     `json:"id" validate:"required,gt=0"`
	Title      string    `json:"title" validate:"required"`
	UpdatedAt  time.Time `json:"updated_at"`
	Bookmarked bool      `json:"bookmarked"`
}

// Link connects two conversations. Direction is preserved from storage but
// carries no meaning for rendering or highlighting.
type Link struct {
	SourceID int64 `json:"source_conversation_id" validate:"required,gt=0"`
	TargetID int64 `json:"target_conversation_id" validate:"required,gt=0"`
}

// Tag is a name attached to a single conversation.
type Tag struct {
	ID             int64  `json:"id"`
	Name           string `json:"name" validate:"required"`
	ConversationID int64  `json:"conversation_id" validate:"required,gt=0"`
}

// TagMembership pairs a tag name with a conversation carrying it.
type TagMembership struct {
	Tag            string `json:"name"`
	ConversationID int64  `json:"conversation_id"`
}

// Message is one entry of a conversation thread.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

// IsUser reports whether the message was written by the user rather than the
// assistant backend.
func (m Message) IsUser() bool {
	return strings.EqualFold(m.Sender, "user")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the required fields of a conversation.
func (c Conversation) Validate() error {
	if err := recordValidator().Struct(c); err != nil {
		return fmt.Errorf("conversation %d: %w", c.ID, describe(err))
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("conversation %d: title is blank", c.ID)
	}
	return nil
}

// Validate checks that both endpoints are set.
func (l Link) Validate() error {
	if err := recordValidator().Struct(l); err != nil {
		return fmt.Errorf("link %d->%d: %w", l.SourceID, l.TargetID, describe(err))
	}
	return nil
}

// Validate checks the tag name and owner.
func (t Tag) Validate() error {
	if err := recordValidator().Struct(t); err != nil {
		return fmt.Errorf("tag %q: %w", t.Name, describe(err))
	}
	return nil
}

// describe flattens validator errors into a single readable error.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, ", "))
}

// TagNames extracts the names from a tag list, preserving order.
func TagNames(tags []Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
