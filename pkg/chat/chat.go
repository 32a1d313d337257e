package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Category selects how the host renders a posted message.
type Category string

const (
	CategoryOOC     Category = "ooc"     // out-of-character, table talk
	CategoryIC      Category = "ic"      // in-character speech
	CategoryEmote   Category = "emote"   // third-person action text
	CategoryWhisper Category = "whisper" // visible to the GM only
)

// Message is a single visible chat message posted to the host.
type Message struct {
	ID       uuid.UUID `json:"id"`
	Speaker  string    `json:"speaker,omitempty"`
	Category Category  `json:"category"`
	Content  string    `json:"content"`
}

// New builds a message with a fresh ID.
func New(speaker string, category Category, content string) Message {
	return Message{
		ID:       uuid.New(),
		Speaker:  speaker,
		Category: category,
		Content:  content,
	}
}

func (m Message) Validate() error {
	if m.Content == "" {
		return fmt.Errorf("message content cannot be empty")
	}
	switch m.Category {
	case CategoryOOC, CategoryIC, CategoryEmote, CategoryWhisper:
		return nil
	default:
		return fmt.Errorf("unknown message category %q", m.Category)
	}
}

// Messenger posts a visible message. Implementations must not return until
// the message has been handed off, so callers can rely on posting order.
type Messenger interface {
	Post(ctx context.Context, msg Message) error
}

// multiMessenger fans a message out to several messengers.
type multiMessenger []Messenger

// Multi returns a Messenger that posts to every given messenger in order.
// All messengers are attempted even if one fails; errors are joined.
func Multi(messengers ...Messenger) Messenger {
	return multiMessenger(messengers)
}

func (mm multiMessenger) Post(ctx context.Context, msg Message) error {
	var errs []error
	for _, m := range mm {
		if err := m.Post(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
