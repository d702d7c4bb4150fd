package protocol

import (
	"context"
	"time"
)

// Message is one chat message returned by a search.
type Message struct {
	PostID    string    `json:"post_id,omitempty"`
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier posts messages to the chat platform. Delivery failures are the
// caller's to log; they are never escalated to execution failures.
type Notifier interface {
	Post(ctx context.Context, channelID, message string) error
	Search(ctx context.Context, terms string) ([]Message, error)
}
