package domain

import (
	"context"
	"time"
)

// ChatMessage is one inbound line from the chat transport.
type ChatMessage struct {
	Channel string `json:"channel"`
	Sender  string `json:"sender,omitempty"`
	Text    string `json:"text"`

	Topic     string                          `json:"-"`
	Partition int                             `json:"-"`
	Offset    int64                           `json:"-"`
	Timestamp time.Time                       `json:"-"`
	Commit    func(ctx context.Context) error `json:"-"`
}

// Reply is one outbound line. A multi-line answer is several Replies
// sharing a RequestID, ordered by Seq.
type Reply struct {
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	RequestID string `json:"request_id"`
	Seq       int    `json:"seq"`
}
