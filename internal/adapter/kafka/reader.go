package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/weather-bot/internal/config"
	"github.com/couchcryptid/weather-bot/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Reader consumes chat messages from the command topic.
// It implements relay.Source.
type Reader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewReader creates a Kafka consumer for the configured command topic.
// Offsets are committed explicitly once a reply has been published.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaCommandTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Reader{reader: r, logger: logger}
}

// Receive blocks until the next message arrives or ctx is cancelled.
// A message whose value cannot be decoded is returned as a wrapped error
// alongside a ChatMessage carrying its Commit, so callers can skip it.
func (r *Reader) Receive(ctx context.Context) (domain.ChatMessage, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	chat, err := decodeMessage(msg)
	chat.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return chat, err
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// decodeMessage maps a Kafka message to a ChatMessage. The value is
// {"channel":"#weather","sender":"alice","text":".weather Berlin"}; a
// missing channel falls back to the message key.
func decodeMessage(msg kafkago.Message) (domain.ChatMessage, error) {
	chat := domain.ChatMessage{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
	if err := json.Unmarshal(msg.Value, &chat); err != nil {
		return chat, fmt.Errorf("%w: %w", domain.ErrUndecodable, err)
	}
	if chat.Channel == "" {
		chat.Channel = string(msg.Key)
	}
	return chat, nil
}
