package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/couchcryptid/weather-bot/internal/config"
	"github.com/couchcryptid/weather-bot/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces reply lines to the reply topic.
// It implements relay.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured reply topic.
// Replies are keyed by channel so lines for one channel stay in order.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReplyTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Send publishes every reply as its own message, one line per message, in
// a single WriteMessages call.
func (w *Writer) Send(ctx context.Context, replies []domain.Reply) error {
	if len(replies) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(replies))
	for i := range replies {
		msg, err := serializeReply(replies[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeReply marshals a Reply into a Kafka message.
func serializeReply(reply domain.Reply) (kafkago.Message, error) {
	data, err := json.Marshal(reply)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reply: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(reply.Channel),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "request_id", Value: []byte(reply.RequestID)},
			{Key: "seq", Value: []byte(strconv.Itoa(reply.Seq))},
		},
	}, nil
}
