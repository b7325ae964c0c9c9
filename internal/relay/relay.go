package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-bot/internal/command"
	"github.com/couchcryptid/weather-bot/internal/domain"
	"github.com/couchcryptid/weather-bot/internal/observability"
	"github.com/google/uuid"
)

// Source reads the next chat message from the transport.
type Source interface {
	Receive(ctx context.Context) (domain.ChatMessage, error)
}

// Sink publishes reply lines to the transport.
type Sink interface {
	Send(ctx context.Context, replies []domain.Reply) error
}

// CommandHandler recognises and runs a chat command.
type CommandHandler interface {
	Matches(raw string) bool
	Handle(ctx context.Context, raw string, emit func(line string))
}

// Relay connects a chat transport to a command handler.
type Relay struct {
	source  Source
	handler CommandHandler
	sink    Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Relay with the given stages and observability.
func New(src Source, h CommandHandler, sink Sink, logger *slog.Logger, metrics *observability.Metrics) *Relay {
	return &Relay{
		source:  src,
		handler: h,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the relay has received at least one
// message from the source, whether or not it was a command.
func (r *Relay) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("relay has not received any messages yet")
	}
	return nil
}

// Run processes messages until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay started")
	r.metrics.RelayRunning.Set(1)
	defer r.metrics.RelayRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !r.processMessage(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processMessage runs one receive-handle-send cycle. Returns false if the relay should stop.
func (r *Relay) processMessage(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	msg, err := r.source.Receive(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		if errors.Is(err, domain.ErrUndecodable) {
			r.logger.Warn("skipping undecodable message", "error", err,
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
			r.metrics.MessagesIgnored.Inc()
			r.commit(ctx, msg)
			r.ready.Store(true)
			return true
		}
		r.logger.Error("receive failed", "error", err)
		return r.backoffOrStop(ctx, backoff, maxBackoff)
	}

	r.metrics.MessagesConsumed.Inc()
	r.ready.Store(true)
	*backoff = 200 * time.Millisecond

	if !r.handler.Matches(msg.Text) {
		r.metrics.MessagesIgnored.Inc()
		r.commit(ctx, msg)
		return true
	}

	requestID := uuid.NewString()
	var replies []domain.Reply
	r.handler.Handle(command.WithRequestID(ctx, requestID), msg.Text, func(line string) {
		replies = append(replies, domain.Reply{
			Channel:   msg.Channel,
			Text:      line,
			RequestID: requestID,
			Seq:       len(replies),
		})
	})

	if ctx.Err() != nil {
		return false
	}

	if err := r.sink.Send(ctx, replies); err != nil {
		// Leave the offset uncommitted so the command is redelivered after a restart.
		r.logger.Error("send replies failed", "error", err, "request_id", requestID, "channel", msg.Channel)
		return r.backoffOrStop(ctx, backoff, maxBackoff)
	}

	r.metrics.RepliesProduced.Add(float64(len(replies)))
	r.commit(ctx, msg)
	return true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the relay should stop.
func (r *Relay) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commit commits the message offset if a commit function is available.
func (r *Relay) commit(ctx context.Context, msg domain.ChatMessage) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		r.logger.Warn("commit offset failed", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
