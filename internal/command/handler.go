package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/weather-bot/internal/domain"
	"github.com/couchcryptid/weather-bot/internal/observability"
)

// Name is the command token without its prefix.
const Name = "weather"

// User-facing failure lines.
const (
	MsgInvalidCity   = "Invalid city name!"
	MsgRejectedKey   = "Weather service rejected the API key!"
	MsgRateLimited   = "Weather service rate limit reached, try again later!"
	MsgUnavailable   = "Weather service unavailable!"
	msgUpstreamError = "Weather service error (status %d)!"
)

// CredentialSource supplies the API key for each lookup.
type CredentialSource interface {
	Credential() domain.Credential
}

// Options tune how commands are recognised and how failures are reported.
type Options struct {
	// Prefix precedes the command name, e.g. "." for ".weather".
	Prefix string
	// Location renders sunrise and sunset. Nil means UTC.
	Location *time.Location
	// LegacyErrors reports every failure as MsgInvalidCity.
	LegacyErrors bool
}

// Handler turns a raw ".weather <location>" command into reply lines.
type Handler struct {
	creds   CredentialSource
	fetcher domain.WeatherFetcher
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewHandler creates a Handler.
func NewHandler(creds CredentialSource, fetcher domain.WeatherFetcher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Handler{
		creds:   creds,
		fetcher: fetcher,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Usage is the hint emitted when no location is given.
func (h *Handler) Usage() string {
	return "Usage: " + h.opts.Prefix + Name + " <location>"
}

// Matches reports whether raw invokes this command.
func (h *Handler) Matches(raw string) bool {
	fields := strings.Fields(raw)
	return len(fields) > 0 && fields[0] == h.opts.Prefix+Name
}

// Handle runs one command and emits each reply line in order. Nothing is
// emitted if ctx is cancelled before the lookup finishes.
func (h *Handler) Handle(ctx context.Context, raw string, emit func(line string)) {
	location, err := ParseLocation(raw)
	if err != nil {
		h.metrics.CommandsHandled.WithLabelValues("usage").Inc()
		emit(h.Usage())
		return
	}
	h.Lookup(ctx, location, emit)
}

// Lookup fetches weather for an already-parsed location and emits the reply
// lines. A blank location emits the usage hint.
func (h *Handler) Lookup(ctx context.Context, location string, emit func(line string)) {
	location = strings.Join(strings.Fields(location), " ")
	if location == "" {
		h.metrics.CommandsHandled.WithLabelValues("usage").Inc()
		emit(h.Usage())
		return
	}

	logger := h.logger.With("request_id", RequestID(ctx), "location", location)

	reading, err := h.fetcher.FetchWeather(ctx, location, h.creds.Credential())
	if err != nil {
		if ctx.Err() != nil {
			h.metrics.CommandsHandled.WithLabelValues("canceled").Inc()
			logger.Info("weather command canceled", "error", ctx.Err())
			return
		}
		reason, line := h.describe(err)
		h.metrics.CommandsHandled.WithLabelValues(reason).Inc()
		logger.Warn("weather lookup failed", "reason", reason, "status", domain.StatusCode(err), "error", err)
		emit(line)
		return
	}

	h.metrics.CommandsHandled.WithLabelValues("success").Inc()
	logger.Debug("weather lookup succeeded", "sky", reading.Sky)
	for _, line := range domain.FormatReading(reading, h.opts.Location) {
		emit(line)
	}
}

// ParseLocation returns everything after the command token, with runs of
// whitespace collapsed. It returns domain.ErrUsage when nothing follows.
func ParseLocation(raw string) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) < 2 {
		return "", domain.ErrUsage
	}
	return strings.Join(fields[1:], " "), nil
}

// describe maps a lookup failure to a metrics reason and a reply line.
func (h *Handler) describe(err error) (reason, line string) {
	reason, line = classify(err)
	if h.opts.LegacyErrors {
		line = MsgInvalidCity
	}
	return reason, line
}

func classify(err error) (reason, line string) {
	if errors.Is(err, domain.ErrMalformedResponse) {
		return "invalid_city", MsgInvalidCity
	}

	switch status := domain.StatusCode(err); {
	case status == http.StatusNotFound:
		return "invalid_city", MsgInvalidCity
	case status == http.StatusUnauthorized:
		return "rejected", MsgRejectedKey
	case status == http.StatusTooManyRequests:
		return "rate_limited", MsgRateLimited
	case status != 0:
		return "upstream_error", fmt.Sprintf(msgUpstreamError, status)
	}

	return "unavailable", MsgUnavailable
}
