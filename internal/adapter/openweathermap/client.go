package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-bot/internal/domain"
	"github.com/couchcryptid/weather-bot/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// maxErrorBody caps how much of a failed response is kept for logs.
const maxErrorBody = 512

// Client implements domain.WeatherFetcher using the OpenWeatherMap
// current-weather API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchWeather retrieves current conditions for location in metric units.
// An absent credential is sent as an empty appid.
func (c *Client) FetchWeather(ctx context.Context, location string, cred domain.Credential) (domain.WeatherReading, error) {
	key, _ := cred.Value()
	params := url.Values{
		"q":     {location},
		"units": {"metric"},
		"appid": {key},
	}

	start := c.clock.Now()
	reading, err := c.doRequest(ctx, c.baseURL+"/weather?"+params.Encode())
	c.metrics.WeatherAPIDuration.Observe(c.clock.Since(start).Seconds())
	c.metrics.WeatherRequests.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		c.logger.Debug("weather request failed", "location", location, "credential", cred, "error", err)
	}
	return reading, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WeatherReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WeatherReading{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.WeatherReading{}, ctx.Err()
		}
		return domain.WeatherReading{}, fmt.Errorf("%w: %w", domain.ErrUnavailable, scrubURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.WeatherReading{}, &domain.RequestFailedError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var owmResp response
	if err := json.NewDecoder(resp.Body).Decode(&owmResp); err != nil {
		return domain.WeatherReading{}, fmt.Errorf("%w: decode: %w", domain.ErrMalformedResponse, err)
	}

	return owmResp.reading()
}

// scrubURL drops the request URL from transport errors so the API key in
// the query string never reaches logs.
func scrubURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func outcome(err error) string {
	var rf *domain.RequestFailedError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &rf):
		return "request_failed"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unavailable"
	}
}
