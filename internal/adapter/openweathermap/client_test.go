package openweathermap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/weather-bot/internal/domain"
	"github.com/couchcryptid/weather-bot/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey           = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"

	berlinJSON = `{
		"coord": {"lon": 13.41, "lat": 52.52},
		"weather": [{"id": 800, "main": "Clear", "description": "clear sky", "icon": "01d"}],
		"main": {"temp": 15.2, "feels_like": 14.1, "pressure": 1013, "humidity": 60},
		"wind": {"speed": 3.1, "deg": 240},
		"sys": {"country": "DE", "sunrise": 1700000000, "sunset": 1700040000},
		"name": "Berlin",
		"cod": 200
	}`
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		clock:      clockwork.NewRealClock(),
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchWeather_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "New York", r.URL.Query().Get("q"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, testKey, r.URL.Query().Get("appid"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(berlinJSON))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	reading, err := c.FetchWeather(context.Background(), "New York", domain.NewCredential(testKey))
	require.NoError(t, err)

	assert.Equal(t, domain.WeatherReading{
		Temperature: "15.2",
		Humidity:    "60",
		Sky:         "Clear",
		WindSpeed:   "3.1",
		Sunrise:     1700000000,
		Sunset:      1700040000,
	}, reading)
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.metrics.WeatherRequests.WithLabelValues("success")), 0.0001)

	lines := domain.FormatReading(reading, time.UTC)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.NotContains(t, line, "\r")
		assert.NotContains(t, line, "\n")
	}
}

func TestClient_FetchWeather_KeepsNumberText(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{
		"weather": [{"main": "Clear"}],
		"main": {"temp": 15.0, "humidity": 60},
		"wind": {"speed": 3.10},
		"sys": {"sunrise": 1700000000, "sunset": 1700040000}
	}`)

	reading, err := testClient(srv.URL).FetchWeather(context.Background(), "Berlin", domain.NewCredential(testKey))
	require.NoError(t, err)

	lines := domain.FormatReading(reading, time.UTC)
	require.Len(t, lines, 2)
	assert.Equal(t, "[Temperature: 15.0] [Humidity: 60] [Sky: Clear] [Wind speed: 3.10]", lines[0])
}

func TestClient_FetchWeather_AbsentCredentialSendsEmptyAppID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, r.URL.Query().Has("appid"))
		assert.Empty(t, r.URL.Query().Get("appid"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key."}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchWeather(context.Background(), "Berlin", domain.NoCredential)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, domain.StatusCode(err))
}

func TestClient_FetchWeather_NonSuccessStatusIsNotParsed(t *testing.T) {
	// A valid body behind an error status must still fail.
	srv := jsonServer(t, http.StatusNotFound, berlinJSON)

	c := testClient(srv.URL)
	_, err := c.FetchWeather(context.Background(), "Atlantis", domain.NewCredential(testKey))
	require.Error(t, err)

	var rf *domain.RequestFailedError
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, http.StatusNotFound, rf.StatusCode)
	assert.NotErrorIs(t, err, domain.ErrMalformedResponse)
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.metrics.WeatherRequests.WithLabelValues("request_failed")), 0.0001)
}

func TestClient_FetchWeather_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"invalid JSON", `{"main": `, "decode"},
		{"missing wind", `{"main":{"temp":1,"humidity":2},"weather":[{"main":"Rain"}],"sys":{"sunrise":1,"sunset":2}}`, "wind"},
		{"missing wind speed", `{"main":{"temp":1,"humidity":2},"weather":[{"main":"Rain"}],"wind":{"deg":90},"sys":{"sunrise":1,"sunset":2}}`, "wind.speed"},
		{"missing main", `{"weather":[{"main":"Rain"}],"wind":{"speed":1},"sys":{"sunrise":1,"sunset":2}}`, "main"},
		{"missing temp", `{"main":{"humidity":2},"weather":[{"main":"Rain"}],"wind":{"speed":1},"sys":{"sunrise":1,"sunset":2}}`, "main.temp"},
		{"empty weather", `{"main":{"temp":1,"humidity":2},"weather":[],"wind":{"speed":1},"sys":{"sunrise":1,"sunset":2}}`, "weather[0].main"},
		{"missing sunset", `{"main":{"temp":1,"humidity":2},"weather":[{"main":"Rain"}],"wind":{"speed":1},"sys":{"sunrise":1}}`, "sys.sunset"},
		{"wrong type", `{"main":{"temp":"warm","humidity":2},"weather":[{"main":"Rain"}],"wind":{"speed":1},"sys":{"sunrise":1,"sunset":2}}`, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, http.StatusOK, tt.body)

			_, err := testClient(srv.URL).FetchWeather(context.Background(), "Berlin", domain.NewCredential(testKey))
			require.ErrorIs(t, err, domain.ErrMalformedResponse)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestClient_FetchWeather_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.FetchWeather(context.Background(), "Berlin", domain.NewCredential(testKey))
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotContains(t, err.Error(), testKey, "API key must not leak into errors")
}

func TestClient_FetchWeather_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := testClient(srv.URL).FetchWeather(ctx, "Berlin", domain.NewCredential(testKey))
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_FetchWeather_Idempotent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(berlinJSON))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	first, err := c.FetchWeather(context.Background(), "Berlin", domain.NewCredential(testKey))
	require.NoError(t, err)
	second, err := c.FetchWeather(context.Background(), "Berlin", domain.NewCredential(testKey))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), calls.Load(), "each fetch should reach the API")
}

func TestClient_FetchWeather_RecordsDuration(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, berlinJSON)

	c := testClient(srv.URL)
	fake := clockwork.NewFakeClock()
	c.clock = fake

	_, err := c.FetchWeather(context.Background(), "Berlin", domain.NewCredential(testKey))
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(c.metrics.WeatherAPIDuration))
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", time.Second, observability.NewMetricsForTesting(), slog.Default())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "request_failed", outcome(&domain.RequestFailedError{StatusCode: 500}))
	assert.Equal(t, "malformed", outcome(domain.ErrMalformedResponse))
	assert.Equal(t, "canceled", outcome(context.Canceled))
	assert.Equal(t, "unavailable", outcome(errors.New("dial tcp: refused")))
	assert.Equal(t, "unavailable", outcome(fmt.Errorf("%w: %w", domain.ErrUnavailable, context.DeadlineExceeded)))
}
