package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the bot.
type Metrics struct {
	// Command handling.
	CommandsHandled *prometheus.CounterVec // labels: outcome={success,usage,invalid_city,rejected,rate_limited,upstream_error,unavailable,canceled}

	// OpenWeatherMap API.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,request_failed,malformed,unavailable,canceled}
	WeatherAPIDuration prometheus.Histogram
	RateLimitWait      prometheus.Histogram

	// Chat relay.
	MessagesConsumed prometheus.Counter
	MessagesIgnored  prometheus.Counter
	RepliesProduced  prometheus.Counter
	RelayRunning     prometheus.Gauge
}

// NewMetrics creates and registers all bot metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CommandsHandled,
		m.WeatherRequests,
		m.WeatherAPIDuration,
		m.RateLimitWait,
		m.MessagesConsumed,
		m.MessagesIgnored,
		m.RepliesProduced,
		m.RelayRunning,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CommandsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_bot",
			Name:      "commands_handled_total",
			Help:      "Weather commands handled, by outcome.",
		}, []string{"outcome"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_bot",
			Name:      "weather_requests_total",
			Help:      "OpenWeatherMap API requests, by outcome.",
		}, []string{"outcome"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_bot",
			Name:      "weather_api_duration_seconds",
			Help:      "OpenWeatherMap API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RateLimitWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_bot",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the outbound rate limiter.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5},
		}),
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_bot",
			Name:      "messages_consumed_total",
			Help:      "Total chat messages read from the command topic.",
		}),
		MessagesIgnored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_bot",
			Name:      "messages_ignored_total",
			Help:      "Chat messages skipped because they were not weather commands.",
		}),
		RepliesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_bot",
			Name:      "replies_produced_total",
			Help:      "Total reply lines written to the reply topic.",
		}),
		RelayRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_bot",
			Name:      "relay_running",
			Help:      "1 when the chat relay is active, 0 when shut down.",
		}),
	}
}
