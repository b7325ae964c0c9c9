package openweathermap

import (
	"context"
	"fmt"

	"github.com/couchcryptid/weather-bot/internal/domain"
	"github.com/couchcryptid/weather-bot/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// RateLimitedFetcher wraps a WeatherFetcher with a token-bucket limiter so a
// busy channel cannot exhaust the API quota. Calls wait for a token; they
// are never dropped or retried.
type RateLimitedFetcher struct {
	inner   domain.WeatherFetcher
	limiter *rate.Limiter
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewRateLimitedFetcher allows rps requests per second with the given burst.
func NewRateLimitedFetcher(inner domain.WeatherFetcher, rps float64, burst int, metrics *observability.Metrics) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
	}
}

// FetchWeather waits for the limiter, then delegates.
func (r *RateLimitedFetcher) FetchWeather(ctx context.Context, location string, cred domain.Credential) (domain.WeatherReading, error) {
	start := r.clock.Now()
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return domain.WeatherReading{}, ctx.Err()
		}
		return domain.WeatherReading{}, fmt.Errorf("rate limit wait: %w", err)
	}
	r.metrics.RateLimitWait.Observe(r.clock.Since(start).Seconds())

	return r.inner.FetchWeather(ctx, location, cred)
}
