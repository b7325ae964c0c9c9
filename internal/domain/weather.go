package domain

import (
	"context"
	"encoding/json"
	"log/slog"
)

// WeatherReading is one parsed current-weather observation. Measurements
// keep the exact number text the service sent, so 15.0 stays "15.0".
type WeatherReading struct {
	Temperature json.Number // °C
	Humidity    json.Number // %
	Sky         string
	WindSpeed   json.Number // m/s
	Sunrise     int64       // Unix seconds, UTC
	Sunset      int64       // Unix seconds, UTC
}

// Credential is an optional API key. The zero value is the absent credential.
type Credential struct {
	value   string
	present bool
}

// NoCredential is the absent credential.
var NoCredential = Credential{}

// NewCredential wraps a key read from configuration.
func NewCredential(value string) Credential {
	return Credential{value: value, present: true}
}

// Value returns the key and whether one was configured.
func (c Credential) Value() (string, bool) {
	return c.value, c.present
}

// Present reports whether a key was configured.
func (c Credential) Present() bool {
	return c.present
}

// String hides the key so credentials never end up in logs.
func (c Credential) String() string {
	if !c.present {
		return "<absent>"
	}
	return "<redacted>"
}

// LogValue keeps the key out of structured logs.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// WeatherFetcher retrieves current weather for a location.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, location string, cred Credential) (WeatherReading, error)
}
