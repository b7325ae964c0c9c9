// Command weatherbot answers ".weather <location>" chat commands with current
// conditions from OpenWeatherMap.
//
// Usage:
//
//	weatherbot serve            # consume chat commands from Kafka, serve /metrics
//	weatherbot query New York   # one-shot lookup printed to stdout
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/weather-bot/internal/adapter/inifile"
	"github.com/couchcryptid/weather-bot/internal/adapter/openweathermap"
	"github.com/couchcryptid/weather-bot/internal/command"
	"github.com/couchcryptid/weather-bot/internal/config"
	"github.com/couchcryptid/weather-bot/internal/domain"
	"github.com/couchcryptid/weather-bot/internal/observability"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "weatherbot",
		Short:         "Chat bot that reports current weather",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newQueryCmd())
	return root
}

// newHandler wires the credential provider, the OpenWeatherMap client and
// the command handler from configuration.
func newHandler(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *command.Handler {
	creds := inifile.NewCredentialProvider(cfg.CredentialFile, cfg.CredentialSection, cfg.CredentialKey, logger)

	var fetcher domain.WeatherFetcher = openweathermap.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger)
	if cfg.WeatherRateLimit > 0 {
		fetcher = openweathermap.NewRateLimitedFetcher(fetcher, cfg.WeatherRateLimit, cfg.WeatherRateBurst, metrics)
	}

	return command.NewHandler(creds, fetcher, command.Options{
		Prefix:       cfg.CommandPrefix,
		Location:     cfg.Timezone,
		LegacyErrors: cfg.LegacyErrors,
	}, logger, metrics)
}
