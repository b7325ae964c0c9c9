package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/weather-bot/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-bot/internal/adapter/kafka"
	"github.com/couchcryptid/weather-bot/internal/config"
	"github.com/couchcryptid/weather-bot/internal/observability"
	"github.com/couchcryptid/weather-bot/internal/relay"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Relay chat commands from Kafka and serve health and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	handler := newHandler(cfg, logger, metrics)
	logger.Info("weather lookups configured",
		"base_url", cfg.WeatherBaseURL,
		"timeout", cfg.WeatherTimeout,
		"rate_limit", cfg.WeatherRateLimit,
		"timezone", cfg.Timezone.String(),
	)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	r := relay.New(reader, handler, writer, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, r, handler, logger)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start chat relay.
	go func() {
		if err := r.Run(ctx); err != nil {
			logger.Error("relay error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
