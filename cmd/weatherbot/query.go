package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/weather-bot/internal/command"
	"github.com/couchcryptid/weather-bot/internal/config"
	"github.com/couchcryptid/weather-bot/internal/observability"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <location>",
		Short: "Look up the weather once and print the reply lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg)
			handler := newHandler(cfg, logger, observability.NewMetrics())
			return query(cmd.Context(), handler, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}
}

// query prints each reply line the chat relay would send for location.
func query(ctx context.Context, h *command.Handler, location string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var werr error
	h.Lookup(ctx, location, func(line string) {
		if werr == nil {
			_, werr = fmt.Fprintln(out, line)
		}
	})
	return werr
}
