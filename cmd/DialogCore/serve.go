package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BTreeMap/DialogCore/internal/api"
)

// shutdownTimeout bounds closing the store and graph after the server stops.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, cmd.Name())
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := a.Close(closeCtx); err != nil {
				slog.Error("serve: failed to close resources", "error", err)
			}
		}()

		slog.Info("serve: starting API server", "addr", cfg.APIAddr)
		return api.NewServer(a.manager, api.WithAddr(cfg.APIAddr)).Run(ctx)
	},
}
