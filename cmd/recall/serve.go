package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run headless with the configured channels and servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}

			if err := a.startPeripherals(ctx); err != nil {
				a.stop(ctx)
				return err
			}

			a.logger.Info("recall started",
				"model", cfg.Provider.Model,
				"gateway", cfg.Gateway.Enabled,
				"mcp", cfg.MCP.Enabled,
				"telegram", cfg.Telegram.Enabled)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			a.logger.Info("shutting down", "signal", sig.String())
			cancel()

			stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer stopCancel()
			a.stop(stopCtx)
			return nil
		},
	}
}
