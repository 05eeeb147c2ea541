package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/replan-systems/replan/internal/archive"
	"github.com/replan-systems/replan/internal/config"
	"github.com/replan-systems/replan/internal/server"
)

const (
	defaultAddr     = ":8484"
	shutdownTimeout = 10 * time.Second
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the replan HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	prov, orch, _, cleanup, err := buildStack(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()

	// Archiver
	var arch *archive.Archiver
	if cfg.Archiver != nil && cfg.Archiver.Enabled {
		dest, err := archive.NewStore(ctx, cfg.Archiver.DSN)
		if err != nil {
			return fmt.Errorf("connecting archive store: %w", err)
		}
		defer dest.Close()
		if err := dest.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating archive store: %w", err)
		}

		interval, err := config.Duration(cfg.Archiver.Interval, 5*time.Minute)
		if err != nil {
			return fmt.Errorf("archiver interval: %w", err)
		}
		arch = archive.New(prov, dest, interval, nil)
		arch.Start(ctx)
		defer arch.Stop(ctx)
	}

	addr := defaultAddr
	apiKey := ""
	var maxBody int64
	if cfg.Server != nil {
		if cfg.Server.Addr != "" {
			addr = cfg.Server.Addr
		}
		apiKey = cfg.Server.APIKey
		maxBody = cfg.Server.MaxRequestBody
	}

	srv := server.New(addr, apiKey, maxBody, orch, prov)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	color.Green("Server stopped")
	return nil
}
