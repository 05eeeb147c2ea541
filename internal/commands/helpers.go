// Package commands implements the CLI subcommands for the replan binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/replan-systems/replan/internal/alert"
	"github.com/replan-systems/replan/internal/config"
	"github.com/replan-systems/replan/internal/feeds"
	"github.com/replan-systems/replan/internal/netting"
	"github.com/replan-systems/replan/internal/planner"
	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/internal/provider/memory"
	"github.com/replan-systems/replan/internal/provider/sqlite"
	"github.com/replan-systems/replan/pkg/types"
)

// newProvider creates the configured storage provider.
func newProvider(cfg *types.ProjectConfig) (provider.Provider, error) {
	switch cfg.Provider {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		if cfg.SQLite == nil || cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("sqlite.path is required when provider is sqlite")
		}
		return sqlite.New(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// newFeeds creates the configured external data sources.
func newFeeds(cfg *types.ProjectConfig) (feeds.Feeds, error) {
	if cfg.Feeds == nil || cfg.Feeds.Type == "" || cfg.Feeds.Type == "static" {
		var src *feeds.Static
		var err error
		if cfg.Feeds != nil && cfg.Feeds.DataFile != "" {
			src, err = feeds.LoadStatic(cfg.Feeds.DataFile)
			if err != nil {
				return feeds.Feeds{}, fmt.Errorf("loading feed data: %w", err)
			}
		} else {
			src = feeds.NewStatic()
		}
		return feeds.Feeds{Inventory: src, Demand: src, Receipts: src}, nil
	}

	if cfg.Feeds.Type == "http" {
		client := feeds.NewHTTPClient(cfg.Feeds.URL)
		return feeds.Feeds{Inventory: client, Demand: client, Receipts: client}, nil
	}

	return feeds.Feeds{}, fmt.Errorf("unsupported feeds type: %s", cfg.Feeds.Type)
}

// newEvaluator creates the configured netting evaluator.
func newEvaluator(cfg *types.ProjectConfig) (netting.Evaluator, error) {
	if cfg.Evaluator == nil || cfg.Evaluator.Type == "" || cfg.Evaluator.Type == "builtin" {
		return netting.Builtin{}, nil
	}
	if cfg.Evaluator.Type == "http" {
		timeout, err := config.Duration(cfg.Evaluator.Timeout, 10*time.Second)
		if err != nil {
			return nil, fmt.Errorf("evaluator timeout: %w", err)
		}
		return netting.NewHTTPEvaluator(cfg.Evaluator.URL, timeout), nil
	}
	return nil, fmt.Errorf("unsupported evaluator type: %s", cfg.Evaluator.Type)
}

// buildStack wires the provider, engine, orchestrator, and alert dispatcher
// from the project config. The returned cleanup stops the provider.
func buildStack(cfg *types.ProjectConfig) (provider.Provider, *planner.Orchestrator, *alert.Dispatcher, func(), error) {
	logger := slog.Default()

	prov, err := newProvider(cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ctx := context.Background()
	if err := prov.Start(ctx); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("starting provider: %w", err)
	}
	cleanup := func() {
		if err := prov.Stop(context.Background()); err != nil {
			logger.Error("stopping provider", "error", err)
		}
	}

	f, err := newFeeds(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	eval, err := newEvaluator(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}

	dispatcher, err := alert.NewDispatcher(cfg.Alerts, logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, fmt.Errorf("creating alert dispatcher: %w", err)
	}

	engine := netting.NewEngine(f, eval, logger)

	opts := []planner.Option{planner.WithAlertFunc(dispatcher.AlertFunc())}
	if cfg.Planner != nil {
		if cfg.Planner.Workers > 0 {
			opts = append(opts, planner.WithWorkers(cfg.Planner.Workers))
		}
		if cfg.Planner.CadenceDays > 0 {
			opts = append(opts, planner.WithCadence(cfg.Planner.CadenceDays))
		}
		if cfg.Planner.PairTimeout != "" {
			d, err := config.Duration(cfg.Planner.PairTimeout, 0)
			if err != nil {
				cleanup()
				return nil, nil, nil, nil, fmt.Errorf("planner pairTimeout: %w", err)
			}
			opts = append(opts, planner.WithPairTimeout(d))
		}
	}
	orch := planner.New(prov, engine, logger, opts...)

	return prov, orch, dispatcher, cleanup, nil
}
