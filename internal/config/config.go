// Package config handles loading and validation of replan.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/replan-systems/replan/pkg/types"
)

// FileName is the project configuration file loaded from the config directory.
const FileName = "replan.yaml"

// Load reads and parses replan.yaml from the given directory.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *types.ProjectConfig) error {
	switch cfg.Provider {
	case "":
		return fmt.Errorf("provider is required")
	case "memory":
	case "sqlite":
		if cfg.SQLite == nil || cfg.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required when provider is sqlite")
		}
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.Evaluator != nil {
		switch cfg.Evaluator.Type {
		case "", "builtin":
		case "http":
			if cfg.Evaluator.URL == "" {
				return fmt.Errorf("evaluator.url is required when evaluator type is http")
			}
		default:
			return fmt.Errorf("unknown evaluator type %q", cfg.Evaluator.Type)
		}
		if _, err := duration(cfg.Evaluator.Timeout); err != nil {
			return fmt.Errorf("evaluator.timeout: %w", err)
		}
	}

	if cfg.Feeds != nil {
		switch cfg.Feeds.Type {
		case "", "static":
		case "http":
			if cfg.Feeds.URL == "" {
				return fmt.Errorf("feeds.url is required when feeds type is http")
			}
		default:
			return fmt.Errorf("unknown feeds type %q", cfg.Feeds.Type)
		}
	}

	if cfg.Planner != nil {
		if cfg.Planner.Workers < 0 {
			return fmt.Errorf("planner.workers must not be negative")
		}
		if _, err := duration(cfg.Planner.PairTimeout); err != nil {
			return fmt.Errorf("planner.pairTimeout: %w", err)
		}
	}

	for i, ac := range cfg.Alerts {
		switch ac.Type {
		case types.AlertConsole:
		case types.AlertWebhook:
			if ac.URL == "" {
				return fmt.Errorf("alerts[%d]: webhook url is required", i)
			}
		case types.AlertFile:
			if ac.Path == "" {
				return fmt.Errorf("alerts[%d]: file path is required", i)
			}
		default:
			return fmt.Errorf("alerts[%d]: unknown alert type %q", i, ac.Type)
		}
	}

	if cfg.Archiver != nil && cfg.Archiver.Enabled {
		if cfg.Archiver.DSN == "" {
			return fmt.Errorf("archiver.dsn is required when archiver is enabled")
		}
		if _, err := duration(cfg.Archiver.Interval); err != nil {
			return fmt.Errorf("archiver.interval: %w", err)
		}
	}

	return nil
}

// Duration parses an optional duration string, returning fallback when unset.
func Duration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func duration(s string) (time.Duration, error) {
	return Duration(s, 0)
}
