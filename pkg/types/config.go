package types

// ProjectConfig represents the top-level replan.yaml configuration.
type ProjectConfig struct {
	Provider  string          `yaml:"provider"`
	SQLite    *SQLiteConfig   `yaml:"sqlite,omitempty"`
	Server    *ServerConfig   `yaml:"server,omitempty"`
	Planner   *PlannerConfig  `yaml:"planner,omitempty"`
	Evaluator *EvalConfig     `yaml:"evaluator,omitempty"`
	Feeds     *FeedsConfig    `yaml:"feeds,omitempty"`
	Alerts    []AlertConfig   `yaml:"alerts,omitempty"`
	Archiver  *ArchiverConfig `yaml:"archiver,omitempty"`
}

// SQLiteConfig holds SQLite storage settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	APIKey         string `yaml:"apiKey,omitempty"`
	MaxRequestBody int64  `yaml:"maxRequestBody,omitempty"`
}

// PlannerConfig holds orchestrator settings.
type PlannerConfig struct {
	Workers     int    `yaml:"workers,omitempty"`     // bounded pair fan-out, default 8
	PairTimeout string `yaml:"pairTimeout,omitempty"` // e.g. "30s"
	CadenceDays int    `yaml:"cadenceDays,omitempty"` // default 7
}

// EvalConfig selects the per-bucket netting evaluator.
type EvalConfig struct {
	Type    string `yaml:"type"` // "builtin" or "http"
	URL     string `yaml:"url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// FeedsConfig selects the external data sources (inventory, demand, receipts).
type FeedsConfig struct {
	Type     string `yaml:"type"` // "static" or "http"
	URL      string `yaml:"url,omitempty"`
	DataFile string `yaml:"dataFile,omitempty"` // static feed seed file
}

// AlertConfig defines an alert sink configuration.
type AlertConfig struct {
	Type AlertType `yaml:"type"`
	URL  string    `yaml:"url,omitempty"`
	Path string    `yaml:"path,omitempty"`
}

// ArchiverConfig configures the background Postgres archiver.
type ArchiverConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval,omitempty"` // e.g. "5m"
	DSN      string `yaml:"dsn"`
}
