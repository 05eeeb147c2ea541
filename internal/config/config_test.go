package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))
	return dir
}

func TestLoadValid(t *testing.T) {
	dir := writeConfig(t, `provider: sqlite
sqlite:
  path: replan.db
feeds:
  type: static
  dataFile: feeds.yaml
planner:
  workers: 4
  pairTimeout: 45s
  cadenceDays: 14
server:
  addr: ":9000"
  apiKey: secret
alerts:
  - type: console
  - type: file
    path: alerts.jsonl
archiver:
  enabled: true
  interval: 10m
  dsn: postgres://localhost/replan
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Provider)
	assert.Equal(t, "replan.db", cfg.SQLite.Path)
	assert.Equal(t, 4, cfg.Planner.Workers)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Len(t, cfg.Alerts, 2)
	assert.True(t, cfg.Archiver.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing provider", "feeds:\n  type: static\n"},
		{"unknown provider", "provider: etcd\n"},
		{"sqlite without path", "provider: sqlite\n"},
		{"http evaluator without url", "provider: memory\nevaluator:\n  type: http\n"},
		{"unknown evaluator", "provider: memory\nevaluator:\n  type: grpc\n"},
		{"http feeds without url", "provider: memory\nfeeds:\n  type: http\n"},
		{"bad pair timeout", "provider: memory\nplanner:\n  pairTimeout: soon\n"},
		{"webhook without url", "provider: memory\nalerts:\n  - type: webhook\n"},
		{"file sink without path", "provider: memory\nalerts:\n  - type: file\n"},
		{"unknown alert type", "provider: memory\nalerts:\n  - type: pager\n"},
		{"archiver without dsn", "provider: memory\narchiver:\n  enabled: true\n"},
		{"not yaml", "provider: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.content)
			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestDuration(t *testing.T) {
	d, err := Duration("", 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = Duration("2m", 0)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)

	_, err = Duration("soon", 0)
	assert.Error(t, err)

	_, err = Duration("-5s", 0)
	assert.Error(t, err)
}
