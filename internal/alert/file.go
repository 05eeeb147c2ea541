package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/replan-systems/replan/pkg/types"
)

// FileSink appends alerts as JSON lines for ingestion by log shippers.
// Each record carries the plan and the product@location pair so downstream
// filters can route stockout alerts by site.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// fileRecord is the on-disk line format. The pair is flattened to the
// canonical product@location form used everywhere else in logs and keys.
type fileRecord struct {
	Timestamp time.Time              `json:"ts"`
	Level     types.AlertLevel       `json:"level"`
	PlanID    string                 `json:"planId,omitempty"`
	Pair      string                 `json:"pair,omitempty"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// NewFileSink creates a file alert sink, verifying the path is writable.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening alert file: %w", err)
	}
	_ = f.Close()

	return &FileSink{path: path}, nil
}

// Name returns the sink identifier.
func (s *FileSink) Name() string { return "file" }

// Send appends the alert as one JSON line to the configured file.
func (s *FileSink) Send(_ context.Context, alert types.Alert) error {
	rec := fileRecord{
		Timestamp: alert.Timestamp,
		Level:     alert.Level,
		PlanID:    alert.PlanID,
		Message:   alert.Message,
		Details:   alert.Details,
	}
	if alert.Product != "" {
		rec.Pair = types.Pair{Product: alert.Product, Location: alert.Location}.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = f.Write(append(data, '\n'))
	return err
}
