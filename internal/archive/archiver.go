// Package archive provides a background process that copies promoted plan
// runs to Postgres for durable long-term storage.
package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/replan-systems/replan/internal/metrics"
	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/pkg/types"
)

const defaultInterval = 5 * time.Minute

// Destination defines the write interface for the archival backend.
type Destination interface {
	UpsertPlan(ctx context.Context, plan types.Plan) error
	InsertTrajectory(ctx context.Context, buckets []types.TrajectoryBucket) error
	InsertRecommendations(ctx context.Context, recs []types.Recommendation) error
	InsertExceptions(ctx context.Context, excs []types.Exception) error
	GetCursor(ctx context.Context, planID string) (string, error)
	SetCursor(ctx context.Context, planID, runID string) error
}

// Archiver periodically copies promoted runs to the archival backend.
type Archiver struct {
	source   provider.Provider
	dest     Destination
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a new Archiver.
func New(source provider.Provider, dest Destination, interval time.Duration, logger *slog.Logger) *Archiver {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		source:   source,
		dest:     dest,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the archiver background loop.
func (a *Archiver) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go a.loop(ctx)
	a.logger.Info("archiver started", "interval", a.interval)
}

// Stop signals the archiver to stop and waits for it to finish.
func (a *Archiver) Stop(_ context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.logger.Info("archiver stopped")
}

func (a *Archiver) loop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	// Run once immediately on start
	a.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Archiver) tick(ctx context.Context) {
	plans, err := a.source.ListPlans(ctx)
	if err != nil {
		a.logger.Error("archiver: failed to list plans", "error", err)
		return
	}

	for _, plan := range plans {
		if ctx.Err() != nil {
			return
		}
		if plan.CurrentRunID == "" {
			continue
		}
		a.archivePlan(ctx, plan)
	}
}

// archivePlan copies the plan's promoted run unless it was already archived.
func (a *Archiver) archivePlan(ctx context.Context, plan types.Plan) {
	cursor, err := a.dest.GetCursor(ctx, plan.ID)
	if err != nil {
		a.logger.Error("archiver: failed to load cursor", "plan_id", plan.ID, "error", err)
		return
	}
	if cursor == plan.CurrentRunID {
		return
	}

	runID := plan.CurrentRunID
	filter := provider.TrajectoryFilter{RunID: runID}

	buckets, err := a.source.ListTrajectory(ctx, plan.ID, filter)
	if err != nil {
		a.logger.Error("archiver: failed to list trajectory", "plan_id", plan.ID, "run_id", runID, "error", err)
		return
	}
	recs, err := a.source.ListRecommendations(ctx, plan.ID, provider.RecommendationFilter{RunID: runID})
	if err != nil {
		a.logger.Error("archiver: failed to list recommendations", "plan_id", plan.ID, "run_id", runID, "error", err)
		return
	}
	excs, err := a.source.ListExceptions(ctx, plan.ID, provider.ExceptionFilter{RunID: runID})
	if err != nil {
		a.logger.Error("archiver: failed to list exceptions", "plan_id", plan.ID, "run_id", runID, "error", err)
		return
	}

	if err := a.dest.UpsertPlan(ctx, plan); err != nil {
		a.logger.Error("archiver: failed to upsert plan", "plan_id", plan.ID, "error", err)
		return
	}
	if err := a.dest.InsertTrajectory(ctx, buckets); err != nil {
		a.logger.Error("archiver: failed to insert trajectory", "plan_id", plan.ID, "run_id", runID, "error", err)
		return
	}
	if err := a.dest.InsertRecommendations(ctx, recs); err != nil {
		a.logger.Error("archiver: failed to insert recommendations", "plan_id", plan.ID, "run_id", runID, "error", err)
		return
	}
	if err := a.dest.InsertExceptions(ctx, excs); err != nil {
		a.logger.Error("archiver: failed to insert exceptions", "plan_id", plan.ID, "run_id", runID, "error", err)
		return
	}
	if err := a.dest.SetCursor(ctx, plan.ID, runID); err != nil {
		a.logger.Error("archiver: failed to set cursor", "plan_id", plan.ID, "run_id", runID, "error", err)
		return
	}

	if err := a.source.AppendEvent(ctx, types.Event{
		Kind:      types.EventRunArchived,
		PlanID:    plan.ID,
		RunID:     runID,
		Timestamp: time.Now(),
	}); err != nil {
		a.logger.Warn("archiver: failed to append event", "plan_id", plan.ID, "error", err)
	}

	metrics.RunsArchived.Add(1)
	a.logger.Info("run archived", "plan_id", plan.ID, "run_id", runID,
		"buckets", len(buckets), "recommendations", len(recs), "exceptions", len(excs))
}
