// Package planner orchestrates full plan runs: it fans planning out across
// product/location pairs, collects exceptions and order recommendations, and
// promotes the finished run to be the plan's authoritative result.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/replan-systems/replan/internal/exception"
	"github.com/replan-systems/replan/internal/metrics"
	"github.com/replan-systems/replan/internal/netting"
	"github.com/replan-systems/replan/internal/policy"
	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/internal/recommend"
	"github.com/replan-systems/replan/pkg/types"
)

// ErrConcurrentRun is returned when a run is requested for a plan that
// already has a run in flight.
var ErrConcurrentRun = errors.New("plan already has a run in progress")

const (
	defaultWorkers     = 8
	defaultPairTimeout = 30 * time.Second
	defaultCadenceDays = 7
)

// Scope restricts a run to a subset of product/location pairs. An empty
// scope plans every pair with an active policy.
type Scope struct {
	Pairs []types.Pair
}

// Orchestrator coordinates plan runs against a provider and a netting engine.
type Orchestrator struct {
	store       provider.Provider
	engine      *netting.Engine
	alertFn     func(context.Context, types.Alert)
	logger      *slog.Logger
	workers     int
	pairTimeout time.Duration
	cadenceDays int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the number of concurrent pair workers.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPairTimeout sets the per-pair planning deadline.
func WithPairTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pairTimeout = d
		}
	}
}

// WithCadence sets the default days between runs when a plan does not
// carry its own cadence.
func WithCadence(days int) Option {
	return func(o *Orchestrator) {
		if days > 0 {
			o.cadenceDays = days
		}
	}
}

// WithAlertFunc sets the callback invoked for exception and past-due alerts.
func WithAlertFunc(fn func(context.Context, types.Alert)) Option {
	return func(o *Orchestrator) { o.alertFn = fn }
}

// New creates an Orchestrator.
func New(store provider.Provider, engine *netting.Engine, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:       store,
		engine:      engine,
		logger:      logger,
		workers:     defaultWorkers,
		pairTimeout: defaultPairTimeout,
		cadenceDays: defaultCadenceDays,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// pairResult carries one pair's planned trajectory through to the
// exception and recommendation stages.
type pairResult struct {
	pol        types.ItemPolicy
	trajectory []types.TrajectoryBucket
}

// Run executes a full planning run for the plan. Exactly one run may be in
// flight per plan; a second concurrent attempt fails with ErrConcurrentRun.
// Pair-level failures skip the pair and continue; infrastructure failures
// abort the run, scrub its partial records, and restore the plan's prior
// status.
func (o *Orchestrator) Run(ctx context.Context, planID string, scope Scope) (*types.RunResult, error) {
	plan, err := o.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	prior := plan.Status
	if prior == types.PlanRunning {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrConcurrentRun)
	}

	ok, err := o.store.CompareAndSwapPlanStatus(ctx, planID, prior, types.PlanRunning)
	if err != nil {
		return nil, fmt.Errorf("starting run for plan %s: %w", planID, err)
	}
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", planID, ErrConcurrentRun)
	}

	started := time.Now()
	runID := ulid.Make().String()
	metrics.RunsStarted.Add(1)

	o.logger.Info("run started", "plan_id", planID, "run_id", runID, "prior_status", prior)
	o.appendEvent(ctx, types.Event{
		Kind:      types.EventRunStarted,
		PlanID:    planID,
		RunID:     runID,
		Timestamp: started,
	})

	if cur, err := o.store.GetPlan(ctx, planID); err == nil {
		cur.LastRunAt = &started
		if err := o.store.PutPlan(ctx, *cur); err != nil {
			o.logger.Warn("stamping last run time failed", "plan_id", planID, "error", err)
		}
	}

	horizon := types.Horizon{
		Start:       startOfDay(started),
		Buckets:     plan.HorizonBuckets,
		Granularity: plan.Granularity,
	}

	pairs, policies, excluded, err := o.workingSet(ctx, scope)
	if err != nil {
		return o.failRun(ctx, planID, runID, prior, started, err)
	}

	var (
		mu      sync.Mutex
		skipped []types.PairError
		results []pairResult
	)

	for _, pe := range excluded {
		metrics.PairsSkipped.Add(1)
		o.logger.Warn("pair skipped", "plan_id", planID, "run_id", runID,
			"pair", pe.Pair.String(), "error", pe.Reason)
		o.appendEvent(ctx, types.Event{
			Kind:      types.EventPairSkipped,
			PlanID:    planID,
			RunID:     runID,
			Product:   pe.Pair.Product,
			Location:  pe.Pair.Location,
			Message:   pe.Reason,
			Timestamp: time.Now(),
		})
		skipped = append(skipped, pe)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, pair := range pairs {
		pair := pair
		pol := policies[pair]
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, o.pairTimeout)
			defer cancel()

			trajectory, err := o.engine.Explode(pctx, *plan, runID, pol, horizon)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				metrics.PairsSkipped.Add(1)
				o.logger.Warn("pair skipped", "plan_id", planID, "run_id", runID,
					"pair", pair.String(), "error", err)
				o.appendEvent(gctx, types.Event{
					Kind:      types.EventPairSkipped,
					PlanID:    planID,
					RunID:     runID,
					Product:   pair.Product,
					Location:  pair.Location,
					Message:   err.Error(),
					Timestamp: time.Now(),
				})
				mu.Lock()
				skipped = append(skipped, types.PairError{Pair: pair, Reason: err.Error()})
				mu.Unlock()
				return nil
			}

			if err := o.store.PutTrajectory(gctx, trajectory); err != nil {
				return fmt.Errorf("storing trajectory for %s: %w", pair, err)
			}

			metrics.PairsPlanned.Add(1)
			mu.Lock()
			results = append(results, pairResult{pol: pol, trajectory: trajectory})
			mu.Unlock()
			return nil
		})
	}

	// On cancellation in-flight pairs abort with the context; failRun then
	// scrubs everything written under this run id, so no partial output
	// survives either way.
	if err := g.Wait(); err != nil {
		return o.failRun(ctx, planID, runID, prior, started, err)
	}
	if err := ctx.Err(); err != nil {
		return o.failRun(ctx, planID, runID, prior, started, err)
	}

	var totalExceptions, totalRecs int
	for _, r := range results {
		excs := exception.Detect(r.trajectory)
		if len(excs) > 0 {
			if err := o.store.PutExceptions(ctx, excs); err != nil {
				return o.failRun(ctx, planID, runID, prior, started, fmt.Errorf("storing exceptions: %w", err))
			}
			metrics.ExceptionsRaised.Add(int64(len(excs)))
			totalExceptions += len(excs)
			o.alertExceptions(ctx, excs)
		}

		recs := recommend.Generate(r.trajectory, r.pol, horizon, started)
		if len(recs) > 0 {
			if err := o.store.PutRecommendations(ctx, recs); err != nil {
				return o.failRun(ctx, planID, runID, prior, started, fmt.Errorf("storing recommendations: %w", err))
			}
			metrics.RecommendationsCreated.Add(int64(len(recs)))
			totalRecs += len(recs)
			o.alertPastDue(ctx, recs)
		}
	}

	finished := time.Now()
	cadence := plan.CadenceDays
	if cadence <= 0 {
		cadence = o.cadenceDays
	}
	nextRunAt := finished.AddDate(0, 0, cadence)

	if err := o.store.PromoteRun(ctx, planID, runID, &nextRunAt); err != nil {
		return o.failRun(ctx, planID, runID, prior, started, fmt.Errorf("promoting run: %w", err))
	}

	o.appendEvent(ctx, types.Event{
		Kind:      types.EventRunPromoted,
		PlanID:    planID,
		RunID:     runID,
		Timestamp: finished,
	})
	o.appendEvent(ctx, types.Event{
		Kind:   types.EventRunCompleted,
		PlanID: planID,
		RunID:  runID,
		Details: map[string]interface{}{
			"pairsPlanned": len(results),
			"pairsSkipped": len(skipped),
		},
		Timestamp: finished,
	})
	metrics.RunsCompleted.Add(1)

	o.logger.Info("run completed", "plan_id", planID, "run_id", runID,
		"pairs_planned", len(results), "pairs_skipped", len(skipped),
		"exceptions", totalExceptions, "recommendations", totalRecs,
		"duration", finished.Sub(started))

	return &types.RunResult{
		PlanID:                 planID,
		RunID:                  runID,
		Outcome:                types.RunCompleted,
		PairsPlanned:           len(results),
		PairsSkipped:           len(skipped),
		SkippedPairs:           skipped,
		ExceptionsCreated:      totalExceptions,
		RecommendationsCreated: totalRecs,
		StartedAt:              started,
		FinishedAt:             finished,
	}, nil
}

// workingSet resolves which pairs to plan and the policy for each. An empty
// scope plans every active policy. Scoped pairs without a stored policy fall
// back to policy defaults; scoped pairs whose stored policy is deactivated
// are excluded and reported as skipped rather than planned under defaults.
func (o *Orchestrator) workingSet(ctx context.Context, scope Scope) ([]types.Pair, map[types.Pair]types.ItemPolicy, []types.PairError, error) {
	stored, err := o.store.ListPolicies(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing policies: %w", err)
	}

	policies := make(map[types.Pair]types.ItemPolicy)
	inactive := make(map[types.Pair]bool)
	for _, pol := range stored {
		pair := types.Pair{Product: pol.Product, Location: pol.Location}
		if !pol.Active {
			inactive[pair] = true
			continue
		}
		policies[pair] = pol
	}

	if len(scope.Pairs) == 0 {
		pairs := make([]types.Pair, 0, len(policies))
		for pair := range policies {
			pairs = append(pairs, pair)
		}
		return pairs, policies, nil, nil
	}

	var pairs []types.Pair
	var excluded []types.PairError
	for _, pair := range scope.Pairs {
		if inactive[pair] {
			excluded = append(excluded, types.PairError{Pair: pair, Reason: "item policy is deactivated"})
			continue
		}
		if _, ok := policies[pair]; !ok {
			policies[pair] = policy.Defaults(pair.Product, pair.Location)
		}
		pairs = append(pairs, pair)
	}
	return pairs, policies, excluded, nil
}

// failRun scrubs the aborted run's records, restores the plan's pre-run
// status, and records the failure.
func (o *Orchestrator) failRun(ctx context.Context, planID, runID string, prior types.PlanStatus, started time.Time, cause error) (*types.RunResult, error) {
	// Cleanup must proceed even if the run was cancelled.
	cleanupCtx := context.WithoutCancel(ctx)

	if err := o.store.DeleteRun(cleanupCtx, planID, runID); err != nil {
		o.logger.Error("scrubbing failed run", "plan_id", planID, "run_id", runID, "error", err)
	}
	if _, err := o.store.CompareAndSwapPlanStatus(cleanupCtx, planID, types.PlanRunning, prior); err != nil {
		o.logger.Error("restoring plan status", "plan_id", planID, "status", prior, "error", err)
	}

	outcome := types.RunFailed
	kind := types.EventRunFailed
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		outcome = types.RunCancelled
		kind = types.EventRunCancelled
		metrics.RunsCancelled.Add(1)
	} else {
		metrics.RunsFailed.Add(1)
	}

	finished := time.Now()
	o.appendEvent(cleanupCtx, types.Event{
		Kind:      kind,
		PlanID:    planID,
		RunID:     runID,
		Message:   cause.Error(),
		Timestamp: finished,
	})

	o.logger.Error("run aborted", "plan_id", planID, "run_id", runID,
		"outcome", outcome, "error", cause)

	return &types.RunResult{
		PlanID:     planID,
		RunID:      runID,
		Outcome:    outcome,
		StartedAt:  started,
		FinishedAt: finished,
	}, cause
}

func (o *Orchestrator) alertExceptions(ctx context.Context, excs []types.Exception) {
	if o.alertFn == nil {
		return
	}
	for _, exc := range excs {
		var level types.AlertLevel
		switch exc.Severity {
		case types.SeverityCritical:
			level = types.AlertLevelError
		case types.SeverityHigh:
			level = types.AlertLevelWarning
		default:
			continue
		}
		o.alertFn(ctx, types.Alert{
			Level:    level,
			PlanID:   exc.PlanID,
			Product:  exc.Product,
			Location: exc.Location,
			Message: fmt.Sprintf("%s in bucket %d: shortfall %.2f",
				exc.Type, exc.BucketIndex, exc.Quantity),
			Details: map[string]interface{}{
				"exceptionId": exc.ID,
				"severity":    string(exc.Severity),
			},
			Timestamp: time.Now(),
		})
	}
}

func (o *Orchestrator) alertPastDue(ctx context.Context, recs []types.Recommendation) {
	if o.alertFn == nil {
		return
	}
	for _, rec := range recs {
		if !rec.PastDue {
			continue
		}
		o.alertFn(ctx, types.Alert{
			Level:    types.AlertLevelWarning,
			PlanID:   rec.PlanID,
			Product:  rec.Product,
			Location: rec.Location,
			Message: fmt.Sprintf("order of %.2f should already have been placed (needed by bucket %d)",
				rec.FinalOrderQty, rec.BucketIndex),
			Details: map[string]interface{}{
				"recommendationId": rec.ID,
				"orderDate":        rec.OrderDate.Format(time.RFC3339),
			},
			Timestamp: time.Now(),
		})
	}
}

func (o *Orchestrator) appendEvent(ctx context.Context, event types.Event) {
	if err := o.store.AppendEvent(ctx, event); err != nil {
		o.logger.Warn("appending event failed", "kind", event.Kind, "plan_id", event.PlanID, "error", err)
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
