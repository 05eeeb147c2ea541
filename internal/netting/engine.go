package netting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/replan-systems/replan/internal/feeds"
	"github.com/replan-systems/replan/internal/lotsize"
	"github.com/replan-systems/replan/internal/policy"
	"github.com/replan-systems/replan/pkg/types"
)

// Engine walks the planning horizon for one (product, location) pair and
// produces its projected inventory trajectory. The walk is strictly
// sequential: bucket i+1's beginning inventory is bucket i's ending position.
type Engine struct {
	feeds  feeds.Feeds
	eval   Evaluator
	logger *slog.Logger
}

// NewEngine creates a netting engine over the given feeds and evaluator.
func NewEngine(f feeds.Feeds, eval Evaluator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if eval == nil {
		eval = Builtin{}
	}
	return &Engine{feeds: f, eval: eval, logger: logger}
}

// Explode computes the full trajectory for one pair under the given policy.
// Given identical inputs the trajectory is fully deterministic.
func (e *Engine) Explode(ctx context.Context, plan types.Plan, runID string, pol types.ItemPolicy, horizon types.Horizon) ([]types.TrajectoryBucket, error) {
	if err := policy.Validate(pol); err != nil {
		return nil, fmt.Errorf("validating policy: %w", err)
	}

	stock, err := e.feeds.Inventory.CurrentStock(ctx, pol.Product, pol.Location)
	if err != nil {
		return nil, fmt.Errorf("reading inventory snapshot: %w", err)
	}
	gross, err := e.feeds.Demand.Demand(ctx, pol.Product, pol.Location, horizon.Buckets)
	if err != nil {
		return nil, fmt.Errorf("reading demand forecast: %w", err)
	}
	stats, err := e.feeds.Demand.Stats(ctx, pol.Product, pol.Location)
	if err != nil {
		return nil, fmt.Errorf("reading demand stats: %w", err)
	}
	scheduled, err := e.feeds.Receipts.ScheduledReceipts(ctx, pol.Product, pol.Location, horizon.Buckets)
	if err != nil {
		return nil, fmt.Errorf("reading scheduled receipts: %w", err)
	}

	safetyStock := policy.SafetyStock(pol, stats)
	reorderPoint := policy.ReorderPoint(pol, stats)

	buckets := make([]types.TrajectoryBucket, horizon.Buckets)
	for i := range buckets {
		buckets[i] = types.TrajectoryBucket{
			PlanID:            plan.ID,
			RunID:             runID,
			Product:           pol.Product,
			Location:          pol.Location,
			Index:             i,
			StartDate:         horizon.BucketStart(i),
			EndDate:           horizon.BucketEnd(i),
			GrossRequirements: gross[i],
			ScheduledReceipts: scheduled[i],
			SafetyStock:       safetyStock,
			ReorderPoint:      reorderPoint,
		}
	}

	begin := stock.Available
	for i := range buckets {
		b := &buckets[i]
		b.BeginningInventory = begin

		out, err := e.eval.Evaluate(ctx, EvalInput{
			Index:              i,
			BeginningInventory: b.BeginningInventory,
			GrossRequirements:  b.GrossRequirements,
			ScheduledReceipts:  b.ScheduledReceipts,
			SafetyStock:        b.SafetyStock,
		})
		if err != nil {
			return nil, fmt.Errorf("netting bucket %d: %w", i, err)
		}
		b.ProjectedAvailable = out.ProjectedAvailable
		b.NetRequirements = out.NetRequirements

		if b.NetRequirements > 0 {
			receipt, err := lotsize.Resolve(lotsize.Input{
				NetRequirement:     b.NetRequirements,
				ProjectedAvailable: b.ProjectedAvailable,
				ForwardDemand:      gross[i:],
			}, pol)
			if err != nil {
				return nil, fmt.Errorf("lot sizing bucket %d: %w", i, err)
			}
			b.PlannedOrderReceipt = receipt

			if receipt > 0 {
				// Release is offset backward by the lead time. A release that
				// would fall before the horizon start lands on bucket 0 and is
				// flagged: the order should already have been placed.
				release := i - pol.LeadTimeBuckets
				if release < 0 {
					release = 0
					buckets[release].BoundaryRelease = true
				}
				buckets[release].PlannedOrderRelease += receipt
			}
		}

		begin = b.ProjectedAvailable + b.PlannedOrderReceipt
	}

	e.logger.Debug("trajectory exploded",
		"plan", plan.ID, "run", runID,
		"product", pol.Product, "location", pol.Location,
		"buckets", len(buckets), "evaluator", e.eval.Name())

	return buckets, nil
}
