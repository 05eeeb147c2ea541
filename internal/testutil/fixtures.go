// Package testutil provides shared fixtures for planning tests.
package testutil

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/replan-systems/replan/internal/feeds"
	"github.com/replan-systems/replan/pkg/types"
)

// TestPlan returns a draft plan over a short weekly horizon.
func TestPlan(id string, buckets int) types.Plan {
	now := time.Now()
	return types.Plan{
		ID:             id,
		Name:           "test plan " + id,
		HorizonBuckets: buckets,
		Granularity:    types.BucketWeek,
		Status:         types.PlanDraft,
		CadenceDays:    7,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// TestPolicy returns an active lot-for-lot policy with fixed safety stock.
func TestPolicy(product, location string) types.ItemPolicy {
	return types.ItemPolicy{
		Product:           product,
		Location:          location,
		SafetyStockMethod: types.SafetyFixed,
		SafetyStockParam:  10,
		ServiceLevel:      0.95,
		LotSizingRule:     types.LotForLot,
		LeadTimeBuckets:   2,
		UnitCost:          decimal.NewFromInt(25),
		ApprovalThreshold: decimal.NewFromInt(10000),
		Active:            true,
	}
}

// TestHorizon returns a weekly horizon starting at a fixed date so planned
// dates are stable across test runs.
func TestHorizon(buckets int) types.Horizon {
	return types.Horizon{
		Start:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Buckets:     buckets,
		Granularity: types.BucketWeek,
	}
}

// SeededFeeds returns static feeds seeded with one well-stocked pair.
func SeededFeeds(product, location string, available float64, demand []float64) feeds.Feeds {
	src := feeds.NewStatic()
	src.SetStock(product, location, types.Stock{
		OnHand:    available,
		Available: available,
	})
	mean, std := seriesStats(demand)
	src.SetDemand(product, location, demand, types.DemandStats{Mean: mean, StdDev: std})
	return feeds.Feeds{Inventory: src, Demand: src, Receipts: src}
}

func seriesStats(series []float64) (mean, std float64) {
	if len(series) == 0 {
		return 0, 0
	}
	for _, v := range series {
		mean += v
	}
	mean /= float64(len(series))
	var ss float64
	for _, v := range series {
		d := v - mean
		ss += d * d
	}
	if len(series) > 1 {
		ss /= float64(len(series) - 1)
	}
	return mean, math.Sqrt(ss)
}
