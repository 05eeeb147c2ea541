package netting

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replan-systems/replan/internal/testutil"
	"github.com/replan-systems/replan/pkg/types"
)

func explode(t *testing.T, pol types.ItemPolicy, available float64, demand []float64) []types.TrajectoryBucket {
	t.Helper()
	f := testutil.SeededFeeds(pol.Product, pol.Location, available, demand)
	eng := NewEngine(f, nil, nil)

	plan := testutil.TestPlan("plan-1", len(demand))
	horizon := testutil.TestHorizon(len(demand))

	buckets, err := eng.Explode(context.Background(), plan, "run-1", pol, horizon)
	require.NoError(t, err)
	require.Len(t, buckets, len(demand))
	return buckets
}

func TestExplodeNetting(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	pol.SafetyStockParam = 0
	pol.LeadTimeBuckets = 0

	// 100 on hand, 40 demand per bucket: bucket 0 ends at 60, bucket 1 at 20,
	// bucket 2 dips below zero and triggers a planned order.
	buckets := explode(t, pol, 100, []float64{40, 40, 40, 40})

	assert.Equal(t, 100.0, buckets[0].BeginningInventory)
	assert.Equal(t, 60.0, buckets[0].ProjectedAvailable)
	assert.Equal(t, 0.0, buckets[0].NetRequirements)

	assert.Equal(t, 20.0, buckets[1].ProjectedAvailable)

	assert.Equal(t, -20.0, buckets[2].ProjectedAvailable)
	assert.Equal(t, 20.0, buckets[2].NetRequirements)
	assert.Equal(t, 20.0, buckets[2].PlannedOrderReceipt)

	// the receipt restores the position to exactly zero
	assert.Equal(t, 0.0, buckets[3].BeginningInventory)
}

func TestExplodeContinuity(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	pol.SafetyStockParam = 25

	buckets := explode(t, pol, 80, []float64{30, 10, 55, 0, 20, 45})

	for i := 1; i < len(buckets); i++ {
		prev := buckets[i-1]
		assert.Equal(t, prev.ProjectedAvailable+prev.PlannedOrderReceipt,
			buckets[i].BeginningInventory, "bucket %d", i)
	}
}

func TestExplodeSafetyStockReplenishment(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	pol.SafetyStockParam = 30
	pol.LeadTimeBuckets = 0

	// begin 20, demand 5: projected 15 is under safety stock 30, so the
	// engine orders the 15-unit gap even though no stockout occurs.
	buckets := explode(t, pol, 20, []float64{5, 0})

	assert.Equal(t, 15.0, buckets[0].ProjectedAvailable)
	assert.Equal(t, 15.0, buckets[0].NetRequirements)
	assert.Equal(t, 15.0, buckets[0].PlannedOrderReceipt)
	assert.Equal(t, 30.0, buckets[1].BeginningInventory)
}

func TestExplodeLeadTimeOffset(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	pol.SafetyStockParam = 0
	pol.LeadTimeBuckets = 2

	buckets := explode(t, pol, 100, []float64{0, 0, 0, 0, 120, 0})

	// receipt lands in bucket 4, release is offset two buckets earlier
	assert.Equal(t, 20.0, buckets[4].PlannedOrderReceipt)
	assert.Equal(t, 20.0, buckets[2].PlannedOrderRelease)
	assert.False(t, buckets[2].BoundaryRelease)
	assert.Equal(t, 0.0, buckets[4].PlannedOrderRelease)
}

func TestExplodeBoundaryRelease(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	pol.SafetyStockParam = 0
	pol.LeadTimeBuckets = 3

	// shortage in bucket 1 with a 3-bucket lead time: the release would land
	// before the horizon, so it clamps to bucket 0 and is flagged
	buckets := explode(t, pol, 10, []float64{0, 50, 0, 0})

	assert.Equal(t, 40.0, buckets[1].PlannedOrderReceipt)
	assert.Equal(t, 40.0, buckets[0].PlannedOrderRelease)
	assert.True(t, buckets[0].BoundaryRelease)
}

func TestExplodeScheduledReceipts(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	pol.SafetyStockParam = 0

	f := testutil.SeededFeeds("P1", "L1", 10, []float64{50, 50})
	static := f.Inventory.(interface {
		SetReceipts(product, location string, series []float64)
	})
	static.SetReceipts("P1", "L1", []float64{60, 0})

	eng := NewEngine(f, nil, nil)
	buckets, err := eng.Explode(context.Background(), testutil.TestPlan("plan-1", 2), "run-1",
		pol, testutil.TestHorizon(2))
	require.NoError(t, err)

	// 10 + 60 - 50 = 20: the open order covers the first bucket
	assert.Equal(t, 20.0, buckets[0].ProjectedAvailable)
	assert.Equal(t, 0.0, buckets[0].PlannedOrderReceipt)
}

func TestExplodeDeterministic(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	demand := []float64{33, 48, 12, 90, 5, 71, 22, 60}

	first := explode(t, pol, 150, demand)
	second := explode(t, pol, 150, demand)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("trajectories differ between identical runs:\n%s", diff)
	}
}

func TestExplodeInvalidPolicy(t *testing.T) {
	pol := testutil.TestPolicy("P1", "L1")
	pol.LotSizingRule = "bogus"

	f := testutil.SeededFeeds("P1", "L1", 100, []float64{10})
	eng := NewEngine(f, nil, nil)

	_, err := eng.Explode(context.Background(), testutil.TestPlan("plan-1", 1), "run-1",
		pol, testutil.TestHorizon(1))
	assert.Error(t, err)
}

func TestExplodeMissingInventory(t *testing.T) {
	f := testutil.SeededFeeds("P1", "L1", 100, []float64{10})
	eng := NewEngine(f, nil, nil)

	pol := testutil.TestPolicy("P2", "L1")
	_, err := eng.Explode(context.Background(), testutil.TestPlan("plan-1", 1), "run-1",
		pol, testutil.TestHorizon(1))
	assert.Error(t, err)
}

func TestBuiltinEvaluator(t *testing.T) {
	eval := Builtin{}

	out, err := eval.Evaluate(context.Background(), EvalInput{
		BeginningInventory: 50,
		GrossRequirements:  30,
		ScheduledReceipts:  10,
		SafetyStock:        40,
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, out.ProjectedAvailable)
	assert.Equal(t, 10.0, out.NetRequirements)

	_, err = eval.Evaluate(context.Background(), EvalInput{GrossRequirements: -1})
	assert.Error(t, err)
}
