package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/internal/testutil"
	"github.com/replan-systems/replan/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "replan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func seedRun(t *testing.T, s *Store, planID, runID string) {
	t.Helper()
	ctx := context.Background()

	h := testutil.TestHorizon(2)
	buckets := []types.TrajectoryBucket{
		{
			PlanID: planID, RunID: runID, Product: "P1", Location: "L1", Index: 0,
			StartDate: h.BucketStart(0), EndDate: h.BucketEnd(0),
			BeginningInventory: 100, GrossRequirements: 140,
			ProjectedAvailable: -40, NetRequirements: 50,
			PlannedOrderReceipt: 50, PlannedOrderRelease: 50,
			BoundaryRelease: true, SafetyStock: 10,
		},
		{
			PlanID: planID, RunID: runID, Product: "P1", Location: "L1", Index: 1,
			StartDate: h.BucketStart(1), EndDate: h.BucketEnd(1),
			BeginningInventory: 10, GrossRequirements: 0,
			ProjectedAvailable: 10, SafetyStock: 10,
		},
	}
	require.NoError(t, s.PutTrajectory(ctx, buckets))

	require.NoError(t, s.PutRecommendations(ctx, []types.Recommendation{{
		ID: runID + "-rec", PlanID: planID, RunID: runID,
		Product: "P1", Location: "L1", BucketIndex: 0,
		RecommendedQty: 50, FinalOrderQty: 50,
		UnitCost:   decimal.NewFromInt(25),
		TotalValue: decimal.NewFromInt(1250),
		OrderDate:  h.BucketStart(0), DeliveryDate: h.BucketStart(0),
		PastDue: true, ApprovalStatus: types.ApprovalPending,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}}))

	require.NoError(t, s.PutExceptions(ctx, []types.Exception{{
		ID: runID + "-exc", PlanID: planID, RunID: runID,
		Product: "P1", Location: "L1", BucketIndex: 0,
		Type: types.ExceptionStockout, Severity: types.SeverityCritical,
		Quantity: 40, ResolutionStatus: types.ResolutionOpen,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}}))
}

func TestPlanRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plan := testutil.TestPlan("plan-1", 4)
	require.NoError(t, s.PutPlan(ctx, plan))

	got, err := s.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, plan.Name, got.Name)
	assert.Equal(t, types.PlanDraft, got.Status)
	assert.Equal(t, 4, got.HorizonBuckets)
	assert.Nil(t, got.LastRunAt)

	// upsert overwrites in place
	plan.Name = "renamed"
	require.NoError(t, s.PutPlan(ctx, plan))
	got, err = s.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	require.NoError(t, s.DeletePlan(ctx, "plan-1"))
	_, err = s.GetPlan(ctx, "plan-1")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestCompareAndSwapPlanStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutPlan(ctx, testutil.TestPlan("plan-1", 4)))

	ok, err := s.CompareAndSwapPlanStatus(ctx, "plan-1", types.PlanDraft, types.PlanRunning)
	require.NoError(t, err)
	assert.True(t, ok)

	// stale expectation loses without error
	ok, err = s.CompareAndSwapPlanStatus(ctx, "plan-1", types.PlanDraft, types.PlanRunning)
	require.NoError(t, err)
	assert.False(t, ok)

	// invalid transitions are rejected outright
	_, err = s.CompareAndSwapPlanStatus(ctx, "plan-1", types.PlanRunning, types.PlanArchived)
	assert.Error(t, err)
}

func TestPromoteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutPlan(ctx, testutil.TestPlan("plan-1", 4)))

	next := time.Now().UTC().AddDate(0, 0, 7)
	err := s.PromoteRun(ctx, "plan-1", "run-a", &next)
	assert.Error(t, err, "promotion requires a running plan")

	_, err = s.CompareAndSwapPlanStatus(ctx, "plan-1", types.PlanDraft, types.PlanRunning)
	require.NoError(t, err)
	require.NoError(t, s.PromoteRun(ctx, "plan-1", "run-a", &next))

	got, err := s.GetPlan(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanActive, got.Status)
	assert.Equal(t, "run-a", got.CurrentRunID)
	require.NotNil(t, got.NextRunAt)
	assert.WithinDuration(t, next, *got.NextRunAt, time.Second)
}

func TestPromotedRunResolution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plan := testutil.TestPlan("plan-1", 2)
	plan.Status = types.PlanRunning
	require.NoError(t, s.PutPlan(ctx, plan))

	seedRun(t, s, "plan-1", "run-old")
	seedRun(t, s, "plan-1", "run-new")
	require.NoError(t, s.PromoteRun(ctx, "plan-1", "run-new", nil))

	// empty RunID resolves to the promoted run
	buckets, err := s.ListTrajectory(ctx, "plan-1", provider.TrajectoryFilter{})
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	for _, b := range buckets {
		assert.Equal(t, "run-new", b.RunID)
	}
	assert.True(t, buckets[0].BoundaryRelease)
	assert.Equal(t, -40.0, buckets[0].ProjectedAvailable)

	// a prior run stays readable by name
	buckets, err = s.ListTrajectory(ctx, "plan-1", provider.TrajectoryFilter{RunID: "run-old"})
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
}

func TestRecommendationFiltersAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plan := testutil.TestPlan("plan-1", 2)
	plan.Status = types.PlanRunning
	require.NoError(t, s.PutPlan(ctx, plan))
	seedRun(t, s, "plan-1", "run-a")
	require.NoError(t, s.PromoteRun(ctx, "plan-1", "run-a", nil))

	recs, err := s.ListRecommendations(ctx, "plan-1", provider.RecommendationFilter{PastDue: true})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].TotalValue.Equal(decimal.NewFromInt(1250)))

	recs, err = s.ListRecommendations(ctx, "plan-1", provider.RecommendationFilter{Status: types.ApprovalApproved})
	require.NoError(t, err)
	assert.Empty(t, recs)

	rec, err := s.GetRecommendation(ctx, "run-a-rec")
	require.NoError(t, err)
	rec.ApprovalStatus = types.ApprovalApproved
	require.NoError(t, s.UpdateRecommendation(ctx, *rec))

	recs, err = s.ListRecommendations(ctx, "plan-1", provider.RecommendationFilter{Status: types.ApprovalApproved})
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = s.GetRecommendation(ctx, "nope")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}

func TestExceptionFiltersAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plan := testutil.TestPlan("plan-1", 2)
	plan.Status = types.PlanRunning
	require.NoError(t, s.PutPlan(ctx, plan))
	seedRun(t, s, "plan-1", "run-a")
	require.NoError(t, s.PromoteRun(ctx, "plan-1", "run-a", nil))

	excs, err := s.ListExceptions(ctx, "plan-1", provider.ExceptionFilter{Severity: types.SeverityCritical})
	require.NoError(t, err)
	require.Len(t, excs, 1)
	assert.Equal(t, types.ExceptionStockout, excs[0].Type)
	assert.Equal(t, 40.0, excs[0].Quantity)

	excs, err = s.ListExceptions(ctx, "plan-1", provider.ExceptionFilter{Type: types.ExceptionExcessInventory})
	require.NoError(t, err)
	assert.Empty(t, excs)

	exc, err := s.GetException(ctx, "run-a-exc")
	require.NoError(t, err)
	exc.ResolutionStatus = types.ResolutionResolved
	exc.ResolutionNotes = "expedited"
	require.NoError(t, s.UpdateException(ctx, *exc))

	excs, err = s.ListExceptions(ctx, "plan-1", provider.ExceptionFilter{Status: types.ResolutionResolved})
	require.NoError(t, err)
	require.Len(t, excs, 1)
	assert.Equal(t, "expedited", excs[0].ResolutionNotes)
}

func TestDeleteRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	plan := testutil.TestPlan("plan-1", 2)
	plan.Status = types.PlanRunning
	require.NoError(t, s.PutPlan(ctx, plan))
	seedRun(t, s, "plan-1", "run-keep")
	seedRun(t, s, "plan-1", "run-drop")
	require.NoError(t, s.PromoteRun(ctx, "plan-1", "run-keep", nil))

	require.NoError(t, s.DeleteRun(ctx, "plan-1", "run-drop"))

	buckets, err := s.ListTrajectory(ctx, "plan-1", provider.TrajectoryFilter{RunID: "run-drop"})
	require.NoError(t, err)
	assert.Empty(t, buckets)

	buckets, err = s.ListTrajectory(ctx, "plan-1", provider.TrajectoryFilter{RunID: "run-keep"})
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
}

func TestEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutPlan(ctx, testutil.TestPlan("plan-1", 2)))

	for i, kind := range []types.EventKind{types.EventRunStarted, types.EventPairSkipped, types.EventRunCompleted} {
		require.NoError(t, s.AppendEvent(ctx, types.Event{
			Kind:      kind,
			PlanID:    "plan-1",
			RunID:     "run-a",
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	events, err := s.ListEvents(ctx, "plan-1", 0)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	// the limit keeps the most recent window, oldest first
	events, err = s.ListEvents(ctx, "plan-1", 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, types.EventPairSkipped, events[0].Kind)
	assert.Equal(t, types.EventRunCompleted, events[1].Kind)
}

func TestPolicies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pol := testutil.TestPolicy("P1", "L1")
	require.NoError(t, s.PutPolicy(ctx, pol))

	got, err := s.GetPolicy(ctx, "P1", "L1")
	require.NoError(t, err)
	assert.Equal(t, pol.LotSizingRule, got.LotSizingRule)
	assert.True(t, got.UnitCost.Equal(pol.UnitCost))
	assert.True(t, got.Active)

	pol.LeadTimeBuckets = 5
	require.NoError(t, s.PutPolicy(ctx, pol))
	got, err = s.GetPolicy(ctx, "P1", "L1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.LeadTimeBuckets)

	pols, err := s.ListPolicies(ctx)
	require.NoError(t, err)
	assert.Len(t, pols, 1)

	_, err = s.GetPolicy(ctx, "P1", "NOPE")
	assert.ErrorIs(t, err, provider.ErrNotFound)
}
