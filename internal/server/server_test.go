package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replan-systems/replan/internal/netting"
	"github.com/replan-systems/replan/internal/planner"
	"github.com/replan-systems/replan/internal/provider/memory"
	"github.com/replan-systems/replan/internal/testutil"
	"github.com/replan-systems/replan/pkg/types"
)

func newTestServer(t *testing.T, demand []float64) (*Server, *memory.Store) {
	t.Helper()

	store := memory.New()
	require.NoError(t, store.PutPolicy(context.Background(), testutil.TestPolicy("P1", "L1")))

	f := testutil.SeededFeeds("P1", "L1", 100, demand)
	eng := netting.NewEngine(f, nil, nil)
	orch := planner.New(store, eng, nil, planner.WithWorkers(2))

	return New(":0", "", 0, orch, store), store
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, []float64{10})
	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlanLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, []float64{10, 10})

	rec := doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{
		"name":           "weekly dc plan",
		"horizonBuckets": 2,
		"granularity":    "week",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var plan types.Plan
	decode(t, rec, &plan)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, types.PlanDraft, plan.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/plans/"+plan.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/plans", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = doJSON(t, srv, http.MethodGet, "/api/plans/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlanValidation(t *testing.T) {
	srv, _ := newTestServer(t, []float64{10})

	rec := doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{
		"name": "no buckets",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/plans", map[string]interface{}{
		"name":           "bad granularity",
		"horizonBuckets": 4,
		"granularity":    "fortnight",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunPlanEndpoint(t *testing.T) {
	srv, store := newTestServer(t, []float64{200, 200})
	plan := testutil.TestPlan("plan-1", 2)
	require.NoError(t, store.PutPlan(context.Background(), plan))

	rec := doJSON(t, srv, http.MethodPost, "/api/plans/plan-1/run", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result types.RunResult
	decode(t, rec, &result)
	assert.Equal(t, types.RunCompleted, result.Outcome)
	assert.Equal(t, 1, result.PairsPlanned)

	// promoted results are now served
	rec = doJSON(t, srv, http.MethodGet, "/api/plans/plan-1/trajectory", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/plans/plan-1/exceptions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var excList struct {
		Count int `json:"count"`
	}
	decode(t, rec, &excList)
	assert.Greater(t, excList.Count, 0)
}

func TestRunPlanConflict(t *testing.T) {
	srv, store := newTestServer(t, []float64{10})
	plan := testutil.TestPlan("plan-1", 1)
	plan.Status = types.PlanRunning
	require.NoError(t, store.PutPlan(context.Background(), plan))

	rec := doJSON(t, srv, http.MethodPost, "/api/plans/plan-1/run", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRecommendationWorkflow(t *testing.T) {
	srv, store := newTestServer(t, []float64{200, 200})
	require.NoError(t, store.PutPlan(context.Background(), testutil.TestPlan("plan-1", 2)))

	rec := doJSON(t, srv, http.MethodPost, "/api/plans/plan-1/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/plans/plan-1/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Recommendations []types.Recommendation `json:"recommendations"`
	}
	decode(t, rec, &list)
	require.NotEmpty(t, list.Recommendations)
	recID := list.Recommendations[0].ID

	// modify, then approve, then convert
	rec = doJSON(t, srv, http.MethodPost, "/api/recommendations/"+recID+"/modify",
		map[string]interface{}{"finalOrderQty": 75.0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var modified types.Recommendation
	decode(t, rec, &modified)
	assert.Equal(t, types.ApprovalModified, modified.ApprovalStatus)
	assert.Equal(t, 75.0, modified.FinalOrderQty)

	rec = doJSON(t, srv, http.MethodPost, "/api/recommendations/"+recID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/recommendations/"+recID+"/convert", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// converted is terminal
	rec = doJSON(t, srv, http.MethodPost, "/api/recommendations/"+recID+"/reject", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRecommendationNotFound(t *testing.T) {
	srv, _ := newTestServer(t, []float64{10})
	rec := doJSON(t, srv, http.MethodPost, "/api/recommendations/nope/approve", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExceptionWorkflow(t *testing.T) {
	srv, store := newTestServer(t, []float64{500, 500})
	require.NoError(t, store.PutPlan(context.Background(), testutil.TestPlan("plan-1", 2)))

	rec := doJSON(t, srv, http.MethodPost, "/api/plans/plan-1/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/plans/plan-1/exceptions?severity=critical", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Exceptions []types.Exception `json:"exceptions"`
	}
	decode(t, rec, &list)
	require.NotEmpty(t, list.Exceptions)
	excID := list.Exceptions[0].ID

	rec = doJSON(t, srv, http.MethodPost, "/api/exceptions/"+excID+"/resolve",
		map[string]interface{}{"status": "resolved", "notes": "expedited the open PO"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resolved types.Exception
	decode(t, rec, &resolved)
	assert.Equal(t, types.ResolutionResolved, resolved.ResolutionStatus)
	assert.Equal(t, "expedited the open PO", resolved.ResolutionNotes)

	// resolved is terminal
	rec = doJSON(t, srv, http.MethodPost, "/api/exceptions/"+excID+"/resolve",
		map[string]interface{}{"status": "ignored"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPolicyEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, []float64{10})

	pol := testutil.TestPolicy("P2", "L9")
	rec := doJSON(t, srv, http.MethodPost, "/api/policies", pol)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/policies/P2/L9", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/policies/P2/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// invalid policies are rejected
	bad := testutil.TestPolicy("P3", "L1")
	bad.LotSizingRule = "bogus"
	rec = doJSON(t, srv, http.MethodPost, "/api/policies", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t, []float64{10})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	id := rr.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	_, err := ulid.Parse(id)
	assert.NoError(t, err, "generated request ids use the run id scheme")

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, "caller-supplied", rr.Header().Get("X-Request-ID"))
}

func TestAPIKeyAuth(t *testing.T) {
	store := memory.New()
	f := testutil.SeededFeeds("P1", "L1", 100, []float64{10})
	orch := planner.New(store, netting.NewEngine(f, nil, nil), nil)
	srv := New(":0", "sekrit", 0, orch, store)

	req := httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/plans", nil)
	req.Header.Set("X-API-Key", "sekrit")
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// health stays open
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestArchiveEndpoint(t *testing.T) {
	srv, store := newTestServer(t, []float64{10})
	require.NoError(t, store.PutPlan(context.Background(), testutil.TestPlan("plan-1", 1)))

	rec := doJSON(t, srv, http.MethodPost, "/api/plans/plan-1/archive", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := store.GetPlan(context.Background(), "plan-1")
	require.NoError(t, err)
	assert.Equal(t, types.PlanArchived, got.Status)
}
