// Package memory implements the Provider interface in process memory.
// It is the default backend for tests and single-shot CLI use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/replan-systems/replan/internal/lifecycle"
	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/pkg/types"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*Store)(nil)

// Store is an in-memory Provider implementation.
type Store struct {
	mu              sync.Mutex
	plans           map[string]types.Plan
	policies        map[string]types.ItemPolicy // key: product@location
	trajectories    map[string][]types.TrajectoryBucket
	recommendations map[string]types.Recommendation
	exceptions      map[string]types.Exception
	events          []types.Event
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		plans:           make(map[string]types.Plan),
		policies:        make(map[string]types.ItemPolicy),
		trajectories:    make(map[string][]types.TrajectoryBucket),
		recommendations: make(map[string]types.Recommendation),
		exceptions:      make(map[string]types.Exception),
	}
}

func (s *Store) PutPlan(_ context.Context, plan types.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan
	return nil
}

func (s *Store) GetPlan(_ context.Context, id string) (*types.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", id, provider.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) ListPlans(_ context.Context) ([]types.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeletePlan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
	return nil
}

func (s *Store) CompareAndSwapPlanStatus(_ context.Context, planID string, expect, next types.PlanStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[planID]
	if !ok {
		return false, fmt.Errorf("plan %q: %w", planID, provider.ErrNotFound)
	}
	if p.Status != expect {
		return false, nil
	}
	if err := lifecycle.TransitionPlan(expect, next); err != nil {
		return false, err
	}
	p.Status = next
	p.UpdatedAt = time.Now()
	s.plans[planID] = p
	return true, nil
}

func (s *Store) PromoteRun(_ context.Context, planID, runID string, nextRunAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[planID]
	if !ok {
		return fmt.Errorf("plan %q: %w", planID, provider.ErrNotFound)
	}
	if err := lifecycle.TransitionPlan(p.Status, types.PlanActive); err != nil {
		return err
	}
	p.Status = types.PlanActive
	p.CurrentRunID = runID
	p.NextRunAt = nextRunAt
	p.UpdatedAt = time.Now()
	s.plans[planID] = p
	return nil
}

func policyKey(product, location string) string { return product + "@" + location }

func (s *Store) PutPolicy(_ context.Context, pol types.ItemPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policyKey(pol.Product, pol.Location)] = pol
	return nil
}

func (s *Store) GetPolicy(_ context.Context, product, location string) (*types.ItemPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.policies[policyKey(product, location)]
	if !ok {
		return nil, fmt.Errorf("policy %s@%s: %w", product, location, provider.ErrNotFound)
	}
	return &p, nil
}

func (s *Store) ListPolicies(_ context.Context) ([]types.ItemPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ItemPolicy, 0, len(s.policies))
	for _, p := range s.policies {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}

func runKey(planID, runID string) string { return planID + ":" + runID }

func (s *Store) PutTrajectory(_ context.Context, buckets []types.TrajectoryBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := runKey(buckets[0].PlanID, buckets[0].RunID)
	s.trajectories[key] = append(s.trajectories[key], buckets...)
	return nil
}

// resolveRunID maps an empty filter run to the plan's promoted run.
// Callers must hold s.mu.
func (s *Store) resolveRunID(planID, runID string) string {
	if runID != "" {
		return runID
	}
	return s.plans[planID].CurrentRunID
}

func (s *Store) ListTrajectory(_ context.Context, planID string, f provider.TrajectoryFilter) ([]types.TrajectoryBucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runID := s.resolveRunID(planID, f.RunID)
	var out []types.TrajectoryBucket
	for _, b := range s.trajectories[runKey(planID, runID)] {
		if f.Product != "" && b.Product != f.Product {
			continue
		}
		if f.Location != "" && b.Location != f.Location {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}

func (s *Store) PutRecommendations(_ context.Context, recs []types.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.recommendations[r.ID] = r
	}
	return nil
}

func (s *Store) GetRecommendation(_ context.Context, id string) (*types.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recommendations[id]
	if !ok {
		return nil, fmt.Errorf("recommendation %q: %w", id, provider.ErrNotFound)
	}
	return &r, nil
}

func (s *Store) UpdateRecommendation(_ context.Context, rec types.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recommendations[rec.ID]; !ok {
		return fmt.Errorf("recommendation %q: %w", rec.ID, provider.ErrNotFound)
	}
	s.recommendations[rec.ID] = rec
	return nil
}

func (s *Store) ListRecommendations(_ context.Context, planID string, f provider.RecommendationFilter) ([]types.Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runID := s.resolveRunID(planID, f.RunID)
	var out []types.Recommendation
	for _, r := range s.recommendations {
		if r.PlanID != planID || r.RunID != runID {
			continue
		}
		if f.Product != "" && r.Product != f.Product {
			continue
		}
		if f.Location != "" && r.Location != f.Location {
			continue
		}
		if f.Status != "" && r.ApprovalStatus != f.Status {
			continue
		}
		if f.PastDue && !r.PastDue {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PutExceptions(_ context.Context, excs []types.Exception) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range excs {
		s.exceptions[e.ID] = e
	}
	return nil
}

func (s *Store) GetException(_ context.Context, id string) (*types.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exceptions[id]
	if !ok {
		return nil, fmt.Errorf("exception %q: %w", id, provider.ErrNotFound)
	}
	return &e, nil
}

func (s *Store) UpdateException(_ context.Context, exc types.Exception) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exceptions[exc.ID]; !ok {
		return fmt.Errorf("exception %q: %w", exc.ID, provider.ErrNotFound)
	}
	s.exceptions[exc.ID] = exc
	return nil
}

func (s *Store) ListExceptions(_ context.Context, planID string, f provider.ExceptionFilter) ([]types.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runID := s.resolveRunID(planID, f.RunID)
	var out []types.Exception
	for _, e := range s.exceptions {
		if e.PlanID != planID || e.RunID != runID {
			continue
		}
		if f.Product != "" && e.Product != f.Product {
			continue
		}
		if f.Location != "" && e.Location != f.Location {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Severity != "" && e.Severity != f.Severity {
			continue
		}
		if f.Status != "" && e.ResolutionStatus != f.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteRun(_ context.Context, planID, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.trajectories, runKey(planID, runID))
	for id, r := range s.recommendations {
		if r.PlanID == planID && r.RunID == runID {
			delete(s.recommendations, id)
		}
	}
	for id, e := range s.exceptions {
		if e.PlanID == planID && e.RunID == runID {
			delete(s.exceptions, id)
		}
	}
	return nil
}

func (s *Store) AppendEvent(_ context.Context, event types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *Store) ListEvents(_ context.Context, planID string, limit int) ([]types.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	var out []types.Event
	for _, e := range s.events {
		if e.PlanID == planID {
			out = append(out, e)
		}
	}
	// keep the most recent window, oldest first
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *Store) Start(_ context.Context) error { return nil }
func (s *Store) Stop(_ context.Context) error  { return nil }
func (s *Store) Ping(_ context.Context) error  { return nil }

// Events returns a copy of all stored events (test helper).
func (s *Store) Events() []types.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Event, len(s.events))
	copy(out, s.events)
	return out
}
