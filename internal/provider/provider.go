// Package provider defines the storage backend interface for Replan.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/replan-systems/replan/pkg/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// TrajectoryFilter narrows trajectory reads. An empty RunID means the plan's
// current promoted run.
type TrajectoryFilter struct {
	RunID    string
	Product  string
	Location string
}

// RecommendationFilter narrows recommendation reads.
type RecommendationFilter struct {
	RunID    string
	Product  string
	Location string
	Status   types.ApprovalStatus
	PastDue  bool
}

// ExceptionFilter narrows exception reads.
type ExceptionFilter struct {
	RunID    string
	Product  string
	Location string
	Type     types.ExceptionType
	Severity types.Severity
	Status   types.ResolutionStatus
}

// Provider is the storage backend interface. The memory backend serves tests
// and single-process use; sqlite adds durable local storage.
//
// Run-scoped derived records (trajectories, recommendations, exceptions) are
// append-only under their run identifier and never overwritten in place;
// PromoteRun atomically flips which run readers see as authoritative.
type Provider interface {
	// Plans
	PutPlan(ctx context.Context, plan types.Plan) error
	GetPlan(ctx context.Context, id string) (*types.Plan, error)
	ListPlans(ctx context.Context) ([]types.Plan, error)
	DeletePlan(ctx context.Context, id string) error

	// CompareAndSwapPlanStatus transitions a plan's status only if it
	// currently equals expect. It is the single-writer gate for runs.
	CompareAndSwapPlanStatus(ctx context.Context, planID string, expect, next types.PlanStatus) (bool, error)
	// PromoteRun atomically marks runID as the plan's authoritative run,
	// transitions the plan to active, and stamps the next run time.
	PromoteRun(ctx context.Context, planID, runID string, nextRunAt *time.Time) error

	// Item policies (read-mostly: written by planner-facing CRUD, read by runs)
	PutPolicy(ctx context.Context, pol types.ItemPolicy) error
	GetPolicy(ctx context.Context, product, location string) (*types.ItemPolicy, error)
	ListPolicies(ctx context.Context) ([]types.ItemPolicy, error)

	// Trajectories
	PutTrajectory(ctx context.Context, buckets []types.TrajectoryBucket) error
	ListTrajectory(ctx context.Context, planID string, f TrajectoryFilter) ([]types.TrajectoryBucket, error)

	// Recommendations
	PutRecommendations(ctx context.Context, recs []types.Recommendation) error
	GetRecommendation(ctx context.Context, id string) (*types.Recommendation, error)
	UpdateRecommendation(ctx context.Context, rec types.Recommendation) error
	ListRecommendations(ctx context.Context, planID string, f RecommendationFilter) ([]types.Recommendation, error)

	// Exceptions
	PutExceptions(ctx context.Context, excs []types.Exception) error
	GetException(ctx context.Context, id string) (*types.Exception, error)
	UpdateException(ctx context.Context, exc types.Exception) error
	ListExceptions(ctx context.Context, planID string, f ExceptionFilter) ([]types.Exception, error)

	// DeleteRun discards all derived records written under a run identifier.
	// Used to scrub partial writes from a failed, never-promoted run.
	DeleteRun(ctx context.Context, planID, runID string) error

	// Append-only event log
	AppendEvent(ctx context.Context, event types.Event) error
	ListEvents(ctx context.Context, planID string, limit int) ([]types.Event, error)

	// Lifecycle
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Ping(ctx context.Context) error
}
