package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/replan-systems/replan/pkg/types"
)

// Store is a Postgres-backed archival store for promoted plan runs.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time interface satisfaction check.
var _ Destination = (*Store)(nil)

// NewStore creates a new Postgres Store and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Migrate runs the schema DDL to create tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// UpsertPlan records the plan definition alongside its archived runs.
func (s *Store) UpsertPlan(ctx context.Context, plan types.Plan) error {
	params, err := json.Marshal(plan.Params)
	if err != nil {
		return fmt.Errorf("marshaling plan params: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO archived_plans (id, name, horizon_buckets, granularity, cadence_days, params, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			horizon_buckets = EXCLUDED.horizon_buckets,
			granularity = EXCLUDED.granularity,
			cadence_days = EXCLUDED.cadence_days,
			params = EXCLUDED.params,
			updated_at = EXCLUDED.updated_at`,
		plan.ID, plan.Name, plan.HorizonBuckets, string(plan.Granularity),
		plan.CadenceDays, params, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting plan: %w", err)
	}
	return nil
}

// InsertTrajectory copies a run's trajectory buckets in one batch.
func (s *Store) InsertTrajectory(ctx context.Context, buckets []types.TrajectoryBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, b := range buckets {
		batch.Queue(`
			INSERT INTO archived_trajectory (plan_id, run_id, product, location, bucket_index,
				start_date, end_date, beginning_inventory, gross_requirements, scheduled_receipts,
				projected_available, net_requirements, planned_order_receipt, planned_order_release,
				boundary_release, safety_stock, reorder_point)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT DO NOTHING`,
			b.PlanID, b.RunID, b.Product, b.Location, b.Index,
			b.StartDate, b.EndDate, b.BeginningInventory, b.GrossRequirements, b.ScheduledReceipts,
			b.ProjectedAvailable, b.NetRequirements, b.PlannedOrderReceipt, b.PlannedOrderRelease,
			b.BoundaryRelease, b.SafetyStock, b.ReorderPoint)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting trajectory: %w", err)
	}
	return nil
}

// InsertRecommendations copies a run's recommendations in one batch.
func (s *Store) InsertRecommendations(ctx context.Context, recs []types.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range recs {
		batch.Queue(`
			INSERT INTO archived_recommendations (id, plan_id, run_id, product, location,
				bucket_index, supplier, recommended_qty, final_order_qty, unit_cost, total_value,
				order_date, delivery_date, past_due, threshold_exceeded, approval_status,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO NOTHING`,
			r.ID, r.PlanID, r.RunID, r.Product, r.Location,
			r.BucketIndex, r.Supplier, r.RecommendedQty, r.FinalOrderQty,
			r.UnitCost.String(), r.TotalValue.String(),
			r.OrderDate, r.DeliveryDate, r.PastDue, r.ThresholdExceeded, string(r.ApprovalStatus),
			r.CreatedAt, r.UpdatedAt)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting recommendations: %w", err)
	}
	return nil
}

// InsertExceptions copies a run's exceptions in one batch.
func (s *Store) InsertExceptions(ctx context.Context, excs []types.Exception) error {
	if len(excs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range excs {
		batch.Queue(`
			INSERT INTO archived_exceptions (id, plan_id, run_id, product, location, bucket_index,
				exc_type, severity, quantity, resolution_status, resolution_notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.PlanID, e.RunID, e.Product, e.Location, e.BucketIndex,
			string(e.Type), string(e.Severity), e.Quantity, string(e.ResolutionStatus),
			e.ResolutionNotes, e.CreatedAt, e.UpdatedAt)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting exceptions: %w", err)
	}
	return nil
}

// GetCursor returns the last archived run ID for a plan, or "" when the plan
// has never been archived.
func (s *Store) GetCursor(ctx context.Context, planID string) (string, error) {
	var runID string
	err := s.pool.QueryRow(ctx,
		`SELECT run_id FROM archive_cursors WHERE plan_id = $1`, planID).Scan(&runID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading archive cursor: %w", err)
	}
	return runID, nil
}

// SetCursor records the last archived run ID for a plan.
func (s *Store) SetCursor(ctx context.Context, planID, runID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO archive_cursors (plan_id, run_id, archived_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (plan_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			archived_at = EXCLUDED.archived_at`,
		planID, runID, time.Now())
	if err != nil {
		return fmt.Errorf("setting archive cursor: %w", err)
	}
	return nil
}
