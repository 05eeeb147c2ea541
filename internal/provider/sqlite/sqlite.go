// Package sqlite implements the Provider interface on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/replan-systems/replan/internal/lifecycle"
	"github.com/replan-systems/replan/internal/provider"
	"github.com/replan-systems/replan/pkg/types"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*Store)(nil)

// Store is a SQLite-backed Provider implementation.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path and runs the schema DDL.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) PutPlan(ctx context.Context, plan types.Plan) error {
	params, err := json.Marshal(plan.Params)
	if err != nil {
		return fmt.Errorf("marshaling plan params: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, name, horizon_buckets, granularity, status, current_run_id,
			cadence_days, last_run_at, next_run_at, params, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			horizon_buckets = excluded.horizon_buckets,
			granularity = excluded.granularity,
			status = excluded.status,
			current_run_id = excluded.current_run_id,
			cadence_days = excluded.cadence_days,
			last_run_at = excluded.last_run_at,
			next_run_at = excluded.next_run_at,
			params = excluded.params,
			updated_at = excluded.updated_at`,
		plan.ID, plan.Name, plan.HorizonBuckets, string(plan.Granularity), string(plan.Status),
		plan.CurrentRunID, plan.CadenceDays, nullTime(plan.LastRunAt), nullTime(plan.NextRunAt),
		string(params), plan.CreatedAt, plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("storing plan: %w", err)
	}
	return nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (*types.Plan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, horizon_buckets, granularity, status, current_run_id,
			cadence_days, last_run_at, next_run_at, params, created_at, updated_at
		FROM plans WHERE id = ?`, id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %q: %w", id, provider.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}
	return plan, nil
}

func (s *Store) ListPlans(ctx context.Context) ([]types.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, horizon_buckets, granularity, status, current_run_id,
			cadence_days, last_run_at, next_run_at, params, created_at, updated_at
		FROM plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		out = append(out, *plan)
	}
	return out, rows.Err()
}

func (s *Store) DeletePlan(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	return err
}

func (s *Store) CompareAndSwapPlanStatus(ctx context.Context, planID string, expect, next types.PlanStatus) (bool, error) {
	if err := lifecycle.TransitionPlan(expect, next); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE plans SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(next), time.Now(), planID, string(expect))
	if err != nil {
		return false, fmt.Errorf("updating plan status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) PromoteRun(ctx context.Context, planID, runID string, nextRunAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE plans SET status = ?, current_run_id = ?, next_run_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(types.PlanActive), runID, nullTime(nextRunAt), time.Now(),
		planID, string(types.PlanRunning))
	if err != nil {
		return fmt.Errorf("promoting run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("promoting run %s: plan %q is not running", runID, planID)
	}
	return nil
}

func (s *Store) PutPolicy(ctx context.Context, pol types.ItemPolicy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO policies (product, location, safety_stock_method,
			safety_stock_param, service_level, lot_sizing_rule, fixed_lot_qty, eoq,
			periods_of_supply, min_order_qty, max_order_qty, order_multiple,
			lead_time_buckets, planning_fence, demand_fence, supplier, unit_cost,
			order_cost, carrying_cost_rate, approval_threshold, abc_class, xyz_class, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pol.Product, pol.Location, string(pol.SafetyStockMethod),
		pol.SafetyStockParam, pol.ServiceLevel, string(pol.LotSizingRule), pol.FixedLotQty, pol.EOQ,
		pol.PeriodsOfSupply, pol.MinOrderQty, pol.MaxOrderQty, pol.OrderMultiple,
		pol.LeadTimeBuckets, pol.PlanningFence, pol.DemandFence, pol.Supplier, pol.UnitCost.String(),
		pol.OrderCost, pol.CarryingCostRate, pol.ApprovalThreshold.String(), pol.ABCClass, pol.XYZClass,
		boolInt(pol.Active))
	if err != nil {
		return fmt.Errorf("storing policy: %w", err)
	}
	return nil
}

func (s *Store) GetPolicy(ctx context.Context, product, location string) (*types.ItemPolicy, error) {
	row := s.db.QueryRowContext(ctx, policySelect+` WHERE product = ? AND location = ?`, product, location)
	pol, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("policy %s@%s: %w", product, location, provider.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading policy: %w", err)
	}
	return pol, nil
}

func (s *Store) ListPolicies(ctx context.Context) ([]types.ItemPolicy, error) {
	rows, err := s.db.QueryContext(ctx, policySelect+` ORDER BY product, location`)
	if err != nil {
		return nil, fmt.Errorf("listing policies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.ItemPolicy
	for rows.Next() {
		pol, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning policy: %w", err)
		}
		out = append(out, *pol)
	}
	return out, rows.Err()
}

func (s *Store) PutTrajectory(ctx context.Context, buckets []types.TrajectoryBucket) error {
	if len(buckets) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trajectory_buckets (plan_id, run_id, product, location, bucket_index,
			start_date, end_date, beginning_inventory, gross_requirements, scheduled_receipts,
			projected_available, net_requirements, planned_order_receipt, planned_order_release,
			boundary_release, safety_stock, reorder_point)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing trajectory insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, b := range buckets {
		if _, err := stmt.ExecContext(ctx,
			b.PlanID, b.RunID, b.Product, b.Location, b.Index,
			b.StartDate, b.EndDate, b.BeginningInventory, b.GrossRequirements, b.ScheduledReceipts,
			b.ProjectedAvailable, b.NetRequirements, b.PlannedOrderReceipt, b.PlannedOrderRelease,
			boolInt(b.BoundaryRelease), b.SafetyStock, b.ReorderPoint); err != nil {
			return fmt.Errorf("inserting trajectory bucket: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListTrajectory(ctx context.Context, planID string, f provider.TrajectoryFilter) ([]types.TrajectoryBucket, error) {
	query := `
		SELECT plan_id, run_id, product, location, bucket_index, start_date, end_date,
			beginning_inventory, gross_requirements, scheduled_receipts, projected_available,
			net_requirements, planned_order_receipt, planned_order_release, boundary_release,
			safety_stock, reorder_point
		FROM trajectory_buckets
		WHERE plan_id = ? AND run_id = COALESCE(NULLIF(?, ''), (SELECT current_run_id FROM plans WHERE id = ?))`
	args := []interface{}{planID, f.RunID, planID}
	if f.Product != "" {
		query += ` AND product = ?`
		args = append(args, f.Product)
	}
	if f.Location != "" {
		query += ` AND location = ?`
		args = append(args, f.Location)
	}
	query += ` ORDER BY product, location, bucket_index`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trajectory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.TrajectoryBucket
	for rows.Next() {
		var b types.TrajectoryBucket
		var boundary int
		if err := rows.Scan(&b.PlanID, &b.RunID, &b.Product, &b.Location, &b.Index,
			&b.StartDate, &b.EndDate, &b.BeginningInventory, &b.GrossRequirements,
			&b.ScheduledReceipts, &b.ProjectedAvailable, &b.NetRequirements,
			&b.PlannedOrderReceipt, &b.PlannedOrderRelease, &boundary,
			&b.SafetyStock, &b.ReorderPoint); err != nil {
			return nil, fmt.Errorf("scanning trajectory bucket: %w", err)
		}
		b.BoundaryRelease = boundary != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) PutRecommendations(ctx context.Context, recs []types.Recommendation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range recs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recommendations (id, plan_id, run_id, product, location, bucket_index,
				supplier, recommended_qty, final_order_qty, unit_cost, total_value,
				order_date, delivery_date, past_due, threshold_exceeded, approval_status,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.PlanID, r.RunID, r.Product, r.Location, r.BucketIndex,
			r.Supplier, r.RecommendedQty, r.FinalOrderQty, r.UnitCost.String(), r.TotalValue.String(),
			r.OrderDate, r.DeliveryDate, boolInt(r.PastDue), boolInt(r.ThresholdExceeded),
			string(r.ApprovalStatus), r.CreatedAt, r.UpdatedAt); err != nil {
			return fmt.Errorf("inserting recommendation: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetRecommendation(ctx context.Context, id string) (*types.Recommendation, error) {
	row := s.db.QueryRowContext(ctx, recommendationSelect+` WHERE id = ?`, id)
	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recommendation %q: %w", id, provider.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading recommendation: %w", err)
	}
	return rec, nil
}

func (s *Store) UpdateRecommendation(ctx context.Context, rec types.Recommendation) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recommendations SET final_order_qty = ?, total_value = ?, past_due = ?,
			threshold_exceeded = ?, approval_status = ?, updated_at = ?
		WHERE id = ?`,
		rec.FinalOrderQty, rec.TotalValue.String(), boolInt(rec.PastDue),
		boolInt(rec.ThresholdExceeded), string(rec.ApprovalStatus), rec.UpdatedAt, rec.ID)
	if err != nil {
		return fmt.Errorf("updating recommendation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("recommendation %q: %w", rec.ID, provider.ErrNotFound)
	}
	return nil
}

func (s *Store) ListRecommendations(ctx context.Context, planID string, f provider.RecommendationFilter) ([]types.Recommendation, error) {
	query := recommendationSelect + `
		WHERE plan_id = ? AND run_id = COALESCE(NULLIF(?, ''), (SELECT current_run_id FROM plans WHERE id = ?))`
	args := []interface{}{planID, f.RunID, planID}
	if f.Product != "" {
		query += ` AND product = ?`
		args = append(args, f.Product)
	}
	if f.Location != "" {
		query += ` AND location = ?`
		args = append(args, f.Location)
	}
	if f.Status != "" {
		query += ` AND approval_status = ?`
		args = append(args, string(f.Status))
	}
	if f.PastDue {
		query += ` AND past_due = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *Store) PutExceptions(ctx context.Context, excs []types.Exception) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range excs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO exceptions (id, plan_id, run_id, product, location, bucket_index,
				exc_type, severity, quantity, resolution_status, resolution_notes,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.PlanID, e.RunID, e.Product, e.Location, e.BucketIndex,
			string(e.Type), string(e.Severity), e.Quantity, string(e.ResolutionStatus),
			e.ResolutionNotes, e.CreatedAt, e.UpdatedAt); err != nil {
			return fmt.Errorf("inserting exception: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetException(ctx context.Context, id string) (*types.Exception, error) {
	row := s.db.QueryRowContext(ctx, exceptionSelect+` WHERE id = ?`, id)
	exc, err := scanException(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exception %q: %w", id, provider.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading exception: %w", err)
	}
	return exc, nil
}

func (s *Store) UpdateException(ctx context.Context, exc types.Exception) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE exceptions SET resolution_status = ?, resolution_notes = ?, updated_at = ?
		WHERE id = ?`,
		string(exc.ResolutionStatus), exc.ResolutionNotes, exc.UpdatedAt, exc.ID)
	if err != nil {
		return fmt.Errorf("updating exception: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("exception %q: %w", exc.ID, provider.ErrNotFound)
	}
	return nil
}

func (s *Store) ListExceptions(ctx context.Context, planID string, f provider.ExceptionFilter) ([]types.Exception, error) {
	query := exceptionSelect + `
		WHERE plan_id = ? AND run_id = COALESCE(NULLIF(?, ''), (SELECT current_run_id FROM plans WHERE id = ?))`
	args := []interface{}{planID, f.RunID, planID}
	if f.Product != "" {
		query += ` AND product = ?`
		args = append(args, f.Product)
	}
	if f.Location != "" {
		query += ` AND location = ?`
		args = append(args, f.Location)
	}
	if f.Type != "" {
		query += ` AND exc_type = ?`
		args = append(args, string(f.Type))
	}
	if f.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, string(f.Severity))
	}
	if f.Status != "" {
		query += ` AND resolution_status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing exceptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Exception
	for rows.Next() {
		exc, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exception: %w", err)
		}
		out = append(out, *exc)
	}
	return out, rows.Err()
}

func (s *Store) DeleteRun(ctx context.Context, planID, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"trajectory_buckets", "recommendations", "exceptions"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE plan_id = ? AND run_id = ?", table),
			planID, runID); err != nil {
			return fmt.Errorf("deleting run data from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *Store) AppendEvent(ctx context.Context, event types.Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshaling event details: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (kind, plan_id, run_id, product, location, message, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(event.Kind), event.PlanID, event.RunID, event.Product, event.Location,
		event.Message, string(details), event.Timestamp)
	if err != nil {
		return fmt.Errorf("appending event: %w", err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, planID string, limit int) ([]types.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	// most recent window, oldest first
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, plan_id, run_id, product, location, message, details, timestamp
		FROM (SELECT seq, kind, plan_id, run_id, product, location, message, details, timestamp
			FROM events WHERE plan_id = ? ORDER BY seq DESC LIMIT ?)
		ORDER BY seq`, planID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []types.Event
	for rows.Next() {
		var e types.Event
		var details string
		if err := rows.Scan(&e.Kind, &e.PlanID, &e.RunID, &e.Product, &e.Location,
			&e.Message, &details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if details != "" && details != "null" {
			_ = json.Unmarshal([]byte(details), &e.Details)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Start(_ context.Context) error { return nil }

func (s *Store) Stop(_ context.Context) error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row scanner) (*types.Plan, error) {
	var (
		p          types.Plan
		last, next sql.NullTime
		params     string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.HorizonBuckets, &p.Granularity, &p.Status,
		&p.CurrentRunID, &p.CadenceDays, &last, &next, &params, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		p.LastRunAt = &last.Time
	}
	if next.Valid {
		p.NextRunAt = &next.Time
	}
	if params != "" && params != "null" {
		_ = json.Unmarshal([]byte(params), &p.Params)
	}
	return &p, nil
}

const policySelect = `
	SELECT product, location, safety_stock_method, safety_stock_param, service_level,
		lot_sizing_rule, fixed_lot_qty, eoq, periods_of_supply, min_order_qty,
		max_order_qty, order_multiple, lead_time_buckets, planning_fence, demand_fence,
		supplier, unit_cost, order_cost, carrying_cost_rate, approval_threshold,
		abc_class, xyz_class, active
	FROM policies`

func scanPolicy(row scanner) (*types.ItemPolicy, error) {
	var (
		p                   types.ItemPolicy
		unitCost, threshold string
		active              int
	)
	if err := row.Scan(&p.Product, &p.Location, &p.SafetyStockMethod, &p.SafetyStockParam,
		&p.ServiceLevel, &p.LotSizingRule, &p.FixedLotQty, &p.EOQ, &p.PeriodsOfSupply,
		&p.MinOrderQty, &p.MaxOrderQty, &p.OrderMultiple, &p.LeadTimeBuckets,
		&p.PlanningFence, &p.DemandFence, &p.Supplier, &unitCost, &p.OrderCost,
		&p.CarryingCostRate, &threshold, &p.ABCClass, &p.XYZClass, &active); err != nil {
		return nil, err
	}
	var err error
	if p.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
		return nil, fmt.Errorf("parsing unit cost %q: %w", unitCost, err)
	}
	if p.ApprovalThreshold, err = decimal.NewFromString(threshold); err != nil {
		return nil, fmt.Errorf("parsing approval threshold %q: %w", threshold, err)
	}
	p.Active = active != 0
	return &p, nil
}

const recommendationSelect = `
	SELECT id, plan_id, run_id, product, location, bucket_index, supplier,
		recommended_qty, final_order_qty, unit_cost, total_value, order_date,
		delivery_date, past_due, threshold_exceeded, approval_status, created_at, updated_at
	FROM recommendations`

func scanRecommendation(row scanner) (*types.Recommendation, error) {
	var (
		r                   types.Recommendation
		unitCost, total     string
		pastDue, threshExcd int
	)
	if err := row.Scan(&r.ID, &r.PlanID, &r.RunID, &r.Product, &r.Location, &r.BucketIndex,
		&r.Supplier, &r.RecommendedQty, &r.FinalOrderQty, &unitCost, &total, &r.OrderDate,
		&r.DeliveryDate, &pastDue, &threshExcd, &r.ApprovalStatus, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if r.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
		return nil, fmt.Errorf("parsing unit cost %q: %w", unitCost, err)
	}
	if r.TotalValue, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parsing total value %q: %w", total, err)
	}
	r.PastDue = pastDue != 0
	r.ThresholdExceeded = threshExcd != 0
	return &r, nil
}

const exceptionSelect = `
	SELECT id, plan_id, run_id, product, location, bucket_index, exc_type, severity,
		quantity, resolution_status, resolution_notes, created_at, updated_at
	FROM exceptions`

func scanException(row scanner) (*types.Exception, error) {
	var e types.Exception
	if err := row.Scan(&e.ID, &e.PlanID, &e.RunID, &e.Product, &e.Location, &e.BucketIndex,
		&e.Type, &e.Severity, &e.Quantity, &e.ResolutionStatus, &e.ResolutionNotes,
		&e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
