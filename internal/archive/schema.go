package archive

const schemaDDL = `
CREATE TABLE IF NOT EXISTS archived_plans (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	horizon_buckets INTEGER NOT NULL,
	granularity  TEXT NOT NULL,
	cadence_days INTEGER NOT NULL,
	params       JSONB,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS archived_trajectory (
	plan_id              TEXT NOT NULL,
	run_id               TEXT NOT NULL,
	product              TEXT NOT NULL,
	location             TEXT NOT NULL,
	bucket_index         INTEGER NOT NULL,
	start_date           TIMESTAMPTZ NOT NULL,
	end_date             TIMESTAMPTZ NOT NULL,
	beginning_inventory  DOUBLE PRECISION NOT NULL,
	gross_requirements   DOUBLE PRECISION NOT NULL,
	scheduled_receipts   DOUBLE PRECISION NOT NULL,
	projected_available  DOUBLE PRECISION NOT NULL,
	net_requirements     DOUBLE PRECISION NOT NULL,
	planned_order_receipt DOUBLE PRECISION NOT NULL,
	planned_order_release DOUBLE PRECISION NOT NULL,
	boundary_release     BOOLEAN NOT NULL,
	safety_stock         DOUBLE PRECISION NOT NULL,
	reorder_point        DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (plan_id, run_id, product, location, bucket_index)
);

CREATE TABLE IF NOT EXISTS archived_recommendations (
	id                 TEXT PRIMARY KEY,
	plan_id            TEXT NOT NULL,
	run_id             TEXT NOT NULL,
	product            TEXT NOT NULL,
	location           TEXT NOT NULL,
	bucket_index       INTEGER NOT NULL,
	supplier           TEXT,
	recommended_qty    DOUBLE PRECISION NOT NULL,
	final_order_qty    DOUBLE PRECISION NOT NULL,
	unit_cost          NUMERIC NOT NULL,
	total_value        NUMERIC NOT NULL,
	order_date         TIMESTAMPTZ NOT NULL,
	delivery_date      TIMESTAMPTZ NOT NULL,
	past_due           BOOLEAN NOT NULL,
	threshold_exceeded BOOLEAN NOT NULL,
	approval_status    TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_arch_recs_plan_run ON archived_recommendations (plan_id, run_id);

CREATE TABLE IF NOT EXISTS archived_exceptions (
	id                TEXT PRIMARY KEY,
	plan_id           TEXT NOT NULL,
	run_id            TEXT NOT NULL,
	product           TEXT NOT NULL,
	location          TEXT NOT NULL,
	bucket_index      INTEGER NOT NULL,
	exc_type          TEXT NOT NULL,
	severity          TEXT NOT NULL,
	quantity          DOUBLE PRECISION NOT NULL,
	resolution_status TEXT NOT NULL,
	resolution_notes  TEXT,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_arch_excs_plan_run ON archived_exceptions (plan_id, run_id);

CREATE TABLE IF NOT EXISTS archive_cursors (
	plan_id     TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	archived_at TIMESTAMPTZ NOT NULL
);
`
