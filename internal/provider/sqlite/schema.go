package sqlite

const schemaDDL = `
CREATE TABLE IF NOT EXISTS plans (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	horizon_buckets INTEGER NOT NULL,
	granularity     TEXT NOT NULL,
	status          TEXT NOT NULL,
	current_run_id  TEXT NOT NULL DEFAULT '',
	cadence_days    INTEGER NOT NULL DEFAULT 0,
	last_run_at     TIMESTAMP,
	next_run_at     TIMESTAMP,
	params          TEXT NOT NULL DEFAULT '{}',
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS policies (
	product             TEXT NOT NULL,
	location            TEXT NOT NULL,
	safety_stock_method TEXT NOT NULL,
	safety_stock_param  REAL NOT NULL DEFAULT 0,
	service_level       REAL NOT NULL DEFAULT 0,
	lot_sizing_rule     TEXT NOT NULL,
	fixed_lot_qty       REAL NOT NULL DEFAULT 0,
	eoq                 REAL NOT NULL DEFAULT 0,
	periods_of_supply   INTEGER NOT NULL DEFAULT 0,
	min_order_qty       REAL NOT NULL DEFAULT 0,
	max_order_qty       REAL NOT NULL DEFAULT 0,
	order_multiple      REAL NOT NULL DEFAULT 0,
	lead_time_buckets   INTEGER NOT NULL DEFAULT 0,
	planning_fence      INTEGER NOT NULL DEFAULT 0,
	demand_fence        INTEGER NOT NULL DEFAULT 0,
	supplier            TEXT NOT NULL DEFAULT '',
	unit_cost           TEXT NOT NULL DEFAULT '0',
	order_cost          REAL NOT NULL DEFAULT 0,
	carrying_cost_rate  REAL NOT NULL DEFAULT 0,
	approval_threshold  TEXT NOT NULL DEFAULT '0',
	abc_class           TEXT NOT NULL DEFAULT '',
	xyz_class           TEXT NOT NULL DEFAULT '',
	active              INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (product, location)
);

CREATE TABLE IF NOT EXISTS trajectory_buckets (
	plan_id               TEXT NOT NULL,
	run_id                TEXT NOT NULL,
	product               TEXT NOT NULL,
	location              TEXT NOT NULL,
	bucket_index          INTEGER NOT NULL,
	start_date            TIMESTAMP NOT NULL,
	end_date              TIMESTAMP NOT NULL,
	beginning_inventory   REAL NOT NULL,
	gross_requirements    REAL NOT NULL,
	scheduled_receipts    REAL NOT NULL,
	projected_available   REAL NOT NULL,
	net_requirements      REAL NOT NULL,
	planned_order_receipt REAL NOT NULL,
	planned_order_release REAL NOT NULL,
	boundary_release      INTEGER NOT NULL DEFAULT 0,
	safety_stock          REAL NOT NULL,
	reorder_point         REAL NOT NULL,
	PRIMARY KEY (plan_id, run_id, product, location, bucket_index)
);
CREATE INDEX IF NOT EXISTS idx_trajectory_run ON trajectory_buckets (plan_id, run_id);

CREATE TABLE IF NOT EXISTS recommendations (
	id                 TEXT PRIMARY KEY,
	plan_id            TEXT NOT NULL,
	run_id             TEXT NOT NULL,
	product            TEXT NOT NULL,
	location           TEXT NOT NULL,
	bucket_index       INTEGER NOT NULL,
	supplier           TEXT NOT NULL DEFAULT '',
	recommended_qty    REAL NOT NULL,
	final_order_qty    REAL NOT NULL,
	unit_cost          TEXT NOT NULL DEFAULT '0',
	total_value        TEXT NOT NULL DEFAULT '0',
	order_date         TIMESTAMP NOT NULL,
	delivery_date      TIMESTAMP NOT NULL,
	past_due           INTEGER NOT NULL DEFAULT 0,
	threshold_exceeded INTEGER NOT NULL DEFAULT 0,
	approval_status    TEXT NOT NULL,
	created_at         TIMESTAMP NOT NULL,
	updated_at         TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recommendations_run ON recommendations (plan_id, run_id);

CREATE TABLE IF NOT EXISTS exceptions (
	id                TEXT PRIMARY KEY,
	plan_id           TEXT NOT NULL,
	run_id            TEXT NOT NULL,
	product           TEXT NOT NULL,
	location          TEXT NOT NULL,
	bucket_index      INTEGER NOT NULL,
	exc_type          TEXT NOT NULL,
	severity          TEXT NOT NULL,
	quantity          REAL NOT NULL,
	resolution_status TEXT NOT NULL,
	resolution_notes  TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exceptions_run ON exceptions (plan_id, run_id);

CREATE TABLE IF NOT EXISTS events (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	kind      TEXT NOT NULL,
	plan_id   TEXT NOT NULL,
	run_id    TEXT NOT NULL DEFAULT '',
	product   TEXT NOT NULL DEFAULT '',
	location  TEXT NOT NULL DEFAULT '',
	message   TEXT NOT NULL DEFAULT '',
	details   TEXT NOT NULL DEFAULT '{}',
	timestamp TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_plan ON events (plan_id, seq);
`
