package sqlite

// Schema defines the SQLite database schema
const Schema = `
-- Retained SLA evaluation records
CREATE TABLE IF NOT EXISTS sla_records (
	id TEXT PRIMARY KEY,
	sla_id TEXT NOT NULL,
	status TEXT NOT NULL,
	compliance REAL NOT NULL,
	timestamp TIMESTAMP NOT NULL,
	record_json TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sla_records_sla_id ON sla_records(sla_id);
CREATE INDEX IF NOT EXISTS idx_sla_records_timestamp ON sla_records(timestamp DESC);

-- Retained uptime probe results
CREATE TABLE IF NOT EXISTS probe_results (
	id TEXT PRIMARY KEY,
	check_id TEXT NOT NULL,
	region TEXT NOT NULL,
	success BOOLEAN NOT NULL DEFAULT 0,
	timestamp TIMESTAMP NOT NULL,
	result_json TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_probe_results_check_id ON probe_results(check_id);
CREATE INDEX IF NOT EXISTS idx_probe_results_timestamp ON probe_results(timestamp DESC);

-- Incident ledger
CREATE TABLE IF NOT EXISTS incidents (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	severity TEXT NOT NULL,
	start_time TIMESTAMP NOT NULL,
	incident_json TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status);
CREATE INDEX IF NOT EXISTS idx_incidents_start_time ON incidents(start_time DESC);

-- Snapshot metadata (one row)
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	taken_at TIMESTAMP NOT NULL
);
`
