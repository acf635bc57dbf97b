// Package sqlite persists engine snapshots in a SQLite database.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/samijaber1/aegis-uptime/internal/incident"
	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/sla"
	"github.com/samijaber1/aegis-uptime/internal/storage"
)

// Store implements storage.SnapshotStore using SQLite
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite snapshot store with the given database path
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save replaces the persisted snapshot atomically.
func (s *Store) Save(snap storage.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"sla_records", "probe_results", "incidents"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := s.saveRecords(tx, snap.Records); err != nil {
		return err
	}
	if err := s.saveResults(tx, snap.Results); err != nil {
		return err
	}
	if err := s.saveIncidents(tx, snap.Incidents); err != nil {
		return err
	}

	takenAt := snap.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO snapshot_meta (id, taken_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET taken_at = excluded.taken_at
	`, takenAt)
	if err != nil {
		return fmt.Errorf("failed to store snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func (s *Store) saveRecords(tx *sql.Tx, records map[string][]sla.Record) error {
	query := `
		INSERT INTO sla_records (id, sla_id, status, compliance, timestamp, record_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for slaID, ring := range records {
		for _, rec := range ring {
			recordJSON, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
			}
			_, err = tx.Exec(query,
				rec.ID, slaID, string(rec.Status), rec.Compliance, rec.Timestamp, string(recordJSON))
			if err != nil {
				return fmt.Errorf("failed to store record %s: %w", rec.ID, err)
			}
		}
	}
	return nil
}

func (s *Store) saveResults(tx *sql.Tx, results map[string][]probe.Result) error {
	query := `
		INSERT INTO probe_results (id, check_id, region, success, timestamp, result_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for checkID, ring := range results {
		for _, res := range ring {
			resultJSON, err := json.Marshal(res)
			if err != nil {
				return fmt.Errorf("failed to marshal result %s: %w", res.ID, err)
			}
			_, err = tx.Exec(query,
				res.ID, checkID, res.Region, res.Success, res.Timestamp, string(resultJSON))
			if err != nil {
				return fmt.Errorf("failed to store result %s: %w", res.ID, err)
			}
		}
	}
	return nil
}

func (s *Store) saveIncidents(tx *sql.Tx, incidents []incident.Incident) error {
	query := `
		INSERT INTO incidents (id, status, severity, start_time, incident_json)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, inc := range incidents {
		incidentJSON, err := json.Marshal(inc)
		if err != nil {
			return fmt.Errorf("failed to marshal incident %s: %w", inc.ID, err)
		}
		_, err = tx.Exec(query,
			inc.ID, string(inc.Status), string(inc.Severity), inc.StartTime, string(incidentJSON))
		if err != nil {
			return fmt.Errorf("failed to store incident %s: %w", inc.ID, err)
		}
	}
	return nil
}

// Load returns the persisted snapshot. An empty database yields an empty
// snapshot.
func (s *Store) Load() (storage.Snapshot, error) {
	snap := storage.Snapshot{
		Records: make(map[string][]sla.Record),
		Results: make(map[string][]probe.Result),
	}

	err := s.db.QueryRow("SELECT taken_at FROM snapshot_meta WHERE id = 1").Scan(&snap.TakenAt)
	if err == sql.ErrNoRows {
		return snap, nil
	}
	if err != nil {
		return snap, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}

	if err := s.loadRecords(&snap); err != nil {
		return snap, err
	}
	if err := s.loadResults(&snap); err != nil {
		return snap, err
	}
	if err := s.loadIncidents(&snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) loadRecords(snap *storage.Snapshot) error {
	rows, err := s.db.Query("SELECT sla_id, record_json FROM sla_records ORDER BY timestamp ASC")
	if err != nil {
		return fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slaID, recordJSON string
		if err := rows.Scan(&slaID, &recordJSON); err != nil {
			return fmt.Errorf("failed to scan record row: %w", err)
		}
		var rec sla.Record
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}
		snap.Records[slaID] = append(snap.Records[slaID], rec)
	}
	return rows.Err()
}

func (s *Store) loadResults(snap *storage.Snapshot) error {
	rows, err := s.db.Query("SELECT check_id, result_json FROM probe_results ORDER BY timestamp ASC")
	if err != nil {
		return fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var checkID, resultJSON string
		if err := rows.Scan(&checkID, &resultJSON); err != nil {
			return fmt.Errorf("failed to scan result row: %w", err)
		}
		var res probe.Result
		if err := json.Unmarshal([]byte(resultJSON), &res); err != nil {
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
		snap.Results[checkID] = append(snap.Results[checkID], res)
	}
	return rows.Err()
}

func (s *Store) loadIncidents(snap *storage.Snapshot) error {
	rows, err := s.db.Query("SELECT incident_json FROM incidents ORDER BY start_time ASC")
	if err != nil {
		return fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var incidentJSON string
		if err := rows.Scan(&incidentJSON); err != nil {
			return fmt.Errorf("failed to scan incident row: %w", err)
		}
		var inc incident.Incident
		if err := json.Unmarshal([]byte(incidentJSON), &inc); err != nil {
			return fmt.Errorf("failed to unmarshal incident: %w", err)
		}
		snap.Incidents = append(snap.Incidents, inc)
	}
	return rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
