// Package storage defines the snapshot persistence interface. All engine
// state lives in memory; a snapshot store only bridges restarts.
package storage

import (
	"time"

	"github.com/samijaber1/aegis-uptime/internal/incident"
	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// Snapshot is the full persistable state of the engine: the retained
// evaluation rings, the retained probe result rings and the incident
// ledger.
type Snapshot struct {
	Records   map[string][]sla.Record
	Results   map[string][]probe.Result
	Incidents []incident.Incident
	TakenAt   time.Time
}

// SnapshotStore persists and restores engine snapshots.
type SnapshotStore interface {
	// Save replaces the persisted snapshot with the given one.
	Save(snap Snapshot) error

	// Load returns the persisted snapshot. A store with no snapshot yet
	// returns an empty snapshot, not an error.
	Load() (Snapshot, error)

	// Close releases the underlying connection.
	Close() error
}
