// Package store holds the in-memory registries for SLA definitions, uptime
// checks and their bounded histories. Each registry is guarded by one
// RWMutex: timers are the only writers per entity, while reporting and
// status queries read concurrently.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// DefaultHistoryLimit caps each record/result ring. Oldest entries are
// evicted first.
const DefaultHistoryLimit = 1000

// SLARegistry owns the SLA definitions and their per-SLA record rings.
type SLARegistry struct {
	mu      sync.RWMutex
	slas    map[string]*sla.SLA
	records map[string][]sla.Record
	limit   int
}

// NewSLARegistry creates a registry with the given ring cap.
func NewSLARegistry(historyLimit int) *SLARegistry {
	if historyLimit < 1 {
		historyLimit = DefaultHistoryLimit
	}
	return &SLARegistry{
		slas:    make(map[string]*sla.SLA),
		records: make(map[string][]sla.Record),
		limit:   historyLimit,
	}
}

// Add validates and registers an SLA. Configuration errors reject the
// registration synchronously.
func (r *SLARegistry) Add(def *sla.SLA) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slas[def.ID]; exists {
		return fmt.Errorf("sla %s already registered", def.ID)
	}
	r.slas[def.ID] = def
	return nil
}

// Remove unregisters an SLA and discards its record ring.
func (r *SLARegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slas, id)
	delete(r.records, id)
}

// Get returns the SLA with the given id.
func (r *SLARegistry) Get(id string) (*sla.SLA, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.slas[id]
	return def, ok
}

// List returns all registered SLAs.
func (r *SLARegistry) List() []*sla.SLA {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*sla.SLA, 0, len(r.slas))
	for _, def := range r.slas {
		out = append(out, def)
	}
	return out
}

// AppendRecord appends an evaluation record to its SLA's ring, evicting the
// oldest entry once the cap is reached. Records for unregistered SLAs are
// dropped (the SLA was removed while an evaluation was in flight).
func (r *SLARegistry) AppendRecord(rec sla.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slas[rec.SLAID]; !exists {
		return
	}

	ring := append(r.records[rec.SLAID], rec)
	if len(ring) > r.limit {
		ring = ring[len(ring)-r.limit:]
	}
	r.records[rec.SLAID] = ring
}

// LatestRecord returns the newest record for an SLA.
func (r *SLARegistry) LatestRecord(id string) (sla.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ring := r.records[id]
	if len(ring) == 0 {
		return sla.Record{}, false
	}
	return ring[len(ring)-1], true
}

// Records returns a copy of the record ring for an SLA.
func (r *SLARegistry) Records(id string) []sla.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ring := r.records[id]
	out := make([]sla.Record, len(ring))
	copy(out, ring)
	return out
}

// RecordsBetween returns records for an SLA whose timestamp falls in
// [from, to).
func (r *SLARegistry) RecordsBetween(id string, from, to time.Time) []sla.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []sla.Record
	for _, rec := range r.records[id] {
		if !rec.Timestamp.Before(from) && rec.Timestamp.Before(to) {
			out = append(out, rec)
		}
	}
	return out
}

// Snapshot returns a copy of every record ring, keyed by SLA id.
func (r *SLARegistry) Snapshot() map[string][]sla.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]sla.Record, len(r.records))
	for id, ring := range r.records {
		cp := make([]sla.Record, len(ring))
		copy(cp, ring)
		out[id] = cp
	}
	return out
}

// Restore replaces the record rings, trimming each to the ring cap. Rings
// for SLAs that are no longer registered are kept so reporting over a
// restored history stays complete until the ids are re-registered or aged out.
func (r *SLARegistry) Restore(records map[string][]sla.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make(map[string][]sla.Record, len(records))
	for id, ring := range records {
		cp := make([]sla.Record, len(ring))
		copy(cp, ring)
		if len(cp) > r.limit {
			cp = cp[len(cp)-r.limit:]
		}
		r.records[id] = cp
	}
}

// CheckRegistry owns the uptime check definitions and their per-check
// result rings.
type CheckRegistry struct {
	mu      sync.RWMutex
	checks  map[string]*probe.Check
	results map[string][]probe.Result
	limit   int
}

// NewCheckRegistry creates a registry with the given ring cap.
func NewCheckRegistry(historyLimit int) *CheckRegistry {
	if historyLimit < 1 {
		historyLimit = DefaultHistoryLimit
	}
	return &CheckRegistry{
		checks:  make(map[string]*probe.Check),
		results: make(map[string][]probe.Result),
		limit:   historyLimit,
	}
}

// Add validates and registers an uptime check.
func (r *CheckRegistry) Add(check *probe.Check) error {
	if err := check.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checks[check.ID]; exists {
		return fmt.Errorf("check %s already registered", check.ID)
	}
	r.checks[check.ID] = check
	return nil
}

// Remove unregisters a check and discards its result ring.
func (r *CheckRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.checks, id)
	delete(r.results, id)
}

// Get returns the check with the given id.
func (r *CheckRegistry) Get(id string) (*probe.Check, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	check, ok := r.checks[id]
	return check, ok
}

// List returns all registered checks.
func (r *CheckRegistry) List() []*probe.Check {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*probe.Check, 0, len(r.checks))
	for _, check := range r.checks {
		out = append(out, check)
	}
	return out
}

// AppendResult appends a probe result to its check's ring. Results for
// unregistered checks are dropped: an in-flight probe whose check was
// removed completes and is discarded rather than awaited.
func (r *CheckRegistry) AppendResult(res probe.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.checks[res.CheckID]; !exists {
		return
	}

	ring := append(r.results[res.CheckID], res)
	if len(ring) > r.limit {
		ring = ring[len(ring)-r.limit:]
	}
	r.results[res.CheckID] = ring
}

// Results returns a copy of the result ring for a check.
func (r *CheckRegistry) Results(id string) []probe.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ring := r.results[id]
	out := make([]probe.Result, len(ring))
	copy(out, ring)
	return out
}

// LatestResult returns the newest result for a check.
func (r *CheckRegistry) LatestResult(id string) (probe.Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ring := r.results[id]
	if len(ring) == 0 {
		return probe.Result{}, false
	}
	return ring[len(ring)-1], true
}

// ResultsBetween returns results across all checks whose timestamp falls in
// [from, to). The synthetic measurement source aggregates over this.
func (r *CheckRegistry) ResultsBetween(from, to time.Time) []probe.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []probe.Result
	for _, ring := range r.results {
		for _, res := range ring {
			if !res.Timestamp.Before(from) && res.Timestamp.Before(to) {
				out = append(out, res)
			}
		}
	}
	return out
}

// Snapshot returns a copy of every result ring, keyed by check id.
func (r *CheckRegistry) Snapshot() map[string][]probe.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]probe.Result, len(r.results))
	for id, ring := range r.results {
		cp := make([]probe.Result, len(ring))
		copy(cp, ring)
		out[id] = cp
	}
	return out
}

// Restore replaces the result rings, trimming each to the ring cap.
func (r *CheckRegistry) Restore(results map[string][]probe.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = make(map[string][]probe.Result, len(results))
	for id, ring := range results {
		cp := make([]probe.Result, len(ring))
		copy(cp, ring)
		if len(cp) > r.limit {
			cp = cp[len(cp)-r.limit:]
		}
		r.results[id] = cp
	}
}
