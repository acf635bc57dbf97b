// Package incident tracks incidents and their timelines. The ledger is
// written independently of the evaluator (manually or by external alert
// correlation) and read by the reporting engine.
package incident

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity of an incident.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Status of an incident. Resolved is terminal.
type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusIdentified    Status = "identified"
	StatusMonitoring    Status = "monitoring"
	StatusResolved      Status = "resolved"
)

// Update kinds.
const (
	UpdateStatusChange = "status_change"
	UpdateNote         = "note"
)

// Incident is a tracked outage or degradation, cross-referenced to SLAs by id.
type Incident struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Severity    Severity      `json:"severity"`
	Status      Status        `json:"status"`
	Services    []string      `json:"services,omitempty"`
	SLAIDs      []string      `json:"slaIds,omitempty"`
	StartTime   time.Time     `json:"startTime"`
	EndTime     *time.Time    `json:"endTime,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"` // frozen at resolution
	Updates     []Update      `json:"updates"`
	CreatedBy   string        `json:"createdBy,omitempty"`
	Assignee    string        `json:"assignee,omitempty"`
}

// Resolved reports whether the incident reached its terminal status.
func (i *Incident) Resolved() bool {
	return i.Status == StatusResolved
}

// Update is one append-only timeline entry.
type Update struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author,omitempty"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	NewStatus *Status   `json:"newStatus,omitempty"`
}

// Ledger owns incident creation and timeline mutation.
type Ledger struct {
	mu        sync.RWMutex
	incidents map[string]*Incident
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewLedger creates an empty ledger.
func NewLedger(logger *zap.SugaredLogger) *Ledger {
	return &Ledger{
		incidents: make(map[string]*Incident),
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the ledger's clock. Tests use this to pin durations.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Create registers an incident, assigns its id and seeds the timeline with
// one status_change entry. Zero-value fields get defaults: status open,
// severity medium, start time now.
func (l *Ledger) Create(inc Incident) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	inc.ID = uuid.NewString()
	if inc.Status == "" {
		inc.Status = StatusOpen
	}
	if inc.Severity == "" {
		inc.Severity = SeverityMedium
	}
	if inc.StartTime.IsZero() {
		inc.StartTime = now
	}

	status := inc.Status
	inc.Updates = []Update{{
		ID:        uuid.NewString(),
		Timestamp: now,
		Author:    inc.CreatedBy,
		Kind:      UpdateStatusChange,
		Message:   "incident created",
		NewStatus: &status,
	}}

	l.incidents[inc.ID] = &inc
	l.logger.Infow("incident created",
		"incident", inc.ID, "title", inc.Title, "severity", inc.Severity)
	return inc.ID
}

// Apply appends an update to an incident's timeline. Unknown ids are a
// no-op so external callers can retry idempotently. A status-bearing update
// moves the incident's status; moving into resolved freezes EndTime and
// Duration. Resolved is terminal: status-bearing updates on a resolved
// incident are dropped whole (re-opening requires a new incident), while
// informational updates still append.
func (l *Ledger) Apply(id string, up Update) {
	l.mu.Lock()
	defer l.mu.Unlock()

	inc, ok := l.incidents[id]
	if !ok {
		return
	}

	if up.NewStatus != nil && inc.Status == StatusResolved {
		return
	}

	now := l.now()
	up.ID = uuid.NewString()
	if up.Timestamp.IsZero() {
		up.Timestamp = now
	}
	if up.Kind == "" {
		if up.NewStatus != nil {
			up.Kind = UpdateStatusChange
		} else {
			up.Kind = UpdateNote
		}
	}

	if up.NewStatus != nil {
		inc.Status = *up.NewStatus
		if inc.Status == StatusResolved {
			end := now
			inc.EndTime = &end
			inc.Duration = end.Sub(inc.StartTime)
			l.logger.Infow("incident resolved",
				"incident", inc.ID, "duration", inc.Duration)
		}
	}

	inc.Updates = append(inc.Updates, up)
}

// Get returns a copy of an incident.
func (l *Ledger) Get(id string) (Incident, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	inc, ok := l.incidents[id]
	if !ok {
		return Incident{}, false
	}
	return copyIncident(inc), true
}

// List returns copies of all incidents.
func (l *Ledger) List() []Incident {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Incident, 0, len(l.incidents))
	for _, inc := range l.incidents {
		out = append(out, copyIncident(inc))
	}
	return out
}

// StartedBetween returns incidents whose start time falls in [from, to).
func (l *Ledger) StartedBetween(from, to time.Time) []Incident {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Incident
	for _, inc := range l.incidents {
		if !inc.StartTime.Before(from) && inc.StartTime.Before(to) {
			out = append(out, copyIncident(inc))
		}
	}
	return out
}

// Restore replaces the ledger's contents from a snapshot.
func (l *Ledger) Restore(incidents []Incident) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.incidents = make(map[string]*Incident, len(incidents))
	for _, inc := range incidents {
		cp := copyIncident(&inc)
		l.incidents[cp.ID] = &cp
	}
}

func copyIncident(inc *Incident) Incident {
	cp := *inc
	cp.Services = append([]string(nil), inc.Services...)
	cp.SLAIDs = append([]string(nil), inc.SLAIDs...)
	cp.Updates = append([]Update(nil), inc.Updates...)
	if inc.EndTime != nil {
		end := *inc.EndTime
		cp.EndTime = &end
	}
	return cp
}
