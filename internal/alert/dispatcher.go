// Package alert decides when a status transition fires notifications and
// delivers the payload to the configured channels. Notifications are
// edge-triggered: a steady-state breach never re-notifies, and every state
// change notifies exactly once.
package alert

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/samijaber1/aegis-uptime/internal/eval"
	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// Event types fired on status transitions.
const (
	EventWarning  = "warning"
	EventBreach   = "breach"
	EventRecovery = "recovery"
)

// Payload is what a channel collaborator receives.
type Payload struct {
	SLAID      string     `json:"slaId"`
	SLAName    string     `json:"slaName"`
	Status     sla.Status `json:"status"`
	Compliance float64    `json:"compliance"`
	Type       string     `json:"notificationType"`
	Escalate   bool       `json:"escalate,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Channel delivers a notification somewhere. Delivery failure is logged by
// the dispatcher, not retried; retry is the collaborator's concern.
type Channel interface {
	Name() string
	Send(ctx context.Context, p Payload) error
}

// Dispatcher routes transition events to channels by name.
type Dispatcher struct {
	mu       sync.RWMutex
	channels map[string]Channel
	logger   *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher over the given channels.
func NewDispatcher(logger *zap.SugaredLogger, channels ...Channel) *Dispatcher {
	d := &Dispatcher{
		channels: make(map[string]Channel, len(channels)),
		logger:   logger,
	}
	for _, ch := range channels {
		d.channels[ch.Name()] = ch
	}
	return d
}

// RegisterChannel installs a channel, replacing any previous one of the
// same name.
func (d *Dispatcher) RegisterChannel(ch Channel) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[ch.Name()] = ch
}

// Notify compares the newest record with the previous one and fires the
// SLA's configured notifications on a status transition. A nil previous
// record is treated as a transition from unknown, so the first evaluation
// can already raise a warning or breach. The first compliant evaluation
// fires nothing: recovery implies a prior known degradation.
func (d *Dispatcher) Notify(ctx context.Context, def *sla.SLA, newRec sla.Record, prevRec *sla.Record) {
	prevStatus := sla.StatusUnknown
	if prevRec != nil {
		prevStatus = prevRec.Status
	}

	event := transitionEvent(prevStatus, newRec.Status)
	if event == "" {
		return
	}

	escalate := event == EventBreach && eval.CriticalCrossed(def, newRec)

	for _, rule := range def.Notifications {
		if rule.Type != event {
			continue
		}

		payload := Payload{
			SLAID:      def.ID,
			SLAName:    def.Name,
			Status:     newRec.Status,
			Compliance: newRec.Compliance,
			Type:       event,
			Escalate:   escalate || rule.Escalation,
			Timestamp:  newRec.Timestamp,
		}

		for _, name := range rule.Channels {
			d.send(ctx, name, payload)
		}
	}
}

// transitionEvent maps a status transition to an event type, or "" when no
// notification should fire.
func transitionEvent(prev, next sla.Status) string {
	if prev == next {
		return ""
	}
	switch next {
	case sla.StatusAtRisk:
		return EventWarning
	case sla.StatusBreached:
		return EventBreach
	case sla.StatusCompliant:
		if prev == sla.StatusAtRisk || prev == sla.StatusBreached {
			return EventRecovery
		}
	}
	return ""
}

func (d *Dispatcher) send(ctx context.Context, name string, p Payload) {
	d.mu.RLock()
	ch, ok := d.channels[name]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warnw("notification channel not configured",
			"channel", name, "sla", p.SLAID, "type", p.Type)
		return
	}

	if err := ch.Send(ctx, p); err != nil {
		d.logger.Errorw("notification delivery failed",
			"channel", name, "sla", p.SLAID, "type", p.Type, "error", err)
	}
}
