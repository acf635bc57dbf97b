// Package scheduler drives the engine: one independent timer per enabled
// uptime check, plus one shared timer evaluating every enabled SLA.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/samijaber1/aegis-uptime/internal/alert"
	"github.com/samijaber1/aegis-uptime/internal/eval"
	"github.com/samijaber1/aegis-uptime/internal/metrics"
	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/sla"
	"github.com/samijaber1/aegis-uptime/internal/store"
)

// DefaultEvaluationInterval is the shared SLA evaluation cadence.
const DefaultEvaluationInterval = 5 * time.Minute

// Scheduler owns every timer in the engine and the registries they feed.
type Scheduler struct {
	slas       *store.SLARegistry
	checks     *store.CheckRegistry
	evaluator  *eval.Evaluator
	dispatcher *alert.Dispatcher
	prober     *probe.Prober
	publisher  metrics.Publisher
	logger     *zap.SugaredLogger
	interval   time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	runners map[string]context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewScheduler wires the engine components together.
func NewScheduler(
	slas *store.SLARegistry,
	checks *store.CheckRegistry,
	evaluator *eval.Evaluator,
	dispatcher *alert.Dispatcher,
	prober *probe.Prober,
	publisher metrics.Publisher,
	logger *zap.SugaredLogger,
	evalInterval time.Duration,
) *Scheduler {
	if evalInterval <= 0 {
		evalInterval = DefaultEvaluationInterval
	}
	if publisher == nil {
		publisher = metrics.Noop{}
	}
	return &Scheduler{
		slas:       slas,
		checks:     checks,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		prober:     prober,
		publisher:  publisher,
		logger:     logger,
		interval:   evalInterval,
		runners:    make(map[string]context.CancelFunc),
	}
}

// Start launches the shared evaluation loop and one runner per enabled
// check.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	s.wg.Add(1)
	go s.evaluationLoop(s.ctx)

	for _, check := range s.checks.List() {
		if check.Enabled {
			s.startRunnerLocked(check)
		}
	}

	s.logger.Infow("scheduler started",
		"checks", len(s.runners), "evaluation_interval", s.interval)
	return nil
}

// Stop cancels every per-check timer and the shared evaluation timer, then
// waits for them to exit. No writes happen after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.runners = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// AddSLA validates and registers an SLA. It is picked up on the next
// evaluation tick.
func (s *Scheduler) AddSLA(def *sla.SLA) error {
	if err := s.slas.Add(def); err != nil {
		return err
	}
	s.logger.Infow("sla registered", "sla", def.ID, "enabled", def.Enabled)
	return nil
}

// RemoveSLA unregisters an SLA and discards its record history.
func (s *Scheduler) RemoveSLA(id string) {
	s.slas.Remove(id)
	s.logger.Infow("sla removed", "sla", id)
}

// AddCheck validates and registers an uptime check, starting its timer
// immediately when the scheduler is running and the check is enabled.
func (s *Scheduler) AddCheck(check *probe.Check) error {
	if err := s.checks.Add(check); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running && check.Enabled {
		s.startRunnerLocked(check)
	}
	s.mu.Unlock()

	s.logger.Infow("check registered", "check", check.ID, "enabled", check.Enabled)
	return nil
}

// RemoveCheck stops the check's timer and evicts its history. An in-flight
// probe completes and its result is discarded.
func (s *Scheduler) RemoveCheck(id string) {
	s.mu.Lock()
	if cancel, ok := s.runners[id]; ok {
		cancel()
		delete(s.runners, id)
	}
	s.mu.Unlock()

	s.checks.Remove(id)
	s.logger.Infow("check removed", "check", id)
}

// startRunnerLocked launches the timer goroutine for one check. Callers
// hold s.mu.
func (s *Scheduler) startRunnerLocked(check *probe.Check) {
	runnerCtx, cancel := context.WithCancel(s.ctx)
	s.runners[check.ID] = cancel

	s.wg.Add(1)
	go s.runCheck(runnerCtx, check)
}

// runCheck drives one check: an immediate first tick, then one tick per
// interval. Ticks never overlap; a slow probe delays the next tick.
func (s *Scheduler) runCheck(ctx context.Context, check *probe.Check) {
	defer s.wg.Done()

	s.probeTick(ctx, check)

	ticker := time.NewTicker(check.IntervalDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probeTick(ctx, check)
		}
	}
}

// probeTick probes every region once and records the results. A bad probe
// never stops the timer: failures arrive as failed results.
func (s *Scheduler) probeTick(ctx context.Context, check *probe.Check) {
	results := s.prober.Run(ctx, check)

	// Cancelled mid-probe: the check was removed or the engine is
	// stopping, so the results are discarded rather than recorded.
	if ctx.Err() != nil {
		return
	}

	for _, res := range results {
		s.checks.AppendResult(res)
		s.publisher.ObserveProbe(res.CheckID, res.Region, res.ResponseTime, res.Success)
	}
}

// evaluationLoop is the single shared SLA evaluation timer.
func (s *Scheduler) evaluationLoop(ctx context.Context) {
	defer s.wg.Done()

	s.evaluationTick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evaluationTick(ctx)
		}
	}
}

// evaluationTick evaluates every enabled SLA once. A failure in one SLA is
// logged and skipped; the rest of the tick proceeds.
func (s *Scheduler) evaluationTick(ctx context.Context) {
	now := time.Now().UTC()
	for _, def := range s.slas.List() {
		if !def.Enabled {
			continue
		}
		s.evaluateOne(ctx, def, now)
	}
}

// evaluateOne runs one SLA evaluation, appends the record, publishes the
// compliance sample and hands the transition to the dispatcher.
func (s *Scheduler) evaluateOne(ctx context.Context, def *sla.SLA, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("sla evaluation panicked, skipping this tick",
				"sla", def.ID, "panic", r)
		}
	}()

	var prev *sla.Record
	if latest, ok := s.slas.LatestRecord(def.ID); ok {
		prev = &latest
	}

	rec := s.evaluator.Evaluate(def, now)
	s.slas.AppendRecord(rec)
	s.publisher.ObserveCompliance(rec.SLAID, rec.Status, rec.Compliance)
	s.dispatcher.Notify(ctx, def, rec, prev)

	s.logger.Debugw("sla evaluated",
		"sla", def.ID, "status", rec.Status, "compliance", rec.Compliance)
}

// EvaluateNow forces an immediate evaluation of one SLA outside the shared
// timer.
func (s *Scheduler) EvaluateNow(ctx context.Context, id string) error {
	def, ok := s.slas.Get(id)
	if !ok {
		return fmt.Errorf("sla not found: %s", id)
	}
	s.evaluateOne(ctx, def, time.Now().UTC())
	return nil
}

// SLAStatusEntry is the query surface for one SLA.
type SLAStatusEntry struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Enabled bool        `json:"enabled"`
	Status  sla.Status  `json:"status"`
	Latest  *sla.Record `json:"latest,omitempty"`
}

// SLAStatus returns the latest known state of every registered SLA. SLAs
// with no records yet report unknown.
func (s *Scheduler) SLAStatus() map[string]SLAStatusEntry {
	out := make(map[string]SLAStatusEntry)
	for _, def := range s.slas.List() {
		entry := SLAStatusEntry{
			ID:      def.ID,
			Name:    def.Name,
			Enabled: def.Enabled,
			Status:  sla.StatusUnknown,
		}
		if latest, ok := s.slas.LatestRecord(def.ID); ok {
			entry.Status = latest.Status
			entry.Latest = &latest
		}
		out[def.ID] = entry
	}
	return out
}

// CheckStatusEntry is the query surface for one uptime check.
type CheckStatusEntry struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Enabled      bool          `json:"enabled"`
	Latest       *probe.Result `json:"latest,omitempty"`
	Availability float64       `json:"availability"` // over the retained ring
}

// UptimeStatus returns the latest result and ring availability of every
// registered check. Checks with no results yet report 100.
func (s *Scheduler) UptimeStatus() map[string]CheckStatusEntry {
	out := make(map[string]CheckStatusEntry)
	for _, check := range s.checks.List() {
		entry := CheckStatusEntry{
			ID:           check.ID,
			Name:         check.Name,
			Enabled:      check.Enabled,
			Availability: 100,
		}
		results := s.checks.Results(check.ID)
		if len(results) > 0 {
			latest := results[len(results)-1]
			entry.Latest = &latest

			var successful int
			for _, res := range results {
				if res.Success {
					successful++
				}
			}
			entry.Availability = float64(successful) / float64(len(results)) * 100
		}
		out[check.ID] = entry
	}
	return out
}
