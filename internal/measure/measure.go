// Package measure resolves a scalar for (metric, time window) per the SLA's
// measurement policy. Sources are total: they never return errors, only a
// value, so a misbehaving collaborator degrades to a sentinel data point
// instead of failing an evaluation.
package measure

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// Source resolves a measurement for a metric over a window.
type Source interface {
	Measure(policy sla.Measurement, metric string, w sla.Window) float64
}

// SourceFunc adapts a function to the Source interface. External real-user
// and health-check collaborators typically register one of these.
type SourceFunc func(policy sla.Measurement, metric string, w sla.Window) float64

// Measure implements Source.
func (f SourceFunc) Measure(policy sla.Measurement, metric string, w sla.Window) float64 {
	return f(policy, metric, w)
}

// ResultSource exposes uptime results for a window. The check registry
// implements this.
type ResultSource interface {
	ResultsBetween(from, to time.Time) []probe.Result
}

// Synthetic aggregates this engine's own uptime-check probes.
//
// An empty window deliberately reads as 100 even though zero samples can
// mask a mis-configured check. Changing it changes alerting semantics, so
// it stays until a product decision says otherwise.
type Synthetic struct {
	results ResultSource
}

// NewSynthetic creates a synthetic source over the given result history.
func NewSynthetic(results ResultSource) *Synthetic {
	return &Synthetic{results: results}
}

// Measure implements Source. The metric name picks the aggregation, with
// the policy's aggregation kind as fallback for unrecognized names.
func (s *Synthetic) Measure(policy sla.Measurement, metric string, w sla.Window) float64 {
	results := s.results.ResultsBetween(w.Start, w.End)
	if len(results) == 0 {
		return 100
	}

	switch aggregationFor(metric, policy.Aggregation) {
	case sla.AggAvailability:
		return availability(results)
	case sla.AggResponseTime:
		return responseTimeP95(results)
	case sla.AggErrorRate:
		return 100 - availability(results)
	case sla.AggThroughput:
		return throughput(results, w)
	default:
		return availability(results)
	}
}

// aggregationFor maps well-known metric names onto aggregation kinds.
func aggregationFor(metric string, fallback sla.Aggregation) sla.Aggregation {
	switch metric {
	case "availability", "uptime":
		return sla.AggAvailability
	case "response_time", "response_time_p95", "latency_p95":
		return sla.AggResponseTime
	case "error_rate":
		return sla.AggErrorRate
	case "throughput":
		return sla.AggThroughput
	default:
		return fallback
	}
}

// availability returns successful/total as a percentage.
func availability(results []probe.Result) float64 {
	var successful int
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	return float64(successful) / float64(len(results)) * 100
}

// responseTimeP95 returns the 95th percentile response time in milliseconds
// over successful results: sorted ascending, index ceil(0.95*N)-1.
func responseTimeP95(results []probe.Result) float64 {
	var times []float64
	for _, r := range results {
		if r.Success {
			times = append(times, float64(r.ResponseTime.Milliseconds()))
		}
	}
	if len(times) == 0 {
		return 0
	}

	sort.Float64s(times)
	idx := int(math.Ceil(0.95*float64(len(times)))) - 1
	if idx < 0 {
		idx = 0
	}
	return times[idx]
}

// throughput returns probes per minute over the window.
func throughput(results []probe.Result, w sla.Window) float64 {
	minutes := w.Length().Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(len(results)) / minutes
}

// Registry dispatches measurements to the source configured on the policy.
// Real-user, health-check and custom sources are external collaborators
// registered by kind; the synthetic source is built in.
type Registry struct {
	mu        sync.RWMutex
	synthetic Source
	external  map[sla.SourceKind]Source
}

// NewRegistry creates a dispatch registry around the synthetic source.
func NewRegistry(synthetic Source) *Registry {
	return &Registry{
		synthetic: synthetic,
		external:  make(map[sla.SourceKind]Source),
	}
}

// Register installs an external source for a kind, replacing any previous one.
func (r *Registry) Register(kind sla.SourceKind, src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.external[kind] = src
}

// Measure implements Source. Unknown or unregistered source kinds return 0,
// a sentinel distinct from the synthetic empty-window default.
func (r *Registry) Measure(policy sla.Measurement, metric string, w sla.Window) float64 {
	if policy.Source == sla.SourceSynthetic {
		return r.synthetic.Measure(policy, metric, w)
	}

	r.mu.RLock()
	src, ok := r.external[policy.Source]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	return src.Measure(policy, metric, w)
}
