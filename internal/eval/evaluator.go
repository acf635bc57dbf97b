// Package eval turns an SLA definition plus the measurement source into
// immutable compliance records.
package eval

import (
	"time"

	"github.com/google/uuid"

	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// Source resolves a scalar for (metric, window) per the SLA's measurement
// policy. It must be side-effect-free and total. The measure package
// provides the implementations.
type Source interface {
	Measure(policy sla.Measurement, metric string, w sla.Window) float64
}

// Evaluator classifies SLA compliance.
type Evaluator struct {
	source Source
}

// NewEvaluator creates an evaluator over the given measurement source.
func NewEvaluator(source Source) *Evaluator {
	return &Evaluator{source: source}
}

// Evaluate performs one evaluation of an SLA at the reference instant and
// returns the resulting record. The record is the caller's to append; the
// evaluator itself never mutates shared state.
//
// Classification: any non-compliant target makes the whole SLA breached,
// with overall compliance the minimum actual/target ratio across breached
// targets. With no breach, any tripped warning threshold makes it at_risk,
// otherwise compliant with overall compliance 100.
func (e *Evaluator) Evaluate(def *sla.SLA, now time.Time) sla.Record {
	window := def.Window.Resolve(now)

	record := sla.Record{
		ID:         uuid.NewString(),
		SLAID:      def.ID,
		Timestamp:  now,
		Status:     sla.StatusCompliant,
		Compliance: 100,
		Targets:    make([]sla.TargetResult, 0, len(def.Targets)),
	}

	breached := false
	atRisk := false
	minRatio := 100.0

	for _, target := range def.Targets {
		actual := e.source.Measure(def.Measurement, target.Metric, window)
		compliant := EvaluateTarget(actual, target.Operator, target.Target)

		record.Targets = append(record.Targets, sla.TargetResult{
			TargetID:  target.ID,
			Metric:    target.Metric,
			Actual:    actual,
			Target:    target.Target,
			Compliant: compliant,
			Deviation: deviation(actual, target.Target),
		})

		if !compliant {
			breached = true
			if ratio := complianceRatio(actual, target.Target); ratio < minRatio {
				minRatio = ratio
			}
			continue
		}

		// Warning thresholds only matter while the target itself holds.
		if target.WarningThreshold != nil && warningTripped(actual, target) {
			atRisk = true
		}
	}

	switch {
	case breached:
		record.Status = sla.StatusBreached
		record.Compliance = minRatio
	case atRisk:
		record.Status = sla.StatusAtRisk
	}

	return record
}

// EvaluateTarget reports whether an actual measurement meets the operator
// against the target value. Boundaries are inclusive for >= and <=.
func EvaluateTarget(actual float64, op sla.Operator, target float64) bool {
	switch op {
	case sla.OpGTE:
		return actual >= target
	case sla.OpLTE:
		return actual <= target
	case sla.OpEQ:
		return actual == target
	default:
		return false
	}
}

// CriticalCrossed reports whether any breached target in the record also
// crossed its critical threshold, which escalates the resulting breach
// notification.
func CriticalCrossed(def *sla.SLA, record sla.Record) bool {
	byID := make(map[string]sla.TargetResult, len(record.Targets))
	for _, tr := range record.Targets {
		byID[tr.TargetID] = tr
	}

	for _, target := range def.Targets {
		if target.CriticalThreshold == nil {
			continue
		}
		tr, ok := byID[target.ID]
		if !ok || tr.Compliant {
			continue
		}
		bound := target.Target * (*target.CriticalThreshold / 100)
		switch target.Operator {
		case sla.OpGTE:
			if tr.Actual < bound {
				return true
			}
		case sla.OpLTE:
			if tr.Actual > bound {
				return true
			}
		}
	}
	return false
}

// warningTripped applies the at-risk threshold, expressed as a percentage
// of the target.
func warningTripped(actual float64, target sla.SLATarget) bool {
	bound := target.Target * (*target.WarningThreshold / 100)
	switch target.Operator {
	case sla.OpGTE:
		return actual < bound
	case sla.OpLTE:
		return actual > bound
	default:
		return false
	}
}

// complianceRatio is actual/target as a percentage, guarded for zero targets.
func complianceRatio(actual, target float64) float64 {
	if target == 0 {
		return 0
	}
	ratio := actual / target * 100
	if ratio < 0 {
		return 0
	}
	return ratio
}

// deviation is the signed distance from the target as a percentage of it.
func deviation(actual, target float64) float64 {
	if target == 0 {
		return 0
	}
	return (actual - target) / target * 100
}
