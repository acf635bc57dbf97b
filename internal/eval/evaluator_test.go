package eval

import (
	"math"
	"testing"
	"time"

	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// metricMap returns a fixed value per metric name.
type metricMap map[string]float64

func (m metricMap) Measure(policy sla.Measurement, metric string, w sla.Window) float64 {
	return m[metric]
}

var evalNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func availabilitySLA() *sla.SLA {
	return &sla.SLA{
		ID:      "api",
		Name:    "API availability",
		Service: "api",
		Enabled: true,
		Targets: []sla.SLATarget{
			{ID: "avail", Metric: "availability", Operator: sla.OpGTE, Target: 99.9},
		},
		Window:      sla.TimeWindow{Kind: sla.WindowRolling, Unit: sla.UnitDay, Duration: 30},
		Measurement: sla.Measurement{Source: sla.SourceSynthetic, Aggregation: sla.AggAvailability},
	}
}

func TestEvaluateTarget(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		op       sla.Operator
		target   float64
		expected bool
	}{
		{name: "gte boundary inclusive", actual: 99.9, op: sla.OpGTE, target: 99.9, expected: true},
		{name: "gte just below", actual: 99.89999, op: sla.OpGTE, target: 99.9, expected: false},
		{name: "gte above", actual: 99.95, op: sla.OpGTE, target: 99.9, expected: true},
		{name: "lte boundary inclusive", actual: 500, op: sla.OpLTE, target: 500, expected: true},
		{name: "lte above", actual: 500.1, op: sla.OpLTE, target: 500, expected: false},
		{name: "eq match", actual: 1, op: sla.OpEQ, target: 1, expected: true},
		{name: "eq mismatch", actual: 1.1, op: sla.OpEQ, target: 1, expected: false},
		{name: "unknown operator", actual: 1, op: "~", target: 1, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateTarget(tt.actual, tt.op, tt.target); got != tt.expected {
				t.Errorf("EvaluateTarget(%v, %q, %v) = %v, expected %v",
					tt.actual, tt.op, tt.target, got, tt.expected)
			}
		})
	}
}

func TestEvaluateCompliant(t *testing.T) {
	e := NewEvaluator(metricMap{"availability": 99.95})

	rec := e.Evaluate(availabilitySLA(), evalNow)

	if rec.Status != sla.StatusCompliant {
		t.Errorf("expected compliant, got %s", rec.Status)
	}
	if rec.Compliance != 100 {
		t.Errorf("expected compliance 100, got %v", rec.Compliance)
	}
	if len(rec.Targets) != 1 {
		t.Fatalf("expected 1 target result, got %d", len(rec.Targets))
	}
	if !rec.Targets[0].Compliant {
		t.Error("expected target to be compliant")
	}
	if rec.SLAID != "api" {
		t.Errorf("expected record for api, got %s", rec.SLAID)
	}
	if !rec.Timestamp.Equal(evalNow) {
		t.Errorf("expected timestamp %v, got %v", evalNow, rec.Timestamp)
	}
}

func TestEvaluateBreached(t *testing.T) {
	e := NewEvaluator(metricMap{"availability": 95.0})

	rec := e.Evaluate(availabilitySLA(), evalNow)

	if rec.Status != sla.StatusBreached {
		t.Errorf("expected breached, got %s", rec.Status)
	}
	// Overall compliance is actual/target for the breached target.
	expected := 95.0 / 99.9 * 100
	if math.Abs(rec.Compliance-expected) > 0.0001 {
		t.Errorf("expected compliance %.4f, got %.4f", expected, rec.Compliance)
	}
	if rec.Targets[0].Compliant {
		t.Error("expected target to be non-compliant")
	}
	if rec.Targets[0].Deviation >= 0 {
		t.Errorf("expected negative deviation, got %v", rec.Targets[0].Deviation)
	}
}

func TestEvaluateMultiTargetTakesWorstRatio(t *testing.T) {
	def := availabilitySLA()
	def.Targets = append(def.Targets, sla.SLATarget{
		ID: "latency", Metric: "response_time_p95", Operator: sla.OpLTE, Target: 500, Unit: "ms",
	})

	e := NewEvaluator(metricMap{
		"availability":      99.0,  // breached: ratio ~99.1
		"response_time_p95": 300.0, // compliant
	})

	rec := e.Evaluate(def, evalNow)

	if rec.Status != sla.StatusBreached {
		t.Fatalf("expected breached, got %s", rec.Status)
	}
	expected := 99.0 / 99.9 * 100
	if math.Abs(rec.Compliance-expected) > 0.0001 {
		t.Errorf("expected compliance from breached target only (%.4f), got %.4f", expected, rec.Compliance)
	}
}

func TestEvaluateAtRisk(t *testing.T) {
	warn := 100.8 // percent of target: warn below 99.0*1.008 = 99.792
	def := availabilitySLA()
	def.Targets[0].Target = 99.0
	def.Targets[0].WarningThreshold = &warn

	tests := []struct {
		name     string
		actual   float64
		expected sla.Status
	}{
		{name: "above warning bound", actual: 99.8, expected: sla.StatusCompliant},
		{name: "below warning bound but above target", actual: 99.2, expected: sla.StatusAtRisk},
		{name: "below target", actual: 98.0, expected: sla.StatusBreached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(metricMap{"availability": tt.actual})
			rec := e.Evaluate(def, evalNow)
			if rec.Status != tt.expected {
				t.Errorf("actual=%v: expected %s, got %s", tt.actual, tt.expected, rec.Status)
			}
		})
	}
}

func TestEvaluateAtRiskLTE(t *testing.T) {
	warn := 80.0 // warn above 500*0.8 = 400ms
	def := &sla.SLA{
		ID: "latency", Name: "Latency", Service: "api", Enabled: true,
		Targets: []sla.SLATarget{
			{ID: "p95", Metric: "response_time_p95", Operator: sla.OpLTE, Target: 500, WarningThreshold: &warn},
		},
		Window:      sla.TimeWindow{Kind: sla.WindowRolling, Unit: sla.UnitDay, Duration: 1},
		Measurement: sla.Measurement{Source: sla.SourceSynthetic, Aggregation: sla.AggResponseTime},
	}

	e := NewEvaluator(metricMap{"response_time_p95": 450})
	rec := e.Evaluate(def, evalNow)
	if rec.Status != sla.StatusAtRisk {
		t.Errorf("expected at_risk at 450ms with 400ms warning bound, got %s", rec.Status)
	}

	e = NewEvaluator(metricMap{"response_time_p95": 350})
	rec = e.Evaluate(def, evalNow)
	if rec.Status != sla.StatusCompliant {
		t.Errorf("expected compliant at 350ms, got %s", rec.Status)
	}
}

func TestCriticalCrossed(t *testing.T) {
	crit := 95.0 // escalate below 99.9*0.95 = 94.905
	def := availabilitySLA()
	def.Targets[0].CriticalThreshold = &crit

	tests := []struct {
		name     string
		actual   float64
		expected bool
	}{
		{name: "breached but above critical bound", actual: 97.0, expected: false},
		{name: "breached below critical bound", actual: 90.0, expected: true},
		{name: "compliant", actual: 99.95, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(metricMap{"availability": tt.actual})
			rec := e.Evaluate(def, evalNow)
			if got := CriticalCrossed(def, rec); got != tt.expected {
				t.Errorf("actual=%v: expected escalation=%v, got %v", tt.actual, tt.expected, got)
			}
		})
	}
}

func TestEvaluateRecordsAreIndependent(t *testing.T) {
	e := NewEvaluator(metricMap{"availability": 99.95})
	def := availabilitySLA()

	first := e.Evaluate(def, evalNow)
	second := e.Evaluate(def, evalNow.Add(5*time.Minute))

	if first.ID == second.ID {
		t.Error("expected each evaluation to mint a fresh record id")
	}
}
