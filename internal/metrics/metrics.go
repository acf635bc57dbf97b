// Package metrics publishes probe and compliance samples to the telemetry
// sink. The sink itself is a collaborator; this package only defines the
// publication contract and a Prometheus-backed implementation of it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/samijaber1/aegis-uptime/internal/sla"
)

// Publisher receives one sample pair per probe tick and one compliance
// sample per SLA evaluation.
type Publisher interface {
	ObserveProbe(checkID, region string, responseTime time.Duration, success bool)
	ObserveCompliance(slaID string, status sla.Status, compliance float64)
}

// Prometheus implements Publisher on a Prometheus registry.
type Prometheus struct {
	responseTime *prometheus.HistogramVec
	success      *prometheus.GaugeVec
	compliance   *prometheus.GaugeVec
}

// NewPrometheus creates a publisher registering its collectors with reg.
// Pass prometheus.DefaultRegisterer outside tests.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		responseTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "uptime_check_response_time_seconds",
				Help:    "Probe response time per uptime check and region",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"check_id", "region"},
		),
		success: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "uptime_check_success",
				Help: "Whether the latest probe for a check/region succeeded (1) or failed (0)",
			},
			[]string{"check_id", "region"},
		),
		compliance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sla_compliance",
				Help: "Latest overall compliance percentage per SLA",
			},
			[]string{"sla_id", "status"},
		),
	}
}

// ObserveProbe implements Publisher.
func (p *Prometheus) ObserveProbe(checkID, region string, responseTime time.Duration, success bool) {
	p.responseTime.WithLabelValues(checkID, region).Observe(responseTime.Seconds())

	value := 0.0
	if success {
		value = 1.0
	}
	p.success.WithLabelValues(checkID, region).Set(value)
}

// ObserveCompliance implements Publisher.
func (p *Prometheus) ObserveCompliance(slaID string, status sla.Status, compliance float64) {
	p.compliance.WithLabelValues(slaID, string(status)).Set(compliance)
}

// Noop discards all samples. Tests and metric-less deployments use it.
type Noop struct{}

// ObserveProbe implements Publisher.
func (Noop) ObserveProbe(string, string, time.Duration, bool) {}

// ObserveCompliance implements Publisher.
func (Noop) ObserveCompliance(string, sla.Status, float64) {}
