// Package report aggregates stored records and incidents over an arbitrary
// time range into a summary document. It only reads: record creation
// belongs to the evaluator and incident mutation to the ledger.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/samijaber1/aegis-uptime/internal/incident"
	"github.com/samijaber1/aegis-uptime/internal/sla"
	"github.com/samijaber1/aegis-uptime/internal/store"
)

// SLASummary is the per-SLA section of a report.
type SLASummary struct {
	SLAID       string     `json:"slaId"`
	Name        string     `json:"name"`
	Service     string     `json:"service"`
	Compliance  float64    `json:"compliance"` // mean over records in range
	Status      sla.Status `json:"status"`     // latest record in range
	RecordCount int        `json:"recordCount"`
	IncidentIDs []string   `json:"incidentIds,omitempty"`
}

// Report is the aggregation over a time range.
type Report struct {
	From            time.Time     `json:"from"`
	To              time.Time     `json:"to"`
	GeneratedAt     time.Time     `json:"generatedAt"`
	SLAs            []SLASummary  `json:"slas"`
	IncidentCount   int           `json:"incidentCount"`
	ResolvedCount   int           `json:"resolvedCount"`
	TotalDowntime   time.Duration `json:"totalDowntime"`
	MTTR            time.Duration `json:"mttr"`
	MTBF            time.Duration `json:"mtbf"`
	Recommendations []string      `json:"recommendations"`
}

// Generator builds reports from the shared stores.
type Generator struct {
	slas      *store.SLARegistry
	incidents *incident.Ledger
}

// NewGenerator creates a reporting engine over the given stores.
func NewGenerator(slas *store.SLARegistry, incidents *incident.Ledger) *Generator {
	return &Generator{slas: slas, incidents: incidents}
}

// Generate aggregates records and incidents over [from, to). SLAs without
// records in the range are omitted. Incident metrics cover every incident
// started in the range that affects a reported SLA, deduplicated.
func (g *Generator) Generate(from, to time.Time) *Report {
	rep := &Report{
		From:        from,
		To:          to,
		GeneratedAt: time.Now().UTC(),
	}

	inRange := g.incidents.StartedBetween(from, to)
	joined := make(map[string]incident.Incident)

	for _, def := range g.slas.List() {
		records := g.slas.RecordsBetween(def.ID, from, to)
		if len(records) == 0 {
			continue
		}

		summary := SLASummary{
			SLAID:       def.ID,
			Name:        def.Name,
			Service:     def.Service,
			Compliance:  meanCompliance(records),
			Status:      records[len(records)-1].Status,
			RecordCount: len(records),
		}

		for _, inc := range inRange {
			if affects(inc, def.ID) {
				summary.IncidentIDs = append(summary.IncidentIDs, inc.ID)
				joined[inc.ID] = inc
			}
		}

		rep.SLAs = append(rep.SLAs, summary)
	}

	sort.Slice(rep.SLAs, func(i, j int) bool { return rep.SLAs[i].SLAID < rep.SLAs[j].SLAID })

	var resolved int
	var totalDowntime, totalResolution time.Duration
	longest := time.Duration(0)
	for _, inc := range joined {
		rep.IncidentCount++
		if inc.Duration > 0 {
			totalDowntime += inc.Duration
		}
		if inc.Resolved() {
			resolved++
			totalResolution += inc.Duration
		}
		if inc.Duration > longest {
			longest = inc.Duration
		}
	}

	rep.ResolvedCount = resolved
	rep.TotalDowntime = totalDowntime
	if resolved > 0 {
		rep.MTTR = totalResolution / time.Duration(resolved)
	}
	if resolved > 1 {
		rep.MTBF = to.Sub(from) / time.Duration(resolved-1)
	}

	rep.Recommendations = recommendations(rep, longest)
	return rep
}

// meanCompliance averages per-record compliance.
func meanCompliance(records []sla.Record) float64 {
	var sum float64
	for _, rec := range records {
		sum += rec.Compliance
	}
	return sum / float64(len(records))
}

func affects(inc incident.Incident, slaID string) bool {
	for _, id := range inc.SLAIDs {
		if id == slaID {
			return true
		}
	}
	return false
}

// recommendations produces rule-based advisory text.
func recommendations(rep *Report, longestIncident time.Duration) []string {
	var out []string

	for _, summary := range rep.SLAs {
		if summary.Compliance < 95 {
			out = append(out, fmt.Sprintf(
				"SLA %s averaged %.1f%% compliance; review its targets or the underlying service capacity",
				summary.SLAID, summary.Compliance))
		}
	}

	if rep.IncidentCount > 10 {
		out = append(out, fmt.Sprintf(
			"%d incidents in this period suggests a recurring root cause; consider a reliability review",
			rep.IncidentCount))
	}

	if longestIncident > 4*time.Hour {
		out = append(out, fmt.Sprintf(
			"longest incident ran %s; review escalation paths and on-call response",
			longestIncident.Round(time.Minute)))
	}

	return out
}
