package sla

import "time"

// Operator compares an actual measurement against a target value.
type Operator string

const (
	OpGTE Operator = ">="
	OpLTE Operator = "<="
	OpEQ  Operator = "=="
)

// WindowKind selects how the evaluation window is anchored.
type WindowKind string

const (
	WindowRolling  WindowKind = "rolling"
	WindowCalendar WindowKind = "calendar"
)

// PeriodUnit is the unit a time window is expressed in.
type PeriodUnit string

const (
	UnitHour    PeriodUnit = "hour"
	UnitDay     PeriodUnit = "day"
	UnitWeek    PeriodUnit = "week"
	UnitMonth   PeriodUnit = "month"
	UnitQuarter PeriodUnit = "quarter"
	UnitYear    PeriodUnit = "year"
)

// SourceKind identifies where measurements for an SLA come from.
type SourceKind string

const (
	SourceSynthetic   SourceKind = "synthetic"
	SourceRealUser    SourceKind = "real_user"
	SourceHealthCheck SourceKind = "health_check"
	SourceCustom      SourceKind = "custom"
)

// Aggregation is the metric aggregation a measurement policy asks for.
type Aggregation string

const (
	AggAvailability Aggregation = "availability"
	AggResponseTime Aggregation = "response_time"
	AggErrorRate    Aggregation = "error_rate"
	AggThroughput   Aggregation = "throughput"
)

// Status classifies the compliance of an SLA at a point in time.
type Status string

const (
	StatusCompliant Status = "compliant"
	StatusAtRisk    Status = "at_risk"
	StatusBreached  Status = "breached"
	StatusUnknown   Status = "unknown"
)

// SLA is the parsed SLA definition.
type SLA struct {
	ID            string             `yaml:"id" json:"id"`
	Name          string             `yaml:"name" json:"name"`
	Service       string             `yaml:"service" json:"service"`
	Enabled       bool               `yaml:"enabled" json:"enabled"`
	Targets       []SLATarget        `yaml:"targets" json:"targets"`
	Window        TimeWindow         `yaml:"window" json:"window"`
	Measurement   Measurement        `yaml:"measurement" json:"measurement"`
	Notifications []NotificationRule `yaml:"notifications,omitempty" json:"notifications,omitempty"`
}

// SLATarget is a single measurable objective within an SLA.
// WarningThreshold and CriticalThreshold, when set, are expressed as a
// percentage of Target.
type SLATarget struct {
	ID                string   `yaml:"id" json:"id"`
	Metric            string   `yaml:"metric" json:"metric"`
	Operator          Operator `yaml:"operator" json:"operator"`
	Target            float64  `yaml:"target" json:"target"`
	Unit              string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	WarningThreshold  *float64 `yaml:"warningThreshold,omitempty" json:"warningThreshold,omitempty"`
	CriticalThreshold *float64 `yaml:"criticalThreshold,omitempty" json:"criticalThreshold,omitempty"`
}

// TimeWindow is the window policy an SLA is evaluated over.
type TimeWindow struct {
	Kind          WindowKind     `yaml:"kind" json:"kind"`
	Unit          PeriodUnit     `yaml:"unit" json:"unit"`
	Duration      int            `yaml:"duration" json:"duration"`
	Timezone      string         `yaml:"timezone,omitempty" json:"timezone,omitempty"`
	BusinessHours *BusinessHours `yaml:"businessHours,omitempty" json:"businessHours,omitempty"`
}

// BusinessHours is an optional mask carried on the window policy. It is
/// configuration only: window math does not apply it.
type BusinessHours struct {
	StartHour int      `yaml:"startHour" json:"startHour"`
	EndHour   int      `yaml:"endHour" json:"endHour"`
	Weekdays  []string `yaml:"weekdays,omitempty" json:"weekdays,omitempty"`
}

// Measurement is the measurement policy for an SLA.
// Interval and Timeout use duration strings like "30s" or "5m".
type Measurement struct {
	Source      SourceKind  `yaml:"source" json:"source"`
	Interval    string      `yaml:"interval,omitempty" json:"interval,omitempty"`
	Timeout     string      `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Endpoints   []string    `yaml:"endpoints,omitempty" json:"endpoints,omitempty"`
	Regions     []string    `yaml:"regions,omitempty" json:"regions,omitempty"`
	Aggregation Aggregation `yaml:"aggregation" json:"aggregation"`
}

// NotificationRule binds a notification event type to channel names.
type NotificationRule struct {
	Type       string   `yaml:"type" json:"type"` // warning, breach, recovery
	Channels   []string `yaml:"channels" json:"channels"`
	Escalation bool     `yaml:"escalation,omitempty" json:"escalation,omitempty"`
}

// Record is an immutable snapshot of one SLA evaluation.
type Record struct {
	ID          string         `json:"id"`
	SLAID       string         `json:"slaId"`
	Timestamp   time.Time      `json:"timestamp"`
	Status      Status         `json:"status"`
	Compliance  float64        `json:"compliance"`
	Targets     []TargetResult `json:"targets"`
	IncidentIDs []string       `json:"incidentIds,omitempty"`
}

// TargetResult is the per-target outcome inside a Record.
type TargetResult struct {
	TargetID  string  `json:"targetId"`
	Metric    string  `json:"metric"`
	Actual    float64 `json:"actual"`
	Target    float64 `json:"target"`
	Compliant bool    `json:"compliant"`
	Deviation float64 `json:"deviation"` // percent relative to target
}

// SLAWithFile pairs an SLA with its source file path.
type SLAWithFile struct {
	SLA  *SLA
	File string
}

// ValidationError represents a validation error for a specific file.
type ValidationError struct {
	File    string
	Path    string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path != "" {
		return e.File + ": " + e.Path + ": " + e.Message
	}
	return e.File + ": " + e.Message
}
