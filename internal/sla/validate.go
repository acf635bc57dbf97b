package sla

import "fmt"

// Validate checks the structural invariants of an SLA definition. It is
// called synchronously at registration time so configuration errors reject
// the registration instead of surfacing later inside the evaluator.
func (s *SLA) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("sla id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("sla %s: name is required", s.ID)
	}
	if len(s.Targets) == 0 {
		return fmt.Errorf("sla %s: at least one target is required", s.ID)
	}

	seen := make(map[string]struct{}, len(s.Targets))
	for i, t := range s.Targets {
		if t.ID == "" {
			return fmt.Errorf("sla %s: targets[%d]: id is required", s.ID, i)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("sla %s: duplicate target id %q", s.ID, t.ID)
		}
		seen[t.ID] = struct{}{}

		if t.Metric == "" {
			return fmt.Errorf("sla %s: target %s: metric is required", s.ID, t.ID)
		}
		switch t.Operator {
		case OpGTE, OpLTE, OpEQ:
		default:
			return fmt.Errorf("sla %s: target %s: invalid operator %q", s.ID, t.ID, t.Operator)
		}
		if t.WarningThreshold != nil && *t.WarningThreshold <= 0 {
			return fmt.Errorf("sla %s: target %s: warningThreshold must be positive", s.ID, t.ID)
		}
		if t.CriticalThreshold != nil && *t.CriticalThreshold <= 0 {
			return fmt.Errorf("sla %s: target %s: criticalThreshold must be positive", s.ID, t.ID)
		}
	}

	if err := s.Window.validate(); err != nil {
		return fmt.Errorf("sla %s: %w", s.ID, err)
	}

	if err := s.Measurement.validate(); err != nil {
		return fmt.Errorf("sla %s: %w", s.ID, err)
	}

	return nil
}

func (tw *TimeWindow) validate() error {
	switch tw.Kind {
	case WindowRolling, WindowCalendar:
	default:
		return fmt.Errorf("window: invalid kind %q", tw.Kind)
	}
	switch tw.Unit {
	case UnitHour, UnitDay, UnitWeek, UnitMonth, UnitQuarter, UnitYear:
	default:
		return fmt.Errorf("window: invalid unit %q", tw.Unit)
	}
	if tw.Duration < 1 {
		return fmt.Errorf("window: duration must be >= 1, got %d", tw.Duration)
	}
	return nil
}

func (m *Measurement) validate() error {
	switch m.Source {
	case SourceSynthetic, SourceRealUser, SourceHealthCheck, SourceCustom:
	default:
		return fmt.Errorf("measurement: invalid source %q", m.Source)
	}
	if m.Interval != "" {
		if _, err := ParseDuration(m.Interval); err != nil {
			return fmt.Errorf("measurement: interval: %w", err)
		}
	}
	if m.Timeout != "" {
		if _, err := ParseDuration(m.Timeout); err != nil {
			return fmt.Errorf("measurement: timeout: %w", err)
		}
	}
	return nil
}
