package sla

import "time"

// Window is a concrete [Start, End) evaluation interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Length returns the window length.
func (w Window) Length() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Resolve converts the window policy plus a reference instant into a concrete
// interval with End = now. Rolling windows subtract Duration periods using
// calendar-aware arithmetic, so month/quarter/year windows track real calendar
// length. Calendar windows start at the beginning of the current period in the
// policy's timezone. Resolve is total: bad timezones fall back to UTC and an
// unknown unit behaves like "day".
func (tw TimeWindow) Resolve(now time.Time) Window {
	loc := time.UTC
	if tw.Timezone != "" {
		if l, err := time.LoadLocation(tw.Timezone); err == nil {
			loc = l
		}
	}
	now = now.In(loc)

	if tw.Kind == WindowCalendar {
		return Window{Start: periodStart(now, tw.Unit), End: now}
	}

	d := tw.Duration
	if d < 1 {
		d = 1
	}

	var start time.Time
	switch tw.Unit {
	case UnitHour:
		start = now.Add(-time.Duration(d) * time.Hour)
	case UnitWeek:
		start = now.AddDate(0, 0, -7*d)
	case UnitMonth:
		start = now.AddDate(0, -d, 0)
	case UnitQuarter:
		start = now.AddDate(0, -3*d, 0)
	case UnitYear:
		start = now.AddDate(-d, 0, 0)
	default: // day
		start = now.AddDate(0, 0, -d)
	}

	return Window{Start: start, End: now}
}

// periodStart returns the beginning of the calendar period containing t.
func periodStart(t time.Time, unit PeriodUnit) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	switch unit {
	case UnitHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case UnitWeek:
		// ISO weeks start on Monday.
		midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
		offset := (int(midnight.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset)
	case UnitMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case UnitQuarter:
		qm := time.Month(((int(m)-1)/3)*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, loc)
	case UnitYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default: // day
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}
