package sla

import (
	"testing"
	"time"
)

func TestResolveRolling(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		window        TimeWindow
		expectedStart time.Time
	}{
		{
			name:          "one hour",
			window:        TimeWindow{Kind: WindowRolling, Unit: UnitHour, Duration: 1},
			expectedStart: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:          "seven days",
			window:        TimeWindow{Kind: WindowRolling, Unit: UnitDay, Duration: 7},
			expectedStart: time.Date(2024, 3, 8, 10, 30, 0, 0, time.UTC),
		},
		{
			name:          "two weeks",
			window:        TimeWindow{Kind: WindowRolling, Unit: UnitWeek, Duration: 2},
			expectedStart: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:          "one calendar month regardless of month length",
			window:        TimeWindow{Kind: WindowRolling, Unit: UnitMonth, Duration: 1},
			expectedStart: time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:          "one quarter",
			window:        TimeWindow{Kind: WindowRolling, Unit: UnitQuarter, Duration: 1},
			expectedStart: time.Date(2023, 12, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:          "one year spans the leap day",
			window:        TimeWindow{Kind: WindowRolling, Unit: UnitYear, Duration: 1},
			expectedStart: time.Date(2023, 3, 15, 10, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.window.Resolve(now)

			if !w.Start.Equal(tt.expectedStart) {
				t.Errorf("expected start %v, got %v", tt.expectedStart, w.Start)
			}
			if !w.End.Equal(now) {
				t.Errorf("expected end %v, got %v", now, w.End)
			}
		})
	}
}

func TestResolveCalendar(t *testing.T) {
	// Friday March 15th
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name          string
		unit          PeriodUnit
		expectedStart time.Time
	}{
		{
			name:          "day starts at midnight",
			unit:          UnitDay,
			expectedStart: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "week starts on monday",
			unit:          UnitWeek,
			expectedStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "month starts on the first",
			unit:          UnitMonth,
			expectedStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "quarter starts in january",
			unit:          UnitQuarter,
			expectedStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:          "year starts january first",
			unit:          UnitYear,
			expectedStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := TimeWindow{Kind: WindowCalendar, Unit: tt.unit, Duration: 1}
			w := window.Resolve(now)

			if !w.Start.Equal(tt.expectedStart) {
				t.Errorf("expected start %v, got %v", tt.expectedStart, w.Start)
			}
			if !w.End.Equal(now) {
				t.Errorf("expected end %v, got %v", now, w.End)
			}
		})
	}
}

func TestResolveTimezone(t *testing.T) {
	// 02:00 UTC on March 15th is still March 14th in New York
	now := time.Date(2024, 3, 15, 2, 0, 0, 0, time.UTC)

	window := TimeWindow{Kind: WindowCalendar, Unit: UnitDay, Duration: 1, Timezone: "America/New_York"}
	w := window.Resolve(now)

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	expected := time.Date(2024, 3, 14, 0, 0, 0, 0, loc)
	if !w.Start.Equal(expected) {
		t.Errorf("expected start %v, got %v", expected, w.Start)
	}
}

func TestResolveBadTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	window := TimeWindow{Kind: WindowRolling, Unit: UnitDay, Duration: 1, Timezone: "Not/AZone"}
	w := window.Resolve(now)

	expected := time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)
	if !w.Start.Equal(expected) {
		t.Errorf("expected start %v, got %v", expected, w.Start)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	if !w.Contains(w.Start) {
		t.Error("window start should be inclusive")
	}
	if w.Contains(w.End) {
		t.Error("window end should be exclusive")
	}
	if w.Contains(w.Start.Add(-time.Second)) {
		t.Error("instant before start should be outside")
	}
}
