package schedule

import (
	"testing"
	"time"

	"github.com/starford/raidho/internal/models"
)

func TestParseFrequencyVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want Cadence
	}{
		{"weekly", Weekly},
		{"Every week", Weekly},
		{"once a week", Weekly},
		{"fortnightly", Fortnightly},
		{"every 2 weeks", Fortnightly},
		{"biweekly", Fortnightly},
		{"monthly", Monthly},
		{"once a month", Monthly},
		{"", OneOff},
		{"one time", OneOff},
		{"whenever", OneOff},
	}
	for _, tt := range tests {
		if got := ParseFrequency(tt.raw); got != tt.want {
			t.Errorf("ParseFrequency(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCadenceDays(t *testing.T) {
	if Weekly.Days() != 7 || Fortnightly.Days() != 14 || Monthly.Days() != 30 || OneOff.Days() != 0 {
		t.Errorf("cadence days mismatch: %d %d %d %d",
			Weekly.Days(), Fortnightly.Days(), Monthly.Days(), OneOff.Days())
	}
}

func TestCadenceNext_MonthlyCalendarStep(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	got := Monthly.Next(start)
	// AddDate normalises 31 Feb to 2 March; the calendar-month step is kept
	// as-is rather than clamping.
	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Monthly.Next(%v) = %v, want %v", start, got, want)
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"30 min", 30},
		{"45 mins", 45},
		{"60 minutes", 60},
		{"1 h", 60},
		{"2 hrs", 120},
		{"1.5 hours", 90},
		{"1hr", 60},
		{"", DefaultDurationMinutes},
		{"a while", DefaultDurationMinutes},
	}
	for _, tt := range tests {
		if got := ParseDurationMinutes(tt.raw); got != tt.want {
			t.Errorf("ParseDurationMinutes(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		raw    string
		hour   int
		minute int
		ok     bool
	}{
		{"3:30 pm", 15, 30, true},
		{"3:30pm", 15, 30, true},
		{"12:00 pm", 12, 0, true},
		{"12:15 am", 0, 15, true},
		{"09:00", 9, 0, true},
		{"17:45", 17, 45, true},
		{"24:00", 0, 0, false},
		{"9:75", 0, 0, false},
		{"noon", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseClockTime(tt.raw)
		if ok != tt.ok {
			t.Errorf("ParseClockTime(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && (got.Hour != tt.hour || got.Minute != tt.minute) {
			t.Errorf("ParseClockTime(%q) = %d:%02d, want %d:%02d",
				tt.raw, got.Hour, got.Minute, tt.hour, tt.minute)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	if got := ParseWeekday("Sunday"); got != 0 {
		t.Errorf("Sunday = %d, want 0", got)
	}
	if got := ParseWeekday("  saturday "); got != 6 {
		t.Errorf("saturday = %d, want 6", got)
	}
	if got := ParseWeekday("Funday"); got != -1 {
		t.Errorf("Funday = %d, want -1", got)
	}
	if got := ParseWeekday(""); got != -1 {
		t.Errorf("empty = %d, want -1", got)
	}
}

func TestParse_FullDescriptor(t *testing.T) {
	ps := Parse(models.ItemDetails{
		Frequency:  "weekly",
		Duration:   "45 mins",
		StartDate:  "2024-01-01",
		EndDate:    "2024-03-11",
		DaysOfWeek: []string{"Monday", "Wednesday", "Funday"},
		Times:      []string{"half past", "4:00 pm"},
	})
	if ps.Cadence != Weekly {
		t.Errorf("Cadence = %v, want Weekly", ps.Cadence)
	}
	if ps.DurationMinutes != 45 {
		t.Errorf("DurationMinutes = %d, want 45", ps.DurationMinutes)
	}
	if ps.Start.IsZero() || models.FormatDate(ps.Start) != "2024-01-01" {
		t.Errorf("Start = %v", ps.Start)
	}
	if models.FormatDate(ps.End) != "2024-03-11" {
		t.Errorf("End = %v", ps.End)
	}
	// The first parseable time wins; unknown day names are dropped.
	if !ps.HasTime || ps.Time.Hour != 16 {
		t.Errorf("Time = %+v, HasTime = %v", ps.Time, ps.HasTime)
	}
	if len(ps.Weekdays) != 2 {
		t.Errorf("Weekdays = %v, want Monday+Wednesday", ps.Weekdays)
	}
	if _, ok := ps.Weekdays[time.Monday]; !ok {
		t.Error("Monday missing from weekday filter")
	}
}

func TestParse_NoisyInputDefaults(t *testing.T) {
	ps := Parse(models.ItemDetails{
		Frequency: "???",
		Duration:  "long",
		StartDate: "not a date",
	})
	if ps.Cadence != OneOff {
		t.Errorf("Cadence = %v, want OneOff", ps.Cadence)
	}
	if ps.DurationMinutes != DefaultDurationMinutes {
		t.Errorf("DurationMinutes = %d, want %d", ps.DurationMinutes, DefaultDurationMinutes)
	}
	if !ps.Start.IsZero() {
		t.Errorf("Start = %v, want zero", ps.Start)
	}
	if ps.HasTime {
		t.Error("HasTime = true, want false")
	}
}
