package schedule

import "time"

// Cadence is the interval between recurring occurrences, parsed once at the
// input boundary from the extracted frequency text.
type Cadence int

const (
	// OneOff marks a non-recurring item (unparseable or absent frequency).
	OneOff Cadence = iota
	Weekly
	Fortnightly
	// Monthly advances by one calendar month per step, not a fixed 30 days.
	// The upstream data is ambiguous about which was intended; see DESIGN.md.
	Monthly
)

// Days returns the nominal cadence length in days: 0, 7, 14, or 30.
func (c Cadence) Days() int {
	switch c {
	case Weekly:
		return 7
	case Fortnightly:
		return 14
	case Monthly:
		return 30
	default:
		return 0
	}
}

// Next advances d by one cadence step. Monthly steps by one calendar month;
// other cadences step by their day count. One-off items do not advance.
func (c Cadence) Next(d time.Time) time.Time {
	switch c {
	case Monthly:
		return d.AddDate(0, 1, 0)
	case OneOff:
		return d
	default:
		return d.AddDate(0, 0, c.Days())
	}
}

// Recurring reports whether the cadence produces more than one occurrence.
func (c Cadence) Recurring() bool {
	return c != OneOff
}

func (c Cadence) String() string {
	switch c {
	case Weekly:
		return "weekly"
	case Fortnightly:
		return "fortnightly"
	case Monthly:
		return "monthly"
	default:
		return "one-off"
	}
}
