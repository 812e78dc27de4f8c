// Package schedule parses AI-extracted schedule descriptors into structured
// values. Upstream text is noisy, so every function here is total: malformed
// input resolves to a documented default, never an error.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/raidho/internal/models"
)

// DefaultDurationMinutes is assumed when the duration text is unparseable.
const DefaultDurationMinutes = 30

var (
	minutesRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:min|mins|minutes)\b`)
	hoursRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:h|hr|hrs|hours)\b`)
	clock12Re = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)$`)
	clock24Re = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ClockTime is a wall-clock time of day without timezone.
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParsedSchedule is the structured form of one item's schedule descriptor.
// Zero Start/End mean "date absent". Weekdays is empty when no day-name
// filter applies.
type ParsedSchedule struct {
	Cadence         Cadence
	Start           time.Time
	End             time.Time
	Time            ClockTime
	HasTime         bool
	DurationMinutes int
	Weekdays        map[time.Weekday]struct{}
}

// ParseFrequency maps free-text frequency descriptions to a Cadence.
// Anything unrecognised (including empty text) is a one-off.
func ParseFrequency(text string) Cadence {
	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case s == "":
		return OneOff
	case strings.Contains(s, "fortnight"),
		strings.Contains(s, "every 2 week"),
		strings.Contains(s, "biweek"):
		return Fortnightly
	case strings.Contains(s, "week"):
		return Weekly
	case strings.Contains(s, "month"):
		return Monthly
	default:
		return OneOff
	}
}

// ParseDurationMinutes extracts a lesson duration from text like "45 mins"
// or "1.5 hours". Unparseable input yields DefaultDurationMinutes.
func ParseDurationMinutes(text string) int {
	s := strings.ToLower(strings.TrimSpace(text))
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			return int(v)
		}
	}
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			return int(v * 60)
		}
	}
	return DefaultDurationMinutes
}

// ParseClockTime parses "h:mm am/pm" or 24-hour "HH:MM". ok is false when
// the text does not match either form.
func ParseClockTime(text string) (ClockTime, bool) {
	s := strings.ToLower(strings.TrimSpace(text))

	if m := clock12Re.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 1 || hour > 12 || minute > 59 {
			return ClockTime{}, false
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return ClockTime{Hour: hour, Minute: minute}, true
	}

	if m := clock24Re.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return ClockTime{}, false
		}
		return ClockTime{Hour: hour, Minute: minute}, true
	}

	return ClockTime{}, false
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a day name to its index 0 (Sunday) through 6 (Saturday).
// Matching is case-insensitive and exact; unknown names return -1, which
// callers filter out.
func ParseWeekday(name string) int {
	if d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return int(d)
	}
	return -1
}

// Parse converts one item's detail blob into a ParsedSchedule. Done once at
// the input boundary; the structured form is retained internally so the raw
// strings are never re-parsed.
func Parse(d models.ItemDetails) ParsedSchedule {
	ps := ParsedSchedule{
		Cadence:         ParseFrequency(d.Frequency),
		DurationMinutes: ParseDurationMinutes(d.Duration),
		Weekdays:        make(map[time.Weekday]struct{}),
	}

	if t, ok := models.ParseDate(d.StartDate); ok {
		ps.Start = t
	}
	if t, ok := models.ParseDate(d.EndDate); ok {
		ps.End = t
	}

	for _, raw := range d.Times {
		if ct, ok := ParseClockTime(raw); ok {
			ps.Time = ct
			ps.HasTime = true
			break
		}
	}

	for _, name := range d.DaysOfWeek {
		if idx := ParseWeekday(name); idx >= 0 {
			ps.Weekdays[time.Weekday(idx)] = struct{}{}
		}
	}

	return ps
}
