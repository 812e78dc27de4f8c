package calendar

import (
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/starford/raidho/internal/schedule"
)

// seriesRule builds the RFC 5545 RRULE value for a series of count
// occurrences at the given cadence. The rule is validated through the rrule
// library before use; an empty string means "no recurrence" (one-off, or a
// rule the library rejects).
func seriesRule(c schedule.Cadence, count int) string {
	if !c.Recurring() || count < 2 {
		return ""
	}
	var rule string
	switch c {
	case schedule.Weekly:
		rule = fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", count)
	case schedule.Fortnightly:
		rule = fmt.Sprintf("FREQ=WEEKLY;INTERVAL=2;COUNT=%d", count)
	case schedule.Monthly:
		rule = fmt.Sprintf("FREQ=MONTHLY;COUNT=%d", count)
	}
	if _, err := rrule.StrToRRule(rule); err != nil {
		return ""
	}
	return rule
}

// RenderICS serializes payloads as an iCalendar document for the manual
// export path. DTSTAMP is pinned to each event's start so rendering stays
// deterministic.
func RenderICS(events []EventPayload) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)

	for _, ev := range events {
		ve := cal.AddEvent(ev.UID + "@raidho")
		ve.SetDtStampTime(ev.Start)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		ve.SetSummary(ev.Title)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Notes != "" {
			ve.SetDescription(ev.Notes)
		}
		ve.SetURL(ev.URL)
		if ev.RRule != "" {
			ve.AddRrule(ev.RRule)
		}
	}

	return cal.Serialize()
}
