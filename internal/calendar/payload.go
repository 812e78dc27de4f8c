package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/schedule"
	"github.com/starford/raidho/internal/series"
)

// Defaults applied when the descriptor carries no clock time or duration.
const (
	DefaultStartHour       = 9
	DefaultDurationMinutes = 30
)

// EventPayload is a calendar-ready event. Building payloads is pure; the
// write to a host calendar happens through the Device bridge.
type EventPayload struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Location string    `json:"location,omitempty"`
	Notes    string    `json:"notes"`
	URL      string    `json:"url"`
	// RRule is the RFC 5545 recurrence rule value for whole-series events,
	// empty for single occurrences.
	RRule string `json:"rrule,omitempty"`
	// UID keys the event in ICS output; derived from the canonical link so
	// repeated materialization is idempotent.
	UID string `json:"uid"`
}

// startOf resolves the concrete start datetime for an occurrence: its date
// at the first parseable clock time, defaulting to 09:00.
func startOf(date string, times []string) time.Time {
	d, ok := models.ParseDate(date)
	if !ok {
		return time.Time{}
	}
	ct := schedule.ClockTime{Hour: DefaultStartHour}
	for _, raw := range times {
		if parsed, parsedOK := schedule.ParseClockTime(raw); parsedOK {
			ct = parsed
			break
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), ct.Hour, ct.Minute, 0, 0, time.UTC)
}

func durationOf(minutes int) time.Duration {
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// BuildSeriesEvent materializes ONE payload covering the whole series, not
// one per lesson. Start/end come from the first occurrence; the title
// embeds the occurrence count; the notes carry the human summary and the
// canonical deep link.
func BuildSeriesEvent(sum *series.Summary, receipt models.Receipt) EventPayload {
	start := startOf(sum.FirstDate, sum.Meta.Times)
	end := start.Add(durationOf(sum.Meta.DurationMinutes))
	url := SeriesLink(sum.ItemID)

	var notes []string
	notes = append(notes, fmt.Sprintf("Series of %d lessons from %s to %s.", sum.Count, sum.FirstDate, sum.LastDate))
	if sum.Meta.Frequency != "" {
		notes = append(notes, "Schedule: "+sum.Meta.Frequency)
	}
	if sum.Meta.Teacher != "" {
		notes = append(notes, "Teacher: "+sum.Meta.Teacher)
	}
	if sum.Meta.Student != "" {
		notes = append(notes, "Student: "+sum.Meta.Student)
	}
	notes = append(notes, url)

	return EventPayload{
		Title:    fmt.Sprintf("%s (%d sessions)", sum.Title, sum.Count),
		Start:    start,
		End:      end,
		Location: sum.Meta.Venue,
		Notes:    strings.Join(notes, "\n"),
		URL:      url,
		RRule:    seriesRule(schedule.ParseFrequency(sum.Meta.Frequency), sum.Count),
		UID:      seriesPrefix + sum.ItemID,
	}
}

// BuildSingleEvent materializes a one-occurrence payload for the item. ok
// is false only when no date at all can be resolved for the item.
func BuildSingleEvent(item models.LineItem, receipt models.Receipt) (EventPayload, bool) {
	occ := series.Expand(item, receipt, series.Options{})
	if len(occ) == 0 {
		return EventPayload{}, false
	}
	return occurrencePayload(occ[0]), true
}

func occurrencePayload(o series.Occurrence) EventPayload {
	start := startOf(o.Date, o.Times)
	url := OccurrenceLink(o.ID)

	var notes []string
	if o.Subtitle != "" {
		notes = append(notes, o.Subtitle)
	}
	if o.Teacher != "" {
		notes = append(notes, "Teacher: "+o.Teacher)
	}
	if o.Student != "" {
		notes = append(notes, "Student: "+o.Student)
	}
	notes = append(notes, url)

	return EventPayload{
		Title:    o.Title,
		Start:    start,
		End:      start.Add(durationOf(o.DurationMinutes)),
		Location: o.Venue,
		Notes:    strings.Join(notes, "\n"),
		URL:      url,
		UID:      o.ID,
	}
}

// BuildServiceEvents materializes a multi-day service (repair, alteration).
// When drop-off and pickup fall on the same day it is a single event;
// otherwise a linked triad: drop-off, the overall service period, and
// pickup. ok is false when no date can be resolved.
func BuildServiceEvents(item models.LineItem, receipt models.Receipt) ([]EventPayload, bool) {
	dropoff, hasDropoff := models.ParseDate(item.Details.DropoffDate)
	pickup, hasPickup := models.ParseDate(item.Details.PickupDate)

	if !hasDropoff && !hasPickup {
		ev, ok := BuildSingleEvent(item, receipt)
		if !ok {
			return nil, false
		}
		return []EventPayload{ev}, true
	}
	if !hasDropoff {
		dropoff = pickup
	}
	if !hasPickup {
		pickup = dropoff
	}
	if pickup.Before(dropoff) {
		dropoff, pickup = pickup, dropoff
	}

	location := item.Details.Venue
	if location == "" {
		location = receipt.Merchant
	}
	periodURL := SeriesLink(item.ID)

	if dropoff.Equal(pickup) {
		start := startOf(models.FormatDate(dropoff), item.Details.Times)
		return []EventPayload{{
			Title:    item.Description,
			Start:    start,
			End:      start.Add(durationOf(schedule.ParseDurationMinutes(item.Details.Duration))),
			Location: location,
			Notes:    "Same-day service at " + receipt.Merchant + "\n" + periodURL,
			URL:      periodURL,
			UID:      seriesPrefix + item.ID,
		}}, true
	}

	dropStart := startOf(models.FormatDate(dropoff), item.Details.Times)
	pickStart := startOf(models.FormatDate(pickup), item.Details.Times)
	dur := durationOf(DefaultDurationMinutes)

	dropEv := EventPayload{
		Title:    "Drop-off: " + item.Description,
		Start:    dropStart,
		End:      dropStart.Add(dur),
		Location: location,
		Notes:    "Part of service period.\n" + periodURL,
		URL:      OccurrenceLink(series.OccurrenceID(item.ID, dropoff)),
		UID:      series.OccurrenceID(item.ID, dropoff),
	}
	periodEv := EventPayload{
		Title:    item.Description + " (in service)",
		Start:    dropStart,
		End:      pickStart.Add(dur),
		Location: location,
		Notes: fmt.Sprintf("In service from %s to %s at %s.\n%s",
			models.FormatDate(dropoff), models.FormatDate(pickup), receipt.Merchant, periodURL),
		URL: periodURL,
		UID: seriesPrefix + item.ID,
	}
	pickEv := EventPayload{
		Title:    "Pickup: " + item.Description,
		Start:    pickStart,
		End:      pickStart.Add(dur),
		Location: location,
		Notes:    "Part of service period.\n" + periodURL,
		URL:      OccurrenceLink(series.OccurrenceID(item.ID, pickup)),
		UID:      series.OccurrenceID(item.ID, pickup),
	}

	return []EventPayload{dropEv, periodEv, pickEv}, true
}
