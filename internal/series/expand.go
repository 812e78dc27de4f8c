// Package series expands one line item's schedule descriptor into a bounded,
// ordered list of concrete occurrences, and reduces a series to its summary.
// Everything here is a pure function over persisted input: derived values
// are recomputed on demand and never stored.
package series

import (
	"time"

	"github.com/starford/raidho/internal/checksum"
	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/schedule"
)

// DefaultMaxOccurrences caps expansion per item. The cap is a safety valve
// inherited from the product; treat it as overridable, not load-bearing.
const DefaultMaxOccurrences = 52

// horizonMonths bounds open-ended series when no end date is given.
const horizonMonths = 12

// Occurrence is one concrete scheduled instance derived from a descriptor.
type Occurrence struct {
	ID              string   `json:"id"`
	Date            string   `json:"date"` // YYYY-MM-DD
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Venue           string   `json:"venue,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	Frequency       string   `json:"frequency,omitempty"`
	Teacher         string   `json:"teacher,omitempty"`
	Student         string   `json:"student,omitempty"`
	Times           []string `json:"times,omitempty"`
	ItemID          string   `json:"itemId"`
	ReceiptID       string   `json:"receiptId"`
}

// Options tunes expansion. The zero value applies the defaults.
type Options struct {
	// MaxOccurrences overrides DefaultMaxOccurrences when > 0.
	MaxOccurrences int
}

func (o Options) cap() int {
	if o.MaxOccurrences > 0 {
		return o.MaxOccurrences
	}
	return DefaultMaxOccurrences
}

// OccurrenceID derives the deterministic id for (item, date). Regeneration
// over unchanged input is byte-identical, so downstream consumers can treat
// ids as stable references.
func OccurrenceID(itemID string, date time.Time) string {
	return checksum.Short([]byte(itemID + "|" + models.FormatDate(date)))
}

// Expand generates the occurrence series for one line item. The receipt
// supplies the fallback reference date (its transaction date) and display
// metadata. Output dates are non-decreasing and len(result) never exceeds
// the cap.
func Expand(item models.LineItem, receipt models.Receipt, opts Options) []Occurrence {
	ps := schedule.Parse(item.Details)
	return expandParsed(item, receipt, ps, opts)
}

func expandParsed(item models.LineItem, receipt models.Receipt, ps schedule.ParsedSchedule, opts Options) []Occurrence {
	fallback, _ := models.ParseDate(receipt.TransactionDate)

	// One-off, or no start date to anchor a series: a single occurrence.
	if !ps.Cadence.Recurring() || ps.Start.IsZero() {
		at := ps.Start
		if at.IsZero() {
			at = fallback
		}
		if at.IsZero() {
			return nil
		}
		return []Occurrence{makeOccurrence(item, receipt, ps, at)}
	}

	bound := ps.End
	if bound.IsZero() {
		bound = ps.Start.AddDate(0, horizonMonths, 0)
	}

	max := opts.cap()
	out := make([]Occurrence, 0, max)
	for cursor := ps.Start; !cursor.After(bound) && len(out) < max; cursor = ps.Cadence.Next(cursor) {
		if len(ps.Weekdays) > 0 {
			if _, ok := ps.Weekdays[cursor.Weekday()]; !ok {
				continue
			}
		}
		out = append(out, makeOccurrence(item, receipt, ps, cursor))
	}
	return out
}

func makeOccurrence(item models.LineItem, receipt models.Receipt, ps schedule.ParsedSchedule, date time.Time) Occurrence {
	subtitle := item.Details.Focus
	if subtitle == "" && item.Details.TeacherName != "" {
		subtitle = "with " + item.Details.TeacherName
	}
	venue := item.Details.Venue
	if venue == "" {
		venue = receipt.Merchant
	}
	return Occurrence{
		ID:              OccurrenceID(item.ID, date),
		Date:            models.FormatDate(date),
		Title:           item.Description,
		Subtitle:        subtitle,
		Venue:           venue,
		DurationMinutes: ps.DurationMinutes,
		Frequency:       item.Details.Frequency,
		Teacher:         item.Details.TeacherName,
		Student:         item.Details.StudentName,
		Times:           item.Details.Times,
		ItemID:          item.ID,
		ReceiptID:       receipt.ID,
	}
}
