package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raidho/internal/calendar"
	"github.com/starford/raidho/internal/chain"
	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/series"
)

// CreateReceiptRequest is the request body for registering a receipt
// directly, bypassing the extraction inbox.
type CreateReceiptRequest struct {
	Receipt models.Receipt `json:"receipt"`
}

// Validate checks the submitted receipt. Dates are optional but must be
// local YYYY-MM-DD when present.
func (r CreateReceiptRequest) Validate() error {
	return validation.ValidateStruct(&r.Receipt,
		validation.Field(&r.Receipt.Merchant, validation.Required),
		validation.Field(&r.Receipt.TransactionDate, validation.Date(models.DateLayout)),
	)
}

// ScheduleEditRequest carries a partial update to an item's extracted
// schedule details. Nil fields are left untouched; empty strings clear.
type ScheduleEditRequest struct {
	TeacherName *string   `json:"teacherName,omitempty"`
	StudentName *string   `json:"studentName,omitempty"`
	Focus       *string   `json:"focus,omitempty"`
	Frequency   *string   `json:"frequency,omitempty"`
	Duration    *string   `json:"duration,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	DaysOfWeek  *[]string `json:"daysOfWeek,omitempty"`
	Times       *[]string `json:"times,omitempty"`
	Venue       *string   `json:"venue,omitempty"`
	PickupDate  *string   `json:"pickupDate,omitempty"`
	DropoffDate *string   `json:"dropoffDate,omitempty"`
}

// apply merges the edit onto existing details.
func (e ScheduleEditRequest) apply(d *models.ItemDetails) {
	if e.TeacherName != nil {
		d.TeacherName = *e.TeacherName
	}
	if e.StudentName != nil {
		d.StudentName = *e.StudentName
	}
	if e.Focus != nil {
		d.Focus = *e.Focus
	}
	if e.Frequency != nil {
		d.Frequency = *e.Frequency
	}
	if e.Duration != nil {
		d.Duration = *e.Duration
	}
	if e.StartDate != nil {
		d.StartDate = *e.StartDate
	}
	if e.EndDate != nil {
		d.EndDate = *e.EndDate
	}
	if e.DaysOfWeek != nil {
		d.DaysOfWeek = *e.DaysOfWeek
	}
	if e.Times != nil {
		d.Times = *e.Times
	}
	if e.Venue != nil {
		d.Venue = *e.Venue
	}
	if e.PickupDate != nil {
		d.PickupDate = *e.PickupDate
	}
	if e.DropoffDate != nil {
		d.DropoffDate = *e.DropoffDate
	}
}

// ReceiptListResponse wraps paginated receipt listings.
type ReceiptListResponse struct {
	Receipts []models.Receipt `json:"receipts"`
	Total    int              `json:"total"`
}

// OccurrencesResponse wraps an expanded occurrence series.
type OccurrencesResponse struct {
	Occurrences []series.Occurrence `json:"occurrences"`
}

// ChainResponse wraps a learning path lookup. Chain is null when the item
// does not belong to one.
type ChainResponse struct {
	Chain *chain.Chain `json:"chain"`
}

// GapsResponse wraps continuity gap detection results.
type GapsResponse struct {
	Gaps []chain.Gap `json:"gaps"`
}

// EventsResponse wraps materialized calendar event payloads.
type EventsResponse struct {
	Events []calendar.EventPayload `json:"events"`
}

// ExportResponse reports per-event export outcomes.
type ExportResponse struct {
	Results []calendar.ExportResult `json:"results"`
}
