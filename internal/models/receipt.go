// Package models defines the domain types for Raidho.
package models

import "time"

// Line item categories recognised by the derivation engine.
const (
	CategoryEducation = "education"
	CategoryService   = "service"
	CategoryGeneral   = "general"
)

// DateLayout is the calendar-date format used throughout the extracted data.
// Dates are local calendar dates; no timezone handling is applied.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string. ok is false for empty or malformed
// input, which callers treat as "date absent" rather than an error.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t as a YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Receipt represents one persisted transaction with its extracted line items.
type Receipt struct {
	ID              string     `json:"id"`
	Merchant        string     `json:"merchant"`
	TransactionDate string     `json:"transactionDate"` // YYYY-MM-DD
	ContactPhone    string     `json:"contactPhone,omitempty"`
	ContactEmail    string     `json:"contactEmail,omitempty"`
	ContactAddress  string     `json:"contactAddress,omitempty"`
	Items           []LineItem `json:"items"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Item returns the line item with the given id, or nil.
func (r *Receipt) Item(itemID string) *LineItem {
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			return &r.Items[i]
		}
	}
	return nil
}

// LineItem is one purchased position on a receipt. The schedule-bearing
// fields live in Details, as produced by the upstream extraction stage.
type LineItem struct {
	ID          string      `json:"id"`
	ReceiptID   string      `json:"receiptId"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Quantity    int         `json:"quantity"`
	TotalPrice  float64     `json:"totalPrice"`
	Details     ItemDetails `json:"details"`
}

// ItemDetails is the AI-extracted detail blob attached to a line item.
// Every field is free text and may be absent or noisy; the schedule package
// is responsible for turning these into structured values.
type ItemDetails struct {
	TeacherName string   `json:"teacherName,omitempty"`
	StudentName string   `json:"studentName,omitempty"`
	Focus       string   `json:"focus,omitempty"`
	Frequency   string   `json:"frequency,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	StartDate   string   `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate     string   `json:"endDate,omitempty"`   // YYYY-MM-DD
	DaysOfWeek  []string `json:"daysOfWeek,omitempty"`
	Times       []string `json:"times,omitempty"`
	Venue       string   `json:"venue,omitempty"`
	// Multi-day service window (repairs, alterations).
	PickupDate  string `json:"pickupDate,omitempty"`  // YYYY-MM-DD
	DropoffDate string `json:"dropoffDate,omitempty"` // YYYY-MM-DD
}

// ReceiptMetadata is a lightweight representation used by ingest sync.
type ReceiptMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
