package series

import (
	"github.com/starford/raidho/internal/models"
)

// Summary reduces a series to the fields the preview and export layers need.
// Count always equals the length of the expansion for the same inputs.
type Summary struct {
	Count     int        `json:"count"`
	FirstDate string     `json:"firstDate"`
	LastDate  string     `json:"lastDate"`
	Title     string     `json:"title"`
	ItemID    string     `json:"itemId"`
	ReceiptID string     `json:"receiptId"`
	Meta      Occurrence `json:"meta"` // representative metadata: the first occurrence
}

// Summarize runs expansion for the item and folds the result. Returns nil
// when the expansion is empty (for example a weekday filter that never
// matches the cadence).
func Summarize(item models.LineItem, receipt models.Receipt, opts Options) *Summary {
	occ := Expand(item, receipt, opts)
	if len(occ) == 0 {
		return nil
	}
	first := occ[0]
	return &Summary{
		Count:     len(occ),
		FirstDate: first.Date,
		LastDate:  occ[len(occ)-1].Date,
		Title:     first.Title,
		ItemID:    item.ID,
		ReceiptID: receipt.ID,
		Meta:      first,
	}
}
