// Package chain groups education items across transactions into ordered
// "learning path" chains and detects continuity gaps between consecutive
// terms. Like the series package, everything is re-derived from persisted
// input on every call; nothing is cached or stored.
package chain

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/schedule"
)

// Entry is one term of an ongoing arrangement: a line item with its owning
// receipt and effective dates.
type Entry struct {
	Item      models.LineItem `json:"item"`
	ReceiptID string          `json:"receiptId"`
	Merchant  string          `json:"merchant"`
	StartDate string          `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate   string          `json:"endDate,omitempty"`

	start    time.Time
	hasStart bool
	cadence  schedule.Cadence
}

// Chain is an ordered cross-transaction grouping of items believed to be
// consecutive terms of the same arrangement.
type Chain struct {
	Key     string  `json:"key"`
	Focus   string  `json:"focus,omitempty"`
	Entries []Entry `json:"entries"`
}

// Index returns the position of itemID within the chain, or -1.
func (c *Chain) Index(itemID string) int {
	for i, e := range c.Entries {
		if e.Item.ID == itemID {
			return i
		}
	}
	return -1
}

// KeyFunc computes the identity key for an item. ok is false when the item
// cannot be keyed (and so can never join a chain). The key is a heuristic
// over extracted strings; keeping it pluggable lets a later version back it
// with a real person/entity table.
type KeyFunc func(item models.LineItem, receipt models.Receipt) (key string, ok bool)

// DefaultKey matches on (student, focus), falling back to (student,
// merchant) when no focus was extracted. Comparison is case-insensitive
// and trimmed.
func DefaultKey(item models.LineItem, receipt models.Receipt) (string, bool) {
	student := norm(item.Details.StudentName)
	if student == "" {
		return "", false
	}
	if focus := norm(item.Details.Focus); focus != "" {
		return student + "|" + focus, true
	}
	if merchant := norm(receipt.Merchant); merchant != "" {
		return student + "|@" + merchant, true
	}
	return "", false
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FindChainForItem locates the chain containing itemID across all receipts.
// Returns nil when the item is absent, not education-category, cannot be
// keyed, or has no sibling sharing its key. key may be nil for DefaultKey.
func FindChainForItem(itemID string, receipts []models.Receipt, key KeyFunc) *Chain {
	if key == nil {
		key = DefaultKey
	}

	var target string
	found := false
	var focus string
	for _, r := range receipts {
		for _, it := range r.Items {
			if it.ID != itemID {
				continue
			}
			if it.Category != models.CategoryEducation {
				return nil
			}
			k, ok := key(it, r)
			if !ok {
				return nil
			}
			target = k
			focus = strings.TrimSpace(it.Details.Focus)
			found = true
		}
	}
	if !found {
		return nil
	}

	c := &Chain{Key: target, Focus: focus}
	for _, r := range receipts {
		for _, it := range r.Items {
			if it.Category != models.CategoryEducation {
				continue
			}
			k, ok := key(it, r)
			if !ok || k != target {
				continue
			}
			c.Entries = append(c.Entries, newEntry(it, r))
			if c.Focus == "" {
				c.Focus = strings.TrimSpace(it.Details.Focus)
			}
		}
	}

	// A chain of one is no chain.
	if len(c.Entries) < 2 {
		return nil
	}

	// Ascending by effective start; ties broken by item id so ordering is
	// stable across regeneration.
	sort.SliceStable(c.Entries, func(i, j int) bool {
		a, b := c.Entries[i], c.Entries[j]
		if a.hasStart != b.hasStart {
			return a.hasStart
		}
		if a.hasStart && !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		return a.Item.ID < b.Item.ID
	})

	return c
}

// newEntry computes the effective start for an item: its parsed start date,
// else the owning receipt's transaction date.
func newEntry(item models.LineItem, receipt models.Receipt) Entry {
	ps := schedule.Parse(item.Details)
	e := Entry{
		Item:      item,
		ReceiptID: receipt.ID,
		Merchant:  receipt.Merchant,
		EndDate:   item.Details.EndDate,
		cadence:   ps.Cadence,
	}
	start := ps.Start
	if start.IsZero() {
		if t, ok := models.ParseDate(receipt.TransactionDate); ok {
			start = t
		}
	}
	if !start.IsZero() {
		e.start = start
		e.hasStart = true
		e.StartDate = models.FormatDate(start)
	}
	return e
}
