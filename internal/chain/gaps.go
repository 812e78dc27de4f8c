package chain

import (
	"math"

	"github.com/starford/raidho/internal/models"
)

// DefaultGapToleranceDays is the allowed slack between the cadence-expected
// next term and the recorded one before a gap is reported.
const DefaultGapToleranceDays = 7

// Gap is a detected deviation from the expected cadence. Informational,
// not an error: the review workflow presents gaps with accept/remediate
// actions. Index points at the deviating entry.
type Gap struct {
	ExpectedDate string `json:"expectedDate"` // YYYY-MM-DD
	ActualDate   string `json:"actualDate"`   // YYYY-MM-DD
	GapDays      int    `json:"gapDays"`
	Index        int    `json:"index"`
}

// DetectGaps walks adjacent chain entries and reports cadence deviations
// exceeding toleranceDays. Tolerance 0 means any deviation at all is a gap;
// negative values are clamped to 0. Pairs where either start date is
// unknown, or where the earlier entry is a one-off, are skipped. Results
// are ordered ascending by index.
func DetectGaps(c *Chain, toleranceDays int) []Gap {
	if c == nil {
		return nil
	}
	if toleranceDays < 0 {
		toleranceDays = 0
	}

	var gaps []Gap
	for i := 0; i+1 < len(c.Entries); i++ {
		cur, next := c.Entries[i], c.Entries[i+1]
		if !cur.hasStart || !next.hasStart {
			continue
		}
		if !cur.cadence.Recurring() {
			// One-off cadence gives no expectation for the next term.
			continue
		}
		expected := cur.cadence.Next(cur.start)
		diff := next.start.Sub(expected).Hours() / 24
		days := int(math.Round(math.Abs(diff)))
		if days > toleranceDays {
			gaps = append(gaps, Gap{
				ExpectedDate: models.FormatDate(expected),
				ActualDate:   models.FormatDate(next.start),
				GapDays:      days,
				Index:        i + 1,
			})
		}
	}
	return gaps
}
