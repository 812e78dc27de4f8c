package calendar

import (
	"testing"

	"github.com/teambition/rrule-go"

	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/schedule"
	"github.com/starford/raidho/internal/series"
)

// The emitted RRULE must reproduce the exact dates the expansion engine
// derives, so a calendar client importing the .ics sees the same series
// the preview showed.
func TestSeriesRuleAgreesWithExpansion(t *testing.T) {
	cases := []struct {
		name      string
		frequency string
		endDate   string
	}{
		{"weekly", "weekly", "2024-03-11"},
		{"fortnightly", "every 2 weeks", "2024-05-06"},
		{"monthly", "monthly", "2024-09-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := models.LineItem{
				ID:          "it1",
				Category:    models.CategoryEducation,
				Description: "Piano lesson",
				Details: models.ItemDetails{
					Frequency: tc.frequency,
					StartDate: "2024-01-01",
					EndDate:   tc.endDate,
				},
			}
			receipt := models.Receipt{ID: "r1", Merchant: "Harmony Music School", TransactionDate: "2024-01-01"}

			occ := series.Expand(item, receipt, series.Options{})
			if len(occ) < 2 {
				t.Fatalf("expansion too short: %d occurrences", len(occ))
			}

			rule := seriesRule(schedule.ParseFrequency(tc.frequency), len(occ))
			if rule == "" {
				t.Fatal("no rule emitted")
			}
			r, err := rrule.StrToRRule(rule)
			if err != nil {
				t.Fatalf("StrToRRule(%q): %v", rule, err)
			}
			start, _ := models.ParseDate("2024-01-01")
			r.DTStart(start)

			var set rrule.Set
			set.RRule(r)
			times := set.Between(start.AddDate(0, 0, -1), start.AddDate(2, 0, 0), true)
			if len(times) != len(occ) {
				t.Fatalf("rrule yields %d dates, expansion yields %d", len(times), len(occ))
			}
			for i, ts := range times {
				if got := models.FormatDate(ts); got != occ[i].Date {
					t.Errorf("date %d: rrule %s, expansion %s", i, got, occ[i].Date)
				}
			}
		})
	}
}
