// Package calendar materializes series and single occurrences into
// calendar-ready event payloads, renders them as ICS, and bridges to a
// host calendar with a manual-copy fallback.
package calendar

import "strings"

// Canonical deep-link scheme. The same URL is used for in-app navigation
// and as the clipboard fallback when no host calendar is available.
const (
	LinkScheme   = "app://cal/"
	seriesPrefix = "event_series_"
)

// OccurrenceLink returns the canonical URL for a single occurrence id.
func OccurrenceLink(occurrenceID string) string {
	return LinkScheme + occurrenceID
}

// SeriesLink returns the canonical URL for a whole-series event.
func SeriesLink(itemID string) string {
	return LinkScheme + seriesPrefix + itemID
}

// ParseLink splits a canonical URL back into its id. series reports whether
// the link addressed a whole series (in which case id is the item id, with
// the series prefix stripped). ok is false for URLs outside the scheme.
func ParseLink(u string) (id string, series, ok bool) {
	rest, found := strings.CutPrefix(u, LinkScheme)
	if !found || rest == "" {
		return "", false, false
	}
	if after, isSeries := strings.CutPrefix(rest, seriesPrefix); isSeries {
		return after, true, true
	}
	return rest, false, true
}
