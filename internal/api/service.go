package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/raidho/internal/apperr"
	"github.com/starford/raidho/internal/calendar"
	"github.com/starford/raidho/internal/chain"
	"github.com/starford/raidho/internal/checksum"
	"github.com/starford/raidho/internal/inbox"
	"github.com/starford/raidho/internal/ingest"
	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/series"
	"github.com/starford/raidho/internal/store"
)

// ErrNoSchedulableDates is returned by ICS when an item's expansion yields
// no dates to render.
var ErrNoSchedulableDates = errors.New("api: no schedulable dates")

// Service coordinates the store, the extraction inbox, and the calendar
// device for the API layer.
type Service struct {
	db     store.ReceiptStore
	box    inbox.Provider
	device calendar.Device

	maxOccurrences   int
	gapToleranceDays int
}

// NewService creates an API service. maxOccurrences and gapToleranceDays
// of zero select the package defaults.
func NewService(db store.ReceiptStore, box inbox.Provider, device calendar.Device, maxOccurrences, gapToleranceDays int) *Service {
	if gapToleranceDays <= 0 {
		gapToleranceDays = chain.DefaultGapToleranceDays
	}
	if device == nil {
		device = calendar.Unavailable{}
	}
	return &Service{
		db:               db,
		box:              box,
		device:           device,
		maxOccurrences:   maxOccurrences,
		gapToleranceDays: gapToleranceDays,
	}
}

func (s *Service) expandOpts() series.Options {
	return series.Options{MaxOccurrences: s.maxOccurrences}
}

// ListReceipts returns paginated receipts with an optional category filter.
func (s *Service) ListReceipts(ctx context.Context, limit, offset int, category string) ([]models.Receipt, int, error) {
	return s.db.ListReceipts(limit, offset, category)
}

// GetReceipt returns one receipt by id.
func (s *Service) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	return s.db.GetReceipt(id)
}

// CreateReceipt registers a receipt directly: the document is written to
// the inbox so it survives a resync, then upserted into the store.
func (s *Service) CreateReceipt(ctx context.Context, r models.Receipt) (*models.Receipt, error) {
	if r.ID == "" {
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("api: marshal receipt: %w", err)
		}
		r.ID = "rcpt_" + checksum.Short(data)
	}
	if _, err := s.db.GetReceipt(r.ID); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	ingest.Normalize(&r, sourcePathFor(&r))

	if err := s.persist(r, sourcePathFor(&r)); err != nil {
		return nil, err
	}
	return s.db.GetReceipt(r.ID)
}

// DeleteReceipt removes a receipt and its inbox source document.
func (s *Service) DeleteReceipt(ctx context.Context, id string) error {
	path, err := s.db.SourcePath(id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteReceipt(id); err != nil {
		return err
	}
	if path != "" {
		// Best effort: a vanished file just means the watcher beat us.
		_ = s.box.Remove(path)
	}
	return nil
}

// UpdateItemSchedule merges a partial schedule edit onto one line item and
// persists the updated receipt to both store and inbox.
func (s *Service) UpdateItemSchedule(ctx context.Context, receiptID, itemID string, edit ScheduleEditRequest) (*models.Receipt, error) {
	r, err := s.db.GetReceipt(receiptID)
	if err != nil {
		return nil, err
	}
	item := r.Item(itemID)
	if item == nil {
		return nil, apperr.ErrNotFound
	}
	edit.apply(&item.Details)

	path, err := s.db.SourcePath(receiptID)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = sourcePathFor(r)
	}

	// Refresh the canonical inbox document first, then write the edited
	// detail blob with the document's checksum so the watcher's re-ingest
	// is a no-op.
	data, err := json.MarshalIndent(*r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("api: marshal receipt: %w", err)
	}
	if err := s.box.Write(path, data); err != nil {
		return nil, err
	}
	if err := s.db.UpdateItemDetails(itemID, item.Details, checksum.Sum(data)); err != nil {
		return nil, err
	}
	return s.db.GetReceipt(receiptID)
}

// persist writes the canonical JSON document to the inbox and upserts the
// store with the matching checksum, so the watcher's re-ingest is a no-op.
func (s *Service) persist(r models.Receipt, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("api: marshal receipt: %w", err)
	}
	if err := s.box.Write(path, data); err != nil {
		return err
	}
	return s.db.UpsertReceipt(r, path, checksum.Sum(data))
}

func sourcePathFor(r *models.Receipt) string {
	return r.ID + ".json"
}

// Occurrences expands one line item into its capped occurrence series.
func (s *Service) Occurrences(ctx context.Context, itemID string) ([]series.Occurrence, error) {
	item, receipt, err := s.db.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	occ := series.Expand(*item, *receipt, s.expandOpts())
	if occ == nil {
		occ = []series.Occurrence{}
	}
	return occ, nil
}

// Summary condenses one item's series. The summary is nil when no date can
// be resolved for the item.
func (s *Service) Summary(ctx context.Context, itemID string) (*series.Summary, error) {
	item, receipt, err := s.db.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	return series.Summarize(*item, *receipt, s.expandOpts()), nil
}

// Chain finds the learning path containing the item, or nil when the item
// does not belong to one.
func (s *Service) Chain(ctx context.Context, itemID string) (*chain.Chain, error) {
	if _, _, err := s.db.GetItem(itemID); err != nil {
		return nil, err
	}
	receipts, err := s.db.AllReceipts()
	if err != nil {
		return nil, err
	}
	return chain.FindChainForItem(itemID, receipts, nil), nil
}

// Gaps runs continuity gap detection over the item's learning path.
// toleranceDays < 0 selects the configured default.
func (s *Service) Gaps(ctx context.Context, itemID string, toleranceDays int) ([]chain.Gap, error) {
	c, err := s.Chain(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if toleranceDays < 0 {
		toleranceDays = s.gapToleranceDays
	}
	gaps := chain.DetectGaps(c, toleranceDays)
	if gaps == nil {
		gaps = []chain.Gap{}
	}
	return gaps, nil
}

// Events materializes calendar event payloads for one line item: a series
// event for recurring education items, a drop-off/period/pickup group for
// multi-day services, and a single event otherwise.
func (s *Service) Events(ctx context.Context, itemID string) ([]calendar.EventPayload, error) {
	item, receipt, err := s.db.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	return eventsFor(*item, *receipt, s.expandOpts()), nil
}

func eventsFor(item models.LineItem, receipt models.Receipt, opts series.Options) []calendar.EventPayload {
	switch item.Category {
	case models.CategoryService:
		if evs, ok := calendar.BuildServiceEvents(item, receipt); ok {
			return evs
		}
	case models.CategoryEducation:
		if sum := series.Summarize(item, receipt, opts); sum != nil {
			return []calendar.EventPayload{calendar.BuildSeriesEvent(sum, receipt)}
		}
	}
	if ev, ok := calendar.BuildSingleEvent(item, receipt); ok {
		return []calendar.EventPayload{ev}
	}
	return nil
}

// ICS renders the item's calendar events as an iCalendar document.
func (s *Service) ICS(ctx context.Context, itemID string) (string, error) {
	events, err := s.Events(ctx, itemID)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "", ErrNoSchedulableDates
	}
	return calendar.RenderICS(events), nil
}

// Export pushes the item's events to the calendar device. Device failures
// are reported per event as fallback links, never as an error.
func (s *Service) Export(ctx context.Context, itemID string) ([]calendar.ExportResult, error) {
	events, err := s.Events(ctx, itemID)
	if err != nil {
		return nil, err
	}
	results := make([]calendar.ExportResult, 0, len(events))
	for _, ev := range events {
		results = append(results, calendar.Export(ctx, s.device, ev))
	}
	return results, nil
}
