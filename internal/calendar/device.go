package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/raidho/internal/apperr"
)

// Device is the host-calendar integration point: a capability check and a
// single create operation. Implementations live outside the derivation
// engine; the engine only cares that a failed or unavailable write falls
// back to the canonical URL.
type Device interface {
	Available(ctx context.Context) bool
	CreateEvent(ctx context.Context, ev EventPayload) error
}

// ExportResult reports the outcome of a best-effort export. When Created is
// false, FallbackURL carries the canonical link for manual copy; the export
// is surfaced either way, never dropped.
type ExportResult struct {
	Created     bool   `json:"created"`
	FallbackURL string `json:"fallbackUrl,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Export attempts one calendar write. A single attempt, no retry: on
// unavailability or a write error the result degrades to the manual-copy
// fallback. Export itself never fails.
func Export(ctx context.Context, dev Device, ev EventPayload) ExportResult {
	if dev == nil || !dev.Available(ctx) {
		return ExportResult{FallbackURL: ev.URL, Reason: apperr.ErrCalendarUnavailable.Error()}
	}
	if err := dev.CreateEvent(ctx, ev); err != nil {
		slog.Warn("calendar: create event failed",
			slog.String("title", ev.Title),
			slog.String("error", err.Error()))
		return ExportResult{FallbackURL: ev.URL, Reason: apperr.ErrCalendarWrite.Error()}
	}
	return ExportResult{Created: true}
}

// Unavailable is a Device for deployments with no calendar integration;
// every export resolves to the manual-copy fallback.
type Unavailable struct{}

func (Unavailable) Available(context.Context) bool                  { return false }
func (Unavailable) CreateEvent(context.Context, EventPayload) error { return nil }

// FileDevice writes each event as a standalone .ics file into a directory,
// standing in for a host calendar on server deployments.
type FileDevice struct {
	Dir string
}

func (d FileDevice) Available(ctx context.Context) bool {
	if d.Dir == "" {
		return false
	}
	info, err := os.Stat(d.Dir)
	return err == nil && info.IsDir()
}

func (d FileDevice) CreateEvent(ctx context.Context, ev EventPayload) error {
	name := sanitizeFilename(ev.UID) + ".ics"
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, []byte(RenderICS([]EventPayload{ev})), 0o644); err != nil {
		return fmt.Errorf("calendar: write %s: %w", name, err)
	}
	return nil
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
