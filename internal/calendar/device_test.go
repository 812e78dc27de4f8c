package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeDevice struct {
	available bool
	err       error
	created   []EventPayload
}

func (d *fakeDevice) Available(context.Context) bool { return d.available }
func (d *fakeDevice) CreateEvent(_ context.Context, ev EventPayload) error {
	if d.err != nil {
		return d.err
	}
	d.created = append(d.created, ev)
	return nil
}

func testPayload() EventPayload {
	start := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
	return EventPayload{
		Title: "Piano lessons (11 sessions)",
		Start: start,
		End:   start.Add(45 * time.Minute),
		Notes: "Series of 11 lessons from 2024-01-01 to 2024-03-11.\napp://cal/event_series_item-1",
		URL:   "app://cal/event_series_item-1",
		RRule: "FREQ=WEEKLY;COUNT=11",
		UID:   "event_series_item-1",
	}
}

func TestExport_Created(t *testing.T) {
	dev := &fakeDevice{available: true}
	res := Export(context.Background(), dev, testPayload())
	if !res.Created {
		t.Fatalf("result = %+v, want created", res)
	}
	if len(dev.created) != 1 {
		t.Fatalf("device received %d events", len(dev.created))
	}
}

func TestExport_UnavailableFallsBack(t *testing.T) {
	res := Export(context.Background(), &fakeDevice{available: false}, testPayload())
	if res.Created {
		t.Fatal("created on unavailable device")
	}
	if res.FallbackURL != "app://cal/event_series_item-1" {
		t.Errorf("fallback = %q", res.FallbackURL)
	}
	if res.Reason != "calendar unavailable" {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestExport_WriteErrorFallsBack(t *testing.T) {
	dev := &fakeDevice{available: true, err: errors.New("boom")}
	res := Export(context.Background(), dev, testPayload())
	if res.Created {
		t.Fatal("created despite write error")
	}
	if res.FallbackURL == "" || res.Reason != "calendar write failed" {
		t.Errorf("result = %+v", res)
	}
}

func TestExport_NilDeviceFallsBack(t *testing.T) {
	res := Export(context.Background(), nil, testPayload())
	if res.Created || res.FallbackURL == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestFileDevice(t *testing.T) {
	dir := t.TempDir()
	dev := FileDevice{Dir: dir}
	if !dev.Available(context.Background()) {
		t.Fatal("file device should be available")
	}
	if err := dev.CreateEvent(context.Background(), testPayload()); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "event_series_item-1.ics"))
	if err != nil {
		t.Fatalf("read ics: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "BEGIN:VCALENDAR") || !strings.Contains(s, "BEGIN:VEVENT") {
		t.Errorf("not an ICS document: %q", s)
	}
}

func TestFileDevice_MissingDirUnavailable(t *testing.T) {
	dev := FileDevice{Dir: filepath.Join(t.TempDir(), "nope")}
	if dev.Available(context.Background()) {
		t.Error("missing dir reported available")
	}
	if (FileDevice{}).Available(context.Background()) {
		t.Error("empty dir reported available")
	}
}

func TestRenderICS_SeriesCarriesRRule(t *testing.T) {
	s := RenderICS([]EventPayload{testPayload()})
	if !strings.Contains(s, "RRULE:FREQ=WEEKLY;COUNT=11") {
		t.Errorf("missing RRULE in %q", s)
	}
	if !strings.Contains(s, "SUMMARY:Piano lessons (11 sessions)") {
		t.Errorf("missing SUMMARY in %q", s)
	}
	if !strings.Contains(s, "UID:event_series_item-1@raidho") {
		t.Errorf("missing UID in %q", s)
	}
}

func TestRenderICS_Deterministic(t *testing.T) {
	events := []EventPayload{testPayload()}
	if RenderICS(events) != RenderICS(events) {
		t.Error("repeated rendering differs")
	}
}
