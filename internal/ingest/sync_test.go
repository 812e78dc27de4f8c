package ingest

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/starford/raidho/internal/apperr"
	"github.com/starford/raidho/internal/inbox"
	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/store"
	"github.com/starford/raidho/internal/testutil"
)

func testEnv(t *testing.T) (*store.DB, *inbox.FS) {
	t.Helper()
	db := testutil.TestDB(t)
	_, box := testutil.TestInbox(t)
	return db, box
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

const musicReceiptJSON = `{
  "id": "rcpt_music",
  "merchant": "Harmony Music School",
  "transactionDate": "2024-03-01",
  "items": [
    {
      "id": "item_piano",
      "description": "Piano lessons x10",
      "category": "education",
      "quantity": 10,
      "totalPrice": 450,
      "details": {
        "studentName": "Mia",
        "frequency": "weekly",
        "startDate": "2024-03-04"
      }
    }
  ]
}`

func TestSyncIngestsNewDocuments(t *testing.T) {
	db, box := testEnv(t)

	if err := box.Write("music.json", []byte(musicReceiptJSON)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Sync(db, box, discardLogger()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	r, err := db.GetReceipt("rcpt_music")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Merchant != "Harmony Music School" {
		t.Errorf("merchant = %q", r.Merchant)
	}
	if len(r.Items) != 1 || r.Items[0].Details.StudentName != "Mia" {
		t.Errorf("items not preserved: %+v", r.Items)
	}
}

func TestSyncRemovesStaleReceipts(t *testing.T) {
	db, box := testEnv(t)

	if err := box.Write("music.json", []byte(musicReceiptJSON)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Sync(db, box, discardLogger()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := box.Remove("music.json"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := Sync(db, box, discardLogger()); err != nil {
		t.Fatalf("resync: %v", err)
	}

	if _, err := db.GetReceipt("rcpt_music"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("want ErrNotFound after source removal, got %v", err)
	}
}

func TestSyncSkipsUnchangedDocuments(t *testing.T) {
	db, box := testEnv(t)

	if err := box.Write("music.json", []byte(musicReceiptJSON)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Sync(db, box, discardLogger()); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// A second pass over unchanged content must be a no-op, not an error.
	if err := Sync(db, box, discardLogger()); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if _, err := db.GetReceipt("rcpt_music"); err != nil {
		t.Errorf("receipt lost on resync: %v", err)
	}
}

func TestIngestFileRejectsMalformedJSON(t *testing.T) {
	db, _ := testEnv(t)

	if _, err := IngestFile(db, "bad.json", []byte("{not json")); err == nil {
		t.Fatal("want error for malformed document")
	}
}

func TestNormalizeDerivesStableIDs(t *testing.T) {
	a := models.Receipt{Items: []models.LineItem{{Description: "Piano lessons"}}}
	b := models.Receipt{Items: []models.LineItem{{Description: "Piano lessons"}}}

	Normalize(&a, "inbox/a.json")
	Normalize(&b, "inbox/a.json")

	if a.ID == "" || a.Items[0].ID == "" {
		t.Fatalf("ids not derived: %+v", a)
	}
	if a.ID != b.ID || a.Items[0].ID != b.Items[0].ID {
		t.Errorf("derived ids not stable: %q vs %q", a.Items[0].ID, b.Items[0].ID)
	}
	if a.Items[0].ReceiptID != a.ID {
		t.Errorf("item back-reference = %q, want %q", a.Items[0].ReceiptID, a.ID)
	}
}

func TestGuessCategory(t *testing.T) {
	cases := []struct {
		desc string
		want string
	}{
		{"Guitar lessons x8", models.CategoryEducation},
		{"Swim class - term 2", models.CategoryEducation},
		{"Watch repair", models.CategoryService},
		{"Suit alteration", models.CategoryService},
		{"Groceries", models.CategoryGeneral},
	}
	for _, tc := range cases {
		if got := guessCategory(tc.desc); got != tc.want {
			t.Errorf("guessCategory(%q) = %q, want %q", tc.desc, got, tc.want)
		}
	}
}
