package store

import (
	"errors"
	"os"
	"testing"

	"github.com/starford/raidho/internal/apperr"
	"github.com/starford/raidho/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raidho-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleReceipt(id, date string) models.Receipt {
	return models.Receipt{
		ID:              id,
		Merchant:        "Harmony Music School",
		TransactionDate: date,
		ContactPhone:    "555-0101",
		Items: []models.LineItem{
			{
				ID:          id + "-i1",
				Description: "Piano lessons",
				Category:    models.CategoryEducation,
				Quantity:    10,
				TotalPrice:  450,
				Details: models.ItemDetails{
					StudentName: "Noah",
					Focus:       "piano",
					Frequency:   "weekly",
					StartDate:   date,
				},
			},
			{
				ID:          id + "-i2",
				Description: "Sheet music",
				Category:    models.CategoryGeneral,
				Quantity:    1,
				TotalPrice:  15.50,
			},
		},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM receipts`).Scan(&count); err != nil {
		t.Fatalf("receipts table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM line_items`).Scan(&count); err != nil {
		t.Fatalf("line_items table missing: %v", err)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	r := sampleReceipt("r1", "2024-01-01")
	if err := db.UpsertReceipt(r, "inbox/r1.json", "cs1"); err != nil {
		t.Fatalf("UpsertReceipt: %v", err)
	}

	got, err := db.GetReceipt("r1")
	if err != nil {
		t.Fatalf("GetReceipt: %v", err)
	}
	if got.Merchant != "Harmony Music School" {
		t.Errorf("merchant = %q", got.Merchant)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Details.StudentName != "Noah" {
		t.Errorf("details round-trip failed: %+v", got.Items[0].Details)
	}
	if got.Items[0].ReceiptID != "r1" {
		t.Errorf("item ReceiptID = %q", got.Items[0].ReceiptID)
	}
}

func TestUpsertReplacesItems(t *testing.T) {
	db := testDB(t)
	r := sampleReceipt("r1", "2024-01-01")
	if err := db.UpsertReceipt(r, "inbox/r1.json", "cs1"); err != nil {
		t.Fatal(err)
	}
	r.Items = r.Items[:1]
	r.Items[0].Description = "Piano lessons (term 2)"
	if err := db.UpsertReceipt(r, "inbox/r1.json", "cs2"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetReceipt("r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "Piano lessons (term 2)" {
		t.Errorf("items = %+v", got.Items)
	}
}

func TestGetReceipt_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetReceipt("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetItem(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertReceipt(sampleReceipt("r1", "2024-01-01"), "", ""); err != nil {
		t.Fatal(err)
	}
	item, receipt, err := db.GetItem("r1-i1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Description != "Piano lessons" || receipt.ID != "r1" {
		t.Errorf("item = %+v receipt = %+v", item, receipt)
	}
	if _, _, err := db.GetItem("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListReceipts_PaginationAndFilter(t *testing.T) {
	db := testDB(t)
	for _, d := range []string{"2024-01-01", "2024-02-01", "2024-03-01"} {
		r := sampleReceipt("r-"+d, d)
		if err := db.UpsertReceipt(r, "", ""); err != nil {
			t.Fatal(err)
		}
	}
	service := models.Receipt{
		ID: "r-svc", Merchant: "Shoe Repair Co", TransactionDate: "2024-04-01",
		Items: []models.LineItem{{ID: "svc-i1", Description: "Resole", Category: models.CategoryService}},
	}
	if err := db.UpsertReceipt(service, "", ""); err != nil {
		t.Fatal(err)
	}

	page, total, err := db.ListReceipts(2, 0, "")
	if err != nil {
		t.Fatalf("ListReceipts: %v", err)
	}
	if total != 4 || len(page) != 2 {
		t.Fatalf("total = %d page = %d, want 4/2", total, len(page))
	}
	// Newest transaction first.
	if page[0].ID != "r-svc" {
		t.Errorf("page[0] = %s", page[0].ID)
	}

	edu, total, err := db.ListReceipts(10, 0, models.CategoryEducation)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(edu) != 3 {
		t.Errorf("education filter: total = %d len = %d, want 3/3", total, len(edu))
	}
}

func TestAllReceipts_OrderedAscending(t *testing.T) {
	db := testDB(t)
	for _, d := range []string{"2024-03-01", "2024-01-01", "2024-02-01"} {
		if err := db.UpsertReceipt(sampleReceipt("r-"+d, d), "", ""); err != nil {
			t.Fatal(err)
		}
	}
	all, err := db.AllReceipts()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].TransactionDate != "2024-01-01" || all[2].TransactionDate != "2024-03-01" {
		t.Errorf("order = %s..%s", all[0].TransactionDate, all[2].TransactionDate)
	}
	if len(all[0].Items) != 2 {
		t.Errorf("items not loaded: %d", len(all[0].Items))
	}
}

func TestUpdateItemDetails(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertReceipt(sampleReceipt("r1", "2024-01-01"), "r1.json", "sum-old"); err != nil {
		t.Fatal(err)
	}
	details := models.ItemDetails{StudentName: "Noah", Focus: "piano", Frequency: "fortnightly", StartDate: "2024-01-08"}
	if err := db.UpdateItemDetails("r1-i1", details, "sum-new"); err != nil {
		t.Fatalf("UpdateItemDetails: %v", err)
	}
	item, _, err := db.GetItem("r1-i1")
	if err != nil {
		t.Fatal(err)
	}
	if item.Details.Frequency != "fortnightly" || item.Details.StartDate != "2024-01-08" {
		t.Errorf("details = %+v", item.Details)
	}
	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if sums["r1.json"] != "sum-new" {
		t.Errorf("checksum = %q, want sum-new", sums["r1.json"])
	}
	if err := db.UpdateItemDetails("missing", details, "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteReceipt_Cascades(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertReceipt(sampleReceipt("r1", "2024-01-01"), "", ""); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteReceipt("r1"); err != nil {
		t.Fatalf("DeleteReceipt: %v", err)
	}
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM line_items`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("orphaned items = %d", count)
	}
	if err := db.DeleteReceipt("r1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSourcePathTracking(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertReceipt(sampleReceipt("r1", "2024-01-01"), "inbox/a.json", "cs-a"); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertReceipt(sampleReceipt("r2", "2024-02-01"), "inbox/b.json", "cs-b"); err != nil {
		t.Fatal(err)
	}

	sums, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if sums["inbox/a.json"] != "cs-a" || sums["inbox/b.json"] != "cs-b" {
		t.Errorf("checksums = %v", sums)
	}

	id, err := db.DeleteBySourcePath("inbox/a.json")
	if err != nil {
		t.Fatalf("DeleteBySourcePath: %v", err)
	}
	if id != "r1" {
		t.Errorf("id = %q, want r1", id)
	}
	if _, err := db.GetReceipt("r1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("receipt still present: %v", err)
	}
	if _, err := db.DeleteBySourcePath("inbox/zzz.json"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSourcePathLookup(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertReceipt(sampleReceipt("r1", "2024-01-01"), "inbox/a.json", "cs-a"); err != nil {
		t.Fatal(err)
	}

	path, err := db.SourcePath("r1")
	if err != nil {
		t.Fatalf("SourcePath: %v", err)
	}
	if path != "inbox/a.json" {
		t.Errorf("path = %q, want inbox/a.json", path)
	}
	if _, err := db.SourcePath("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
