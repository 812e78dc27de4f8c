package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/raidho/internal/apperr"
	"github.com/starford/raidho/internal/models"
)

// UpsertReceipt inserts or replaces a receipt and its line items within a
// transaction. Existing items are replaced wholesale: the extraction stage
// always produces the complete item list for a receipt.
func (db *DB) UpsertReceipt(r models.Receipt, sourcePath, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO receipts (id, merchant, transaction_date, contact_phone, contact_email, contact_address, source_path, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			merchant         = excluded.merchant,
			transaction_date = excluded.transaction_date,
			contact_phone    = excluded.contact_phone,
			contact_email    = excluded.contact_email,
			contact_address  = excluded.contact_address,
			source_path      = excluded.source_path,
			checksum         = excluded.checksum,
			updated_at       = excluded.updated_at
	`, r.ID, r.Merchant, r.TransactionDate, r.ContactPhone, r.ContactEmail, r.ContactAddress,
		sourcePath, checksum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: upsert receipt: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM line_items WHERE receipt_id = ?`, r.ID); err != nil {
		return fmt.Errorf("store: clear items: %w", err)
	}

	if len(r.Items) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO line_items (id, receipt_id, position, description, category, quantity, total_price, details)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("store: prepare item insert: %w", err)
		}
		defer stmt.Close()
		for i, it := range r.Items {
			detailsJSON, _ := json.Marshal(it.Details)
			if _, err := stmt.Exec(it.ID, r.ID, i, it.Description, it.Category, it.Quantity, it.TotalPrice, string(detailsJSON)); err != nil {
				return fmt.Errorf("store: insert item: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetReceipt returns one receipt with its items, or apperr.ErrNotFound.
func (db *DB) GetReceipt(id string) (*models.Receipt, error) {
	row := db.conn.QueryRow(`
		SELECT id, merchant, transaction_date, contact_phone, contact_email, contact_address, updated_at
		FROM receipts WHERE id = ?
	`, id)
	r, err := scanReceipt(row)
	if err != nil {
		return nil, err
	}
	items, err := db.itemsFor(r.ID)
	if err != nil {
		return nil, err
	}
	r.Items = items
	return r, nil
}

// GetItem returns a line item together with its owning receipt.
func (db *DB) GetItem(itemID string) (*models.LineItem, *models.Receipt, error) {
	var receiptID string
	err := db.conn.QueryRow(`SELECT receipt_id FROM line_items WHERE id = ?`, itemID).Scan(&receiptID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: get item: %w", err)
	}
	r, err := db.GetReceipt(receiptID)
	if err != nil {
		return nil, nil, err
	}
	it := r.Item(itemID)
	if it == nil {
		return nil, nil, apperr.ErrNotFound
	}
	return it, r, nil
}

// ListReceipts returns a page of receipts (newest transaction first) with
// the total count. category filters to receipts containing at least one
// item of that category; empty means no filter.
func (db *DB) ListReceipts(limit, offset int, category string) ([]models.Receipt, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if category != "" {
		where = `WHERE id IN (SELECT DISTINCT receipt_id FROM line_items WHERE category = ?)`
		args = append(args, category)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM receipts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count receipts: %w", err)
	}

	query := `
		SELECT id, merchant, transaction_date, contact_phone, contact_email, contact_address, updated_at
		FROM receipts ` + where + `
		ORDER BY transaction_date DESC, id
		LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list receipts: %w", err)
	}
	defer rows.Close()

	receipts, err := collectReceipts(rows)
	if err != nil {
		return nil, 0, err
	}
	for i := range receipts {
		items, err := db.itemsFor(receipts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		receipts[i].Items = items
	}
	return receipts, total, nil
}

// AllReceipts returns every receipt with items, the chain linker's input.
// Bounded in practice: at most hundreds of rows for a personal archive.
func (db *DB) AllReceipts() ([]models.Receipt, error) {
	rows, err := db.conn.Query(`
		SELECT id, merchant, transaction_date, contact_phone, contact_email, contact_address, updated_at
		FROM receipts ORDER BY transaction_date, id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: all receipts: %w", err)
	}
	defer rows.Close()

	receipts, err := collectReceipts(rows)
	if err != nil {
		return nil, err
	}
	for i := range receipts {
		items, err := db.itemsFor(receipts[i].ID)
		if err != nil {
			return nil, err
		}
		receipts[i].Items = items
	}
	return receipts, nil
}

// UpdateItemDetails writes back an edited detail blob. This is the single
// write path for user schedule edits; re-derivation happens on the next
// read. docChecksum is the checksum of the refreshed source document, so
// the watcher's re-ingest of that document stays a no-op.
func (db *DB) UpdateItemDetails(itemID string, details models.ItemDetails, docChecksum string) error {
	detailsJSON, _ := json.Marshal(details)
	res, err := db.conn.Exec(`UPDATE line_items SET details = ? WHERE id = ?`, string(detailsJSON), itemID)
	if err != nil {
		return fmt.Errorf("store: update item details: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.ErrNotFound
	}
	_, err = db.conn.Exec(`
		UPDATE receipts SET checksum = ?, updated_at = ?
		WHERE id = (SELECT receipt_id FROM line_items WHERE id = ?)
	`, docChecksum, time.Now().UTC(), itemID)
	if err != nil {
		return fmt.Errorf("store: touch receipt: %w", err)
	}
	return nil
}

// DeleteReceipt removes a receipt; line items cascade.
func (db *DB) DeleteReceipt(id string) error {
	res, err := db.conn.Exec(`DELETE FROM receipts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete receipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteBySourcePath removes the receipt ingested from the given inbox
// file, returning its id. Used by the ingest watcher when a source file
// disappears.
func (db *DB) DeleteBySourcePath(path string) (string, error) {
	var id string
	err := db.conn.QueryRow(`SELECT id FROM receipts WHERE source_path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: lookup by source: %w", err)
	}
	return id, db.DeleteReceipt(id)
}

// SourcePath returns the inbox file a receipt was ingested from, or an
// empty string for receipts created without one.
func (db *DB) SourcePath(receiptID string) (string, error) {
	var path string
	err := db.conn.QueryRow(`SELECT source_path FROM receipts WHERE id = ?`, receiptID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: source path: %w", err)
	}
	return path, nil
}

// AllChecksums returns source_path → checksum for every ingested receipt,
// used by ingest sync to skip unchanged inbox files.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT source_path, checksum FROM receipts WHERE source_path != ''`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, cs string
		if err := rows.Scan(&path, &cs); err != nil {
			return nil, fmt.Errorf("store: scan checksum: %w", err)
		}
		out[path] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*models.Receipt, error) {
	var r models.Receipt
	err := row.Scan(&r.ID, &r.Merchant, &r.TransactionDate,
		&r.ContactPhone, &r.ContactEmail, &r.ContactAddress, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan receipt: %w", err)
	}
	return &r, nil
}

func collectReceipts(rows *sql.Rows) ([]models.Receipt, error) {
	var out []models.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (db *DB) itemsFor(receiptID string) ([]models.LineItem, error) {
	rows, err := db.conn.Query(`
		SELECT id, description, category, quantity, total_price, details
		FROM line_items WHERE receipt_id = ? ORDER BY position
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("store: items for receipt: %w", err)
	}
	defer rows.Close()

	var out []models.LineItem
	for rows.Next() {
		var it models.LineItem
		var detailsJSON string
		if err := rows.Scan(&it.ID, &it.Description, &it.Category, &it.Quantity, &it.TotalPrice, &detailsJSON); err != nil {
			return nil, fmt.Errorf("store: scan item: %w", err)
		}
		it.ReceiptID = receiptID
		if err := json.Unmarshal([]byte(detailsJSON), &it.Details); err != nil {
			// A corrupt blob degrades to empty details; the parser treats
			// every field as optional anyway.
			it.Details = models.ItemDetails{}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
