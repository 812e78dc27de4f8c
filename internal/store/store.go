// Package store provides SQLite-backed persistence for receipts and their
// extracted line items. Derived entities (occurrences, chains, gaps) are
// never written here; they are recomputed from these rows on every read.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/raidho/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS receipts (
	id               TEXT PRIMARY KEY,
	merchant         TEXT NOT NULL DEFAULT '',
	transaction_date TEXT NOT NULL DEFAULT '',
	contact_phone    TEXT NOT NULL DEFAULT '',
	contact_email    TEXT NOT NULL DEFAULT '',
	contact_address  TEXT NOT NULL DEFAULT '',
	source_path      TEXT NOT NULL DEFAULT '',
	checksum         TEXT NOT NULL DEFAULT '',
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS line_items (
	id         TEXT PRIMARY KEY,
	receipt_id TEXT NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	quantity    INTEGER NOT NULL DEFAULT 0,
	total_price REAL NOT NULL DEFAULT 0,
	details     TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_items_receipt ON line_items(receipt_id);
CREATE INDEX IF NOT EXISTS idx_items_category ON line_items(category);
CREATE INDEX IF NOT EXISTS idx_receipts_source ON receipts(source_path);
`

// ReceiptStore defines the persistence operations the rest of the
// application depends on. Consumers should take this interface rather than
// the concrete *DB to facilitate testing with fakes.
type ReceiptStore interface {
	UpsertReceipt(r models.Receipt, sourcePath, checksum string) error
	GetReceipt(id string) (*models.Receipt, error)
	GetItem(itemID string) (*models.LineItem, *models.Receipt, error)
	ListReceipts(limit, offset int, category string) ([]models.Receipt, int, error)
	AllReceipts() ([]models.Receipt, error)
	UpdateItemDetails(itemID string, details models.ItemDetails, docChecksum string) error
	DeleteReceipt(id string) error
	DeleteBySourcePath(path string) (string, error)
	SourcePath(receiptID string) (string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ReceiptStore at compile time.
var _ ReceiptStore = (*DB)(nil)

// DB wraps a sql.DB with receipt-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
