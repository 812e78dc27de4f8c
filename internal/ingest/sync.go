// Package ingest reconciles the extraction inbox with the receipt store:
// a full sync pass at startup and an fsnotify watcher for live changes.
package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/raidho/internal/checksum"
	"github.com/starford/raidho/internal/inbox"
	"github.com/starford/raidho/internal/models"
	"github.com/starford/raidho/internal/store"
)

// Sync walks the inbox and brings the store up to date:
//   - new/changed documents are parsed and upserted
//   - receipts whose source file is gone are deleted
func Sync(db store.ReceiptStore, box inbox.Provider, logger *slog.Logger) error {
	metas, err := box.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := box.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if _, err := IngestFile(db, m.Path, data); err != nil {
			logger.Warn("sync: ingest failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: ingested", slog.String("path", m.Path))
		}
	}

	// Remove receipts whose source document disappeared.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if _, err := db.DeleteBySourcePath(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IngestFile parses one extracted document and upserts it, returning the
// receipt id. Missing receipt/item ids are derived deterministically so
// re-ingesting an unchanged file never reshuffles identity.
func IngestFile(db store.ReceiptStore, path string, data []byte) (string, error) {
	var r models.Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return "", fmt.Errorf("ingest: parse %s: %w", path, err)
	}
	Normalize(&r, path)
	if err := db.UpsertReceipt(r, path, checksum.Sum(data)); err != nil {
		return "", err
	}
	return r.ID, nil
}

// Normalize fills in derived ids and back-references on an extracted
// receipt. The extraction stage is not guaranteed to assign ids; derived
// ones are stable functions of the source path and item position.
func Normalize(r *models.Receipt, path string) {
	if r.ID == "" {
		r.ID = "rcpt_" + checksum.Short([]byte(path))
	}
	for i := range r.Items {
		it := &r.Items[i]
		if it.ID == "" {
			it.ID = r.ID + "_i" + strconv.Itoa(i)
		}
		it.ReceiptID = r.ID
		if it.Category == "" {
			it.Category = guessCategory(it.Description)
		}
	}
}

// guessCategory is a coarse fallback for documents extracted before the
// category field existed.
func guessCategory(description string) string {
	d := strings.ToLower(description)
	switch {
	case strings.Contains(d, "lesson"), strings.Contains(d, "class"), strings.Contains(d, "tuition"):
		return models.CategoryEducation
	case strings.Contains(d, "repair"), strings.Contains(d, "service"), strings.Contains(d, "alteration"):
		return models.CategoryService
	default:
		return models.CategoryGeneral
	}
}
