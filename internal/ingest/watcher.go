package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raidho/internal/apperr"
	"github.com/starford/raidho/internal/inbox"
	"github.com/starford/raidho/internal/store"
)

// Event kinds reported to the callback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is invoked after the store has been updated for a change.
// id is the receipt id for created/updated events and the deleted receipt
// id (or the source path when the mapping is unknown) for deletes.
type EventCallback func(kind, id string)

// reconcileDelay batches rename storms from editors that write via
// temp-file swaps before running a full reconcile pass.
const reconcileDelay = 200 * time.Millisecond

// Watcher mirrors inbox file changes into the receipt store.
type Watcher struct {
	db     store.ReceiptStore
	box    *inbox.FS
	logger *slog.Logger
	cb     EventCallback

	mu    sync.Mutex
	timer *time.Timer
}

func NewWatcher(db store.ReceiptStore, box *inbox.FS, logger *slog.Logger, cb EventCallback) *Watcher {
	if cb == nil {
		cb = func(string, string) {}
	}
	return &Watcher{db: db, box: box, logger: logger, cb: cb}
}

// Watch blocks until ctx is cancelled, applying filesystem events as they
// arrive. The inbox root and its subdirectories are watched; new
// subdirectories are added as they appear.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addRecursive(fw, w.box.Root()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch: error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) {
	rel, err := filepath.Rel(w.box.Root(), ev.Name)
	if err != nil {
		return
	}

	// Track new directories so nested inboxes keep working.
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := statDir(ev.Name); err == nil && fi {
			if err := addRecursive(fw, ev.Name); err != nil {
				w.logger.Warn("watch: add dir", slog.String("path", rel), slog.String("error", err.Error()))
			}
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(rel), ".json") {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		w.ingest(rel, ev.Op.Has(fsnotify.Create))
	case ev.Op.Has(fsnotify.Remove):
		w.remove(rel)
	case ev.Op.Has(fsnotify.Rename):
		// The old name is gone; the new name arrives as a separate
		// Create. A delayed reconcile catches anything we missed.
		w.remove(rel)
		w.scheduleReconcile()
	}
}

func (w *Watcher) ingest(rel string, created bool) {
	data, err := w.box.Read(rel)
	if err != nil {
		// Write events can race the editor's own rename; reconcile later.
		w.scheduleReconcile()
		return
	}
	id, err := IngestFile(w.db, rel, data)
	if err != nil {
		w.logger.Warn("watch: ingest failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	kind := EventUpdated
	if created {
		kind = EventCreated
	}
	w.logger.Debug("watch: ingested", slog.String("path", rel), slog.String("receipt", id))
	w.cb(kind, id)
}

func (w *Watcher) remove(rel string) {
	id, err := w.db.DeleteBySourcePath(rel)
	if errors.Is(err, apperr.ErrNotFound) {
		return
	}
	if err != nil {
		w.logger.Warn("watch: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watch: removed", slog.String("path", rel), slog.String("receipt", id))
	w.cb(EventDeleted, id)
}

func (w *Watcher) scheduleReconcile() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reconcileDelay, func() {
		if err := Sync(w.db, w.box, w.logger); err != nil {
			w.logger.Warn("watch: reconcile failed", slog.String("error", err.Error()))
		}
	})
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}

func statDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return fi.IsDir(), nil
}
