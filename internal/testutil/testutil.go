// Package testutil provides shared test helpers for setting up inboxes and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/raidho/internal/inbox"
	"github.com/starford/raidho/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raidho-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestInbox creates a temporary inbox directory with an inbox.Provider.
func TestInbox(t *testing.T) (string, *inbox.FS) {
	t.Helper()
	dir := t.TempDir()
	box, err := inbox.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, box
}
