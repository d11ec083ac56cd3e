// Package testutil provides shared test helpers for stores and verse tables.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/verseclock/internal/storage"
	"github.com/starford/verseclock/internal/verses"
)

// TestStore creates a temporary SQLite key-value store that is automatically cleaned up.
func TestStore(t *testing.T) *storage.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "verseclock-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := storage.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTable returns the built-in verse table.
func TestTable(t *testing.T) *verses.Table {
	t.Helper()
	tbl, err := verses.Default()
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
