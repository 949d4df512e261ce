package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := OpenAndMigrate(ctx, path)
	if err != nil {
		t.Fatalf("OpenAndMigrate() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}

	for _, table := range []string{"users", "rounds", "daily_results"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	// Second run is a no-op.
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM _migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("_migrations has %d rows, want 2", n)
	}
}

func TestSelfManaged(t *testing.T) {
	if !selfManaged("pragma foreign_keys=off; ...") {
		t.Error("expected self-managed")
	}
	if selfManaged("CREATE TABLE x (id INTEGER);") {
		t.Error("plain script reported self-managed")
	}
}
