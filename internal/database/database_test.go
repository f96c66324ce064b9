package database

import "testing"

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var name string
	err = db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'events'`,
	).Scan(&name)
	if err != nil {
		t.Fatalf("events table missing after migration: %v", err)
	}

	// Column defaults must let a minimal insert through.
	_, err = db.Exec(
		`INSERT INTO events (title, date, start_time, end_time) VALUES (?, ?, ?, ?)`,
		"minimal", "2024-11-07", "10:00", "11:00",
	)
	if err != nil {
		t.Fatalf("insert with defaults: %v", err)
	}

	var repeatType string
	var interval int
	err = db.QueryRow(`SELECT repeat_type, repeat_interval FROM events WHERE title = 'minimal'`).
		Scan(&repeatType, &interval)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if repeatType != "none" || interval != 0 {
		t.Errorf("defaults = %q/%d, want none/0", repeatType, interval)
	}
}

func TestOpenBadPath(t *testing.T) {
	if _, err := Open("/nonexistent-dir/morrow.db"); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
