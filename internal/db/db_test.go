package db

import (
	"database/sql"
	"testing"

	"turnipmarket/internal/engine"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_InsertAndListRunsRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	var obs [engine.Slots]float64
	for i := range obs {
		obs[i] = engine.Missing()
	}
	obs[0], obs[1] = 100, 100

	results := engine.AnalyzePossibilities(obs, false, engine.UnknownPattern)
	id, err := d.InsertRun(obs, false, engine.UnknownPattern, results)
	if err != nil {
		t.Fatalf("InsertRun: %v", err)
	}
	if id == "" {
		t.Fatal("InsertRun returned empty id")
	}

	records, err := d.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListRuns len = %d, want 1", len(records))
	}
	if records[0].ID != id {
		t.Errorf("ID = %q, want %q", records[0].ID, id)
	}
	if records[0].FirstBuy {
		t.Error("FirstBuy = true, want false")
	}
	if records[0].Observations[0] != 100 {
		t.Errorf("Observations[0] = %v, want 100", records[0].Observations[0])
	}
}

func TestDB_InsertRun_EmptyResultsErrors(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	var obs [engine.Slots]float64
	if _, err := d.InsertRun(obs, false, engine.UnknownPattern, nil); err == nil {
		t.Fatal("expected error for empty results")
	}
}

func TestDB_ListRuns_RespectsLimit(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	var obs [engine.Slots]float64
	for i := range obs {
		obs[i] = engine.Missing()
	}
	obs[0], obs[1] = 100, 100
	results := engine.AnalyzePossibilities(obs, false, engine.UnknownPattern)

	for i := 0; i < 3; i++ {
		if _, err := d.InsertRun(obs, false, engine.UnknownPattern, results); err != nil {
			t.Fatalf("InsertRun: %v", err)
		}
	}

	records, err := d.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListRuns(2) len = %d, want 2", len(records))
	}
}
