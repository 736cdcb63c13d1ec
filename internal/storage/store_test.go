package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"dompet/internal/core"
)

func newTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "wallet.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	return s, path
}

func mustUpsert(t *testing.T, s *SQLiteStore, date string, field core.Field, amount int64) core.Record {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", date, err)
	}
	rec, err := s.Upsert(context.Background(), d, field, amount)
	if err != nil {
		t.Fatalf("Upsert(%s, %s, %d): %v", date, field, amount, err)
	}
	return rec
}

func mustReadAll(t *testing.T, s *SQLiteStore) []core.Record {
	t.Helper()
	recs, err := s.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return recs
}

func TestPragmasApplyToEveryConnection(t *testing.T) {
	s, _ := newTestStore(t)
	// No idle connections: each query below runs on a freshly opened one.
	s.db.SetMaxIdleConns(0)

	for i := 0; i < 2; i++ {
		var timeout int
		if err := s.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
			t.Fatalf("busy_timeout: %v", err)
		}
		if timeout != 5000 {
			t.Errorf("busy_timeout = %d, want 5000", timeout)
		}
		var mode string
		if err := s.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
			t.Fatalf("journal_mode: %v", err)
		}
		if mode != "wal" {
			t.Errorf("journal_mode = %q, want wal", mode)
		}
	}
}

func TestReadAllEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	recs := mustReadAll(t, s)
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}
}

func TestUpsertScenario(t *testing.T) {
	s, _ := newTestStore(t)

	mustUpsert(t, s, "2024-01-10", core.FieldIncome, 50000)
	mustUpsert(t, s, "2024-01-10", core.FieldOutcome, 20000)

	recs := mustReadAll(t, s)
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	r := recs[0]
	if r.Date.String() != "2024-01-10" || r.Income != 50000 || r.Outcome != 20000 {
		t.Fatalf("unexpected record %+v", r)
	}

	mustUpsert(t, s, "2024-01-10", core.FieldIncome, 75000)
	recs = mustReadAll(t, s)
	if len(recs) != 1 || recs[0].Income != 75000 || recs[0].Outcome != 20000 {
		t.Fatalf("expected only income to change, got %+v", recs)
	}
}

func TestUpsertKeepsOneRecordAndStableID(t *testing.T) {
	s, _ := newTestStore(t)

	first := mustUpsert(t, s, "2024-03-01", core.FieldOutcome, 1000)
	for _, amount := range []int64{2000, 3000, 0, 4000} {
		rec := mustUpsert(t, s, "2024-03-01", core.FieldOutcome, amount)
		if rec.ID != first.ID {
			t.Fatalf("id changed from %d to %d", first.ID, rec.ID)
		}
	}
	recs := mustReadAll(t, s)
	if len(recs) != 1 || recs[0].ID != first.ID || recs[0].Outcome != 4000 {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestUpsertFieldIndependenceAndDefaultZero(t *testing.T) {
	s, _ := newTestStore(t)

	created := mustUpsert(t, s, "2024-02-02", core.FieldOutcome, 12000)
	if created.Income != 0 {
		t.Fatalf("income should default to 0, got %d", created.Income)
	}
	created = mustUpsert(t, s, "2024-02-03", core.FieldIncome, 9000)
	if created.Outcome != 0 {
		t.Fatalf("outcome should default to 0, got %d", created.Outcome)
	}

	mustUpsert(t, s, "2024-02-02", core.FieldIncome, 30000)
	for _, r := range mustReadAll(t, s) {
		if r.Date.String() == "2024-02-02" && (r.Income != 30000 || r.Outcome != 12000) {
			t.Fatalf("outcome changed by income write: %+v", r)
		}
	}
}

func TestUpsertZeroOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	mustUpsert(t, s, "2024-02-02", core.FieldIncome, 30000)
	rec := mustUpsert(t, s, "2024-02-02", core.FieldIncome, 0)
	if rec.Income != 0 {
		t.Fatalf("zero must overwrite, got %d", rec.Income)
	}
	if got := mustReadAll(t, s)[0].Income; got != 0 {
		t.Fatalf("stored income %d, want 0", got)
	}
}

func TestUpsertRejectsInvalidInput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, core.NewDate(2024, 1, 1), core.FieldIncome, -10)
	if !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	_, err = s.Upsert(ctx, core.Date{}, core.FieldIncome, 10)
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	_, err = s.Upsert(ctx, core.NewDate(2024, 1, 1), core.Field("balance"), 10)
	if !errors.Is(err, core.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	if recs := mustReadAll(t, s); len(recs) != 0 {
		t.Fatalf("rejected writes created records: %+v", recs)
	}
}

func TestResetTwice(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustUpsert(t, s, "2024-01-10", core.FieldIncome, 50000)
	mustUpsert(t, s, "2024-01-11", core.FieldOutcome, 10000)

	for i := 0; i < 2; i++ {
		if err := s.Reset(ctx); err != nil {
			t.Fatalf("Reset #%d: %v", i+1, err)
		}
		if recs := mustReadAll(t, s); len(recs) != 0 {
			t.Fatalf("store not empty after reset #%d: %+v", i+1, recs)
		}
	}
}

func TestIDsNotReusedAfterReset(t *testing.T) {
	s, _ := newTestStore(t)
	before := mustUpsert(t, s, "2024-01-10", core.FieldIncome, 1)
	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	after := mustUpsert(t, s, "2024-01-10", core.FieldIncome, 1)
	if after.ID <= before.ID {
		t.Fatalf("id reused: %d then %d", before.ID, after.ID)
	}
}

func TestEnsureInitializedKeepsData(t *testing.T) {
	s, path := newTestStore(t)
	mustUpsert(t, s, "2024-01-10", core.FieldIncome, 50000)

	if err := s.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("second EnsureInitialized: %v", err)
	}
	if recs := mustReadAll(t, s); len(recs) != 1 {
		t.Fatalf("EnsureInitialized lost data: %+v", recs)
	}

	// Reopen the same file, as a new process would.
	s.Close()
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("EnsureInitialized after reopen: %v", err)
	}
	recs := mustReadAll(t, reopened)
	if len(recs) != 1 || recs[0].Income != 50000 {
		t.Fatalf("data not durable: %+v", recs)
	}
}

func TestEnsureInitializedAdoptsLegacyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.db")
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw: %v", err)
	}
	_, err = raw.Exec(`CREATE TABLE wallet (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT,
		income INTEGER,
		outcome INTEGER
	);
	INSERT INTO wallet (date, income, outcome) VALUES ('2024-01-09', NULL, 2000);`)
	if err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	raw.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if err := s.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	recs := mustReadAll(t, s)
	if len(recs) != 1 || recs[0].Income != 0 || recs[0].Outcome != 2000 {
		t.Fatalf("legacy row not read back: %+v", recs)
	}

	rec := mustUpsert(t, s, "2024-01-09", core.FieldIncome, 5000)
	if rec.ID != recs[0].ID || rec.Outcome != 2000 {
		t.Fatalf("legacy row not updated in place: %+v", rec)
	}
}

func TestReadAllCorruptDateIsStorageError(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.db.Exec(`INSERT INTO wallet (date, income, outcome) VALUES (?, ?, ?)`, "10/01/2024", 1, 1); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	_, err := s.ReadAll(context.Background())
	if !core.IsStorage(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestOpenFailsOnUnusablePath(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened as a database file.
	s, err := Open(dir)
	if err == nil {
		err = s.EnsureInitialized(context.Background())
		s.Close()
	}
	if !core.IsStorage(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}
