package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dompet/internal/core"
)

func TestMemoryStoreUpsertAndReadAll(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.EnsureInitialized(ctx); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	recs, err := s.ReadAll(ctx)
	if err != nil || recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v err=%v", recs, err)
	}

	d := core.NewDate(2024, 1, 10)
	first, err := s.Upsert(ctx, d, core.FieldIncome, 50000)
	if err != nil || first.Outcome != 0 {
		t.Fatalf("unexpected upsert: %+v err=%v", first, err)
	}
	second, err := s.Upsert(ctx, d, core.FieldOutcome, 20000)
	if err != nil || second.ID != first.ID || second.Income != 50000 || second.Outcome != 20000 {
		t.Fatalf("unexpected upsert: %+v err=%v", second, err)
	}

	recs, _ = s.ReadAll(ctx)
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
}

func TestMemoryStoreRejectsInvalidInput(t *testing.T) {
	s := New()
	_, err := s.Upsert(context.Background(), core.NewDate(2024, 1, 10), core.FieldIncome, -1)
	if !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	_, err = s.Upsert(context.Background(), core.Date{}, core.FieldIncome, 1)
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	recs, _ := s.ReadAll(context.Background())
	if len(recs) != 0 {
		t.Fatalf("rejected writes must not create records")
	}
}

func TestMemoryStoreResetKeepsIDsIncreasing(t *testing.T) {
	ctx := context.Background()
	s := New()
	r1, _ := s.Upsert(ctx, core.NewDate(2024, 1, 10), core.FieldIncome, 1)
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	r2, _ := s.Upsert(ctx, core.NewDate(2024, 1, 10), core.FieldIncome, 1)
	if r2.ID <= r1.ID {
		t.Fatalf("id reused after reset: %d then %d", r1.ID, r2.ID)
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty
	s := NewFromFile(filepath.Join(dir, "missing.txt"))
	if recs, _ := s.ReadAll(context.Background()); len(recs) != 0 {
		t.Fatalf("expected empty store when file missing")
	}

	path := filepath.Join(dir, "seed_records.txt")
	content := "# date income outcome\n2024-01-10 50000 20000\n\nbad line\n2024-01-11 0 5000\n2024-01-10 75000 20000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFile(path)
	recs, _ := s.ReadAll(context.Background())
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %+v", recs)
	}
	if recs[0].Income != 75000 || recs[0].Outcome != 20000 {
		t.Fatalf("duplicate date should overwrite: %+v", recs[0])
	}
}

func TestNewFromFileSkipsNegativeAmounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed_records.txt")
	content := "2024-01-10 50000 -20000\n2024-01-11 -1 5000\n2024-01-12 1000 2000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	recs, _ := NewFromFile(path).ReadAll(context.Background())
	if len(recs) != 1 {
		t.Fatalf("lines with a negative amount should be skipped whole, got %+v", recs)
	}
	if got := recs[0]; got.Date.String() != "2024-01-12" || got.Income != 1000 || got.Outcome != 2000 || got.ID != 1 {
		t.Fatalf("unexpected record %+v", got)
	}
}
