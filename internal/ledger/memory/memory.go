package memory

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"dompet/internal/core"
	"dompet/internal/ledger"
)

// Store keeps records in process memory. Nothing survives a restart.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Record
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

// NewFromFile seeds a store from lines of "YYYY-MM-DD income outcome".
// Blank lines, comments and malformed lines are skipped; a missing file
// yields an empty store.
func NewFromFile(path string) *Store {
	s := New()
	for _, line := range readLines(path) {
		parts := strings.Fields(line)
		if len(parts) != 3 {
			continue
		}
		date, err := core.ParseDate(parts[0])
		if err != nil {
			continue
		}
		income, err1 := strconv.ParseInt(parts[1], 10, 64)
		outcome, err2 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if core.ValidateAmount(income) != nil || core.ValidateAmount(outcome) != nil {
			continue
		}
		s.seed(date, income, outcome)
	}
	return s
}

// seed sets both amounts of date at once. Callers validate first.
func (s *Store) seed(date core.Date, income, outcome int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := date.String()
	for i, r := range s.items {
		if r.Date.String() == key {
			s.items[i].Income, s.items[i].Outcome = income, outcome
			return
		}
	}
	s.items = append(s.items, core.Record{ID: s.nextID, Date: date, Income: income, Outcome: outcome})
	s.nextID++
}

// EnsureInitialized has nothing to create.
func (s *Store) EnsureInitialized(_ context.Context) error {
	return nil
}

func (s *Store) ReadAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record{}, s.items...), nil
}

func (s *Store) Upsert(_ context.Context, date core.Date, field core.Field, amount int64) (core.Record, error) {
	if err := ledger.Validate(date, field, amount); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := date.String()
	for i, r := range s.items {
		if r.Date.String() == key {
			s.items[i] = r.WithAmount(field, amount)
			return s.items[i], nil
		}
	}
	rec := core.Record{ID: s.nextID, Date: date}.WithAmount(field, amount)
	s.nextID++
	s.items = append(s.items, rec)
	return rec, nil
}

// Reset clears all records. Ids keep increasing afterwards.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
