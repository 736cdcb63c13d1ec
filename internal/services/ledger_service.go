package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dompet/internal/core"
	"dompet/internal/ledger"
	"dompet/internal/locale"
	"dompet/internal/log"
	"dompet/internal/metrics"
)

// ErrNotReloaded marks a Save whose write committed but whose re-read failed.
// The returned record is valid in that case.
var ErrNotReloaded = errors.New("saved but not reloaded")

// Snapshot is one full read of the ledger. Stale is set when the read that
// should have produced it failed and these are the last records that loaded.
type Snapshot struct {
	Records  []core.Record
	LoadedAt time.Time
	Stale    bool
}

// Ascending returns the records oldest first.
func (s Snapshot) Ascending() []core.Record {
	return core.AscendingByDate(s.Records)
}

// Descending returns the records most recent first.
func (s Snapshot) Descending() []core.Record {
	return core.DescendingByDate(s.Records)
}

// LedgerService orchestrates the screens' use of a ledger.Store: initialize
// once, re-read everything after every write, and keep the last good read
// around when a later one fails.
type LedgerService struct {
	store   ledger.Store
	metrics *metrics.Metrics
	logger  *log.Logger
	loc     *time.Location
	now     func() time.Time

	mu   sync.Mutex
	last Snapshot
}

// NewLedgerService wires a store. logger, m and loc may be nil.
func NewLedgerService(store ledger.Store, loc *time.Location, logger *log.Logger, m *metrics.Metrics) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		store:   store,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentLedger),
		loc:     loc,
		now:     time.Now,
		last:    Snapshot{Records: []core.Record{}},
	}
}

// Init prepares the backing store. Call once at startup.
func (s *LedgerService) Init(ctx context.Context) error {
	start := time.Now()
	err := s.store.EnsureInitialized(ctx)
	s.metrics.ObserveStore(log.OpInit, start, err)
	if err != nil {
		s.logger.LogError(ctx, "Failed to initialize ledger", err, log.OpInit, nil)
		return fmt.Errorf("initialize ledger: %w", err)
	}
	return nil
}

// Load reads every record. On failure it returns the last snapshot that
// loaded, marked stale, together with the error.
func (s *LedgerService) Load(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	records, err := s.store.ReadAll(ctx)
	s.metrics.ObserveStore(log.OpRead, start, err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.LogError(ctx, "Failed to read ledger", err, log.OpRead, nil)
		stale := s.last
		stale.Stale = true
		return stale, fmt.Errorf("read ledger: %w", err)
	}

	s.last = Snapshot{Records: records, LoadedAt: s.now()}
	s.metrics.SetRecords(len(records))
	return s.last, nil
}

// Last returns the most recent snapshot without touching the store.
func (s *LedgerService) Last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Save sets one field for date and re-reads the ledger. A rejected or failed
// write returns the last known snapshot; a ValidationError leaves it fresh.
// When only the re-read fails the error wraps ErrNotReloaded and rec holds
// the saved record.
func (s *LedgerService) Save(ctx context.Context, date core.Date, field core.Field, amount int64) (core.Record, Snapshot, error) {
	fields := log.NewFields().WithEntry(date, field, amount)

	start := time.Now()
	rec, err := s.store.Upsert(ctx, date, field, amount)
	if core.IsValidation(err) {
		// Rejected before storage was touched.
		s.logger.WarnContext(ctx, "Rejected ledger entry", fields.WithError(err).ToSlice()...)
		return core.Record{}, s.Last(), err
	}
	s.metrics.ObserveStore(log.OpUpsert, start, err)
	if err != nil {
		s.logger.LogError(ctx, "Failed to save ledger entry", err, log.OpUpsert, fields)
		snap := s.Last()
		snap.Stale = true
		return core.Record{}, snap, fmt.Errorf("save %s: %w", field, err)
	}

	s.logger.InfoContext(ctx, "Ledger entry saved", fields.WithRecord(rec).ToSlice()...)

	snap, err := s.Load(ctx)
	if err != nil {
		return rec, snap, fmt.Errorf("%w: %w", ErrNotReloaded, err)
	}
	return rec, snap, nil
}

// Reset deletes every record and re-reads the (now empty) ledger.
func (s *LedgerService) Reset(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	err := s.store.Reset(ctx)
	s.metrics.ObserveStore(log.OpReset, start, err)
	if err != nil {
		s.logger.LogError(ctx, "Failed to reset ledger", err, log.OpReset, nil)
		snap := s.Last()
		snap.Stale = true
		return snap, fmt.Errorf("reset ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger reset")
	return s.Load(ctx)
}

// Chart builds the chart series for snap, labelled with Indonesian weekday
// abbreviations.
func (s *LedgerService) Chart(snap Snapshot) core.ChartSeries {
	return core.ToChartSeries(snap.Ascending(), s.Today(), locale.WeekdayShort)
}

// Today is the current calendar date in the configured time zone.
func (s *LedgerService) Today() core.Date {
	return core.DateOf(s.now().In(s.loc))
}

// Location returns the configured time zone.
func (s *LedgerService) Location() *time.Location {
	return s.loc
}
