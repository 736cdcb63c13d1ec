package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dompet/internal/core"
	"dompet/internal/ledger"

	_ "modernc.org/sqlite"
)

const tableName = "wallet"

// errSchemaMissing marks the window between finding no wallet table and
// finishing its creation. EnsureInitialized resolves it before returning.
var errSchemaMissing = errors.New("wallet table missing")

// MigrateFunc creates or updates the schema.
type MigrateFunc func() error

// SQLiteStore is the ledger.Store backed by a local SQLite file. It owns a
// single connection for its whole lifetime.
type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
	migrate MigrateFunc
}

var _ ledger.Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database file at dbPath. The schema is
// created by EnsureInitialized, not here.
func Open(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &core.StorageError{Op: "open", Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, &core.StorageError{Op: "open", Err: fmt.Errorf("open sqlite database: %w", err)}
	}
	// One connection keeps every call sequential: a read issued after a
	// write has returned always sees it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &core.StorageError{Op: "open", Err: fmt.Errorf("ping database: %w", err)}
	}

	return NewSQLiteStore(db, func() error { return RunMigrations(dbPath) }), nil
}

// dsn sets the pragmas in the connection string so every connection the pool
// opens gets them, not only the first.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// NewSQLiteStore wraps an already opened handle. migrate may be nil when the
// schema is managed elsewhere.
func NewSQLiteStore(db *sql.DB, migrate MigrateFunc) *SQLiteStore {
	if migrate == nil {
		migrate = func() error { return nil }
	}
	return &SQLiteStore{
		db:      db,
		queries: New(db),
		migrate: migrate,
	}
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// EnsureInitialized implements ledger.Store
func (s *SQLiteStore) EnsureInitialized(ctx context.Context) error {
	err := s.checkSchema(ctx)
	missing := errors.Is(err, errSchemaMissing)
	if err != nil && !missing {
		return &core.StorageError{Op: "check schema", Err: err}
	}

	// Also run on an existing table so the unique date index is added to
	// databases created before it existed.
	if err := s.migrate(); err != nil {
		return &core.StorageError{Op: "create schema", Err: err}
	}

	if missing {
		if err := s.checkSchema(ctx); err != nil {
			return &core.StorageError{Op: "create schema", Err: err}
		}
		slog.InfoContext(ctx, "Ledger table created", "table", tableName)
	}
	return nil
}

func (s *SQLiteStore) checkSchema(ctx context.Context) error {
	ok, err := s.queries.TableExists(ctx, tableName)
	if err != nil {
		return fmt.Errorf("look up %s table: %w", tableName, err)
	}
	if !ok {
		return errSchemaMissing
	}
	return nil
}

// ReadAll implements ledger.Store
func (s *SQLiteStore) ReadAll(ctx context.Context) ([]core.Record, error) {
	rows, err := s.queries.ListRecords(ctx)
	if err != nil {
		return nil, &core.StorageError{Op: "read", Err: fmt.Errorf("list records: %w", err)}
	}

	records := make([]core.Record, 0, len(rows))
	for _, row := range rows {
		date, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, &core.StorageError{Op: "read", Err: fmt.Errorf("record %d: %w", row.ID, err)}
		}
		records = append(records, core.Record{
			ID:      row.ID,
			Date:    date,
			Income:  row.Income,
			Outcome: row.Outcome,
		})
	}
	return records, nil
}

// Upsert implements ledger.Store. Lookup and write share one transaction,
// so a failure leaves no partial record behind.
func (s *SQLiteStore) Upsert(ctx context.Context, date core.Date, field core.Field, amount int64) (core.Record, error) {
	if err := ledger.Validate(date, field, amount); err != nil {
		return core.Record{}, err
	}
	key := date.String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, &core.StorageError{Op: "upsert", Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback()
	q := s.queries.WithTx(tx)

	var rec core.Record
	row, err := q.GetRecordByDate(ctx, key)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		rec = core.Record{Date: date}.WithAmount(field, amount)
		id, err := q.CreateRecord(ctx, CreateRecordParams{
			Date:    key,
			Income:  rec.Income,
			Outcome: rec.Outcome,
		})
		if err != nil {
			return core.Record{}, &core.StorageError{Op: "upsert", Err: fmt.Errorf("create record for %s: %w", key, err)}
		}
		rec.ID = id
	case err != nil:
		return core.Record{}, &core.StorageError{Op: "upsert", Err: fmt.Errorf("get record for %s: %w", key, err)}
	default:
		rec = core.Record{ID: row.ID, Date: date, Income: row.Income, Outcome: row.Outcome}.WithAmount(field, amount)
		if field == core.FieldIncome {
			err = q.UpdateIncome(ctx, amount, key)
		} else {
			err = q.UpdateOutcome(ctx, amount, key)
		}
		if err != nil {
			return core.Record{}, &core.StorageError{Op: "upsert", Err: fmt.Errorf("update %s for %s: %w", field, key, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Record{}, &core.StorageError{Op: "upsert", Err: fmt.Errorf("commit: %w", err)}
	}

	slog.DebugContext(ctx, "Ledger record saved",
		"id", rec.ID,
		"date", key,
		"field", field.String(),
		"amount", amount)

	return rec, nil
}

// Reset implements ledger.Store
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if err := s.queries.DeleteAllRecords(ctx); err != nil {
		return &core.StorageError{Op: "reset", Err: fmt.Errorf("delete records: %w", err)}
	}
	if err := s.queries.Vacuum(ctx); err != nil {
		return &core.StorageError{Op: "reset", Err: fmt.Errorf("vacuum: %w", err)}
	}
	slog.InfoContext(ctx, "Ledger reset", "table", tableName)
	return nil
}
