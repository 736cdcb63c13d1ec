// Package ledger defines the port implemented by every ledger backend.
package ledger

import (
	"context"

	"dompet/internal/core"
)

// Store persists at most one core.Record per calendar date.
type Store interface {
	// EnsureInitialized creates the backing structure if it does not exist.
	// It is safe to call on every startup and never destroys existing data.
	EnsureInitialized(ctx context.Context) error

	// ReadAll returns every record in unspecified order. An empty store
	// yields an empty slice and no error.
	ReadAll(ctx context.Context) ([]core.Record, error)

	// Upsert sets one field of the record for date, creating the record with
	// the other field at zero when none exists yet.
	Upsert(ctx context.Context, date core.Date, field core.Field, amount int64) (core.Record, error)

	// Reset deletes every record and reclaims the freed space.
	Reset(ctx context.Context) error
}

// Validate checks upsert arguments. Backends call it before touching storage.
func Validate(date core.Date, field core.Field, amount int64) error {
	if err := date.Validate(); err != nil {
		return err
	}
	if err := field.Validate(); err != nil {
		return err
	}
	return core.ValidateAmount(amount)
}
