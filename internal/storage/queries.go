package storage

import (
	"context"
	"database/sql"
	"errors"
)

// All statements take their values as bound parameters.
const (
	tableExists = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`

	listRecords = `SELECT id, COALESCE(date, ''), COALESCE(income, 0), COALESCE(outcome, 0)
FROM wallet
ORDER BY id`

	getRecordByDate = `SELECT id, COALESCE(income, 0), COALESCE(outcome, 0) FROM wallet WHERE date = ?`

	createRecord = `INSERT INTO wallet (date, income, outcome) VALUES (?, ?, ?)`

	updateIncome = `UPDATE wallet SET income = ? WHERE date = ?`

	updateOutcome = `UPDATE wallet SET outcome = ? WHERE date = ?`

	deleteAllRecords = `DELETE FROM wallet`

	vacuum = `VACUUM`
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// WalletRow mirrors one row of the wallet table.
type WalletRow struct {
	ID      int64
	Date    string
	Income  int64
	Outcome int64
}

func (q *Queries) TableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := q.db.QueryRowContext(ctx, tableExists, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (q *Queries) ListRecords(ctx context.Context) ([]WalletRow, error) {
	rows, err := q.db.QueryContext(ctx, listRecords)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []WalletRow{}
	for rows.Next() {
		var i WalletRow
		if err := rows.Scan(&i.ID, &i.Date, &i.Income, &i.Outcome); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) GetRecordByDate(ctx context.Context, date string) (WalletRow, error) {
	i := WalletRow{Date: date}
	err := q.db.QueryRowContext(ctx, getRecordByDate, date).Scan(&i.ID, &i.Income, &i.Outcome)
	return i, err
}

type CreateRecordParams struct {
	Date    string
	Income  int64
	Outcome int64
}

func (q *Queries) CreateRecord(ctx context.Context, arg CreateRecordParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createRecord, arg.Date, arg.Income, arg.Outcome)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateIncome(ctx context.Context, amount int64, date string) error {
	_, err := q.db.ExecContext(ctx, updateIncome, amount, date)
	return err
}

func (q *Queries) UpdateOutcome(ctx context.Context, amount int64, date string) error {
	_, err := q.db.ExecContext(ctx, updateOutcome, amount, date)
	return err
}

func (q *Queries) DeleteAllRecords(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllRecords)
	return err
}

// Vacuum must run outside a transaction.
func (q *Queries) Vacuum(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, vacuum)
	return err
}
