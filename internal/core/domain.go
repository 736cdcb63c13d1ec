package core

import (
	"strings"
	"time"
)

// DateLayout is the canonical storage form of a ledger date. Rows are looked
// up by exact string match on this form, so it must never change.
const DateLayout = "2006-01-02"

const (
	FieldIncome  Field = "income"
	FieldOutcome Field = "outcome"
)

type (
	// Field names one of the two amounts held by a Record.
	Field string

	// Date is a calendar date without time of day, always held at midnight UTC.
	Date struct {
		time.Time
	}

	// Record is one calendar date's income/outcome pair, in whole Rupiah.
	Record struct {
		ID      int64
		Date    Date
		Income  int64
		Outcome int64
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar date in loc. A nil loc means UTC.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate parses a canonical YYYY-MM-DD string. Surrounding whitespace is
// ignored; anything else that is not a real calendar date is rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Value: s, Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	if h, m, s := d.Clock(); h != 0 || m != 0 || s != 0 || d.Nanosecond() != 0 {
		return &ValidationError{Field: "date", Value: d.Time.String(), Err: ErrInvalidDate}
	}
	return nil
}

// Compare orders dates chronologically, like time.Time.Compare.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// ParseField maps "income" or "outcome" (case-insensitive) to a Field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

func (f Field) Validate() error {
	switch f {
	case FieldIncome, FieldOutcome:
		return nil
	default:
		return &ValidationError{Field: "field", Value: string(f), Err: ErrInvalidField}
	}
}

func (f Field) String() string {
	return string(f)
}

// ValidateAmount rejects negative amounts. Zero is a valid amount: it is how
// a mistaken entry gets corrected.
func ValidateAmount(amount int64) error {
	if amount < 0 {
		return &ValidationError{Field: "amount", Err: ErrNegativeAmount}
	}
	return nil
}

// Amount returns the value of the named field.
func (r Record) Amount(f Field) int64 {
	if f == FieldIncome {
		return r.Income
	}
	return r.Outcome
}

// WithAmount returns a copy of r with only the named field replaced.
func (r Record) WithAmount(f Field, amount int64) Record {
	switch f {
	case FieldIncome:
		r.Income = amount
	case FieldOutcome:
		r.Outcome = amount
	}
	return r
}
