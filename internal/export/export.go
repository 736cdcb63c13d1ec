// Package export writes the ledger as a spreadsheet download, most recent
// date first.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"dompet/internal/core"
	"dompet/internal/locale"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SheetName is the worksheet the XLSX export writes to.
const SheetName = "Dompet"

var ErrUnknownFormat = errors.New("unknown export format")

// Headers are the column titles shared by both formats.
func Headers() []string {
	code := locale.CurrencyCode()
	return []string{
		"Tanggal",
		"Hari",
		"Pemasukan (" + code + ")",
		"Pengeluaran (" + code + ")",
		"Selisih (" + code + ")",
	}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q: must be xlsx or csv", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type for the download.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename names the download after the day it was produced.
func (f Format) Filename(now time.Time) string {
	return fmt.Sprintf("dompet_%s.%s", now.Format("20060102"), f)
}

// Write dispatches on f.
func Write(w io.Writer, f Format, records []core.Record) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, string(f))
	}
}

// WriteXLSX writes one worksheet with a header row and one row per record.
// Amounts are numeric cells formatted with thousands separators.
func WriteXLSX(w io.Writer, records []core.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, 0, len(Headers()))
	for _, h := range Headers() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	numFmt := "#,##0"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	for i, r := range core.DescendingByDate(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Date.String(), locale.Weekday(r.Date), r.Income, r.Outcome, r.Income - r.Outcome}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		if err := f.SetCellStyle(SheetName, fmt.Sprintf("C%d", i+2), fmt.Sprintf("E%d", i+2), amountStyle); err != nil {
			return fmt.Errorf("apply amount style: %w", err)
		}
	}

	f.SetColWidth(SheetName, "A", "A", 12)
	f.SetColWidth(SheetName, "B", "B", 10)
	f.SetColWidth(SheetName, "C", "E", 18)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteCSV writes the same columns as WriteXLSX with plain integer amounts.
func WriteCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range core.DescendingByDate(records) {
		row := []string{
			r.Date.String(),
			locale.Weekday(r.Date),
			strconv.FormatInt(r.Income, 10),
			strconv.FormatInt(r.Outcome, 10),
			strconv.FormatInt(r.Income-r.Outcome, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
