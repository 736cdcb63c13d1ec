// Package locale renders ledger dates and amounts for Indonesian (id-ID)
// readers. It only formats; parsing and normalization live in core.
package locale

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dompet/internal/core"
)

// Currency is the one currency the ledger records.
var Currency = currency.IDR

var (
	weekdays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

	weekdaysShort = [...]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"}

	months = [...]string{
		"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember",
	}
)

var printer = message.NewPrinter(language.Indonesian)

// WeekdayShort returns the abbreviated weekday name, e.g. "Rab".
func WeekdayShort(d core.Date) string {
	return weekdaysShort[d.Weekday()]
}

// Weekday returns the full weekday name, e.g. "Rabu".
func Weekday(d core.Date) string {
	return weekdays[d.Weekday()]
}

// LongDate returns "Rabu, 10 Januari 2024".
func LongDate(d core.Date) string {
	day, date := SplitLongDate(d)
	return day + ", " + date
}

// SplitLongDate returns the two halves of LongDate: "Rabu" and
// "10 Januari 2024".
func SplitLongDate(d core.Date) (day, date string) {
	return Weekday(d), fmt.Sprintf("%d %s %d", d.Day(), months[d.Month()-1], d.Year())
}

// FormatNumber groups thousands the id-ID way: 1500000 -> "1.500.000".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatRupiah renders a whole amount with the currency symbol and no
// decimals: 150000 -> "Rp 150.000".
func FormatRupiah(amount int64) string {
	if amount < 0 {
		return "-Rp " + FormatNumber(-amount)
	}
	return "Rp " + FormatNumber(amount)
}

// FormatThousands renders a chart axis value with the "rb" (ribu) suffix.
func FormatThousands(v float64) string {
	return "Rp " + printer.Sprintf("%.0f", v) + "rb"
}

// CurrencyCode returns the ISO 4217 code, "IDR".
func CurrencyCode() string {
	return Currency.String()
}
