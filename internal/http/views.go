package http

import (
	"fmt"
	"html/template"
	"strings"

	"dompet/internal/core"
	"dompet/internal/locale"
)

// entryKind binds a ledger field to its screen texts.
type entryKind struct {
	Field   core.Field
	Path    string
	Title   string
	Saved   string
	Sign    string
	CSSName string
}

var (
	entryIncome = entryKind{
		Field:   core.FieldIncome,
		Path:    "/income",
		Title:   "Pemasukan",
		Saved:   "Pemasukan tersimpan",
		Sign:    "+",
		CSSName: "income",
	}
	entryOutcome = entryKind{
		Field:   core.FieldOutcome,
		Path:    "/outcome",
		Title:   "Pengeluaran",
		Saved:   "Pengeluaran tersimpan",
		Sign:    "-",
		CSSName: "outcome",
	}
)

var templateFuncs = template.FuncMap{
	"rupiah": locale.FormatRupiah,
}

// ledgerLine is one date on the home screen list.
type ledgerLine struct {
	Day     string
	Date    string
	Income  string
	Outcome string
}

func ledgerLines(descending []core.Record) []ledgerLine {
	lines := make([]ledgerLine, 0, len(descending))
	for _, r := range descending {
		day, date := locale.SplitLongDate(r.Date)
		line := ledgerLine{Day: day + ",", Date: date}
		if r.Income > 0 || r.Outcome == 0 {
			line.Income = "+" + locale.FormatRupiah(r.Income)
		}
		if r.Outcome > 0 {
			line.Outcome = "-" + locale.FormatRupiah(r.Outcome)
		}
		lines = append(lines, line)
	}
	return lines
}

// entryLine is one existing value on an entry screen.
type entryLine struct {
	Date   string
	Amount string
}

func entryLines(descending []core.Record, kind entryKind) []entryLine {
	lines := make([]entryLine, 0, len(descending))
	for _, r := range descending {
		amount := r.Amount(kind.Field)
		if amount == 0 {
			continue
		}
		lines = append(lines, entryLine{
			Date:   locale.LongDate(r.Date),
			Amount: kind.Sign + locale.FormatRupiah(amount),
		})
	}
	return lines
}

const (
	chartWidth   = 640
	chartHeight  = 240
	chartPadLeft = 72
	chartPad     = 24
)

type chartLabel struct {
	X, Y float64
	Text string
}

// chartView is the chart series laid out as SVG coordinates.
type chartView struct {
	Width, Height  int
	Left, Right    float64
	Top, Bottom    float64
	IncomePoints   string
	OutcomePoints  string
	IncomeMarkers  []chartLabel
	OutcomeMarkers []chartLabel
	XLabels        []chartLabel
	YLabels        []chartLabel
}

func buildChart(series core.ChartSeries) chartView {
	v := chartView{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPadLeft,
		Right:  chartWidth - chartPad,
		Top:    chartPad,
		Bottom: chartHeight - chartPad,
	}

	maxY := 0.0
	for i := 0; i < series.Len(); i++ {
		maxY = max(maxY, series.Income[i], series.Outcome[i])
	}
	if maxY == 0 {
		maxY = 1
	}

	x := func(i int) float64 {
		if series.Len() == 1 {
			return (v.Left + v.Right) / 2
		}
		return v.Left + float64(i)*(v.Right-v.Left)/float64(series.Len()-1)
	}
	y := func(val float64) float64 {
		return v.Bottom - val/maxY*(v.Bottom-v.Top)
	}

	var inc, out strings.Builder
	for i := 0; i < series.Len(); i++ {
		xi := x(i)
		fmt.Fprintf(&inc, "%.1f,%.1f ", xi, y(series.Income[i]))
		fmt.Fprintf(&out, "%.1f,%.1f ", xi, y(series.Outcome[i]))
		v.IncomeMarkers = append(v.IncomeMarkers, chartLabel{X: xi, Y: y(series.Income[i])})
		v.OutcomeMarkers = append(v.OutcomeMarkers, chartLabel{X: xi, Y: y(series.Outcome[i])})
		v.XLabels = append(v.XLabels, chartLabel{X: xi, Y: v.Bottom + 16, Text: series.Labels[i]})
	}
	v.IncomePoints = strings.TrimSpace(inc.String())
	v.OutcomePoints = strings.TrimSpace(out.String())

	for _, frac := range []float64{0, 0.5, 1} {
		val := maxY * frac
		v.YLabels = append(v.YLabels, chartLabel{X: v.Left - 8, Y: y(val) + 4, Text: locale.FormatThousands(val)})
	}
	return v
}

// recordJSON is the wire form of core.Record.
type recordJSON struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Income  int64  `json:"income"`
	Outcome int64  `json:"outcome"`
}

func toRecordJSON(records []core.Record) []recordJSON {
	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, recordJSON{ID: r.ID, Date: r.Date.String(), Income: r.Income, Outcome: r.Outcome})
	}
	return out
}
