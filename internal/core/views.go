package core

import "slices"

// DisplayDivisor scales amounts for the chart's y axis (values shown in
// thousands of Rupiah). It never applies to stored or listed amounts.
const DisplayDivisor = 1000

// ChartSeries holds three parallel series of equal length.
type ChartSeries struct {
	Labels  []string  `json:"labels"`
	Income  []float64 `json:"income"`
	Outcome []float64 `json:"outcome"`
}

// Len returns the number of points in the series.
func (c ChartSeries) Len() int {
	return len(c.Labels)
}

// AscendingByDate returns a copy of records ordered oldest first.
func AscendingByDate(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// DescendingByDate returns a copy of records ordered most recent first.
func DescendingByDate(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// ToChartSeries turns ascending records into chart points. label renders a
// date as an abbreviated weekday. With no records the series still has one
// zero point labelled with today, so there is always something to draw.
func ToChartSeries(records []Record, today Date, label func(Date) string) ChartSeries {
	if len(records) == 0 {
		return ChartSeries{
			Labels:  []string{label(today)},
			Income:  []float64{0},
			Outcome: []float64{0},
		}
	}

	series := ChartSeries{
		Labels:  make([]string, 0, len(records)),
		Income:  make([]float64, 0, len(records)),
		Outcome: make([]float64, 0, len(records)),
	}
	for _, r := range records {
		series.Labels = append(series.Labels, label(r.Date))
		series.Income = append(series.Income, Scale(r.Income))
		series.Outcome = append(series.Outcome, Scale(r.Outcome))
	}
	return series
}

// Scale applies the display divisor to a whole Rupiah amount.
func Scale(amount int64) float64 {
	return float64(amount) / DisplayDivisor
}
