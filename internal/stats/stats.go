// Package stats aggregates ledger values into the monthly figures shown at
// the end of a report.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Point is one dated ledger value: calories of an entry or the price of an expense.
type Point struct {
	Date  time.Time
	Value decimal.Decimal
}

// Monthly summarizes the month of a reference day.
type Monthly struct {
	// Month is the first day of the summarized month.
	Month time.Time
	// PeriodTotal sums the month before the reference day.
	PeriodTotal decimal.Decimal
	// DayTotal sums the reference day alone.
	DayTotal decimal.Decimal
	// Mean and StdDev describe the daily sums before the reference day.
	// Mean is NaN without any prior day, StdDev with fewer than two.
	Mean   float64
	StdDev float64
	// Days is the number of prior days with at least one point.
	Days int
	// Count is the number of points in the month up to and including the reference day.
	Count int
}

// MonthlyStats computes the figures for the month containing ref. Only the
// calendar date of each point and of ref is considered.
func MonthlyStats(points []Point, ref time.Time) Monthly {
	day := dayOf(ref)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)

	m := Monthly{
		Month:       start,
		PeriodTotal: decimal.Zero,
		DayTotal:    decimal.Zero,
	}

	daily := make(map[time.Time]decimal.Decimal)

	for _, p := range points {
		d := dayOf(p.Date)

		if d.Before(start) || d.After(day) {
			continue
		}

		m.Count++

		if d.Equal(day) {
			m.DayTotal = m.DayTotal.Add(p.Value)
			continue
		}

		daily[d] = daily[d].Add(p.Value)
		m.PeriodTotal = m.PeriodTotal.Add(p.Value)
	}

	m.Days = len(daily)
	m.Mean, m.StdDev = meanStdDev(daily)

	return m
}

// meanStdDev returns the mean and the sample standard deviation of the values.
func meanStdDev(daily map[time.Time]decimal.Decimal) (float64, float64) {
	if len(daily) == 0 {
		return math.NaN(), math.NaN()
	}

	values := make([]float64, 0, len(daily))
	for _, v := range daily {
		values = append(values, v.InexactFloat64())
	}

	sort.Float64s(values)

	if len(values) < 2 {
		return stat.Mean(values, nil), math.NaN()
	}

	return stat.MeanStdDev(values, nil)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
