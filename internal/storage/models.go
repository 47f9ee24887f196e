package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateChange is a reference rate that took effect at PeriodStart and stays in
// effect until the next record's PeriodStart.
type RateChange struct {
	PeriodStart time.Time
	Rate        decimal.Decimal
}

// YearMonth formats the period start as YYYY-MM.
func (r RateChange) YearMonth() string {
	return r.PeriodStart.Format(yearMonthLayout)
}

// YearlyAverage is the unweighted mean of all rate changes within a year.
type YearlyAverage struct {
	Year        int
	AverageRate decimal.Decimal
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
