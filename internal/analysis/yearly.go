package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"interest-rate-history/internal/storage"
)

// YearlyAverages returns the unweighted mean rate per calendar year, in
// ascending year order. Every record counts once regardless of how long
// its rate was in effect.
func YearlyAverages(records []storage.RateChange) ([]storage.YearlyAverage, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	sums := make(map[int]decimal.Decimal)
	counts := make(map[int]int64)
	for _, rec := range records {
		year := rec.PeriodStart.Year()
		sums[year] = sums[year].Add(rec.Rate)
		counts[year]++
	}

	averages := make([]storage.YearlyAverage, 0, len(sums))
	for year, sum := range sums {
		averages = append(averages, storage.YearlyAverage{
			Year:        year,
			AverageRate: sum.Div(decimal.NewFromInt(counts[year])),
		})
	}

	sort.Slice(averages, func(i, j int) bool {
		return averages[i].Year < averages[j].Year
	})
	return averages, nil
}
