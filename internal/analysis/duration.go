package analysis

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"interest-rate-history/internal/storage"
)

const secondsPerDay = 24 * 60 * 60

// RatePeriod is the half-open span [Start, End) during which Rate was in effect.
type RatePeriod struct {
	Start time.Time
	End   time.Time
	Rate  decimal.Decimal
	Days  int
}

// RateTotal accumulates every period of one distinct rate value.
type RateTotal struct {
	Rate        decimal.Decimal
	Days        int
	WeightedSum decimal.Decimal
}

// DurationReport is the outcome of a duration-weighted aggregation.
type DurationReport struct {
	Periods         []RatePeriod
	Breakdown       []RateTotal
	TotalDays       int
	WeightedAverage decimal.Decimal
	EvaluatedAt     time.Time
}

// Durations computes how many whole days each distinct rate was in effect
// and the day-weighted average rate. The final record stays in effect until
// now, so its day count depends on when the report runs.
//
// Records must already be chronological; equal starts are accepted and
// yield zero-day periods.
func Durations(records []storage.RateChange, now time.Time) (DurationReport, error) {
	if len(records) == 0 {
		return DurationReport{}, ErrNoData
	}

	periods, err := buildPeriods(records, now)
	if err != nil {
		return DurationReport{}, err
	}

	totals := make(map[string]*RateTotal)
	order := make([]string, 0)
	totalDays := 0
	weightedSum := decimal.Zero

	for _, p := range periods {
		// String drops trailing zeros, so 6.0 and 6.00 share a bucket.
		key := p.Rate.String()
		total, ok := totals[key]
		if !ok {
			total = &RateTotal{Rate: p.Rate, WeightedSum: decimal.Zero}
			totals[key] = total
			order = append(order, key)
		}

		weight := p.Rate.Mul(decimal.NewFromInt(int64(p.Days)))
		total.Days += p.Days
		total.WeightedSum = total.WeightedSum.Add(weight)

		totalDays += p.Days
		weightedSum = weightedSum.Add(weight)
	}

	if totalDays == 0 {
		return DurationReport{}, fmt.Errorf("%w: rates were in effect for zero days", ErrNoData)
	}

	breakdown := make([]RateTotal, 0, len(order))
	for _, key := range order {
		breakdown = append(breakdown, *totals[key])
	}
	sortBreakdown(breakdown)

	return DurationReport{
		Periods:         periods,
		Breakdown:       breakdown,
		TotalDays:       totalDays,
		WeightedAverage: weightedSum.Div(decimal.NewFromInt(int64(totalDays))),
		EvaluatedAt:     now,
	}, nil
}

func buildPeriods(records []storage.RateChange, now time.Time) ([]RatePeriod, error) {
	periods := make([]RatePeriod, 0, len(records))
	for i, rec := range records {
		end := now
		if i+1 < len(records) {
			end = records[i+1].PeriodStart
		}

		if end.Before(rec.PeriodStart) {
			if i+1 < len(records) {
				return nil, fmt.Errorf("%w: record %d (%s) precedes record %d (%s)",
					ErrOutOfOrder, i+2, records[i+1].YearMonth(), i+1, rec.YearMonth())
			}
			return nil, fmt.Errorf("%w: evaluation time %s precedes last record %s",
				ErrOutOfOrder, now.Format(time.RFC3339), rec.YearMonth())
		}

		periods = append(periods, RatePeriod{
			Start: rec.PeriodStart,
			End:   end,
			Rate:  rec.Rate,
			Days:  wholeDays(rec.PeriodStart, end),
		})
	}
	return periods, nil
}

// wholeDays truncates the elapsed time to whole days; the partial day is
// dropped. Counting from Unix seconds keeps spans longer than the
// time.Duration range exact.
func wholeDays(start, end time.Time) int {
	return int((end.Unix() - start.Unix()) / secondsPerDay)
}

// sortBreakdown orders by days descending, then rate ascending.
func sortBreakdown(rows []RateTotal) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Days != rows[j].Days {
			return rows[i].Days > rows[j].Days
		}
		return rows[i].Rate.LessThan(rows[j].Rate)
	})
}

// WriteDurationReport prints the breakdown table and the weighted average,
// with rates shown to places fractional digits.
func WriteDurationReport(w io.Writer, report DurationReport, places int32) error {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(writer, "Rate\tDays\t")
	fmt.Fprintln(writer, "----\t----\t")
	for _, row := range report.Breakdown {
		fmt.Fprintf(writer, "%s\t%d\t\n", row.Rate.StringFixed(places), row.Days)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nWeighted average interest rate across the whole time: %s%%\n",
		report.WeightedAverage.StringFixed(places))
	return err
}
