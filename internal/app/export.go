package app

import (
	"context"
	"fmt"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"interest-rate-history/internal/analysis"
	"interest-rate-history/internal/config"
	"interest-rate-history/internal/storage"
)

// Export renders the reference rate history and the yearly averages as PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	store := a.openStore(opts.RecordsPath, "")
	records, err := store.LoadRateChanges()
	if err != nil {
		return err
	}

	averages, err := analysis.YearlyAverages(records)
	if err != nil {
		return err
	}

	path := config.ResolvePath(opts.PNGPath, a.Config.Export.PNGPath)
	if err := writeHistoryPNG(path, records, averages, a.now(), a.Config.Export.Width, a.Config.Export.Height); err != nil {
		return err
	}

	a.Logger.Info().Int("records", len(records)).Str("path", path).Msg("chart exported")
	fmt.Fprintf(a.out(), "Chart saved to %s\n", path)
	return nil
}

// stepSeries turns rate changes into a step line ending at until.
func stepSeries(records []storage.RateChange, until time.Time) ([]time.Time, []float64) {
	x := make([]time.Time, 0, 2*len(records))
	y := make([]float64, 0, 2*len(records))
	for i, rec := range records {
		end := until
		if i+1 < len(records) {
			end = records[i+1].PeriodStart
		}
		rate := rec.Rate.InexactFloat64()
		x = append(x, rec.PeriodStart, end)
		y = append(y, rate, rate)
	}
	return x, y
}

// yearlySeries places each yearly average at mid-year.
func yearlySeries(averages []storage.YearlyAverage) ([]time.Time, []float64) {
	x := make([]time.Time, len(averages))
	y := make([]float64, len(averages))
	for i, avg := range averages {
		x[i] = time.Date(avg.Year, time.July, 1, 0, 0, 0, 0, time.UTC)
		y[i] = avg.AverageRate.InexactFloat64()
	}
	return x, y
}

func writeHistoryPNG(path string, records []storage.RateChange, averages []storage.YearlyAverage, until time.Time, width, height int) error {
	rateX, rateY := stepSeries(records, until)
	avgX, avgY := yearlySeries(averages)

	rateFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006"),
		},
		YAxis: chart.YAxis{
			Name:           "Reference rate (%)",
			ValueFormatter: rateFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Reference rate",
				XValues: rateX,
				YValues: rateY,
			},
			chart.TimeSeries{
				Name:    "Yearly average",
				XValues: avgX,
				YValues: avgY,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return storage.WriteFileAtomic(path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
}
