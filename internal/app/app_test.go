package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interest-rate-history/internal/analysis"
	"interest-rate-history/internal/config"
	"interest-rate-history/internal/fetcher"
	"interest-rate-history/internal/storage"
)

const archive = `<?xml version="1.0" encoding="UTF-8"?>
<stopy_procentowe_archiwum>
  <pozycje obowiazuje_od="2022-05-06">
    <pozycja id="ref" oprocentowanie="5,25"/>
  </pozycje>
  <pozycje obowiazuje_od="2022-11-01">
    <pozycja id="lom" oprocentowanie="7,25"/>
  </pozycje>
  <pozycje obowiazuje_od="2023-01-01">
    <pozycja id="ref" oprocentowanie="6,00"/>
  </pozycje>
  <pozycje obowiazuje_od="2023-07-01">
    <pozycja id="ref" oprocentowanie="6,75"/>
  </pozycje>
</stopy_procentowe_archiwum>`

func testApp(t *testing.T, dir string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		Source: config.SourceConfig{URL: "http://127.0.0.1:0", ReferenceID: "ref"},
		Store: config.StoreConfig{
			RecordsPath:  filepath.Join(dir, "interest_rates.csv"),
			YearlyPath:   filepath.Join(dir, "interest_rates_yearly_avg.csv"),
			YearlyPlaces: 4,
		},
		Report: config.ReportConfig{RatePlaces: 2},
		Export: config.ExportConfig{PNGPath: filepath.Join(dir, "chart.png"), Width: 640, Height: 360},
	}
	var out bytes.Buffer
	a := NewApp(cfg, zerolog.Nop())
	a.Out = &out
	a.Now = func() time.Time { return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC) }
	return a, &out
}

func writeStore(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIngest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(archive))
	}))
	defer srv.Close()

	dir := t.TempDir()
	a, out := testApp(t, dir)
	a.Config.Source.URL = srv.URL

	require.NoError(t, a.Ingest(context.Background(), IngestOptions{}))
	assert.Contains(t, out.String(), "3 records")

	raw, err := os.ReadFile(a.Config.Store.RecordsPath)
	require.NoError(t, err)
	assert.Equal(t, "year-month,interest_rate\n2022-05,5.25\n2023-01,6.00\n2023-07,6.75\n", string(raw))
}

func TestIngestSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := t.TempDir()
	a, _ := testApp(t, dir)
	a.Config.Source.URL = srv.URL
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2020-01,1.50\n")

	err := a.Ingest(context.Background(), IngestOptions{})
	require.ErrorIs(t, err, fetcher.ErrSourceUnavailable)

	raw, err := os.ReadFile(a.Config.Store.RecordsPath)
	require.NoError(t, err)
	assert.Equal(t, "year-month,interest_rate\n2020-01,1.50\n", string(raw))
}

func TestDurations(t *testing.T) {
	dir := t.TempDir()
	a, out := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2023-01,6.00\n2023-07,6.75\n")

	require.NoError(t, a.Durations(context.Background(), DurationsOptions{}))
	assert.Contains(t, out.String(), "184")
	assert.Contains(t, out.String(), "181")
	assert.Contains(t, out.String(), "Weighted average interest rate across the whole time: 6.38%")
}

func TestDurationsErrors(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)

	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n")
	require.ErrorIs(t, a.Durations(context.Background(), DurationsOptions{}), analysis.ErrNoData)

	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2023-01,6.00\nJuly,6.75\n")
	err := a.Durations(context.Background(), DurationsOptions{})
	require.ErrorIs(t, err, storage.ErrMalformedRecord)
	assert.Contains(t, err.Error(), "row 2")
}

func TestYearly(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2022-05,5.0\n2022-11,6.0\n2023-01,6.00\n")

	require.NoError(t, a.Yearly(context.Background(), YearlyOptions{}))

	raw, err := os.ReadFile(a.Config.Store.YearlyPath)
	require.NoError(t, err)
	assert.Equal(t, "year,average_interest_rate\n2022,5.5\n2023,6\n", string(raw))
}

func TestYearlyNoDataLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "")

	require.ErrorIs(t, a.Yearly(context.Background(), YearlyOptions{}), analysis.ErrNoData)
	_, err := os.Stat(a.Config.Store.YearlyPath)
	assert.True(t, os.IsNotExist(err))

	writeStore(t, a.Config.Store.YearlyPath, "year,average_interest_rate\n1999,13\n")
	require.ErrorIs(t, a.Yearly(context.Background(), YearlyOptions{}), analysis.ErrNoData)
	raw, err := os.ReadFile(a.Config.Store.YearlyPath)
	require.NoError(t, err)
	assert.Equal(t, "year,average_interest_rate\n1999,13\n", string(raw))
}

func TestYearlyMalformedRowLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2022-05,5.0\nMay,6.0\n")
	writeStore(t, a.Config.Store.YearlyPath, "year,average_interest_rate\n1999,13\n")

	err := a.Yearly(context.Background(), YearlyOptions{})
	require.ErrorIs(t, err, storage.ErrMalformedRecord)
	assert.Contains(t, err.Error(), "row 2")

	raw, err := os.ReadFile(a.Config.Store.YearlyPath)
	require.NoError(t, err)
	assert.Equal(t, "year,average_interest_rate\n1999,13\n", string(raw))
}

func TestYearlyOutputOverride(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2022-05,5.0\n")

	override := filepath.Join(dir, "nested", "yearly.csv")
	require.NoError(t, a.Yearly(context.Background(), YearlyOptions{OutputPath: override}))
	_, err := os.Stat(override)
	require.NoError(t, err)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2022-05,5.25\n2023-01,6.00\n2023-07,6.75\n")

	require.NoError(t, a.Export(context.Background(), ExportOptions{}))

	raw, err := os.ReadFile(a.Config.Export.PNGPath)
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, []byte("\x89PNG"), raw[:4])
}

func TestExportReplacesExistingChart(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n2022-05,5.25\n2023-01,6.00\n")
	writeStore(t, a.Config.Export.PNGPath, "stale chart bytes")

	require.NoError(t, a.Export(context.Background(), ExportOptions{}))

	raw, err := os.ReadFile(a.Config.Export.PNGPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), raw[:4])

	leftovers, err := filepath.Glob(filepath.Join(dir, ".chart.png.*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestExportNoDataLeavesChartUntouched(t *testing.T) {
	dir := t.TempDir()
	a, _ := testApp(t, dir)
	writeStore(t, a.Config.Store.RecordsPath, "year-month,interest_rate\n")
	writeStore(t, a.Config.Export.PNGPath, "previous chart")

	require.ErrorIs(t, a.Export(context.Background(), ExportOptions{}), analysis.ErrNoData)

	raw, err := os.ReadFile(a.Config.Export.PNGPath)
	require.NoError(t, err)
	assert.Equal(t, "previous chart", string(raw))
}

func TestStepSeries(t *testing.T) {
	records := []storage.RateChange{
		{PeriodStart: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodStart: time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)},
	}
	until := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	x, y := stepSeries(records, until)
	require.Len(t, x, 4)
	require.Len(t, y, 4)
	assert.True(t, x[1].Equal(records[1].PeriodStart))
	assert.True(t, x[3].Equal(until))
}
