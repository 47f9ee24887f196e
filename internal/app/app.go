package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"interest-rate-history/internal/analysis"
	"interest-rate-history/internal/config"
	"interest-rate-history/internal/fetcher"
	"interest-rate-history/internal/service"
	"interest-rate-history/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Now is the evaluation time of the open-ended final period.
	Now func() time.Time
	Out io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Now:    time.Now,
		Out:    os.Stdout,
	}
}

// IngestOptions configure the ingest command.
type IngestOptions struct {
	RecordsPath string
}

// DurationsOptions configure the durations report.
type DurationsOptions struct {
	RecordsPath string
}

// YearlyOptions configure the yearly summary.
type YearlyOptions struct {
	RecordsPath string
	OutputPath  string
}

// ExportOptions configure the chart export.
type ExportOptions struct {
	RecordsPath string
	PNGPath     string
}

func (a *App) newFetcher() fetcher.RateEventFetcher {
	return fetcher.NewNBP(fetcher.NBPOptions{
		URL:       a.Config.Source.URL,
		Timeout:   a.Config.Source.RequestTimeout,
		UserAgent: a.Config.Source.UserAgent,
	}, a.Logger)
}

func (a *App) openStore(recordsPath, yearlyPath string) *storage.Store {
	return storage.NewStore(
		config.ResolvePath(recordsPath, a.Config.Store.RecordsPath),
		config.ResolvePath(yearlyPath, a.Config.Store.YearlyPath),
		a.Config.Store.YearlyPlaces,
	)
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

// Ingest fetches the rate archive and replaces the record store.
func (a *App) Ingest(ctx context.Context, opts IngestOptions) error {
	store := a.openStore(opts.RecordsPath, "")
	ingestor := service.NewIngestor(a.newFetcher(), store, a.Config.Source.ReferenceID, a.Logger)

	records, err := ingestor.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out(), "Data saved to %s (%d records)\n", store.RecordsPath(), len(records))
	return nil
}

// Durations prints how long each rate was in effect and the weighted average.
func (a *App) Durations(ctx context.Context, opts DurationsOptions) error {
	store := a.openStore(opts.RecordsPath, "")
	records, err := store.LoadRateChanges()
	if err != nil {
		return err
	}

	now := a.now()
	report, err := analysis.Durations(records, now)
	if err != nil {
		return err
	}

	a.Logger.Debug().
		Int("records", len(records)).
		Int("total_days", report.TotalDays).
		Time("evaluated_at", now).
		Msg("duration report computed")

	return analysis.WriteDurationReport(a.out(), report, a.Config.Report.RatePlaces)
}

// Yearly computes per-year averages and replaces the yearly store. The
// output file is left untouched on any failure.
func (a *App) Yearly(ctx context.Context, opts YearlyOptions) error {
	store := a.openStore(opts.RecordsPath, opts.OutputPath)
	records, err := store.LoadRateChanges()
	if err != nil {
		return err
	}

	averages, err := analysis.YearlyAverages(records)
	if err != nil {
		return err
	}

	if err := store.SaveYearlyAverages(averages); err != nil {
		return err
	}

	a.Logger.Info().Int("years", len(averages)).Str("path", store.YearlyPath()).Msg("yearly averages saved")
	fmt.Fprintf(a.out(), "Yearly averages saved to %s\n", store.YearlyPath())
	return nil
}
