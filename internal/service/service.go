package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"interest-rate-history/internal/fetcher"
	"interest-rate-history/internal/storage"
)

// DefaultReferenceID identifies the reference rate among the published components.
const DefaultReferenceID = "ref"

// Ingestor fetches the rate-change history, normalizes it and replaces the record store.
type Ingestor struct {
	source      fetcher.RateEventFetcher
	store       storage.RateChangeStore
	referenceID string
	logger      zerolog.Logger
}

// NewIngestor constructs the ingestion service.
func NewIngestor(source fetcher.RateEventFetcher, store storage.RateChangeStore, referenceID string, logger zerolog.Logger) *Ingestor {
	if referenceID == "" {
		referenceID = DefaultReferenceID
	}
	return &Ingestor{
		source:      source,
		store:       store,
		referenceID: referenceID,
		logger:      logger.With().Str("component", "ingestor").Logger(),
	}
}

// Run performs one full ingestion and returns the records written. Nothing
// is written when the fetch fails.
func (i *Ingestor) Run(ctx context.Context) ([]storage.RateChange, error) {
	if i.source == nil {
		return nil, errors.New("rate source not configured")
	}
	if i.store == nil {
		return nil, errors.New("record store not configured")
	}

	events, err := i.source.FetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rate events: %w", err)
	}

	records := Normalize(events, i.referenceID, i.logger)
	if err := i.store.SaveRateChanges(records); err != nil {
		return nil, fmt.Errorf("save rate changes: %w", err)
	}

	i.logger.Info().
		Int("events", len(events)).
		Int("records", len(records)).
		Msg("rate history ingested")
	return records, nil
}
