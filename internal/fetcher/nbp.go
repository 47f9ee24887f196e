package fetcher

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultNBPURL is the National Bank of Poland interest rate archive.
const DefaultNBPURL = "https://static.nbp.pl/dane/stopy/stopy_procentowe_archiwum.xml"

// NBPOptions parameterise the NBP archive fetcher.
type NBPOptions struct {
	URL string
	// Timeout of zero keeps the transport default.
	Timeout   time.Duration
	UserAgent string
}

// NBP fetches the interest rate archive published by the National Bank of Poland.
type NBP struct {
	opts   NBPOptions
	logger zerolog.Logger
	client *http.Client
	url    string
}

// NewNBP constructs an archive fetcher.
func NewNBP(opts NBPOptions, logger zerolog.Logger) *NBP {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = DefaultNBPURL
	}

	client := &http.Client{}
	if opts.Timeout > 0 {
		client.Timeout = opts.Timeout
	}

	return &NBP{
		opts:   opts,
		logger: logger.With().Str("component", "nbp_fetcher").Logger(),
		client: client,
		url:    url,
	}
}

// FetchEvents downloads and decodes the archive. Every failure is reported
// as ErrSourceUnavailable.
func (n *NBP) FetchEvents(ctx context.Context) ([]RateEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	if ua := strings.TrimSpace(n.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "ratehist/1.0")
	}

	n.logger.Debug().Str("url", n.url).Msg("requesting rate archive")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	events, err := DecodeNBPArchive(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	n.logger.Info().Int("events", len(events)).Msg("rate archive fetched")
	return events, nil
}

type nbpArchive struct {
	XMLName   xml.Name       `xml:"stopy_procentowe_archiwum"`
	Positions []nbpPositions `xml:"pozycje"`
}

type nbpPositions struct {
	EffectiveFrom string        `xml:"obowiazuje_od,attr"`
	Items         []nbpPosition `xml:"pozycja"`
}

type nbpPosition struct {
	ID   string `xml:"id,attr"`
	Rate string `xml:"oprocentowanie,attr"`
}

// DecodeNBPArchive parses the archive document into events, preserving
// document order.
func DecodeNBPArchive(payload []byte) ([]RateEvent, error) {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	// Only ASCII attributes are read, so any declared charset passes through.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var archive nbpArchive
	if err := decoder.Decode(&archive); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}

	events := make([]RateEvent, 0, len(archive.Positions))
	for _, pos := range archive.Positions {
		event := RateEvent{
			EffectiveDate: strings.TrimSpace(pos.EffectiveFrom),
			Components:    make([]RateComponent, 0, len(pos.Items)),
		}
		for _, item := range pos.Items {
			event.Components = append(event.Components, RateComponent{
				ID:    strings.TrimSpace(item.ID),
				Value: strings.TrimSpace(item.Rate),
			})
		}
		events = append(events, event)
	}
	return events, nil
}

var _ RateEventFetcher = (*NBP)(nil)
