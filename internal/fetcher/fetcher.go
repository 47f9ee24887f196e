package fetcher

import (
	"context"
	"errors"
)

// ErrSourceUnavailable indicates the remote source could not be reached,
// answered with a non-success status, or returned an undecodable document.
var ErrSourceUnavailable = errors.New("rate source unavailable")

// RateComponent is one named rate published within an event, with its value
// exactly as published (decimal comma).
type RateComponent struct {
	ID    string
	Value string
}

// RateEvent is a single rate-change announcement.
type RateEvent struct {
	EffectiveDate string
	Components    []RateComponent
}

// Component returns the value of the component with the given id.
func (e RateEvent) Component(id string) (string, bool) {
	for _, c := range e.Components {
		if c.ID == id {
			return c.Value, true
		}
	}
	return "", false
}

// RateEventFetcher retrieves the full history of rate-change events.
type RateEventFetcher interface {
	FetchEvents(ctx context.Context) ([]RateEvent, error)
}
