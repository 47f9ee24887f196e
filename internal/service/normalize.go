package service

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"interest-rate-history/internal/fetcher"
	"interest-rate-history/internal/storage"
)

const effectiveDateLayout = "2006-01-02"

// Normalize keeps the referenceID component of every event, anchors it to
// the first day of its month and converts the decimal comma. Events without
// a usable reference component are skipped. Source order is preserved.
func Normalize(events []fetcher.RateEvent, referenceID string, logger zerolog.Logger) []storage.RateChange {
	records := make([]storage.RateChange, 0, len(events))
	for idx, event := range events {
		raw, ok := event.Component(referenceID)
		if !ok {
			logger.Debug().Int("event", idx).Str("effective_date", event.EffectiveDate).Msg("event has no reference rate; skipped")
			continue
		}

		effective, err := time.Parse(effectiveDateLayout, event.EffectiveDate)
		if err != nil {
			logger.Warn().Err(err).Int("event", idx).Str("effective_date", event.EffectiveDate).Msg("unparseable effective date; skipped")
			continue
		}

		rate, err := ParseDecimalComma(raw)
		if err != nil {
			logger.Warn().Err(err).Int("event", idx).Str("value", raw).Msg("unparseable reference rate; skipped")
			continue
		}

		records = append(records, storage.RateChange{
			PeriodStart: storage.MonthStart(effective),
			Rate:        rate,
		})
	}
	return records
}

// ParseDecimalComma parses "24,50" style numbers. A decimal point is accepted too.
func ParseDecimalComma(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", "."))
}
