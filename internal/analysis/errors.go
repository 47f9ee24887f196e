// Package analysis derives summary statistics from a reference rate history.
package analysis

import "errors"

var (
	// ErrNoData indicates an aggregation was requested over an empty record set.
	ErrNoData = errors.New("no rate records")
	// ErrOutOfOrder indicates records are not in chronological order, or the
	// evaluation time precedes the last record.
	ErrOutOfOrder = errors.New("rate records out of chronological order")
)
