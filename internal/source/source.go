// Package source loads ordered bar series from external storage. A source
// resolves an opaque instrument id to a six-column bar table; it performs no
// computation beyond parsing and order validation.
package source

import (
	"context"
	"errors"
	"fmt"

	"dataprep-systemv1/internal/model"
)

// ErrNotFound is returned (wrapped) when an instrument id does not resolve
// to readable data.
var ErrNotFound = errors.New("bar source not found")

// Source is the loader contract: resolve an id, return its full bar series.
// Implementations must have no side effects beyond the read.
type Source interface {
	Load(ctx context.Context, id string) ([]model.Bar, error)
}

// MalformedRowError reports a row that could not be parsed into the six
// expected fields. Per-instrument: the batch skips the instrument and moves on.
type MalformedRowError struct {
	ID   string
	Line int // 1-based
	Err  error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s: malformed row %d: %v", e.ID, e.Line, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// OutOfOrderError reports a bar whose open time does not strictly increase.
// Downstream windows assume ascending time order, so the loader fails fast
// instead of trusting the caller.
type OutOfOrderError struct {
	ID         string
	Line       int // 1-based
	Prev, Curr int64
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("%s: bar out of order at row %d: open time %d after %d", e.ID, e.Line, e.Curr, e.Prev)
}

// validateOrder checks strictly ascending open times, returning the offending
// index on violation.
func validateOrder(id string, bars []model.Bar) error {
	for i := 1; i < len(bars); i++ {
		if bars[i].OpenTime <= bars[i-1].OpenTime {
			return &OutOfOrderError{
				ID:   id,
				Line: i + 1,
				Prev: bars[i-1].OpenTime,
				Curr: bars[i].OpenTime,
			}
		}
	}
	return nil
}
