// Package sink delivers enriched output tables to external storage. One
// table per instrument; a failed write is a per-instrument error and must
// leave no partial output behind where the backend allows it.
package sink

import (
	"context"
	"strings"

	"dataprep-systemv1/internal/model"
)

// Sink receives one finished table per instrument.
type Sink interface {
	Write(ctx context.Context, table model.Table) error
}

// OutputName derives the output identifier from an instrument id by
// replacing the ".csv" suffix with "_output.csv". Ids without the suffix
// get "_output.csv" appended, keeping the mapping deterministic.
func OutputName(id string) string {
	if strings.HasSuffix(id, ".csv") {
		return strings.TrimSuffix(id, ".csv") + "_output.csv"
	}
	return id + "_output.csv"
}
