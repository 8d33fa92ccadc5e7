// Package align merges a bar series with its computed indicator series into
// one row-aligned output table.
package align

import (
	"dataprep-systemv1/internal/indicator"
	"dataprep-systemv1/internal/model"
)

// Build produces the enriched table for one instrument: one row per index,
// original bar columns plus the four indicator columns.
//
// The row count is the minimum of all five input lengths. The engine's
// full-length contract makes every length equal to len(bars), so the
// truncation is a guard against a misbehaving series, not a warm-up trim —
// warm-up shows up as undefined values inside full-length rows.
func Build(instrument string, bars []model.Bar, set indicator.Set) model.Table {
	n := len(bars)
	if l := set.Len(); l < n {
		n = l
	}

	rows := make([]model.Row, n)
	for i := 0; i < n; i++ {
		rows[i] = model.Row{
			Bar:            bars[i],
			RSI:            set.RSI[i],
			StochRSISmooth: set.StochRSISmooth[i],
			WMA:            set.WMA[i],
			SMA:            set.SMA[i],
		}
	}

	return model.Table{Instrument: instrument, Rows: rows}
}
