// Package indicator computes technical indicator series over historical bar
// data for backtest preparation.
//
// Every function is causal: the value at index i consults bars at index <= i
// only. Every returned series has exactly the length of its input — warm-up
// gaps are explicit model.Value undefined markers, never dropped rows.
package indicator

import "dataprep-systemv1/internal/model"

// rollingMean returns the trailing mean over up to window values, counting
// only defined entries. The result at i is undefined when no entry in the
// window is defined.
func rollingMean(vals []model.Value, window int) []model.Value {
	out := make([]model.Value, len(vals))
	if window <= 0 {
		return out
	}
	for i := range vals {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for j := start; j <= i; j++ {
			if vals[j].Defined {
				sum += vals[j].V
				count++
			}
		}
		if count > 0 {
			out[i] = model.Def(sum / float64(count))
		}
	}
	return out
}

// rangeOver returns the min and max over the trailing window ending at i,
// skipping undefined entries. ok is false when the window holds no defined
// value.
func rangeOver(vals []model.Value, i, window int) (lo, hi float64, ok bool) {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	for j := start; j <= i; j++ {
		if !vals[j].Defined {
			continue
		}
		v := vals[j].V
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}
