package indicator

import "dataprep-systemv1/internal/model"

// StochRSISmooth measures where RSI sits within its own trailing range,
// scaled to 0..100, then smooths the result with a trailing mean over
// smoothPeriod values. Both windows expand from 1 value like RSI's averages.
//
// The raw stochastic at i is undefined when RSI at i is undefined, and when
// the RSI window is flat (high == low, a 0/0 ratio). Undefined entries are
// skipped by the range scan and by the smoothing mean; the smoothed value is
// undefined only when the whole smoothing window is undefined.
func StochRSISmooth(rsi []model.Value, stochPeriod, smoothPeriod int) []model.Value {
	n := len(rsi)
	stoch := make([]model.Value, n)
	for i := 0; i < n; i++ {
		if !rsi[i].Defined {
			continue
		}
		lo, hi, ok := rangeOver(rsi, i, stochPeriod)
		if !ok || hi == lo {
			continue
		}
		stoch[i] = model.Def((rsi[i].V - lo) / (hi - lo) * 100)
	}
	return rollingMean(stoch, smoothPeriod)
}
