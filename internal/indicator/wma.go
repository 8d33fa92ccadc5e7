package indicator

import "dataprep-systemv1/internal/model"

// WMA computes the linearly-weighted moving average of close prices: the
// newest bar in the window carries weight period, the oldest weight 1.
//
// Unlike RSI and the stochastic, WMA requires a full window — the first
// period-1 values are undefined. This is also the most expensive series here
// (O(n·period), the weights force a rescan per window); period is 144 in
// production so keep that in mind before cranking it up.
func WMA(closes []float64, period int) []model.Value {
	out := make([]model.Value, len(closes))
	if period <= 0 {
		return out
	}
	denom := float64(period) * float64(period+1) / 2
	for i := period - 1; i < len(closes); i++ {
		sum := 0.0
		for k := 0; k < period; k++ {
			sum += closes[i-period+1+k] * float64(k+1)
		}
		out[i] = model.Def(sum / denom)
	}
	return out
}
