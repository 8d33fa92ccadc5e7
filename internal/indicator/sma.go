package indicator

import "dataprep-systemv1/internal/model"

// SMA computes the unweighted trailing mean of close prices over a rolling
// window, using a running sum. Requires a full window: the first period-1
// values are undefined.
func SMA(closes []float64, period int) []model.Value {
	out := make([]model.Value, len(closes))
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i := range closes {
		sum += closes[i]
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = model.Def(sum / float64(period))
		}
	}
	return out
}
