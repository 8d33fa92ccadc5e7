package indicator

import "dataprep-systemv1/internal/model"

// RSI computes the Relative Strength Index over close prices using a plain
// trailing mean of gains and losses, NOT Wilder's smoothing. The averaging
// window expands from 1 value up to period, so the series carries a value
// from the very first bar wherever the gain/loss ratio is itself defined.
//
// The first bar has no delta; its gain and loss are both 0 and it still
// occupies a slot in the trailing window.
//
// Division policy for rs = avgGain/avgLoss:
//
//	avgLoss == 0, avgGain > 0 → 100 (pure one-sided up move, rs → ∞)
//	avgGain == 0, avgLoss > 0 → 0
//	both zero                 → undefined (flat window, 0/0)
func RSI(closes []float64, period int) []model.Value {
	n := len(closes)
	out := make([]model.Value, n)
	if n == 0 || period <= 0 {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 0; i < n; i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i >= period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}

		window := i + 1
		if window > period {
			window = period
		}
		avgGain := gainSum / float64(window)
		avgLoss := lossSum / float64(window)

		switch {
		case avgGain == 0 && avgLoss == 0:
			// 0/0 — no price movement anywhere in the window
		case avgLoss == 0:
			out[i] = model.Def(100)
		default:
			rs := avgGain / avgLoss
			out[i] = model.Def(100 - 100/(1+rs))
		}
	}
	return out
}
