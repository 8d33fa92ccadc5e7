package indicator

import "dataprep-systemv1/internal/model"

// Params fixes the lookback windows for one engine instance. Construct once
// and pass explicitly — there is no package-level default state.
type Params struct {
	RSIPeriod    int
	StochPeriod  int
	SmoothPeriod int
	WMAPeriod    int
	SMAPeriod    int
}

// DefaultParams returns the production lookbacks.
func DefaultParams() Params {
	return Params{
		RSIPeriod:    14,
		StochPeriod:  5,
		SmoothPeriod: 3,
		WMAPeriod:    144,
		SMAPeriod:    5,
	}
}

// Set holds the four computed indicator series for one bar series. Every
// series has exactly the length of the source series.
type Set struct {
	RSI            []model.Value
	StochRSISmooth []model.Value
	WMA            []model.Value
	SMA            []model.Value
}

// Len returns the shortest series length in the set. With the engine's
// full-length contract this always equals the source length.
func (s *Set) Len() int {
	n := len(s.RSI)
	for _, l := range []int{len(s.StochRSISmooth), len(s.WMA), len(s.SMA)} {
		if l < n {
			n = l
		}
	}
	return n
}

// Engine computes the full indicator set for a bar series. It holds no
// per-series state, so one engine is safe to share across parallel workers.
type Engine struct {
	params Params
}

// NewEngine creates an engine with the given lookback parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params}
}

// Params returns the engine's lookback configuration.
func (e *Engine) Params() Params { return e.params }

// Compute derives all four indicator series from the close-price column.
func (e *Engine) Compute(bars []model.Bar) Set {
	closes := model.Closes(bars)
	rsi := RSI(closes, e.params.RSIPeriod)
	return Set{
		RSI:            rsi,
		StochRSISmooth: StochRSISmooth(rsi, e.params.StochPeriod, e.params.SmoothPeriod),
		WMA:            WMA(closes, e.params.WMAPeriod),
		SMA:            SMA(closes, e.params.SMAPeriod),
	}
}
