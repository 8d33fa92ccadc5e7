package indicator

import (
	"testing"

	"dataprep-systemv1/internal/model"
)

func constantBars(closePrice float64, n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			OpenTime:  int64(i) * 60_000,
			Open:      closePrice,
			High:      closePrice,
			Close:     closePrice,
			Volume:    10,
			CloseTime: int64(i)*60_000 + 59_999,
		}
	}
	return bars
}

func TestEngine_FullLengthContract(t *testing.T) {
	// Every series must have exactly len(bars) entries, whatever the
	// relationship between series length and lookback windows.
	eng := NewEngine(DefaultParams())

	for _, n := range []int{0, 1, 4, 143, 150, 500} {
		set := eng.Compute(constantBars(100, n))
		if len(set.RSI) != n || len(set.StochRSISmooth) != n || len(set.WMA) != n || len(set.SMA) != n {
			t.Errorf("n=%d: lengths rsi=%d stoch=%d wma=%d sma=%d, want all %d",
				n, len(set.RSI), len(set.StochRSISmooth), len(set.WMA), len(set.SMA), n)
		}
		if set.Len() != n {
			t.Errorf("n=%d: Set.Len()=%d", n, set.Len())
		}
	}
}

func TestEngine_ConstantClose150(t *testing.T) {
	// 150 bars of constant close 100 (default production lookbacks):
	//   rsi:   undefined at every row (no movement → 0/0)
	//   stoch: undefined at every row (RSI undefined everywhere)
	//   wma:   undefined for rows 0..142, == 100 for rows 143..149
	//   sma:   undefined for rows 0..3,   == 100 for rows 4..149
	eng := NewEngine(DefaultParams())
	set := eng.Compute(constantBars(100, 150))

	for i := 0; i < 150; i++ {
		assertUndefined(t, "rsi", set.RSI[i])
		assertUndefined(t, "stoch", set.StochRSISmooth[i])

		if i < 143 {
			assertUndefined(t, "wma warm-up", set.WMA[i])
		} else {
			assertDefined(t, "wma", set.WMA[i], 100.0, 0.0001)
		}
		if i < 4 {
			assertUndefined(t, "sma warm-up", set.SMA[i])
		} else {
			assertDefined(t, "sma", set.SMA[i], 100.0, 0.0001)
		}
	}
}

func TestEngine_Causality(t *testing.T) {
	// Values at index i must not change when bars after i are appended.
	eng := NewEngine(Params{
		RSIPeriod: 3, StochPeriod: 3, SmoothPeriod: 2, WMAPeriod: 4, SMAPeriod: 2,
	})

	closes := []float64{100, 103, 101, 106, 104, 108, 105, 110, 107, 112}
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{OpenTime: int64(i), Close: c, CloseTime: int64(i)}
	}

	full := eng.Compute(bars)
	prefix := eng.Compute(bars[:6])

	for i := 0; i < 6; i++ {
		if full.RSI[i] != prefix.RSI[i] {
			t.Errorf("rsi[%d] changed with future bars: %+v vs %+v", i, prefix.RSI[i], full.RSI[i])
		}
		if full.StochRSISmooth[i] != prefix.StochRSISmooth[i] {
			t.Errorf("stoch[%d] changed with future bars", i)
		}
		if full.WMA[i] != prefix.WMA[i] {
			t.Errorf("wma[%d] changed with future bars", i)
		}
		if full.SMA[i] != prefix.SMA[i] {
			t.Errorf("sma[%d] changed with future bars", i)
		}
	}
}
