package model

// Bar represents one OHLCV observation over a fixed interval for a single
// instrument. Timestamps are epoch milliseconds as delivered by the exchange
// export; prices and volume are plain floats.
//
// Bars are read-only once loaded — nothing downstream mutates them.
type Bar struct {
	OpenTime  int64   `json:"open_time"`  // epoch ms, bucket start
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"` // epoch ms, bucket end
}

// Closes extracts the close-price column from a bar series.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Close
	}
	return out
}
