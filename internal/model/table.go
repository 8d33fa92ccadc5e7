package model

import "encoding/json"

// Row is one aligned output row: the original bar columns plus the four
// indicator columns computed for that index.
type Row struct {
	Bar
	RSI            Value `json:"rsi"`
	StochRSISmooth Value `json:"stoch_rsi_smooth"`
	WMA            Value `json:"wma"`
	SMA            Value `json:"sma"`
}

// JSON returns the JSON-encoded row (ignoring errors for hot-path usage).
func (r *Row) JSON() []byte {
	data, _ := json.Marshal(r)
	return data
}

// Table is the enriched, row-aligned output for one instrument. It is owned
// by the batch runner for the duration of one instrument's processing, then
// handed to a sink and released.
type Table struct {
	Instrument string
	Rows       []Row
}

// Header lists the output column names in serialization order. The names
// follow the upstream data files, not Go conventions.
func Header() []string {
	return []string{
		"OpenTimeStamp", "Open", "High", "Close", "Volume", "CloseTimeStamp",
		"rsi", "stoch_rsi_smooth", "wma", "sma",
	}
}
