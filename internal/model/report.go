package model

import "time"

// InstrumentResult records the outcome of processing one instrument.
type InstrumentResult struct {
	Instrument string        `json:"instrument"`
	Rows       int           `json:"rows"`
	Duration   time.Duration `json:"duration_ns"`
	Err        error         `json:"-"`
}

// Failed reports whether this instrument's run ended in an error.
func (r *InstrumentResult) Failed() bool { return r.Err != nil }

// Report is the end-of-batch summary: one result per attempted instrument,
// in manifest order for the sequential runner.
type Report struct {
	Results   []InstrumentResult
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded counts instruments that produced an output table.
func (r *Report) Succeeded() int {
	n := 0
	for i := range r.Results {
		if !r.Results[i].Failed() {
			n++
		}
	}
	return n
}

// Failures returns the results that ended in an error.
func (r *Report) Failures() []InstrumentResult {
	var out []InstrumentResult
	for i := range r.Results {
		if r.Results[i].Failed() {
			out = append(out, r.Results[i])
		}
	}
	return out
}
