package runner

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"dataprep-systemv1/internal/indicator"
	"dataprep-systemv1/internal/model"
)

// fakeSource serves canned bar series by id.
type fakeSource struct {
	series map[string][]model.Bar
	errs   map[string]error
}

func (f *fakeSource) Load(ctx context.Context, id string) ([]model.Bar, error) {
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	bars, ok := f.series[id]
	if !ok {
		return nil, errors.New("unknown instrument")
	}
	return bars, nil
}

// fakeSink records written tables.
type fakeSink struct {
	mu     sync.Mutex
	tables []model.Table
	err    error
}

func (f *fakeSink) Write(ctx context.Context, table model.Table) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.tables = append(f.tables, table)
	f.mu.Unlock()
	return nil
}

func bars(n int) []model.Bar {
	out := make([]model.Bar, n)
	for i := range out {
		out[i] = model.Bar{
			OpenTime:  int64(i) * 60_000,
			Open:      100,
			High:      101,
			Close:     100 + float64(i%3),
			Volume:    10,
			CloseTime: int64(i)*60_000 + 59_999,
		}
	}
	return out
}

func newRunner(src *fakeSource, snk *fakeSink, opts Options) *BatchRunner {
	return New(src, indicator.NewEngine(indicator.DefaultParams()), snk, opts)
}

func TestRun_MiddleFailureSkipped(t *testing.T) {
	src := &fakeSource{
		series: map[string][]model.Bar{
			"a.csv": bars(200),
			"c.csv": bars(150),
		},
		errs: map[string]error{
			"b.csv": errors.New("parse bar: line 3: bad price"),
		},
	}
	snk := &fakeSink{}

	report := newRunner(src, snk, Options{}).Run(context.Background(), []string{"a.csv", "b.csv", "c.csv"})

	if got := report.Succeeded(); got != 2 {
		t.Errorf("succeeded: got %d, want 2", got)
	}
	failures := report.Failures()
	if len(failures) != 1 {
		t.Fatalf("failures: got %d, want 1", len(failures))
	}
	if failures[0].Instrument != "b.csv" {
		t.Errorf("failed instrument: got %q, want b.csv", failures[0].Instrument)
	}
	if len(snk.tables) != 2 {
		t.Errorf("sink writes: got %d, want 2", len(snk.tables))
	}

	// Results stay in manifest order
	wantOrder := []string{"a.csv", "b.csv", "c.csv"}
	for i, want := range wantOrder {
		if report.Results[i].Instrument != want {
			t.Errorf("result[%d]: got %q, want %q", i, report.Results[i].Instrument, want)
		}
	}
}

func TestRun_RowCounts(t *testing.T) {
	src := &fakeSource{series: map[string][]model.Bar{"a.csv": bars(250)}}
	snk := &fakeSink{}

	report := newRunner(src, snk, Options{}).Run(context.Background(), []string{"a.csv"})

	if report.Results[0].Rows != 250 {
		t.Errorf("rows: got %d, want 250", report.Results[0].Rows)
	}
	if len(snk.tables) != 1 || len(snk.tables[0].Rows) != 250 {
		t.Fatalf("expected one 250-row table at the sink")
	}
}

func TestRun_SinkFailureRecorded(t *testing.T) {
	src := &fakeSource{series: map[string][]model.Bar{"a.csv": bars(10)}}
	snk := &fakeSink{err: errors.New("disk full")}

	report := newRunner(src, snk, Options{}).Run(context.Background(), []string{"a.csv"})

	if report.Succeeded() != 0 {
		t.Errorf("succeeded: got %d, want 0", report.Succeeded())
	}
	if !report.Results[0].Failed() {
		t.Error("expected sink error to mark the instrument failed")
	}
}

func TestRun_Parallel(t *testing.T) {
	series := make(map[string][]model.Bar)
	var ids []string
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		series[id+".csv"] = bars(100)
		ids = append(ids, id+".csv")
	}
	src := &fakeSource{series: series, errs: map[string]error{"d.csv": errors.New("boom")}}
	snk := &fakeSink{}

	report := newRunner(src, snk, Options{Workers: 4}).Run(context.Background(), ids)

	if got := report.Succeeded(); got != 7 {
		t.Errorf("succeeded: got %d, want 7", got)
	}
	// Manifest order preserved despite concurrent completion
	for i, id := range ids {
		if report.Results[i].Instrument != id {
			t.Errorf("result[%d]: got %q, want %q", i, report.Results[i].Instrument, id)
		}
	}
	if len(snk.tables) != 7 {
		t.Errorf("sink writes: got %d, want 7", len(snk.tables))
	}
}

func TestRun_Cancellation(t *testing.T) {
	src := &fakeSource{series: map[string][]model.Bar{
		"a.csv": bars(50), "b.csv": bars(50), "c.csv": bars(50),
	}}
	snk := &fakeSink{}

	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	r := newRunner(src, snk, Options{
		OnResult: func(res model.InstrumentResult, completed, total int) {
			once.Do(cancel) // cancel after the first instrument completes
		},
	})

	report := r.Run(ctx, []string{"a.csv", "b.csv", "c.csv"})

	if report.Succeeded() != 1 {
		t.Errorf("succeeded: got %d, want 1", report.Succeeded())
	}
	for _, res := range report.Results[1:] {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", res.Instrument, res.Err)
		}
	}
}

func TestRun_LogsCarryInstrument(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	src := &fakeSource{
		series: map[string][]model.Bar{"good.csv": bars(10)},
		errs:   map[string]error{"broken.csv": errors.New("boom")},
	}
	snk := &fakeSink{}

	newRunner(src, snk, Options{}).Run(context.Background(), []string{"good.csv", "broken.csv"})

	out := buf.String()
	if !strings.Contains(out, `"instrument":"good.csv"`) {
		t.Errorf("success log missing instrument attr:\n%s", out)
	}
	if !strings.Contains(out, `"instrument":"broken.csv"`) {
		t.Errorf("failure log missing instrument attr:\n%s", out)
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	src := &fakeSource{series: map[string][]model.Bar{"a.csv": bars(10), "b.csv": bars(10)}}
	snk := &fakeSink{}

	var calls []int
	r := newRunner(src, snk, Options{
		OnResult: func(res model.InstrumentResult, completed, total int) {
			if total != 2 {
				t.Errorf("total: got %d, want 2", total)
			}
			calls = append(calls, completed)
		},
	})
	r.Run(context.Background(), []string{"a.csv", "b.csv"})

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("completed sequence: got %v, want [1 2]", calls)
	}
}
