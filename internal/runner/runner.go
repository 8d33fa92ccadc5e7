// Package runner orchestrates the batch pipeline: for each instrument in the
// manifest it loads the bar series, computes the indicator set, aligns the
// output table and hands it to the sink. One instrument failing never stops
// the batch.
package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dataprep-systemv1/internal/align"
	"dataprep-systemv1/internal/indicator"
	"dataprep-systemv1/internal/logger"
	"dataprep-systemv1/internal/metrics"
	"dataprep-systemv1/internal/model"
	"dataprep-systemv1/internal/sink"
	"dataprep-systemv1/internal/source"
)

// Options tunes a BatchRunner beyond its required collaborators.
type Options struct {
	// Workers > 1 processes instruments concurrently. Results keep
	// manifest order either way.
	Workers int

	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Metrics

	// OnResult, if set, is called after each instrument finishes (in
	// completion order). Used for progress streaming.
	OnResult func(res model.InstrumentResult, completed, total int)
}

// BatchRunner runs the load → compute → align → write pipeline over a list
// of instrument ids.
type BatchRunner struct {
	src  source.Source
	eng  *indicator.Engine
	snk  sink.Sink
	opts Options
}

// New creates a batch runner. Workers < 1 is treated as sequential.
func New(src source.Source, eng *indicator.Engine, snk sink.Sink, opts Options) *BatchRunner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &BatchRunner{src: src, eng: eng, snk: snk, opts: opts}
}

// Run processes every id and returns a report with one result per id, in
// input order. The only errors that abort the batch are context
// cancellation; per-instrument failures are recorded and skipped.
func (b *BatchRunner) Run(ctx context.Context, ids []string) *model.Report {
	report := &model.Report{
		Results:   make([]model.InstrumentResult, len(ids)),
		StartedAt: time.Now(),
	}

	if b.opts.Workers == 1 {
		b.runSequential(ctx, ids, report)
	} else {
		b.runParallel(ctx, ids, report)
	}

	report.Duration = time.Since(report.StartedAt)
	return report
}

func (b *BatchRunner) runSequential(ctx context.Context, ids []string, report *model.Report) {
	completed := 0
	for i, id := range ids {
		if ctx.Err() != nil {
			b.markCancelled(ctx, ids[i:], report.Results[i:])
			return
		}
		report.Results[i] = b.processOne(ctx, id)
		completed++
		b.notify(report.Results[i], completed, len(ids))
	}
}

func (b *BatchRunner) runParallel(ctx context.Context, ids []string, report *model.Report) {
	type job struct {
		idx int
		id  string
	}
	jobs := make(chan job)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)

	for w := 0; w < b.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := b.processOne(ctx, j.id)
				mu.Lock()
				report.Results[j.idx] = res
				completed++
				done := completed
				mu.Unlock()
				b.notify(res, done, len(ids))
			}
		}()
	}

	for i, id := range ids {
		if ctx.Err() != nil {
			b.markCancelled(ctx, ids[i:], report.Results[i:])
			break
		}
		jobs <- job{idx: i, id: id}
	}
	close(jobs)
	wg.Wait()
}

// processOne runs the full pipeline for a single instrument, capturing any
// stage error into the result.
func (b *BatchRunner) processOne(ctx context.Context, id string) model.InstrumentResult {
	ctx = logger.WithInstrument(ctx, id)
	start := time.Now()
	res := model.InstrumentResult{Instrument: id}

	bars, err := b.timedLoad(ctx, id)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		b.recordFailure(ctx, err)
		return res
	}

	set := b.timedCompute(bars)
	table := align.Build(id, bars, set)

	if err := b.timedWrite(ctx, table); err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		b.recordFailure(ctx, err)
		return res
	}

	res.Rows = len(table.Rows)
	res.Duration = time.Since(start)
	if m := b.opts.Metrics; m != nil {
		m.InstrumentsOK.Inc()
	}
	slog.Info("instrument prepared", append(logger.LogWithInstrument(ctx),
		slog.Int("bars", len(bars)),
		slog.Int("rows", res.Rows),
		slog.Duration("duration", res.Duration.Round(time.Millisecond)),
	)...)
	return res
}

func (b *BatchRunner) timedLoad(ctx context.Context, id string) ([]model.Bar, error) {
	start := time.Now()
	bars, err := b.src.Load(ctx, id)
	if m := b.opts.Metrics; m != nil {
		m.LoadDur.Observe(time.Since(start).Seconds())
		if err == nil {
			m.BarsLoaded.Add(float64(len(bars)))
		}
	}
	return bars, err
}

func (b *BatchRunner) timedCompute(bars []model.Bar) indicator.Set {
	start := time.Now()
	set := b.eng.Compute(bars)
	if m := b.opts.Metrics; m != nil {
		m.ComputeDur.Observe(time.Since(start).Seconds())
	}
	return set
}

func (b *BatchRunner) timedWrite(ctx context.Context, table model.Table) error {
	start := time.Now()
	err := b.snk.Write(ctx, table)
	if m := b.opts.Metrics; m != nil {
		m.WriteDur.Observe(time.Since(start).Seconds())
		if err == nil {
			m.RowsWritten.Add(float64(len(table.Rows)))
		}
	}
	return err
}

func (b *BatchRunner) recordFailure(ctx context.Context, err error) {
	if m := b.opts.Metrics; m != nil {
		m.InstrumentsFailed.Inc()
	}
	slog.Warn("instrument skipped", append(logger.LogWithInstrument(ctx),
		slog.String("error", err.Error()),
	)...)
}

// markCancelled records the context error for instruments never attempted.
func (b *BatchRunner) markCancelled(ctx context.Context, ids []string, results []model.InstrumentResult) {
	for i, id := range ids {
		results[i] = model.InstrumentResult{Instrument: id, Err: ctx.Err()}
	}
}

func (b *BatchRunner) notify(res model.InstrumentResult, completed, total int) {
	if b.opts.OnResult != nil {
		b.opts.OnResult(res, completed, total)
	}
}
