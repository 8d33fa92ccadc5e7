// cmd/prep runs the batch data preparation pipeline: it reads an instrument
// manifest, loads each bar series, computes RSI, smoothed StochRSI, WMA and
// SMA, and writes the aligned output tables.
//
// Usage:
//
//	go run ./cmd/prep --manifest=data/manifest.txt --in=data/raw --out=data/prepared
//	go run ./cmd/prep --source=sqlite --sink=redis --workers=4
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dataprep-systemv1/config"
	"dataprep-systemv1/internal/indicator"
	"dataprep-systemv1/internal/logger"
	"dataprep-systemv1/internal/manifest"
	"dataprep-systemv1/internal/metrics"
	"dataprep-systemv1/internal/model"
	"dataprep-systemv1/internal/notification"
	"dataprep-systemv1/internal/progress"
	"dataprep-systemv1/internal/runner"
	"dataprep-systemv1/internal/sink"
	"dataprep-systemv1/internal/source"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	cfg := config.Load()

	// Flags default from env config so both work
	manifestPath := flag.String("manifest", cfg.ManifestPath, "Path to instrument manifest (one id per line)")
	inputDir := flag.String("in", cfg.InputDir, "Input directory for CSV bar series")
	outputDir := flag.String("out", cfg.OutputDir, "Output directory for prepared CSVs")
	sourceKind := flag.String("source", "csv", "Bar source: csv|sqlite")
	sinkKind := flag.String("sink", "csv", "Output sink: csv|sqlite|redis")
	dbPath := flag.String("db", cfg.SQLitePath, "Path to SQLite database (source and sink)")
	workers := flag.Int("workers", cfg.Workers, "Concurrent instruments (1=sequential)")
	metricsAddr := flag.String("metrics", cfg.MetricsAddr, "Metrics/health listen address (empty=disabled)")
	progressAddr := flag.String("progress", cfg.ProgressAddr, "Progress WebSocket listen address (empty=disabled)")
	webhookURL := flag.String("webhook", cfg.WebhookURL, "Webhook URL for the batch summary alert (empty=log only)")

	rsiPeriod := flag.Int("rsi", 14, "RSI period")
	stochPeriod := flag.Int("stoch", 5, "StochRSI lookback period")
	smoothPeriod := flag.Int("smooth", 3, "StochRSI smoothing period")
	wmaPeriod := flag.Int("wma", 144, "WMA period")
	smaPeriod := flag.Int("sma", 5, "SMA period")
	flag.Parse()

	logger.Init("prep", slog.LevelInfo)

	ids, err := manifest.Read(*manifestPath)
	if err != nil {
		log.Fatalf("[prep] manifest: %v", err)
	}
	if len(ids) == 0 {
		log.Fatalf("[prep] manifest %s lists no instruments", *manifestPath)
	}

	src, closeSrc, err := buildSource(*sourceKind, *inputDir, *dbPath)
	if err != nil {
		log.Fatalf("[prep] source: %v", err)
	}
	defer closeSrc()

	snk, closeSnk, err := buildSink(*sinkKind, *outputDir, *dbPath, cfg)
	if err != nil {
		log.Fatalf("[prep] sink: %v", err)
	}
	defer closeSnk()

	engine := indicator.NewEngine(indicator.Params{
		RSIPeriod:    *rsiPeriod,
		StochPeriod:  *stochPeriod,
		SmoothPeriod: *smoothPeriod,
		WMAPeriod:    *wmaPeriod,
		SMAPeriod:    *smaPeriod,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("[prep] shutdown signal received")
		cancel()
	}()

	// Optional metrics + health server
	var m *metrics.Metrics
	var health *metrics.HealthStatus
	if *metricsAddr != "" {
		m = metrics.NewMetrics()
		health = metrics.NewHealthStatus()
		srv := metrics.NewServer(*metricsAddr, health)
		srv.Start()
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			srv.Stop(shutCtx)
		}()
	}

	// Optional progress WebSocket hub
	var hub *progress.Hub
	if *progressAddr != "" {
		hub = progress.NewHub()
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		go func() {
			log.Printf("[prep] progress ws listening on %s", *progressAddr)
			if err := http.ListenAndServe(*progressAddr, mux); err != nil {
				log.Printf("[prep] progress server error: %v", err)
			}
		}()
	}

	opts := runner.Options{
		Workers: *workers,
		Metrics: m,
		OnResult: func(res model.InstrumentResult, completed, total int) {
			if hub == nil {
				return
			}
			ev := progress.Event{
				Type:       "instrument",
				Instrument: res.Instrument,
				Rows:       res.Rows,
				Completed:  completed,
				Total:      total,
			}
			if res.Err != nil {
				ev.Error = res.Err.Error()
			}
			hub.Broadcast(ev)
		},
	}

	if health != nil {
		health.SetBatchRunning(true)
	}
	if m != nil {
		m.BatchRunning.Set(1)
	}
	if hub != nil {
		hub.Broadcast(progress.Event{Type: "batch_start", Total: len(ids)})
	}

	log.Printf("[prep] starting batch: %d instruments, source=%s sink=%s workers=%d",
		len(ids), *sourceKind, *sinkKind, *workers)

	report := runner.New(src, engine, snk, opts).Run(ctx, ids)

	if health != nil {
		health.SetBatchRunning(false)
		health.RecordBatch(report.Succeeded(), len(report.Failures()))
	}
	if m != nil {
		m.BatchRunning.Set(0)
	}
	if hub != nil {
		hub.Broadcast(progress.Event{
			Type:      "batch_done",
			Completed: len(report.Results),
			Total:     len(ids),
		})
	}

	// Batch summary alert
	var notifier notification.Notifier = notification.NewLogNotifier()
	if *webhookURL != "" {
		notifier = notification.NewWebhookNotifier(*webhookURL)
	}
	alertCtx, alertCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := notifier.Send(alertCtx, notification.BatchAlert(report)); err != nil {
		log.Printf("[prep] alert delivery failed: %v", err)
	}
	alertCancel()

	printSummary(report)

	if report.Succeeded() == 0 && len(report.Results) > 0 {
		os.Exit(1)
	}
}

func buildSource(kind, inputDir, dbPath string) (source.Source, func(), error) {
	switch kind {
	case "csv":
		return source.NewCSVSource(inputDir), func() {}, nil
	case "sqlite":
		s, err := source.NewSQLiteSource(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q (want csv|sqlite)", kind)
	}
}

func buildSink(kind, outputDir, dbPath string, cfg *config.Config) (sink.Sink, func(), error) {
	switch kind {
	case "csv":
		s, err := sink.NewCSVSink(outputDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "sqlite":
		s, err := sink.NewSQLiteSink(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "redis":
		s, err := sink.NewRedisSink(sink.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q (want csv|sqlite|redis)", kind)
	}
}

func printSummary(report *model.Report) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║       PREPARATION COMPLETE           ║")
	fmt.Println("╠══════════════════════════════════════╣")
	fmt.Printf("║  Instruments:       %-16d ║\n", len(report.Results))
	fmt.Printf("║  Succeeded:         %-16d ║\n", report.Succeeded())
	fmt.Printf("║  Failed:            %-16d ║\n", len(report.Failures()))
	fmt.Printf("║  Duration:          %-16s ║\n", report.Duration.Round(time.Millisecond))
	fmt.Println("╚══════════════════════════════════════╝")
	for _, r := range report.Failures() {
		fmt.Printf("  FAILED %s: %v\n", r.Instrument, r.Err)
	}
}
