// Package metrics exposes Prometheus metrics and a health endpoint for the
// batch preparation pipeline.
package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the batch runner.
type Metrics struct {
	InstrumentsOK     prometheus.Counter
	InstrumentsFailed prometheus.Counter
	BarsLoaded        prometheus.Counter
	RowsWritten       prometheus.Counter

	LoadDur    prometheus.Histogram
	ComputeDur prometheus.Histogram
	WriteDur   prometheus.Histogram

	BatchRunning prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		InstrumentsOK: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataprep_instruments_ok_total",
			Help: "Instruments processed successfully",
		}),
		InstrumentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataprep_instruments_failed_total",
			Help: "Instruments skipped due to a per-instrument error",
		}),
		BarsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataprep_bars_loaded_total",
			Help: "Total bars loaded from sources",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dataprep_rows_written_total",
			Help: "Total enriched rows handed to sinks",
		}),
		LoadDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dataprep_load_duration_seconds",
			Help:    "Bar series load latency per instrument",
			Buckets: prometheus.DefBuckets,
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dataprep_compute_duration_seconds",
			Help:    "Indicator engine compute latency per instrument",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		WriteDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dataprep_write_duration_seconds",
			Help:    "Sink write latency per instrument",
			Buckets: prometheus.DefBuckets,
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dataprep_batch_running",
			Help: "Whether a batch is currently running (0/1)",
		}),
	}

	prometheus.MustRegister(
		m.InstrumentsOK,
		m.InstrumentsFailed,
		m.BarsLoaded,
		m.RowsWritten,
		m.LoadDur,
		m.ComputeDur,
		m.WriteDur,
		m.BatchRunning,
	)

	return m
}

// HealthStatus tracks the last batch outcome for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	StartedAt     time.Time
	BatchRunning  bool
	LastSucceeded int
	LastFailed    int
	LastBatchAt   time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

// SetBatchRunning flags batch start/stop.
func (h *HealthStatus) SetBatchRunning(v bool) {
	h.mu.Lock()
	h.BatchRunning = v
	h.mu.Unlock()
}

// RecordBatch stores the outcome of a completed batch.
func (h *HealthStatus) RecordBatch(succeeded, failed int) {
	h.mu.Lock()
	h.LastSucceeded = succeeded
	h.LastFailed = failed
	h.LastBatchAt = time.Now()
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := struct {
		Status        string `json:"status"`
		Uptime        string `json:"uptime"`
		BatchRunning  bool   `json:"batch_running"`
		LastSucceeded int    `json:"last_succeeded"`
		LastFailed    int    `json:"last_failed"`
		LastBatchAt   string `json:"last_batch_at,omitempty"`
	}{
		Status:        "healthy",
		Uptime:        time.Since(h.StartedAt).Round(time.Second).String(),
		BatchRunning:  h.BatchRunning,
		LastSucceeded: h.LastSucceeded,
		LastFailed:    h.LastFailed,
	}
	if !h.LastBatchAt.IsZero() {
		status.LastBatchAt = h.LastBatchAt.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
