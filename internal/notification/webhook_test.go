package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dataprep-systemv1/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Results: []model.InstrumentResult{
			{Instrument: "a.csv", Rows: 100},
			{Instrument: "b.csv", Err: errors.New("bad row")},
			{Instrument: "c.csv", Rows: 80},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestWebhookNotifier_BatchPayload(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		body, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), BatchAlert(sampleReport())); err != nil {
		t.Fatalf("send: %v", err)
	}

	var got struct {
		Level       string `json:"level"`
		Instruments int    `json:"instruments"`
		Succeeded   int    `json:"succeeded"`
		Failed      int    `json:"failed"`
		DurationMS  int64  `json:"duration_ms"`
		TS          string `json:"ts"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v\nraw: %s", err, body)
	}

	// Batch outcome must ride as first-class keys, not only message text.
	if got.Instruments != 3 || got.Succeeded != 2 || got.Failed != 1 {
		t.Errorf("counts: got %d/%d/%d, want 3/2/1", got.Instruments, got.Succeeded, got.Failed)
	}
	if got.DurationMS != 1500 {
		t.Errorf("duration_ms: got %d, want 1500", got.DurationMS)
	}
	if got.Level != string(AlertWarning) {
		t.Errorf("level: got %q, want WARNING for partial failure", got.Level)
	}
	if _, err := time.Parse(time.RFC3339Nano, got.TS); err != nil {
		t.Errorf("ts is not valid RFC3339Nano: %v", err)
	}
}

func TestWebhookNotifier_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(context.Background(), BatchAlert(sampleReport())); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
