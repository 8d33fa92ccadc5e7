package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// WebhookNotifier POSTs batch summaries to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier targeting the given endpoint.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// batchPayload is the wire format for one batch summary. The counts are
// first-class keys so the receiving side can alert on failed > 0 without
// parsing the message text.
type batchPayload struct {
	Level       string `json:"level"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Instruments int    `json:"instruments"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	DurationMS  int64  `json:"duration_ms"`
	TS          string `json:"ts"`
}

func (w *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	body, err := json.Marshal(batchPayload{
		Level:       string(alert.Level),
		Title:       alert.Title,
		Message:     alert.Message,
		Instruments: alert.Instruments,
		Succeeded:   alert.Succeeded,
		Failed:      alert.Failed,
		DurationMS:  alert.Duration.Milliseconds(),
		TS:          time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}

	log.Printf("[notify] webhook %s accepted batch summary (%d/%d ok)", w.url, alert.Succeeded, alert.Instruments)
	return nil
}
