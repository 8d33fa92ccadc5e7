// Package notification delivers batch-run alerts to external channels
// (webhooks, logs) once a preparation run finishes.
package notification

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"dataprep-systemv1/internal/model"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a batch summary to be delivered. The counts and duration
// ride along as structured fields so backends can expose them without
// parsing the message text.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`

	Instruments int           `json:"instruments"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration_ns"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %d/%d ok in %s",
		alert.Level, alert.Title, alert.Succeeded, alert.Instruments, alert.Duration.Round(time.Millisecond))
	return nil
}

// BatchAlert builds an alert summarizing a completed batch run. Level is
// INFO when every instrument succeeded, WARNING on partial failure and
// CRITICAL when nothing succeeded.
func BatchAlert(report *model.Report) Alert {
	succeeded := report.Succeeded()
	failures := report.Failures()

	level := AlertInfo
	switch {
	case len(failures) == len(report.Results) && len(report.Results) > 0:
		level = AlertCritical
	case len(failures) > 0:
		level = AlertWarning
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d instruments prepared in %s",
		succeeded, len(report.Results), report.Duration.Round(time.Millisecond))
	for _, r := range failures {
		fmt.Fprintf(&b, "\n%s: %v", r.Instrument, r.Err)
	}

	return Alert{
		Level:   level,
		Title:   "data preparation batch finished",
		Message: b.String(),

		Instruments: len(report.Results),
		Succeeded:   succeeded,
		Failed:      len(failures),
		Duration:    report.Duration,
	}
}
