package alert

import (
	"context"
	"log"
)

// Notifier delivers operator alerts for risk events: halts, margin calls,
// daily summaries. Delivery is best-effort; a failed alert never interrupts
// trading.
type Notifier interface {
	Notify(text string) error
}

// RetryNotifier is implemented by notifiers whose deliveries are worth
// retrying with backoff.
type RetryNotifier interface {
	Notifier
	NotifyWithRetry(ctx context.Context, text string, maxRetries int) error
}

// LogNotifier writes alerts to the process log. Used when no external
// channel is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(text string) error {
	log.Printf("[ALERT] %s", text)
	return nil
}
