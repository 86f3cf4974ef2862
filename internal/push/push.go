package push

import (
	"context"
	"log"
)

// Sender delivers one push message to one device token. Data values
// must already be strings (FCM rejects anything else).
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) (string, error)
}

// LogSender is the no-credentials fallback: it logs instead of
// sending, so the fan-out pipeline stays exercisable in dev.
type LogSender struct{}

func (LogSender) Send(_ context.Context, token, title, body string, _ map[string]string) (string, error) {
	log.Printf("[push] (dry-run) token=%.12s... title=%q body=%q", token, title, body)
	return "dry-run", nil
}
