package httpx

import (
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/illusio-designs/goldline-backend/internal/kafka"
	"github.com/illusio-designs/goldline-backend/internal/orders"
)

// publishEvent wraps a payload in a v1 envelope and hands it to the
// producer inbox. Delivery is asynchronous; the request does not wait
// for the broker.
func publishEvent(p *kafkax.Producer, service, eventType, traceID string, key []byte, payload any) {
	ev := orders.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     service,
		TraceID:      traceID,
		Payload:      kafkax.MustMarshal(payload),
	}
	p.Publish(key, kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
