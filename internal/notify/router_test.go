package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/illusio-designs/goldline-backend/internal/orders"
)

func envelope(t *testing.T, eventType string, payload any) kafkago.Message {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	value, err := json.Marshal(orders.Envelope{
		EventID:      "evt-1",
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      raw,
	})
	require.NoError(t, err)
	return kafkago.Message{Value: value}
}

func newTestRouter() (*Router, *fakeNotifications, *fakePusher) {
	notifs := &fakeNotifications{recent: map[string]bool{}}
	pusher := &fakePusher{}
	tokens := &fakeTokens{byUser: map[int64][]string{
		1: {"tok-admin"},
		7: {"tok-user"},
	}}
	svc := &Service{Tokens: tokens, Notifications: notifs, Pusher: pusher, Realtime: &fakeEmitter{}}
	return &Router{Svc: svc, AdminUserID: 1}, notifs, pusher
}

func TestRouterOrderCreatedNotifiesAdmin(t *testing.T) {
	r, notifs, pusher := newTestRouter()

	msg := envelope(t, orders.EventOrderCreated, orders.OrderCreatedPayload{
		OrderID:     55,
		UserID:      7,
		UserName:    "Asha Jewels",
		ProductName: "Gold Bangle",
		Quantity:    2,
	})
	require.NoError(t, r.Handle(context.Background(), msg))

	require.Len(t, notifs.rows, 1)
	assert.Equal(t, int64(1), notifs.rows[0].UserID)
	assert.Equal(t, TypeNewOrder, notifs.rows[0].Type)
	assert.Contains(t, notifs.rows[0].Body, "Asha Jewels")
	assert.Equal(t, []string{"tok-admin"}, pusher.sent)
}

func TestRouterStatusUpdateNotifiesOwner(t *testing.T) {
	r, notifs, pusher := newTestRouter()

	msg := envelope(t, orders.EventOrderStatusUpdated, orders.OrderStatusUpdatedPayload{
		OrderID:     55,
		UserID:      7,
		Status:      orders.StatusShipped,
		ProductName: "Gold Bangle",
	})
	require.NoError(t, r.Handle(context.Background(), msg))

	require.Len(t, notifs.rows, 1)
	assert.Equal(t, int64(7), notifs.rows[0].UserID)
	assert.Equal(t, TypeOrderStatus, notifs.rows[0].Type)
	assert.Equal(t, []string{"tok-user"}, pusher.sent)
}

func TestRouterLoginDecision(t *testing.T) {
	r, notifs, _ := newTestRouter()

	msg := envelope(t, orders.EventLoginRequestDecided, orders.LoginRequestDecidedPayload{
		RequestID:          9,
		UserID:             7,
		Status:             "approved",
		SessionTimeMinutes: 60,
	})
	require.NoError(t, r.Handle(context.Background(), msg))

	require.Len(t, notifs.rows, 1)
	assert.Equal(t, TypeLoginApproved, notifs.rows[0].Type)
	assert.Contains(t, notifs.rows[0].Body, "60 minutes")

	msg = envelope(t, orders.EventLoginRequestDecided, orders.LoginRequestDecidedPayload{
		RequestID: 10,
		UserID:    7,
		Status:    "rejected",
	})
	require.NoError(t, r.Handle(context.Background(), msg))
	// Same type inside the dedup window would be suppressed; the
	// rejected decision maps to a different type so it goes through.
	require.Len(t, notifs.rows, 2)
	assert.Equal(t, TypeLoginRejected, notifs.rows[1].Type)
}

func TestRouterSkipsSeenEvents(t *testing.T) {
	r, notifs, _ := newTestRouter()
	r.Seen = func(context.Context, string) (bool, error) { return true, nil }

	msg := envelope(t, orders.EventOrderCreated, orders.OrderCreatedPayload{OrderID: 55, UserID: 7})
	require.NoError(t, r.Handle(context.Background(), msg))
	assert.Empty(t, notifs.rows)
}

func TestRouterSkipsUnknownAndMalformed(t *testing.T) {
	r, notifs, _ := newTestRouter()

	require.NoError(t, r.Handle(context.Background(), envelope(t, "SomethingNew", map[string]int{"x": 1})))
	require.NoError(t, r.Handle(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.Empty(t, notifs.rows)
}
