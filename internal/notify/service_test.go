package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	byUser    map[int64][]string
	anonymous []string
}

func (f *fakeTokens) ListByUser(_ context.Context, userID int64) ([]string, error) {
	return f.byUser[userID], nil
}

func (f *fakeTokens) ListAnonymous(_ context.Context, _ time.Duration) ([]string, error) {
	return f.anonymous, nil
}

type fakeNotifications struct {
	nextID int64
	rows   []Notification
	recent map[string]bool // "userID/type"
	unread []int64
}

func key(userID int64, notifType string) string {
	return fmt.Sprintf("%d/%s", userID, notifType)
}

func (f *fakeNotifications) Insert(_ context.Context, n Notification) (int64, error) {
	f.nextID++
	n.ID = f.nextID
	f.rows = append(f.rows, n)
	return n.ID, nil
}

func (f *fakeNotifications) RecentExists(_ context.Context, userID int64, notifType string, _ time.Duration) (bool, error) {
	return f.recent[key(userID, notifType)], nil
}

func (f *fakeNotifications) MarkUnread(_ context.Context, _ int64, notificationID int64) error {
	f.unread = append(f.unread, notificationID)
	return nil
}

type fakePusher struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakePusher) Send(_ context.Context, token, _, _ string, _ map[string]string) (string, error) {
	if f.failFor[token] {
		return "", errors.New("unregistered token")
	}
	f.sent = append(f.sent, token)
	return "msg-id", nil
}

type fakeEmitter struct {
	userEvents  []string
	adminEvents []string
}

func (f *fakeEmitter) EmitToUser(_ context.Context, _ int64, event string, _ any) error {
	f.userEvents = append(f.userEvents, event)
	return nil
}

func (f *fakeEmitter) EmitToAdmin(_ context.Context, event string, _ any) error {
	f.adminEvents = append(f.adminEvents, event)
	return nil
}

func newTestService(tokens *fakeTokens, notifs *fakeNotifications, pusher *fakePusher, emitter *fakeEmitter) *Service {
	if notifs.recent == nil {
		notifs.recent = map[string]bool{}
	}
	return &Service{Tokens: tokens, Notifications: notifs, Pusher: pusher, Realtime: emitter}
}

func TestDeliver(t *testing.T) {
	tokens := &fakeTokens{byUser: map[int64][]string{7: {"tok-a", "tok-b"}}}
	notifs := &fakeNotifications{}
	pusher := &fakePusher{}
	emitter := &fakeEmitter{}
	svc := newTestService(tokens, notifs, pusher, emitter)

	res, err := svc.Deliver(context.Background(), Input{
		UserID: 7,
		Type:   TypeNewOrder,
		Title:  "New Order",
		Body:   "order placed",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.RequiresAppAction)
	assert.Equal(t, 2, res.PushSent)
	assert.Equal(t, []string{"tok-a", "tok-b"}, pusher.sent)

	require.Len(t, notifs.rows, 1)
	assert.Equal(t, TypeNewOrder, notifs.rows[0].Type)
	assert.Equal(t, []int64{1}, notifs.unread)
	assert.Equal(t, []string{TypeNewOrder}, emitter.userEvents)
}

func TestDeliverAdminRoom(t *testing.T) {
	tokens := &fakeTokens{byUser: map[int64][]string{1: {"tok-admin"}}}
	emitter := &fakeEmitter{}
	svc := newTestService(tokens, &fakeNotifications{}, &fakePusher{}, emitter)

	res, err := svc.Deliver(context.Background(), Input{
		UserID: 1,
		Admin:  true,
		Type:   TypeNewOrder,
		Title:  "New Order",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, []string{TypeNewOrder}, emitter.adminEvents)
	assert.Empty(t, emitter.userEvents)
}

func TestDeliverDeduplicates(t *testing.T) {
	tokens := &fakeTokens{byUser: map[int64][]string{7: {"tok-a"}}}
	notifs := &fakeNotifications{recent: map[string]bool{key(7, TypeNewOrder): true}}
	pusher := &fakePusher{}
	svc := newTestService(tokens, notifs, pusher, &fakeEmitter{})

	res, err := svc.Deliver(context.Background(), Input{UserID: 7, Type: TypeNewOrder})
	require.NoError(t, err)

	assert.True(t, res.Deduplicated)
	assert.Empty(t, notifs.rows)
	assert.Empty(t, pusher.sent)
}

func TestDeliverNoTokenRequiresAppAction(t *testing.T) {
	tokens := &fakeTokens{byUser: map[int64][]string{}}
	notifs := &fakeNotifications{}
	pusher := &fakePusher{}
	svc := newTestService(tokens, notifs, pusher, &fakeEmitter{})

	res, err := svc.Deliver(context.Background(), Input{UserID: 7, Type: TypeNewOrder})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.True(t, res.RequiresAppAction)
	// The row is still stored for in-app retrieval.
	assert.Len(t, notifs.rows, 1)
}

func TestDeliverAnonymousFallback(t *testing.T) {
	tokens := &fakeTokens{byUser: map[int64][]string{}, anonymous: []string{"tok-anon"}}

	// Login decisions may reach unclaimed tokens.
	svc := newTestService(tokens, &fakeNotifications{}, &fakePusher{}, &fakeEmitter{})
	res, err := svc.Deliver(context.Background(), Input{UserID: 7, Type: TypeLoginApproved})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.PushSent)

	// Other types must not leak to anonymous devices.
	svc = newTestService(tokens, &fakeNotifications{}, &fakePusher{}, &fakeEmitter{})
	res, err = svc.Deliver(context.Background(), Input{UserID: 7, Type: TypeNewOrder})
	require.NoError(t, err)
	assert.True(t, res.RequiresAppAction)
	assert.Equal(t, 0, res.PushSent)
}

func TestDeliverPartialPushFailure(t *testing.T) {
	tokens := &fakeTokens{byUser: map[int64][]string{7: {"tok-dead", "tok-live"}}}
	pusher := &fakePusher{failFor: map[string]bool{"tok-dead": true}}
	svc := newTestService(tokens, &fakeNotifications{}, pusher, &fakeEmitter{})

	res, err := svc.Deliver(context.Background(), Input{UserID: 7, Type: TypeNewOrder})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.PushSent)
	assert.Equal(t, []string{"tok-live"}, pusher.sent)
}

func TestSoundFor(t *testing.T) {
	assert.Equal(t, "new_order.wav", SoundFor(TypeNewOrder))
	assert.Equal(t, "login_request.wav", SoundFor(TypeLoginRequest))
	assert.Equal(t, "default", SoundFor("something_else"))
}
