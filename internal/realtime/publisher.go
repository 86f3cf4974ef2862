package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/illusio-designs/goldline-backend/internal/redisx"
)

// Publisher fans events out to the realtime gateway over redis pub/sub.
// The gateway subscribes to the room channels and relays to connected
// sockets; each message carries the event name and an ISO timestamp.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

type message struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

func (p *Publisher) publish(ctx context.Context, channel, event string, data any) error {
	b, err := json.Marshal(message{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal realtime message: %w", err)
	}
	if err := p.rdb.Publish(ctx, channel, b).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (p *Publisher) EmitToAll(ctx context.Context, event string, data any) error {
	return p.publish(ctx, redisx.ChannelAll, event, data)
}

func (p *Publisher) EmitToAdmin(ctx context.Context, event string, data any) error {
	return p.publish(ctx, redisx.ChannelAdmin, event, data)
}

func (p *Publisher) EmitToUser(ctx context.Context, userID int64, event string, data any) error {
	return p.publish(ctx, fmt.Sprintf(redisx.ChannelUser, userID), event, data)
}

// Emit logs and swallows the error. Realtime delivery is best effort;
// callers on the request path must not fail because the gateway is down.
func Emit(fn func() error) {
	if err := fn(); err != nil {
		log.Printf("[realtime] emit: %v", err)
	}
}
