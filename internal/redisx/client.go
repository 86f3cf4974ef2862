package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// MarkEventSeen records an event id for redelivery dedup. Returns true
// if the id was already seen.
func MarkEventSeen(ctx context.Context, rdb *redis.Client, eventID string) (bool, error) {
	key := fmt.Sprintf(KeyDedupEvent, eventID)
	ok, err := rdb.SetNX(ctx, key, "1", TTLDedupEvent).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
