package redisx

import "time"

const (
	// Dedup consumed notification events: dedup:notifier:{event_id}.
	KeyDedupEvent = "dedup:notifier:%s"

	// Realtime rooms, mirrored by the socket gateway:
	// rt:all fans out to every connected client, rt:admin to the
	// dashboard, rt:user-{id} to one business user's devices.
	ChannelAll   = "rt:all"
	ChannelAdmin = "rt:admin"
	ChannelUser  = "rt:user-%d"
)

var (
	TTLDedupEvent = 48 * time.Hour
)
