package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/illusio-designs/goldline-backend/internal/push"
)

// DedupWindow suppresses repeat notifications of the same type to the same
// user. Events can be redelivered by the broker; the window keeps the phone
// from buzzing twice for one action.
const DedupWindow = 60 * time.Second

// AnonymousTokenAge bounds how far back unclaimed tokens are considered for
// the anonymous fallback.
const AnonymousTokenAge = 24 * time.Hour

type TokenStore interface {
	ListByUser(ctx context.Context, userID int64) ([]string, error)
	ListAnonymous(ctx context.Context, since time.Duration) ([]string, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n Notification) (int64, error)
	RecentExists(ctx context.Context, userID int64, notifType string, window time.Duration) (bool, error)
	MarkUnread(ctx context.Context, userID, notificationID int64) error
}

type Emitter interface {
	EmitToUser(ctx context.Context, userID int64, event string, data any) error
	EmitToAdmin(ctx context.Context, event string, data any) error
}

type Service struct {
	Tokens        TokenStore
	Notifications NotificationStore
	Pusher        push.Sender
	Realtime      Emitter
}

type Input struct {
	UserID int64
	Type   string
	Title  string
	Body   string
	Data   map[string]string

	// Admin routes the realtime emit to the admin room instead of the
	// recipient's user room. Token resolution still uses UserID.
	Admin bool
}

type Result struct {
	Success           bool  `json:"success"`
	Deduplicated      bool  `json:"deduplicated,omitempty"`
	RequiresAppAction bool  `json:"requiresAppAction,omitempty"`
	NotificationID    int64 `json:"notificationId,omitempty"`
	PushSent          int   `json:"pushSent"`
}

// Deliver records the notification and fans it out to the user's devices and
// realtime room. The stored row and the realtime emit are best effort; a
// delivery only fails outright when no device token can be found.
func (s *Service) Deliver(ctx context.Context, in Input) (Result, error) {
	seen, err := s.Notifications.RecentExists(ctx, in.UserID, in.Type, DedupWindow)
	if err != nil {
		log.Printf("[notify] dedup check user=%d type=%s: %v", in.UserID, in.Type, err)
	}
	if seen {
		return Result{Success: true, Deduplicated: true}, nil
	}

	var res Result
	res.NotificationID = s.store(ctx, in)
	res.PushSent = s.pushAll(ctx, in, s.resolveTokens(ctx, in))

	if s.Realtime != nil {
		payload := map[string]any{
			"title": in.Title,
			"body":  in.Body,
			"data":  in.Data,
		}
		var emitErr error
		if in.Admin {
			emitErr = s.Realtime.EmitToAdmin(ctx, in.Type, payload)
		} else {
			emitErr = s.Realtime.EmitToUser(ctx, in.UserID, in.Type, payload)
		}
		if emitErr != nil {
			log.Printf("[notify] realtime emit user=%d: %v", in.UserID, emitErr)
		}
	}

	if res.PushSent == 0 {
		res.RequiresAppAction = true
		return res, nil
	}
	res.Success = true
	return res, nil
}

func (s *Service) store(ctx context.Context, in Input) int64 {
	var data string
	if len(in.Data) > 0 {
		b, err := json.Marshal(in.Data)
		if err != nil {
			log.Printf("[notify] marshal data type=%s: %v", in.Type, err)
		} else {
			data = string(b)
		}
	}
	id, err := s.Notifications.Insert(ctx, Notification{
		UserID: in.UserID,
		Type:   in.Type,
		Title:  in.Title,
		Body:   in.Body,
		Data:   data,
	})
	if err != nil {
		log.Printf("[notify] insert user=%d type=%s: %v", in.UserID, in.Type, err)
		return 0
	}
	if err := s.Notifications.MarkUnread(ctx, in.UserID, id); err != nil {
		log.Printf("[notify] mark unread user=%d notification=%d: %v", in.UserID, id, err)
	}
	return id
}

func (s *Service) resolveTokens(ctx context.Context, in Input) []string {
	tokens, err := s.Tokens.ListByUser(ctx, in.UserID)
	if err != nil {
		log.Printf("[notify] list tokens user=%d: %v", in.UserID, err)
	}
	if len(tokens) > 0 {
		return tokens
	}
	if !AnonymousFallbackAllowed(in.Type) {
		return nil
	}
	tokens, err = s.Tokens.ListAnonymous(ctx, AnonymousTokenAge)
	if err != nil {
		log.Printf("[notify] list anonymous tokens: %v", err)
	}
	return tokens
}

func (s *Service) pushAll(ctx context.Context, in Input, tokens []string) int {
	if s.Pusher == nil || len(tokens) == 0 {
		return 0
	}
	data := map[string]string{"type": in.Type, "sound": SoundFor(in.Type)}
	for k, v := range in.Data {
		data[k] = v
	}
	sent := 0
	for _, token := range tokens {
		if _, err := s.Pusher.Send(ctx, token, in.Title, in.Body, data); err != nil {
			log.Printf("[notify] push type=%s: %v", in.Type, err)
			continue
		}
		sent++
	}
	return sent
}
