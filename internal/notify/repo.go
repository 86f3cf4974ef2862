package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TokenRepo struct {
	DB *pgxpool.Pool
}

// Register upserts a device token for a user. The token column is unique;
// re-registering from another account moves the token to the new owner,
// which also claims rows left behind by unauthenticated registration.
func (r *TokenRepo) Register(ctx context.Context, userID int64, token, platform string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, updated_at = now()
	`, userID, token, platform)
	if err != nil {
		return fmt.Errorf("register token: %w", err)
	}
	return nil
}

// RegisterAnonymous stores a token before login. user_id stays NULL until
// the owning user registers it again after authenticating.
func (r *TokenRepo) RegisterAnonymous(ctx context.Context, token, platform string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform, created_at, updated_at)
		VALUES (NULL, $1, $2, now(), now())
		ON CONFLICT (token) DO UPDATE
		SET platform = EXCLUDED.platform, updated_at = now()
	`, token, platform)
	if err != nil {
		return fmt.Errorf("register anonymous token: %w", err)
	}
	return nil
}

func (r *TokenRepo) ListByUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT token FROM device_tokens WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tokens user=%d: %w", userID, err)
	}
	defer rows.Close()
	return collectTokens(rows.Next, rows.Scan, rows.Err)
}

// ListAnonymous returns recently registered unclaimed tokens, newest first.
func (r *TokenRepo) ListAnonymous(ctx context.Context, since time.Duration) ([]string, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT token FROM device_tokens
		WHERE user_id IS NULL AND updated_at > now() - make_interval(secs => $1)
		ORDER BY updated_at DESC
	`, since.Seconds())
	if err != nil {
		return nil, fmt.Errorf("list anonymous tokens: %w", err)
	}
	defer rows.Close()
	return collectTokens(rows.Next, rows.Scan, rows.Err)
}

func collectTokens(next func() bool, scan func(...any) error, rowsErr func() error) ([]string, error) {
	var out []string
	for next() {
		var t string
		if err := scan(&t); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out = append(out, t)
	}
	if err := rowsErr(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return out, nil
}

type NotificationRepo struct {
	DB *pgxpool.Pool
}

func (r *NotificationRepo) Insert(ctx context.Context, n Notification) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO notifications (user_id, type, title, body, data, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id
	`, n.UserID, n.Type, n.Title, n.Body, n.Data).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}
	return id, nil
}

// RecentExists reports whether the user already received a notification of
// this type inside the dedup window.
func (r *NotificationRepo) RecentExists(ctx context.Context, userID int64, notifType string, window time.Duration) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND created_at > now() - make_interval(secs => $3)
		)
	`, userID, notifType, window.Seconds()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check recent notification: %w", err)
	}
	return exists, nil
}

// MarkUnread upserts the per-user unread marker for a notification.
func (r *NotificationRepo) MarkUnread(ctx context.Context, userID, notificationID int64) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO user_notifications (user_id, notification_id, is_read, created_at)
		VALUES ($1, $2, false, now())
		ON CONFLICT (user_id, notification_id) DO UPDATE SET is_read = false
	`, userID, notificationID)
	if err != nil {
		return fmt.Errorf("mark unread: %w", err)
	}
	return nil
}

func (r *NotificationRepo) StatsByUser(ctx context.Context, userID int64) (Stats, error) {
	var s Stats
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE NOT un.is_read)
		FROM notifications n
		JOIN user_notifications un ON un.notification_id = n.id AND un.user_id = $1
		WHERE n.user_id = $1
	`, userID).Scan(&s.Total, &s.Unread)
	if err != nil {
		return Stats{}, fmt.Errorf("notification stats user=%d: %w", userID, err)
	}
	return s, nil
}
