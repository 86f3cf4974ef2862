package notify

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illusio-designs/goldline-backend/internal/postgres/postgrestest"
)

func seedUser(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (type, name, email, status)
		VALUES ('business', $1, $1, 'approved') RETURNING id`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestNotificationDedupWindow(t *testing.T) {
	pool := postgrestest.StartPool(t)
	repo := &NotificationRepo{DB: pool}
	ctx := context.Background()

	user := seedUser(t, pool, "dedup@goldline.test")

	id, err := repo.Insert(ctx, Notification{
		UserID: user,
		Type:   TypeNewOrder,
		Title:  "New Order",
		Body:   "order placed",
	})
	require.NoError(t, err)

	seen, err := repo.RecentExists(ctx, user, TypeNewOrder, DedupWindow)
	require.NoError(t, err)
	assert.True(t, seen)

	// A different type to the same user is not suppressed.
	seen, err = repo.RecentExists(ctx, user, TypeOrderStatus, DedupWindow)
	require.NoError(t, err)
	assert.False(t, seen)

	// Age the row past the window; the suppression lapses.
	_, err = pool.Exec(ctx,
		`UPDATE notifications SET created_at = now() - interval '2 minutes' WHERE id=$1`, id)
	require.NoError(t, err)

	seen, err = repo.RecentExists(ctx, user, TypeNewOrder, DedupWindow)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestUnreadMarkerAndStats(t *testing.T) {
	pool := postgrestest.StartPool(t)
	repo := &NotificationRepo{DB: pool}
	ctx := context.Background()

	user := seedUser(t, pool, "stats@goldline.test")

	id, err := repo.Insert(ctx, Notification{UserID: user, Type: TypeNewOrder})
	require.NoError(t, err)
	require.NoError(t, repo.MarkUnread(ctx, user, id))
	// Marking twice upserts, it does not duplicate.
	require.NoError(t, repo.MarkUnread(ctx, user, id))

	s, err := repo.StatsByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.Total)
	assert.Equal(t, int64(1), s.Unread)
}

func TestTokenClaimOnReregister(t *testing.T) {
	pool := postgrestest.StartPool(t)
	tokens := &TokenRepo{DB: pool}
	ctx := context.Background()

	user := seedUser(t, pool, "token@goldline.test")

	require.NoError(t, tokens.RegisterAnonymous(ctx, "tok-1", "android"))

	anon, err := tokens.ListAnonymous(ctx, AnonymousTokenAge)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, anon)

	owned, err := tokens.ListByUser(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, owned)

	// The authenticated registration claims the anonymous row.
	require.NoError(t, tokens.Register(ctx, user, "tok-1", "android"))

	owned, err = tokens.ListByUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, owned)

	anon, err = tokens.ListAnonymous(ctx, AnonymousTokenAge)
	require.NoError(t, err)
	assert.Empty(t, anon)
}
