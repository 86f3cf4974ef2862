package catalog

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illusio-designs/goldline-backend/internal/postgres/postgrestest"
)

func seedCategory(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO categories (name) VALUES ('Rings') RETURNING id`).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestReserveForOrder(t *testing.T) {
	pool := postgrestest.StartPool(t)
	repo := &Repo{DB: pool}
	ctx := context.Background()

	p, err := repo.Create(ctx, CreateProductInput{
		CategoryID: seedCategory(t, pool),
		Name:       "Gold Ring",
		SKU:        "SKU-R1",
		MarkAmount: decimal.RequireFromString("1200"),
		Pieces:     1,
		Purity:     "22K",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, StockAvailable, p.StockStatus)

	// Drafts are not orderable, so the reserve refuses them too.
	_, ok, err := repo.ReserveForOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Publish(ctx, p.ID))

	prev, ok, err := repo.ReserveForOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StockAvailable, prev)

	available, err := repo.IsAvailableForOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, available)

	// The piece is gone; a second reserve loses.
	_, ok, err = repo.ReserveForOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// After an admin flips the piece to reserved, the CAS reports
	// that status as what it replaced.
	require.NoError(t, repo.SetStockStatus(ctx, p.ID, StockReserved))
	prev, ok, err = repo.ReserveForOrder(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StockReserved, prev)
}

func TestIsAvailableForOrderMissingRow(t *testing.T) {
	pool := postgrestest.StartPool(t)
	repo := &Repo{DB: pool}

	available, err := repo.IsAvailableForOrder(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, available)
}
