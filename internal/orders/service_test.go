package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illusio-designs/goldline-backend/internal/catalog"
)

type fakeProduct struct {
	status      string
	stockStatus string
}

type fakeProductStore struct {
	products map[int64]*fakeProduct
	history  []catalog.StockHistoryEntry
}

func (f *fakeProductStore) IsAvailableForOrder(_ context.Context, id int64) (bool, error) {
	p, ok := f.products[id]
	if !ok {
		return false, nil
	}
	return catalog.AvailableFor(p.status, p.stockStatus), nil
}

func (f *fakeProductStore) ReserveForOrder(_ context.Context, id int64) (string, bool, error) {
	p, ok := f.products[id]
	if !ok || p.status != catalog.StatusActive || p.stockStatus == catalog.StockOutOfStock {
		return "", false, nil
	}
	prev := p.stockStatus
	p.stockStatus = catalog.StockOutOfStock
	return prev, true, nil
}

func (f *fakeProductStore) SetStockStatus(_ context.Context, id int64, status string) error {
	p, ok := f.products[id]
	if !ok {
		return catalog.ErrProductNotFound
	}
	p.stockStatus = status
	return nil
}

func (f *fakeProductStore) RecordStockHistory(_ context.Context, e catalog.StockHistoryEntry) error {
	f.history = append(f.history, e)
	return nil
}

type fakeOrderStore struct {
	nextID    int64
	inserted  []CreateInput
	insertErr error
}

func (f *fakeOrderStore) Insert(_ context.Context, in CreateInput) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	f.inserted = append(f.inserted, in)
	return f.nextID, nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id int64) (*Order, error) {
	for i, in := range f.inserted {
		if int64(i)+1 == id {
			return &Order{
				ID:          id,
				UserID:      in.UserID,
				ProductID:   in.ProductID,
				Quantity:    in.Quantity,
				TotalAmount: in.TotalAmount,
				Status:      StatusPending,
			}, nil
		}
	}
	return nil, ErrOrderNotFound
}

type fakeCartStore struct {
	items   []CartItem
	cleared bool
}

func (f *fakeCartStore) GetUserCart(_ context.Context, _ int64) ([]CartItem, error) {
	return f.items, nil
}

func (f *fakeCartStore) Clear(_ context.Context, _ int64) error {
	f.cleared = true
	return nil
}

func newService(products *fakeProductStore, store *fakeOrderStore, cart *fakeCartStore) *Service {
	return &Service{Products: products, Orders: store, Cart: cart}
}

func activeProduct() *fakeProduct {
	return &fakeProduct{status: catalog.StatusActive, stockStatus: catalog.StockAvailable}
}

func TestCreateOrder(t *testing.T) {
	products := &fakeProductStore{products: map[int64]*fakeProduct{42: activeProduct()}}
	store := &fakeOrderStore{}
	svc := newService(products, store, nil)

	o, err := svc.Create(context.Background(), CreateInput{
		UserID:      7,
		ProductID:   42,
		Quantity:    2,
		TotalAmount: decimal.RequireFromString("1500.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.ID)
	assert.Equal(t, StatusPending, o.Status)

	// The product is single-piece inventory: placing the order sells it out.
	assert.Equal(t, catalog.StockOutOfStock, products.products[42].stockStatus)

	require.Len(t, products.history, 1)
	entry := products.history[0]
	assert.Equal(t, catalog.ActionOrdered, entry.Action)
	assert.Equal(t, catalog.StockAvailable, entry.PreviousStatus)
	assert.Equal(t, catalog.StockOutOfStock, entry.NewStatus)
	require.NotNil(t, entry.OrderID)
	assert.Equal(t, o.ID, *entry.OrderID)
}

func TestCreateOrderUnavailable(t *testing.T) {
	products := &fakeProductStore{products: map[int64]*fakeProduct{
		1: {status: catalog.StatusActive, stockStatus: catalog.StockOutOfStock},
		2: {status: catalog.StatusDraft, stockStatus: catalog.StockAvailable},
	}}
	store := &fakeOrderStore{}
	svc := newService(products, store, nil)

	for _, id := range []int64{1, 2, 99} {
		_, err := svc.Create(context.Background(), CreateInput{UserID: 7, ProductID: id, Quantity: 1})
		assert.ErrorIs(t, err, ErrProductUnavailable, "product %d", id)
	}
	assert.Empty(t, store.inserted)
	assert.Empty(t, products.history)
}

func TestCreateOrderLedgerRecordsReplacedStatus(t *testing.T) {
	// The reserve reports what it overwrote, so a product sitting in
	// reserved (say, after an admin override) yields a ledger entry
	// with that status, not a stale earlier read.
	products := &fakeProductStore{products: map[int64]*fakeProduct{
		42: {status: catalog.StatusActive, stockStatus: catalog.StockReserved},
	}}
	store := &fakeOrderStore{}
	svc := newService(products, store, nil)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 7, ProductID: 42, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, products.history, 1)
	assert.Equal(t, catalog.StockReserved, products.history[0].PreviousStatus)
	assert.Equal(t, catalog.StockOutOfStock, products.history[0].NewStatus)
}

func TestCreateOrderSecondBuyerLoses(t *testing.T) {
	products := &fakeProductStore{products: map[int64]*fakeProduct{42: activeProduct()}}
	store := &fakeOrderStore{}
	svc := newService(products, store, nil)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 7, ProductID: 42, Quantity: 1})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{UserID: 8, ProductID: 42, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Len(t, store.inserted, 1)
}

func TestCreateOrderCompensatesFailedInsert(t *testing.T) {
	products := &fakeProductStore{products: map[int64]*fakeProduct{42: activeProduct()}}
	store := &fakeOrderStore{insertErr: errors.New("db down")}
	svc := newService(products, store, nil)

	_, err := svc.Create(context.Background(), CreateInput{UserID: 7, ProductID: 42, Quantity: 1})
	require.Error(t, err)

	// Stock goes back to its pre-reserve state so the product can sell.
	assert.Equal(t, catalog.StockAvailable, products.products[42].stockStatus)
	assert.Empty(t, products.history)
}

func TestCreateFromCart(t *testing.T) {
	products := &fakeProductStore{products: map[int64]*fakeProduct{
		1: activeProduct(),
		2: {status: catalog.StatusActive, stockStatus: catalog.StockOutOfStock},
		3: activeProduct(),
	}}
	store := &fakeOrderStore{}
	cart := &fakeCartStore{items: []CartItem{
		{ID: 101, UserID: 7, ProductID: 1, Quantity: 2, MarkAmount: decimal.RequireFromString("100")},
		{ID: 102, UserID: 7, ProductID: 2, Quantity: 1, MarkAmount: decimal.RequireFromString("250")},
		{ID: 103, UserID: 7, ProductID: 3, Quantity: 1, MarkAmount: decimal.RequireFromString("75.25")},
	}}
	svc := newService(products, store, cart)

	res, err := svc.CreateFromCart(context.Background(), 7, nil, nil)
	require.NoError(t, err)

	assert.Len(t, res.OrderIDs, 2)
	assert.Equal(t, []int64{2}, res.SkippedProducts)
	assert.True(t, cart.cleared)

	// Line totals come from mark amount times quantity.
	require.Len(t, store.inserted, 2)
	assert.True(t, store.inserted[0].TotalAmount.Equal(decimal.RequireFromString("200")))
	assert.True(t, store.inserted[1].TotalAmount.Equal(decimal.RequireFromString("75.25")))
}

func TestCreateFromCartEmpty(t *testing.T) {
	svc := newService(nil, nil, &fakeCartStore{})

	_, err := svc.CreateFromCart(context.Background(), 7, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestLineTotal(t *testing.T) {
	item := CartItem{Quantity: 3, MarkAmount: decimal.RequireFromString("12.50")}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("37.50")))
}
