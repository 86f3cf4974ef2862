package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, category_id, name, sku, status, stock_status,
	net_weight, gross_weight, mark_amount, pieces, purity, image, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.SKU, &p.Status, &p.StockStatus,
		&p.NetWeight, &p.GrossWeight, &p.MarkAmount, &p.Pieces, &p.Purity, &p.Image,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type CreateProductInput struct {
	CategoryID  int64
	Name        string
	SKU         string
	NetWeight   decimal.Decimal
	GrossWeight decimal.Decimal
	MarkAmount  decimal.Decimal
	Pieces      int
	Purity      string
	Image       *string
}

// Create inserts a product as draft/available regardless of input.
func (r *Repo) Create(ctx context.Context, in CreateProductInput) (*Product, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO products (category_id, name, sku, status, stock_status,
			net_weight, gross_weight, mark_amount, pieces, purity, image)
		VALUES ($1, $2, $3, 'draft', 'available', $4, $5, $6, $7, $8, $9)
		RETURNING `+productColumns,
		in.CategoryID, in.Name, in.SKU, in.NetWeight, in.GrossWeight,
		in.MarkAmount, in.Pieces, in.Purity, in.Image)
	p, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

type ListFilter struct {
	CategoryID    int64 // 0 = all categories
	IncludeDrafts bool  // admin listing
	OnlyAvailable bool  // storefront listing
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	if !f.IncludeDrafts {
		q += ` AND status = 'active'`
	}
	if f.OnlyAvailable {
		q += ` AND stock_status <> 'out_of_stock'`
	}
	if f.CategoryID != 0 {
		args = append(args, f.CategoryID)
		q += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Publish flips a draft product to active.
func (r *Repo) Publish(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET status='active', updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("publish product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// IsAvailableForOrder reports whether the product is orderable right
// now. A missing row is not an error, just unavailable.
func (r *Repo) IsAvailableForOrder(ctx context.Context, id int64) (bool, error) {
	var status, stockStatus string
	err := r.DB.QueryRow(ctx,
		`SELECT status, stock_status FROM products WHERE id=$1`, id).
		Scan(&status, &stockStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return AvailableFor(status, stockStatus), nil
}

func (r *Repo) GetStockStatus(ctx context.Context, id int64) (string, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT stock_status FROM products WHERE id=$1`, id).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrProductNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get stock status: %w", err)
	}
	return s, nil
}

// ReserveForOrder flips the product to out_of_stock iff it is still
// orderable, reporting the stock status it replaced. The conditional
// update is the whole availability race: whichever request flips the
// row wins, every other one sees no row and must reject the order.
// Returning the replaced status from the same statement keeps the
// ledger's previous_status honest even when an admin override lands
// between the availability check and the reserve.
func (r *Repo) ReserveForOrder(ctx context.Context, id int64) (string, bool, error) {
	var prev string
	err := r.DB.QueryRow(ctx, `
		UPDATE products p SET stock_status='out_of_stock', updated_at=now()
		FROM (SELECT id, stock_status FROM products WHERE id=$1 FOR UPDATE) old
		WHERE p.id = old.id AND p.status='active' AND p.stock_status <> 'out_of_stock'
		RETURNING old.stock_status`, id).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reserve product: %w", err)
	}
	return prev, true, nil
}

// SetStockStatus is the admin manual override. Callers record a ledger
// entry alongside.
func (r *Repo) SetStockStatus(ctx context.Context, id int64, status string) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET stock_status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("set stock status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// RecordStockHistory appends to the audit ledger. Entries are never
// updated or deleted.
func (r *Repo) RecordStockHistory(ctx context.Context, e StockHistoryEntry) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO product_stock_history
			(product_id, action, quantity, order_id, user_id, previous_status, new_status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ProductID, e.Action, e.Quantity, e.OrderID, e.UserID,
		e.PreviousStatus, e.NewStatus, e.Notes)
	if err != nil {
		return fmt.Errorf("record stock history: %w", err)
	}
	return nil
}

func (r *Repo) ListStockHistory(ctx context.Context, productID int64) ([]StockHistoryEntry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, action, quantity, order_id, user_id,
		       previous_status, new_status, notes, created_at
		FROM product_stock_history
		WHERE product_id=$1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}
	defer rows.Close()

	var out []StockHistoryEntry
	for rows.Next() {
		var e StockHistoryEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.Action, &e.Quantity, &e.OrderID,
			&e.UserID, &e.PreviousStatus, &e.NewStatus, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
