package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CartRepo struct{ DB *pgxpool.Pool }

// Add upserts on (user_id, product_id): a duplicate add accumulates
// quantity on a live line, while re-adding a removed line revives it
// with the new quantity only. The old quantity belongs to a line the
// user already took out of the cart.
func (r *CartRepo) Add(ctx context.Context, userID, productID int64, quantity int) (int64, error) {
	if quantity <= 0 {
		quantity = 1
	}
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items (user_id, product_id, quantity, status)
		VALUES ($1, $2, $3, 'pending')
		ON CONFLICT (user_id, product_id) DO UPDATE SET
			quantity = CASE
				WHEN cart_items.status = 'removed' THEN EXCLUDED.quantity
				ELSE cart_items.quantity + EXCLUDED.quantity
			END,
			status = 'pending',
			updated_at = now()
		RETURNING id`,
		userID, productID, quantity).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add to cart: %w", err)
	}
	return id, nil
}

const cartSelect = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.status,
	       ci.created_at, ci.updated_at,
	       COALESCE(p.name, ''), COALESCE(p.sku, ''), p.image,
	       COALESCE(c.name, ''),
	       COALESCE(p.mark_amount, 0), COALESCE(p.net_weight, 0), COALESCE(p.gross_weight, 0)
	FROM cart_items ci
	LEFT JOIN products p ON ci.product_id = p.id
	LEFT JOIN categories c ON p.category_id = c.id`

func scanCartItem(row pgx.Row) (*CartItem, error) {
	var ci CartItem
	err := row.Scan(&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity, &ci.Status,
		&ci.CreatedAt, &ci.UpdatedAt,
		&ci.ProductName, &ci.ProductSKU, &ci.ProductImage, &ci.CategoryName,
		&ci.MarkAmount, &ci.NetWeight, &ci.GrossWeight)
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (r *CartRepo) GetItem(ctx context.Context, id int64) (*CartItem, error) {
	ci, err := scanCartItem(r.DB.QueryRow(ctx, cartSelect+` WHERE ci.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return ci, nil
}

// GetUserCart returns the user's live lines, newest first.
func (r *CartRepo) GetUserCart(ctx context.Context, userID int64) ([]CartItem, error) {
	rows, err := r.DB.Query(ctx,
		cartSelect+` WHERE ci.user_id=$1 AND ci.status <> 'removed' ORDER BY ci.created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("get user cart: %w", err)
	}
	defer rows.Close()

	var out []CartItem
	for rows.Next() {
		ci, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ci)
	}
	return out, rows.Err()
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE cart_items SET quantity=$2, updated_at=now() WHERE id=$1 AND status <> 'removed'`,
		id, quantity)
	if err != nil {
		return fmt.Errorf("update cart quantity: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Remove soft-deletes one line.
func (r *CartRepo) Remove(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE cart_items SET status='removed', updated_at=now() WHERE id=$1 AND status <> 'removed'`,
		id)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear soft-deletes every live line for the user.
func (r *CartRepo) Clear(ctx context.Context, userID int64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE cart_items SET status='removed', updated_at=now() WHERE user_id=$1 AND status <> 'removed'`,
		userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
