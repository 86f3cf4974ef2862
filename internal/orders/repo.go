package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

type CreateInput struct {
	UserID         int64
	ProductID      int64
	Quantity       int
	TotalAmount    decimal.Decimal
	Remark         *string
	CourierCompany *string
}

// Insert writes the order row with status pending. Stock bookkeeping
// lives in Service.Create, not here.
func (r *Repo) Insert(ctx context.Context, in CreateInput) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders (user_id, product_id, quantity, total_amount, status, remark, courier_company)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6)
		RETURNING id`,
		in.UserID, in.ProductID, in.Quantity, in.TotalAmount, in.Remark, in.CourierCompany).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

const orderSelect = `
	SELECT o.id, o.user_id, o.product_id, o.quantity, o.total_amount, o.status,
	       o.remark, o.courier_company, o.created_at, o.updated_at,
	       COALESCE(u.name, ''), COALESCE(u.business_name, ''), COALESCE(u.status, ''),
	       COALESCE(p.name, ''), COALESCE(p.sku, ''), p.image,
	       COALESCE(c.name, '')
	FROM orders o
	LEFT JOIN users u ON o.user_id = u.id
	LEFT JOIN products p ON o.product_id = p.id
	LEFT JOIN categories c ON p.category_id = c.id`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &o.TotalAmount, &o.Status,
		&o.Remark, &o.CourierCompany, &o.CreatedAt, &o.UpdatedAt,
		&o.UserName, &o.BusinessName, &o.UserStatus,
		&o.ProductName, &o.ProductSKU, &o.ProductImage,
		&o.CategoryName)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, orderSelect+` WHERE o.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *Repo) listQuery(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.listQuery(ctx, orderSelect+` ORDER BY o.created_at DESC`)
}

func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	return r.listQuery(ctx, orderSelect+` WHERE o.user_id=$1 ORDER BY o.created_at DESC`, userID)
}

// OwnerApproval pairs an order with its owning user's approval state,
// for the status-transition gate.
type OwnerApproval struct {
	OrderID    int64
	UserID     int64
	UserStatus string
}

// BlockedFor returns the owners that block a transition to target.
// Pure rule shared by the single and bulk paths.
func BlockedFor(owners []OwnerApproval, target Status) []BlockedOrder {
	var blocked []BlockedOrder
	for _, ow := range owners {
		if !StatusAllowedFor(ow.UserStatus, target) {
			blocked = append(blocked, BlockedOrder{
				OrderID:    ow.OrderID,
				UserID:     ow.UserID,
				UserStatus: ow.UserStatus,
			})
		}
	}
	return blocked
}

func ownerApprovalsTx(ctx context.Context, tx pgx.Tx, ids []int64) ([]OwnerApproval, error) {
	// FOR UPDATE OF o keeps the approval pre-check and the status
	// write inside one lock scope instead of two round trips.
	rows, err := tx.Query(ctx, `
		SELECT o.id, o.user_id, COALESCE(u.status, '')
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
		WHERE o.id = ANY($1)
		FOR UPDATE OF o`, ids)
	if err != nil {
		return nil, fmt.Errorf("load order owners: %w", err)
	}
	defer rows.Close()

	var out []OwnerApproval
	for rows.Next() {
		var ow OwnerApproval
		if err := rows.Scan(&ow.OrderID, &ow.UserID, &ow.UserStatus); err != nil {
			return nil, err
		}
		out = append(out, ow)
	}
	return out, rows.Err()
}

// UpdateStatus transitions one order, applying the approval gate, and
// returns the updated row.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, target Status) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	owners, err := ownerApprovalsTx(ctx, tx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return nil, ErrOrderNotFound
	}
	if blocked := BlockedFor(owners, target); len(blocked) > 0 {
		return nil, &BusinessNotApprovedError{Blocked: blocked}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, target); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return r.GetByID(ctx, id)
}

// BulkUpdateStatus is all-or-nothing for any target except cancelled:
// one blocked owner rejects the whole batch before any write. The gate
// is bypassed entirely for cancellation.
func (r *Repo) BulkUpdateStatus(ctx context.Context, ids []int64, target Status) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if target != StatusCancelled {
		owners, err := ownerApprovalsTx(ctx, tx, ids)
		if err != nil {
			return 0, err
		}
		if blocked := BlockedFor(owners, target); len(blocked) > 0 {
			return 0, &BusinessNotApprovedError{Blocked: blocked}
		}
	}

	ct, err := tx.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id = ANY($1)`, ids, target)
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return ct.RowsAffected(), nil
}

// Delete hard-deletes an order. Explicit admin action only.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repo) Statistics(ctx context.Context) (*Statistics, error) {
	var s Statistics
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'processing'),
		       COUNT(*) FILTER (WHERE status = 'shipped'),
		       COUNT(*) FILTER (WHERE status = 'delivered'),
		       COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM orders`).
		Scan(&s.Total, &s.Pending, &s.Processing, &s.Shipped, &s.Delivered, &s.Cancelled)
	if err != nil {
		return nil, fmt.Errorf("order statistics: %w", err)
	}
	return &s, nil
}
