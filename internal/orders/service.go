package orders

import (
	"context"
	"fmt"
	"log"

	"github.com/illusio-designs/goldline-backend/internal/catalog"
)

// ProductStore is the slice of the catalog the order workflow needs.
// *catalog.Repo satisfies it; tests use in-memory fakes.
type ProductStore interface {
	IsAvailableForOrder(ctx context.Context, id int64) (bool, error)
	ReserveForOrder(ctx context.Context, id int64) (string, bool, error)
	SetStockStatus(ctx context.Context, id int64, status string) error
	RecordStockHistory(ctx context.Context, e catalog.StockHistoryEntry) error
}

type OrderStore interface {
	Insert(ctx context.Context, in CreateInput) (int64, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
}

type CartStore interface {
	GetUserCart(ctx context.Context, userID int64) ([]CartItem, error)
	Clear(ctx context.Context, userID int64) error
}

// Service runs the order creation workflows. Status transitions stay
// on Repo because they need the approval check and the write in one
// transaction.
type Service struct {
	Products ProductStore
	Orders   OrderStore
	Cart     CartStore
}

// Create places one order for one product.
//
// The reserve step is the arbiter: the availability gate up front
// gives a clean rejection, but only the conditional stock flip decides
// who wins when two requests race for the last piece. The loser sees
// no flipped row and gets ErrProductUnavailable before any order row
// exists. The reserve also reports the stock status it replaced, so
// the ledger records what the flip actually overwrote.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	available, err := s.Products.IsAvailableForOrder(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrProductUnavailable
	}

	prevStatus, reserved, err := s.Products.ReserveForOrder(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrProductUnavailable
	}

	orderID, err := s.Orders.Insert(ctx, in)
	if err != nil {
		// Compensate: give the stock back so the product is not
		// stuck sold out with no order behind it.
		if relErr := s.Products.SetStockStatus(ctx, in.ProductID, prevStatus); relErr != nil {
			log.Printf("[orders] release stock after failed insert product=%d: %v", in.ProductID, relErr)
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	entry := catalog.StockHistoryEntry{
		ProductID:      in.ProductID,
		Action:         catalog.ActionOrdered,
		Quantity:       in.Quantity,
		OrderID:        &orderID,
		UserID:         &in.UserID,
		PreviousStatus: prevStatus,
		NewStatus:      catalog.StockOutOfStock,
		Notes:          fmt.Sprintf("Order %d placed - product marked as out of stock", orderID),
	}
	if err := s.Products.RecordStockHistory(ctx, entry); err != nil {
		// Audit only; the order stands.
		log.Printf("[orders] record stock history order=%d: %v", orderID, err)
	}

	return s.Orders.GetByID(ctx, orderID)
}

// CartResult reports a cart conversion: created order ids plus the
// product ids whose lines were skipped as unavailable.
type CartResult struct {
	OrderIDs        []int64 `json:"orderIds"`
	SkippedProducts []int64 `json:"skippedProducts,omitempty"`
}

// CreateFromCart converts every pending cart line into its own order.
// Lines are independent: an unavailable product is skipped, the rest
// proceed. The cart is cleared once the loop completes, skips and all.
func (s *Service) CreateFromCart(ctx context.Context, userID int64, remark, courierCompany *string) (*CartResult, error) {
	items, err := s.Cart.GetUserCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	res := &CartResult{}
	for _, item := range items {
		o, err := s.Create(ctx, CreateInput{
			UserID:         userID,
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			TotalAmount:    item.LineTotal(),
			Remark:         remark,
			CourierCompany: courierCompany,
		})
		if err != nil {
			log.Printf("[orders] cart line skipped user=%d product=%d: %v", userID, item.ProductID, err)
			res.SkippedProducts = append(res.SkippedProducts, item.ProductID)
			continue
		}
		res.OrderIDs = append(res.OrderIDs, o.ID)
	}

	if err := s.Cart.Clear(ctx, userID); err != nil {
		// Orders are already placed; a stale cart beats losing them.
		log.Printf("[orders] clear cart user=%d: %v", userID, err)
	}
	return res, nil
}
