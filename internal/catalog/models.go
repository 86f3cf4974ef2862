package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product lifecycle: created draft/available by the admin, flipped
// active on publish. stock_status is mutated only by the order
// workflow (reserve) and the admin manual override.
const (
	StatusDraft  = "draft"
	StatusActive = "active"

	StockAvailable  = "available"
	StockOutOfStock = "out_of_stock"
	StockReserved   = "reserved"
)

type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Status      string          `json:"status"`
	StockStatus string          `json:"stock_status"`
	NetWeight   decimal.Decimal `json:"net_weight"`
	GrossWeight decimal.Decimal `json:"gross_weight"`
	MarkAmount  decimal.Decimal `json:"mark_amount"`
	Pieces      int             `json:"pieces"`
	Purity      string          `json:"purity"`
	Image       *string         `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Stock ledger actions. Rows are append-only.
const (
	ActionOrdered   = "ordered"
	ActionCancelled = "cancelled"
	ActionReturned  = "returned"
	ActionReserved  = "reserved"
	ActionReleased  = "released"
)

type StockHistoryEntry struct {
	ID             int64     `json:"id"`
	ProductID      int64     `json:"product_id"`
	Action         string    `json:"action"`
	Quantity       int       `json:"quantity"`
	OrderID        *int64    `json:"order_id,omitempty"`
	UserID         *int64    `json:"user_id,omitempty"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AvailableFor is the availability gate's decision rule: orderable iff
// published and not sold out. Reserved stock stays orderable.
func AvailableFor(status, stockStatus string) bool {
	return status == StatusActive && stockStatus != StockOutOfStock
}
