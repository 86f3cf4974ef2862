package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order carries exactly one product; a multi-item cart becomes one
// order row per line.
type Order struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	ProductID      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Status         Status          `json:"status"`
	Remark         *string         `json:"remark,omitempty"`
	CourierCompany *string         `json:"courier_company,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Joined display fields, empty outside detail queries.
	UserName     string  `json:"user_name,omitempty"`
	BusinessName string  `json:"business_name,omitempty"`
	UserStatus   string  `json:"user_status,omitempty"`
	ProductName  string  `json:"product_name,omitempty"`
	ProductSKU   string  `json:"product_sku,omitempty"`
	ProductImage *string `json:"product_image,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
}

const (
	CartPending = "pending"
	CartRemoved = "removed"
)

// CartItem rows are soft-deleted: status flips to removed, the row
// stays for history.
type CartItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductName  string          `json:"product_name,omitempty"`
	ProductSKU   string          `json:"product_sku,omitempty"`
	ProductImage *string         `json:"product_image,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	MarkAmount   decimal.Decimal `json:"mark_amount"`
	NetWeight    decimal.Decimal `json:"net_weight"`
	GrossWeight  decimal.Decimal `json:"gross_weight"`
}

// LineTotal is what a cart line contributes when converted to an
// order: mark amount times quantity.
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.MarkAmount.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

type Statistics struct {
	Total      int64 `json:"total_orders"`
	Pending    int64 `json:"pending_orders"`
	Processing int64 `json:"processing_orders"`
	Shipped    int64 `json:"shipped_orders"`
	Delivered  int64 `json:"delivered_orders"`
	Cancelled  int64 `json:"cancelled_orders"`
}
