package orders

import (
	"errors"
	"fmt"
)

var (
	ErrProductUnavailable = errors.New("product is not available for order")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOrderNotFound      = errors.New("order not found")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrInvalidStatus      = errors.New("invalid order status")
)

// BlockedOrder identifies one order whose owner blocks a status
// transition, with enough context for the caller to self-correct.
type BlockedOrder struct {
	OrderID    int64  `json:"orderId"`
	UserID     int64  `json:"userId"`
	UserStatus string `json:"userStatus"`
}

// BusinessNotApprovedError rejects a status transition because one or
// more owning business users are not approved. Cancellation is always
// permitted, so that is the remediation offered.
type BusinessNotApprovedError struct {
	Blocked []BlockedOrder
}

func (e *BusinessNotApprovedError) Error() string {
	return fmt.Sprintf("business not approved for %d order(s)", len(e.Blocked))
}

func (e *BusinessNotApprovedError) AllowedStatuses() []Status {
	return []Status{StatusCancelled}
}
