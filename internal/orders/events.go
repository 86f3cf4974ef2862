package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated          = "OrderCreated"
	EventOrdersCreatedFromCart = "OrdersCreatedFromCart"
	EventOrderStatusUpdated    = "OrderStatusUpdated"
	EventUserRegistered        = "UserRegistered"
	EventUserStatusChanged     = "UserStatusChanged"
	EventLoginRequested        = "LoginRequested"
	EventLoginRequestDecided   = "LoginRequestDecided"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "goldline-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads per event ----

type OrderCreatedPayload struct {
	OrderID     int64  `json:"order_id"`
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
	Quantity    int    `json:"quantity"`
	TotalAmount string `json:"total_amount"`
	Status      Status `json:"status"`
}

type OrdersCreatedFromCartPayload struct {
	UserID          int64   `json:"user_id"`
	UserName        string  `json:"user_name"`
	OrderIDs        []int64 `json:"order_ids"`
	SkippedProducts []int64 `json:"skipped_products,omitempty"`
}

type OrderStatusUpdatedPayload struct {
	OrderID     int64  `json:"order_id"`
	UserID      int64  `json:"user_id"`
	Status      Status `json:"status"`
	ProductName string `json:"product_name"`
	TotalAmount string `json:"total_amount"`
	Remark      string `json:"remark,omitempty"`
}

type UserRegisteredPayload struct {
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

type UserStatusChangedPayload struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

type LoginRequestedPayload struct {
	RequestID          int64  `json:"request_id"`
	UserID             int64  `json:"user_id"`
	UserName           string `json:"user_name"`
	SessionTimeMinutes int    `json:"session_time_minutes"`
}

type LoginRequestDecidedPayload struct {
	RequestID          int64  `json:"request_id"`
	UserID             int64  `json:"user_id"`
	UserName           string `json:"user_name"`
	Status             string `json:"status"` // approved | rejected
	Remarks            string `json:"remarks,omitempty"`
	SessionTimeMinutes int    `json:"session_time_minutes"`
}
