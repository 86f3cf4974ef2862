package users

import "time"

// Business account states. Orders owned by anything other than an
// approved user can only be cancelled.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusDenied   = "denied"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDenied:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"` // business | admin
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	BusinessName string    `json:"business_name,omitempty"`
	Status       string    `json:"status"`
	Remarks      *string   `json:"remarks,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest asks the admin to open a timed catalog session for a
// business user.
type LoginRequest struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	SessionTimeMinutes int       `json:"session_time_minutes"`
	Status             string    `json:"status"` // pending | approved | rejected
	Remarks            *string   `json:"remarks,omitempty"`
	CreatedAt          time.Time `json:"created_at"`

	UserName string `json:"user_name,omitempty"`
}
