package notify

import "time"

// Notification types understood by the mobile apps.
const (
	TypeUserRegistration = "user_registration"
	TypeLoginRequest     = "login_request"
	TypeLoginApproved    = "login_approved"
	TypeLoginRejected    = "login_rejected"
	TypeNewOrder         = "new_order"
	TypeOrderStatus      = "order_status"
	TypeAccountStatus    = "account_status"
)

// Sound names bundled with the apps. Unknown types fall back to the default.
var typeSounds = map[string]string{
	TypeUserRegistration: "registration.wav",
	TypeLoginRequest:     "login_request.wav",
	TypeLoginApproved:    "login_approved.wav",
	TypeLoginRejected:    "login_rejected.wav",
	TypeNewOrder:         "new_order.wav",
}

func SoundFor(notifType string) string {
	if s, ok := typeSounds[notifType]; ok {
		return s
	}
	return "default"
}

// AnonymousFallbackAllowed reports whether a notification of this type may
// be delivered to unclaimed device tokens when the user has none registered.
// Login decisions happen before the app has an authenticated session, so the
// device token may still be unclaimed at decision time.
func AnonymousFallbackAllowed(notifType string) bool {
	return notifType == TypeLoginApproved || notifType == TypeLoginRejected
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Data      string    `json:"data,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type DeviceToken struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"userId,omitempty"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Stats struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}
