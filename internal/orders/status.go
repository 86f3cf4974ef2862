package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

func ValidStatus(s Status) bool { return validStatuses[s] }

// UserApproved is the owning business user's state that unlocks the
// full status set. Non-approved users' orders can only be cancelled.
const UserApproved = "approved"

// StatusAllowedFor applies the approval gate: any target status is
// fine for an approved owner; everyone else may only cancel.
func StatusAllowedFor(userStatus string, target Status) bool {
	if target == StatusCancelled {
		return true
	}
	return userStatus == UserApproved
}
