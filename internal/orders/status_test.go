package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus("refunded"))
	assert.False(t, ValidStatus(""))
}

func TestStatusAllowedFor(t *testing.T) {
	// Cancellation never requires approval.
	assert.True(t, StatusAllowedFor("pending", StatusCancelled))
	assert.True(t, StatusAllowedFor("rejected", StatusCancelled))

	// Everything else does.
	assert.True(t, StatusAllowedFor(UserApproved, StatusProcessing))
	assert.True(t, StatusAllowedFor(UserApproved, StatusShipped))
	assert.False(t, StatusAllowedFor("pending", StatusProcessing))
	assert.False(t, StatusAllowedFor("rejected", StatusDelivered))
	assert.False(t, StatusAllowedFor("", StatusShipped))
}

func TestBlockedFor(t *testing.T) {
	owners := []OwnerApproval{
		{OrderID: 1, UserID: 10, UserStatus: UserApproved},
		{OrderID: 2, UserID: 11, UserStatus: "pending"},
		{OrderID: 3, UserID: 12, UserStatus: "rejected"},
	}

	blocked := BlockedFor(owners, StatusProcessing)
	assert.Equal(t, []BlockedOrder{
		{OrderID: 2, UserID: 11, UserStatus: "pending"},
		{OrderID: 3, UserID: 12, UserStatus: "rejected"},
	}, blocked)

	// Cancellation is always open.
	assert.Empty(t, BlockedFor(owners, StatusCancelled))
}
