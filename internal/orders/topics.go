package orders

import "strconv"

const (
	TopicOrderEvents = "goldline.order.events"
	TopicUserEvents  = "goldline.user.events"
)

// Partition key = user id, so all of one business user's
// notifications keep their order.
func PartitionKey(userID int64) []byte {
	return []byte(strconv.FormatInt(userID, 10))
}
