package cache

import "fmt"

const (
	UserChannelPrefix = "pulse:user:%d:events"
	BroadcastChannel  = "pulse:events"
)

// UserChannel is the pub/sub channel carrying events addressed to one user.
func UserChannel(userID uint) string {
	return fmt.Sprintf(UserChannelPrefix, userID)
}
