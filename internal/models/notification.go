package models

import "time"

// Notification kinds.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMessage = "message"
)

// Notification records an activity addressed to the current user.
type Notification struct {
	ID        uint      `json:"Id"`
	Type      string    `json:"type"`
	ActorID   uint      `json:"actorId"`
	PostID    *uint     `json:"postId,omitempty"`
	Content   string    `json:"content,omitempty"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
	Actor     *User     `json:"actor"`
}

// GetID returns the record id.
func (n Notification) GetID() uint { return n.ID }
