package models

import "time"

// Conversation is a two-party message thread.
type Conversation struct {
	ID            uint      `json:"Id"`
	Participants  []uint    `json:"participants"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
	OtherUser     *User     `json:"otherUser"`
}

// GetID returns the record id.
func (c Conversation) GetID() uint { return c.ID }

// HasParticipant reports whether userID takes part in the conversation.
func (c Conversation) HasParticipant(userID uint) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not userID, or 0.
func (c Conversation) OtherParticipant(userID uint) uint {
	for _, id := range c.Participants {
		if id != userID {
			return id
		}
	}
	return 0
}

// Clone copies the participants slice so callers cannot alias stored state.
func (c Conversation) Clone() Conversation {
	out := c
	out.Participants = append([]uint(nil), c.Participants...)
	return out
}

// Message is a single entry in a conversation.
type Message struct {
	ID             uint      `json:"Id"`
	ConversationID uint      `json:"conversationId"`
	SenderID       uint      `json:"senderId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
	Sender         *User     `json:"sender"`
}

// GetID returns the record id.
func (m Message) GetID() uint { return m.ID }
