// Package notifications provides real-time delivery of domain events to
// websocket clients, locally and across instances through Redis.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pulse/internal/observability"

	"github.com/google/uuid"
)

// Domain event types pushed to websocket clients.
const (
	EventPostCreated         = "post_created"
	EventPostUpdated         = "post_updated"
	EventPostDeleted         = "post_deleted"
	EventPostReactionUpdated = "post_reaction_updated"
	EventCommentCreated      = "comment_created"
	EventCommentUpdated      = "comment_updated"
	EventCommentDeleted      = "comment_deleted"
	EventMessageReceived     = "message_received"
	EventNotificationCreated = "notification_created"
	EventUserFollowed        = "user_followed"
	EventUserUnfollowed      = "user_unfollowed"

	// EventDropped tells a slow client that events were discarded.
	EventDropped = "events_dropped"
)

// Event is the envelope written to websocket clients.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent stamps a payload with a fresh id and time.
func NewEvent(eventType string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// Publisher routes events either through Redis, when a notifier is
// connected, or straight to the local hub. Exactly one path delivers, so a
// subscribed hub never sees an event twice.
type Publisher struct {
	hub      *Hub
	notifier *Notifier
}

// NewPublisher builds a publisher; either argument may be nil.
func NewPublisher(hub *Hub, notifier *Notifier) *Publisher {
	return &Publisher{hub: hub, notifier: notifier}
}

// ToUser delivers ev to every connection of userID.
func (p *Publisher) ToUser(ctx context.Context, userID uint, ev Event) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}
	observability.WebSocketEventsTotal.WithLabelValues(ev.Type).Inc()

	if p.notifier.Enabled() {
		return p.notifier.PublishUser(ctx, userID, string(data))
	}
	if p.hub != nil {
		p.hub.Broadcast(userID, string(data))
	}
	return nil
}

// ToAll delivers ev to every connected client.
func (p *Publisher) ToAll(ctx context.Context, ev Event) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}
	observability.WebSocketEventsTotal.WithLabelValues(ev.Type).Inc()

	if p.notifier.Enabled() {
		return p.notifier.PublishBroadcast(ctx, string(data))
	}
	if p.hub != nil {
		p.hub.BroadcastAll(string(data))
	}
	return nil
}
