package server

import (
	"context"

	"pulse/internal/middleware"
	"pulse/internal/models"
	"pulse/internal/notifications"
)

func (s *Server) publishUserEvent(ctx context.Context, userID uint, eventType string, payload map[string]interface{}) {
	if err := s.events.ToUser(ctx, userID, notifications.NewEvent(eventType, payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish user event",
			"event_type", eventType,
			"user_id", userID,
			"error", err,
		)
	}
}

func (s *Server) publishBroadcastEvent(ctx context.Context, eventType string, payload map[string]interface{}) {
	if err := s.events.ToAll(ctx, notifications.NewEvent(eventType, payload)); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish broadcast event",
			"event_type", eventType,
			"error", err,
		)
	}
}

func userSummary(user *models.User) map[string]interface{} {
	if user == nil {
		return nil
	}
	return map[string]interface{}{
		"id":          user.ID,
		"username":    user.Username,
		"displayName": user.DisplayName,
	}
}
