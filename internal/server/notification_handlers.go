package server

import (
	"pulse/internal/notifications"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	items, err := s.notificationService.ListNotifications(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(items)
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	n, err := s.notificationService.UnreadCount(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"unreadCount": n})
}

// CreateNotification handles POST /api/notifications. The feed belongs to
// the configured current user, who receives the realtime event.
func (s *Server) CreateNotification(c *fiber.Ctx) error {
	var req service.CreateNotificationInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	n, err := s.notificationService.CreateNotification(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishUserEvent(c.UserContext(), s.config.CurrentUserID, notifications.EventNotificationCreated, map[string]interface{}{
		"notification": n,
	})
	return c.Status(fiber.StatusCreated).JSON(n)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	n, err := s.notificationService.MarkRead(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(n)
}

// MarkAllNotificationsRead handles POST /api/notifications/read
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	changed, err := s.notificationService.MarkAllRead(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"updated": changed})
}

// DeleteNotification handles DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.DeleteNotification(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
