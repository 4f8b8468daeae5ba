package server

import (
	"pulse/internal/notifications"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	convs, err := s.messageService.ListConversations(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(convs)
}

// CreateConversation handles POST /api/conversations. An existing thread
// with the same participant is returned with 200 instead of 201.
func (s *Server) CreateConversation(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"userId"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	conv, created, err := s.messageService.StartConversation(c.UserContext(), s.currentUserID(c), req.UserID)
	if err != nil {
		return mapServiceError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(conv)
}

// GetConversation handles GET /api/conversations/:id
func (s *Server) GetConversation(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, err := s.messageService.GetConversation(c.UserContext(), id, s.currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(conv)
}

// GetMessages handles GET /api/conversations/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	msgs, err := s.messageService.ListMessages(c.UserContext(), id, s.currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(msgs)
}

// SendMessage handles POST /api/conversations/:id/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	senderID := s.currentUserID(c)
	sent, err := s.messageService.SendMessage(ctx, service.SendMessageInput{
		ConversationID: id,
		SenderID:       senderID,
		Content:        req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	if recipient := sent.Conversation.OtherParticipant(senderID); recipient != 0 {
		s.publishUserEvent(ctx, recipient, notifications.EventMessageReceived, map[string]interface{}{
			"conversation_id": id,
			"message":         sent.Message,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(sent.Message)
}

// MarkConversationRead handles POST /api/conversations/:id/read
func (s *Server) MarkConversationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	conv, err := s.messageService.MarkConversationRead(c.UserContext(), id, s.currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(conv)
}

// MarkMessageRead handles POST /api/messages/:id/read
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	msg, err := s.messageService.MarkMessageRead(c.UserContext(), id, s.currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(msg)
}

// DeleteMessage handles DELETE /api/messages/:id
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.messageService.DeleteMessage(c.UserContext(), id, s.currentUserID(c)); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
