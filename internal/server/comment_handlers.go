package server

import (
	"pulse/internal/notifications"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetComments handles GET /api/posts/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comments)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comment)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID:  s.currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishCommentEvent(c, notifications.EventCommentCreated, postID, comment.ID)
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PATCH /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    s.currentUserID(c),
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishCommentEvent(c, notifications.EventCommentUpdated, comment.PostID, comment.ID)
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    s.currentUserID(c),
		CommentID: id,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishCommentEvent(c, notifications.EventCommentDeleted, comment.PostID, comment.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) publishCommentEvent(c *fiber.Ctx, eventType string, postID, commentID uint) {
	payload := map[string]interface{}{
		"post_id":    postID,
		"comment_id": commentID,
	}
	// The count is advisory; a failed read only omits it.
	if count, err := s.commentService.CommentCount(c.UserContext(), postID); err == nil {
		payload["comment_count"] = count
	}
	s.publishBroadcastEvent(c.UserContext(), eventType, payload)
}
