package server

import (
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/optimistic"
	"pulse/internal/service"
	"pulse/internal/view"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPostByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.AuthorID = s.currentUserID(c)
	if req.Privacy == "" {
		req.Privacy = models.PrivacyPublic
	}

	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), notifications.EventPostCreated, map[string]interface{}{
		"post_id":    post.ID,
		"author_id":  post.AuthorID,
		"created_at": post.CreatedAt,
	})
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.PostPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID: s.currentUserID(c),
		PostID: id,
		Patch:  patch,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), notifications.EventPostUpdated, map[string]interface{}{
		"post_id": post.ID,
	})
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: s.currentUserID(c),
		PostID: id,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishBroadcastEvent(c.UserContext(), notifications.EventPostDeleted, map[string]interface{}{
		"post_id": post.ID,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.react(c, true)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.react(c, false)
}

func (s *Server) react(c *fiber.Ctx, like bool) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var count int
	if like {
		count, err = s.postService.LikePost(c.UserContext(), id)
	} else {
		count, err = s.postService.UnlikePost(c.UserContext(), id)
	}
	if err != nil {
		return mapServiceError(c, err)
	}

	s.publishReaction(c, id, count)
	return c.JSON(fiber.Map{"postId": id, "likeCount": count})
}

func (s *Server) publishReaction(c *fiber.Ctx, postID uint, count int) {
	s.publishBroadcastEvent(c.UserContext(), notifications.EventPostReactionUpdated, map[string]interface{}{
		"post_id":    postID,
		"like_count": count,
		"user_id":    s.currentUserID(c),
	})
}

// ToggleLike handles POST /api/posts/:id/like/toggle. Like ToggleFollow, the
// body is the caller's local state and a failure returns it unchanged.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var before view.LikeState
	if err := parseBody(c, &before); err != nil {
		return nil
	}
	before.PostID = id

	state := optimistic.NewState(before)
	if err := s.pages.ToggleLike(c.UserContext(), state); err != nil {
		return c.Status(models.StatusFor(err)).JSON(fiber.Map{
			"error": errMessage(err),
			"state": state.Get(),
		})
	}

	after := state.Get()
	s.publishReaction(c, id, after.LikeCount)
	return c.JSON(after)
}
