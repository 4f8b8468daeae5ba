package server

import (
	"pulse/internal/models"
	"pulse/internal/notifications"
	"pulse/internal/optimistic"
	"pulse/internal/service"
	"pulse/internal/view"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users (optional ?q= search)
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		users []models.User
		err   error
	)
	if q := c.Query("q"); q != "" {
		users, err = s.userService.SearchUsers(ctx, q)
	} else {
		users, err = s.userService.ListUsers(ctx)
	}
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// CreateUser handles POST /api/users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.userService.CreateUser(c.UserContext(), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// UpdateUser handles PATCH /api/users/:id. Only the acting user's own
// profile may change.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != s.currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("You can only update your own profile"))
	}

	var patch models.UserPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{UserID: id, Patch: patch})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if id != s.currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("You can only delete your own account"))
	}
	if err := s.userService.DeleteUser(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	posts, err := s.postService.ListPostsByUser(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(posts)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	return s.setFollow(c, true)
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	return s.setFollow(c, false)
}

func (s *Server) setFollow(c *fiber.Ctx, follow bool) error {
	ctx := c.UserContext()
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID := s.currentUserID(c)

	var res *service.FollowResult
	if follow {
		res, err = s.userService.Follow(ctx, viewerID, targetID)
	} else {
		res, err = s.userService.Unfollow(ctx, viewerID, targetID)
	}
	if err != nil {
		return mapServiceError(c, err)
	}

	if res.Changed {
		s.publishFollowEvent(c, res)
	}
	return c.JSON(res)
}

func (s *Server) publishFollowEvent(c *fiber.Ctx, res *service.FollowResult) {
	eventType := notifications.EventUserUnfollowed
	if res.Following {
		eventType = notifications.EventUserFollowed
	}
	s.publishUserEvent(c.UserContext(), res.Followee.ID, eventType, map[string]interface{}{
		"follower":       userSummary(res.Follower),
		"follower_count": res.Followee.FollowerCount,
	})
}

// ToggleFollow handles POST /api/users/:id/follow/toggle. The body is the
// caller's current view of the edge; the response is the confirmed state, or
// the unchanged state with an error when the server rejects the change.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var before view.FollowState
	if err := parseBody(c, &before); err != nil {
		return nil
	}
	before.UserID = targetID

	state := optimistic.NewState(before)
	if err := s.pages.ToggleFollow(c.UserContext(), s.currentUserID(c), state); err != nil {
		return c.Status(models.StatusFor(err)).JSON(fiber.Map{
			"error": errMessage(err),
			"state": state.Get(),
		})
	}

	after := state.Get()
	eventType := notifications.EventUserUnfollowed
	if after.Following {
		eventType = notifications.EventUserFollowed
	}
	s.publishUserEvent(c.UserContext(), targetID, eventType, map[string]interface{}{
		"follower_id":    s.currentUserID(c),
		"follower_count": after.FollowerCount,
	})
	return c.JSON(after)
}
