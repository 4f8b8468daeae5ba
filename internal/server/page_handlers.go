package server

import (
	"strconv"

	"pulse/internal/models"
	"pulse/internal/view"

	"github.com/gofiber/fiber/v2"
)

// Page handlers return the view document for one screen. A page that failed
// to load is still a rendered page, so it responds 200 with phase "error".

// HomePage handles GET /
func (s *Server) HomePage(c *fiber.Ctx) error {
	return c.JSON(s.pages.Home(c.UserContext(), s.currentUserID(c)))
}

// ProfilePage handles GET /profile and GET /profile/:userId
func (s *Server) ProfilePage(c *fiber.Ctx) error {
	var userID uint
	if raw := c.Params("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return s.NotFoundPage(c)
		}
		userID = uint(id)
	}
	return c.JSON(s.pages.Profile(c.UserContext(), s.currentUserID(c), userID))
}

// MessagesPage handles GET /messages?conversation=<id>
func (s *Server) MessagesPage(c *fiber.Ctx) error {
	selected := c.QueryInt("conversation", 0)
	if selected < 0 {
		selected = 0
	}
	return c.JSON(s.pages.Messages(c.UserContext(), s.currentUserID(c), uint(selected)))
}

// NotificationsPage handles GET /notifications?filter=all|mentions|follows
func (s *Server) NotificationsPage(c *fiber.Ctx) error {
	return c.JSON(s.pages.Notifications(c.UserContext(), c.Query("filter")))
}

// PostDetailPage handles GET /post/:postId
func (s *Server) PostDetailPage(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("postId"), 10, 32)
	if err != nil || id == 0 {
		return s.NotFoundPage(c)
	}
	return c.JSON(s.pages.PostDetail(c.UserContext(), s.currentUserID(c), uint(id)))
}

// NotFoundPage renders the catch-all page for unknown paths.
func (s *Server) NotFoundPage(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(view.NotFound(c.Path()))
}

// APINotFound answers unknown /api routes with the JSON error envelope.
func (s *Server) APINotFound(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusNotFound, &models.AppError{
		Code:    models.CodeNotFound,
		Message: "Route " + c.Method() + " " + c.Path() + " not found",
	})
}
