package server

import "github.com/gofiber/fiber/v2"

// GetFeatures returns configured feature flags and evaluated state for the current user.
func (s *Server) GetFeatures(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(s.currentUserID(c)),
	})
}
