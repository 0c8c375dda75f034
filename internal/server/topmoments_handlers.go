package server

import (
	"ricordi/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTopMoments returns the most-liked photos plus the carousel position.
func (s *Server) GetTopMoments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"moments":  s.topMoments.Moments(),
		"index":    s.topMoments.Index(),
		"rotating": s.topMoments.Rotating(),
	})
}

// SeekTopMoments jumps the top-moments carousel to a specific window start.
func (s *Server) SeekTopMoments(c *fiber.Ctx) error {
	var req struct {
		Index int `json:"index"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	s.topMoments.Seek(req.Index)
	return c.JSON(fiber.Map{"index": s.topMoments.Index()})
}
