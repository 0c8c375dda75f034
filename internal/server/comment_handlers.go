package server

import (
	"ricordi/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns the photo's comments, oldest first. With ?refresh=true
// the list is re-fetched from the store first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()
	photoID := c.Params("id")

	panel := s.comments.Panel(photoID)
	if c.QueryBool("refresh", true) {
		if err := panel.Load(ctx); err != nil {
			return models.RespondWithError(c, statusForError(err), err)
		}
	}

	return c.JSON(fiber.Map{
		"comments":   panel.Comments(),
		"submitting": panel.Submitting(),
	})
}

// CreateComment adds a comment to the photo. Empty inputs are rejected with
// 400 and a second submit while one is in flight gets 409; neither reaches
// the store.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	photoID := c.Params("id")

	var req struct {
		Username string `json:"username"`
		Comment  string `json:"comment"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	created, err := s.comments.Panel(photoID).Add(ctx, req.Username, req.Comment)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}
