package server

import (
	"ricordi/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetGuestbook returns the entries newest first plus the carousel position.
// With ?refresh=true the entries are re-fetched from the store first.
func (s *Server) GetGuestbook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if c.QueryBool("refresh") {
		if err := s.guestbook.Load(ctx); err != nil {
			return models.RespondWithError(c, statusForError(err), err)
		}
	}

	return c.JSON(fiber.Map{
		"entries":  s.guestbook.Entries(),
		"index":    s.guestbook.Index(),
		"rotating": s.guestbook.Rotating(),
	})
}

// SignGuestbook adds an entry. Empty inputs are rejected with 400 before any
// store call.
func (s *Server) SignGuestbook(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Username string `json:"username"`
		Message  string `json:"message"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	created, err := s.guestbook.Submit(ctx, req.Username, req.Message)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// SeekGuestbook jumps the guestbook carousel to a specific entry.
func (s *Server) SeekGuestbook(c *fiber.Ctx) error {
	var req struct {
		Index int `json:"index"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	s.guestbook.Seek(req.Index)
	return c.JSON(fiber.Map{"index": s.guestbook.Index()})
}
