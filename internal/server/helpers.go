package server

import (
	"errors"

	"ricordi/internal/models"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps an application error to an HTTP status code.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}

	switch appErr.Code {
	case models.CodeMissingInput, models.CodeEmptySubmit, models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeSubmitInFlight:
		return fiber.StatusConflict
	case models.CodeFetchFailed, models.CodeStorageFailure, models.CodeMetadataFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
