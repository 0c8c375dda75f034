package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeFetchFailed     = "FETCH_FAILED"
	CodeMissingInput    = "MISSING_INPUT"
	CodeStorageFailure  = "STORAGE_FAILURE"
	CodeMetadataFailure = "METADATA_FAILURE"
	CodeEmptySubmit     = "EMPTY_SUBMIT"
	CodeSubmitInFlight  = "SUBMIT_IN_FLIGHT"
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps a failed read from the remote store. Fetch failures
// leave the local list stale; they never surface as a blocking dialog.
func NewFetchError(what string, err error) *AppError {
	return &AppError{
		Code:    CodeFetchFailed,
		Message: fmt.Sprintf("Failed to fetch %s", what),
		Err:     err,
	}
}

// NewMissingInputError blocks an upload before any network call is made.
func NewMissingInputError(message string) *AppError {
	return &AppError{
		Code:    CodeMissingInput,
		Message: message,
	}
}

// NewStorageFailureError wraps a failed blob upload; no metadata record
// exists yet, so nothing needs cleanup.
func NewStorageFailureError(err error) *AppError {
	return &AppError{
		Code:    CodeStorageFailure,
		Message: "Failed to upload media",
		Err:     err,
	}
}

// NewMetadataFailureError wraps a failed metadata insert after the blob was
// already stored. The blob is orphaned; this is an accepted limitation.
func NewMetadataFailureError(err error) *AppError {
	return &AppError{
		Code:    CodeMetadataFailure,
		Message: "Failed to save media record",
		Err:     err,
	}
}

// NewEmptySubmitError rejects a submission whose trimmed inputs are empty.
func NewEmptySubmitError() *AppError {
	return &AppError{
		Code:    CodeEmptySubmit,
		Message: "Username and message are required",
	}
}

// NewSubmitInFlightError rejects a submission while a previous one from the
// same panel is still outstanding.
func NewSubmitInFlightError() *AppError {
	return &AppError{
		Code:    CodeSubmitInFlight,
		Message: "A submission is already in progress",
	}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
