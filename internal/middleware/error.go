package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"matreshka-feed/internal/domain"
)

// ErrorResponse is the failure half of the response envelope: every
// error body carries success=false plus a human-readable message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ErrorHandler converts every error escaping a handler into the
// envelope. Domain sentinels map to their status codes; anything
// unrecognized is a 500 with a generic message so internal details
// stay out of responses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case domain.IsValidation(err):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrPhotoNotFound), errors.Is(err, domain.ErrBlobNotFound):
		code = fiber.StatusNotFound
		message = err.Error()
	}

	return c.Status(code).JSON(ErrorResponse{
		Success: false,
		Error:   message,
	})
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func Internal(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusInternalServerError, message)
}
