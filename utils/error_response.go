package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bookably/booking-app/errs"
)

// ErrorResponse is the JSON error payload shape.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// StatusForError maps the engine error taxonomy to an HTTP status code.
func StatusForError(err error) int {
	var (
		notFound   *errs.NotFoundError
		invalid    *errs.ValidationError
		rule       *errs.InvalidRuleError
		policy     *errs.PolicyRejectedError
		conflict   *errs.ConflictError
		transition *errs.InvalidTransitionError
	)
	switch {
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &rule):
		return fiber.StatusBadRequest
	case errors.As(err, &policy):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return fiber.StatusConflict
	case errors.As(err, &transition):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// FailWith writes the mapped status and payload for err.
func FailWith(c *fiber.Ctx, message string, err error) error {
	return c.Status(StatusForError(err)).JSON(ErrorResponse{
		Message: message,
		Error:   err.Error(),
	})
}
