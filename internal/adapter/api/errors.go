package api

import (
	"errors"

	"festify-gateway/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, entity.ErrResourceNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, entity.ErrRateLimitExceeded):
		return fiber.StatusTooManyRequests
	case errors.Is(err, entity.ErrUnsupported):
		return fiber.StatusNotImplemented
	case errors.Is(err, entity.ErrFeatureUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal gateway error"
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
