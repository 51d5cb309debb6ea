// Package handler provides the HTTP request handlers.
package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"dungeon-master/internal/pkg/lock"
	"dungeon-master/internal/service"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, lock.ErrLockTimeout):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrStorageFailure), errors.Is(err, service.ErrNarratorUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &fe):
		return fe.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as {"message", "error"} with the mapped status.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)

	evt := log.Debug()
	if status >= fiber.StatusInternalServerError {
		evt = log.Error()
	}
	evt.Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Msg("Request failed")

	return c.Status(status).JSON(fiber.Map{
		"message": statusMessage(status),
		"error":   err.Error(),
	})
}

func statusMessage(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "invalid request"
	case fiber.StatusNotFound:
		return "not found"
	case fiber.StatusConflict:
		return "character is busy, try again"
	case fiber.StatusServiceUnavailable:
		return "service unavailable"
	default:
		return "internal error"
	}
}

// ErrorHandler is the fiber error handler for errors returned by routes and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}

// parseBody decodes a JSON body into v. Decoding failures are invalid input.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return invalidBody(err)
	}
	return nil
}

func invalidBody(err error) error {
	return fmt.Errorf("%w: %w", service.ErrInvalidInput, err)
}
