// Package mhttp holds the Fiber-facing error dispatch and middleware
// shared by every HTTP handler in the sync core, grounded in the
// teacher's common/net/http package.
package mhttp

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Valstan/MatricaRMZ-sub006/common/errors"
)

// ResponseError is the JSON envelope every error response carries.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

// WithError maps a Go error from the taxonomy in common/errors to the
// matching HTTP status and envelope.
func WithError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case apperrors.ValidationError:
		return c.Status(fiber.StatusBadRequest).JSON(ResponseError{Code: e.Code, Title: "Validation Error", Message: e.Message})
	case apperrors.NotFoundError:
		return c.Status(fiber.StatusNotFound).JSON(ResponseError{Title: "Not Found", Message: e.Error()})
	case apperrors.StateConflictError:
		return c.Status(fiber.StatusConflict).JSON(ResponseError{Code: e.Reason, Title: "State Conflict", Message: e.Message})
	case apperrors.UnauthorizedError:
		return c.Status(fiber.StatusUnauthorized).JSON(ResponseError{Title: "Unauthorized", Message: e.Message})
	case apperrors.ForbiddenError:
		return c.Status(fiber.StatusForbidden).JSON(ResponseError{Title: "Forbidden", Message: e.Message})
	case apperrors.StorageUnavailableError:
		return c.Status(fiber.StatusServiceUnavailable).JSON(ResponseError{Title: "Storage Unavailable", Message: e.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseError{Title: "Internal Server Error", Message: err.Error()})
	}
}

// OK writes a 200 with the given body.
func OK(c *fiber.Ctx, body any) error { return c.Status(fiber.StatusOK).JSON(body) }

// Created writes a 201 with the given body.
func Created(c *fiber.Ctx, body any) error { return c.Status(fiber.StatusCreated).JSON(body) }

// NoContent writes a bare 204.
func NoContent(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }
