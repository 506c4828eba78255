package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/middleware"
)

func fail(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:     true,
		Kind:      kind,
		Message:   message,
		RequestID: middleware.RequestID(c),
	})
}

func failValidation(c *fiber.Ctx, issues []dto.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:     true,
		Kind:      dto.KindValidationError,
		Message:   "Validation failed",
		RequestID: middleware.RequestID(c),
		Details:   issues,
	})
}
