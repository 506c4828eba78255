package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/handhelddb/backend/internal/authz"
	"github.com/handhelddb/backend/internal/config"
	"github.com/handhelddb/backend/internal/dto"
)

// AdminRequired gates a route on admin privilege. Accepted in order:
// 1. X-Admin-Token header matching the configured operator token
// 2. an authenticated identity that passes the gate's admin predicate
func AdminRequired(gate *authz.Gate, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		ident, err := gate.FromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:     true,
				Kind:      dto.KindUnauthorized,
				Message:   "Unauthorized",
				RequestID: RequestID(c),
			})
		}

		if !ident.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:     true,
				Kind:      dto.KindForbidden,
				Message:   "Admin access required",
				RequestID: RequestID(c),
			})
		}

		return c.Next()
	}
}
