package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/handhelddb/backend/internal/config"
	"github.com/handhelddb/backend/internal/dto"
)

// SameOrigin is a coarse CSRF guard for state-mutating browser requests: the
// declared Origin header must match one of the configured app origins. It is
// a complement to token auth, not a replacement. With no origins configured
// the guard is disabled (dev setups).
func SameOrigin(cfg *config.Config) fiber.Handler {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(cfg.AppOrigins, ",") {
		if norm := normalizeOrigin(o); norm != "" {
			allowed[norm] = true
		}
	}

	return func(c *fiber.Ctx) error {
		if len(allowed) == 0 {
			return c.Next()
		}

		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		if allowed[normalizeOrigin(c.Get(fiber.HeaderOrigin))] {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error:     true,
			Kind:      dto.KindForbidden,
			Message:   "Invalid origin",
			RequestID: RequestID(c),
		})
	}
}

func normalizeOrigin(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
