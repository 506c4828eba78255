package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/handhelddb/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func originApp(appOrigins string) *fiber.App {
	app := fiber.New()
	app.Use(SameOrigin(&config.Config{AppOrigins: appOrigins}))
	app.All("/mutate", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestSameOriginAllowsConfiguredOrigin(t *testing.T) {
	app := originApp("https://handhelddb.example.com")

	req := httptest.NewRequest(fiber.MethodPost, "/mutate", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://handhelddb.example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSameOriginBlocksForeignOrigin(t *testing.T) {
	app := originApp("https://handhelddb.example.com")

	cases := []string{
		"https://evil.example.net",
		"http://handhelddb.example.com", // scheme matters
		"",
		"null",
	}
	for _, origin := range cases {
		req := httptest.NewRequest(fiber.MethodPost, "/mutate", nil)
		if origin != "" {
			req.Header.Set(fiber.HeaderOrigin, origin)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "origin %q", origin)
	}
}

func TestSameOriginIgnoresReads(t *testing.T) {
	app := originApp("https://handhelddb.example.com")

	req := httptest.NewRequest(fiber.MethodGet, "/mutate", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://evil.example.net")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSameOriginDisabledWithoutConfig(t *testing.T) {
	app := originApp("")

	req := httptest.NewRequest(fiber.MethodPost, "/mutate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSameOriginMultipleOrigins(t *testing.T) {
	app := originApp("https://handhelddb.example.com, http://localhost:3000")

	req := httptest.NewRequest(fiber.MethodPost, "/mutate", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
