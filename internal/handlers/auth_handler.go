package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/handhelddb/backend/internal/authz"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	gate        *authz.Gate
}

func NewAuthHandler(authService *services.AuthService, gate *authz.Gate) *AuthHandler {
	return &AuthHandler{authService: authService, gate: gate}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) || errors.Is(err, services.ErrUsernameTaken) {
			return fail(c, fiber.StatusConflict, dto.KindConflict, err.Error())
		}
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, err.Error())
		}
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid request body")
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, err.Error())
		}
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Internal server error")
	}

	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid request body")
	}

	if err := h.authService.Logout(&req); err != nil {
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to logout")
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid request body")
	}

	if err := h.authService.DeleteAccount(ident.UserID, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, err.Error())
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, dto.KindBadRequest, err.Error())
		}
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{"message": "Account deleted"})
}

// Me returns the resolved identity of the caller (used by clients to render
// auth state instead of caching it).
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	return c.JSON(fiber.Map{
		"user_id":  ident.UserID,
		"email":    ident.Email,
		"is_admin": ident.IsAdmin(),
	})
}
