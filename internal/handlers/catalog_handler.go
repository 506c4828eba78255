package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/authz"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/services"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
	reportService  *services.ReportService
	gate           *authz.Gate
}

func NewCatalogHandler(catalogService *services.CatalogService, reportService *services.ReportService, gate *authz.Gate) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		reportService:  reportService,
		gate:           gate,
	}
}

// ListDevices handles GET /api/devices.
func (h *CatalogHandler) ListDevices(c *fiber.Ctx) error {
	devices, err := h.catalogService.ListDevices()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to fetch devices")
	}
	return c.JSON(fiber.Map{"devices": devices})
}

// ListGames handles GET /api/games (approved games only).
func (h *CatalogHandler) ListGames(c *fiber.Ctx) error {
	games, err := h.catalogService.ListGames(c.Query("q"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to fetch games")
	}
	return c.JSON(fiber.Map{"games": games})
}

// GetGame handles GET /api/games/:slug — the game plus its verified reports,
// device-filterable and sortable by upvotes|newest|fps.
func (h *CatalogHandler) GetGame(c *fiber.Ctx) error {
	game, err := h.catalogService.GetGameBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrGameNotFound) {
			return fail(c, fiber.StatusNotFound, dto.KindBadRequest, "Game not found")
		}
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to fetch game")
	}

	var deviceID *uuid.UUID
	if raw := c.Query("device_id"); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid device_id")
		}
		deviceID = &id
	}

	reports, err := h.reportService.ListForGame(game.ID, deviceID, c.Query("sort", "upvotes"))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to fetch reports")
	}

	return c.JSON(fiber.Map{
		"game":    game,
		"reports": reports,
		"total":   len(reports),
	})
}

// CreateGame handles POST /api/games — a user-suggested game, pending until
// its first verified report.
func (h *CatalogHandler) CreateGame(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	var req dto.CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid request body")
	}

	game, err := h.catalogService.CreateGame(req.Name, ident.UserID)
	if err != nil {
		if errors.Is(err, services.ErrGameExists) {
			return fail(c, fiber.StatusConflict, dto.KindConflict, err.Error())
		}
		if errors.Is(err, services.ErrInvalidName) {
			return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, err.Error())
		}
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to create game")
	}

	return c.Status(fiber.StatusCreated).JSON(game)
}
