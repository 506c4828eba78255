package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/handhelddb/backend/internal/authz"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/models"
	"github.com/handhelddb/backend/internal/storage"
	"gorm.io/gorm"
)

// ProofHandler exposes the blob store: signed-URL generation for authorized
// viewers and signature-checked serving.
type ProofHandler struct {
	db     *gorm.DB
	proofs *storage.Store
	gate   *authz.Gate
}

func NewProofHandler(db *gorm.DB, proofs *storage.Store, gate *authz.Gate) *ProofHandler {
	return &ProofHandler{db: db, proofs: proofs, gate: gate}
}

// Sign handles GET /api/proofs/sign?path=. A proof attached to a verified
// report is visible to anyone; otherwise only the owner or an admin may see
// it.
func (h *ProofHandler) Sign(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Missing path")
	}

	if !h.isPublic(path) {
		ident, err := h.gate.FromContext(c)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
		}
		if !ident.IsAdmin() && !strings.HasPrefix(path, ident.UserID.String()+"/") {
			return fail(c, fiber.StatusForbidden, dto.KindForbidden, "Forbidden")
		}
	}

	url, err := h.proofs.CreateSignedURL(c.Context(), path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			return fail(c, fiber.StatusNotFound, dto.KindBadRequest, "Proof not found")
		}
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to sign URL")
	}

	return c.JSON(fiber.Map{"url": url})
}

// Serve handles GET /proofs/* with exp and sig query params.
func (h *ProofHandler) Serve(c *fiber.Ctx) error {
	path := c.Params("*")
	exp := int64(c.QueryInt("exp"))

	if err := h.proofs.Verify(path, exp, c.Query("sig")); err != nil {
		return fail(c, fiber.StatusForbidden, dto.KindForbidden, "Invalid or expired link")
	}

	full, err := h.proofs.FilePath(path)
	if err != nil {
		return fail(c, fiber.StatusNotFound, dto.KindBadRequest, "Proof not found")
	}

	return c.SendFile(full)
}

// isPublic reports whether the path backs a verified report's screenshot.
func (h *ProofHandler) isPublic(path string) bool {
	var count int64
	err := h.db.Model(&models.PerformanceReport{}).
		Where("screenshot_storage_path = ? AND verification_status = ?", path, models.ReportStatusVerified).
		Count(&count).Error
	return err == nil && count > 0
}
