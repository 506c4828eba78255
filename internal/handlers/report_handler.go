package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/authz"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/middleware"
	"github.com/handhelddb/backend/internal/services"
	"github.com/handhelddb/backend/internal/storage"
)

type ReportHandler struct {
	reportService *services.ReportService
	gate          *authz.Gate
	proofs        *storage.Store
	maxProofBytes int64
}

func NewReportHandler(reportService *services.ReportService, gate *authz.Gate, proofs *storage.Store, maxProofBytes int64) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		gate:          gate,
		proofs:        proofs,
		maxProofBytes: maxProofBytes,
	}
}

// Submit handles POST /api/reports (multipart form with optional screenshot).
func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	req := dto.SubmitReportRequest{
		GameID:          c.FormValue("game_id"),
		DeviceID:        c.FormValue("device_id"),
		FpsAverage:      c.FormValue("fps_average"),
		FpsMin:          c.FormValue("fps_min"),
		FpsMax:          c.FormValue("fps_max"),
		TdpWatts:        c.FormValue("tdp_watts"),
		Resolution:      c.FormValue("resolution"),
		GraphicsPreset:  c.FormValue("graphics_preset"),
		ProtonVersion:   c.FormValue("proton_version"),
		AdditionalNotes: c.FormValue("additional_notes"),
	}

	var screenshotPath *string
	if file, ferr := c.FormFile("screenshot"); ferr == nil && file != nil {
		path, uerr := h.uploadProof(ident.UserID, file.Size, file.Header.Get(fiber.HeaderContentType), func() (io.ReadCloser, error) {
			return file.Open()
		})
		if uerr != nil {
			var verr *services.ValidationError
			if errors.As(uerr, &verr) {
				return failValidation(c, verr.Issues)
			}
			slog.Error("proof upload failed", "error", uerr.Error(), "trace_id", middleware.RequestID(c))
			return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Upload failed")
		}
		screenshotPath = &path
	}

	report, err := h.reportService.Submit(ident.UserID, &req, screenshotPath)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return failValidation(c, verr.Issues)
		}
		if errors.Is(err, services.ErrGameNotFound) || errors.Is(err, services.ErrDeviceNotFound) {
			return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, err.Error())
		}
		slog.Error("report insert failed", "error", err.Error(), "trace_id", middleware.RequestID(c))
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Insert failed")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitReportResponse{
		OK:        true,
		ReportID:  report.ID,
		RequestID: middleware.RequestID(c),
	})
}

func (h *ReportHandler) uploadProof(userID uuid.UUID, size int64, contentType string, open func() (io.ReadCloser, error)) (string, error) {
	ext, ok := storage.AllowedContentTypes[contentType]
	if !ok {
		return "", &services.ValidationError{Issues: []dto.FieldError{
			{Field: "screenshot", Message: "invalid file type (PNG/JPG/WEBP only)"},
		}}
	}
	if size > h.maxProofBytes {
		return "", &services.ValidationError{Issues: []dto.FieldError{
			{Field: "screenshot", Message: "file too large (max 5MB)"},
		}}
	}

	src, err := open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.maxProofBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > h.maxProofBytes {
		return "", &services.ValidationError{Issues: []dto.FieldError{
			{Field: "screenshot", Message: "file too large (max 5MB)"},
		}}
	}

	path := fmt.Sprintf("%s/%d-%s.%s", userID, time.Now().UnixMilli(), uuid.NewString(), ext)
	return h.proofs.Upload(path, data, contentType)
}

// PendingQueue handles GET /api/reports?status=pending (admin moderation
// queue, oldest first).
func (h *ReportHandler) PendingQueue(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	reports, err := h.reportService.PendingQueue(limit)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to fetch reports")
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   len(reports),
	})
}

// MyReports handles GET /api/profile/reports: the caller's own submissions
// in every status (owner read).
func (h *ReportHandler) MyReports(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	reports, err := h.reportService.ListForUser(ident.UserID)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to fetch reports")
	}

	return c.JSON(fiber.Map{"reports": reports, "total": len(reports)})
}

// Approve handles POST /api/admin/reports/:id/approve.
func (h *ReportHandler) Approve(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid report ID")
	}

	result, err := h.reportService.Approve(reportID, ident.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return fail(c, fiber.StatusNotFound, dto.KindBadRequest, err.Error())
		case errors.Is(err, services.ErrAlreadyModerated):
			return fail(c, fiber.StatusConflict, dto.KindConflict, err.Error())
		}
		slog.Error("approve failed", "error", err.Error(), "trace_id", middleware.RequestID(c), "action", "approve_report")
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Approve failed")
	}

	return c.JSON(dto.ApproveReportResponse{
		OK:           true,
		ReportID:     result.ReportID,
		Status:       result.Status,
		GameApproved: result.GameApproved,
		RequestID:    middleware.RequestID(c),
	})
}

// Reject handles POST /api/admin/reports/:id/reject.
func (h *ReportHandler) Reject(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid report ID")
	}

	var req dto.RejectReportRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid request body")
	}

	result, err := h.reportService.Reject(reportID, ident.UserID, &req)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return failValidation(c, verr.Issues)
		case errors.Is(err, services.ErrReportNotFound):
			return fail(c, fiber.StatusNotFound, dto.KindBadRequest, err.Error())
		case errors.Is(err, services.ErrAlreadyModerated):
			return fail(c, fiber.StatusConflict, dto.KindConflict, err.Error())
		}
		slog.Error("reject failed", "error", err.Error(), "trace_id", middleware.RequestID(c), "action", "reject_report")
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Reject failed")
	}

	return c.JSON(dto.RejectReportResponse{
		OK:              true,
		ReportID:        result.ReportID,
		Status:          result.Status,
		RejectionReason: result.RejectionReason,
		ModeratedAt:     result.ModeratedAt,
		ModeratedBy:     result.ModeratedBy,
		RequestID:       middleware.RequestID(c),
	})
}
