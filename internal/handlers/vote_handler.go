package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/authz"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/middleware"
	"github.com/handhelddb/backend/internal/services"
)

type VoteHandler struct {
	voteService *services.VoteService
	gate        *authz.Gate
}

func NewVoteHandler(voteService *services.VoteService, gate *authz.Gate) *VoteHandler {
	return &VoteHandler{voteService: voteService, gate: gate}
}

// Cast handles POST /api/reports/:id/vote.
func (h *VoteHandler) Cast(c *fiber.Ctx) error {
	return h.toggle(c, true)
}

// Retract handles DELETE /api/reports/:id/vote.
func (h *VoteHandler) Retract(c *fiber.Ctx) error {
	return h.toggle(c, false)
}

func (h *VoteHandler) toggle(c *fiber.Ctx, cast bool) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Missing or invalid report id")
	}

	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	var upvotes int
	if cast {
		upvotes, err = h.voteService.Cast(reportID, ident.UserID)
	} else {
		upvotes, err = h.voteService.Retract(reportID, ident.UserID)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportNotFound):
			return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Report not found")
		case errors.Is(err, services.ErrNotVotable):
			return fail(c, fiber.StatusForbidden, dto.KindForbidden, "Report is not votable")
		}
		slog.Error("vote toggle failed", "error", err.Error(), "trace_id", middleware.RequestID(c), "action", "vote")
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Vote failed. Please try again.")
	}

	return c.JSON(dto.VoteResponse{
		OK:        true,
		Upvotes:   upvotes,
		Voted:     cast,
		RequestID: middleware.RequestID(c),
	})
}

// MyVotes handles GET /api/votes?report_ids=a,b,c and returns the subset of
// ids the caller has voted on (used to render upvote button state).
func (h *VoteHandler) MyVotes(c *fiber.Ctx) error {
	ident, err := h.gate.FromContext(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, dto.KindUnauthorized, "Unauthorized")
	}

	raw := strings.Split(c.Query("report_ids"), ",")
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r == "" {
			continue
		}
		id, perr := uuid.Parse(r)
		if perr != nil {
			return fail(c, fiber.StatusBadRequest, dto.KindBadRequest, "Invalid report id: "+r)
		}
		ids = append(ids, id)
	}

	voted, err := h.voteService.VotedReportIDs(ident.UserID, ids)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, dto.KindServerError, "Failed to fetch votes")
	}
	if voted == nil {
		voted = []uuid.UUID{}
	}

	return c.JSON(fiber.Map{"voted_report_ids": voted})
}
