package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrGameNotFound   = errors.New("game not found")
	ErrDeviceNotFound = errors.New("device not found")

	// ErrAlreadyModerated signals an approve/reject against a report that
	// already left the pending state. Moderation transitions are one way;
	// a second attempt is a conflict, never a double side effect.
	ErrAlreadyModerated = errors.New("report already moderated")
)

// RejectReasons are the accepted rejection reason codes. "other" requires a
// custom reason.
var RejectReasons = map[string]bool{
	"invalid_screenshot": true,
	"unrealistic_data":   true,
	"duplicate":          true,
	"other":              true,
}

// ValidationError carries field-level detail for bad submissions. Validation
// runs to completion before any store mutation.
type ValidationError struct {
	Issues []dto.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%d issues)", len(e.Issues))
}

// ModerationResult is the outcome of an approve or reject transition.
type ModerationResult struct {
	ReportID        uuid.UUID
	Status          string
	GameApproved    bool
	RejectionReason string
	ModeratedAt     time.Time
	ModeratedBy     uuid.UUID
}

// ReportService owns report submission, listing, and the verification state
// machine (pending -> verified | rejected, both terminal).
type ReportService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewReportService(db *gorm.DB, filter *ContentFilter) *ReportService {
	return &ReportService{db: db, filter: filter}
}

// Submit validates and inserts a new pending report. screenshotPath is the
// already-uploaded proof object, or nil.
func (s *ReportService) Submit(userID uuid.UUID, req *dto.SubmitReportRequest, screenshotPath *string) (*models.PerformanceReport, error) {
	validated, issues := req.Validate()
	if issues != nil {
		return nil, &ValidationError{Issues: issues}
	}

	if validated.AdditionalNotes != nil {
		clean := s.filter.Sanitize(*validated.AdditionalNotes)
		if ok, reason := s.filter.Check(clean); !ok {
			return nil, &ValidationError{Issues: []dto.FieldError{
				{Field: "additional_notes", Message: s.filter.RejectionMessage(reason)},
			}}
		}
		validated.AdditionalNotes = &clean
	}

	var game models.Game
	if err := s.db.First(&game, "id = ?", validated.GameID).Error; err != nil {
		return nil, ErrGameNotFound
	}
	var device models.Device
	if err := s.db.First(&device, "id = ? AND active = ?", validated.DeviceID, true).Error; err != nil {
		return nil, ErrDeviceNotFound
	}

	report := models.PerformanceReport{
		ID:                    uuid.New(),
		GameID:                validated.GameID,
		DeviceID:              validated.DeviceID,
		UserID:                &userID,
		VerificationStatus:    models.ReportStatusPending,
		FpsAverage:            validated.FpsAverage,
		FpsMin:                validated.FpsMin,
		FpsMax:                validated.FpsMax,
		TdpWatts:              validated.TdpWatts,
		Resolution:            validated.Resolution,
		GraphicsPreset:        validated.GraphicsPreset,
		ProtonVersion:         validated.ProtonVersion,
		AdditionalNotes:       validated.AdditionalNotes,
		ScreenshotStoragePath: screenshotPath,
	}

	if err := s.db.Create(&report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return &report, nil
}

// Approve moves a pending report to verified and, when this is the game's
// first verified report, advances the game to approved. All writes happen in
// one transaction: no partially moderated report is ever observable.
func (s *ReportService) Approve(reportID, actorID uuid.UUID) (*ModerationResult, error) {
	result := &ModerationResult{ReportID: reportID, Status: models.ReportStatusVerified}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var report models.PerformanceReport
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}

		now := time.Now().UTC()
		// Guarded update: the status predicate makes the transition race
		// safe against a concurrent moderation of the same report.
		res := tx.Model(&models.PerformanceReport{}).
			Where("id = ? AND verification_status = ?", reportID, models.ReportStatusPending).
			Updates(map[string]interface{}{
				"verification_status": models.ReportStatusVerified,
				"moderated_at":        now,
				"moderated_by":        actorID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyModerated
		}

		// First verified report for a game flips it to approved; the status
		// predicate guarantees this side effect fires at most once.
		game := tx.Model(&models.Game{}).
			Where("id = ? AND status = ?", report.GameID, models.GameStatusPending).
			Update("status", models.GameStatusApproved)
		if game.Error != nil {
			return game.Error
		}

		result.GameApproved = game.RowsAffected > 0
		result.ModeratedAt = now
		result.ModeratedBy = actorID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reject moves a pending report to rejected with an audited reason. The
// payload is validated before any store mutation.
func (s *ReportService) Reject(reportID, actorID uuid.UUID, req *dto.RejectReportRequest) (*ModerationResult, error) {
	reason, issues := s.resolveRejection(req)
	if issues != nil {
		return nil, &ValidationError{Issues: issues}
	}

	result := &ModerationResult{
		ReportID:        reportID,
		Status:          models.ReportStatusRejected,
		RejectionReason: reason,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var report models.PerformanceReport
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReportNotFound
			}
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&models.PerformanceReport{}).
			Where("id = ? AND verification_status = ?", reportID, models.ReportStatusPending).
			Updates(map[string]interface{}{
				"verification_status": models.ReportStatusRejected,
				"rejection_reason":    reason,
				"moderated_at":        now,
				"moderated_by":        actorID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyModerated
		}

		result.ModeratedAt = now
		result.ModeratedBy = actorID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveRejection turns the request into the stored rejection reason: the
// code itself, or the trimmed custom text for "other". CustomReason on a
// non-other code is ignored.
func (s *ReportService) resolveRejection(req *dto.RejectReportRequest) (string, []dto.FieldError) {
	if !RejectReasons[req.Reason] {
		return "", []dto.FieldError{{Field: "reason", Message: "invalid rejection reason"}}
	}
	if req.Reason != "other" {
		return req.Reason, nil
	}

	custom := s.filter.Sanitize(req.CustomReason)
	if custom == "" {
		return "", []dto.FieldError{{Field: "custom_reason", Message: "custom reason is required when reason is \"other\""}}
	}
	if len(custom) > 500 {
		return "", []dto.FieldError{{Field: "custom_reason", Message: "custom reason must be at most 500 characters"}}
	}
	return custom, nil
}

// PendingQueue returns the moderation queue, oldest first.
func (s *ReportService) PendingQueue(limit int) ([]models.PerformanceReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var reports []models.PerformanceReport
	err := s.db.Where("verification_status = ?", models.ReportStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&reports).Error
	return reports, err
}

// ListForGame returns a game's verified reports, optionally filtered by
// device, in the requested order.
func (s *ReportService) ListForGame(gameID uuid.UUID, deviceID *uuid.UUID, sort string) ([]models.PerformanceReport, error) {
	query := s.db.Scopes(models.Verified, models.ForGame(gameID))
	if deviceID != nil {
		query = query.Scopes(models.ForDevice(*deviceID))
	}

	switch sort {
	case "newest":
		query = query.Order("created_at DESC")
	case "fps":
		query = query.Order("fps_average DESC")
	default: // upvotes
		query = query.Order("upvotes DESC, created_at DESC")
	}

	var reports []models.PerformanceReport
	err := query.Find(&reports).Error
	return reports, err
}

// ListForUser returns the caller's own reports in every status.
func (s *ReportService) ListForUser(userID uuid.UUID) ([]models.PerformanceReport, error) {
	var reports []models.PerformanceReport
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// Get loads one report.
func (s *ReportService) Get(reportID uuid.UUID) (*models.PerformanceReport, error) {
	var report models.PerformanceReport
	if err := s.db.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}
