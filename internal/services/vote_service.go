package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotVotable signals a vote against a report that is not verified. Only
// verified reports accumulate community trust signal.
var ErrNotVotable = errors.New("report is not votable")

// VoteService keeps at most one vote per (report, voter) pair and the
// report's denormalized upvote count authoritative. The count is never
// incremented: after every toggle it is recomputed from the vote rows and
// written back, so retries and concurrent toggles cannot drift it.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// Cast records the voter's upvote on a verified report. Duplicate casts are
// silent no-ops: the unique (report_id, user_id) index orders concurrent
// inserts and losers simply change nothing.
func (s *VoteService) Cast(reportID, userID uuid.UUID) (int, error) {
	if err := s.ensureVotable(reportID); err != nil {
		return 0, err
	}

	vote := models.PerformanceVote{
		ID:       uuid.New(),
		ReportID: reportID,
		UserID:   userID,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "report_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&vote).Error
	if err != nil {
		return 0, fmt.Errorf("failed to cast vote: %w", err)
	}

	return s.recountAndPersist(reportID)
}

// Retract removes the voter's vote if present. Retracting a vote that was
// never cast is a no-op returning the unchanged count.
func (s *VoteService) Retract(reportID, userID uuid.UUID) (int, error) {
	if err := s.ensureVotable(reportID); err != nil {
		return 0, err
	}

	err := s.db.Where("report_id = ? AND user_id = ?", reportID, userID).
		Delete(&models.PerformanceVote{}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to retract vote: %w", err)
	}

	return s.recountAndPersist(reportID)
}

// HasVoted reports whether the user currently has a vote on the report.
func (s *VoteService) HasVoted(reportID, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.PerformanceVote{}).
		Where("report_id = ? AND user_id = ?", reportID, userID).
		Count(&count).Error
	return count > 0, err
}

// VotedReportIDs returns the subset of reportIDs the user has voted on.
func (s *VoteService) VotedReportIDs(userID uuid.UUID, reportIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(reportIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := s.db.Model(&models.PerformanceVote{}).
		Where("user_id = ? AND report_id IN ?", userID, reportIDs).
		Pluck("report_id", &ids).Error
	return ids, err
}

func (s *VoteService) ensureVotable(reportID uuid.UUID) error {
	var report models.PerformanceReport
	if err := s.db.Select("id", "verification_status").First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	if report.VerificationStatus != models.ReportStatusVerified {
		return ErrNotVotable
	}
	return nil
}

// recountAndPersist recomputes the upvote count from the vote rows and
// writes it back. Reading the full current truth instead of incrementing
// means the stored count at quiescence always equals the real tally, no
// matter how toggles interleaved; a failure here leaves a stale count that
// the next toggle repairs.
func (s *VoteService) recountAndPersist(reportID uuid.UUID) (int, error) {
	var count int64
	if err := s.db.Model(&models.PerformanceVote{}).
		Where("report_id = ?", reportID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to recount votes: %w", err)
	}

	if err := s.db.Model(&models.PerformanceReport{}).
		Where("id = ?", reportID).
		Update("upvotes", count).Error; err != nil {
		return 0, fmt.Errorf("failed to persist vote count: %w", err)
	}

	return int(count), nil
}
