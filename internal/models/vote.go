package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PerformanceVote is one user's endorsement of one report. The composite
// unique index makes the store the arbiter of at-most-one-vote-per-pair:
// concurrent casts race on the index and the losers are treated as no-ops.
type PerformanceVote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_report_user" json:"report_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_votes_report_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *PerformanceVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

func (PerformanceVote) TableName() string {
	return "performance_votes"
}
