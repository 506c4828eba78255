package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportStatusPending  = "pending"
	ReportStatusVerified = "verified"
	ReportStatusRejected = "rejected"
)

// PerformanceReport is one submitted performance measurement for a
// game+device pair.
//
// Invariants: Upvotes converges to the count of PerformanceVote rows for the
// report (recount-and-persist, see services.VoteService). RejectionReason is
// set iff status is rejected; ModeratedAt/ModeratedBy are set iff status is
// terminal. FpsMin <= FpsAverage <= FpsMax when the bounds are present.
type PerformanceReport struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GameID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"game_id"`
	DeviceID uuid.UUID  `gorm:"type:uuid;not null;index" json:"device_id"`
	UserID   *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nullable: submitter may delete their account

	VerificationStatus string     `gorm:"not null;default:'pending';size:20;index" json:"verification_status"`
	RejectionReason    *string    `gorm:"size:500" json:"rejection_reason,omitempty"`
	ModeratedAt        *time.Time `json:"moderated_at,omitempty"`
	ModeratedBy        *uuid.UUID `gorm:"type:uuid" json:"moderated_by,omitempty"`

	FpsAverage int  `gorm:"not null" json:"fps_average"`
	FpsMin     *int `json:"fps_min,omitempty"`
	FpsMax     *int `json:"fps_max,omitempty"`
	TdpWatts   int  `gorm:"not null" json:"tdp_watts"`

	Resolution     string  `gorm:"not null;size:20" json:"resolution"`
	GraphicsPreset string  `gorm:"not null;size:20" json:"graphics_preset"`
	ProtonVersion  *string `gorm:"size:50" json:"proton_version,omitempty"`

	AdditionalNotes       *string `gorm:"size:500" json:"additional_notes,omitempty"`
	ScreenshotStoragePath *string `gorm:"size:300" json:"screenshot_storage_path,omitempty"`

	Upvotes int `gorm:"not null;default:0" json:"upvotes"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Game   Game   `gorm:"foreignKey:GameID" json:"-"`
	Device Device `gorm:"foreignKey:DeviceID" json:"-"`
}

func (r *PerformanceReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (PerformanceReport) TableName() string {
	return "performance_reports"
}
