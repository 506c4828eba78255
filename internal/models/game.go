package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GameStatusPending  = "pending"
	GameStatusApproved = "approved"
)

// Game is a reference dimension for reports. A game stays `pending` (not
// publicly listed) until its first report is verified.
type Game struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null;size:200" json:"name"`
	Slug      string     `gorm:"not null;size:200;uniqueIndex" json:"slug"`
	Status    string     `gorm:"not null;default:'pending';size:20;index" json:"status"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (Game) TableName() string {
	return "games"
}
