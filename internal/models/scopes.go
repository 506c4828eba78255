package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verified filters reports to community-visible (moderated, accepted) rows.
func Verified(db *gorm.DB) *gorm.DB {
	return db.Where("verification_status = ?", ReportStatusVerified)
}

// ForGame returns a scope that filters reports by game.
func ForGame(gameID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("game_id = ?", gameID)
	}
}

// ForDevice returns a scope that filters reports by device.
func ForDevice(deviceID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("device_id = ?", deviceID)
	}
}
