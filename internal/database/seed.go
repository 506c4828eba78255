package database

import (
	"errors"
	"log/slog"

	"github.com/handhelddb/backend/internal/models"
	"gorm.io/gorm"
)

// DeviceCatalog is the curated list of supported handhelds.
var DeviceCatalog = []struct {
	Name string
	Slug string
}{
	{"Steam Deck LCD", "steam-deck-lcd"},
	{"Steam Deck OLED", "steam-deck-oled"},
	{"ASUS ROG Ally", "rog-ally"},
	{"ASUS ROG Ally X", "rog-ally-x"},
	{"Lenovo Legion Go", "legion-go"},
	{"Lenovo Legion Go S", "legion-go-s"},
	{"MSI Claw A1M", "msi-claw-a1m"},
	{"MSI Claw 8 AI+", "msi-claw-8-ai"},
	{"AYANEO 2S", "ayaneo-2s"},
	{"GPD Win 4", "gpd-win-4"},
}

// SeedDevices inserts any catalog devices that are not present yet.
// Existing rows are left untouched so local renames survive restarts.
func SeedDevices(db *gorm.DB) error {
	created := 0
	for _, d := range DeviceCatalog {
		var existing models.Device
		err := db.Where("slug = ?", d.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&models.Device{Name: d.Name, Slug: d.Slug, Active: true}).Error; err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		slog.Info("device catalog seeded", "created", created)
	}
	return nil
}
