package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Game{},
		&models.Device{},
		&models.PerformanceReport{},
		&models.PerformanceVote{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:    email,
		Username: "u_" + uuid.NewString()[:8],
		Password: "$2a$10$notarealhash",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createGame(t *testing.T, db *gorm.DB, name, status string) *models.Game {
	t.Helper()
	game := models.Game{
		Name:   name,
		Slug:   Slugify(name),
		Status: status,
	}
	require.NoError(t, db.Create(&game).Error)
	return &game
}

func createDevice(t *testing.T, db *gorm.DB, name string) *models.Device {
	t.Helper()
	device := models.Device{
		Name:   name,
		Slug:   Slugify(name),
		Active: true,
	}
	require.NoError(t, db.Create(&device).Error)
	return &device
}

func createReport(t *testing.T, db *gorm.DB, gameID, deviceID uuid.UUID, userID *uuid.UUID, status string) *models.PerformanceReport {
	t.Helper()
	report := models.PerformanceReport{
		GameID:             gameID,
		DeviceID:           deviceID,
		UserID:             userID,
		VerificationStatus: status,
		FpsAverage:         60,
		TdpWatts:           15,
		Resolution:         "1080p",
		GraphicsPreset:     "medium",
	}
	require.NoError(t, db.Create(&report).Error)
	return &report
}
