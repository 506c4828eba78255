package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/handhelddb/backend/internal/config"
	"github.com/handhelddb/backend/internal/dto"
	"github.com/handhelddb/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret-do-not-use",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())

	resp, err := svc.Register(&dto.RegisterRequest{
		Email:    "Alice@Example.COM",
		Username: "alice_deck",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, "alice_deck", resp.User.Username)
	assert.False(t, resp.User.IsAdmin)

	// Access token carries the user id as subject.
	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret-do-not-use"), nil
	})
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), sub)

	_, err = svc.Login(&dto.LoginRequest{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(&dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())

	_, err := svc.Register(&dto.RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(&dto.RegisterRequest{Email: "alice@example.com", Username: "someone", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(&dto.RegisterRequest{Email: "other@example.com", Username: "alice", Password: "password1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterValidatesInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())

	_, err := svc.Register(&dto.RegisterRequest{Email: "a@b.com", Username: "alice", Password: "short"})
	assert.Error(t, err)

	for _, username := range []string{"ab", "has spaces", "bad!chars"} {
		_, err = svc.Register(&dto.RegisterRequest{Email: "a@b.com", Username: username, Password: "password1"})
		assert.Error(t, err, "username %q", username)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())

	resp, err := svc.Register(&dto.RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "password1"})
	require.NoError(t, err)

	next, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, next.RefreshToken)

	// A refresh token is single use.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())

	resp, err := svc.Register(&dto.RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: resp.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteAccountDetachesReportsAndRecounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testAuthConfig())
	votes := NewVoteService(db)

	resp, err := svc.Register(&dto.RegisterRequest{Email: "alice@example.com", Username: "alice", Password: "password1"})
	require.NoError(t, err)
	aliceID := resp.User.ID
	bob := createUser(t, db, "bob@example.com")

	game := createGame(t, db, "Hades II", models.GameStatusApproved)
	device := createDevice(t, db, "Steam Deck OLED")
	own := createReport(t, db, game.ID, device.ID, &aliceID, models.ReportStatusVerified)
	other := createReport(t, db, game.ID, device.ID, &bob.ID, models.ReportStatusVerified)

	_, err = votes.Cast(other.ID, aliceID)
	require.NoError(t, err)
	_, err = votes.Cast(other.ID, bob.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteAccount(aliceID, "wrong"), ErrInvalidCredentials)
	require.NoError(t, svc.DeleteAccount(aliceID, "password1"))

	// The report survives with no submitter.
	var stored models.PerformanceReport
	require.NoError(t, db.First(&stored, "id = ?", own.ID).Error)
	assert.Nil(t, stored.UserID)

	// Alice's vote is gone and the tally reflects it.
	stored = models.PerformanceReport{}
	require.NoError(t, db.First(&stored, "id = ?", other.ID).Error)
	assert.Equal(t, 1, stored.Upvotes)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", aliceID).Count(&count).Error)
	assert.Zero(t, count)
}
