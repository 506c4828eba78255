package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func voteFixture(t *testing.T) (*VoteService, *models.PerformanceReport, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	svc := NewVoteService(db)

	game := createGame(t, db, "Hades II", models.GameStatusApproved)
	device := createDevice(t, db, "Steam Deck OLED")
	report := createReport(t, db, game.ID, device.ID, nil, models.ReportStatusVerified)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	return svc, report, alice, bob
}

func TestCastIsIdempotent(t *testing.T) {
	svc, report, alice, _ := voteFixture(t)

	count, err := svc.Cast(report.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Re-casting changes nothing.
	count, err = svc.Cast(report.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	voted, err := svc.HasVoted(report.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, voted)
}

func TestRetractIsIdempotent(t *testing.T) {
	svc, report, alice, bob := voteFixture(t)

	_, err := svc.Cast(report.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Cast(report.ID, bob.ID)
	require.NoError(t, err)

	count, err := svc.Retract(report.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Retracting a vote that is not there is a no-op.
	count, err = svc.Retract(report.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	voted, err := svc.HasVoted(report.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestStoredCountTracksToggles(t *testing.T) {
	svc, report, alice, bob := voteFixture(t)

	steps := []struct {
		cast bool
		user uuid.UUID
		want int
	}{
		{true, alice.ID, 1},
		{true, bob.ID, 2},
		{false, alice.ID, 1},
		{true, alice.ID, 2},
		{false, bob.ID, 1},
		{false, alice.ID, 0},
		{false, alice.ID, 0},
	}

	for i, step := range steps {
		var (
			count int
			err   error
		)
		if step.cast {
			count, err = svc.Cast(report.ID, step.user)
		} else {
			count, err = svc.Retract(report.ID, step.user)
		}
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.want, count, "step %d", i)

		// Stored tally always matches the vote rows.
		var stored models.PerformanceReport
		require.NoError(t, svc.db.First(&stored, "id = ?", report.ID).Error)
		assert.Equal(t, step.want, stored.Upvotes, "step %d", i)
	}
}

func TestOnlyVerifiedReportsAreVotable(t *testing.T) {
	db := newTestDB(t)
	svc := NewVoteService(db)

	game := createGame(t, db, "Hades II", models.GameStatusApproved)
	device := createDevice(t, db, "Steam Deck OLED")
	alice := createUser(t, db, "alice@example.com")

	pending := createReport(t, db, game.ID, device.ID, nil, models.ReportStatusPending)
	rejected := createReport(t, db, game.ID, device.ID, nil, models.ReportStatusRejected)

	_, err := svc.Cast(pending.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotVotable)
	_, err = svc.Cast(rejected.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotVotable)
	_, err = svc.Retract(pending.ID, alice.ID)
	assert.ErrorIs(t, err, ErrNotVotable)

	_, err = svc.Cast(uuid.New(), alice.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestVotedReportIDs(t *testing.T) {
	db := newTestDB(t)
	svc := NewVoteService(db)

	game := createGame(t, db, "Hades II", models.GameStatusApproved)
	device := createDevice(t, db, "Steam Deck OLED")
	alice := createUser(t, db, "alice@example.com")

	first := createReport(t, db, game.ID, device.ID, nil, models.ReportStatusVerified)
	second := createReport(t, db, game.ID, device.ID, nil, models.ReportStatusVerified)
	third := createReport(t, db, game.ID, device.ID, nil, models.ReportStatusVerified)

	_, err := svc.Cast(first.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Cast(third.ID, alice.ID)
	require.NoError(t, err)

	ids, err := svc.VotedReportIDs(alice.ID, []uuid.UUID{first.ID, second.ID, third.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, third.ID}, ids)

	ids, err = svc.VotedReportIDs(alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
