package authz

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/config"
	"github.com/handhelddb/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestGate(t *testing.T, cfg *config.Config) (*Gate, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return NewGate(db, cfg), db
}

// resolveIdentity runs FromContext inside a real request so the fiber
// context carries the token the way the auth middleware would leave it.
func resolveIdentity(t *testing.T, gate *Gate, token *jwt.Token) (Identity, error) {
	t.Helper()

	var (
		ident Identity
		err   error
	)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if token != nil {
			c.Locals("user", token)
		}
		ident, err = gate.FromContext(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, testErr := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, testErr)
	resp.Body.Close()
	return ident, err
}

func tokenFor(userID uuid.UUID, email string) *jwt.Token {
	return &jwt.Token{Claims: jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
	}}
}

func TestFromContextAnonymous(t *testing.T) {
	gate, _ := newTestGate(t, &config.Config{})

	ident, err := resolveIdentity(t, gate, nil)
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, RoleAnonymous, ident.Role)
	assert.False(t, ident.IsAdmin())
}

func TestFromContextRegularUser(t *testing.T) {
	gate, db := newTestGate(t, &config.Config{})
	user := models.User{Email: "alice@example.com", Username: "alice", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	ident, err := resolveIdentity(t, gate, tokenFor(user.ID, user.Email))
	require.NoError(t, err)
	assert.Equal(t, RoleUser, ident.Role)
	assert.Equal(t, user.ID, ident.UserID)
	assert.Equal(t, "alice@example.com", ident.Email)
	assert.False(t, ident.IsAdmin())
}

func TestFromContextBadSubject(t *testing.T) {
	gate, _ := newTestGate(t, &config.Config{})

	ident, err := resolveIdentity(t, gate, &jwt.Token{Claims: jwt.MapClaims{"sub": "not-a-uuid"}})
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.Equal(t, RoleAnonymous, ident.Role)
}

func TestAdminFromDatabaseRole(t *testing.T) {
	gate, db := newTestGate(t, &config.Config{})
	admin := models.User{Email: "admin@example.com", Username: "admin", Password: "x", Role: "admin"}
	require.NoError(t, db.Create(&admin).Error)

	ident, err := resolveIdentity(t, gate, tokenFor(admin.ID, admin.Email))
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, ident.Role)
	assert.True(t, ident.IsAdmin())
}

func TestAdminFromConfigLists(t *testing.T) {
	id := uuid.New()
	gate, _ := newTestGate(t, &config.Config{
		AdminEmails:  "root@example.com, ops@example.com",
		AdminUserIDs: id.String(),
	})

	// Listed email wins even when the row does not exist.
	assert.True(t, gate.IsAdmin(Identity{UserID: uuid.New(), Email: "ops@example.com"}))
	assert.True(t, gate.IsAdmin(Identity{UserID: id, Email: "whoever@example.com"}))
	assert.False(t, gate.IsAdmin(Identity{UserID: uuid.New(), Email: "user@example.com"}))
	assert.False(t, gate.IsAdmin(Identity{}))
}

func TestIsOwner(t *testing.T) {
	me := uuid.New()
	other := uuid.New()

	ident := Identity{UserID: me, Role: RoleUser}
	assert.True(t, ident.IsOwner(&me))
	assert.False(t, ident.IsOwner(&other))
	assert.False(t, ident.IsOwner(nil), "detached resources are owned by nobody")
	assert.False(t, Identity{}.IsOwner(&me))
}
