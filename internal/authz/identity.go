// Package authz derives a tagged identity (anonymous, user, admin) per
// request and answers ownership questions. Admin status is always resolved
// server-side (config lists or the users.role column), never taken from
// client-supplied claims alone.
package authz

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/config"
	"github.com/handhelddb/backend/internal/models"
	"gorm.io/gorm"
)

// Role tags, ordered by privilege.
const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
	RoleAdmin     = "admin"
)

var ErrNoIdentity = errors.New("no authenticated identity in context")

// Identity is the resolved caller of one request.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsOwner reports whether the identity owns a resource attributed to
// ownerID. A nil owner (deleted submitter) is owned by nobody.
func (i Identity) IsOwner(ownerID *uuid.UUID) bool {
	if ownerID == nil || i.UserID == uuid.Nil {
		return false
	}
	return *ownerID == i.UserID
}

// Gate resolves identities against the database and the static admin lists.
type Gate struct {
	db           *gorm.DB
	adminEmails  []string
	adminUserIDs []string
}

func NewGate(db *gorm.DB, cfg *config.Config) *Gate {
	return &Gate{
		db:           db,
		adminEmails:  parseCSV(cfg.AdminEmails),
		adminUserIDs: parseCSV(cfg.AdminUserIDs),
	}
}

// FromContext extracts the authenticated identity from the JWT placed in
// context by the auth middleware. Returns ErrNoIdentity for anonymous
// callers.
func (g *Gate) FromContext(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Identity{Role: RoleAnonymous}, ErrNoIdentity
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{Role: RoleAnonymous}, ErrNoIdentity
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Identity{Role: RoleAnonymous}, ErrNoIdentity
	}

	email, _ := claims["email"].(string)
	ident := Identity{UserID: userID, Email: email, Role: RoleUser}
	if g.IsAdmin(ident) {
		ident.Role = RoleAdmin
	}
	return ident, nil
}

// IsAdmin is the server-authoritative admin predicate: config lists first,
// then a round trip to users.role.
func (g *Gate) IsAdmin(ident Identity) bool {
	if ident.UserID == uuid.Nil {
		return false
	}
	if contains(g.adminEmails, ident.Email) || contains(g.adminUserIDs, ident.UserID.String()) {
		return true
	}

	var user models.User
	if err := g.db.First(&user, "id = ?", ident.UserID).Error; err != nil {
		return false
	}
	return user.Role == RoleAdmin
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
