package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/handhelddb/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrGameExists   = errors.New("game already exists")
	ErrInvalidName  = errors.New("invalid game name")
	slugStripChars  = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrimHyphens = regexp.MustCompile(`(^-+|-+$)`)
)

// CatalogService serves the games and devices reference dimensions.
type CatalogService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewCatalogService(db *gorm.DB, filter *ContentFilter) *CatalogService {
	return &CatalogService{db: db, filter: filter}
}

// ListDevices returns the active device catalog.
func (s *CatalogService) ListDevices() ([]models.Device, error) {
	var devices []models.Device
	err := s.db.Where("active = ?", true).Order("name ASC").Find(&devices).Error
	return devices, err
}

// ListGames returns approved games, optionally filtered by a name substring.
func (s *CatalogService) ListGames(q string) ([]models.Game, error) {
	query := s.db.Where("status = ?", models.GameStatusApproved)
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var games []models.Game
	err := query.Order("name ASC").Find(&games).Error
	return games, err
}

// GetGameBySlug loads one game regardless of approval (pending games are
// reachable by direct link for their submitter; listing filters them out).
func (s *CatalogService) GetGameBySlug(slug string) (*models.Game, error) {
	var game models.Game
	if err := s.db.Where("slug = ?", slug).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

// CreateGame adds a user-suggested game in pending status. It becomes
// approved (publicly listed) once its first report is verified.
func (s *CatalogService) CreateGame(name string, userID uuid.UUID) (*models.Game, error) {
	name = s.filter.Sanitize(name)
	if len(name) < 2 || len(name) > 200 {
		return nil, ErrInvalidName
	}
	if ok, _ := s.filter.Check(name); !ok {
		return nil, ErrInvalidName
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, ErrInvalidName
	}

	var existing models.Game
	if err := s.db.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return nil, ErrGameExists
	}

	game := models.Game{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		Status:    models.GameStatusPending,
		CreatedBy: &userID,
	}
	if err := s.db.Create(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// Slugify lowercases and hyphenates a game name.
func Slugify(name string) string {
	slug := slugStripChars.ReplaceAllString(strings.ToLower(name), "-")
	return slugTrimHyphens.ReplaceAllString(slug, "")
}
