package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/research-hub/submission-service/internal/models"
)

var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== FILTERS =====

// ProjectFilters narrows project listings. Department is an exact match and
// only applies when non-empty.
type ProjectFilters struct {
	Status     *models.ProjectStatus
	Department string
	UserID     *uint
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIndexNumber(ctx context.Context, indexNumber string) (*models.User, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	// UpdateDecision sets status and admin message unconditionally and
	// returns the updated record with its owner preloaded.
	UpdateDecision(ctx context.Context, id uint, status models.ProjectStatus, message string) (*models.Project, error)
	// List returns projects matching the filters, owners preloaded,
	// newest first.
	List(ctx context.Context, filters ProjectFilters) ([]models.Project, error)
}

// Repository aggregates the per-collection repositories.
type Repository interface {
	User() UserRepository
	Project() ProjectRepository

	Ping(ctx context.Context) error
	Close() error
}
