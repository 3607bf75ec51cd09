package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/research-hub/submission-service/internal/cache"
	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/repositories"
)

type ProjectPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewProjectPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProjectRepository {
	return &ProjectPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *ProjectPostgreSQL) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	cache.InvalidateProjectListings(ctx, r.cacheManager)
	return nil
}

func (r *ProjectPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("User").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

func (r *ProjectPostgreSQL) UpdateDecision(ctx context.Context, id uint, status models.ProjectStatus, message string) (*models.Project, error) {
	// Unconditional overwrite: no check on the current status, last write
	// wins, including the feedback message.
	result := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"admin_message": message,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update project decision: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repositories.ErrNotFound
	}

	cache.InvalidateProjectListings(ctx, r.cacheManager)

	return r.GetByID(ctx, id)
}

func (r *ProjectPostgreSQL) List(ctx context.Context, filters repositories.ProjectFilters) ([]models.Project, error) {
	// Status-scoped listings (the dashboard queries) are cached; per-user
	// listings always hit the database.
	if filters.UserID == nil && filters.Status != nil {
		cacheKey := fmt.Sprintf("list:%s:%s", *filters.Status, filters.Department)
		var projects []models.Project

		err := r.cacheManager.Project.CacheOrExecute(ctx, cacheKey, &projects, cache.ProjectListCacheConfig.TTL, func() (interface{}, error) {
			return r.list(ctx, filters)
		})
		if err != nil {
			return nil, err
		}
		return projects, nil
	}

	return r.list(ctx, filters)
}

func (r *ProjectPostgreSQL) list(ctx context.Context, filters repositories.ProjectFilters) ([]models.Project, error) {
	query := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Department != "" {
		query = query.Where("department = ?", filters.Department)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}
