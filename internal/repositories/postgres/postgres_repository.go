package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/research-hub/submission-service/internal/repositories"
)

// RepositoryConfig holds the connections shared by every repository.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// PostgreSQLRepository aggregates the individual repositories behind a
// single handle.
type PostgreSQLRepository struct {
	config      *RepositoryConfig
	userRepo    repositories.UserRepository
	projectRepo repositories.ProjectRepository
}

func NewPostgreSQLRepository(config *RepositoryConfig) (repositories.Repository, error) {
	if config == nil || config.DB == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &PostgreSQLRepository{
		config:      config,
		userRepo:    NewUserPostgreSQL(config.DB),
		projectRepo: NewProjectPostgreSQL(config.DB, config.RedisClient),
	}, nil
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.userRepo
}

func (r *PostgreSQLRepository) Project() repositories.ProjectRepository {
	return r.projectRepo
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// RepositoryManager owns the repository lifecycle.
type RepositoryManager struct {
	config     *RepositoryConfig
	repository repositories.Repository
}

func NewRepositoryManager(config *RepositoryConfig) *RepositoryManager {
	return &RepositoryManager{config: config}
}

func (m *RepositoryManager) Initialize(ctx context.Context) error {
	repo, err := NewPostgreSQLRepository(m.config)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}

	if err := repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	m.repository = repo
	return nil
}

func (m *RepositoryManager) GetRepository() repositories.Repository {
	return m.repository
}

func (m *RepositoryManager) HealthCheck(ctx context.Context) error {
	if m.repository == nil {
		return fmt.Errorf("repository not initialized")
	}
	return m.repository.Ping(ctx)
}

func (m *RepositoryManager) Shutdown() error {
	if m.repository == nil {
		return nil
	}
	return m.repository.Close()
}
