package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/research-hub/submission-service/internal/events"
	"github.com/research-hub/submission-service/internal/repositories"
	"github.com/research-hub/submission-service/internal/sessions"
	"github.com/research-hub/submission-service/internal/storage"
	"github.com/research-hub/submission-service/internal/validator"
)

// ServiceManagerConfig holds the cross-service dependencies that are not
// repositories.
type ServiceManagerConfig struct {
	SessionStore   sessions.Store
	Uploads        *storage.UploadStore
	Publisher      events.EventPublisher
	AdminSecretKey string
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	authService    AuthService
	projectService ProjectService
	reportService  ReportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.config.SessionStore == nil {
		return fmt.Errorf("session store is required")
	}
	if sm.config.Uploads == nil {
		return fmt.Errorf("upload store is required")
	}

	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.SessionStore, sm.config.AdminSecretKey)
	sm.projectService = NewProjectService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Uploads, sm.config.Publisher)
	sm.reportService = NewReportService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.authService == nil {
		panic("auth service not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Project() ProjectService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.projectService == nil {
		panic("project service not initialized")
	}
	return sm.projectService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized || sm.reportService == nil {
		panic("report service not initialized")
	}
	return sm.reportService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
