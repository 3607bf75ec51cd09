package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"gorm.io/gorm"

	"github.com/research-hub/submission-service/internal/events"
	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/repositories"
	"github.com/research-hub/submission-service/internal/storage"
	"github.com/research-hub/submission-service/internal/validator"
)

const uploadFieldName = "files"

type projectService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	uploads   *storage.UploadStore
	publisher events.EventPublisher
}

func NewProjectService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, uploads *storage.UploadStore, publisher events.EventPublisher) ProjectService {
	return &projectService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		uploads:   uploads,
		publisher: publisher,
	}
}

// ===== SUBMISSION =====

func (s *projectService) Submit(ctx context.Context, user *models.User, req *SubmitProjectRequest, files []*multipart.FileHeader) (*models.Project, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if req == nil {
		return nil, ErrMissingFields
	}
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if !s.canSubmit(user) {
		return nil, ErrForbidden
	}
	if len(files) == 0 {
		return nil, ErrNoFilesUploaded
	}

	stored := make([]models.ProjectFile, 0, len(files))
	for _, fh := range files {
		sf, err := s.uploads.Save(uploadFieldName, fh)
		if err != nil {
			s.removeStored(stored)
			return nil, fmt.Errorf("failed to store upload %q: %w", fh.Filename, err)
		}
		stored = append(stored, models.ProjectFile{
			Filename: sf.Filename,
			FileURL:  sf.URL,
		})
	}

	project := &models.Project{
		UserID:      user.ID,
		Name:        req.Name,
		Description: req.Description,
		Department:  req.Department,
		Status:      models.StatusUnderReview,
	}
	if err := project.SetFiles(stored); err != nil {
		s.removeStored(stored)
		return nil, fmt.Errorf("failed to encode file list: %w", err)
	}

	if err := s.repo.Project().Create(ctx, project); err != nil {
		s.removeStored(stored)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project submitted", "project_id", project.ID, "user_id", user.ID, "department", project.Department, "files", len(stored))

	s.publishEvent(ctx, events.TypeProjectSubmitted, project, "")

	return s.GetByID(ctx, project.ID)
}

// removeStored deletes files written before a failed submission so they do
// not linger on disk.
func (s *projectService) removeStored(stored []models.ProjectFile) {
	for _, f := range stored {
		if err := s.uploads.Remove(f.Filename); err != nil {
			s.logger.Warn("Failed to remove orphaned upload", "filename", f.Filename, "error", err)
		}
	}
}

// Submission is restricted to admins and users whose index number is on
// the authorized list. The same rule is enforced again at the route, but
// the service does not rely on that.
func (s *projectService) canSubmit(user *models.User) bool {
	if user.IsAdmin() {
		return true
	}
	if !user.HasIndexNumber() {
		return false
	}
	return s.validator.Allowlist().Contains(user.IndexNumberValue())
}

// ===== REVIEW DECISIONS =====

func (s *projectService) Approve(ctx context.Context, id uint, message string) (*models.Project, error) {
	return s.decide(ctx, id, models.StatusApproved, message, events.TypeProjectApproved)
}

func (s *projectService) Reject(ctx context.Context, id uint, message string) (*models.Project, error) {
	return s.decide(ctx, id, models.StatusRejected, message, events.TypeProjectRejected)
}

func (s *projectService) decide(ctx context.Context, id uint, status models.ProjectStatus, message, eventType string) (*models.Project, error) {
	project, err := s.repo.Project().UpdateDecision(ctx, id, status, message)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	s.logger.Info("Project decision recorded", "project_id", id, "status", status)

	s.publishEvent(ctx, eventType, project, message)

	return project, nil
}

// ===== QUERIES =====

func (s *projectService) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.Project().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (s *projectService) ListUnderReview(ctx context.Context) ([]models.Project, error) {
	status := models.StatusUnderReview
	return s.list(ctx, repositories.ProjectFilters{Status: &status})
}

func (s *projectService) ListApproved(ctx context.Context, department string) ([]models.Project, error) {
	status := models.StatusApproved
	return s.list(ctx, repositories.ProjectFilters{Status: &status, Department: department})
}

func (s *projectService) ListByUser(ctx context.Context, userID uint) ([]models.Project, error) {
	return s.list(ctx, repositories.ProjectFilters{UserID: &userID})
}

func (s *projectService) list(ctx context.Context, filters repositories.ProjectFilters) ([]models.Project, error) {
	projects, err := s.repo.Project().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) ResolveFile(ctx context.Context, projectID uint, filename string) (string, error) {
	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}

	file, err := project.FindFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to decode file list: %w", err)
	}
	if file == nil {
		return "", ErrFileNotFound
	}

	path, err := s.uploads.Path(file.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to resolve file: %w", err)
	}
	return path, nil
}

// ===== EVENTS =====

func (s *projectService) publishEvent(ctx context.Context, eventType string, project *models.Project, message string) {
	if s.publisher == nil {
		return
	}

	event := events.Event{
		Type: eventType,
		Data: events.ProjectEvent{
			ProjectID:    project.ID,
			ProjectName:  project.Name,
			OwnerID:      project.UserID,
			Department:   project.Department,
			Status:       string(project.Status),
			AdminMessage: message,
		},
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish project event", "event_type", eventType, "project_id", project.ID, "error", err)
	}
}
