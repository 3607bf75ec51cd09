package services

import (
	"context"
	"mime/multipart"

	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/sessions"
	"github.com/research-hub/submission-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type SignUpRequest = validator.SignUpRequest
type SignInRequest = validator.SignInRequest
type CreateAdminRequest = validator.CreateAdminRequest
type SubmitProjectRequest = validator.SubmitProjectRequest
type DecisionRequest = validator.DecisionRequest

// AuthResult is returned by operations that establish a session.
type AuthResult struct {
	User    *models.User
	Session *sessions.Session
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	SignUp(ctx context.Context, req *SignUpRequest) (*AuthResult, error)
	SignIn(ctx context.Context, req *SignInRequest) (*AuthResult, error)
	CurrentUser(ctx context.Context, sessionID string) (*models.User, error)
	SignOut(ctx context.Context, sessionID string) error
	CreateAdmin(ctx context.Context, req *CreateAdminRequest) (*models.User, error)
}

type ProjectService interface {
	Submit(ctx context.Context, user *models.User, req *SubmitProjectRequest, files []*multipart.FileHeader) (*models.Project, error)
	Approve(ctx context.Context, id uint, message string) (*models.Project, error)
	Reject(ctx context.Context, id uint, message string) (*models.Project, error)
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	ListUnderReview(ctx context.Context) ([]models.Project, error)
	ListApproved(ctx context.Context, department string) ([]models.Project, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Project, error)

	// ResolveFile returns the on-disk path of an uploaded file belonging
	// to the project.
	ResolveFile(ctx context.Context, projectID uint, filename string) (string, error)
}

type ReportService interface {
	// ExportProjects renders matching projects into an xlsx workbook.
	// Empty status/department mean no filtering.
	ExportProjects(ctx context.Context, status, department string) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Project() ProjectService
	Report() ReportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
