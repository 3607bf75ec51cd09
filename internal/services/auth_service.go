package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/repositories"
	"github.com/research-hub/submission-service/internal/sessions"
	"github.com/research-hub/submission-service/internal/validator"
)

const bcryptCost = 12

type authService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	sessionStore   sessions.Store
	adminSecretKey string
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, sessionStore sessions.Store, adminSecretKey string) AuthService {
	return &authService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		sessionStore:   sessionStore,
		adminSecretKey: adminSecretKey,
	}
}

// ===== REGISTRATION =====

func (s *authService) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResult, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	email := normalizeEmail(req.Email)

	if _, err := s.repo.User().GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	// Registering with an index number makes the account a contributor,
	// eligible to submit projects.
	role := models.RoleUser
	var indexNumber *string
	if req.IndexNumber != nil {
		trimmed := strings.TrimSpace(*req.IndexNumber)
		// The validator already checked the allow-list; the service does
		// not rely on that.
		if !s.validator.Allowlist().Contains(trimmed) {
			return nil, ErrInvalidIndexNumber
		}
		if _, err := s.repo.User().GetByIndexNumber(ctx, trimmed); err == nil {
			return nil, ErrDuplicateIndexNumber
		} else if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check index number: %w", err)
		}
		indexNumber = &trimmed
		role = models.RoleContributor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Password:    string(hash),
		IndexNumber: indexNumber,
		Role:        role,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.sessionStore.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "has_index_number", user.HasIndexNumber())

	return &AuthResult{User: user, Session: session}, nil
}

// ===== AUTHENTICATION =====

func (s *authService) SignIn(ctx context.Context, req *SignInRequest) (*AuthResult, error) {
	if errs := s.validator.ValidateSignIn(req); len(errs) > 0 {
		return nil, errs
	}

	var (
		user *models.User
		err  error
	)
	if req.Email != "" {
		user, err = s.repo.User().GetByEmail(ctx, normalizeEmail(req.Email))
	} else {
		user, err = s.repo.User().GetByIndexNumber(ctx, strings.TrimSpace(req.IndexNumber))
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same response as a wrong password so the two cases cannot
			// be told apart by a caller.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessionStore.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("User signed in", "user_id", user.ID, "role", user.Role)

	return &AuthResult{User: user, Session: session}, nil
}

func (s *authService) CurrentUser(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.sessionStore.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, session.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

func (s *authService) SignOut(ctx context.Context, sessionID string) error {
	err := s.sessionStore.Destroy(ctx, sessionID)
	if err != nil && !errors.Is(err, sessions.ErrSessionNotFound) {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	// Signing out an already-expired session succeeds.
	return nil
}

// ===== ADMIN BOOTSTRAP =====

func (s *authService) CreateAdmin(ctx context.Context, req *CreateAdminRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if s.adminSecretKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.SecretKey), []byte(s.adminSecretKey)) != 1 {
		return nil, ErrInvalidSecretKey
	}

	email := normalizeEmail(req.Email)

	if _, err := s.repo.User().GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	indexNumber := strings.TrimSpace(req.IndexNumber)
	if _, err := s.repo.User().GetByIndexNumber(ctx, indexNumber); err == nil {
		return nil, ErrDuplicateIndexNumber
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check index number: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Password:    string(hash),
		IndexNumber: &indexNumber,
		Role:        models.RoleAdmin,
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	// Unlike SignUp, no session is established here: the new admin signs
	// in through the regular flow.
	s.logger.Info("Admin account created", "user_id", user.ID)

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
