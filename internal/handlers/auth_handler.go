package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/research-hub/submission-service/internal/services"
	"github.com/research-hub/submission-service/internal/sessions"
	"github.com/research-hub/submission-service/internal/utils"
	"github.com/research-hub/submission-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	service    services.AuthService
	cookieOpts sessions.CookieOptions
}

func NewAuthHandler(service services.AuthService, logger utils.Logger, cookieOpts sessions.CookieOptions) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		cookieOpts:  cookieOpts,
	}
}

// SignUp registers a new account and signs it in.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Signing up user")

	result, err := h.service.SignUp(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sessions.SetCookie(c, result.Session.ID, h.cookieOpts)

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Account created successfully",
		Data:    result.User,
	})
}

// SignIn authenticates by email or index number.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Signing in user")

	result, err := h.service.SignIn(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	sessions.SetCookie(c, result.Session.ID, h.cookieOpts)

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Signed in successfully",
		Data:    result.User,
	})
}

// SignOut destroys the session and expires the cookie. It succeeds even
// when no valid session is attached.
func (h *AuthHandler) SignOut(c *gin.Context) {
	sessionID := sessions.FromRequest(c)
	if sessionID != "" {
		if err := h.service.SignOut(c.Request.Context(), sessionID); err != nil {
			h.handleServiceError(c, err)
			return
		}
	}

	sessions.ClearCookie(c, h.cookieOpts)

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Signed out successfully",
	})
}

// UserInfo returns the authenticated user loaded by the session middleware.
func (h *AuthHandler) UserInfo(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    user,
	})
}

// CreateAdmin bootstraps an admin account behind the shared secret key. No
// session is established; the new admin signs in normally.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req services.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating admin account")

	user, err := h.service.CreateAdmin(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Admin account created successfully",
		Data:    user,
	})
}

// ===== ERROR HANDLING =====

func (h *AuthHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: verrs,
		})
	case errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrDuplicateIndexNumber):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidIndexNumber):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid credentials",
		})
	case errors.Is(err, services.ErrInvalidSecretKey):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid secret key",
		})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
	default:
		h.LogError(c, err, "Unexpected auth service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
