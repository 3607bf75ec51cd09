package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/research-hub/submission-service/internal/authz"
	"github.com/research-hub/submission-service/internal/config"
	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/ratelimit"
	"github.com/research-hub/submission-service/internal/repositories"
	"github.com/research-hub/submission-service/internal/sessions"
	"github.com/research-hub/submission-service/internal/utils"
)

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, logger utils.Logger, cfg *config.Config) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.FrontendURL))
	router.Use(gin.Recovery())
	router.Use(utils.ContextLogger(logger))
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(SecurityMiddleware())
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// CORSMiddleware allows the configured frontend origin with credentials,
// which the session cookie requires.
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{frontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// SessionAuthMiddleware resolves the session cookie into a loaded user for
// every protected route.
type SessionAuthMiddleware struct {
	store     sessions.Store
	userRepo  repositories.UserRepository
	allowlist *authz.IndexAllowlist
}

func NewSessionAuthMiddleware(store sessions.Store, userRepo repositories.UserRepository, allowlist *authz.IndexAllowlist) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{
		store:     store,
		userRepo:  userRepo,
		allowlist: allowlist,
	}
}

// AuthMiddleware authenticates the request from the session cookie and sets
// user_id, user and user_role in the context.
func (m *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessions.FromRequest(c)
		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		session, err := m.store.Get(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, sessions.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "Session expired, please sign in again",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Failed to verify session",
			})
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), session.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "User not authenticated",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Failed to load user",
			})
			return
		}

		c.Set("session_id", session.ID)
		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", string(user.Role))

		c.Next()
	}
}

// RequireRoleMiddleware restricts a route to the given roles.
func (m *SessionAuthMiddleware) RequireRoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
	}
}

// RequireSubmitterMiddleware restricts a route to admins and users holding
// an authorized index number.
func (m *SessionAuthMiddleware) RequireSubmitterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}

		if user.IsAdmin() || (user.HasIndexNumber() && m.allowlist.Contains(user.IndexNumberValue())) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Only authorized students may submit projects",
		})
	}
}

// RateLimitMiddleware throttles a route per client IP.
func RateLimitMiddleware(limiter *ratelimit.Limiter, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Limiter failures must not lock users out.
			utils.FromContext(c, logger).Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Message: "Too many attempts, please try again later",
			})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
