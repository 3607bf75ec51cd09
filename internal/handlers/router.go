package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/ratelimit"
	"github.com/research-hub/submission-service/internal/services"
	"github.com/research-hub/submission-service/internal/sessions"
	"github.com/research-hub/submission-service/internal/utils"
)

type HandlerManager struct {
	authHandler    *AuthHandler
	projectHandler *ProjectHandler
	authMiddleware *SessionAuthMiddleware
	signInLimiter  *ratelimit.Limiter
	serviceManager services.ServiceManager
	logger         utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	authMiddleware *SessionAuthMiddleware,
	signInLimiter *ratelimit.Limiter,
	cookieOpts sessions.CookieOptions,
) *HandlerManager {
	return &HandlerManager{
		authHandler:    NewAuthHandler(serviceManager.Auth(), logger, cookieOpts),
		projectHandler: NewProjectHandler(serviceManager.Project(), serviceManager.Report(), logger),
		authMiddleware: authMiddleware,
		signInLimiter:  signInLimiter,
		serviceManager: serviceManager,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, uploadsDir string) {
	requireAdmin := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	// Auth routes
	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", hm.authHandler.SignUp)
		auth.POST("/signin", RateLimitMiddleware(hm.signInLimiter, hm.logger), hm.authHandler.SignIn)
		auth.POST("/create-admin", hm.authHandler.CreateAdmin)
		auth.POST("/signout", hm.authMiddleware.AuthMiddleware(), hm.authHandler.SignOut)
		auth.GET("/user-info", hm.authMiddleware.AuthMiddleware(), hm.authHandler.UserInfo)
	}

	// Project routes - all behind the session
	projects := router.Group("/api/projects")
	projects.Use(hm.authMiddleware.AuthMiddleware())
	{
		projects.POST("/submit", hm.authMiddleware.RequireSubmitterMiddleware(), hm.projectHandler.Submit)
		projects.GET("", hm.projectHandler.ListUnderReview)
		projects.GET("/approved", hm.projectHandler.ListApproved)
		projects.GET("/my", hm.projectHandler.ListMine)
		projects.GET("/preview/:projectId/:fileName", hm.projectHandler.Preview)

		// Admin review workflow
		projects.PUT("/approve/:id", requireAdmin, hm.projectHandler.Approve)
		projects.PUT("/reject/:id", requireAdmin, hm.projectHandler.Reject)
		projects.GET("/export", requireAdmin, hm.projectHandler.Export)
	}

	// Uploaded files are also served directly.
	router.Static("/uploads", uploadsDir)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "submission-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "submission-service",
		})
	})
}
