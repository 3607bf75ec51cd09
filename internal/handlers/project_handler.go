package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/services"
	"github.com/research-hub/submission-service/internal/utils"
	"github.com/research-hub/submission-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProjectHandler struct {
	BaseHandler
	service services.ProjectService
	reports services.ReportService
}

func NewProjectHandler(service services.ProjectService, reports services.ReportService, logger utils.Logger) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		reports:     reports,
	}
}

// Submit accepts a multipart form with the project fields plus one or more
// attachments under the "files" field.
func (h *ProjectHandler) Submit(c *gin.Context) {
	var req services.SubmitProjectRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid form data",
			Details: err.Error(),
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid multipart form",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting project", "name", req.Name, "department", req.Department)

	project, err := h.service.Submit(c.Request.Context(), currentUser(c), &req, form.File["files"])
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Success: true,
		Message: "Project submitted successfully",
		Data:    project,
	})
}

// Approve marks a project approved, overwriting any earlier decision.
func (h *ProjectHandler) Approve(c *gin.Context) {
	h.decide(c, "approved", h.service.Approve)
}

// Reject marks a project rejected, overwriting any earlier decision.
func (h *ProjectHandler) Reject(c *gin.Context) {
	h.decide(c, "rejected", h.service.Reject)
}

func (h *ProjectHandler) decide(c *gin.Context, verb string, fn func(context.Context, uint, string) (*models.Project, error)) {
	id, ok := h.projectID(c)
	if !ok {
		return
	}

	// An absent body means an empty admin message; chunked requests report
	// ContentLength -1, so bind unconditionally and accept EOF.
	var req services.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Recording project decision", "project_id", id, "decision", verb)

	project, err := fn(c.Request.Context(), id, req.Message)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Project %s", verb),
		Data:    project,
	})
}

// ListUnderReview returns the admin review queue.
func (h *ProjectHandler) ListUnderReview(c *gin.Context) {
	h.LogRequest(c, "Listing projects under review")

	projects, err := h.service.ListUnderReview(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    projects,
	})
}

// ListApproved returns approved projects, optionally filtered by department.
func (h *ProjectHandler) ListApproved(c *gin.Context) {
	department := c.Query("department")
	h.LogRequest(c, "Listing approved projects", "department", department)

	projects, err := h.service.ListApproved(c.Request.Context(), department)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    projects,
	})
}

// ListMine returns the authenticated user's own submissions.
func (h *ProjectHandler) ListMine(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Listing own projects", "user_id", user.ID)

	projects, err := h.service.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    projects,
	})
}

// Preview streams an uploaded file belonging to the project.
func (h *ProjectHandler) Preview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("projectId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid project ID",
		})
		return
	}
	filename := c.Param("fileName")

	h.LogRequest(c, "Previewing project file", "project_id", id, "filename", filename)

	path, err := h.service.ResolveFile(c.Request.Context(), uint(id), filename)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.File(path)
}

// Export downloads matching projects as an xlsx workbook.
func (h *ProjectHandler) Export(c *gin.Context) {
	status := c.Query("status")
	department := c.Query("department")
	h.LogRequest(c, "Exporting projects", "status", status, "department", department)

	data, filename, err := h.reports.ExportProjects(c.Request.Context(), status, department)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ===== HELPER METHODS =====

func (h *ProjectHandler) projectID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid project ID",
		})
		return 0, false
	}
	return uint(id), true
}

// ===== ERROR HANDLING =====

func (h *ProjectHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: verrs,
		})
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrNoFilesUploaded):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Only authorized students may submit projects",
		})
	case errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Project not found",
		})
	case errors.Is(err, services.ErrFileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "File not found",
		})
	default:
		h.LogError(c, err, "Unexpected project service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
