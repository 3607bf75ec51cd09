package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/services"
)

type stubProjectService struct {
	messages []string
}

func (s *stubProjectService) Submit(ctx context.Context, user *models.User, req *services.SubmitProjectRequest, files []*multipart.FileHeader) (*models.Project, error) {
	return nil, services.ErrForbidden
}

func (s *stubProjectService) Approve(ctx context.Context, id uint, message string) (*models.Project, error) {
	s.messages = append(s.messages, message)
	return &models.Project{ID: id, Status: models.StatusApproved, AdminMessage: &message}, nil
}

func (s *stubProjectService) Reject(ctx context.Context, id uint, message string) (*models.Project, error) {
	s.messages = append(s.messages, message)
	return &models.Project{ID: id, Status: models.StatusRejected, AdminMessage: &message}, nil
}

func (s *stubProjectService) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	return nil, services.ErrProjectNotFound
}

func (s *stubProjectService) ListUnderReview(ctx context.Context) ([]models.Project, error) {
	return nil, nil
}

func (s *stubProjectService) ListApproved(ctx context.Context, department string) ([]models.Project, error) {
	return nil, nil
}

func (s *stubProjectService) ListByUser(ctx context.Context, userID uint) ([]models.Project, error) {
	return nil, nil
}

func (s *stubProjectService) ResolveFile(ctx context.Context, projectID uint, filename string) (string, error) {
	return "", services.ErrFileNotFound
}

func newProjectRouter(svc services.ProjectService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewProjectHandler(svc, nil, testMiddlewareLogger())

	router := gin.New()
	projects := router.Group("/api/projects")
	{
		projects.PUT("/approve/:id", handler.Approve)
		projects.PUT("/reject/:id", handler.Reject)
	}
	return router
}

// chunkedReader hides the underlying reader's length so httptest builds a
// request with ContentLength -1, the way a chunked upload arrives.
type chunkedReader struct {
	r io.Reader
}

func (c chunkedReader) Read(p []byte) (int, error) { return c.r.Read(p) }

func TestProjectHandler_ApproveWithMessage(t *testing.T) {
	svc := &stubProjectService{}
	router := newProjectRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/projects/approve/7", strings.NewReader(`{"message":"Well done"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Well done"}, svc.messages)
}

func TestProjectHandler_DecisionWithoutBody(t *testing.T) {
	svc := &stubProjectService{}
	router := newProjectRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/projects/reject/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{""}, svc.messages)
}

func TestProjectHandler_DecisionChunkedBodyKeepsMessage(t *testing.T) {
	svc := &stubProjectService{}
	router := newProjectRouter(svc)

	// No declared length: the message must still be read, not dropped.
	req := httptest.NewRequest(http.MethodPut, "/api/projects/approve/7", chunkedReader{strings.NewReader(`{"message":"Needs revisions"}`)})
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Needs revisions"}, svc.messages)
}

func TestProjectHandler_DecisionMalformedBody(t *testing.T) {
	svc := &stubProjectService{}
	router := newProjectRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/projects/approve/7", strings.NewReader(`{"message":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.messages)
}
