package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/research-hub/submission-service/internal/authz"
	"github.com/research-hub/submission-service/internal/events"
	"github.com/research-hub/submission-service/internal/models"
	"github.com/research-hub/submission-service/internal/storage"
	"github.com/research-hub/submission-service/internal/validator"
)

func newTestProjectService(t *testing.T) (ProjectService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()

	repo := newMockRepository()
	v := validator.New(authz.NewDefaultIndexAllowlist())
	publisher := events.NewMockEventPublisher(testLogger())

	uploads := storage.NewUploadStore(t.TempDir(), "/uploads")
	require.NoError(t, uploads.Ensure())

	svc := NewProjectService(repo, nil, testLogger(), v, uploads, publisher)
	return svc, repo, publisher
}

// uploadFixtures builds real multipart file headers the way gin hands them
// to the handler.
func uploadFixtures(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/projects", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["files"]
}

func allowlistedUser() *models.User {
	index := "UGR0202110312"
	return &models.User{ID: 1, Name: "Ama", Email: "ama@example.com", IndexNumber: &index, Role: models.RoleContributor}
}

func plainUser() *models.User {
	return &models.User{ID: 2, Name: "Kofi", Email: "kofi@example.com", Role: models.RoleUser}
}

func submitRequest() *SubmitProjectRequest {
	return &SubmitProjectRequest{
		Name:        "Smart Irrigation",
		Description: "An automated irrigation controller for small farms.",
		Department:  "Computer Engineering",
	}
}

// ===== SUBMISSION =====

func TestProjectService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("allowlisted user submits with files", func(t *testing.T) {
		svc, _, publisher := newTestProjectService(t)

		project, err := svc.Submit(ctx, allowlistedUser(), submitRequest(), uploadFixtures(t, "report.pdf", "slides.pptx"))
		require.NoError(t, err)

		assert.Equal(t, models.StatusUnderReview, project.Status)
		assert.Equal(t, uint(1), project.UserID)

		files, err := project.FileList()
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.NotEmpty(t, files[0].Filename)
		assert.Contains(t, files[0].FileURL, "/uploads/")

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.TypeProjectSubmitted, published[0].Type)
	})

	t.Run("admin may submit without an index number", func(t *testing.T) {
		svc, _, _ := newTestProjectService(t)

		admin := &models.User{ID: 3, Name: "HOD", Email: "hod@example.com", Role: models.RoleAdmin}
		_, err := svc.Submit(ctx, admin, submitRequest(), uploadFixtures(t, "report.pdf"))
		assert.NoError(t, err)
	})

	t.Run("user without authorized index is rejected", func(t *testing.T) {
		svc, _, publisher := newTestProjectService(t)

		_, err := svc.Submit(ctx, plainUser(), submitRequest(), uploadFixtures(t, "report.pdf"))
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, publisher.GetPublishedEvents())
	})

	t.Run("requires at least one file", func(t *testing.T) {
		svc, _, _ := newTestProjectService(t)

		_, err := svc.Submit(ctx, allowlistedUser(), submitRequest(), nil)
		assert.ErrorIs(t, err, ErrNoFilesUploaded)
	})

	t.Run("removes stored files when persistence fails", func(t *testing.T) {
		repo := newMockRepository()
		repo.projectRepo.createErr = errors.New("connection reset")
		v := validator.New(authz.NewDefaultIndexAllowlist())
		dir := t.TempDir()
		uploads := storage.NewUploadStore(dir, "/uploads")
		require.NoError(t, uploads.Ensure())

		svc := NewProjectService(repo, nil, testLogger(), v, uploads, events.NewMockEventPublisher(testLogger()))

		_, err := svc.Submit(ctx, allowlistedUser(), submitRequest(), uploadFixtures(t, "report.pdf", "slides.pptx"))
		require.Error(t, err)

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		assert.Empty(t, entries, "failed submissions must not leave files behind")
	})

	t.Run("rejects short description", func(t *testing.T) {
		svc, _, _ := newTestProjectService(t)

		req := submitRequest()
		req.Description = "too short"
		_, err := svc.Submit(ctx, allowlistedUser(), req, uploadFixtures(t, "report.pdf"))
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
	})
}

// ===== REVIEW DECISIONS =====

func TestProjectService_Decisions(t *testing.T) {
	ctx := context.Background()

	submit := func(t *testing.T, svc ProjectService) *models.Project {
		t.Helper()
		project, err := svc.Submit(ctx, allowlistedUser(), submitRequest(), uploadFixtures(t, "report.pdf"))
		require.NoError(t, err)
		return project
	}

	t.Run("approve", func(t *testing.T) {
		svc, _, publisher := newTestProjectService(t)
		project := submit(t, svc)
		publisher.ClearEvents()

		updated, err := svc.Approve(ctx, project.ID, "Well done")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)
		require.NotNil(t, updated.AdminMessage)
		assert.Equal(t, "Well done", *updated.AdminMessage)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.TypeProjectApproved, published[0].Type)
	})

	t.Run("reject", func(t *testing.T) {
		svc, _, publisher := newTestProjectService(t)
		project := submit(t, svc)
		publisher.ClearEvents()

		updated, err := svc.Reject(ctx, project.ID, "Missing chapter 3")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, updated.Status)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.TypeProjectRejected, published[0].Type)
	})

	t.Run("decisions may be revised", func(t *testing.T) {
		svc, _, _ := newTestProjectService(t)
		project := submit(t, svc)

		_, err := svc.Reject(ctx, project.ID, "Missing chapter 3")
		require.NoError(t, err)

		updated, err := svc.Approve(ctx, project.ID, "Resolved after resubmission")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, updated.Status)
	})

	t.Run("unknown project", func(t *testing.T) {
		svc, _, _ := newTestProjectService(t)

		_, err := svc.Approve(ctx, 999, "")
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

// ===== QUERIES =====

func TestProjectService_Listings(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProjectService(t)

	first, err := svc.Submit(ctx, allowlistedUser(), submitRequest(), uploadFixtures(t, "a.pdf"))
	require.NoError(t, err)

	other := submitRequest()
	other.Name = "Solar Dryer"
	other.Department = "Agricultural Engineering"
	second, err := svc.Submit(ctx, allowlistedUser(), other, uploadFixtures(t, "b.pdf"))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, second.ID, "")
	require.NoError(t, err)

	underReview, err := svc.ListUnderReview(ctx)
	require.NoError(t, err)
	require.Len(t, underReview, 1)
	assert.Equal(t, first.ID, underReview[0].ID)

	approved, err := svc.ListApproved(ctx, "")
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, second.ID, approved[0].ID)

	approved, err = svc.ListApproved(ctx, "Computer Engineering")
	require.NoError(t, err)
	assert.Empty(t, approved)

	mine, err := svc.ListByUser(ctx, allowlistedUser().ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

// ===== LIFECYCLE =====

// Walks the full path a submission takes: register with an authorized index
// number, submit, sit in the review queue, get approved with feedback.
func TestSubmissionLifecycle(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	v := validator.New(authz.NewDefaultIndexAllowlist())
	publisher := events.NewMockEventPublisher(testLogger())
	uploads := storage.NewUploadStore(t.TempDir(), "/uploads")
	require.NoError(t, uploads.Ensure())

	auth := NewAuthService(repo, nil, testLogger(), v, newTestSessionStore(t), testAdminSecret)
	projects := NewProjectService(repo, nil, testLogger(), v, uploads, publisher)

	index := "UGR0202110312"
	result, err := auth.SignUp(ctx, &SignUpRequest{
		Name:        "Ama",
		Email:       "ama@example.com",
		Password:    "password123",
		IndexNumber: &index,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleContributor, result.User.Role)

	project, err := projects.Submit(ctx, result.User, submitRequest(), uploadFixtures(t, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, project.Status)

	queue, err := projects.ListUnderReview(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, project.ID, queue[0].ID)

	approved, err := projects.Approve(ctx, project.ID, "Well structured work")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.AdminMessage)
	assert.Equal(t, "Well structured work", *approved.AdminMessage)

	queue, err = projects.ListUnderReview(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	visible, err := projects.ListApproved(ctx, "")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, project.ID, visible[0].ID)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.TypeProjectSubmitted, published[0].Type)
	assert.Equal(t, events.TypeProjectApproved, published[1].Type)
}

func TestProjectService_ResolveFile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestProjectService(t)

	project, err := svc.Submit(ctx, allowlistedUser(), submitRequest(), uploadFixtures(t, "report.pdf"))
	require.NoError(t, err)

	files, err := project.FileList()
	require.NoError(t, err)
	require.Len(t, files, 1)

	path, err := svc.ResolveFile(ctx, project.ID, files[0].Filename)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	_, err = svc.ResolveFile(ctx, project.ID, "unknown.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = svc.ResolveFile(ctx, 999, "report.pdf")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
