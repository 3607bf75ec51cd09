package storage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, field, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File[field][0]
}

func TestUploadStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewUploadStore(dir, "/uploads")
	require.NoError(t, store.Ensure())

	fh := multipartFile(t, "files", "thesis.pdf", "pdf bytes")

	stored, err := store.Save("files", fh)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Filename, "files-"))
	assert.True(t, strings.HasSuffix(stored.Filename, ".pdf"), "original extension preserved")
	assert.Equal(t, "/uploads/"+stored.Filename, stored.URL)

	data, err := os.ReadFile(filepath.Join(dir, stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestUploadStore_SaveGeneratesDistinctNames(t *testing.T) {
	store := NewUploadStore(t.TempDir(), "/uploads")
	require.NoError(t, store.Ensure())

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		fh := multipartFile(t, "files", "same.pdf", "x")
		stored, err := store.Save("files", fh)
		require.NoError(t, err)
		assert.False(t, seen[stored.Filename], "stored name %q repeated", stored.Filename)
		seen[stored.Filename] = true
	}
}

func TestUploadStore_Path(t *testing.T) {
	dir := t.TempDir()
	store := NewUploadStore(dir, "/uploads")
	require.NoError(t, store.Ensure())

	fh := multipartFile(t, "files", "thesis.pdf", "pdf bytes")
	stored, err := store.Save("files", fh)
	require.NoError(t, err)

	path, err := store.Path(stored.Filename)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, stored.Filename), path)

	_, err = store.Path("does-not-exist.pdf")
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

func TestUploadStore_Remove(t *testing.T) {
	dir := t.TempDir()
	store := NewUploadStore(dir, "/uploads")
	require.NoError(t, store.Ensure())

	fh := multipartFile(t, "files", "thesis.pdf", "pdf bytes")
	stored, err := store.Save("files", fh)
	require.NoError(t, err)

	require.NoError(t, store.Remove(stored.Filename))
	_, err = os.Stat(filepath.Join(dir, stored.Filename))
	assert.True(t, os.IsNotExist(err))

	// Removing a file that is already gone is not an error.
	assert.NoError(t, store.Remove(stored.Filename))

	// Traversal attempts are rejected the same way Path rejects them.
	assert.True(t, errors.Is(store.Remove("../secret"), ErrFileNotFound))
}

func TestUploadStore_PathRejectsTraversal(t *testing.T) {
	store := NewUploadStore(t.TempDir(), "/uploads")
	require.NoError(t, store.Ensure())

	for _, name := range []string{"../secret", "a/../../etc/passwd", "/etc/passwd", ""} {
		_, err := store.Path(name)
		assert.True(t, errors.Is(err, ErrFileNotFound), "expected %q to be rejected", name)
	}
}
