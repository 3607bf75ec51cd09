package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var ErrFileNotFound = errors.New("file not found")

// StoredFile describes a persisted upload: its stored name on disk and the
// public URL it is served from.
type StoredFile struct {
	Filename string
	URL      string
}

// UploadStore writes multipart uploads into a server-local directory served
// statically under baseURL.
type UploadStore struct {
	dir     string
	baseURL string
}

func NewUploadStore(dir, baseURL string) *UploadStore {
	return &UploadStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Ensure creates the upload directory if it does not exist.
func (s *UploadStore) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Dir returns the directory uploads are written to.
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes one multipart file under a collision-resistant name:
// field name, millisecond timestamp, random suffix, original extension.
func (s *UploadStore) Save(fieldName string, fh *multipart.FileHeader) (StoredFile, error) {
	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := s.storedName(fieldName, fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return StoredFile{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return StoredFile{
		Filename: name,
		URL:      fmt.Sprintf("%s/%s", s.baseURL, name),
	}, nil
}

// Path resolves a stored filename to its on-disk path, rejecting names that
// escape the upload directory.
func (s *UploadStore) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrFileNotFound
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("failed to stat upload: %w", err)
	}
	return path, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *UploadStore) Remove(filename string) error {
	if filename == "" || filename != filepath.Base(filename) {
		return ErrFileNotFound
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

func (s *UploadStore) storedName(fieldName, originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s-%d-%09d%s", fieldName, time.Now().UnixMilli(), rand.IntN(1_000_000_000), ext)
}
