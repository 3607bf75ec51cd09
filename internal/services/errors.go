package services

import "errors"

// Sentinel errors mapped to HTTP status codes by the handler layer.
var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrForbidden            = errors.New("insufficient permissions")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrDuplicateIndexNumber = errors.New("index number already registered")
	ErrInvalidIndexNumber   = errors.New("index number not authorized")
	ErrInvalidSecretKey     = errors.New("invalid admin secret key")
	ErrMissingFields        = errors.New("required fields missing")
	ErrNoFilesUploaded      = errors.New("at least one file is required")
)
