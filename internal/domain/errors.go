package domain

import "errors"

// Error kinds shared by services and mapped to transport status codes.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrNoReadableContent is returned when a crawl produced no documents.
	ErrNoReadableContent = errors.New("No readable text found on page(s)")

	// ErrAPIKeyMissing is returned when no language-model key could be resolved.
	ErrAPIKeyMissing = errors.New("API key not configured")
)
