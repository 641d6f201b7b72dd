package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrMetadataUnavailable = errors.New("model metadata unavailable")
	ErrQueryFailed         = errors.New("query execution failed")
	ErrDatabaseDisabled    = errors.New("run history database is not configured")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
)
