package apperrors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrReconciliationFailed = errors.New("reconciliation failed")
	ErrUnsupportedFormat    = errors.New("unsupported file format")
	ErrInvalidSettings      = errors.New("invalid settings")
	ErrNoScope              = errors.New("no database scope in context")
)
