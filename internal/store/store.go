package store

import (
	"errors"
)

// Sentinel errors for common error conditions
var (
	ErrOfficeNotFound   = errors.New("office not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidCursor    = errors.New("invalid cursor")
	ErrThrottled        = errors.New("storage request throttled")
	ErrUnavailable      = errors.New("storage backend unavailable")
)

