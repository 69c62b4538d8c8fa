package resumes

import "errors"

var (
	ErrNotFound        = errors.New("resume not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpgradeRequired = errors.New("upgrade required")
	ErrPhotoTooLarge   = errors.New("photo too large")
)
