package editor

import "errors"

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrSessionClosed   = errors.New("editor session closed")
	ErrUnknownStep     = errors.New("unknown step")
	ErrUnknownList     = errors.New("unknown list")
	ErrInvalidMove     = errors.New("index out of range")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpgradeRequired = errors.New("upgrade required")
	ErrTooManySessions = errors.New("too many open editor sessions")
)
