package assist

import "errors"

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUpgradeRequired = errors.New("ai tools require a premium plan")
	ErrEmptyResponse   = errors.New("ai returned an empty response")
	ErrUnavailable     = errors.New("ai provider unavailable")
	ErrProviderFailed  = errors.New("ai provider request failed")
)
