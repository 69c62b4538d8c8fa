package billing

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotConfigured     = errors.New("billing provider not configured")
	ErrUnknownPrice      = errors.New("unknown price id")
	ErrNoBillingAccount  = errors.New("user has no billing account")
	ErrMissingUserID     = errors.New("userId metadata is missing")
	ErrMissingCustomer   = errors.New("customer id is missing")
	ErrMissingPrice      = errors.New("subscription has no price")
	ErrUnsupportedObject = errors.New("event object could not be decoded")
)
