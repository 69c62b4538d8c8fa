package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrInvalidInput  = errors.New("invalid user input")
	ErrNotConfigured = errors.New("users service not configured")
)

type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	// AttachBillingCustomer sets the billing customer id, creating a stub row
	// when the user is unknown. Re-attaching the same id changes nothing.
	AttachBillingCustomer(ctx context.Context, userID, customerID string) error
}
