package subscriptions

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("subscription not found")

type Repo interface {
	GetByUser(ctx context.Context, userID string) (*Record, error)
	// Upsert inserts or updates the record keyed by user id in one statement.
	Upsert(ctx context.Context, rec Record) error
	// DeleteByCustomer removes every record for the customer and reports how
	// many were removed. Zero is not an error.
	DeleteByCustomer(ctx context.Context, customerID string) (int64, error)
	Count(ctx context.Context) (int, error)
}
