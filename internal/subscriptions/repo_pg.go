package subscriptions

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) GetByUser(ctx context.Context, userID string) (*Record, error) {
	const query = `
SELECT id, user_id, subscription_id, customer_id, price_id, current_period_end, cancel_at_period_end, created_at, updated_at
FROM user_subscriptions
WHERE user_id = $1
LIMIT 1`
	var rec Record
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.SubscriptionID,
		&rec.CustomerID,
		&rec.PriceID,
		&rec.CurrentPeriodEnd,
		&rec.CancelAtPeriodEnd,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Upsert relies on the unique user_id constraint so concurrent duplicate
// deliveries converge on one row.
func (r *PGRepo) Upsert(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO user_subscriptions (
  id, user_id, subscription_id, customer_id, price_id, current_period_end, cancel_at_period_end, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
ON CONFLICT (user_id) DO UPDATE SET
  subscription_id = EXCLUDED.subscription_id,
  customer_id = EXCLUDED.customer_id,
  price_id = EXCLUDED.price_id,
  current_period_end = EXCLUDED.current_period_end,
  cancel_at_period_end = EXCLUDED.cancel_at_period_end,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		uuid.NewString(),
		rec.UserID,
		rec.SubscriptionID,
		rec.CustomerID,
		rec.PriceID,
		rec.CurrentPeriodEnd.UTC(),
		rec.CancelAtPeriodEnd,
	)
	return err
}

func (r *PGRepo) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	const query = `DELETE FROM user_subscriptions WHERE customer_id = $1`
	res, err := r.DB.ExecContext(ctx, query, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT count(*) FROM user_subscriptions`).Scan(&n)
	return n, err
}
