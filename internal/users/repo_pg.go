package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

// Upsert refreshes the profile fields; the billing customer id is left alone.
func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, full_name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query, user.ID, user.Email, user.FullName, user.PictureURL)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, email, full_name, picture_url, billing_customer_id, created_at, updated_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	var customerID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PictureURL,
		&customerID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if customerID.Valid {
		user.BillingCustomerID = customerID.String
	}
	return user, nil
}

func (r *PGRepo) AttachBillingCustomer(ctx context.Context, userID, customerID string) error {
	const query = `
INSERT INTO users (id, billing_customer_id, created_at, updated_at)
VALUES ($1, $2, now(), now())
ON CONFLICT (id) DO UPDATE SET
  billing_customer_id = EXCLUDED.billing_customer_id,
  updated_at = now()
WHERE users.billing_customer_id IS DISTINCT FROM EXCLUDED.billing_customer_id`
	_, err := r.DB.ExecContext(ctx, query, userID, customerID)
	return err
}
