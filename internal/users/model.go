package users

import "time"

// User is the identity mirrored from the login provider plus the billing
// customer attached after checkout.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"fullName"`
	PictureURL        string    `json:"pictureUrl"`
	BillingCustomerID string    `json:"billingCustomerId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
