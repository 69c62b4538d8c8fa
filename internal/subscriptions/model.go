package subscriptions

import "time"

// Record mirrors the billing provider's subscription for one user.
// At most one record exists per user.
type Record struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	SubscriptionID    string    `json:"subscriptionId"`
	CustomerID        string    `json:"customerId"`
	PriceID           string    `json:"priceId"`
	CurrentPeriodEnd  time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd bool      `json:"cancelAtPeriodEnd"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
