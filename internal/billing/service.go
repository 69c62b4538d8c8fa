package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/entitlements"
	"resume-builder/internal/subscriptions"
	"resume-builder/internal/users"
)

// UserReader loads the profile that carries the billing customer id.
type UserReader interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
}

// SubscriptionReader loads a user's mirrored subscription.
type SubscriptionReader interface {
	GetByUser(ctx context.Context, userID string) (*subscriptions.Record, error)
}

// URLs are the redirect targets handed to hosted billing pages.
type URLs struct {
	Success      string
	Cancel       string
	PortalReturn string
}

// Service starts checkout and portal sessions and reports mirrored state.
type Service struct {
	Provider Provider
	Users    UserReader
	Subs     SubscriptionReader
	Plans    entitlements.PlanTable
	URLs     URLs
	Now      func() time.Time
}

func NewService(provider Provider, users UserReader, subs SubscriptionReader, plans entitlements.PlanTable, urls URLs) *Service {
	return &Service{Provider: provider, Users: users, Subs: subs, Plans: plans, URLs: urls, Now: time.Now}
}

// SubscriptionView is the caller's mirrored subscription and derived level.
type SubscriptionView struct {
	Level        entitlements.Level    `json:"level"`
	Subscription *subscriptions.Record `json:"subscription"`
}

// Checkout returns the hosted checkout URL for a known plan price.
func (s *Service) Checkout(ctx context.Context, userID, priceID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrUnauthorized
	}
	if s.Provider == nil {
		return "", ErrNotConfigured
	}
	priceID = strings.TrimSpace(priceID)
	if !s.Plans.Known(priceID) {
		return "", ErrUnknownPrice
	}

	req := CheckoutRequest{
		UserID:     userID,
		PriceID:    priceID,
		SuccessURL: s.URLs.Success,
		CancelURL:  s.URLs.Cancel,
	}
	user, err := s.Users.GetByID(ctx, userID)
	switch {
	case err == nil:
		req.CustomerID = user.BillingCustomerID
		req.Email = user.Email
	case errors.Is(err, users.ErrNotFound):
	default:
		return "", fmt.Errorf("load user: %w", err)
	}
	return s.Provider.CreateCheckoutSession(ctx, req)
}

// Portal returns the customer-portal URL for a user who has checked out before.
func (s *Service) Portal(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrUnauthorized
	}
	if s.Provider == nil {
		return "", ErrNotConfigured
	}
	user, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return "", ErrNoBillingAccount
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if user.BillingCustomerID == "" {
		return "", ErrNoBillingAccount
	}
	return s.Provider.CreatePortalSession(ctx, user.BillingCustomerID, s.URLs.PortalReturn)
}

// Subscription returns the mirrored record, nil when the user is on the free plan.
func (s *Service) Subscription(ctx context.Context, userID string) (SubscriptionView, error) {
	if strings.TrimSpace(userID) == "" {
		return SubscriptionView{}, ErrUnauthorized
	}
	rec, err := s.Subs.GetByUser(ctx, userID)
	if errors.Is(err, subscriptions.ErrNotFound) {
		return SubscriptionView{Level: entitlements.LevelFree}, nil
	}
	if err != nil {
		return SubscriptionView{}, fmt.Errorf("load subscription: %w", err)
	}
	return SubscriptionView{
		Level:        entitlements.ResolveLevel(s.Plans, rec, s.Now()),
		Subscription: rec,
	}, nil
}
