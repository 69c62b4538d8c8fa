package users

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth persists the identity returned by the login provider.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: id and email are required", ErrInvalidInput)
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, ErrNotConfigured
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

// AttachBillingCustomer records the billing customer for a user after checkout.
func (s *Service) AttachBillingCustomer(ctx context.Context, userID, customerID string) error {
	if s == nil || s.Repo == nil {
		return ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	customerID = strings.TrimSpace(customerID)
	if userID == "" || customerID == "" {
		return fmt.Errorf("%w: user id and customer id are required", ErrInvalidInput)
	}
	if err := s.Repo.AttachBillingCustomer(ctx, userID, customerID); err != nil {
		return fmt.Errorf("attach billing customer: %w", err)
	}
	return nil
}
