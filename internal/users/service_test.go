package users

import (
	"context"
	"errors"
	"testing"
)

func TestAttachBillingCustomerIsIdempotent(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.AttachBillingCustomer(ctx, "user-1", "cus_1"); err != nil {
			t.Fatalf("attach %d: %v", i+1, err)
		}
	}
	user, err := svc.GetByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.BillingCustomerID != "cus_1" {
		t.Fatalf("expected customer cus_1, got %q", user.BillingCustomerID)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one user row, got %d", len(repo.users))
	}
}

func TestUpsertKeepsBillingCustomer(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	if err := svc.AttachBillingCustomer(ctx, "user-1", "cus_1"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := svc.UpsertFromAuth(ctx, User{ID: "user-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	user, _ := svc.GetByID(ctx, "user-1")
	if user.BillingCustomerID != "cus_1" || user.Email != "a@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAttachBillingCustomerRequiresIDs(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.AttachBillingCustomer(context.Background(), "", "cus_1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
