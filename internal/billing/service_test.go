package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/entitlements"
	"resume-builder/internal/subscriptions"
	"resume-builder/internal/users"
)

func newBillingService(provider Provider) (*Service, *users.MemoryRepo, *subscriptions.MemoryRepo) {
	userRepo := users.NewMemoryRepo()
	subs := subscriptions.NewMemoryRepo()
	svc := NewService(provider, users.NewService(userRepo), subs,
		entitlements.NewPlanTable("price_premium", "price_plus"),
		URLs{Success: "http://ui/billing/success", Cancel: "http://ui/billing", PortalReturn: "http://ui/billing"})
	return svc, userRepo, subs
}

func TestCheckoutRejectsUnknownPrice(t *testing.T) {
	provider := &fakeProvider{}
	svc, _, _ := newBillingService(provider)

	_, err := svc.Checkout(context.Background(), "user-1", "price_other")
	assert.ErrorIs(t, err, ErrUnknownPrice)
	assert.Empty(t, provider.checkouts)

	_, err = svc.Checkout(context.Background(), "", "price_premium")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCheckoutReusesCustomer(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	svc, userRepo, _ := newBillingService(provider)
	require.NoError(t, userRepo.Upsert(ctx, users.User{ID: "user-1", Email: "a@example.com"}))
	require.NoError(t, userRepo.AttachBillingCustomer(ctx, "user-1", "cus_1"))

	url, err := svc.Checkout(ctx, "user-1", "price_plus")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/price_plus", url)
	require.Len(t, provider.checkouts, 1)
	got := provider.checkouts[0]
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "cus_1", got.CustomerID)
	assert.Equal(t, "a@example.com", got.Email)
	assert.Equal(t, "http://ui/billing/success", got.SuccessURL)
}

func TestCheckoutWithoutProvider(t *testing.T) {
	svc, _, _ := newBillingService(nil)
	_, err := svc.Checkout(context.Background(), "user-1", "price_premium")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPortalRequiresBillingAccount(t *testing.T) {
	ctx := context.Background()
	provider := &fakeProvider{}
	svc, userRepo, _ := newBillingService(provider)

	_, err := svc.Portal(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNoBillingAccount)

	require.NoError(t, userRepo.AttachBillingCustomer(ctx, "user-1", "cus_9"))
	url, err := svc.Portal(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "https://portal.test/cus_9", url)
}

func TestSubscriptionView(t *testing.T) {
	ctx := context.Background()
	svc, _, subs := newBillingService(nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	view, err := svc.Subscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entitlements.LevelFree, view.Level)
	assert.Nil(t, view.Subscription)

	require.NoError(t, subs.Upsert(ctx, subscriptions.Record{
		UserID: "user-1", SubscriptionID: "sub_1", CustomerID: "cus_1",
		PriceID: "price_plus", CurrentPeriodEnd: now.Add(24 * time.Hour),
	}))
	view, err = svc.Subscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entitlements.LevelPremiumPlus, view.Level)
	require.NotNil(t, view.Subscription)
	assert.Equal(t, "sub_1", view.Subscription.SubscriptionID)
}
