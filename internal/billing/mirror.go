package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/subscriptions"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// SubscriptionStore is the write side of the subscription mirror.
type SubscriptionStore interface {
	Upsert(ctx context.Context, rec subscriptions.Record) error
	DeleteByCustomer(ctx context.Context, customerID string) (int64, error)
}

// CustomerLinker records which billing customer belongs to a user.
type CustomerLinker interface {
	AttachBillingCustomer(ctx context.Context, userID, customerID string) error
}

// Mirror applies provider events to the local subscription rows. Each event
// results in at most one atomic write, so redelivery is harmless.
type Mirror struct {
	Subs     SubscriptionStore
	Users    CustomerLinker
	Provider Provider
}

func NewMirror(subs SubscriptionStore, users CustomerLinker, provider Provider) *Mirror {
	return &Mirror{Subs: subs, Users: users, Provider: provider}
}

// Handle dispatches one verified event. Unhandled event types are a no-op.
func (m *Mirror) Handle(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := decodeObject(event, &sess); err != nil {
			return err
		}
		return m.sessionCompleted(ctx, &sess)
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := decodeObject(event, &sub); err != nil {
			return err
		}
		return m.subscriptionChanged(ctx, &sub)
	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := decodeObject(event, &sub); err != nil {
			return err
		}
		return m.removeCustomer(ctx, customerID(sub.Customer))
	default:
		telemetry.Info("billing.webhook.unhandled", map[string]any{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		})
		return nil
	}
}

func (m *Mirror) sessionCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID := strings.TrimSpace(sess.Metadata["userId"])
	if userID == "" {
		return fmt.Errorf("checkout session %s: %w", sess.ID, ErrMissingUserID)
	}
	customer := customerID(sess.Customer)
	if customer == "" {
		return fmt.Errorf("checkout session %s: %w", sess.ID, ErrMissingCustomer)
	}
	if err := m.Users.AttachBillingCustomer(ctx, userID, customer); err != nil {
		return err
	}
	telemetry.Info("billing.customer.attached", map[string]any{
		"user_id":     userID,
		"customer_id": customer,
	})
	return nil
}

func (m *Mirror) subscriptionChanged(ctx context.Context, sub *stripe.Subscription) error {
	if m.Provider != nil && sub.ID != "" {
		fresh, err := m.Provider.GetSubscription(ctx, sub.ID)
		if err != nil {
			return err
		}
		sub = fresh
	}

	if !isLive(sub.Status) {
		return m.removeCustomer(ctx, customerID(sub.Customer))
	}

	rec, err := recordFrom(sub)
	if err != nil {
		return fmt.Errorf("subscription %s: %w", sub.ID, err)
	}
	if err := m.Subs.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.ID, err)
	}
	telemetry.Info("billing.subscription.upserted", map[string]any{
		"user_id":         rec.UserID,
		"subscription_id": rec.SubscriptionID,
		"price_id":        rec.PriceID,
		"status":          string(sub.Status),
	})
	return nil
}

func (m *Mirror) removeCustomer(ctx context.Context, customer string) error {
	if customer == "" {
		return ErrMissingCustomer
	}
	n, err := m.Subs.DeleteByCustomer(ctx, customer)
	if err != nil {
		return fmt.Errorf("delete subscriptions for %s: %w", customer, err)
	}
	telemetry.Info("billing.subscription.deleted", map[string]any{
		"customer_id": customer,
		"removed":     n,
	})
	return nil
}

func isLive(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return true
	}
	return false
}

func recordFrom(sub *stripe.Subscription) (subscriptions.Record, error) {
	userID := strings.TrimSpace(sub.Metadata["userId"])
	if userID == "" {
		return subscriptions.Record{}, ErrMissingUserID
	}
	customer := customerID(sub.Customer)
	if customer == "" {
		return subscriptions.Record{}, ErrMissingCustomer
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return subscriptions.Record{}, ErrMissingPrice
	}
	return subscriptions.Record{
		UserID:            userID,
		SubscriptionID:    sub.ID,
		CustomerID:        customer,
		PriceID:           sub.Items.Data[0].Price.ID,
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}, nil
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func decodeObject(event stripe.Event, dst any) error {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return fmt.Errorf("event %s: %w", event.ID, ErrUnsupportedObject)
	}
	if err := json.Unmarshal(event.Data.Raw, dst); err != nil {
		return fmt.Errorf("event %s: %w: %v", event.ID, ErrUnsupportedObject, err)
	}
	return nil
}
