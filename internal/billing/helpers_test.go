package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v76"
)

const testSecret = "whsec_test"

func signedHeader(payload []byte, secret string, ts time.Time) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(t))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", t, hex.EncodeToString(mac.Sum(nil)))
}

func eventJSON(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"object":"event","api_version":"2023-10-16","type":%q,"data":{"object":%s}}`, id, eventType, object))
}

func subscriptionJSON(status, priceID string, cancel bool) string {
	return fmt.Sprintf(`{
		"id": "sub_1",
		"object": "subscription",
		"customer": "cus_1",
		"status": %q,
		"metadata": {"userId": "user-1"},
		"items": {"object": "list", "data": [{"id": "si_1", "object": "subscription_item", "price": {"id": %q, "object": "price"}}]},
		"current_period_end": 1893456000,
		"cancel_at_period_end": %t
	}`, status, priceID, cancel)
}

const checkoutSessionJSON = `{"id":"cs_1","object":"checkout.session","customer":"cus_1","metadata":{"userId":"user-1"}}`

type fakeProvider struct {
	mu        sync.Mutex
	sub       *stripe.Subscription
	err       error
	gets      int
	checkouts []CheckoutRequest
	portals   []string
}

func (p *fakeProvider) GetSubscription(_ context.Context, id string) (*stripe.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.err != nil {
		return nil, p.err
	}
	return p.sub, nil
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checkouts = append(p.checkouts, req)
	return "https://checkout.test/" + req.PriceID, nil
}

func (p *fakeProvider) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.portals = append(p.portals, customerID)
	return "https://portal.test/" + customerID, nil
}
