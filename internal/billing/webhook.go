package billing

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

const (
	maxWebhookBody  = 64 << 10
	signatureHeader = "Stripe-Signature"
)

// WebhookHandler verifies provider deliveries and feeds them to the mirror.
// Responses are plain text: 400 before any processing for a bad signature,
// 500 so the provider retries on processing failure, 200 otherwise.
type WebhookHandler struct {
	Mirror    *Mirror
	Secret    string
	Tolerance time.Duration
}

func NewWebhookHandler(mirror *Mirror, secret string) *WebhookHandler {
	return &WebhookHandler{Mirror: mirror, Secret: secret, Tolerance: webhook.DefaultTolerance}
}

func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/billing/webhook", h.Handle)
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		c.String(http.StatusBadRequest, "Invalid payload")
		return
	}

	signature := c.GetHeader(signatureHeader)
	if strings.TrimSpace(signature) == "" {
		telemetry.Warn("billing.webhook.signature_missing", nil)
		c.String(http.StatusBadRequest, "Signature is missing")
		return
	}
	if h.Secret == "" {
		telemetry.Error("billing.webhook.not_configured", nil)
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, h.Secret, webhook.ConstructEventOptions{
		Tolerance:                h.Tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		telemetry.Warn("billing.webhook.signature_invalid", map[string]any{"error": err.Error()})
		c.String(http.StatusBadRequest, "Invalid signature")
		return
	}

	c.Set("eventType", string(event.Type))
	metrics.IncWebhookEvent()
	if err := h.Mirror.Handle(c.Request.Context(), event); err != nil {
		metrics.IncWebhookFailure()
		telemetry.Error("billing.webhook.failed", map[string]any{
			"event_id":   event.ID,
			"event_type": string(event.Type),
			"error":      err.Error(),
		})
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}
	c.String(http.StatusOK, "Event received")
}
