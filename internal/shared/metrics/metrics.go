package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	webhookEventsTotal   atomic.Uint64
	webhookFailuresTotal atomic.Uint64

	aiRequestsTotal atomic.Uint64
	aiFailuresTotal atomic.Uint64

	autosaveWritesTotal   atomic.Uint64
	autosaveFailuresTotal atomic.Uint64
	sessionsExpiredTotal  atomic.Uint64

	rateLimitedTotal atomic.Uint64

	aiDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncWebhookEvent counts a verified billing webhook event.
func IncWebhookEvent() {
	webhookEventsTotal.Add(1)
}

// IncWebhookFailure counts a webhook that was rejected or failed to apply.
func IncWebhookFailure() {
	webhookFailuresTotal.Add(1)
}

// IncAIRequest increments the AI assist request counter.
func IncAIRequest() {
	aiRequestsTotal.Add(1)
}

// IncAIFailure increments the AI assist failure counter.
func IncAIFailure() {
	aiFailuresTotal.Add(1)
}

// ObserveAIDurationMs records a completion latency in milliseconds.
func ObserveAIDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	aiDuration.Observe(value)
}

// IncAutosaveWrite counts a persisted editor snapshot.
func IncAutosaveWrite() {
	autosaveWritesTotal.Add(1)
}

// IncAutosaveFailure counts a failed editor save.
func IncAutosaveFailure() {
	autosaveFailuresTotal.Add(1)
}

// IncSessionExpired counts an editor session closed for inactivity.
func IncSessionExpired() {
	sessionsExpiredTotal.Add(1)
}

// IncRateLimited counts a request rejected by the rate limiter.
func IncRateLimited() {
	rateLimitedTotal.Add(1)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "webhook_events_total", "Total verified billing webhook events", webhookEventsTotal.Load())
	writeCounter(&buf, "webhook_failures_total", "Total rejected or failed billing webhook events", webhookFailuresTotal.Load())
	writeCounter(&buf, "ai_requests_total", "Total AI assist requests", aiRequestsTotal.Load())
	writeCounter(&buf, "ai_failures_total", "Total failed AI assist requests", aiFailuresTotal.Load())
	writeHistogram(&buf, "ai_duration_ms", "AI completion duration in milliseconds", aiDuration.Snapshot())
	writeCounter(&buf, "autosave_writes_total", "Total editor snapshots persisted", autosaveWritesTotal.Load())
	writeCounter(&buf, "autosave_failures_total", "Total editor saves that failed", autosaveFailuresTotal.Load())
	writeCounter(&buf, "editor_sessions_expired_total", "Total editor sessions closed for inactivity", sessionsExpiredTotal.Load())
	writeCounter(&buf, "rate_limited_total", "Total requests rejected by the rate limiter", rateLimitedTotal.Load())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
