// Package config provides centralized timeout constants for the application.
//
// These values are tuned based on:
//   - WhatsApp Cloud API constraints (webhook acknowledgment, retry policy)
//   - Graph API response times for outbound sends
//   - NLU endpoint latency when the fallback classifier is enabled
//
// # WhatsApp Cloud API Constraints
//
// Meta's webhook delivery has specific timing requirements:
//   - Webhook response: Meta expects a fast 200 OK or it re-delivers the event
//   - Re-delivery: duplicate deliveries must be tolerated by the processor
//   - Outbound sends: independent of the webhook request, so processing is async
package config

import "time"

// Webhook timeouts
const (
	// WebhookProcessing is the timeout for processing a single inbound message.
	// This includes classification, catalog resolution, optional NLU calls,
	// and the outbound send with retries.
	//
	// Set to 30s because:
	//   - NLU calls may take 1-5s plus retries
	//   - Outbound send retries need ~5-10s in the worst case
	//   - The 200 OK has already been returned, so only our own budget applies
	WebhookProcessing = 30 * time.Second

	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	// Should be short since Meta sends small JSON payloads.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	// The webhook handler replies immediately, so this stays small.
	WebhookHTTPWrite = 15 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)

// Outbound send timeouts
const (
	// SendRequest is the timeout for a single Graph API send request.
	SendRequest = 10 * time.Second

	// SendRetryInitial is the initial delay before retrying a failed send.
	// Uses exponential backoff with jitter: ~0.5s -> 1s -> 2s
	SendRetryInitial = 500 * time.Millisecond
)

// NLU timeouts
const (
	// NLURequest is the timeout for a single NLU classification request.
	// Uses a detached context so an aborted webhook connection cannot
	// cancel classification mid-flight.
	NLURequest = 15 * time.Second
)

// Catalog timeouts
const (
	// CatalogDownload is the timeout for fetching the catalog snapshot
	// from the object store at startup and on refresh.
	CatalogDownload = 30 * time.Second

	// CatalogRefreshInterval is how often the catalog snapshot is re-fetched.
	CatalogRefreshInterval = 6 * time.Hour

	// CatalogRefreshInitialDelay is the delay before the first refresh.
	// Allows the server to stabilize before background work starts.
	CatalogRefreshInitialDelay = 5 * time.Minute
)

// Background job intervals
const (
	// SessionSweepInterval is how often expired sessions are evicted.
	SessionSweepInterval = 5 * time.Minute

	// CacheSweepInterval is how often expired reply cache entries are evicted.
	CacheSweepInterval = 10 * time.Minute

	// MetricsUpdateInterval is how often gauge metrics are refreshed.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive user rate limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// WhatsApp API limits
const (
	// WhatsAppMaxTextLength is the maximum text body length accepted by the
	// Cloud API for an outbound text message.
	WhatsAppMaxTextLength = 4096
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
