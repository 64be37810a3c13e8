package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookDurationSeconds *prometheus.HistogramVec
	WebhookRequestsTotal   *prometheus.CounterVec

	// Message handling metrics
	MessagesTotal          *prometheus.CounterVec
	MessageDurationSeconds *prometheus.HistogramVec

	// Resolver metrics
	ResolverLookupsTotal    *prometheus.CounterVec
	ResolverDurationSeconds prometheus.Histogram

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Outbound send metrics
	SendRequestsTotal *prometheus.CounterVec
	SendRetriesTotal  prometheus.Counter

	// NLU metrics
	NLURequestsTotal   *prometheus.CounterVec
	NLUDurationSeconds prometheus.Histogram

	// Catalog metrics
	CatalogLoadsTotal *prometheus.CounterVec
	CatalogRecords    prometheus.Gauge

	// Rate limiter metrics
	RateLimiterWaitDuration *prometheus.HistogramVec
	RateLimiterDropped      *prometheus.CounterVec

	// Session metrics
	SessionsActive prometheus.Gauge

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Webhook metrics
		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursebot_webhook_duration_seconds",
				Help:    "Webhook processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // Faster buckets for webhook
			},
			[]string{"event_type"}, // event_type: message, status, unsupported
		),

		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_webhook_requests_total",
				Help: "Total number of webhook requests by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error, invalid_signature
		),

		// Message handling metrics
		MessagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_messages_total",
				Help: "Total number of handled messages by handler and status",
			},
			[]string{"handler", "status"}, // handler: greeting, lookup, directory, ...; status: success, fallback, error
		),

		MessageDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursebot_message_duration_seconds",
				Help:    "Message handling duration in seconds by handler",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"handler"},
		),

		// Resolver metrics
		ResolverLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_resolver_lookups_total",
				Help: "Total number of resolver lookups by match tier and status",
			},
			[]string{"tier", "status"}, // tier: exact, prefix, synonym, substring, overlap, initials, fuzzy, none
		),

		ResolverDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursebot_resolver_duration_seconds",
				Help:    "Resolver lookup duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),

		// Cache metrics
		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_cache_hits_total",
				Help: "Total number of cache hits by cache name",
			},
			[]string{"cache"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_cache_misses_total",
				Help: "Total number of cache misses by cache name",
			},
			[]string{"cache"},
		),

		// Outbound send metrics
		SendRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_send_requests_total",
				Help: "Total number of outbound message sends by status",
			},
			[]string{"status"}, // status: success, error, rate_limited
		),

		SendRetriesTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "coursebot_send_retries_total",
				Help: "Total number of outbound send retry attempts",
			},
		),

		// NLU metrics
		NLURequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_nlu_requests_total",
				Help: "Total number of NLU classification requests by status",
			},
			[]string{"status"}, // status: success, low_confidence, error, timeout
		),

		NLUDurationSeconds: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coursebot_nlu_duration_seconds",
				Help:    "NLU classification duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
		),

		// Catalog metrics
		CatalogLoadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_catalog_loads_total",
				Help: "Total number of catalog loads by source and status",
			},
			[]string{"source", "status"}, // source: object_store, file, embedded
		),

		CatalogRecords: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "coursebot_catalog_records",
				Help: "Number of course records in the active catalog",
			},
		),

		// Rate limiter metrics
		RateLimiterWaitDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursebot_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for rate limiter token by limiter type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // 1ms to 5s
			},
			[]string{"limiter_type"}, // limiter_type: user, global, send
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user, global, send
		),

		// Session metrics
		SessionsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "coursebot_sessions_active",
				Help: "Number of live conversation sessions",
			},
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursebot_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that waited instead of executing)",
			},
			[]string{"cache"},
		),
	}

	return m
}

// RecordWebhook records a webhook request
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordMessage records a handled message
func (m *Metrics) RecordMessage(handler, status string, duration float64) {
	m.MessagesTotal.WithLabelValues(handler, status).Inc()
	m.MessageDurationSeconds.WithLabelValues(handler).Observe(duration)
}

// RecordResolverLookup records a resolver lookup outcome
func (m *Metrics) RecordResolverLookup(tier, status string, duration float64) {
	m.ResolverLookupsTotal.WithLabelValues(tier, status).Inc()
	m.ResolverDurationSeconds.Observe(duration)
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordSend records an outbound message send
func (m *Metrics) RecordSend(status string) {
	m.SendRequestsTotal.WithLabelValues(status).Inc()
}

// RecordSendRetry records a send retry attempt
func (m *Metrics) RecordSendRetry() {
	m.SendRetriesTotal.Inc()
}

// RecordNLURequest records an NLU classification request
func (m *Metrics) RecordNLURequest(status string, duration float64) {
	m.NLURequestsTotal.WithLabelValues(status).Inc()
	m.NLUDurationSeconds.Observe(duration)
}

// RecordCatalogLoad records a catalog load attempt
func (m *Metrics) RecordCatalogLoad(source, status string) {
	m.CatalogLoadsTotal.WithLabelValues(source, status).Inc()
}

// SetCatalogRecords sets the active catalog record count
func (m *Metrics) SetCatalogRecords(n int) {
	m.CatalogRecords.Set(float64(n))
}

// RecordRateLimiterWait records time spent waiting for rate limiter
func (m *Metrics) RecordRateLimiterWait(limiterType string, duration float64) {
	m.RateLimiterWaitDuration.WithLabelValues(limiterType).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetSessionsActive sets the live session count
func (m *Metrics) SetSessionsActive(n int) {
	m.SessionsActive.Set(float64(n))
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(cache string) {
	m.SingleflightDedupTotal.WithLabelValues(cache).Inc()
}
