package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total messages sent",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	ReceiptsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_read_receipts_written_total",
			Help: "Total read-receipt updates written",
		},
	)

	ReceiptFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_read_receipt_failures_total",
			Help: "Total read-receipt updates that failed (logged, not retried)",
		},
	)

	MessagesCleared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_cleared_total",
			Help: "Total messages removed by clear operations",
		},
		[]string{"scope"}, // "mine" or "all"
	)

	// Subscription metrics
	FeedSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_feed_subscriptions",
			Help: "Currently open feed subscriptions",
		},
	)

	DirectorySubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_directory_subscriptions",
			Help: "Currently open directory subscriptions",
		},
	)

	FeedViewsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_feed_views_emitted_total",
			Help: "Total feed views emitted to subscribers",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	RedisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_redis_latency_seconds",
			Help:    "Redis operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)

	PostgresLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_postgres_latency_seconds",
			Help:    "PostgreSQL query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
