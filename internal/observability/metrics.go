package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec

	activityWritesTotal  *prometheus.CounterVec
	activityWriteSeconds prometheus.Histogram
	mediaUploadsTotal    *prometheus.CounterVec
	mediaRejectionsTotal *prometheus.CounterVec
	contentCacheTotal    *prometheus.CounterVec
	lazyMediaFetchTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		activityWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_log_writes_total",
			Help: "Audit log write attempts partitioned by result.",
		}, []string{"result"})

		activityWriteSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "activity_log_write_seconds",
			Help:    "Duration of detached audit log writes.",
			Buckets: prometheus.DefBuckets,
		})

		mediaUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Accepted media uploads partitioned by kind.",
		}, []string{"kind"})

		mediaRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_upload_rejections_total",
			Help: "Rejected media uploads partitioned by reason.",
		}, []string{"reason"})

		contentCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_cache_requests_total",
			Help: "Public content cache lookups partitioned by table and result.",
		}, []string{"table", "result"})

		lazyMediaFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lazymedia_fetches_total",
			Help: "Resource fetches initiated by lazy media instances.",
		}, []string{"kind"})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			activityWritesTotal,
			activityWriteSeconds,
			mediaUploadsTotal,
			mediaRejectionsTotal,
			contentCacheTotal,
			lazyMediaFetchTotal,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ActivityWrites counts audit writes by result (success, failure, skipped).
func ActivityWrites() *prometheus.CounterVec {
	RegisterMetrics()
	return activityWritesTotal
}

// ActivityWriteLatency observes detached audit write durations.
func ActivityWriteLatency() prometheus.Histogram {
	RegisterMetrics()
	return activityWriteSeconds
}

// MediaUploads counts accepted uploads.
func MediaUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return mediaUploadsTotal
}

// MediaRejections counts rejected uploads.
func MediaRejections() *prometheus.CounterVec {
	RegisterMetrics()
	return mediaRejectionsTotal
}

// ContentCache counts public content cache hits and misses.
func ContentCache() *prometheus.CounterVec {
	RegisterMetrics()
	return contentCacheTotal
}

// LazyMediaFetches counts fetches started by lazy media instances.
func LazyMediaFetches() *prometheus.CounterVec {
	RegisterMetrics()
	return lazyMediaFetchTotal
}
