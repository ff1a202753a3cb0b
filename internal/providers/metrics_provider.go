package providers

import (
	"surveycore/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncSessionHits()
	IncSessionMisses()
	IncAdmissions(outcome string)
	ObserveAutosaveBatch(size int)
	IncSubmissions()
	IncGateRejections(scope string)
	IncDroppedIntents()
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	sessionLookups      *prometheus.CounterVec
	admissions          *prometheus.CounterVec
	autosaveBatch       prometheus.Histogram
	submissions         prometheus.Counter
	gateRejections      *prometheus.CounterVec
	droppedIntents      prometheus.Counter
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncSessionHits() {
	m.sessionLookups.WithLabelValues("hit").Inc()
}

func (m *MetricsProvider) IncSessionMisses() {
	m.sessionLookups.WithLabelValues("miss").Inc()
}

// IncAdmissions counts admission attempts by outcome: "ok", "resumed" or an error code.
func (m *MetricsProvider) IncAdmissions(outcome string) {
	m.admissions.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveAutosaveBatch(size int) {
	m.autosaveBatch.Observe(float64(size))
}

func (m *MetricsProvider) IncSubmissions() {
	m.submissions.Inc()
}

func (m *MetricsProvider) IncGateRejections(scope string) {
	m.gateRejections.WithLabelValues(scope).Inc()
}

func (m *MetricsProvider) IncDroppedIntents() {
	m.droppedIntents.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survey_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "survey_report_cache_hits_total",
			Help: "Total number of report cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "survey_report_cache_misses_total",
			Help: "Total number of report cache misses",
		}),

		sessionLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_session_lookups_total",
			Help: "Session store lookups by result",
		}, []string{"result"}),

		admissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_admissions_total",
			Help: "Admission attempts by outcome",
		}, []string{"outcome"}),

		autosaveBatch: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "survey_autosave_batch_size",
			Help:    "Number of answers per autosave batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),

		submissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "survey_submissions_total",
			Help: "Total number of completed responses",
		}),

		gateRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_gate_rejections_total",
			Help: "Aggregates withheld below the minimum group size",
		}, []string{"scope"}),

		droppedIntents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "survey_dropped_intents_total",
			Help: "Notification intents dropped because the dispatch queue was full",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "survey_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncSessionHits()                                  {}
func (n *noopMetrics) IncSessionMisses()                                {}
func (n *noopMetrics) IncAdmissions(_ string)                           {}
func (n *noopMetrics) ObserveAutosaveBatch(_ int)                       {}
func (n *noopMetrics) IncSubmissions()                                  {}
func (n *noopMetrics) IncGateRejections(_ string)                       {}
func (n *noopMetrics) IncDroppedIntents()                               {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}

// NewNoopMetrics returns a MetricsProviderInterface that discards everything.
func NewNoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}
