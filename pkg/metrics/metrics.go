package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AuditsTotal         *prometheus.CounterVec
	AuditScore          prometheus.Histogram
	PagesFetchedTotal   *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	CrawlsTotal         *prometheus.CounterVec
	CrawlDuration       prometheus.Histogram
	CrawlPagesTotal     *prometheus.CounterVec
	SuggestionsTotal    *prometheus.CounterVec
	StorageErrorsTotal  *prometheus.CounterVec
}

// New registers the collectors on reg. Use prometheus.DefaultRegisterer in main
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		AuditsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audits_total",
			Help: "Single-page audits by outcome.",
		}, []string{"status"}),
		AuditScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "audit_score",
			Help:    "Combined SEO score of audited pages.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		PagesFetchedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pages_fetched_total",
			Help: "Page fetch attempts by outcome.",
		}, []string{"status"}),
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
		}, []string{"mode"}),
		CrawlsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crawls_total",
			Help: "Site crawls by outcome.",
		}, []string{"status"}),
		CrawlDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "crawl_duration_seconds",
			Help:    "Duration of site crawls.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120, 300, 600},
		}),
		CrawlPagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crawl_pages_total",
			Help: "Pages processed during site crawls by outcome.",
		}, []string{"status"}),
		SuggestionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "suggestions_total",
			Help: "Suggestion results by source (llm, fallback, cache).",
		}, []string{"source"}),
		StorageErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storage_errors_total",
			Help: "Errors from optional storage backends.",
		}, []string{"store"}),
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) ObserveAudit(status string, score int) {
	if m == nil {
		return
	}
	m.AuditsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.AuditScore.Observe(float64(score))
	}
}

func (m *Metrics) ObserveFetch(mode string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	m.PagesFetchedTotal.WithLabelValues(status).Inc()
	m.FetchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (m *Metrics) ObserveCrawl(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.CrawlsTotal.WithLabelValues(status).Inc()
	m.CrawlDuration.Observe(d.Seconds())
}

func (m *Metrics) IncCrawlPage(status string) {
	if m == nil {
		return
	}
	m.CrawlPagesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSuggestions(source string) {
	if m == nil {
		return
	}
	m.SuggestionsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) IncStorageError(store string) {
	if m == nil {
		return
	}
	m.StorageErrorsTotal.WithLabelValues(store).Inc()
}
