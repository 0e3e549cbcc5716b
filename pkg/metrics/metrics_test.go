package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAudit("success", 72)
	m.ObserveAudit("failure", 0)
	m.IncSuggestions("fallback")
	m.IncSuggestions("fallback")
	m.IncCrawlPage("error")
	m.ObserveFetch("http", false, 20*time.Millisecond)

	if got := testutil.ToFloat64(m.AuditsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("audits_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SuggestionsTotal.WithLabelValues("fallback")); got != 2 {
		t.Errorf("suggestions_total{fallback} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CrawlPagesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("crawl_pages_total{error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PagesFetchedTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("pages_fetched_total{failure} = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAudit("success", 50)
	m.ObserveHTTP("GET", "/api/health", "200", time.Millisecond)
	m.ObserveCrawl("success", time.Second)
	m.IncStorageError("postgres")
}
