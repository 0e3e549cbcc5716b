package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/delivery/http/handler"
	"github.com/user/seo-audit-service/internal/delivery/http/middleware"
	"github.com/user/seo-audit-service/pkg/metrics"
)

// Options configures the router. Gatherer defaults to the prometheus default registry.
type Options struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

func New(h *handler.Handler, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chimw.Timeout(opts.RequestTimeout))
		}
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/analyze", h.HandleAnalyzeUsage)
		r.Post("/analyze", h.HandleAnalyze)
		r.Get("/history", h.HandleHistory)
		r.Get("/analyses/latest", h.HandleLatestAnalysis)
		r.Get("/crawls/latest", h.HandleLatestCrawl)
		r.Get("/backlinks/{domain}", h.HandleBacklinks)
		r.Post("/backlinks/gap", h.HandleLinkGap)
	})

	return r
}
