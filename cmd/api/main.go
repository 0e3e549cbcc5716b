package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/adapter/chromedp_fetcher"
	"github.com/user/seo-audit-service/internal/adapter/httpfetch"
	"github.com/user/seo-audit-service/internal/adapter/llm"
	"github.com/user/seo-audit-service/internal/adapter/memory"
	mongo_adapter "github.com/user/seo-audit-service/internal/adapter/mongo"
	"github.com/user/seo-audit-service/internal/adapter/postgres"
	redis_adapter "github.com/user/seo-audit-service/internal/adapter/redis"
	"github.com/user/seo-audit-service/internal/backlink"
	"github.com/user/seo-audit-service/internal/delivery/http/handler"
	"github.com/user/seo-audit-service/internal/delivery/http/router"
	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/internal/suggest"
	"github.com/user/seo-audit-service/internal/usecase"
	"github.com/user/seo-audit-service/pkg/config"
	"github.com/user/seo-audit-service/pkg/logger"
	"github.com/user/seo-audit-service/pkg/metrics"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer log.Sync()

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	// --- Storage (all optional) ---
	var (
		analyses repository.PageAnalysisRepository
		history  repository.AuditHistoryRepository
		reports  repository.CrawlReportRepository
		cache    repository.SuggestionCache
		health   = map[string]handler.HealthCheck{}
	)

	if cfg.PostgresURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		pool, err := postgres.Connect(ctx, cfg.PostgresURL)
		cancel()
		if err != nil {
			log.Fatal("Unable to connect to database", zap.Error(err))
		}
		defer pool.Close()
		analyses = postgres.NewPageAnalysisRepo(pool)
		history = postgres.NewAuditHistoryRepo(pool)
		health["postgres"] = pool.Ping
		log.Info("PostgreSQL connection pool established")
	} else {
		log.Info("POSTGRES_URL not set, analysis persistence disabled")
	}

	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		rdb, err := redis_adapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Fatal("Unable to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		cache = redis_adapter.NewSuggestionCache(rdb)
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("Redis connection established")
	} else {
		memCache := memory.NewSuggestionCache()
		defer memCache.Close()
		cache = memCache
		log.Info("REDIS_ADDR not set, using in-memory suggestion cache")
	}

	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		client, db, err := mongo_adapter.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			cancel()
			log.Fatal("Unable to connect to MongoDB", zap.Error(err))
		}
		repo, err := mongo_adapter.NewCrawlReportRepo(ctx, db)
		cancel()
		if err != nil {
			log.Fatal("Unable to prepare crawl report collection", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			_ = client.Disconnect(ctx)
		}()
		reports = repo
		health["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.Info("MongoDB connection established", zap.String("database", cfg.MongoDatabase))
	} else {
		log.Info("MONGO_URI not set, crawl archive disabled")
	}

	// --- Fetchers ---
	// robots.txt and sitemaps always go over plain HTTP; chromedp only renders pages.
	httpClient := newHTTPFetcher(cfg, log, m)
	fetcher, closeFetcher := newPageFetcher(cfg, httpClient, log, m)
	defer closeFetcher()

	// --- Suggestions ---
	suggestions := usecase.NewSuggestionService(newLLMGenerator(cfg, log), cache, cfg.SuggestionTTL(), log, m)

	// --- Use Cases ---
	audits := usecase.NewAuditService(fetcher, analyses, history, suggestions, cfg.PageFetchTimeout(), log, m)
	crawls := usecase.NewCrawlService(fetcher, analyses, reports, suggestions, usecase.CrawlOptions{
		SitemapFetcher:   httpClient,
		MaxURLs:          cfg.CrawlMaxURLs,
		MaxPages:         cfg.CrawlMaxPages,
		FallbackMaxPages: cfg.CrawlFallbackMaxPages,
		Workers:          cfg.CrawlWorkers,
		PageTimeout:      cfg.PageFetchTimeout(),
		SitemapTimeout:   cfg.SitemapFetchTimeout(),
		CrawlTimeout:     cfg.CrawlTimeout(),
		ForceLLMPerPage:  cfg.ForceLLMPerPage,
	}, log, m)
	backlinks := usecase.NewBacklinkService(backlink.NewSyntheticEstimator())

	// --- HTTP Server ---
	// Crawls run inside the request, so the request budget must cover one.
	requestTimeout := cfg.CrawlTimeout() + 30*time.Second
	apiHandler := handler.NewHandler(audits, crawls, backlinks, health, log)
	httpRouter := router.New(apiHandler, router.Options{
		Logger:         log,
		Metrics:        m,
		RequestTimeout: requestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	log.Info("Server started", zap.String("port", cfg.ServerPort), zap.String("fetch_mode", cfg.FetchMode))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}

func newPageFetcher(cfg *config.Config, httpClient *httpfetch.Client, log *zap.Logger, m *metrics.Metrics) (repository.Fetcher, func()) {
	if strings.EqualFold(cfg.FetchMode, "chromedp") {
		log.Info("Using headless Chrome fetcher for pages")
		return chromedp_fetcher.NewChromedpFetcher(cfg.FetchUserAgent, log, m)
	}
	return httpClient, func() {}
}

func newHTTPFetcher(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *httpfetch.Client {
	proxies, err := httpfetch.NewProxyRotator(cfg.Proxies())
	if err != nil {
		log.Fatal("Invalid FETCH_PROXIES", zap.Error(err))
	}
	if proxies.Len() > 0 {
		log.Info("Proxy rotation enabled", zap.Int("proxies", proxies.Len()))
	}
	return httpfetch.NewClient(httpfetch.Options{
		UserAgent:            cfg.FetchUserAgent,
		Proxies:              proxies,
		AllowPrivateNetworks: cfg.FetchAllowPrivateNetworks,
		Logger:               log,
		Metrics:              m,
	})
}

// newLLMGenerator returns nil when no provider is usable; the suggestion
// service then serves rule-based suggestions only.
func newLLMGenerator(cfg *config.Config, log *zap.Logger) suggest.Generator {
	var completer suggest.Completer
	switch strings.ToLower(cfg.LLMProvider) {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.LLMCallTimeout())
			if err != nil {
				log.Fatal("Unable to create Gemini client", zap.Error(err))
			}
			completer = client
		}
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			completer = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMCallTimeout())
		}
	}
	if completer == nil {
		log.Info("LLM suggestions disabled, using rule-based fallback", zap.String("provider", cfg.LLMProvider))
		return nil
	}
	log.Info("LLM suggestions enabled", zap.String("provider", cfg.LLMProvider), zap.String("model", cfg.LLMModelName()))
	return suggest.NewLLMGenerator(completer, cfg.LLMModelName(), cfg.LLMMaxTokens, log)
}
