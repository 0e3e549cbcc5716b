package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/delivery/http/request"
	"github.com/user/seo-audit-service/internal/delivery/http/response"
	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/usecase"
	"github.com/user/seo-audit-service/pkg/errs"
)

const (
	usageMessage  = "API working. Use POST {'url': '...'} or {'url': '...', 'crawl_site': true}"
	healthTimeout = 2 * time.Second
	maxBodyBytes  = 1 << 20
)

// Auditor runs single-page audits and serves their history.
type Auditor interface {
	Audit(ctx context.Context, req usecase.AuditRequest) (*entity.AuditResult, error)
	History(ctx context.Context, pageURL string, limit int) ([]*entity.AuditHistory, error)
	Latest(ctx context.Context, pageURL string) (*entity.PageAnalysis, error)
}

// SiteCrawler runs site crawls and serves archived reports.
type SiteCrawler interface {
	Crawl(ctx context.Context, req usecase.CrawlRequest) entity.CrawlResult
	Latest(ctx context.Context, baseURL string) (*entity.CrawlResult, error)
}

// Backlinks serves synthetic backlink estimates.
type Backlinks interface {
	Profile(domain string) (entity.DomainBacklinks, error)
	LinkGap(source, target string) (entity.LinkGap, error)
}

// HealthCheck pings one backend.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	auditor   Auditor
	crawler   SiteCrawler
	backlinks Backlinks
	health    map[string]HealthCheck
	logger    *zap.Logger
}

func NewHandler(auditor Auditor, crawler SiteCrawler, backlinks Backlinks, health map[string]HealthCheck, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		auditor:   auditor,
		crawler:   crawler,
		backlinks: backlinks,
		health:    health,
		logger:    logger,
	}
}

func (h *Handler) HandleAnalyzeUsage(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.MessageResponse{Message: usageMessage})
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req request.AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, response.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.writeJSONError(w, http.StatusBadRequest, response.ErrorResponse{Error: "URL missing"})
		return
	}
	force := req.ForceLLM || strings.EqualFold(r.URL.Query().Get("force_llm"), "true")

	if req.CrawlSite {
		h.handleCrawl(w, r, usecase.CrawlRequest{BaseURL: req.URL, MaxPages: req.MaxPages, ForceLLM: force})
		return
	}

	result, err := h.auditor.Audit(r.Context(), usecase.AuditRequest{URL: req.URL, ForceLLM: force})
	if err != nil {
		h.writeAppError(w, req.URL, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCrawl(w http.ResponseWriter, r *http.Request, req usecase.CrawlRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Sitemap crawl failed", zap.String("url", req.BaseURL), zap.Any("panic", rec))
			h.writeJSONError(w, http.StatusBadGateway, response.ErrorResponse{
				Error:   "Sitemap crawl failed",
				Details: fmt.Sprint(rec),
			})
		}
	}()

	result := h.crawler.Crawl(r.Context(), req)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.auditor.History(r.Context(), pageURL, limit)
	if err != nil {
		h.writeAppError(w, pageURL, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.HistoryResponse{URL: pageURL, History: rows})
}

func (h *Handler) HandleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	analysis, err := h.auditor.Latest(r.Context(), pageURL)
	if err != nil {
		h.writeAppError(w, pageURL, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysis)
}

func (h *Handler) HandleLatestCrawl(w http.ResponseWriter, r *http.Request) {
	baseURL := r.URL.Query().Get("base_url")
	result, err := h.crawler.Latest(r.Context(), baseURL)
	if err != nil {
		h.writeAppError(w, baseURL, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleBacklinks(w http.ResponseWriter, r *http.Request) {
	profile, err := h.backlinks.Profile(chi.URLParam(r, "domain"))
	if err != nil {
		h.writeAppError(w, "", err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleLinkGap(w http.ResponseWriter, r *http.Request) {
	var req request.LinkGapRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, response.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	gap, err := h.backlinks.LinkGap(req.Source, req.Target)
	if err != nil {
		h.writeAppError(w, "", err)
		return
	}
	h.writeJSON(w, http.StatusOK, gap)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := response.HealthResponse{Status: "ok"}
	if len(h.health) > 0 {
		resp.Components = make(map[string]string, len(h.health))
	}

	names := make([]string, 0, len(h.health))
	for name := range h.health {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		err := h.health[name](ctx)
		cancel()
		if err != nil {
			h.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
			resp.Components[name] = "down"
			resp.Status = "degraded"
			continue
		}
		resp.Components[name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// decodeBody accepts an empty body as the zero value.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeAppError answers 500 without details for errors of no known kind.
func (h *Handler) writeAppError(w http.ResponseWriter, url string, err error) {
	var appErr *errs.AppError
	if errs.KindOf(err) == errs.Unknown || !errors.As(err, &appErr) {
		h.logger.Error("Request failed", zap.String("url", url), zap.Error(err))
		h.writeJSONError(w, http.StatusInternalServerError, response.ErrorResponse{Error: "Internal server error"})
		return
	}

	body := response.ErrorResponse{Error: appErr.Message}
	switch appErr.Kind {
	case errs.Unreachable, errs.Timeout:
		body.Details = appErr.Details()
		body.URL = appErr.URL
		if body.URL == "" {
			body.URL = url
		}
		h.logger.Warn("Failed to fetch page", zap.String("url", body.URL), zap.Int("upstream_status", appErr.UpstreamStatus), zap.Error(appErr.Cause))
	case errs.InvalidInput, errs.NotFound, errs.Unavailable:
	default:
		h.logger.Error("Request failed", zap.String("url", url), zap.Error(err))
		body.Details = appErr.Details()
	}
	h.writeJSONError(w, appErr.HTTPStatus(), body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, status int, body response.ErrorResponse) {
	h.writeJSON(w, status, body)
}
