package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/analyzer"
	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/pkg/errs"
	"github.com/user/seo-audit-service/pkg/metrics"
	"github.com/user/seo-audit-service/pkg/utils"
)

const defaultHistoryLimit = 50

var (
	// ErrURLMissing is returned when an audit or crawl request has no URL.
	ErrURLMissing = errs.New(errs.InvalidInput, "URL missing", nil)
	// ErrPersistenceDisabled is returned by read endpoints when no database is configured.
	ErrPersistenceDisabled = errs.New(errs.Unavailable, "persistence is not configured", nil)
)

// AuditRequest describes a single-page audit.
type AuditRequest struct {
	URL      string
	ForceLLM bool
}

// AuditService runs the single-page pipeline: fetch, parse, score, classify,
// persist and suggest.
type AuditService struct {
	fetcher      repository.Fetcher
	analyses     repository.PageAnalysisRepository
	history      repository.AuditHistoryRepository
	suggestions  *SuggestionService
	fetchTimeout time.Duration
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// NewAuditService creates the audit use case. The repositories and the
// suggestion service are optional.
func NewAuditService(
	fetcher repository.Fetcher,
	analyses repository.PageAnalysisRepository,
	history repository.AuditHistoryRepository,
	suggestions *SuggestionService,
	fetchTimeout time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		fetcher:      fetcher,
		analyses:     analyses,
		history:      history,
		suggestions:  suggestions,
		fetchTimeout: fetchTimeout,
		logger:       logger,
		metrics:      m,
	}
}

// Audit returns an *errs.AppError of kind Unreachable or Timeout when the page
// cannot be fetched. Storage and suggestion failures never fail the audit.
func (uc *AuditService) Audit(ctx context.Context, req AuditRequest) (*entity.AuditResult, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, ErrURLMissing
	}
	target := utils.EnsureScheme(rawURL)

	fetched := uc.fetcher.Fetch(ctx, target, uc.fetchTimeout)
	if !fetched.OK {
		uc.metrics.ObserveAudit("fetch_failed", 0)
		return nil, fetchError(target, fetched)
	}

	result := evaluate(fetched)
	uc.logger.Info("Audit completed",
		zap.String("url", result.URL),
		zap.Int("score", result.Score),
		zap.Int("issues", result.AuditReport.TotalIssues),
	)

	analysisID := uc.persist(ctx, result)
	result.AnalysisID = analysisID

	if uc.suggestions != nil {
		// Suggestions see the scored rule issues rather than the parser's first pass.
		page := result.ParsedPage
		page.Issues = result.Issues
		out := uc.suggestions.Suggest(ctx, result.URL, page, req.ForceLLM)
		generatedAt := out.GeneratedAt
		result.LLMSuggestions = &out.Suggestions
		result.LLMGeneratedAt = &generatedAt
		result.LLMModel = out.Model
		result.SuggestionSource = out.Source

		if analysisID != 0 {
			if err := uc.analyses.AttachSuggestions(ctx, analysisID, out.Suggestions, out.Model, generatedAt); err != nil {
				uc.storageError("postgres", "Failed to attach suggestions", result.URL, err)
			}
		}
	}

	uc.metrics.ObserveAudit("success", result.Score)
	return result, nil
}

// History lists the most recent audit scores of a page.
func (uc *AuditService) History(ctx context.Context, pageURL string, limit int) ([]*entity.AuditHistory, error) {
	if uc.history == nil {
		return nil, ErrPersistenceDisabled
	}
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, ErrURLMissing
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := uc.history.ListByURL(ctx, utils.EnsureScheme(pageURL), limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.New(errs.NotFound, "no audit history for url", repository.ErrNotFound)
	}
	return rows, nil
}

// Latest returns the most recent stored analysis of a page, suggestions included.
func (uc *AuditService) Latest(ctx context.Context, pageURL string) (*entity.PageAnalysis, error) {
	if uc.analyses == nil {
		return nil, ErrPersistenceDisabled
	}
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, ErrURLMissing
	}
	analysis, err := uc.analyses.LatestByURL(ctx, utils.EnsureScheme(pageURL))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.New(errs.NotFound, "no analysis stored for url", err)
	}
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// evaluate runs both rule families over a fetched page and assembles the result.
func evaluate(fetched entity.FetchResult) *entity.AuditResult {
	page := analyzer.Parse(fetched.HTML, fetched.FinalURL)
	basic := analyzer.RunBasicRules(page)
	advanced := analyzer.RunAdvancedRules(page, fetched.HTML, fetched.FinalURL)

	ruleIssues := make([]string, 0, len(basic.Issues)+len(advanced.Issues))
	ruleIssues = append(ruleIssues, basic.Issues...)
	ruleIssues = append(ruleIssues, advanced.Issues...)
	issues := analyzer.FormatIssues(ruleIssues)

	return &entity.AuditResult{
		URL:               fetched.FinalURL,
		StatusCode:        fetched.Status(),
		ParsedPage:        page,
		PageIssues:        page.Issues,
		Score:             analyzer.CombineScores(basic.Score, advanced.Score),
		BasicScore:        basic.Score,
		AdvancedScore:     advanced.Score,
		ScoreBreakdown:    basic.Breakdown,
		AdvancedBreakdown: advanced.Breakdown,
		AuditReport:       analyzer.Classify(issues),
		RuleIssues:        ruleIssues,
		Issues:            issues,
	}
}

// persist stores the snapshot and a history row. It returns the snapshot ID,
// or 0 when nothing was stored.
func (uc *AuditService) persist(ctx context.Context, result *entity.AuditResult) int64 {
	var analysisID, pageID int64
	if uc.analyses != nil {
		breakdown := append(append([]entity.CategoryScore{}, result.ScoreBreakdown...), result.AdvancedBreakdown...)
		snapshot := entity.NewPageAnalysis(result.URL, result.StatusCode, result.ParsedPage, result.Score, breakdown, result.RuleIssues)
		if err := uc.analyses.SaveAnalysis(ctx, snapshot); err != nil {
			uc.storageError("postgres", "Failed to save page analysis", result.URL, err)
		} else {
			analysisID, pageID = snapshot.ID, snapshot.PageID
		}
	}

	if uc.history != nil {
		row := &entity.AuditHistory{
			PageID:         pageID,
			URL:            result.URL,
			Score:          result.Score,
			IssuesCount:    result.AuditReport.TotalIssues,
			CriticalIssues: result.AuditReport.CriticalCount,
		}
		if err := uc.history.Append(ctx, row); err != nil {
			uc.storageError("postgres", "Failed to append audit history", result.URL, err)
		}
	}
	return analysisID
}

func (uc *AuditService) storageError(store, msg, url string, err error) {
	uc.metrics.IncStorageError(store)
	uc.logger.Error(msg, zap.String("url", url), zap.Error(err))
}

// fetchError converts a failed fetch into the error surfaced to the caller.
func fetchError(target string, fetched entity.FetchResult) *errs.AppError {
	kind := errs.Unreachable
	if fetched.Timeout {
		kind = errs.Timeout
	}
	url := fetched.FinalURL
	if url == "" {
		url = target
	}
	detail := fetched.Error
	if detail == "" {
		detail = "fetch failed"
	}
	return &errs.AppError{
		Kind:           kind,
		UpstreamStatus: fetched.Status(),
		URL:            url,
		Message:        "Failed to fetch",
		Cause:          errors.New(detail),
	}
}
