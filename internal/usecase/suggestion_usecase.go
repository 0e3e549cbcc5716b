package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/internal/suggest"
	"github.com/user/seo-audit-service/pkg/metrics"
)

const (
	SourceCache    = "cache"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// SuggestionOutcome is the explicit result of the suggestion step. Err holds
// the LLM failure that caused a fallback, if any; the outcome is still usable.
type SuggestionOutcome struct {
	Suggestions entity.Suggestions
	GeneratedAt time.Time
	Model       string
	Source      string
	Err         error
}

// SuggestionService applies the caller policy around the suggestion strategies:
// cache first, then the LLM, then the rule-based fallback.
type SuggestionService struct {
	llm      suggest.Generator
	fallback suggest.Generator
	cache    repository.SuggestionCache
	ttl      time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSuggestionService wires the policy. llm and cache may be nil.
func NewSuggestionService(
	llm suggest.Generator,
	cache repository.SuggestionCache,
	ttl time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{
		llm:      llm,
		fallback: suggest.NewRuleGenerator(),
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Suggest never fails: an LLM error degrades to the rule-based strategy.
func (s *SuggestionService) Suggest(ctx context.Context, pageURL string, page entity.ParsedPage, force bool) SuggestionOutcome {
	if !force {
		if out, ok := s.fromCache(ctx, pageURL); ok {
			s.metrics.IncSuggestions(SourceCache)
			return out
		}
	}

	out := s.generate(ctx, pageURL, page)
	s.metrics.IncSuggestions(out.Source)

	if s.cache != nil {
		rec := entity.CachedSuggestion{Suggestions: out.Suggestions, GeneratedAt: out.GeneratedAt, Model: out.Model}
		if err := s.cache.Set(ctx, pageURL, rec, s.ttl); err != nil {
			s.metrics.IncStorageError("suggestion_cache")
			s.logger.Warn("Failed to cache suggestions", zap.String("url", pageURL), zap.Error(err))
		}
	}
	return out
}

func (s *SuggestionService) fromCache(ctx context.Context, pageURL string) (SuggestionOutcome, bool) {
	if s.cache == nil {
		return SuggestionOutcome{}, false
	}
	rec, err := s.cache.Get(ctx, pageURL)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.metrics.IncStorageError("suggestion_cache")
			s.logger.Warn("Suggestion cache lookup failed", zap.String("url", pageURL), zap.Error(err))
		}
		return SuggestionOutcome{}, false
	}
	return SuggestionOutcome{
		Suggestions: rec.Suggestions,
		GeneratedAt: rec.GeneratedAt,
		Model:       rec.Model,
		Source:      SourceCache,
	}, true
}

func (s *SuggestionService) generate(ctx context.Context, pageURL string, page entity.ParsedPage) SuggestionOutcome {
	var llmErr error
	if s.llm != nil {
		sugg, err := s.llm.Generate(ctx, page)
		if err == nil {
			return SuggestionOutcome{Suggestions: sugg, GeneratedAt: s.now().UTC(), Model: s.llm.Model(), Source: SourceLLM}
		}
		llmErr = err
		if !errors.Is(err, suggest.ErrNoCredentials) {
			s.logger.Warn("LLM suggestions failed, using rule-based fallback", zap.String("url", pageURL), zap.Error(err))
		}
	} else {
		llmErr = suggest.ErrNoCredentials
	}

	// The rule generator has no failure mode.
	sugg, _ := s.fallback.Generate(ctx, page)
	sugg.Fallback = true
	return SuggestionOutcome{
		Suggestions: sugg,
		GeneratedAt: s.now().UTC(),
		Model:       s.fallback.Model(),
		Source:      SourceFallback,
		Err:         llmErr,
	}
}
