package suggest

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/entity"
)

const (
	defaultMaxTokens = 500
	defaultRetries   = 1
	defaultBackoff   = time.Second
)

// ChatRequest is one completion call against a language model.
type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completer returns the raw assistant text for a request.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// LLMGenerator asks a language model for suggestions and validates the reply.
type LLMGenerator struct {
	completer Completer
	model     string
	maxTokens int
	retries   int
	backoff   time.Duration
	policy    *bluemonday.Policy
	logger    *zap.Logger
}

func NewLLMGenerator(completer Completer, model string, maxTokens int, logger *zap.Logger) *LLMGenerator {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMGenerator{
		completer: completer,
		model:     model,
		maxTokens: maxTokens,
		retries:   defaultRetries,
		backoff:   defaultBackoff,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// WithBackoff overrides the pause between attempts.
func (g *LLMGenerator) WithBackoff(d time.Duration) *LLMGenerator {
	g.backoff = d
	return g
}

func (g *LLMGenerator) Model() string {
	return g.model
}

// Generate makes up to two attempts. Provider errors and unparsable replies
// are retried; missing credentials are not.
func (g *LLMGenerator) Generate(ctx context.Context, page entity.ParsedPage) (entity.Suggestions, error) {
	if g == nil || g.completer == nil {
		return entity.Suggestions{}, &GenerationError{Model: g.modelName(), Err: ErrNoCredentials}
	}

	req := ChatRequest{
		Model:       g.model,
		System:      SystemPrompt,
		Prompt:      BuildPrompt(page),
		MaxTokens:   g.maxTokens,
		Temperature: 0,
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, g.backoff); err != nil {
				lastErr = err
				break
			}
		}
		attempts++

		text, err := g.completer.Complete(ctx, req)
		if err != nil {
			lastErr = err
			if errors.Is(err, ErrNoCredentials) {
				break
			}
			g.logger.Warn("llm call failed",
				zap.String("model", g.model),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			continue
		}

		s, err := ExtractSuggestions(text)
		if err != nil {
			lastErr = err
			g.logger.Warn("llm reply not parsable",
				zap.String("model", g.model),
				zap.Int("attempt", attempts),
			)
			continue
		}
		return g.sanitize(s), nil
	}

	return entity.Suggestions{}, &GenerationError{Model: g.model, Attempts: attempts, Err: lastErr}
}

func (g *LLMGenerator) modelName() string {
	if g == nil {
		return ""
	}
	return g.model
}

// sanitize strips any markup the model put into its strings.
func (g *LLMGenerator) sanitize(s entity.Suggestions) entity.Suggestions {
	clean := func(v string) string {
		return strings.TrimSpace(html.UnescapeString(g.policy.Sanitize(v)))
	}
	out := entity.Suggestions{
		ImprovedTitle:           clean(s.ImprovedTitle),
		ImprovedMetaDescription: clean(s.ImprovedMetaDescription),
		ImprovedH1:              clean(s.ImprovedH1),
		SEOSummary:              clean(s.SEOSummary),
		Suggestions:             make([]string, 0, len(s.Suggestions)),
	}
	for _, item := range s.Suggestions {
		out.Suggestions = append(out.Suggestions, clean(item))
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
