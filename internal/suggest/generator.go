package suggest

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/seo-audit-service/internal/entity"
)

// FallbackModel identifies suggestions produced without an LLM.
const FallbackModel = "fallback-rule-based"

var (
	// ErrNoCredentials means the LLM strategy is not configured.
	ErrNoCredentials = errors.New("llm credentials not configured")
	// ErrUnparsableOutput means no JSON object could be recovered from the model reply.
	ErrUnparsableOutput = errors.New("llm returned unparsable output")
)

// Generator produces improved metadata and advice for a parsed page.
type Generator interface {
	Generate(ctx context.Context, page entity.ParsedPage) (entity.Suggestions, error)
	Model() string
}

// GenerationError is the tagged failure of an LLM generation attempt.
type GenerationError struct {
	Model    string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("suggestions from %s failed after %d attempt(s): %v", e.Model, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
