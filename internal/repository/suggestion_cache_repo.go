package repository

import (
	"context"
	"time"

	"github.com/user/seo-audit-service/internal/entity"
)

// SuggestionCache stores generated suggestions keyed by page URL.
type SuggestionCache interface {
	// Get returns ErrCacheMiss when nothing is stored or the record expired.
	Get(ctx context.Context, pageURL string) (*entity.CachedSuggestion, error)
	// Set replaces the whole record for pageURL. It never merges fields.
	Set(ctx context.Context, pageURL string, rec entity.CachedSuggestion, ttl time.Duration) error
}
