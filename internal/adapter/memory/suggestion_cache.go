package memory

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
)

// SuggestionCache is an in-process repository.SuggestionCache for
// single-instance deployments without Redis. Reads do not extend an entry's TTL.
type SuggestionCache struct {
	items *ttlcache.Cache[string, entity.CachedSuggestion]
}

// NewSuggestionCache starts the expiry loop; call Close to stop it.
func NewSuggestionCache() *SuggestionCache {
	items := ttlcache.New[string, entity.CachedSuggestion](
		ttlcache.WithDisableTouchOnHit[string, entity.CachedSuggestion](),
	)
	go items.Start()
	return &SuggestionCache{items: items}
}

func (c *SuggestionCache) Get(_ context.Context, pageURL string) (*entity.CachedSuggestion, error) {
	item := c.items.Get(pageURL)
	if item == nil {
		return nil, repository.ErrCacheMiss
	}
	rec := item.Value()
	rec.Suggestions.Suggestions = append([]string(nil), rec.Suggestions.Suggestions...)
	return &rec, nil
}

// Set stores a copy of rec, replacing any previous record.
func (c *SuggestionCache) Set(_ context.Context, pageURL string, rec entity.CachedSuggestion, ttl time.Duration) error {
	rec.Suggestions.Suggestions = append([]string(nil), rec.Suggestions.Suggestions...)
	c.items.Set(pageURL, rec, ttl)
	return nil
}

func (c *SuggestionCache) Close() {
	c.items.Stop()
}
