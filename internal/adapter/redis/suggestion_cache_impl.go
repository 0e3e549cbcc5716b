package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/pkg/utils"
)

const suggestionKeyPrefix = "suggestions:"

// SuggestionCacheImpl keeps generated suggestions in Redis with a TTL.
type SuggestionCacheImpl struct {
	client *redis.Client
}

func NewSuggestionCache(client *redis.Client) *SuggestionCacheImpl {
	return &SuggestionCacheImpl{client: client}
}

// generateKey hashes the page URL into a fixed-length key.
func (c *SuggestionCacheImpl) generateKey(pageURL string) string {
	return fmt.Sprintf("%s%s", suggestionKeyPrefix, utils.HashURL(pageURL))
}

func (c *SuggestionCacheImpl) Get(ctx context.Context, pageURL string) (*entity.CachedSuggestion, error) {
	raw, err := c.client.Get(ctx, c.generateKey(pageURL)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var rec entity.CachedSuggestion
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode cached suggestion: %w", err)
	}
	return &rec, nil
}

// Set writes the whole record with SETEX, replacing any previous value.
func (c *SuggestionCacheImpl) Set(ctx context.Context, pageURL string, rec entity.CachedSuggestion, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.SetEx(ctx, c.generateKey(pageURL), payload, ttl).Err()
}
