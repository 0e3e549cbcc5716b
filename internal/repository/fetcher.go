package repository

import (
	"context"
	"time"

	"github.com/user/seo-audit-service/internal/entity"
)

// Fetcher retrieves raw HTML for a URL. Transport failures are reported in the
// returned FetchResult, never as a Go error.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) entity.FetchResult
}
