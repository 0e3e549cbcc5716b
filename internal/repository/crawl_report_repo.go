package repository

import (
	"context"

	"github.com/user/seo-audit-service/internal/entity"
)

// CrawlReportRepository archives finished site crawls.
type CrawlReportRepository interface {
	Save(ctx context.Context, result *entity.CrawlResult) error
	// Latest returns the newest archived crawl for baseURL, or ErrNotFound.
	Latest(ctx context.Context, baseURL string) (*entity.CrawlResult, error)
}
