package repository

import (
	"context"

	"github.com/user/seo-audit-service/internal/entity"
)

// AuditHistoryRepository records per-audit score summaries for trend tracking.
type AuditHistoryRepository interface {
	Append(ctx context.Context, h *entity.AuditHistory) error
	// ListByURL returns up to limit entries, newest first.
	ListByURL(ctx context.Context, url string, limit int) ([]*entity.AuditHistory, error)
}
