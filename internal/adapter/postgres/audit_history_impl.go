package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/seo-audit-service/internal/entity"
)

// AuditHistoryRepoImpl appends score summaries to the audit_history table.
type AuditHistoryRepoImpl struct {
	db *pgxpool.Pool
}

func NewAuditHistoryRepo(db *pgxpool.Pool) *AuditHistoryRepoImpl {
	return &AuditHistoryRepoImpl{db: db}
}

// Append inserts h, resolving its page by URL when PageID is unset.
func (r *AuditHistoryRepoImpl) Append(ctx context.Context, h *entity.AuditHistory) error {
	if h.PageID == 0 {
		id, err := upsertPage(ctx, r.db, h.URL)
		if err != nil {
			return fmt.Errorf("upsert page: %w", err)
		}
		h.PageID = id
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO audit_history (page_id, score, issues_count, critical_issues)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		h.PageID, h.Score, h.IssuesCount, h.CriticalIssues,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *AuditHistoryRepoImpl) ListByURL(ctx context.Context, url string, limit int) ([]*entity.AuditHistory, error) {
	rows, err := r.db.Query(ctx,
		`SELECT h.id, h.page_id, p.url, h.score, h.issues_count, h.critical_issues, h.created_at
		 FROM audit_history h JOIN pages p ON p.id = h.page_id
		 WHERE p.url = $1
		 ORDER BY h.created_at DESC, h.id DESC
		 LIMIT $2`,
		url, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.AuditHistory
	for rows.Next() {
		h := &entity.AuditHistory{}
		if err := rows.Scan(&h.ID, &h.PageID, &h.URL, &h.Score, &h.IssuesCount, &h.CriticalIssues, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
