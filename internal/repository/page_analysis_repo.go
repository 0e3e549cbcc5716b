package repository

import (
	"context"
	"time"

	"github.com/user/seo-audit-service/internal/entity"
)

// PageAnalysisRepository stores page records and their analysis snapshots.
type PageAnalysisRepository interface {
	// SaveAnalysis upserts the page record for analysis.URL and appends a new
	// snapshot. It sets analysis.ID and analysis.PageID.
	SaveAnalysis(ctx context.Context, analysis *entity.PageAnalysis) error
	// AttachSuggestions overwrites the suggestion fields of the snapshot with the given ID.
	AttachSuggestions(ctx context.Context, analysisID int64, s entity.Suggestions, model string, generatedAt time.Time) error
	// LatestByURL returns the most recent snapshot of a page.
	LatestByURL(ctx context.Context, url string) (*entity.PageAnalysis, error)
}
