package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/pkg/errs"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PageAnalysisRepoImpl stores pages and their analysis snapshots in PostgreSQL.
type PageAnalysisRepoImpl struct {
	db *pgxpool.Pool
}

func NewPageAnalysisRepo(db *pgxpool.Pool) *PageAnalysisRepoImpl {
	return &PageAnalysisRepoImpl{db: db}
}

// SaveAnalysis upserts the page and appends a snapshot in one transaction.
func (r *PageAnalysisRepoImpl) SaveAnalysis(ctx context.Context, a *entity.PageAnalysis) error {
	cols, err := encodeAnalysis(a)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	pageID, err := upsertPage(ctx, tx, a.URL)
	if err != nil {
		return fmt.Errorf("upsert page: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO page_analyses (page_id, status_code, title, meta_description, h1, h2, h3, images,
			word_count, score, score_breakdown, rule_issues, raw_html_snippet)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at`,
		pageID, a.StatusCode, a.Title, a.MetaDescription, cols.h1, cols.h2, cols.h3, cols.images,
		a.WordCount, a.Score, cols.breakdown, cols.issues, a.RawHTMLSnippet,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	a.PageID = pageID

	return tx.Commit(ctx)
}

func (r *PageAnalysisRepoImpl) AttachSuggestions(ctx context.Context, analysisID int64, s entity.Suggestions, model string, generatedAt time.Time) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE page_analyses SET llm_suggestions = $2, llm_model = $3, llm_generated_at = $4 WHERE id = $1`,
		analysisID, payload, model, generatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PageAnalysisRepoImpl) LatestByURL(ctx context.Context, url string) (*entity.PageAnalysis, error) {
	row := r.db.QueryRow(ctx,
		`SELECT a.id, a.page_id, p.url, a.status_code, a.title, a.meta_description, a.h1, a.h2, a.h3, a.images,
			a.word_count, a.score, a.score_breakdown, a.rule_issues, a.raw_html_snippet,
			a.llm_suggestions, a.llm_model, a.llm_generated_at, a.created_at
		 FROM page_analyses a JOIN pages p ON p.id = a.page_id
		 WHERE p.url = $1
		 ORDER BY a.created_at DESC, a.id DESC
		 LIMIT 1`,
		url,
	)

	var (
		a                                            entity.PageAnalysis
		h1, h2, h3, images, breakdown, issues, llmJS []byte
	)
	err := row.Scan(&a.ID, &a.PageID, &a.URL, &a.StatusCode, &a.Title, &a.MetaDescription,
		&h1, &h2, &h3, &images, &a.WordCount, &a.Score, &breakdown, &issues, &a.RawHTMLSnippet,
		&llmJS, &a.LLMModel, &a.LLMGeneratedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		src []byte
		dst any
	}{
		{h1, &a.H1}, {h2, &a.H2}, {h3, &a.H3}, {images, &a.Images},
		{breakdown, &a.ScoreBreakdown}, {issues, &a.RuleIssues},
	} {
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return nil, errs.New(errs.ParsingFailed, "stored analysis could not be decoded", err)
		}
	}
	if len(llmJS) > 0 {
		var s entity.Suggestions
		if err := json.Unmarshal(llmJS, &s); err != nil {
			return nil, errs.New(errs.ParsingFailed, "stored suggestions could not be decoded", err)
		}
		a.LLMSuggestions = &s
	}
	return &a, nil
}

type analysisColumns struct {
	h1, h2, h3, images, breakdown, issues []byte
}

func encodeAnalysis(a *entity.PageAnalysis) (analysisColumns, error) {
	var (
		cols analysisColumns
		err  error
	)
	enc := func(v any, dst *[]byte) {
		if err != nil {
			return
		}
		*dst, err = json.Marshal(nonNil(v))
	}
	enc(a.H1, &cols.h1)
	enc(a.H2, &cols.h2)
	enc(a.H3, &cols.h3)
	enc(a.Images, &cols.images)
	enc(a.ScoreBreakdown, &cols.breakdown)
	enc(a.RuleIssues, &cols.issues)
	return cols, err
}

// nonNil keeps JSONB list columns as [] rather than null.
func nonNil(v any) any {
	switch t := v.(type) {
	case []string:
		if t == nil {
			return []string{}
		}
	case []entity.Image:
		if t == nil {
			return []entity.Image{}
		}
	case []entity.CategoryScore:
		if t == nil {
			return []entity.CategoryScore{}
		}
	}
	return v
}
