package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	id         BIGSERIAL PRIMARY KEY,
	url        TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS page_analyses (
	id               BIGSERIAL PRIMARY KEY,
	page_id          BIGINT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
	status_code      INTEGER NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	meta_description TEXT NOT NULL DEFAULT '',
	h1               JSONB NOT NULL DEFAULT '[]',
	h2               JSONB NOT NULL DEFAULT '[]',
	h3               JSONB NOT NULL DEFAULT '[]',
	images           JSONB NOT NULL DEFAULT '[]',
	word_count       INTEGER NOT NULL DEFAULT 0,
	score            INTEGER NOT NULL DEFAULT 0,
	score_breakdown  JSONB NOT NULL DEFAULT '[]',
	rule_issues      JSONB NOT NULL DEFAULT '[]',
	raw_html_snippet TEXT NOT NULL DEFAULT '',
	llm_suggestions  JSONB,
	llm_model        TEXT NOT NULL DEFAULT '',
	llm_generated_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS page_analyses_page_created_idx ON page_analyses (page_id, created_at DESC);

CREATE TABLE IF NOT EXISTS audit_history (
	id              BIGSERIAL PRIMARY KEY,
	page_id         BIGINT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
	score           INTEGER NOT NULL,
	issues_count    INTEGER NOT NULL,
	critical_issues INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS audit_history_page_created_idx ON audit_history (page_id, created_at DESC);
`

// Connect opens a pool and makes sure the schema exists.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return pool, nil
}

// upsertPage returns the id of the page row for url, creating it if needed.
func upsertPage(ctx context.Context, q querier, url string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO pages (url) VALUES ($1)
		 ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
		 RETURNING id`,
		url,
	).Scan(&id)
	return id, err
}
