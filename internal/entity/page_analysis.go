package entity

import "time"

// PageAnalysis mirrors the `page_analyses` PostgreSQL table. One row is
// appended per audit run; only the latest row of a page carries suggestions.
type PageAnalysis struct {
	ID              int64           `json:"id"`
	PageID          int64           `json:"page_id"`
	URL             string          `json:"url"`
	StatusCode      int             `json:"status_code"`
	Title           string          `json:"title"`
	MetaDescription string          `json:"meta_description"`
	H1              []string        `json:"h1"`
	H2              []string        `json:"h2"`
	H3              []string        `json:"h3"`
	Images          []Image         `json:"images"` // stored as JSONB
	WordCount       int             `json:"word_count"`
	Score           int             `json:"score"`
	ScoreBreakdown  []CategoryScore `json:"score_breakdown"` // stored as JSONB
	RuleIssues      []string        `json:"rule_issues"`     // stored as JSONB
	RawHTMLSnippet  string          `json:"raw_html_snippet"`
	LLMSuggestions  *Suggestions    `json:"llm_suggestions,omitempty"` // stored as JSONB
	LLMModel        string          `json:"llm_model,omitempty"`
	LLMGeneratedAt  *time.Time      `json:"llm_generated_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewPageAnalysis builds a snapshot from a parsed page and its scoring.
func NewPageAnalysis(url string, statusCode int, page ParsedPage, score int, breakdown []CategoryScore, issues []string) *PageAnalysis {
	return &PageAnalysis{
		URL:             url,
		StatusCode:      statusCode,
		Title:           page.Title,
		MetaDescription: page.MetaDescription,
		H1:              page.H1,
		H2:              page.H2,
		H3:              page.H3,
		Images:          page.Images,
		WordCount:       page.WordCount,
		Score:           score,
		ScoreBreakdown:  breakdown,
		RuleIssues:      issues,
		RawHTMLSnippet:  page.RawHTMLSnippet,
	}
}
