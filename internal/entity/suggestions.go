package entity

import "time"

// Suggestions holds improved metadata and free-text advice for one page.
type Suggestions struct {
	ImprovedTitle           string   `json:"improved_title"`
	ImprovedMetaDescription string   `json:"improved_meta_description"`
	ImprovedH1              string   `json:"improved_h1"`
	SEOSummary              string   `json:"seo_summary"`
	Suggestions             []string `json:"suggestions"`
	Fallback                bool     `json:"fallback"`
}

// CachedSuggestion is a whole cached record. Writes replace it entirely.
type CachedSuggestion struct {
	Suggestions Suggestions `json:"suggestions"`
	GeneratedAt time.Time   `json:"generated_at"`
	Model       string      `json:"model"`
}
