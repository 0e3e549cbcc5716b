package entity

import (
	"encoding/json"
	"time"
)

const (
	PageStatusSuccess = "success"
	PageStatusError   = "error"
)

// PageOutcome is one page entry of a site crawl. Success entries carry the
// status code, score, title and issue count; error entries carry the error.
type PageOutcome struct {
	URL         string `bson:"url"`
	Status      string `bson:"status"`
	StatusCode  int    `bson:"status_code,omitempty"`
	Score       int    `bson:"score,omitempty"`
	Title       string `bson:"title,omitempty"`
	IssuesCount int    `bson:"issues_count,omitempty"`
	Error       string `bson:"error,omitempty"`
}

func (p PageOutcome) MarshalJSON() ([]byte, error) {
	if p.Status == PageStatusError {
		return json.Marshal(struct {
			URL    string `json:"url"`
			Status string `json:"status"`
			Error  string `json:"error"`
		}{p.URL, p.Status, p.Error})
	}
	return json.Marshal(struct {
		URL         string `json:"url"`
		Status      string `json:"status"`
		StatusCode  int    `json:"status_code"`
		Score       int    `json:"score"`
		Title       string `json:"title"`
		IssuesCount int    `json:"issues_count"`
	}{p.URL, p.Status, p.StatusCode, p.Score, p.Title, p.IssuesCount})
}

func (p *PageOutcome) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL         string `json:"url"`
		Status      string `json:"status"`
		StatusCode  int    `json:"status_code"`
		Score       int    `json:"score"`
		Title       string `json:"title"`
		IssuesCount int    `json:"issues_count"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = PageOutcome(raw)
	return nil
}

// CrawlResult aggregates a site crawl. OK is false only when no discovery
// strategy produced a single page URL.
type CrawlResult struct {
	OK              bool          `json:"ok" bson:"ok"`
	Error           string        `json:"error,omitempty" bson:"error,omitempty"`
	BaseURL         string        `json:"base_url" bson:"base_url"`
	SitemapsFound   []string      `json:"sitemaps_found" bson:"sitemaps_found"`
	DiscoveryMethod string        `json:"discovery_method,omitempty" bson:"discovery_method,omitempty"`
	PagesAnalyzed   int           `json:"pages_analyzed" bson:"pages_analyzed"`
	PagesFailed     int           `json:"pages_failed" bson:"pages_failed"`
	Pages           []PageOutcome `json:"pages" bson:"pages"`
	Partial         bool          `json:"partial,omitempty" bson:"partial,omitempty"`
	AnalyzedAt      time.Time     `json:"analyzed_at" bson:"analyzed_at"`
}
