package entity

import "time"

// Every value in this file is produced by a synthetic estimator, not measured.

type Referrer struct {
	Referrer       string `json:"referrer"`
	EstimatedLinks int    `json:"estimated_links"`
	Domain         string `json:"domain"`
}

type AnchorText struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

type BacklinkGrowth struct {
	Months     []int `json:"12_months"`
	TrendScore int   `json:"trend_score"`
}

// DomainBacklinks is a synthetic backlink profile for a domain.
type DomainBacklinks struct {
	Domain           string         `json:"domain"`
	Synthetic        bool           `json:"synthetic"`
	TotalBacklinks   int            `json:"total_backlinks"`
	ReferringDomains int            `json:"referring_domains"`
	TopReferrers     []Referrer     `json:"top_referrers"`
	AnchorTexts      []AnchorText   `json:"anchor_texts"`
	Growth           BacklinkGrowth `json:"growth"`
	ToxicScore       float64        `json:"toxic_score"`
	LastAnalyzed     time.Time      `json:"last_analyzed"`
}

// LinkGap compares referrer sets of two domains. Each list holds at most 50 entries.
type LinkGap struct {
	Source           string   `json:"source"`
	Target           string   `json:"target"`
	Synthetic        bool     `json:"synthetic"`
	MissingForSource []string `json:"missing_for_source"`
	MissingForTarget []string `json:"missing_for_target"`
	Overlap          []string `json:"overlap"`
}
