package entity

import "time"

// CategoryScore is one entry of a rule breakdown. Points never exceed Max.
type CategoryScore struct {
	Category string   `json:"category"`
	Points   int      `json:"points"`
	Max      int      `json:"max"`
	Issues   []string `json:"issues"`
}

// AuditReport buckets issues by severity. The lists are capped for display,
// the counts are not.
type AuditReport struct {
	TotalIssues   int     `json:"total_issues"`
	CriticalCount int     `json:"critical_count"`
	WarningsCount int     `json:"warnings_count"`
	InfoCount     int     `json:"info_count"`
	Critical      []Issue `json:"critical"`
	Warnings      []Issue `json:"warnings"`
	Info          []Issue `json:"info"`
}

// AuditResult is the response of a single-page audit.
type AuditResult struct {
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	ParsedPage
	PageIssues []Issue `json:"page_issues"`

	Score             int             `json:"score"`
	BasicScore        int             `json:"basic_score"`
	AdvancedScore     int             `json:"advanced_score"`
	ScoreBreakdown    []CategoryScore `json:"score_breakdown"`
	AdvancedBreakdown []CategoryScore `json:"advanced_breakdown"`
	AuditReport       AuditReport     `json:"audit_report"`
	RuleIssues        []string        `json:"rule_issues"`
	Issues            []Issue         `json:"issues"`

	LLMSuggestions   *Suggestions `json:"llm_suggestions,omitempty"`
	LLMGeneratedAt   *time.Time   `json:"llm_generated_at,omitempty"`
	LLMModel         string       `json:"llm_model,omitempty"`
	SuggestionSource string       `json:"llm_source,omitempty"`
	AnalysisID       int64        `json:"analysis_id,omitempty"`
}
