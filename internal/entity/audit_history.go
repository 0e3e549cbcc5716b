package entity

import "time"

// AuditHistory mirrors the `audit_history` PostgreSQL table used for score trends.
type AuditHistory struct {
	ID             int64     `json:"id"`
	PageID         int64     `json:"page_id"`
	URL            string    `json:"url"`
	Score          int       `json:"score"`
	IssuesCount    int       `json:"issues_count"`
	CriticalIssues int       `json:"critical_issues"`
	CreatedAt      time.Time `json:"created_at"`
}
