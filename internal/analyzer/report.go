package analyzer

import (
	"strings"

	"github.com/user/seo-audit-service/internal/entity"
)

const reportBucketLimit = 10

var (
	criticalKeywords = []string{"missing", "no h1", "noindex", "ssl", "https"}
	warningKeywords  = []string{"short", "long", "multiple", "thin", "broken"}
)

// CombineScores weights basic rules at 40% and advanced rules at 60%, rounding down.
func CombineScores(basic, advanced int) int {
	return clamp((4*basic+6*advanced)/10, 0, 100)
}

// IssueCode derives a machine code from an issue message.
func IssueCode(message string) string {
	code := strings.ToLower(message)
	code = strings.ReplaceAll(code, " ", "_")
	code = strings.ReplaceAll(code, "(", "")
	return strings.ReplaceAll(code, ")", "")
}

// FormatIssues turns flat issue messages into coded issues, keeping order.
func FormatIssues(messages []string) []entity.Issue {
	out := make([]entity.Issue, 0, len(messages))
	for _, m := range messages {
		out = append(out, entity.Issue{Code: IssueCode(m), Message: m})
	}
	return out
}

// Severity of an issue message: "critical", "warning" or "info".
// Critical keywords are checked before warning keywords.
func Severity(message string) string {
	lower := strings.ToLower(message)
	if containsAny(lower, criticalKeywords) {
		return "critical"
	}
	if containsAny(lower, warningKeywords) {
		return "warning"
	}
	return "info"
}

// Classify buckets issues by severity. Counts cover every issue; the lists
// keep the first ten of each bucket in issue order.
func Classify(issues []entity.Issue) entity.AuditReport {
	var critical, warnings, info []entity.Issue
	for _, issue := range issues {
		switch Severity(issue.Message) {
		case "critical":
			critical = append(critical, issue)
		case "warning":
			warnings = append(warnings, issue)
		default:
			info = append(info, issue)
		}
	}

	return entity.AuditReport{
		TotalIssues:   len(issues),
		CriticalCount: len(critical),
		WarningsCount: len(warnings),
		InfoCount:     len(info),
		Critical:      head(critical, reportBucketLimit),
		Warnings:      head(warnings, reportBucketLimit),
		Info:          head(info, reportBucketLimit),
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func head(issues []entity.Issue, n int) []entity.Issue {
	if len(issues) > n {
		issues = issues[:n]
	}
	if issues == nil {
		return []entity.Issue{}
	}
	return issues
}
