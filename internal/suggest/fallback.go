package suggest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/user/seo-audit-service/internal/entity"
)

const maxFallbackSuggestions = 10

// RuleGenerator derives suggestions from the page and its issues without any
// network call. It never fails.
type RuleGenerator struct{}

func NewRuleGenerator() *RuleGenerator {
	return &RuleGenerator{}
}

func (RuleGenerator) Model() string {
	return FallbackModel
}

func (RuleGenerator) Generate(_ context.Context, page entity.ParsedPage) (entity.Suggestions, error) {
	return FromIssues(page), nil
}

// FromIssues is the rule-based suggestion set for a page. Fallback is set.
func FromIssues(page entity.ParsedPage) entity.Suggestions {
	title := page.Title
	meta := page.MetaDescription

	var suggestions []string
	improvedTitle := title
	improvedMeta := meta
	improvedH1 := ""
	if len(page.H1) > 0 {
		improvedH1 = page.H1[0]
	}

	switch n := utf8.RuneCountInString(title); {
	case n < 30:
		improvedTitle = title + " | Your Complete Guide"
		suggestions = append(suggestions, fmt.Sprintf("Expand your title to 30-60 characters. Current: %d chars", n))
	case n > 60:
		improvedTitle = truncate(title, 57) + "..."
		suggestions = append(suggestions, fmt.Sprintf("Shorten your title to under 60 characters for better SERP display. Current: %d chars", n))
	}

	switch n := utf8.RuneCountInString(meta); {
	case n == 0:
		improvedMeta = title + " - Learn more about this topic in our comprehensive guide."
		suggestions = append(suggestions, "Add a meta description (50-160 chars) to improve CTR in search results")
	case n < 50:
		improvedMeta = meta + " Discover more insights and best practices."
		suggestions = append(suggestions, fmt.Sprintf("Expand meta description to 50+ characters. Current: %d chars", n))
	case n > 160:
		improvedMeta = truncate(meta, 157) + "..."
		suggestions = append(suggestions, fmt.Sprintf("Shorten meta description to under 160 characters. Current: %d chars", n))
	}

	switch n := len(page.H1); {
	case n == 0:
		improvedH1 = title
		suggestions = append(suggestions, "Add a single H1 tag that clearly describes the main topic of the page")
	case n > 1:
		suggestions = append(suggestions, fmt.Sprintf("Use only one H1 per page. Currently found: %d. Keep the main one, convert others to H2/H3.", n))
	}

	switch wc := page.WordCount; {
	case wc < 300:
		suggestions = append(suggestions, fmt.Sprintf("Expand content to at least 300 words (preferably 800+). Current: %d words", wc))
	case wc < 800:
		suggestions = append(suggestions, fmt.Sprintf("Consider expanding to 800+ words for better SEO performance. Current: %d words", wc))
	}

	missingAlt := 0
	for _, img := range page.Images {
		if strings.TrimSpace(img.Alt) == "" {
			missingAlt++
		}
	}
	if missingAlt > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Add descriptive alt text to %d images for better accessibility and SEO", missingAlt))
	}
	if len(page.Images) == 0 {
		suggestions = append(suggestions, "Consider adding relevant images to improve engagement and reduce bounce rate")
	}

	for _, issue := range page.Issues {
		joined := strings.Join(suggestions, "\n")
		switch {
		case strings.Contains(issue.Code, "thin_content") && !strings.Contains(joined, "content length"):
			suggestions = append(suggestions, "Content seems thin. Add more valuable content to improve SEO ranking")
		case strings.Contains(issue.Code, "multiple_h1") && !strings.Contains(joined, "only one H1"):
			suggestions = append(suggestions, "Search engines prefer pages with a single H1. Restructure your heading hierarchy.")
		}
	}

	return entity.Suggestions{
		ImprovedTitle:           improvedTitle,
		ImprovedMetaDescription: improvedMeta,
		ImprovedH1:              improvedH1,
		SEOSummary:              summary(page),
		Suggestions:             dedupe(suggestions, maxFallbackSuggestions),
		Fallback:                true,
	}
}

func summary(page entity.ParsedPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your page '%s' scores %d words and has %d SEO issues. ", page.Title, page.WordCount, len(page.Issues))
	if len(page.Issues) > 0 {
		var msgs []string
		for i, issue := range page.Issues {
			if i == 3 {
				break
			}
			msgs = append(msgs, truncate(issue.Message, 30))
		}
		fmt.Fprintf(&b, "Key issues to fix: %s. ", strings.Join(msgs, ", "))
	}
	b.WriteString("Focus on content quality, proper heading structure, and descriptive metadata.")
	return b.String()
}

func dedupe(items []string, limit int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
