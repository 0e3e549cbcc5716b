package suggest

import (
	"fmt"
	"strings"

	"github.com/user/seo-audit-service/internal/entity"
)

const (
	// SystemPrompt is sent as the system message of chat-style providers.
	SystemPrompt = "You are a helpful SEO assistant that must output ONLY JSON."

	promptSnippetLimit = 2000
	promptH1Limit      = 3
)

const promptTemplate = `You are an SEO assistant. Given page metadata below, generate a JSON object ONLY (no explanation, no commentary).
The JSON must parse cleanly by a strict JSON parser and must contain exactly these keys:
- improved_title (string)
- improved_meta_description (string)
- improved_h1 (string)
- seo_summary (string)
- suggestions (array of strings)

Page context:
TITLE: %s
META: %s
H1: %s
WORD_COUNT: %d
ISSUES: %s
HTML_SNIPPET: %s

Output example:
{
  "improved_title": "string",
  "improved_meta_description": "string",
  "improved_h1": "string",
  "seo_summary": "string",
  "suggestions": ["string","string"]
}

Produce ONLY the JSON object (no markdown, no commentary). Values should be concise and avoid newlines.`

// BuildPrompt renders the user prompt for a page.
func BuildPrompt(page entity.ParsedPage) string {
	h1s := page.H1
	if len(h1s) > promptH1Limit {
		h1s = h1s[:promptH1Limit]
	}

	issues := make([]string, 0, len(page.Issues))
	for _, it := range page.Issues {
		issues = append(issues, it.Code+": "+it.Message)
	}
	issuesText := strings.Join(issues, "; ")
	if issuesText == "" {
		issuesText = "none"
	}

	snippet := page.RawHTMLSnippet
	if r := []rune(snippet); len(r) > promptSnippetLimit {
		snippet = string(r[:promptSnippetLimit])
	}

	return fmt.Sprintf(promptTemplate,
		page.Title,
		page.MetaDescription,
		strings.Join(h1s, " | "),
		page.WordCount,
		issuesText,
		snippet,
	)
}
