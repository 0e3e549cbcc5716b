package suggest

import (
	"strings"
	"testing"

	"github.com/user/seo-audit-service/internal/entity"
)

func TestBuildPrompt(t *testing.T) {
	page := entity.ParsedPage{
		Title:           "Home",
		MetaDescription: "Welcome",
		H1:              []string{"One", "Two", "Three", "Four"},
		WordCount:       42,
		Issues: []entity.Issue{
			{Code: "title_too_short", Message: "Title too short"},
			{Code: "missing_h1", Message: "Missing H1"},
		},
		RawHTMLSnippet: strings.Repeat("x", 2500),
	}

	prompt := BuildPrompt(page)

	for _, want := range []string{
		"TITLE: Home\n",
		"META: Welcome\n",
		"H1: One | Two | Three\n",
		"WORD_COUNT: 42\n",
		"ISSUES: title_too_short: Title too short; missing_h1: Missing H1\n",
		"HTML_SNIPPET: " + strings.Repeat("x", 2000) + "\n",
		"Produce ONLY the JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Four") {
		t.Error("prompt should keep at most three H1s")
	}
	if strings.Contains(prompt, strings.Repeat("x", 2001)) {
		t.Error("snippet not truncated to 2000 characters")
	}
}

func TestBuildPrompt_NoIssues(t *testing.T) {
	prompt := BuildPrompt(entity.ParsedPage{})
	if !strings.Contains(prompt, "ISSUES: none\n") {
		t.Errorf("expected ISSUES: none in prompt:\n%s", prompt)
	}
}
