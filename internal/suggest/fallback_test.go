package suggest

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/user/seo-audit-service/internal/entity"
)

func TestFromIssues_SparsePage(t *testing.T) {
	page := entity.ParsedPage{
		Title:     "Test",
		WordCount: 1,
		H1:        []string{},
		Issues: []entity.Issue{
			{Code: "missing_meta_description", Message: "Meta description is missing."},
			{Code: "thin_content", Message: "Low word count (1). Consider expanding content."},
		},
	}

	got := FromIssues(page)

	if !got.Fallback {
		t.Error("Fallback = false, want true")
	}
	if got.ImprovedTitle != "Test | Your Complete Guide" {
		t.Errorf("ImprovedTitle = %q", got.ImprovedTitle)
	}
	if got.ImprovedMetaDescription != "Test - Learn more about this topic in our comprehensive guide." {
		t.Errorf("ImprovedMetaDescription = %q", got.ImprovedMetaDescription)
	}
	if got.ImprovedH1 != "Test" {
		t.Errorf("ImprovedH1 = %q, want title", got.ImprovedH1)
	}

	want := []string{
		"Expand your title to 30-60 characters. Current: 4 chars",
		"Add a meta description (50-160 chars) to improve CTR in search results",
		"Add a single H1 tag that clearly describes the main topic of the page",
		"Expand content to at least 300 words (preferably 800+). Current: 1 words",
		"Consider adding relevant images to improve engagement and reduce bounce rate",
		"Content seems thin. Add more valuable content to improve SEO ranking",
	}
	if !reflect.DeepEqual(got.Suggestions, want) {
		t.Errorf("Suggestions =\n%q\nwant\n%q", got.Suggestions, want)
	}

	wantSummary := "Your page 'Test' scores 1 words and has 2 SEO issues. " +
		"Key issues to fix: Meta description is missing., Low word count (1). Consider e. " +
		"Focus on content quality, proper heading structure, and descriptive metadata."
	if got.SEOSummary != wantSummary {
		t.Errorf("SEOSummary =\n%q\nwant\n%q", got.SEOSummary, wantSummary)
	}
}

func TestFromIssues_LongFieldsAndMultipleH1(t *testing.T) {
	page := entity.ParsedPage{
		Title:           strings.Repeat("T", 70),
		MetaDescription: strings.Repeat("M", 200),
		H1:              []string{"Main", "Second"},
		WordCount:       500,
		Images:          []entity.Image{{Src: "a.png", Alt: " "}, {Src: "b.png", Alt: "ok"}},
		Issues: []entity.Issue{
			{Code: "multiple_h1_tags_2", Message: "Multiple H1 tags (2)"},
		},
	}

	got := FromIssues(page)

	if got.ImprovedTitle != strings.Repeat("T", 57)+"..." {
		t.Errorf("ImprovedTitle = %q", got.ImprovedTitle)
	}
	if got.ImprovedMetaDescription != strings.Repeat("M", 157)+"..." {
		t.Errorf("ImprovedMetaDescription = %q", got.ImprovedMetaDescription)
	}
	if got.ImprovedH1 != "Main" {
		t.Errorf("ImprovedH1 = %q, want first H1", got.ImprovedH1)
	}

	want := []string{
		"Shorten your title to under 60 characters for better SERP display. Current: 70 chars",
		"Shorten meta description to under 160 characters. Current: 200 chars",
		"Use only one H1 per page. Currently found: 2. Keep the main one, convert others to H2/H3.",
		"Consider expanding to 800+ words for better SEO performance. Current: 500 words",
		"Add descriptive alt text to 1 images for better accessibility and SEO",
	}
	if !reflect.DeepEqual(got.Suggestions, want) {
		t.Errorf("Suggestions =\n%q\nwant\n%q", got.Suggestions, want)
	}
}

func TestFromIssues_DedupesAndCaps(t *testing.T) {
	var issues []entity.Issue
	for i := 0; i < 5; i++ {
		issues = append(issues, entity.Issue{Code: "thin_content", Message: "thin"})
	}
	got := FromIssues(entity.ParsedPage{Issues: issues})

	count := 0
	for _, s := range got.Suggestions {
		if strings.HasPrefix(s, "Content seems thin") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("thin-content advice appears %d times, want 1", count)
	}
	if len(got.Suggestions) > 10 {
		t.Errorf("len(Suggestions) = %d, want <= 10", len(got.Suggestions))
	}
}

func TestRuleGenerator(t *testing.T) {
	g := NewRuleGenerator()
	if g.Model() != FallbackModel {
		t.Errorf("Model = %q", g.Model())
	}
	got, err := g.Generate(context.Background(), entity.ParsedPage{Title: "x"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !got.Fallback || got.SEOSummary == "" {
		t.Errorf("unexpected result: %+v", got)
	}
}
