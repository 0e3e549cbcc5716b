package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/user/seo-audit-service/internal/entity"
)

func TestScoreTitle(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		wantPoints int
		wantIssues []string
	}{
		{"missing", "", 0, []string{"Title missing"}},
		{"short", strings.Repeat("a", 29), 12, []string{"Title too short"}},
		{"lower bound", strings.Repeat("a", 30), 20, nil},
		{"upper bound", strings.Repeat("a", 60), 20, nil},
		{"long", strings.Repeat("a", 61), 15, []string{"Title too long"}},
		{"counts runes", strings.Repeat("é", 30), 20, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, issues := ScoreTitle(tt.title)
			if points != tt.wantPoints {
				t.Errorf("points = %d, want %d", points, tt.wantPoints)
			}
			if !reflect.DeepEqual(issues, tt.wantIssues) {
				t.Errorf("issues = %v, want %v", issues, tt.wantIssues)
			}
		})
	}
}

func TestScoreMeta(t *testing.T) {
	tests := []struct {
		meta       string
		wantPoints int
		wantIssue  string
	}{
		{"", 0, "Meta description missing"},
		{strings.Repeat("m", 49), 10, "Meta description short"},
		{strings.Repeat("m", 50), 20, ""},
		{strings.Repeat("m", 160), 20, ""},
		{strings.Repeat("m", 161), 14, "Meta description long"},
	}
	for _, tt := range tests {
		points, issues := ScoreMeta(tt.meta)
		if points != tt.wantPoints {
			t.Errorf("ScoreMeta(len %d) points = %d, want %d", len(tt.meta), points, tt.wantPoints)
		}
		if tt.wantIssue == "" && len(issues) != 0 {
			t.Errorf("ScoreMeta(len %d) issues = %v, want none", len(tt.meta), issues)
		}
		if tt.wantIssue != "" && (len(issues) != 1 || issues[0] != tt.wantIssue) {
			t.Errorf("ScoreMeta(len %d) issues = %v, want [%s]", len(tt.meta), issues, tt.wantIssue)
		}
	}
}

func TestScoreH1(t *testing.T) {
	if p, issues := ScoreH1(nil); p != 0 || issues[0] != "Missing H1" {
		t.Errorf("no h1: %d %v", p, issues)
	}
	if p, issues := ScoreH1([]string{"one"}); p != 15 || issues != nil {
		t.Errorf("one h1: %d %v", p, issues)
	}
	if p, issues := ScoreH1([]string{"a", "b", "c"}); p != 7 || issues[0] != "Multiple H1 tags (3)" {
		t.Errorf("three h1: %d %v", p, issues)
	}
}

func TestScoreWordCount(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 5},
		{299, 5},
		{300, 10},
		{550, 15},
		{799, 19},
		{800, 20},
		{5000, 20},
	}
	for _, tt := range tests {
		if got, _ := ScoreWordCount(tt.words); got != tt.want {
			t.Errorf("ScoreWordCount(%d) = %d, want %d", tt.words, got, tt.want)
		}
	}

	_, issues := ScoreWordCount(120)
	if len(issues) != 1 || issues[0] != "Thin content (120 words)" {
		t.Errorf("issues = %v", issues)
	}
}

func TestScoreImages(t *testing.T) {
	tests := []struct {
		name       string
		images     []entity.Image
		wantPoints int
		wantIssues []string
	}{
		{"none", nil, 5, []string{"No images present"}},
		{"all with alt", []entity.Image{{Alt: "a"}, {Alt: "b"}}, 10, nil},
		{"one of three", []entity.Image{{Alt: "a"}, {}, {}}, 3, []string{"2 images missing alt"}},
		{"none with alt", []entity.Image{{}, {}}, 0, []string{"2 images missing alt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, issues := ScoreImages(tt.images)
			if points != tt.wantPoints {
				t.Errorf("points = %d, want %d", points, tt.wantPoints)
			}
			if !reflect.DeepEqual(issues, tt.wantIssues) {
				t.Errorf("issues = %v, want %v", issues, tt.wantIssues)
			}
		})
	}
}

func TestRunBasicRules(t *testing.T) {
	page := entity.ParsedPage{
		Title:           strings.Repeat("t", 40),
		MetaDescription: strings.Repeat("m", 100),
		H1:              []string{"Heading"},
		WordCount:       900,
		Images:          []entity.Image{{Src: "a.png", Alt: "A"}},
	}

	res := RunBasicRules(page)

	if res.Score != 85 {
		t.Errorf("Score = %d, want 85", res.Score)
	}
	if len(res.Issues) != 0 {
		t.Errorf("Issues = %v, want none", res.Issues)
	}

	wantCategories := []string{"title", "meta_description", "h1", "content", "images"}
	if len(res.Breakdown) != len(wantCategories) {
		t.Fatalf("breakdown has %d entries", len(res.Breakdown))
	}
	sum := 0
	for i, entry := range res.Breakdown {
		if entry.Category != wantCategories[i] {
			t.Errorf("breakdown[%d] = %q, want %q", i, entry.Category, wantCategories[i])
		}
		if entry.Points < 0 || entry.Points > entry.Max {
			t.Errorf("%s points %d outside [0,%d]", entry.Category, entry.Points, entry.Max)
		}
		if entry.Issues == nil {
			t.Errorf("%s issues is nil", entry.Category)
		}
		sum += entry.Points
	}
	if sum != res.Score {
		t.Errorf("breakdown sum %d != score %d", sum, res.Score)
	}
}

func TestRunBasicRules_EmptyPage(t *testing.T) {
	res := RunBasicRules(Parse("", ""))

	// 0 title + 0 meta + 0 h1 + 5 thin content + 5 no images
	if res.Score != 10 {
		t.Errorf("Score = %d, want 10", res.Score)
	}
	want := []string{
		"Title missing",
		"Meta description missing",
		"Missing H1",
		"Thin content (0 words)",
		"No images present",
	}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Errorf("Issues = %v, want %v", res.Issues, want)
	}
}

func TestRunBasicRules_Idempotent(t *testing.T) {
	page := Parse(`<title>Repeatable</title><h1>A</h1><h1>B</h1><img src="x.png">`, "https://example.com")
	first := RunBasicRules(page)
	second := RunBasicRules(page)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}
