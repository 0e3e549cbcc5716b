package analyzer

import (
	"fmt"
	"unicode/utf8"

	"github.com/user/seo-audit-service/internal/entity"
)

// RuleResult is the output of one rule family.
type RuleResult struct {
	Score     int
	Breakdown []entity.CategoryScore
	Issues    []string
}

const (
	titleMax  = 20
	metaMax   = 20
	h1Max     = 15
	wordsMax  = 20
	imagesMax = 10
)

// ScoreTitle depends on the title length only.
func ScoreTitle(title string) (int, []string) {
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		return 0, []string{"Title missing"}
	case n >= 30 && n <= 60:
		return titleMax, nil
	case n < 30:
		return 12, []string{"Title too short"}
	default:
		return 15, []string{"Title too long"}
	}
}

func ScoreMeta(meta string) (int, []string) {
	n := utf8.RuneCountInString(meta)
	switch {
	case n == 0:
		return 0, []string{"Meta description missing"}
	case n >= 50 && n <= 160:
		return metaMax, nil
	case n < 50:
		return 10, []string{"Meta description short"}
	default:
		return 14, []string{"Meta description long"}
	}
}

func ScoreH1(h1 []string) (int, []string) {
	switch n := len(h1); n {
	case 0:
		return 0, []string{"Missing H1"}
	case 1:
		return h1Max, nil
	default:
		return 7, []string{fmt.Sprintf("Multiple H1 tags (%d)", n)}
	}
}

// ScoreWordCount scales linearly from 10 to 20 points between 300 and 800 words.
func ScoreWordCount(wc int) (int, []string) {
	switch {
	case wc >= 800:
		return wordsMax, nil
	case wc >= 300:
		return 10 + (wc-300)*10/500, nil
	default:
		return 5, []string{fmt.Sprintf("Thin content (%d words)", wc)}
	}
}

func ScoreImages(images []entity.Image) (int, []string) {
	total := len(images)
	if total == 0 {
		return 5, []string{"No images present"}
	}

	withAlt := 0
	for _, img := range images {
		if img.Alt != "" {
			withAlt++
		}
	}

	var issues []string
	if withAlt < total {
		issues = append(issues, fmt.Sprintf("%d images missing alt", total-withAlt))
	}
	return imagesMax * withAlt / total, issues
}

// RunBasicRules scores the structural basics of a page (max 100).
func RunBasicRules(page entity.ParsedPage) RuleResult {
	var b breakdownBuilder
	b.add("title", titleMax)(ScoreTitle(page.Title))
	b.add("meta_description", metaMax)(ScoreMeta(page.MetaDescription))
	b.add("h1", h1Max)(ScoreH1(page.H1))
	b.add("content", wordsMax)(ScoreWordCount(page.WordCount))
	b.add("images", imagesMax)(ScoreImages(page.Images))
	return b.result()
}

type breakdownBuilder struct {
	entries []entity.CategoryScore
	issues  []string
}

func (b *breakdownBuilder) add(category string, limit int) func(int, []string) {
	return func(points int, issues []string) {
		points = clamp(points, 0, limit)
		if issues == nil {
			issues = []string{}
		}
		b.entries = append(b.entries, entity.CategoryScore{
			Category: category,
			Points:   points,
			Max:      limit,
			Issues:   issues,
		})
		b.issues = append(b.issues, issues...)
	}
}

func (b *breakdownBuilder) result() RuleResult {
	total := 0
	for _, e := range b.entries {
		total += e.Points
	}
	issues := b.issues
	if issues == nil {
		issues = []string{}
	}
	return RuleResult{
		Score:     clamp(total, 0, 100),
		Breakdown: b.entries,
		Issues:    issues,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
