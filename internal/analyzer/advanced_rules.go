package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/seo-audit-service/internal/entity"
)

const (
	mobileMax       = 20
	schemaMax       = 15
	sslMax          = 10
	crawlMax        = 15
	brokenLinksMax  = 10
	socialMax       = 10
	readabilityMax  = 10
	maxScriptsCount = 20
)

var (
	schemaTypes       = []string{"Article", "Product", "Organization", "LocalBusiness", "WebSite"}
	sentenceSplitter  = regexp.MustCompile(`[.!?]+`)
	paragraphSplitter = regexp.MustCompile(`\n\n+`)
)

// CheckMobileUsability is a coarse heuristic: a viewport tag and some body text.
func CheckMobileUsability(doc *goquery.Document) (int, []string) {
	points := mobileMax
	var issues []string

	if doc.Find(`meta[name="viewport"]`).Length() == 0 {
		issues = append(issues, "Missing viewport meta tag for mobile optimization")
		points -= 5
	}

	body := doc.Find("body").First()
	if utf8.RuneCountInString(rawText(body)) <= 100 {
		issues = append(issues, "Very little text content for mobile users")
		points -= 5
	}

	return max(0, points), issues
}

func CheckSchemaMarkup(doc *goquery.Document) (int, []string) {
	points := schemaMax
	var issues []string

	blocks := doc.Find(`script[type="application/ld+json"]`)
	if blocks.Length() == 0 {
		return points - 10, []string{"Missing schema.org structured data markup"}
	}

	found := false
	blocks.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := s.Text()
		for _, st := range schemaTypes {
			if strings.Contains(content, st) {
				found = true
				return false
			}
		}
		return true
	})
	if !found {
		issues = append(issues, "Schema markup found but may not be optimized")
		points -= 5
	}

	return max(0, points), issues
}

// CheckSSLSecurity awards full points only to https URLs.
func CheckSSLSecurity(pageURL string) (int, []string) {
	if !strings.HasPrefix(pageURL, "https://") {
		return 0, []string{"Website not using HTTPS (SSL certificate)"}
	}
	return sslMax, []string{}
}

// CheckCrawlability zeroes the category for noindex pages regardless of other findings.
func CheckCrawlability(doc *goquery.Document) (int, []string) {
	points := crawlMax
	var issues []string

	noindex := false
	if robots := doc.Find(`meta[name="robots"]`).First(); robots.Length() > 0 {
		content, _ := robots.Attr("content")
		if strings.Contains(strings.ToLower(content), "noindex") {
			issues = append(issues, "Page has 'noindex' directive - won't appear in search results")
			noindex = true
		}
	}

	if doc.Find("script").Length() > maxScriptsCount {
		issues = append(issues, "High number of scripts - may slow crawling")
		points -= 5
	}

	switch h1s := doc.Find("h1").Length(); {
	case h1s == 0:
		issues = append(issues, "No H1 tag found - critical for crawlability")
		points -= 10
	case h1s > 1:
		issues = append(issues, fmt.Sprintf("Multiple H1 tags (%d) - crawlers expect one main H1", h1s))
		points -= 5
	}

	if noindex {
		return 0, issues
	}
	return max(0, points), issues
}

// CheckBrokenLinks flags internal hrefs that look like error pages.
// External, anchor, mailto and tel links are ignored.
func CheckBrokenLinks(doc *goquery.Document) (int, []string) {
	broken := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if looksBroken(href) {
			broken++
		}
	})

	if broken == 0 {
		return brokenLinksMax, []string{}
	}
	issues := []string{fmt.Sprintf("Found %d potentially broken internal links", broken)}
	return max(0, brokenLinksMax-min(10, broken*2)), issues
}

func looksBroken(href string) bool {
	for _, prefix := range []string{"http", "mailto", "#", "tel:"} {
		if strings.HasPrefix(href, prefix) {
			return false
		}
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(href, "/") && strings.Contains(lower, "404") {
		return true
	}
	return (strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".php")) &&
		strings.Contains(lower, "broken")
}

func CheckSocialTags(doc *goquery.Document) (int, []string) {
	points := socialMax
	var issues []string

	ogImage := doc.Find(`meta[property="og:image"]`).Length() > 0
	ogTitle := doc.Find(`meta[property="og:title"]`).Length() > 0
	ogDesc := doc.Find(`meta[property="og:description"]`).Length() > 0
	if !ogImage || !ogTitle || !ogDesc {
		issues = append(issues, "Missing Open Graph tags for social media sharing")
		points -= 5
	}

	if doc.Find(`meta[name="twitter:card"]`).Length() == 0 {
		issues = append(issues, "Missing Twitter Card metadata")
		points -= 5
	}

	return max(0, points), issues
}

// CheckReadability is a coarse sentence and paragraph length heuristic.
func CheckReadability(text string) (int, []string) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < 100 {
		return 0, []string{"Content is too short for good readability scoring"}
	}

	var sentences []string
	for _, s := range sentenceSplitter.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return 0, []string{"Unable to parse sentences"}
	}

	points := readabilityMax
	var issues []string

	avg := float64(len(strings.Fields(text))) / float64(len(sentences))
	if avg > 25 {
		issues = append(issues, fmt.Sprintf("Sentences are too long (avg %d words) - reduce for better readability", int(avg)))
		points -= 5
	}

	paragraphs := paragraphSplitter.Split(text, -1)
	short := 0
	for _, p := range paragraphs {
		if len(strings.Fields(p)) < 5 {
			short++
		}
	}
	if float64(short) > float64(len(paragraphs))*0.5 {
		issues = append(issues, "Many very short paragraphs - structure content better")
		points -= 5
	}

	return max(0, points), issues
}

// RunAdvancedRules scores mobile, schema, security, crawlability, links,
// social and readability signals (max 100). pageURL is the effective URL.
func RunAdvancedRules(page entity.ParsedPage, rawHTML, pageURL string) RuleResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}

	var b breakdownBuilder
	b.add("mobile_usability", mobileMax)(CheckMobileUsability(doc))
	b.add("schema_markup", schemaMax)(CheckSchemaMarkup(doc))
	b.add("ssl_security", sslMax)(CheckSSLSecurity(pageURL))
	b.add("crawlability", crawlMax)(CheckCrawlability(doc))
	b.add("broken_links", brokenLinksMax)(CheckBrokenLinks(doc))
	b.add("social_tags", socialMax)(CheckSocialTags(doc))
	b.add("readability", readabilityMax)(CheckReadability(page.MainText))
	return b.result()
}
