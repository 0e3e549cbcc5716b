package analyzer

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/user/seo-audit-service/internal/entity"
)

const (
	snippetLimit      = 8000
	minMainTextLength = 50
	thinContentWords  = 200
	shortTitleChars   = 20
	longTitleChars    = 80
	shortMetaChars    = 50
	longMetaChars     = 320
)

// Parse extracts the structural page model from raw HTML. It never fails:
// every field has an empty default for malformed or empty input.
func Parse(rawHTML, baseURL string) entity.ParsedPage {
	page := entity.ParsedPage{
		H1:             []string{},
		H2:             []string{},
		H3:             []string{},
		Images:         []entity.Image{},
		Issues:         []entity.Issue{},
		RawHTMLSnippet: truncateRunes(rawHTML, snippetLimit),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		page.Issues = firstPassIssues(page)
		return page
	}

	page.Title = collapse(doc.Find("title").First().Text())
	page.MetaDescription = metaDescription(doc)
	page.H1 = headings(doc, "h1")
	page.H2 = headings(doc, "h2")
	page.H3 = headings(doc, "h3")
	page.Images = images(doc, baseURL)
	page.MainText = mainText(doc)
	page.WordCount = len(strings.Fields(page.MainText))
	page.Issues = firstPassIssues(page)

	return page
}

func metaDescription(doc *goquery.Document) string {
	if s := firstMetaBy(doc, "name", "description"); s != nil {
		if content, _ := s.Attr("content"); content != "" {
			return collapse(content)
		}
	}
	if s := firstMetaBy(doc, "property", "og:description"); s != nil {
		if content, _ := s.Attr("content"); content != "" {
			return collapse(content)
		}
	}
	return ""
}

// firstMetaBy finds the first <meta> whose attr equals value, ignoring case.
func firstMetaBy(doc *goquery.Document, attr, value string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(attr); ok && strings.EqualFold(v, value) {
			found = s
			return false
		}
		return true
	})
	return found
}

func headings(doc *goquery.Document, tag string) []string {
	out := []string{}
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		out = append(out, collapse(s.Text()))
	})
	return out
}

func images(doc *goquery.Document, baseURL string) []entity.Image {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	out := []entity.Image{}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			src, _ = s.Attr("data-src")
		}
		if src == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(src))
		if err != nil {
			return
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		alt, _ := s.Attr("alt")
		out = append(out, entity.Image{Src: ref.String(), Alt: strings.TrimSpace(alt)})
	})
	return out
}

// mainText picks <main>/<article>, then the longest <div>/<section>, then <body>.
func mainText(doc *goquery.Document) string {
	container := doc.Find("main").First()
	if container.Length() == 0 {
		container = doc.Find("article").First()
	}
	if container.Length() > 0 {
		if t := joinedText(container); utf8.RuneCountInString(t) > minMainTextLength {
			return t
		}
	}

	best, bestLen := "", 0
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		t := joinedText(s)
		if n := utf8.RuneCountInString(t); n > bestLen {
			best, bestLen = t, n
		}
	})
	if bestLen > minMainTextLength {
		return best
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	return joinedText(body)
}

func firstPassIssues(page entity.ParsedPage) []entity.Issue {
	issues := []entity.Issue{}
	add := func(code, msg string) {
		issues = append(issues, entity.Issue{Code: code, Message: msg})
	}

	titleLen := utf8.RuneCountInString(page.Title)
	switch {
	case titleLen == 0:
		add("missing_title", "Title tag is missing.")
	case titleLen < shortTitleChars:
		add("short_title", "Title is very short.")
	case titleLen > longTitleChars:
		add("long_title", "Title is very long (might be truncated).")
	}

	metaLen := utf8.RuneCountInString(page.MetaDescription)
	switch {
	case metaLen == 0:
		add("missing_meta_description", "Meta description is missing.")
	case metaLen < shortMetaChars:
		add("short_meta", "Meta description is very short.")
	case metaLen > longMetaChars:
		add("long_meta", "Meta description is very long.")
	}

	switch n := len(page.H1); {
	case n == 0:
		add("missing_h1", "No H1 found.")
	case n > 1:
		add("multiple_h1", fmt.Sprintf("Multiple H1 tags found (%d).", n))
	}

	if page.WordCount < thinContentWords {
		add("thin_content", fmt.Sprintf("Low word count (%d). Consider expanding content.", page.WordCount))
	}

	missingAlt := 0
	for _, img := range page.Images {
		if img.Alt == "" {
			missingAlt++
		}
	}
	if missingAlt > 0 {
		add("missing_image_alt", fmt.Sprintf("%d images missing alt text.", missingAlt))
	}

	return issues
}

// joinedText joins the stripped text nodes under s with single spaces,
// skipping script and style contents.
func joinedText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		walkText(n, func(text string) {
			if t := strings.TrimSpace(text); t != "" {
				parts = append(parts, t)
			}
		})
	}
	return collapse(strings.Join(parts, " "))
}

// rawText concatenates the text nodes under s as-is, skipping script and style.
func rawText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		walkText(n, func(text string) { b.WriteString(text) })
	}
	return b.String()
}

func walkText(n *html.Node, fn func(string)) {
	if n.Type == html.TextNode {
		fn(n.Data)
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "template") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, fn)
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}
