package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
)

// Kind tells a sitemap index apart from a urlset.
type Kind string

const (
	KindIndex  Kind = "index"
	KindURLSet Kind = "urlset"
)

// Document is a parsed sitemap: either nested sitemap locations or page locations.
type Document struct {
	Kind Kind
	Locs []string
}

type locEntry struct {
	Loc string `xml:"loc"`
}

// Tags carry no namespace so both namespaced and bare documents decode.
type rawDocument struct {
	XMLName  xml.Name
	Sitemaps []locEntry `xml:"sitemap"`
	URLs     []locEntry `xml:"url"`
}

// Parse decodes a sitemap document. When any <sitemap><loc> entries exist the
// document is an index and only those are returned.
func Parse(data []byte) (Document, error) {
	var raw rawDocument
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("decode sitemap: %w", err)
	}

	if locs := collectLocs(raw.Sitemaps); len(locs) > 0 {
		return Document{Kind: KindIndex, Locs: locs}, nil
	}
	return Document{Kind: KindURLSet, Locs: collectLocs(raw.URLs)}, nil
}

func collectLocs(entries []locEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if loc := strings.TrimSpace(e.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out
}
