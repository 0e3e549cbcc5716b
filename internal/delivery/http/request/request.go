package request

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	URL       string `json:"url"`
	CrawlSite bool   `json:"crawl_site"`
	ForceLLM  bool   `json:"force_llm"`
	MaxPages  int    `json:"max_pages"` // crawl only; capped by CRAWL_MAX_PAGES
}

type LinkGapRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}
