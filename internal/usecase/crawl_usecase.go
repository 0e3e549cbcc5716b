package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/seo-audit-service/internal/analyzer"
	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/internal/sitemap"
	"github.com/user/seo-audit-service/pkg/errs"
	"github.com/user/seo-audit-service/pkg/metrics"
	"github.com/user/seo-audit-service/pkg/utils"
)

const (
	// NoPagesDiscovered is the CrawlResult error when every discovery strategy came up empty.
	NoPagesDiscovered = "Could not discover pages from sitemap or by crawling"

	DiscoverySitemap = "sitemap"
	DiscoveryCrawl   = "crawl"

	fallbackMaxDepth = 2
	defaultMaxPages  = 500
	defaultFallback  = 50
	archiveTimeout   = 10 * time.Second
)

// CrawlRequest describes a site crawl. MaxPages <= 0 selects the configured limit.
type CrawlRequest struct {
	BaseURL  string
	MaxPages int
	ForceLLM bool
}

// CrawlOptions bounds a crawl. SitemapFetcher reads robots.txt and sitemap
// documents; nil means the page fetcher is used for them too.
type CrawlOptions struct {
	SitemapFetcher   repository.Fetcher
	MaxURLs          int
	MaxPages         int
	FallbackMaxPages int
	Workers          int
	PageTimeout      time.Duration
	SitemapTimeout   time.Duration
	CrawlTimeout     time.Duration
	ForceLLMPerPage  bool
}

// CrawlService orchestrates a site crawl: sitemap discovery, URL resolution,
// a breadth-first fallback and the per-page pipeline.
type CrawlService struct {
	fetcher     repository.Fetcher
	discovery   repository.Fetcher
	resolver    *sitemap.Resolver
	analyses    repository.PageAnalysisRepository
	reports     repository.CrawlReportRepository
	suggestions *SuggestionService
	opts        CrawlOptions
	logger      *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewCrawlService creates the crawl use case. analyses, reports and
// suggestions are optional.
func NewCrawlService(
	fetcher repository.Fetcher,
	analyses repository.PageAnalysisRepository,
	reports repository.CrawlReportRepository,
	suggestions *SuggestionService,
	opts CrawlOptions,
	logger *zap.Logger,
	m *metrics.Metrics,
) *CrawlService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.MaxURLs <= 0 {
		opts.MaxURLs = opts.MaxPages
	}
	if opts.FallbackMaxPages <= 0 {
		opts.FallbackMaxPages = defaultFallback
	}
	discovery := opts.SitemapFetcher
	if discovery == nil {
		discovery = fetcher
	}
	return &CrawlService{
		fetcher:     fetcher,
		discovery:   discovery,
		resolver:    sitemap.NewResolver(discovery, opts.SitemapTimeout, logger),
		analyses:    analyses,
		reports:     reports,
		suggestions: suggestions,
		opts:        opts,
		logger:      logger,
		metrics:     m,
		now:         time.Now,
	}
}

// Crawl always returns a result. OK is false only when no page URL could be
// discovered. A cancelled or timed out crawl keeps the pages it finished and
// sets Partial.
func (uc *CrawlService) Crawl(ctx context.Context, req CrawlRequest) entity.CrawlResult {
	start := uc.now()
	base := utils.EnsureScheme(strings.TrimSpace(req.BaseURL))
	maxPages := uc.pageLimit(req.MaxPages)

	if uc.opts.CrawlTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.CrawlTimeout)
		defer cancel()
	}

	result := entity.CrawlResult{
		OK:      true,
		BaseURL: base,
		Pages:   []entity.PageOutcome{},
	}

	result.SitemapsFound = sitemap.Discover(ctx, uc.discovery, base, uc.opts.SitemapTimeout)
	urls := uc.resolver.Resolve(ctx, result.SitemapsFound, min(uc.opts.MaxURLs, maxPages))
	result.DiscoveryMethod = DiscoverySitemap

	if len(urls) == 0 {
		uc.logger.Info("No URLs from sitemaps, falling back to link crawl", zap.String("base_url", base))
		urls = uc.fallbackCrawl(ctx, base, min(uc.opts.FallbackMaxPages, maxPages))
		result.DiscoveryMethod = DiscoveryCrawl
	}
	if len(urls) > maxPages {
		urls = urls[:maxPages]
	}

	if len(urls) == 0 {
		result.OK = false
		result.Error = NoPagesDiscovered
		result.DiscoveryMethod = ""
		result.AnalyzedAt = uc.now().UTC()
		uc.metrics.ObserveCrawl("no_pages", uc.now().Sub(start))
		uc.logger.Warn("Crawl discovered no pages", zap.String("base_url", base))
		return result
	}

	withSuggestions := req.ForceLLM || uc.opts.ForceLLMPerPage
	result.Pages, result.Partial = uc.analyzePages(ctx, urls, withSuggestions, req.ForceLLM)
	for _, p := range result.Pages {
		if p.Status == entity.PageStatusSuccess {
			result.PagesAnalyzed++
		} else {
			result.PagesFailed++
		}
	}
	result.AnalyzedAt = uc.now().UTC()

	uc.archive(ctx, &result)

	status := "success"
	if result.Partial {
		status = "partial"
	}
	elapsed := uc.now().Sub(start)
	uc.metrics.ObserveCrawl(status, elapsed)
	uc.logger.Info("Crawl finished",
		zap.String("base_url", base),
		zap.String("discovery", result.DiscoveryMethod),
		zap.Int("pages_analyzed", result.PagesAnalyzed),
		zap.Int("pages_failed", result.PagesFailed),
		zap.Bool("partial", result.Partial),
		zap.Duration("duration", elapsed),
	)
	return result
}

// Latest returns the most recent archived crawl of baseURL.
func (uc *CrawlService) Latest(ctx context.Context, baseURL string) (*entity.CrawlResult, error) {
	if uc.reports == nil {
		return nil, errs.New(errs.Unavailable, "crawl archive is not configured", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrURLMissing
	}
	res, err := uc.reports.Latest(ctx, utils.EnsureScheme(baseURL))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.NotFound, "no crawl archived for base_url", err)
		}
		return nil, err
	}
	return res, nil
}

func (uc *CrawlService) pageLimit(requested int) int {
	if requested > 0 && requested < uc.opts.MaxPages {
		return requested
	}
	return uc.opts.MaxPages
}

// fallbackCrawl walks same-host links breadth first from root, up to depth 2,
// and returns the distinct final URLs of pages that fetched successfully.
func (uc *CrawlService) fallbackCrawl(ctx context.Context, root string, limit int) []string {
	type queued struct {
		url   string
		depth int
	}

	root = utils.StripFragment(root)
	// Links are followed when they share a host with one of these.
	allowed := []string{root}
	queue := []queued{{url: root}}
	enqueued := map[string]bool{root: true}
	visited := make(map[string]bool)
	var found []string
	collected := make(map[string]bool)

	for len(queue) > 0 && len(found) < limit {
		if ctx.Err() != nil {
			break
		}
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.url] {
			continue
		}
		visited[cur.url] = true

		res := uc.fetcher.Fetch(ctx, cur.url, uc.opts.PageTimeout)
		if !res.OK {
			uc.logger.Debug("Fallback crawl fetch failed", zap.String("url", cur.url), zap.String("error", res.Error))
			continue
		}

		final := utils.StripFragment(res.FinalURL)
		visited[final] = true
		if cur.depth == 0 {
			// Follow a redirect of the root onto another host, e.g. www.
			allowed = append(allowed, final)
		}
		if !collected[final] {
			collected[final] = true
			found = append(found, final)
		}

		if cur.depth >= fallbackMaxDepth {
			continue
		}
		for _, link := range extractLinks(res.HTML, final) {
			if !sameSite(link, allowed) || visited[link] || enqueued[link] {
				continue
			}
			enqueued[link] = true
			queue = append(queue, queued{url: link, depth: cur.depth + 1})
		}
	}
	return found
}

func sameSite(link string, allowed []string) bool {
	for _, a := range allowed {
		if utils.SameHost(link, a) {
			return true
		}
	}
	return false
}

// extractLinks returns absolute, fragment-free http(s) links of a document in order.
func extractLinks(rawHTML, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs, err := utils.ToAbsoluteURL(base, href)
		if err != nil {
			return
		}
		if !strings.HasPrefix(abs, "http://") && !strings.HasPrefix(abs, "https://") {
			return
		}
		links = append(links, utils.StripFragment(abs))
	})
	return links
}

// analyzePages runs the per-page pipeline on a bounded pool. Results keep the
// order of urls; pages never started because ctx ended are left out.
func (uc *CrawlService) analyzePages(ctx context.Context, urls []string, withSuggestions, force bool) ([]entity.PageOutcome, bool) {
	outcomes := make([]entity.PageOutcome, len(urls))
	started := make([]bool, len(urls))

	// A plain group: one page's failure must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(uc.opts.Workers)
	for i, pageURL := range urls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			started[i] = true
			outcomes[i] = uc.analyzePage(ctx, pageURL, withSuggestions, force)
			uc.metrics.IncCrawlPage(outcomes[i].Status)
			return nil
		})
	}
	_ = g.Wait()

	pages := make([]entity.PageOutcome, 0, len(urls))
	partial := false
	for i := range urls {
		if !started[i] {
			partial = true
			continue
		}
		pages = append(pages, outcomes[i])
	}
	return pages, partial
}

func (uc *CrawlService) analyzePage(ctx context.Context, pageURL string, withSuggestions, force bool) (out entity.PageOutcome) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Recovered panic while analyzing page", zap.String("url", pageURL), zap.Any("panic", r))
			out = entity.PageOutcome{URL: pageURL, Status: entity.PageStatusError, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	fetched := uc.fetcher.Fetch(ctx, pageURL, uc.opts.PageTimeout)
	if !fetched.OK {
		return entity.PageOutcome{URL: pageURL, Status: entity.PageStatusError, Error: fetched.Error}
	}

	page := analyzer.Parse(fetched.HTML, fetched.FinalURL)
	basic := analyzer.RunBasicRules(page)

	var analysisID int64
	if uc.analyses != nil {
		snapshot := entity.NewPageAnalysis(fetched.FinalURL, fetched.Status(), page, basic.Score, basic.Breakdown, basic.Issues)
		if err := uc.analyses.SaveAnalysis(ctx, snapshot); err != nil {
			uc.metrics.IncStorageError("postgres")
			uc.logger.Error("Failed to save crawl page analysis", zap.String("url", fetched.FinalURL), zap.Error(err))
		} else {
			analysisID = snapshot.ID
		}
	}

	if withSuggestions && uc.suggestions != nil {
		llmPage := page
		llmPage.Issues = analyzer.FormatIssues(basic.Issues)
		sugg := uc.suggestions.Suggest(ctx, fetched.FinalURL, llmPage, force)
		if analysisID != 0 {
			if err := uc.analyses.AttachSuggestions(ctx, analysisID, sugg.Suggestions, sugg.Model, sugg.GeneratedAt); err != nil {
				uc.metrics.IncStorageError("postgres")
				uc.logger.Warn("Failed to attach crawl suggestions", zap.String("url", fetched.FinalURL), zap.Error(err))
			}
		}
	}

	return entity.PageOutcome{
		URL:         fetched.FinalURL,
		Status:      entity.PageStatusSuccess,
		StatusCode:  fetched.Status(),
		Score:       basic.Score,
		Title:       page.Title,
		IssuesCount: len(basic.Issues),
	}
}

// archive stores the finished crawl. It outlives the crawl deadline so a
// partial result is still recorded.
func (uc *CrawlService) archive(ctx context.Context, result *entity.CrawlResult) {
	if uc.reports == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if err := uc.reports.Save(ctx, result); err != nil {
		uc.metrics.IncStorageError("mongo")
		uc.logger.Error("Failed to archive crawl report", zap.String("base_url", result.BaseURL), zap.Error(err))
	}
}
