package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
)

// fakeFetcher serves canned HTML keyed by URL; unknown URLs answer 404.
// redirects maps a requested URL onto the final URL reported back.
type fakeFetcher struct {
	mu        sync.Mutex
	pages     map[string]string
	redirects map[string]string
	failures  map[string]entity.FetchResult
	calls     []string
	onFetch   func(url string)
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, redirects: map[string]string{}, failures: map[string]entity.FetchResult{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ time.Duration) entity.FetchResult {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook(url)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if res, ok := f.failures[url]; ok {
		return res
	}
	final := url
	if to, ok := f.redirects[url]; ok {
		final = to
	}
	body, ok := f.pages[final]
	if !ok {
		return entity.FetchResult{OK: false, StatusCode: entity.IntPtr(404), FinalURL: final, Error: "404 Not Found for url: " + final}
	}
	return entity.FetchResult{OK: true, StatusCode: entity.IntPtr(200), FinalURL: final, HTML: body}
}

func (f *fakeFetcher) fetched(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

type fakeAnalysisRepo struct {
	mu       sync.Mutex
	saved    []*entity.PageAnalysis
	attached map[int64]string
	saveErr  error
	nextID   int64
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{attached: map[int64]string{}}
}

func (r *fakeAnalysisRepo) SaveAnalysis(_ context.Context, a *entity.PageAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.nextID++
	a.ID = r.nextID
	a.PageID = 100 + r.nextID
	r.saved = append(r.saved, a)
	return nil
}

func (r *fakeAnalysisRepo) AttachSuggestions(_ context.Context, id int64, _ entity.Suggestions, model string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attached[id] = model
	return nil
}

func (r *fakeAnalysisRepo) LatestByURL(_ context.Context, url string) (*entity.PageAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].URL == url {
			return r.saved[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeHistoryRepo struct {
	mu   sync.Mutex
	rows []*entity.AuditHistory
}

func (r *fakeHistoryRepo) Append(_ context.Context, h *entity.AuditHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, h)
	return nil
}

func (r *fakeHistoryRepo) ListByURL(_ context.Context, url string, limit int) ([]*entity.AuditHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AuditHistory
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].URL == url {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

type fakeReportRepo struct {
	mu    sync.Mutex
	saved []entity.CrawlResult
}

func (r *fakeReportRepo) Save(_ context.Context, res *entity.CrawlResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *res)
	return nil
}

func (r *fakeReportRepo) Latest(_ context.Context, baseURL string) (*entity.CrawlResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.saved) - 1; i >= 0; i-- {
		if r.saved[i].BaseURL == baseURL {
			res := r.saved[i]
			return &res, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeCache struct {
	mu      sync.Mutex
	records map[string]entity.CachedSuggestion
	ttls    map[string]time.Duration
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: map[string]entity.CachedSuggestion{}, ttls: map[string]time.Duration{}}
}

func (c *fakeCache) Get(_ context.Context, url string) (*entity.CachedSuggestion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	rec, ok := c.records[url]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return &rec, nil
}

func (c *fakeCache) Set(_ context.Context, url string, rec entity.CachedSuggestion, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[url] = rec
	c.ttls[url] = ttl
	return nil
}

// fakeGenerator stands in for the LLM strategy.
type fakeGenerator struct {
	mu    sync.Mutex
	out   entity.Suggestions
	err   error
	calls int
	pages []entity.ParsedPage
}

func (g *fakeGenerator) Generate(_ context.Context, page entity.ParsedPage) (entity.Suggestions, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.pages = append(g.pages, page)
	if g.err != nil {
		return entity.Suggestions{}, g.err
	}
	return g.out, nil
}

func (g *fakeGenerator) Model() string { return "test-model" }

var errBoom = errors.New("boom")
