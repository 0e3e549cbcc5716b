package sitemap

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/repository"
)

// Resolver expands sitemap URLs into page URLs breadth-first.
type Resolver struct {
	fetcher repository.Fetcher
	timeout time.Duration
	logger  *zap.Logger
}

func NewResolver(fetcher repository.Fetcher, timeout time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{fetcher: fetcher, timeout: timeout, logger: logger}
}

// Resolve walks the sitemap queue until maxURLs page URLs are collected or the
// queue is empty. Sitemaps are fetched at most once; only 200 responses are
// parsed and malformed documents are skipped.
func (r *Resolver) Resolve(ctx context.Context, sitemaps []string, maxURLs int) []string {
	if maxURLs <= 0 {
		return []string{}
	}

	queue := append([]string(nil), sitemaps...)
	visited := make(map[string]struct{})
	pages := []string{}
	seenPages := make(map[string]struct{})

	for len(queue) > 0 && len(pages) < maxURLs {
		if ctx.Err() != nil {
			r.logger.Warn("sitemap resolution cancelled", zap.Int("pages", len(pages)))
			break
		}

		current := queue[0]
		queue = queue[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}

		res := r.fetcher.Fetch(ctx, current, r.timeout)
		if !res.OK || res.Status() != http.StatusOK {
			r.logger.Debug("sitemap not available",
				zap.String("sitemap", current),
				zap.Int("status", res.Status()),
				zap.String("error", res.Error),
			)
			continue
		}

		doc, err := Parse([]byte(res.HTML))
		if err != nil {
			r.logger.Warn("malformed sitemap skipped", zap.String("sitemap", current), zap.Error(err))
			continue
		}

		if doc.Kind == KindIndex {
			queue = append(queue, doc.Locs...)
			continue
		}

		for _, loc := range doc.Locs {
			if IsNestedSitemap(loc) {
				queue = append(queue, loc)
				continue
			}
			if _, ok := seenPages[loc]; ok {
				continue
			}
			seenPages[loc] = struct{}{}
			pages = append(pages, loc)
			if len(pages) >= maxURLs {
				break
			}
		}
	}

	r.logger.Info("sitemaps resolved",
		zap.Int("sitemaps_visited", len(visited)),
		zap.Int("pages", len(pages)),
	)
	return pages
}

// IsNestedSitemap reports whether a urlset entry points at another sitemap:
// its path ends in .xml and mentions "sitemap".
func IsNestedSitemap(loc string) bool {
	path := loc
	if u, err := url.Parse(loc); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.ToLower(path)
	return strings.HasSuffix(path, ".xml") && strings.Contains(path, "sitemap")
}
