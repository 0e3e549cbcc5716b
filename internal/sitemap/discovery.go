package sitemap

import (
	"context"
	"net/http"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/pkg/utils"
)

// ConventionalPaths are probed on every site in addition to robots.txt entries.
var ConventionalPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemaps/sitemap.xml",
	"/sitemap1.xml",
}

// Discover lists candidate sitemap URLs for the site of baseURL: robots.txt
// Sitemap directives first, then the conventional paths. The list is
// deduplicated in discovery order. An unreachable robots.txt is not an error.
func Discover(ctx context.Context, fetcher repository.Fetcher, baseURL string, timeout time.Duration) []string {
	root := utils.SiteRoot(baseURL)

	var found []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		found = append(found, u)
	}

	res := fetcher.Fetch(ctx, root+"/robots.txt", timeout)
	if res.OK && res.Status() == http.StatusOK {
		if robots, err := robotstxt.FromStatusAndBytes(http.StatusOK, []byte(res.HTML)); err == nil {
			for _, sm := range robots.Sitemaps {
				add(sm)
			}
		}
	}

	for _, p := range ConventionalPaths {
		add(root + p)
	}
	return found
}
