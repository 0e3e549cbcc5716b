package chromedp_fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/internal/repository"
	"github.com/user/seo-audit-service/pkg/metrics"
	"github.com/user/seo-audit-service/pkg/utils"
)

const metricsMode = "chromedp"

// ChromedpFetcher renders pages in headless Chrome before returning their HTML.
type ChromedpFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// NewChromedpFetcher starts one browser allocator shared by every fetch.
func NewChromedpFetcher(userAgent string, logger *zap.Logger, m *metrics.Metrics) (repository.Fetcher, func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	f := &ChromedpFetcher{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		logger:      logger,
		metrics:     m,
	}
	return f, f.Close
}

func (f *ChromedpFetcher) Close() {
	f.allocCancel()
}

// Fetch navigates to the URL and returns the rendered outer HTML. The status
// code comes from the main document's network response.
func (f *ChromedpFetcher) Fetch(ctx context.Context, rawURL string, timeout time.Duration) entity.FetchResult {
	target := utils.EnsureScheme(rawURL)
	start := time.Now()

	res := f.fetch(ctx, target, timeout)

	f.metrics.ObserveFetch(metricsMode, res.OK, time.Since(start))
	if !res.OK {
		f.logger.Warn("rendered fetch failed", zap.String("url", target), zap.String("error", res.Error))
	}
	return res
}

func (f *ChromedpFetcher) fetch(ctx context.Context, target string, timeout time.Duration) entity.FetchResult {
	taskCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, timeout)
	defer cancelTimeout()

	// Stop the browser tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu     sync.Mutex
		status int
	)
	chromedp.ListenTarget(taskCtx, func(ev any) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			mu.Lock()
			status = int(e.Response.Status)
			mu.Unlock()
		}
	})

	var html, finalURL string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	mu.Lock()
	code := status
	mu.Unlock()

	if finalURL == "" {
		finalURL = target
	}
	if err != nil {
		res := entity.FetchResult{
			FinalURL: finalURL,
			Error:    err.Error(),
			Timeout:  errors.Is(taskCtx.Err(), context.DeadlineExceeded),
		}
		if code != 0 {
			res.StatusCode = entity.IntPtr(code)
		}
		return res
	}

	if code == 0 {
		code = http.StatusOK
	}
	if code < 200 || code > 299 {
		return entity.FetchResult{
			StatusCode: entity.IntPtr(code),
			FinalURL:   finalURL,
			Error:      fmt.Sprintf("%d %s for url: %s", code, http.StatusText(code), finalURL),
		}
	}

	return entity.FetchResult{
		OK:         true,
		StatusCode: entity.IntPtr(code),
		FinalURL:   finalURL,
		HTML:       html,
	}
}
