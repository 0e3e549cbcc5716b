package httpfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/user/seo-audit-service/internal/entity"
	"github.com/user/seo-audit-service/pkg/metrics"
	"github.com/user/seo-audit-service/pkg/utils"
)

const (
	maxRedirects    = 10
	maxResponseBody = 10 << 20
	defaultTimeout  = 15 * time.Second
	acceptHeader    = "text/html,application/xhtml+xml,application/xml"
	metricsMode     = "http"

	DefaultUserAgent = "SEO-AI-Checker/1.0 (+https://example.com)"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	UserAgent            string
	Proxies              *ProxyRotator
	AllowPrivateNetworks bool
	Logger               *zap.Logger
	Metrics              *metrics.Metrics
}

// Client fetches pages over plain HTTP. It implements repository.Fetcher.
type Client struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewClient(opts Options) *Client {
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		DialContext:         newDialer(opts.AllowPrivateNetworks).DialContext,
		MaxConnsPerHost:     10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.Proxies.Len() > 0 {
		transport.Proxy = guardedProxy(opts.Proxies, opts.AllowPrivateNetworks)
	}

	return &Client{
		client: &http.Client{
			Transport:     transport,
			CheckRedirect: safeRedirectPolicy,
		},
		userAgent: ua,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch performs one GET bounded by timeout. Failures are reported in the
// result: a non-2xx final status keeps its code, a transport failure has none.
func (c *Client) Fetch(ctx context.Context, rawURL string, timeout time.Duration) entity.FetchResult {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	target := utils.EnsureScheme(rawURL)
	start := time.Now()

	res := c.fetch(ctx, target, timeout)

	c.metrics.ObserveFetch(metricsMode, res.OK, time.Since(start))
	if !res.OK {
		c.logger.Debug("fetch failed",
			zap.String("url", target),
			zap.Int("status", res.Status()),
			zap.String("error", res.Error),
		)
	}
	return res
}

func (c *Client) fetch(ctx context.Context, target string, timeout time.Duration) entity.FetchResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failed := func(err error) entity.FetchResult {
		return entity.FetchResult{
			FinalURL: target,
			Error:    err.Error(),
			Timeout:  isTimeout(err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failed(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.client.Do(req)
	if err != nil {
		return failed(err)
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	status := resp.StatusCode

	if status < 200 || status > 299 {
		return entity.FetchResult{
			StatusCode: entity.IntPtr(status),
			FinalURL:   finalURL,
			Error:      fmt.Sprintf("%d %s for url: %s", status, http.StatusText(status), finalURL),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		res := failed(err)
		res.StatusCode = entity.IntPtr(status)
		res.FinalURL = finalURL
		return res
	}

	return entity.FetchResult{
		OK:         true,
		StatusCode: entity.IntPtr(status),
		FinalURL:   finalURL,
		HTML:       decodeBody(raw, resp.Header.Get("Content-Type")),
	}
}

// decodeBody converts HTML and text bodies to UTF-8. XML documents are
// returned byte for byte so the XML decoder can honour their encoding
// declaration.
func decodeBody(raw []byte, contentType string) string {
	if isXML(raw, contentType) {
		return string(raw)
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return string(raw)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func isXML(raw []byte, contentType string) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/xhtml+xml", mediaType == "text/html":
		return false
	case mediaType == "application/xml", mediaType == "text/xml", strings.HasSuffix(mediaType, "+xml"):
		return true
	case mediaType == "" || mediaType == "application/octet-stream":
		head := bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
		return bytes.HasPrefix(bytes.TrimLeft(head, " \t\r\n"), []byte("<?xml"))
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
