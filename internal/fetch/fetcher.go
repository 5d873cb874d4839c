package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/config"
)

// Result holds the outcome of a page fetch.
type Result struct {
	// HTML is the page body.
	HTML string

	// FinalURL is the URL after following redirects.
	FinalURL string

	// LoadTimeSeconds is how long the fetch took, including reading
	// the body, rounded to two decimal places.
	LoadTimeSeconds float64

	// StatusCode is the final HTTP status code.
	StatusCode int
}

// Fetcher retrieves web pages for analysis.
//
// Design decision: We use a struct with the http.Client rather than
// passing the client on each call because:
//  1. Client configuration (timeouts, redirects) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with a pointed-at httptest server
type Fetcher struct {
	// client is the HTTP client used for all page requests.
	client *http.Client

	// userAgent is the User-Agent header to use for requests.
	// Default simulates a standard browser; many sites serve bots a
	// stripped-down page that would skew every score.
	userAgent string

	// maxBodySize limits the response body size in bytes.
	maxBodySize int64

	// sites holds per-host request overrides (cookies, headers).
	sites *config.File

	// logger receives fetch diagnostics.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client. Mainly used by tests to
// point the fetcher at a local server.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithSiteOverrides sets per-host request overrides loaded from the
// configuration file.
func WithSiteOverrides(sites *config.File) Option {
	return func(f *Fetcher) {
		f.sites = sites
	}
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher with the given per-request timeout.
func New(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: timeout},
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// NormalizeURL ensures the URL has a scheme. Bare hostnames get https
// so that "example.com" on the command line just works.
func NormalizeURL(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}

// Fetch retrieves the page at rawURL. Redirects are followed; the
// returned Result carries the final URL and status code. The load time
// covers the request and the full body read, matching what a browser
// would wait for before it can start rendering.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	pageURL := NormalizeURL(rawURL)

	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	f.applySiteOverrides(req, u.Hostname())

	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %d %s", ErrBadStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// Read one byte past the cap so an at-limit body is distinguishable
	// from an over-limit one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", pageURL, err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrPageTooLarge, f.maxBodySize)
	}

	loadTime := roundSeconds(time.Since(start).Seconds())

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	f.logger.Debug("page fetched",
		slog.String("url", finalURL),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Float64("load_time_seconds", loadTime),
	)

	return &Result{
		HTML:            string(body),
		FinalURL:        finalURL,
		LoadTimeSeconds: loadTime,
		StatusCode:      resp.StatusCode,
	}, nil
}

// applySiteOverrides applies per-host cookies, headers, and User-Agent
// from the configuration file.
func (f *Fetcher) applySiteOverrides(req *http.Request, host string) {
	if f.sites == nil {
		return
	}

	site := f.sites.GetSiteConfig(host)
	if site.Cookie != "" {
		req.Header.Set("Cookie", site.Cookie)
	}
	if site.UserAgent != "" {
		req.Header.Set("User-Agent", site.UserAgent)
	}
	for k, v := range site.Headers {
		req.Header.Set(k, v)
	}
}

// roundSeconds rounds a duration in seconds to two decimal places.
func roundSeconds(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}
