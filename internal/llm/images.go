package llm

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	// Registered so DecodeConfig recognizes the common web formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Image fetch limits.
const (
	// imageFetchTimeout bounds a single image download. Images are an
	// enrichment, not a requirement, so they get a tighter budget than
	// the page fetch itself.
	imageFetchTimeout = 10 * time.Second

	// maxImageBytes caps a single image payload at 8 MiB.
	maxImageBytes = 8 << 20
)

// Image is a downloaded, validated image ready for a vision request.
type Image struct {
	// MIMEType is the detected media type, such as "image/png".
	MIMEType string

	// Data is the raw image payload.
	Data []byte
}

// Fetcher downloads and validates a single image. Any failure, from a
// network error to undecodable bytes, returns a nil image and an error;
// callers skip the image and move on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Image, error)
}

// HTTPFetcher fetches images over plain HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithFetchClient replaces the underlying HTTP client, mainly for tests.
func WithFetchClient(client *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// NewHTTPFetcher creates an image fetcher with sane defaults.
func NewHTTPFetcher(opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads one image and verifies it decodes as a supported
// format (JPEG, PNG, or GIF).
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, imageFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // nothing to do about close errors

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	// Read one byte past the cap so oversize payloads are detectable.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d byte limit", maxImageBytes)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, ErrNotAnImage)
	}

	return &Image{
		MIMEType: "image/" + format,
		Data:     data,
	}, nil
}

// FetchAll downloads every URL through the fetcher, skipping failures.
// The returned slice preserves input order and may be empty; partial
// failure is expected and never an error.
func FetchAll(ctx context.Context, fetcher Fetcher, urls []string) []Image {
	images := make([]Image, 0, len(urls))
	for _, url := range urls {
		img, err := fetcher.Fetch(ctx, url)
		if err != nil {
			continue
		}
		images = append(images, *img)
	}
	return images
}

// Ensure HTTPFetcher implements Fetcher.
var _ Fetcher = (*HTTPFetcher)(nil)
