package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// tinyPNG is a valid 1x1 PNG, enough for DecodeConfig to verify.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// TestHTTPFetcherFetch tests downloading and validating a real image.
func TestHTTPFetcherFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		if _, err := w.Write(tinyPNG); err != nil {
			t.Errorf("write image: %v", err)
		}
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher()
	img, err := fetcher.Fetch(context.Background(), server.URL+"/logo.png")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, expected %q", img.MIMEType, "image/png")
	}
	if len(img.Data) != len(tinyPNG) {
		t.Errorf("Data length = %d, expected %d", len(img.Data), len(tinyPNG))
	}
}

// TestHTTPFetcherNotAnImage tests rejection of non-image payloads.
func TestHTTPFetcherNotAnImage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("<html><body>not an image</body></html>")); err != nil {
			t.Errorf("write body: %v", err)
		}
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher()
	if _, err := fetcher.Fetch(context.Background(), server.URL); !errors.Is(err, ErrNotAnImage) {
		t.Errorf("error = %v, expected ErrNotAnImage", err)
	}
}

// TestHTTPFetcherStatusError tests rejection of error statuses.
func TestHTTPFetcherStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher()
	if _, err := fetcher.Fetch(context.Background(), server.URL+"/missing.png"); err == nil {
		t.Error("expected an error for status 404")
	}
}

// TestFetchAll tests that failures are skipped and order preserved.
func TestFetchAll(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.png" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(tinyPNG); err != nil {
			t.Errorf("write image: %v", err)
		}
	}))
	defer server.Close()

	urls := []string{
		server.URL + "/a.png",
		server.URL + "/broken.png",
		server.URL + "/b.png",
	}

	images := FetchAll(context.Background(), NewHTTPFetcher(), urls)
	if len(images) != 2 {
		t.Fatalf("got %d images, expected 2 (broken one skipped)", len(images))
	}
	for i, img := range images {
		if img.MIMEType != "image/png" {
			t.Errorf("image %d MIMEType = %q, expected png", i, img.MIMEType)
		}
	}
}

// TestFetchAllEmpty tests the no-survivors case.
func TestFetchAllEmpty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	images := FetchAll(context.Background(), NewHTTPFetcher(), []string{server.URL + "/x.png"})
	if len(images) != 0 {
		t.Errorf("got %d images, expected none", len(images))
	}
}
