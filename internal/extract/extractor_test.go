package extract

import (
	"math"
	"strings"
	"testing"
)

// richPage exercises most of the signals the extractor collects.
const richPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="A fine test page">
<title>Test Page</title>
<link rel="icon" href="/favicon.ico">
<link rel="stylesheet" href="/main.css">
<script type="application/ld+json">{"@type":"Organization"}</script>
<style>body { color: red; }</style>
</head>
<body>
<header><h2>Header Heading</h2><a href="/home">Home</a></header>
<nav><a href="/about">About</a></nav>
<h1>Main Heading</h1>
<p>Welcome to the test page with content.</p>
<h2>Features</h2>
<img src="/one.png" alt="First image">
<img data-src="/two.png" alt="">
<img src="data:image/png;base64,AAA" alt="inline">
<img src="/one.png" alt="duplicate">
<a href="/pricing">Pricing</a>
<a href="https://other.example.net/page">Elsewhere</a>
<a href="https://github.com/acme">Our code</a>
<a href="#section">Jump</a>
<a href="mailto:hi@example.com">Mail</a>
<form action="/subscribe"><input name="q"></form>
<script src="/app.js"></script>
<footer><p>Privacy Policy</p><a href="/contact">Contact us</a></footer>
</body>
</html>`

func TestExtractorSnapshot(t *testing.T) {
	t.Parallel()

	e := New()
	snap, err := e.Snapshot(richPage, "https://example.com/", 1.23)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("metadata", func(t *testing.T) {
		t.Parallel()

		if snap.URL != "https://example.com/" {
			t.Errorf("unexpected URL: %q", snap.URL)
		}
		if snap.Title != "Test Page" {
			t.Errorf("expected title 'Test Page', got %q", snap.Title)
		}
		if snap.MetaDescription != "A fine test page" {
			t.Errorf("unexpected meta description: %q", snap.MetaDescription)
		}
		if snap.LoadTimeSeconds != 1.23 {
			t.Errorf("expected load time 1.23, got %f", snap.LoadTimeSeconds)
		}
		wantKB := math.Round(float64(len(richPage))/1024*10) / 10
		if snap.HTMLSizeKB != wantKB {
			t.Errorf("expected size %f KB, got %f", wantKB, snap.HTMLSizeKB)
		}
	})

	t.Run("boolean signals", func(t *testing.T) {
		t.Parallel()

		if !snap.HasSSL {
			t.Error("expected HasSSL for https URL")
		}
		if !snap.HasViewportMeta {
			t.Error("expected viewport meta to be detected")
		}
		if !snap.HasCharset {
			t.Error("expected charset to be detected")
		}
		if !snap.HasLangAttr {
			t.Error("expected lang attribute to be detected")
		}
		if !snap.HasFavicon {
			t.Error("expected favicon to be detected")
		}
		if !snap.HasStructuredData {
			t.Error("expected JSON-LD structured data to be detected")
		}
		if !snap.HasPrivacyPolicy {
			t.Error("expected privacy policy mention to be detected")
		}
		if !snap.HasContactInfo {
			t.Error("expected contact info to be detected")
		}
	})

	t.Run("text content skips chrome elements", func(t *testing.T) {
		t.Parallel()

		if !strings.Contains(snap.TextContent, "Welcome to the test page") {
			t.Errorf("expected body text in content, got %q", snap.TextContent)
		}
		if !strings.Contains(snap.TextContent, "Test Page") {
			t.Errorf("expected title text in content, got %q", snap.TextContent)
		}
		if strings.Contains(snap.TextContent, "Header Heading") {
			t.Error("expected header text to be excluded")
		}
		if strings.Contains(snap.TextContent, "Privacy Policy") {
			t.Error("expected footer text to be excluded")
		}
		if strings.Contains(snap.TextContent, "color: red") {
			t.Error("expected style text to be excluded")
		}
		if strings.Contains(snap.TextContent, "Organization") {
			t.Error("expected script text to be excluded")
		}
	})

	t.Run("headings exclude chrome elements", func(t *testing.T) {
		t.Parallel()

		if got := snap.Headings["h1"]; len(got) != 1 || got[0] != "Main Heading" {
			t.Errorf("unexpected h1 headings: %v", got)
		}
		if got := snap.Headings["h2"]; len(got) != 1 || got[0] != "Features" {
			t.Errorf("unexpected h2 headings: %v", got)
		}
		if snap.HeadingCount() != 2 {
			t.Errorf("expected 2 headings, got %d", snap.HeadingCount())
		}
	})

	t.Run("images deduplicate and resolve", func(t *testing.T) {
		t.Parallel()

		want := []string{"https://example.com/one.png", "https://example.com/two.png"}
		if len(snap.ImageURLs) != len(want) {
			t.Fatalf("expected %d images, got %v", len(want), snap.ImageURLs)
		}
		for i, u := range want {
			if snap.ImageURLs[i] != u {
				t.Errorf("image %d: expected %q, got %q", i, u, snap.ImageURLs[i])
			}
		}

		// First occurrence wins for alt text.
		if alt := snap.ImageAltTexts["https://example.com/one.png"]; alt != "First image" {
			t.Errorf("unexpected alt text: %q", alt)
		}
		if alt, ok := snap.ImageAltTexts["https://example.com/two.png"]; !ok || alt != "" {
			t.Errorf("expected empty alt entry for data-src image, got %q (present=%v)", alt, ok)
		}
	})

	t.Run("links classify by host", func(t *testing.T) {
		t.Parallel()

		if len(snap.InternalLinks) != 4 {
			t.Errorf("expected 4 internal links, got %v", snap.InternalLinks)
		}
		if len(snap.ExternalLinks) != 2 {
			t.Errorf("expected 2 external links, got %v", snap.ExternalLinks)
		}
		if len(snap.SocialLinks) != 1 || !strings.Contains(snap.SocialLinks[0], "github.com") {
			t.Errorf("expected one GitHub social link, got %v", snap.SocialLinks)
		}
	})

	t.Run("element counts", func(t *testing.T) {
		t.Parallel()

		if snap.FormCount != 1 {
			t.Errorf("expected 1 form, got %d", snap.FormCount)
		}
		if snap.ScriptCount != 2 {
			t.Errorf("expected 2 scripts, got %d", snap.ScriptCount)
		}
		if snap.StylesheetCount != 1 {
			t.Errorf("expected 1 stylesheet, got %d", snap.StylesheetCount)
		}
	})
}

func TestExtractorSnapshotEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("minimal page has no optional signals", func(t *testing.T) {
		t.Parallel()

		e := New()
		snap, err := e.Snapshot("<html><body><p>hi</p></body></html>", "http://example.com/", 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if snap.Title != "" {
			t.Errorf("expected empty title, got %q", snap.Title)
		}
		if snap.HasSSL {
			t.Error("expected HasSSL false for http URL")
		}
		if snap.HasViewportMeta || snap.HasCharset || snap.HasLangAttr ||
			snap.HasFavicon || snap.HasStructuredData {
			t.Error("expected all boolean signals false")
		}
		if len(snap.ImageURLs) != 0 || len(snap.InternalLinks) != 0 {
			t.Error("expected no images or links")
		}
		if snap.TextContent != "hi" {
			t.Errorf("expected text 'hi', got %q", snap.TextContent)
		}
	})

	t.Run("image cap respects document order", func(t *testing.T) {
		t.Parallel()

		page := `<html><body>
<img src="/a.png"><img src="/b.png"><img src="/c.png"><img src="/d.png">
</body></html>`

		e := New(WithMaxImages(2))
		snap, err := e.Snapshot(page, "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(snap.ImageURLs) != 2 {
			t.Fatalf("expected 2 capped images, got %v", snap.ImageURLs)
		}
		if snap.ImageURLs[0] != "https://example.com/a.png" || snap.ImageURLs[1] != "https://example.com/b.png" {
			t.Errorf("expected first two images in document order, got %v", snap.ImageURLs)
		}

		// The alt map still records every image on the page.
		if len(snap.ImageAltTexts) != 4 {
			t.Errorf("expected 4 alt entries, got %d", len(snap.ImageAltTexts))
		}
	})

	t.Run("zero max images keeps alt census only", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><img src="/a.png" alt="a"></body></html>`

		e := New(WithMaxImages(0))
		snap, err := e.Snapshot(page, "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(snap.ImageURLs) != 0 {
			t.Errorf("expected no capped images, got %v", snap.ImageURLs)
		}
		if len(snap.ImageAltTexts) != 1 {
			t.Errorf("expected 1 alt entry, got %d", len(snap.ImageAltTexts))
		}
	})

	t.Run("max text chars truncates runes", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><p>hello wide world</p></body></html>`

		e := New(WithMaxTextChars(5))
		snap, err := e.Snapshot(page, "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if snap.TextContent != "hello" {
			t.Errorf("expected truncated text 'hello', got %q", snap.TextContent)
		}
	})

	t.Run("empty heading still counts", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><h1></h1></body></html>`

		e := New()
		snap, err := e.Snapshot(page, "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := snap.Headings["h1"]; len(got) != 1 || got[0] != "" {
			t.Errorf("expected one empty h1 entry, got %v", got)
		}
	})

	t.Run("charset via http-equiv", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"></head><body></body></html>`

		e := New()
		snap, err := e.Snapshot(page, "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !snap.HasCharset {
			t.Error("expected charset via http-equiv to be detected")
		}
	})

	t.Run("nested heading markup joins with spaces", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><h1>Big <em>deal</em></h1></body></html>`

		e := New()
		snap, err := e.Snapshot(page, "https://example.com/", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := snap.Headings["h1"]; len(got) != 1 || got[0] != "Big deal" {
			t.Errorf("expected 'Big deal', got %v", got)
		}
	})

	t.Run("invalid final URL returns error", func(t *testing.T) {
		t.Parallel()

		e := New()
		if _, err := e.Snapshot("<html></html>", "http://bad url/", 0); err == nil {
			t.Error("expected error for invalid URL")
		}
	})
}
