package extract

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/config"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// textSkipElements are elements whose text never describes the page
// content itself. Headings inside them are skipped too, so a nav menu
// full of h2 items does not inflate the structure score.
var textSkipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"header":   true,
	"footer":   true,
	"nav":      true,
}

// whitespacePattern collapses runs of whitespace in extracted text.
var whitespacePattern = regexp.MustCompile(`\s+`)

// Extractor parses page HTML into a model.Snapshot.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
type Extractor struct {
	// maxImages caps how many image URLs the snapshot carries for the
	// vision phase. Alt-text coverage still records every image found.
	maxImages int

	// maxTextChars truncates the visible text when positive.
	// Zero keeps the full text.
	maxTextChars int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxImages caps how many image URLs the snapshot carries.
func WithMaxImages(n int) Option {
	return func(e *Extractor) {
		e.maxImages = n
	}
}

// WithMaxTextChars truncates extracted text to n characters.
func WithMaxTextChars(n int) Option {
	return func(e *Extractor) {
		e.maxTextChars = n
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxImages: config.DefaultMaxImages,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Snapshot parses the page HTML and returns the signal snapshot for
// finalURL. The load time is recorded as-is; it was measured by the
// fetcher.
func (e *Extractor) Snapshot(htmlContent, finalURL string, loadTimeSeconds float64) (*model.Snapshot, error) {
	base, err := url.Parse(finalURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", finalURL, err)
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	snap := model.NewSnapshot(finalURL)
	snap.HasSSL = strings.HasPrefix(finalURL, "https://")
	snap.LoadTimeSeconds = loadTimeSeconds
	snap.HTMLSizeKB = math.Round(float64(len(htmlContent))/1024*10) / 10

	e.collectStructure(doc, base, snap)
	e.collectContent(doc, snap)

	// Keyword heuristics run over the raw HTML so matches in
	// attributes and boilerplate count too.
	lowerHTML := strings.ToLower(htmlContent)
	snap.HasPrivacyPolicy = containsAny(lowerHTML, "privacy policy", "privacy-policy", "privacypolicy")
	snap.HasContactInfo = containsAny(lowerHTML, "contact us", "contact@", "mailto:", "phone", "tel:")

	return snap, nil
}

// collectStructure walks the full document for metadata, images,
// links, and element counts.
func (e *Extractor) collectStructure(doc *html.Node, base *url.URL, snap *model.Snapshot) {
	orderedImages := make([]string, 0)
	seenTitle := false
	seenMetaDesc := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			// Microdata marks structured data on any element.
			if hasAttr(n, "itemscope") {
				snap.HasStructuredData = true
			}

			switch n.Data {
			case "html":
				if getAttr(n, "lang") != "" {
					snap.HasLangAttr = true
				}

			case "title":
				if !seenTitle {
					seenTitle = true
					snap.Title = nodeText(n)
				}

			case "meta":
				name := strings.ToLower(getAttr(n, "name"))
				if name == "description" && !seenMetaDesc {
					seenMetaDesc = true
					snap.MetaDescription = getAttr(n, "content")
				}
				if name == "viewport" {
					snap.HasViewportMeta = true
				}
				if hasAttr(n, "charset") || strings.EqualFold(getAttr(n, "http-equiv"), "content-type") {
					snap.HasCharset = true
				}

			case "link":
				rel := strings.ToLower(getAttr(n, "rel"))
				if strings.Contains(rel, "icon") {
					snap.HasFavicon = true
				}
				if strings.Contains(rel, "stylesheet") {
					snap.StylesheetCount++
				}

			case "script":
				snap.ScriptCount++
				if strings.EqualFold(getAttr(n, "type"), "application/ld+json") {
					snap.HasStructuredData = true
				}

			case "form":
				snap.FormCount++

			case "img":
				src := getAttr(n, "src")
				if src == "" {
					src = getAttr(n, "data-src")
				}
				if src != "" && !strings.HasPrefix(src, "data:") {
					if abs := resolveRef(base, src); abs != "" {
						if _, ok := snap.ImageAltTexts[abs]; !ok {
							snap.ImageAltTexts[abs] = getAttr(n, "alt")
							orderedImages = append(orderedImages, abs)
						}
					}
				}

			case "a":
				e.collectLink(n, base, snap)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	limit := e.maxImages
	if limit < 0 {
		limit = 0
	}
	if limit > len(orderedImages) {
		limit = len(orderedImages)
	}
	snap.ImageURLs = orderedImages[:limit]
}

// collectLink classifies a single anchor as internal, external, or
// social.
func (e *Extractor) collectLink(n *html.Node, base *url.URL, snap *model.Snapshot) {
	if !hasAttr(n, "href") {
		return
	}

	href := getAttr(n, "href")
	if strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "javascript:") {
		return
	}

	abs := resolveRef(base, href)
	if abs == "" {
		return
	}

	linkURL, err := url.Parse(abs)
	if err != nil {
		return
	}

	if strings.EqualFold(linkURL.Host, base.Host) {
		snap.InternalLinks = append(snap.InternalLinks, abs)
		return
	}

	snap.ExternalLinks = append(snap.ExternalLinks, abs)
	if IsSocialDomain(linkURL.Host) {
		snap.SocialLinks = append(snap.SocialLinks, abs)
	}
}

// collectContent walks the document for visible text and headings,
// skipping script, style, noscript, header, footer, and nav subtrees.
func (e *Extractor) collectContent(doc *html.Node, snap *model.Snapshot) {
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if textSkipElements[n.Data] {
				return
			}
			if isHeading(n.Data) {
				snap.Headings[n.Data] = append(snap.Headings[n.Data], nodeText(n))
			}
		}

		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	collapsed := strings.TrimSpace(whitespacePattern.ReplaceAllString(text.String(), " "))
	if e.maxTextChars > 0 {
		if runes := []rune(collapsed); len(runes) > e.maxTextChars {
			collapsed = string(runes[:e.maxTextChars])
		}
	}
	snap.TextContent = collapsed
}

// isHeading reports whether tag is one of h1 through h6.
func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// nodeText returns the whitespace-normalized text of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(sb.String(), " "))
}

// resolveRef resolves a possibly relative reference against the page
// URL. Returns empty when the reference cannot be parsed.
func resolveRef(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasAttr reports whether the node carries the attribute, even with an
// empty value. Empty-valued boolean attributes like itemscope matter.
func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
