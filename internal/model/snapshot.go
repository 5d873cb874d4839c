package model

import "strings"

// Snapshot is the immutable record of page signals that every analysis
// agent reads. It is produced once per run by the extract package and
// never mutated afterwards, so agents can share it across goroutines
// without locking.
//
// Design decision: We keep the snapshot as one flat struct rather than
// grouping signals into sub-structs because:
// 1. Agents mix signals freely (trust reads SSL and social links, tech
//    reads SSL and load time), so any grouping would be arbitrary
// 2. A flat struct serializes cleanly for report output
// 3. Prompt builders can reference fields without chasing pointers
type Snapshot struct {
	// URL is the final page URL after redirects.
	URL string `json:"url"`

	// Title is the text of the <title> element, empty when absent.
	Title string `json:"title"`

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string `json:"meta_description"`

	// TextContent is the visible page text with script, style,
	// noscript, header, footer, and nav subtrees removed and
	// whitespace collapsed to single spaces.
	TextContent string `json:"text_content"`

	// ImageURLs lists absolute image URLs in document order, capped
	// at the configured maximum. data: URIs are excluded.
	ImageURLs []string `json:"image_urls"`

	// ImageAltTexts maps every discovered image URL to its alt text.
	// Unlike ImageURLs this map is not capped; an empty string means
	// the img element had no alt or a blank one.
	ImageAltTexts map[string]string `json:"image_alt_texts"`

	// InternalLinks are anchor targets on the same host as URL.
	InternalLinks []string `json:"internal_links"`

	// ExternalLinks are anchor targets on other hosts.
	ExternalLinks []string `json:"external_links"`

	// Headings maps heading level ("h1".."h6") to the heading texts
	// found at that level, in document order. Levels with no headings
	// are absent from the map.
	Headings map[string][]string `json:"headings"`

	// HasSSL is true when the final URL uses the https scheme.
	HasSSL bool `json:"has_ssl"`

	// HasViewportMeta is true when <meta name="viewport"> exists.
	HasViewportMeta bool `json:"has_viewport_meta"`

	// HasCharset is true when a charset declaration exists, either
	// <meta charset> or <meta http-equiv="Content-Type">.
	HasCharset bool `json:"has_charset"`

	// HasLangAttr is true when <html> carries a non-empty lang.
	HasLangAttr bool `json:"has_lang_attr"`

	// HasFavicon is true when a <link rel> containing "icon" exists.
	HasFavicon bool `json:"has_favicon"`

	// HasStructuredData is true when JSON-LD or microdata markup exists.
	HasStructuredData bool `json:"has_structured_data"`

	// HasPrivacyPolicy is true when privacy-policy wording appears
	// anywhere in the document.
	HasPrivacyPolicy bool `json:"has_privacy_policy"`

	// HasContactInfo is true when contact wording, a mailto: link, or
	// a tel: link appears anywhere in the document.
	HasContactInfo bool `json:"has_contact_info"`

	// SocialLinks are external links pointing at known social
	// platforms (Facebook, X, LinkedIn, and so on).
	SocialLinks []string `json:"social_links"`

	// FormCount is the number of <form> elements.
	FormCount int `json:"form_count"`

	// ScriptCount is the number of <script> elements.
	ScriptCount int `json:"script_count"`

	// StylesheetCount is the number of <link rel="stylesheet"> elements.
	StylesheetCount int `json:"stylesheet_count"`

	// HTMLSizeKB is the raw document size in kilobytes, one decimal.
	HTMLSizeKB float64 `json:"html_size_kb"`

	// LoadTimeSeconds is the wall-clock fetch time, two decimals.
	LoadTimeSeconds float64 `json:"load_time_seconds"`

	// StatusCode is the final HTTP status code.
	StatusCode int `json:"status_code"`
}

// NewSnapshot creates an empty snapshot for the given URL with all
// collection fields initialized, so producers can append without nil
// checks.
func NewSnapshot(url string) *Snapshot {
	return &Snapshot{
		URL:           url,
		ImageURLs:     make([]string, 0),
		ImageAltTexts: make(map[string]string),
		InternalLinks: make([]string, 0),
		ExternalLinks: make([]string, 0),
		Headings:      make(map[string][]string),
		SocialLinks:   make([]string, 0),
		StatusCode:    200,
	}
}

// HeadingCount returns the total number of headings across all levels.
func (s *Snapshot) HeadingCount() int {
	total := 0
	for _, texts := range s.Headings {
		total += len(texts)
	}
	return total
}

// ImagesWithAlt returns how many of the capped ImageURLs carry a
// non-blank alt text.
func (s *Snapshot) ImagesWithAlt() int {
	count := 0
	for _, url := range s.ImageURLs {
		if strings.TrimSpace(s.ImageAltTexts[url]) != "" {
			count++
		}
	}
	return count
}
