package extract

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// socialDomains are the platforms whose links count toward a page's
// social presence. Order here is the order platforms are reported in.
var socialDomains = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"instagram.com",
	"youtube.com",
	"tiktok.com",
	"github.com",
}

// platformTitles holds display names that simple title-casing gets wrong.
var platformTitles = map[string]string{
	"x.com":        "X (Twitter)",
	"linkedin.com": "LinkedIn",
	"youtube.com":  "YouTube",
	"tiktok.com":   "TikTok",
	"github.com":   "GitHub",
}

// IsSocialDomain reports whether the host belongs to a recognized
// social platform. Matching is by substring so subdomains such as
// business.facebook.com count.
func IsSocialDomain(host string) bool {
	for _, domain := range socialDomains {
		if strings.Contains(host, domain) {
			return true
		}
	}
	return false
}

// PlatformName returns a display name for a social domain.
func PlatformName(domain string) string {
	if title, ok := platformTitles[domain]; ok {
		return title
	}
	label, _, _ := strings.Cut(domain, ".")
	return cases.Title(language.English).String(label)
}

// Platforms returns the display names of the platforms the given
// social links point at, in a stable order without duplicates.
func Platforms(socialLinks []string) []string {
	matched := make(map[string]bool)
	for _, link := range socialLinks {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		for _, domain := range socialDomains {
			if strings.Contains(u.Host, domain) {
				matched[domain] = true
				break
			}
		}
	}

	names := make([]string, 0, len(matched))
	for _, domain := range socialDomains {
		if matched[domain] {
			names = append(names, PlatformName(domain))
		}
	}
	return names
}
