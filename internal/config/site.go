package config

// SiteConfig holds site-specific fetch configuration for a single host.
// This allows customizing request behavior per site, for example to
// analyze pages behind a login cookie or a staging gateway header.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when fetching pages on this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this host.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// Settings holds the global analyzer settings section of the
// configuration file. Pointer fields distinguish "not set" from an
// explicit zero, which matters for values like maxImages where zero is
// a legitimate choice.
type Settings struct {
	// Model is the Gemini model name to use for analysis.
	Model string `yaml:"model,omitempty"`

	// MaxImages caps how many page images are sent to the vision model.
	MaxImages *int `yaml:"maxImages,omitempty"`

	// MaxTextChars caps how much page text is included in prompts.
	MaxTextChars *int `yaml:"maxTextChars,omitempty"`

	// TimeoutSeconds is the page fetch timeout in seconds.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// MaxBodySize is the maximum page size in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// UserAgent is the default User-Agent for page fetches.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Concurrency is the number of analysis agents run in parallel.
	Concurrency int `yaml:"concurrency,omitempty"`

	// CacheEnabled turns the model response cache on or off.
	CacheEnabled *bool `yaml:"cacheEnabled,omitempty"`

	// CacheDir overrides the cache directory.
	CacheDir string `yaml:"cacheDir,omitempty"`

	// CacheTTLHours is how long cached model responses stay valid.
	CacheTTLHours int `yaml:"cacheTtlHours,omitempty"`
}

// File represents the structure of the .ceps.yaml configuration file.
type File struct {
	// Settings are the global analyzer settings.
	Settings Settings `yaml:"settings,omitempty"`

	// Sites maps hostnames to their site-specific fetch configurations.
	// Keys should be the hostname without the protocol (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all hosts
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the fetch configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
