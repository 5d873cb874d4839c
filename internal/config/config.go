package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
)

// Default configuration values.
// These mirror the environment defaults the analyzer has always used,
// so existing .env setups keep working.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "ceps"

	// DefaultTimeout is the page fetch timeout. 15 seconds covers slow
	// origins without letting one dead host stall the whole run.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxImages caps how many page images the visual agent sends
	// to the vision model. Three keeps vision prompts affordable while
	// still sampling the page's imagery.
	DefaultMaxImages = 3

	// DefaultMaxBodySize limits the page body to 5MB. Anything larger
	// is almost certainly not a page worth scoring and would bloat the
	// prompts downstream.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultConcurrency is how many agents run at once. Two keeps the
	// generation API under free-tier rate limits while still halving
	// the serial runtime of five agents.
	DefaultConcurrency = 2

	// DefaultCacheTTL is how long cached generations stay valid. Pages
	// change slowly relative to a day, and developer iteration on the
	// same URL is where the cache earns its keep.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultUserAgent presents as a desktop browser. Many sites serve
	// bot user agents a degraded page, which would skew every score.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds all configuration options for the analyzer.
// This struct is populated from flags, environment variables, and the
// optional config file, then passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested
// structs for simplicity. The number of options is manageable, and
// nesting would add complexity without significant benefit.
type Config struct {
	// APIKey is the Gemini API key. Required; without it the run
	// aborts before any agent starts.
	APIKey string

	// Model is the generation model identifier.
	Model string

	// MaxImages caps how many images the visual agent analyzes.
	MaxImages int

	// MaxTextChars truncates extracted page text when positive.
	// Zero means no truncation.
	MaxTextChars int

	// Timeout is the page fetch timeout.
	Timeout time.Duration

	// MaxBodySize is the maximum page body size in bytes to read.
	MaxBodySize int64

	// Concurrency is how many agents run at once.
	Concurrency int

	// UserAgent is the User-Agent header sent with page requests.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches log output from text lines to JSON.
	LogJSON bool

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// TargetURL is the page to analyze. A missing scheme is treated
	// as https by the fetcher.
	TargetURL string

	// CacheEnabled turns on the on-disk generation cache. Off by
	// default; repeated runs against the same URL then hit the API
	// every time, which is the least surprising behavior.
	CacheEnabled bool

	// CacheDir is the directory holding the generation cache database.
	// Defaults to the XDG cache directory.
	CacheDir string

	// CacheTTL is how long cached generations stay valid.
	CacheTTL time.Duration

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches the usual locations (see FindConfigFile).
	ConfigFilePath string

	// Sites holds per-host fetch overrides loaded from the config
	// file, such as cookies for pages behind a consent wall.
	Sites *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		Model:       llm.DefaultModel,
		MaxImages:   DefaultMaxImages,
		Timeout:     DefaultTimeout,
		MaxBodySize: DefaultMaxBodySize,
		Concurrency: DefaultConcurrency,
		UserAgent:   DefaultUserAgent,
		CacheDir:    XDGCacheDir(),
		CacheTTL:    DefaultCacheTTL,
	}
}

// XDGConfigDir returns the XDG config directory for the analyzer.
// On Linux: ~/.config/ceps
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the analyzer.
// On Linux: ~/.cache/ceps
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid for an analysis run.
// It returns a specific error describing the first problem found;
// fixing one error often makes others irrelevant.
//
// The API key check lives here so a missing credential aborts the run
// before any fetching or agent work begins.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}

	if c.TargetURL == "" {
		return ErrNoTarget
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxImages < 0 {
		return ErrInvalidMaxImages
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}

	return nil
}
