package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoAPIKey is returned when no Gemini API key is configured.
	// The analyzer refuses to start an analysis without one rather than
	// silently producing an all-fallback report.
	ErrNoAPIKey = errors.New("no API key configured: set GEMINI_API_KEY or use --api-key")

	// ErrNoTarget is returned when no URL was given to analyze.
	ErrNoTarget = errors.New("no target specified: provide a URL to analyze")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the agent concurrency is
	// not positive. Zero workers would mean no analysis at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxImages is returned when the image cap is negative.
	// Use 0 to disable the vision phase entirely.
	ErrInvalidMaxImages = errors.New("invalid max images: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the page size limit is not
	// positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at
	// a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	// Use 0 to keep cached generations forever.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL: must be non-negative")
)
