package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// This test ensures that defaults are documented through tests and that changes
// to defaults are intentional (tests will fail if defaults change unexpectedly).
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	// Verify each default value explicitly
	// This serves as living documentation of the defaults
	t.Run("default Model is gemini-2.5-flash", func(t *testing.T) {
		t.Parallel()
		if cfg.Model != "gemini-2.5-flash" {
			t.Errorf("expected Model to be 'gemini-2.5-flash', got '%s'", cfg.Model)
		}
	})

	t.Run("default Timeout is 15 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 15*time.Second {
			t.Errorf("expected Timeout to be 15s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxImages is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxImages != 3 {
			t.Errorf("expected MaxImages to be 3, got %d", cfg.MaxImages)
		}
	})

	t.Run("default MaxTextChars is 0 meaning no truncation", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxTextChars != 0 {
			t.Errorf("expected MaxTextChars to be 0, got %d", cfg.MaxTextChars)
		}
	})

	t.Run("default MaxBodySize is 5MB", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 5*1024*1024 {
			t.Errorf("expected MaxBodySize to be 5MB, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("default Concurrency is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 2 {
			t.Errorf("expected Concurrency to be 2, got %d", cfg.Concurrency)
		}
	})

	t.Run("default UserAgent presents as a browser", func(t *testing.T) {
		t.Parallel()
		if !strings.Contains(cfg.UserAgent, "Mozilla/5.0") {
			t.Errorf("expected browser UserAgent, got '%s'", cfg.UserAgent)
		}
	})

	t.Run("default CacheEnabled is false", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheEnabled {
			t.Error("expected CacheEnabled to be false")
		}
	})

	t.Run("default CacheTTL is 24 hours", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheTTL != 24*time.Hour {
			t.Errorf("expected CacheTTL to be 24h, got %v", cfg.CacheTTL)
		}
	})

	t.Run("default CacheDir is non-empty", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheDir == "" {
			t.Error("expected non-empty CacheDir")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case is designed to test one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests can modify specific fields to test validation rules.
	validConfig := func() *Config {
		return &Config{
			APIKey:      "test-api-key",
			TargetURL:   "https://example.com",
			Model:       "gemini-2.5-flash",
			MaxImages:   3,
			Timeout:     15 * time.Second,
			MaxBodySize: 5 * 1024 * 1024,
			Concurrency: 2,
		}
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("empty api key returns ErrNoAPIKey", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.APIKey = ""

		err := cfg.Validate()
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("missing api key is reported before missing target", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.APIKey = ""
		cfg.TargetURL = ""

		err := cfg.Validate()
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})

	t.Run("empty target returns ErrNoTarget", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.TargetURL = ""

		err := cfg.Validate()
		if !errors.Is(err, ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = -1 * time.Second

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("zero concurrency returns ErrInvalidConcurrency", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Concurrency = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("expected ErrInvalidConcurrency, got %v", err)
		}
	})

	t.Run("negative max images returns ErrInvalidMaxImages", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxImages = -1

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidMaxImages) {
			t.Errorf("expected ErrInvalidMaxImages, got %v", err)
		}
	})

	t.Run("zero max images is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxImages = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("zero max body size returns ErrInvalidMaxBodySize", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxBodySize = 0

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidMaxBodySize) {
			t.Errorf("expected ErrInvalidMaxBodySize, got %v", err)
		}
	})

	t.Run("json and markdown both enabled returns ErrConflictingReportFormats", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = true

		err := cfg.Validate()
		if !errors.Is(err, ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("json only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = true
		cfg.MarkdownReport = false

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("markdown only is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.JSONReport = false
		cfg.MarkdownReport = true

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("negative cache ttl returns ErrInvalidCacheTTL", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CacheTTL = -1 * time.Hour

		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidCacheTTL) {
			t.Errorf("expected ErrInvalidCacheTTL, got %v", err)
		}
	})

	t.Run("zero cache ttl is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.CacheTTL = 0

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestFileGetSiteConfig tests the GetSiteConfig method.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when host not found", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Cookie:    "default_cookie=abc",
				UserAgent: "DefaultBot/1.0",
			},
			Sites: map[string]SiteConfig{},
		}

		cfg := file.GetSiteConfig("unknown.example.com")
		if cfg.Cookie != "default_cookie=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
		if cfg.UserAgent != "DefaultBot/1.0" {
			t.Errorf("expected default user agent, got %q", cfg.UserAgent)
		}
	})

	t.Run("returns site-specific config", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Cookie: "default_cookie=abc",
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Cookie:    "session=xyz",
					UserAgent: "SiteBot/2.0",
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Cookie != "session=xyz" {
			t.Errorf("expected site cookie, got %q", cfg.Cookie)
		}
		if cfg.UserAgent != "SiteBot/2.0" {
			t.Errorf("expected site user agent, got %q", cfg.UserAgent)
		}
	})

	t.Run("merges headers from defaults and site", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"X-Default": "value1",
				},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{
						"X-Custom": "value2",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["X-Default"] != "value1" {
			t.Errorf("expected default header, got %v", cfg.Headers)
		}
		if cfg.Headers["X-Custom"] != "value2" {
			t.Errorf("expected custom header, got %v", cfg.Headers)
		}
	})

	t.Run("site headers override default headers", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Headers: map[string]string{
					"Authorization": "default-token",
				},
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					Headers: map[string]string{
						"Authorization": "site-token",
					},
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Headers["Authorization"] != "site-token" {
			t.Errorf("expected site token to override, got %q", cfg.Headers["Authorization"])
		}
	})

	t.Run("empty cookie uses default", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Cookie: "default=abc",
			},
			Sites: map[string]SiteConfig{
				"example.com": {
					UserAgent: "SiteBot/2.0", // no cookie specified
				},
			},
		}

		cfg := file.GetSiteConfig("example.com")
		if cfg.Cookie != "default=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
	})

	t.Run("nil sites map", func(t *testing.T) {
		t.Parallel()

		file := &File{
			Defaults: SiteConfig{
				Cookie: "default=abc",
			},
		}

		cfg := file.GetSiteConfig("any.example.com")
		if cfg.Cookie != "default=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Cookie)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.ceps.yaml")
		if err == nil {
			t.Fatal("expected error for non-existent file")
		}
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, DefaultConfigFile)

		content := `settings:
  model: gemini-2.5-pro
  maxImages: 5
  timeoutSeconds: 30
  concurrency: 3
defaults:
  cookie: "default=abc"
sites:
  example.com:
    cookie: "session=xyz"
    userAgent: "SiteBot/2.0"
    headers:
      Authorization: "Bearer token"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Settings.Model != "gemini-2.5-pro" {
			t.Errorf("expected model gemini-2.5-pro, got %q", cfg.Settings.Model)
		}
		if cfg.Settings.MaxImages == nil || *cfg.Settings.MaxImages != 5 {
			t.Errorf("expected maxImages 5, got %v", cfg.Settings.MaxImages)
		}
		if cfg.Settings.TimeoutSeconds != 30 {
			t.Errorf("expected timeoutSeconds 30, got %d", cfg.Settings.TimeoutSeconds)
		}
		if cfg.Defaults.Cookie != "default=abc" {
			t.Errorf("expected default cookie, got %q", cfg.Defaults.Cookie)
		}

		site, ok := cfg.Sites["example.com"]
		if !ok {
			t.Fatal("expected example.com in sites")
		}
		if site.Cookie != "session=xyz" {
			t.Errorf("expected site cookie, got %q", site.Cookie)
		}
		if site.UserAgent != "SiteBot/2.0" {
			t.Errorf("expected site user agent, got %q", site.UserAgent)
		}
		if site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("expected Authorization header")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, DefaultConfigFile)

		content := `invalid: yaml: content: [}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfigFile(configPath)
		if err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Sites map", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, DefaultConfigFile)

		content := `defaults:
  cookie: "default=abc"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Run("returns explicit path if exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "custom.yaml")

		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		result := FindConfigFile(configPath)
		if result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		result := FindConfigFile("/nonexistent/path/config.yaml")
		if result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("returns empty when no config found", func(_ *testing.T) {
		result := FindConfigFile("")
		// This may or may not find a config depending on the system
		// Just ensure it doesn't panic
		_ = result
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	t.Run("XDGConfigDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGConfigDir()
		if dir == "" {
			t.Error("expected non-empty XDG config dir")
		}
		if !strings.Contains(dir, AppName) {
			t.Errorf("expected config dir to contain %q, got %q", AppName, dir)
		}
	})

	t.Run("XDGCacheDir returns non-empty path", func(t *testing.T) {
		t.Parallel()

		dir := XDGCacheDir()
		if dir == "" {
			t.Error("expected non-empty XDG cache dir")
		}
		if !strings.Contains(dir, AppName) {
			t.Errorf("expected cache dir to contain %q, got %q", AppName, dir)
		}
	})
}

// TestConfigAllFields tests that all Config fields can be set.
func TestConfigAllFields(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		APIKey:         "key",
		Model:          "gemini-2.5-pro",
		MaxImages:      5,
		MaxTextChars:   4000,
		Timeout:        30 * time.Second,
		MaxBodySize:    1024,
		Concurrency:    4,
		UserAgent:      "TestBot/1.0",
		Verbose:        true,
		LogJSON:        true,
		JSONReport:     true,
		ReportFile:     "/path/to/report.json",
		TargetURL:      "https://example.com",
		CacheEnabled:   true,
		CacheDir:       "/tmp/cache",
		CacheTTL:       time.Hour,
		ConfigFilePath: "/path/to/config",
		Sites:          &File{},
	}

	if cfg.APIKey != "key" {
		t.Errorf("unexpected APIKey")
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("unexpected Model")
	}
	if cfg.MaxImages != 5 {
		t.Errorf("unexpected MaxImages")
	}
	if cfg.MaxTextChars != 4000 {
		t.Errorf("unexpected MaxTextChars")
	}
	if !cfg.Verbose {
		t.Errorf("expected Verbose true")
	}
	if !cfg.JSONReport {
		t.Errorf("expected JSONReport true")
	}
	if !cfg.CacheEnabled {
		t.Errorf("expected CacheEnabled true")
	}
}
