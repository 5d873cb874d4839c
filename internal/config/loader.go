package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".ceps.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Environment variable names. These match the names the analyzer has
// always read, so .env setups carry over unchanged.
const (
	envAPIKey       = "GEMINI_API_KEY"
	envModel        = "GEMINI_MODEL"
	envMaxImages    = "MAX_IMAGES"
	envMaxTextChars = "MAX_TEXT_CHARS"
	envTimeout      = "SCRAPER_TIMEOUT"
	envMaxPageSize  = "MAX_PAGE_SIZE"
)

// LoadEnv overlays environment variables onto the config. Unset or
// malformed variables leave the current value untouched, so defaults
// and file values survive a sloppy environment.
func (c *Config) LoadEnv() {
	if v := os.Getenv(envAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(envModel); v != "" {
		c.Model = v
	}
	if v, ok := intEnv(envMaxImages); ok {
		c.MaxImages = v
	}
	if v, ok := intEnv(envMaxTextChars); ok {
		c.MaxTextChars = v
	}
	if v, ok := intEnv(envTimeout); ok && v > 0 {
		c.Timeout = time.Duration(v) * time.Second
	}
	if v, ok := intEnv(envMaxPageSize); ok && v > 0 {
		c.MaxBodySize = int64(v)
	}
}

// intEnv reads an integer environment variable. The second return is
// false when the variable is unset or not an integer.
func intEnv(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// LoadConfigFile loads analyzer settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether the
// config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following
// order:
//  1. If configPath is specified, use it directly
//  2. Look for .ceps.yaml in the current directory
//  3. Look for it in the XDG config directory
//  4. Look for it in the user's home directory
//
// Returns the path to the configuration file if found, or empty string
// if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(XDGConfigDir(), DefaultConfigFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// ApplyFile merges file settings into the config. File values fill in
// only where they are set, so flags and environment variables applied
// afterwards (or before, for zero-valued fields) win.
func (c *Config) ApplyFile(cf *File) {
	if cf == nil {
		return
	}

	s := cf.Settings
	if s.Model != "" {
		c.Model = s.Model
	}
	if s.MaxImages != nil {
		c.MaxImages = *s.MaxImages
	}
	if s.MaxTextChars != nil {
		c.MaxTextChars = *s.MaxTextChars
	}
	if s.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(s.TimeoutSeconds) * time.Second
	}
	if s.MaxBodySize > 0 {
		c.MaxBodySize = s.MaxBodySize
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.Concurrency > 0 {
		c.Concurrency = s.Concurrency
	}
	if s.CacheEnabled != nil {
		c.CacheEnabled = *s.CacheEnabled
	}
	if s.CacheDir != "" {
		c.CacheDir = s.CacheDir
	}
	if s.CacheTTLHours > 0 {
		c.CacheTTL = time.Duration(s.CacheTTLHours) * time.Hour
	}

	c.Sites = cf
}
