// Package config provides configuration structures and utilities for the
// CEPS analyzer. It defines the main configuration options for page
// fetching, model access, analysis concurrency, and report generation
// preferences, and resolves them from flags, environment variables, and
// the .ceps.yaml configuration file.
package config
