// Package main provides the entry point for the ceps CLI.
//
// ceps is a composite quality analyzer for web pages. It fetches a page,
// extracts a signal snapshot, and scores five quality dimensions using a
// Gemini model with deterministic rule-based fallbacks.
//
// Usage:
//
//	ceps analyze <url>
//	ceps analyze --json -o report.json <url>
//
// See --help for all available options.
package main

// main is the entry point for ceps.
func main() {
	Execute()
}
