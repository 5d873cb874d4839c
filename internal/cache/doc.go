// Package cache provides SQLite-backed storage for model responses.
//
// The cache stores raw generation text keyed by a digest of the request
// payload, so repeated analyses of an unchanged page can skip the API.
// Only model responses are cached. Scores and reports are always
// recomputed from the cached text, so scoring changes take effect
// immediately.
package cache
