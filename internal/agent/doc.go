// Package agent implements the five analysis agents that score a page
// snapshot: content quality, visual quality, user experience, trust and
// credibility, and technical health.
//
// Every agent follows the same contract: build a dimension-specific
// prompt from the snapshot, ask the model, and parse the JSON verdict.
// When the model call fails or the response cannot be parsed, the agent
// scores the snapshot with deterministic rules instead. Agents never
// return errors; a failed model is a degraded answer, not a failed
// analysis.
//
// The Dispatcher runs all agents concurrently against one snapshot
// with a bounded worker pool and reports per-agent completion through
// an optional progress callback.
package agent
