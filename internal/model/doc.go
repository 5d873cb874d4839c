// Package model defines the core data structures shared across the
// analyzer.
//
// This package contains the following main types:
//   - Snapshot: The immutable page signal record every agent reads
//   - AgentResult: One dimension's score, findings, and summary
//   - Report: The composite result of a full analysis run
//   - Grade: The letter grade derived from the composite score
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (extract, agent, score,
// report) need these types, so centralizing them prevents import
// cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
