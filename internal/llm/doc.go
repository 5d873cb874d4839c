// Package llm wraps the generative model API that every analysis agent
// calls.
//
// The package provides:
//   - Client: the interface agents use for text and vision generation
//   - GeminiClient: the Gemini REST implementation of Client
//   - UsageTracker: mutex-guarded cumulative token accounting
//   - ParseAssessment: tolerant JSON extraction from model responses
//   - Fetcher: image download and decode for the vision path
//
// Design decision: Agents receive the Client interface rather than the
// concrete Gemini type because:
// 1. Tests substitute canned responses without network access
// 2. The provider can change without touching agent code
// 3. The rule-based fallback path needs no client at all
package llm
