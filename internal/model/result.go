package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Dimension keys used throughout the engine. The dispatcher returns a
// result for every key, and the aggregator weights them in this order.
const (
	// DimensionText covers content quality, readability, and relevance.
	DimensionText = "text"

	// DimensionVisual covers imagery, alt text, and visual design.
	DimensionVisual = "visual"

	// DimensionUX covers structure, navigation, and mobile readiness.
	DimensionUX = "ux"

	// DimensionTrust covers security, credibility, and legal signals.
	DimensionTrust = "trust"

	// DimensionTech covers performance and technical SEO fundamentals.
	DimensionTech = "tech"
)

// DimensionKeys lists all dimensions in their canonical display order.
var DimensionKeys = []string{
	DimensionText,
	DimensionVisual,
	DimensionUX,
	DimensionTrust,
	DimensionTech,
}

// fallbackMarker is the phrase every rule-based summary contains.
// Agents that fall back to deterministic scoring start their summary
// with "Rule-based analysis:" so consumers can tell the two apart.
const fallbackMarker = "rule-based"

// AgentResult is one dimension's assessment of the page.
type AgentResult struct {
	// AgentName is the human-readable agent name, for example
	// "Content Quality".
	AgentName string `json:"agent_name"`

	// Score is the dimension score in [0, 100].
	Score float64 `json:"score"`

	// Findings lists specific observations backing the score.
	Findings []string `json:"findings"`

	// Summary is a one-sentence overall assessment.
	Summary string `json:"summary"`
}

// IsFallback reports whether this result came from the deterministic
// rule scorer rather than the generative model.
func (r AgentResult) IsFallback() bool {
	return strings.Contains(strings.ToLower(r.Summary), fallbackMarker)
}

// Usage is a point-in-time copy of the cumulative generative API usage
// for one analysis run.
type Usage struct {
	// Calls is the number of API requests made.
	Calls int `json:"calls"`

	// PromptTokens is the total prompt tokens billed.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the total completion tokens billed.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is PromptTokens + CompletionTokens.
	TotalTokens int `json:"total_tokens"`
}

// Report is the composite result of one full analysis run.
//
// Design decision: The report doubles as the carrier that pipeline
// steps fill in sequence (fetch stores the document, extract stores the
// snapshot, analyze stores the dimensions) because:
// 1. Steps stay decoupled; each reads what earlier steps wrote
// 2. Writers receive everything they need in a single value
// 3. It avoids a parallel "context" struct that mirrors the report
type Report struct {
	// ID uniquely identifies this run, for log and artifact correlation.
	ID string `json:"id"`

	// URL is the analyzed page URL as the user gave it.
	URL string `json:"url"`

	// AnalyzedAt is when the run started.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Overall is the weighted composite score, one decimal.
	Overall float64 `json:"overall_score"`

	// Grade is the letter grade derived from Overall.
	Grade Grade `json:"grade"`

	// Dimensions maps each dimension key to its agent result.
	// After a completed run it holds exactly the five DimensionKeys.
	Dimensions map[string]AgentResult `json:"dimensions"`

	// Usage summarizes generative API consumption for the run.
	Usage Usage `json:"usage"`

	// Snapshot is the page signal record the agents analyzed.
	Snapshot *Snapshot `json:"snapshot,omitempty"`

	// ElapsedSeconds is the total pipeline wall-clock time.
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	// RawHTML is the fetched document, handed from the fetch step to
	// the extract step. Excluded from serialization due to size.
	RawHTML string `json:"-"`
}

// NewReport creates a report for the given URL with a fresh run ID.
func NewReport(url string) *Report {
	return &Report{
		ID:         uuid.NewString(),
		URL:        url,
		AnalyzedAt: time.Now(),
		Dimensions: make(map[string]AgentResult),
	}
}

// FallbackDimensions returns the keys of dimensions that were scored by
// the rule-based fallback, in canonical order. An empty slice means the
// generative model served every agent.
func (r *Report) FallbackDimensions() []string {
	keys := make([]string, 0)
	for _, key := range DimensionKeys {
		if result, ok := r.Dimensions[key]; ok && result.IsFallback() {
			keys = append(keys, key)
		}
	}
	return keys
}
