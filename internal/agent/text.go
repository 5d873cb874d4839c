package agent

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// textExcerptChars is how much page text the content prompt carries.
const textExcerptChars = 4000

// textPromptTemplate asks the model to judge content quality from the
// page text and metadata.
const textPromptTemplate = `You are a website content quality auditor.
Analyse the following webpage text and metadata, then return a JSON object, nothing else.

URL: %s
Title: %s
Meta description: %s
Text excerpt (first %d chars):
"""
%s
"""

Evaluate:
1. Clarity and readability
2. Grammar and spelling quality
3. Content depth and usefulness
4. Keyword relevance to page title and meta description
5. Call-to-action effectiveness

IMPORTANT RULES:
- Base your evaluation ONLY on the actual text provided above.
- Every finding MUST reference a specific detail from the provided data.
- Do NOT assume or infer anything not present in the text.
- If the text is empty or very short, score it low and explain why.

Return ONLY this JSON (no markdown, no explanation):
{
  "score": <integer 0-100>,
  "findings": ["<finding 1>", "<finding 2>", ...],
  "summary": "<one-sentence overall assessment>"
}`

// TextAgent scores content quality: readability, depth, and relevance
// of the page text.
type TextAgent struct {
	client llm.Client
	logger *slog.Logger
}

// NewTextAgent creates the content quality agent.
func NewTextAgent(client llm.Client, opts ...Option) *TextAgent {
	s := newSettings(opts...)
	return &TextAgent{
		client: client,
		logger: s.logger,
	}
}

// Key returns the dimension key.
func (a *TextAgent) Key() string {
	return model.DimensionText
}

// Name returns the display name.
func (a *TextAgent) Name() string {
	return "Content Quality"
}

// Analyze scores the snapshot's content quality.
func (a *TextAgent) Analyze(ctx context.Context, snap *model.Snapshot) model.AgentResult {
	return assess(ctx, a.client, a.logger, a, snap)
}

// prompt builds the content quality prompt from the snapshot.
func (a *TextAgent) prompt(snap *model.Snapshot) string {
	return fmt.Sprintf(textPromptTemplate,
		snap.URL,
		snap.Title,
		snap.MetaDescription,
		textExcerptChars,
		excerpt(snap.TextContent, textExcerptChars),
	)
}

// fallback scores content quality with deterministic rules.
func (a *TextAgent) fallback(snap *model.Snapshot) model.AgentResult {
	score := 30
	findings := make([]string, 0, 5)

	textLen := utf8.RuneCountInString(snap.TextContent)
	switch {
	case textLen > 2000:
		score += 20
		findings = append(findings, fmt.Sprintf("Good content volume (%d characters)", textLen))
	case textLen > 500:
		score += 10
		findings = append(findings, fmt.Sprintf("Moderate content volume (%d characters)", textLen))
	default:
		findings = append(findings, fmt.Sprintf("Very thin content (%d characters)", textLen))
	}

	if snap.Title != "" {
		score += 10
		findings = append(findings, fmt.Sprintf("Page title present: %q", excerpt(snap.Title, 60)))
	} else {
		score -= 10
		findings = append(findings, "Missing page title")
	}

	if snap.MetaDescription != "" {
		score += 10
		findings = append(findings, "Meta description present")
	} else {
		findings = append(findings, "Missing meta description")
	}

	if h1s := snap.Headings["h1"]; len(h1s) > 0 {
		score += 10
		findings = append(findings, fmt.Sprintf("H1 heading found: %q", excerpt(h1s[0], 60)))
	} else {
		findings = append(findings, "No H1 heading found")
	}

	if count := snap.HeadingCount(); count >= 3 {
		score += 5
		findings = append(findings, fmt.Sprintf("%d headings provide good structure", count))
	}

	return model.AgentResult{
		AgentName: a.Name(),
		Score:     clampScore(float64(score)),
		Findings:  findings,
		Summary:   fmt.Sprintf("Rule-based analysis: %d chars of content evaluated.", textLen),
	}
}
