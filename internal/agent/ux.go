package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// uxExcerptChars is how much page text the UX prompt carries.
const uxExcerptChars = 2000

// uxPromptTemplate asks the model to judge user experience from
// structural signals.
const uxPromptTemplate = `You are a UX auditor for websites.
Analyse the following structural data and evaluate the user experience.

URL: %s
Title: %s
Heading structure: %s
Internal links count: %d
External links count: %d
Forms count: %d
Has viewport meta (mobile-friendly signal): %t
Has language attribute: %t
Load time: %gs
Page size: %g KB
Text excerpt (first %d chars):
"""
%s
"""

Evaluate:
1. Heading hierarchy (proper H1 to H2 to H3 structure)
2. Navigation clarity (enough internal links, logical structure)
3. Mobile-friendliness signals
4. Page load-time perception
5. Content scannability and readability layout
6. Form usability (if any)

IMPORTANT RULES:
- Base your evaluation ONLY on the structural data provided above.
- Every finding MUST reference a specific metric or value from the data (e.g. "viewport meta is true", "3 internal links").
- Do NOT guess about visual layout, colors, or anything not represented in the data.

Return ONLY this JSON:
{
  "score": <integer 0-100>,
  "findings": ["<finding 1>", ...],
  "summary": "<one-sentence assessment>"
}`

// UXAgent scores user experience: structure, navigation, and
// mobile-readiness signals.
type UXAgent struct {
	client llm.Client
	logger *slog.Logger
}

// NewUXAgent creates the user experience agent.
func NewUXAgent(client llm.Client, opts ...Option) *UXAgent {
	s := newSettings(opts...)
	return &UXAgent{
		client: client,
		logger: s.logger,
	}
}

// Key returns the dimension key.
func (a *UXAgent) Key() string {
	return model.DimensionUX
}

// Name returns the display name.
func (a *UXAgent) Name() string {
	return "User Experience"
}

// Analyze scores the snapshot's user experience.
func (a *UXAgent) Analyze(ctx context.Context, snap *model.Snapshot) model.AgentResult {
	return assess(ctx, a.client, a.logger, a, snap)
}

// prompt builds the UX prompt from the snapshot.
func (a *UXAgent) prompt(snap *model.Snapshot) string {
	return fmt.Sprintf(uxPromptTemplate,
		snap.URL,
		snap.Title,
		formatHeadings(snap.Headings),
		len(snap.InternalLinks),
		len(snap.ExternalLinks),
		snap.FormCount,
		snap.HasViewportMeta,
		snap.HasLangAttr,
		snap.LoadTimeSeconds,
		snap.HTMLSizeKB,
		uxExcerptChars,
		excerpt(snap.TextContent, uxExcerptChars),
	)
}

// formatHeadings renders the heading map in level order for the
// prompt.
func formatHeadings(headings map[string][]string) string {
	if len(headings) == 0 {
		return "none"
	}

	parts := make([]string, 0, len(headings))
	for _, level := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		if texts, ok := headings[level]; ok && len(texts) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %q", level, texts))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "; ")
}

// fallback scores user experience with deterministic rules.
func (a *UXAgent) fallback(snap *model.Snapshot) model.AgentResult {
	score := 30
	findings := make([]string, 0, 6)

	h1s := snap.Headings["h1"]
	switch {
	case len(h1s) == 1:
		score += 10
		findings = append(findings, fmt.Sprintf("Single H1 heading present: %q", excerpt(h1s[0], 50)))
	case len(h1s) > 1:
		score += 5
		findings = append(findings, fmt.Sprintf("Multiple H1 headings (%d), should have exactly one", len(h1s)))
	default:
		findings = append(findings, "No H1 heading, poor hierarchy")
	}

	if h2s := snap.Headings["h2"]; len(h2s) > 0 {
		score += 5
		findings = append(findings, fmt.Sprintf("%d H2 subheadings found", len(h2s)))
	}

	if snap.HasViewportMeta {
		score += 15
		findings = append(findings, "Viewport meta tag present, mobile-friendly")
	} else {
		findings = append(findings, "No viewport meta tag, not mobile-optimized")
	}

	if snap.HasLangAttr {
		score += 5
		findings = append(findings, "Language attribute set")
	}

	intLinks := len(snap.InternalLinks)
	switch {
	case intLinks >= 10:
		score += 10
		findings = append(findings, fmt.Sprintf("%d internal links, good navigation", intLinks))
	case intLinks >= 3:
		score += 5
		findings = append(findings, fmt.Sprintf("%d internal links, moderate navigation", intLinks))
	default:
		findings = append(findings, fmt.Sprintf("Only %d internal links, weak navigation", intLinks))
	}

	loadTime := snap.LoadTimeSeconds
	switch {
	case loadTime < 2:
		score += 10
		findings = append(findings, fmt.Sprintf("Fast load time (%gs)", loadTime))
	case loadTime < 5:
		score += 5
		findings = append(findings, fmt.Sprintf("Acceptable load time (%gs)", loadTime))
	default:
		findings = append(findings, fmt.Sprintf("Slow load time (%gs)", loadTime))
	}

	return model.AgentResult{
		AgentName: a.Name(),
		Score:     clampScore(float64(score)),
		Findings:  findings,
		Summary: fmt.Sprintf("Rule-based analysis: %d links, viewport=%s, load=%gs.",
			intLinks, yesNo(snap.HasViewportMeta), loadTime),
	}
}
