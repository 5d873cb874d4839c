package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// techPromptTemplate asks the model to judge technical health from
// performance and SEO signals.
const techPromptTemplate = `You are a website technical health auditor.
Analyse the following technical signals and score the page's technical quality.

URL: %s
Load time: %gs
Page size: %g KB
Has SSL: %t
Has viewport meta: %t
Has charset declaration: %t
Has language attribute: %t
Has favicon: %t
Has structured data: %t
Scripts count: %d
Stylesheets count: %d
Images count: %d
Title present: %t
Meta description present: %t
Title: %s
Meta description: %s

Evaluate:
1. Page load time (< 2s excellent, > 5s poor)
2. Page size optimization
3. Basic SEO (title, meta description, lang, charset)
4. Mobile-readiness (viewport meta)
5. Resource count (scripts and stylesheets, fewer is better)
6. Favicon and branding basics
7. Structured data for rich search results

IMPORTANT RULES:
- Base your evaluation ONLY on the metrics provided above.
- Every finding MUST cite a specific value (e.g. "Load time is 1.2s", "14 scripts loaded").
- Do NOT guess about JavaScript performance, rendering, or anything not in the data.
- Use the exact true/false values as given for each boolean field.

Return ONLY this JSON:
{
  "score": <integer 0-100>,
  "findings": ["<finding 1>", ...],
  "summary": "<one-sentence assessment>"
}`

// TechAgent scores technical health: performance, page weight, and SEO
// fundamentals.
type TechAgent struct {
	client llm.Client
	logger *slog.Logger
}

// NewTechAgent creates the technical health agent.
func NewTechAgent(client llm.Client, opts ...Option) *TechAgent {
	s := newSettings(opts...)
	return &TechAgent{
		client: client,
		logger: s.logger,
	}
}

// Key returns the dimension key.
func (a *TechAgent) Key() string {
	return model.DimensionTech
}

// Name returns the display name.
func (a *TechAgent) Name() string {
	return "Technical Health"
}

// Analyze scores the snapshot's technical health.
func (a *TechAgent) Analyze(ctx context.Context, snap *model.Snapshot) model.AgentResult {
	return assess(ctx, a.client, a.logger, a, snap)
}

// prompt builds the technical health prompt from the snapshot.
func (a *TechAgent) prompt(snap *model.Snapshot) string {
	return fmt.Sprintf(techPromptTemplate,
		snap.URL,
		snap.LoadTimeSeconds,
		snap.HTMLSizeKB,
		snap.HasSSL,
		snap.HasViewportMeta,
		snap.HasCharset,
		snap.HasLangAttr,
		snap.HasFavicon,
		snap.HasStructuredData,
		snap.ScriptCount,
		snap.StylesheetCount,
		len(snap.ImageURLs),
		snap.Title != "",
		snap.MetaDescription != "",
		snap.Title,
		snap.MetaDescription,
	)
}

// fallback scores technical health with deterministic rules.
func (a *TechAgent) fallback(snap *model.Snapshot) model.AgentResult {
	score := 20
	findings := make([]string, 0, 10)

	loadTime := snap.LoadTimeSeconds
	switch {
	case loadTime < 1:
		score += 15
		findings = append(findings, fmt.Sprintf("Excellent load time (%gs)", loadTime))
	case loadTime < 2:
		score += 12
		findings = append(findings, fmt.Sprintf("Good load time (%gs)", loadTime))
	case loadTime < 5:
		score += 5
		findings = append(findings, fmt.Sprintf("Moderate load time (%gs)", loadTime))
	default:
		findings = append(findings, fmt.Sprintf("Slow load time (%gs)", loadTime))
	}

	size := snap.HTMLSizeKB
	switch {
	case size < 100:
		score += 10
		findings = append(findings, fmt.Sprintf("Lightweight page (%g KB)", size))
	case size < 500:
		score += 5
		findings = append(findings, fmt.Sprintf("Moderate page size (%g KB)", size))
	default:
		findings = append(findings, fmt.Sprintf("Heavy page (%g KB)", size))
	}

	if snap.HasSSL {
		score += 10
		findings = append(findings, "HTTPS enabled")
	}
	if snap.Title != "" {
		score += 5
		findings = append(findings, "Title tag present")
	} else {
		findings = append(findings, "Missing title tag")
	}
	if snap.MetaDescription != "" {
		score += 5
		findings = append(findings, "Meta description present")
	} else {
		findings = append(findings, "Missing meta description")
	}
	if snap.HasViewportMeta {
		score += 5
		findings = append(findings, "Viewport meta present")
	}
	if snap.HasCharset {
		score += 3
		findings = append(findings, "Charset declared")
	}
	if snap.HasLangAttr {
		score += 3
		findings = append(findings, "Language attribute set")
	}
	if snap.HasFavicon {
		score += 3
		findings = append(findings, "Favicon present")
	}
	if snap.HasStructuredData {
		score += 5
		findings = append(findings, "Structured data found")
	}

	switch {
	case snap.ScriptCount > 20:
		score -= 5
		findings = append(findings, fmt.Sprintf("High script count (%d)", snap.ScriptCount))
	case snap.ScriptCount > 0:
		findings = append(findings, fmt.Sprintf("%d scripts loaded", snap.ScriptCount))
	}

	return model.AgentResult{
		AgentName: a.Name(),
		Score:     clampScore(float64(score)),
		Findings:  findings,
		Summary: fmt.Sprintf("Rule-based analysis: load=%gs, size=%gKB, %d scripts.",
			loadTime, size, snap.ScriptCount),
	}
}
