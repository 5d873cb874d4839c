package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// trustSocialURLLimit caps how many social URLs the prompt lists.
const trustSocialURLLimit = 5

// trustPromptTemplate asks the model to judge trustworthiness from
// security and credibility signals.
const trustPromptTemplate = `You are a website trust and credibility auditor.
Analyse the following signals and score the page's trustworthiness.

URL: %s
Has SSL (HTTPS): %t
Has privacy policy: %t
Has contact information: %t
Social media links found: %d
Social URLs: %s
External links count: %d
Has structured data (schema.org): %t
Forms count: %d
Title: %s
Meta description: %s

Evaluate:
1. SSL / HTTPS security
2. Privacy policy presence
3. Contact information availability
4. Social media presence (legitimacy signal)
5. Professional presentation (title, meta)
6. Structured data for search credibility
7. Any red-flag patterns (e.g. excessive forms, no legal pages)

IMPORTANT RULES:
- Base your evaluation ONLY on the data provided above.
- Every finding MUST reference a specific value (e.g. "SSL is true", "0 social links found").
- Do NOT speculate about content, design, or anything not in the data.
- If a field is true, treat it as a positive signal. If false, treat it as a gap.

Return ONLY this JSON:
{
  "score": <integer 0-100>,
  "findings": ["<finding 1>", ...],
  "summary": "<one-sentence assessment>"
}`

// TrustAgent scores trust and credibility: security, legal pages, and
// legitimacy signals.
type TrustAgent struct {
	client llm.Client
	logger *slog.Logger
}

// NewTrustAgent creates the trust and credibility agent.
func NewTrustAgent(client llm.Client, opts ...Option) *TrustAgent {
	s := newSettings(opts...)
	return &TrustAgent{
		client: client,
		logger: s.logger,
	}
}

// Key returns the dimension key.
func (a *TrustAgent) Key() string {
	return model.DimensionTrust
}

// Name returns the display name.
func (a *TrustAgent) Name() string {
	return "Trust & Credibility"
}

// Analyze scores the snapshot's trustworthiness.
func (a *TrustAgent) Analyze(ctx context.Context, snap *model.Snapshot) model.AgentResult {
	return assess(ctx, a.client, a.logger, a, snap)
}

// prompt builds the trust prompt from the snapshot.
func (a *TrustAgent) prompt(snap *model.Snapshot) string {
	socialURLs := snap.SocialLinks
	if len(socialURLs) > trustSocialURLLimit {
		socialURLs = socialURLs[:trustSocialURLLimit]
	}

	return fmt.Sprintf(trustPromptTemplate,
		snap.URL,
		snap.HasSSL,
		snap.HasPrivacyPolicy,
		snap.HasContactInfo,
		len(snap.SocialLinks),
		fmt.Sprintf("%q", socialURLs),
		len(snap.ExternalLinks),
		snap.HasStructuredData,
		snap.FormCount,
		snap.Title,
		snap.MetaDescription,
	)
}

// fallback scores trust with deterministic rules.
func (a *TrustAgent) fallback(snap *model.Snapshot) model.AgentResult {
	score := 20
	findings := make([]string, 0, 6)

	if snap.HasSSL {
		score += 20
		findings = append(findings, "HTTPS / SSL enabled")
	} else {
		findings = append(findings, "No HTTPS, major trust concern")
	}

	if snap.HasPrivacyPolicy {
		score += 15
		findings = append(findings, "Privacy policy detected")
	} else {
		findings = append(findings, "No privacy policy found")
	}

	if snap.HasContactInfo {
		score += 15
		findings = append(findings, "Contact information detected")
	} else {
		findings = append(findings, "No contact information found")
	}

	socialCount := len(snap.SocialLinks)
	switch {
	case socialCount >= 2:
		score += 10
		findings = append(findings, fmt.Sprintf("%d social media links, good legitimacy signal", socialCount))
	case socialCount == 1:
		score += 5
		findings = append(findings, "1 social media link found")
	default:
		findings = append(findings, "No social media links")
	}

	if snap.HasStructuredData {
		score += 10
		findings = append(findings, "Structured data (schema.org) present")
	}

	if snap.Title != "" && snap.MetaDescription != "" {
		score += 5
		findings = append(findings, "Professional title and meta description present")
	}

	return model.AgentResult{
		AgentName: a.Name(),
		Score:     clampScore(float64(score)),
		Findings:  findings,
		Summary: fmt.Sprintf("Rule-based analysis: SSL=%s, privacy=%s, contact=%s.",
			yesNo(snap.HasSSL), yesNo(snap.HasPrivacyPolicy), yesNo(snap.HasContactInfo)),
	}
}
