package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// visualAltTextLimit caps how many alt texts the metadata prompt lists.
const visualAltTextLimit = 10

// visualMetaPromptTemplate judges visuals from image metadata alone.
const visualMetaPromptTemplate = `You are a website visual-design auditor.
Based on the image metadata below, evaluate the visual quality of the page.

URL: %s
Number of images found: %d
Images with alt-text: %d / %d
Alt texts: %s

Score the visual dimension 0-100 considering:
1. Presence and quantity of meaningful images
2. Alt-text quality and accessibility
3. Image-to-content ratio

IMPORTANT RULES:
- Base your score ONLY on the metadata numbers above.
- Every finding MUST cite the specific counts or texts provided.
- Do NOT assume anything about what the images look like from metadata alone.

Return ONLY this JSON:
{
  "score": <integer 0-100>,
  "findings": ["<finding 1>", ...],
  "summary": "<one-sentence assessment>"
}`

// visualVisionPromptTemplate judges the downloaded images themselves.
const visualVisionPromptTemplate = `You are a website visual-design auditor.
Look at the following website image(s) and evaluate:
1. Visual hierarchy and layout quality
2. Color scheme and contrast
3. Image relevance to likely page content
4. Overall aesthetic professionalism

IMPORTANT RULES:
- Base your evaluation ONLY on what you can see in the provided image(s).
- Each finding MUST describe something visible in the image(s).
- Do NOT speculate about parts of the website not shown.

Return ONLY this JSON:
{
  "score": <integer 0-100>,
  "findings": ["<finding 1>", ...],
  "summary": "<one-sentence assessment>"
}`

// VisualAgent scores visual quality in two phases: a metadata pass
// over image counts and alt coverage that always runs, and a vision
// pass over the downloaded images when the snapshot lists any.
//
// Design decision: The phases are blended 60/40 in favor of vision
// because what the images actually look like says more about design
// quality than their count does. Either phase alone still produces a
// usable score, so a broken image host degrades the answer instead of
// discarding it.
type VisualAgent struct {
	client  llm.Client
	fetcher llm.Fetcher
	logger  *slog.Logger
}

// NewVisualAgent creates the visual quality agent. A nil fetcher gets
// the default HTTP image fetcher.
func NewVisualAgent(client llm.Client, fetcher llm.Fetcher, opts ...Option) *VisualAgent {
	s := newSettings(opts...)
	if fetcher == nil {
		fetcher = llm.NewHTTPFetcher()
	}
	return &VisualAgent{
		client:  client,
		fetcher: fetcher,
		logger:  s.logger,
	}
}

// Key returns the dimension key.
func (a *VisualAgent) Key() string {
	return model.DimensionVisual
}

// Name returns the display name.
func (a *VisualAgent) Name() string {
	return "Visual Quality"
}

// Analyze scores the snapshot's visual quality.
func (a *VisualAgent) Analyze(ctx context.Context, snap *model.Snapshot) model.AgentResult {
	a.logger.Debug("starting analysis", "agent", a.Key(), "url", snap.URL)

	imageCount := len(snap.ImageURLs)
	altCount := snap.ImagesWithAlt()

	// Phase 1: metadata-based scoring, always runs.
	var metaScore float64
	var metaFindings []string
	metaOK := false

	raw, err := a.client.GenerateText(ctx, a.metaPrompt(snap, imageCount, altCount))
	if err != nil {
		a.logger.Warn("metadata phase failed, skipping", "agent", a.Key(), "error", err)
	} else if assessment, perr := llm.ParseAssessment(raw); perr != nil {
		a.logger.Warn("metadata response unusable, skipping", "agent", a.Key(), "error", perr)
	} else {
		metaOK = true
		metaScore = clampScore(assessment.Score)
		metaFindings = assessment.Findings
	}

	// Phase 2: vision scoring, only when the page has images.
	var visionScore float64
	var visionFindings []string
	visionOK := false

	if imageCount > 0 {
		images := llm.FetchAll(ctx, a.fetcher, snap.ImageURLs)
		a.logger.Debug("fetched page images",
			"agent", a.Key(),
			"requested", imageCount,
			"fetched", len(images),
		)

		if len(images) > 0 {
			raw, err := a.client.GenerateFromImages(ctx, visualVisionPromptTemplate, images)
			if err != nil {
				a.logger.Warn("vision phase failed, skipping", "agent", a.Key(), "error", err)
			} else if assessment, perr := llm.ParseAssessment(raw); perr != nil {
				a.logger.Warn("vision response unusable, skipping", "agent", a.Key(), "error", perr)
			} else {
				visionOK = true
				visionScore = clampScore(assessment.Score)
				visionFindings = assessment.Findings
			}
		}
	}

	// Blend whatever succeeded.
	var score float64
	var findings []string
	switch {
	case metaOK && visionOK:
		score = math.Round((visionScore*0.6+metaScore*0.4)*10) / 10
		findings = append(append([]string{}, metaFindings...), visionFindings...)
	case visionOK:
		score = visionScore
		findings = visionFindings
	case metaOK:
		score = metaScore
		findings = metaFindings
	default:
		a.logger.Warn("both phases failed, using rule-based fallback", "agent", a.Key())
		return a.fallback(snap)
	}
	if findings == nil {
		findings = []string{}
	}

	a.logger.Debug("analysis complete", "agent", a.Key(), "score", score)
	return model.AgentResult{
		AgentName: a.Name(),
		Score:     score,
		Findings:  findings,
		Summary:   fmt.Sprintf("Visual score %.1f/100 based on %d image(s).", score, imageCount),
	}
}

// metaPrompt builds the metadata prompt from image counts and alt
// texts.
func (a *VisualAgent) metaPrompt(snap *model.Snapshot, imageCount, altCount int) string {
	altTexts := make([]string, 0, imageCount)
	for _, u := range snap.ImageURLs {
		altTexts = append(altTexts, snap.ImageAltTexts[u])
	}
	if len(altTexts) > visualAltTextLimit {
		altTexts = altTexts[:visualAltTextLimit]
	}

	return fmt.Sprintf(visualMetaPromptTemplate,
		snap.URL,
		imageCount,
		altCount,
		imageCount,
		fmt.Sprintf("%q", altTexts),
	)
}

// fallback scores visual quality with deterministic rules.
func (a *VisualAgent) fallback(snap *model.Snapshot) model.AgentResult {
	score := 30
	findings := make([]string, 0, 2)

	imageCount := len(snap.ImageURLs)
	altCount := snap.ImagesWithAlt()

	switch {
	case imageCount == 0:
		score -= 10
		findings = append(findings, "No images found on page")
	case imageCount <= 2:
		score += 10
		findings = append(findings, fmt.Sprintf("%d image(s) found, minimal visuals", imageCount))
	default:
		score += 20
		findings = append(findings, fmt.Sprintf("%d images found, good visual presence", imageCount))
	}

	if imageCount > 0 {
		pct := int(math.Round(float64(altCount) / float64(imageCount) * 100))
		switch {
		case pct == 100:
			score += 20
			findings = append(findings, fmt.Sprintf("All %d images have alt-text", imageCount))
		case pct >= 50:
			score += 10
			findings = append(findings, fmt.Sprintf("%d/%d images have alt-text (%d%%)", altCount, imageCount, pct))
		default:
			findings = append(findings, fmt.Sprintf("Only %d/%d images have alt-text (%d%%), poor accessibility", altCount, imageCount, pct))
		}
	}

	return model.AgentResult{
		AgentName: a.Name(),
		Score:     clampScore(float64(score)),
		Findings:  findings,
		Summary:   fmt.Sprintf("Rule-based analysis: %d image(s), %d with alt-text.", imageCount, altCount),
	}
}
