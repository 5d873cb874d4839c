package agent

import (
	"context"
	"log/slog"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// Agent defines the interface for individual analysis agents.
// Each agent scores one quality dimension of a page snapshot.
//
// Design decision: We use an interface rather than concrete types because:
//  1. The dispatcher treats all dimensions uniformly
//  2. Enables testing with mock agents
//  3. Allows future dimensions without touching the dispatcher
type Agent interface {
	// Key returns the dimension key used in result maps and weights.
	Key() string

	// Name returns the agent's display name for reports.
	Name() string

	// Analyze scores the snapshot. It never returns an error: when the
	// model is unreachable or unparseable the agent falls back to
	// deterministic rule-based scoring.
	Analyze(ctx context.Context, snap *model.Snapshot) model.AgentResult
}

// settings holds configuration shared by all agents.
type settings struct {
	logger *slog.Logger
}

// Option configures an agent.
type Option func(*settings)

// WithLogger sets a custom logger for an agent.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// newSettings applies options over defaults.
func newSettings(opts ...Option) settings {
	s := settings{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// promptAgent is the shape shared by the single-prompt agents.
type promptAgent interface {
	Agent
	prompt(snap *model.Snapshot) string
	fallback(snap *model.Snapshot) model.AgentResult
}

// assess runs the common model-first flow: send the agent's prompt,
// parse the verdict, and fall back to rule-based scoring when either
// step fails.
func assess(ctx context.Context, client llm.Client, logger *slog.Logger, a promptAgent, snap *model.Snapshot) model.AgentResult {
	logger.Debug("starting analysis", "agent", a.Key(), "url", snap.URL)

	raw, err := client.GenerateText(ctx, a.prompt(snap))
	if err != nil {
		logger.Warn("model call failed, using rule-based fallback",
			"agent", a.Key(),
			"error", err,
		)
		return a.fallback(snap)
	}

	assessment, err := llm.ParseAssessment(raw)
	if err != nil {
		logger.Warn("model response unusable, using rule-based fallback",
			"agent", a.Key(),
			"error", err,
		)
		return a.fallback(snap)
	}

	result := model.AgentResult{
		AgentName: a.Name(),
		Score:     clampScore(assessment.Score),
		Findings:  assessment.Findings,
		Summary:   assessment.Summary,
	}
	if result.Findings == nil {
		result.Findings = []string{}
	}

	logger.Debug("analysis complete", "agent", a.Key(), "score", result.Score)
	return result
}

// clampScore forces a score into the 0-100 range. Models occasionally
// ignore the range stated in the prompt.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// excerpt returns at most n runes of s for prompt embedding.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// yesNo renders a boolean the way the fallback summaries cite it.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
