package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/config"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// ProgressFunc receives the fraction of agents completed so far, in
// (0, 1], and the result that just finished. Calls are serialized by
// the dispatcher, so fractions arrive in increasing order.
type ProgressFunc func(fraction float64, result model.AgentResult)

// Dispatcher runs analysis agents concurrently over one snapshot.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each agent gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously. The limit stays small because each agent holds an
// open API request for most of its runtime.
type Dispatcher struct {
	// agents is the list of agents to run.
	agents []Agent

	// concurrency is the maximum number of agents running at once.
	concurrency int

	// progress, when set, is called after each agent completes.
	progress ProgressFunc

	// logger is used for dispatch-level logging.
	logger *slog.Logger

	// mu guards the result map and the completion counter.
	mu sync.Mutex
}

// DispatchOption configures a Dispatcher.
type DispatchOption func(*Dispatcher)

// WithConcurrency sets the maximum number of concurrently running
// agents. Non-positive values are ignored.
func WithConcurrency(n int) DispatchOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithProgress sets a callback fired after each agent completes.
func WithProgress(fn ProgressFunc) DispatchOption {
	return func(d *Dispatcher) {
		d.progress = fn
	}
}

// WithDispatchLogger sets a custom logger for the dispatcher.
func WithDispatchLogger(logger *slog.Logger) DispatchOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a Dispatcher over the given agents.
func NewDispatcher(agents []Agent, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		agents:      agents,
		concurrency: config.DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = slog.Default()
	}

	return d
}

// Run executes every agent against the snapshot and returns one result
// per dimension key.
//
// The map always contains an entry for every registered agent: agents
// fall back to rule-based scoring instead of failing, and cancellation
// only starves their model calls, which routes them to the same
// fallback. That guarantee is what lets the aggregator treat a missing
// key as a programming error.
func (d *Dispatcher) Run(ctx context.Context, snap *model.Snapshot) map[string]model.AgentResult {
	d.logger.Info("dispatching agents",
		"agents", len(d.agents),
		"concurrency", d.concurrency,
		"url", snap.URL,
	)

	startTime := time.Now()
	results := make(map[string]model.AgentResult, len(d.agents))
	completed := 0
	total := len(d.agents)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, a := range d.agents {
		a := a
		g.Go(func() error {
			result := a.Analyze(gctx, snap)

			d.mu.Lock()
			results[a.Key()] = result
			completed++
			fraction := float64(completed) / float64(total)
			if d.progress != nil {
				d.progress(fraction, result)
			}
			d.mu.Unlock()

			return nil
		})
	}

	// Agents never return errors, so Wait only synchronizes.
	_ = g.Wait() //nolint:errcheck // worker funcs always return nil

	d.logger.Info("all agents complete",
		"agents", total,
		"fallbacks", countFallbacks(results),
		"elapsed", time.Since(startTime),
	)

	return results
}

// countFallbacks reports how many results came from rule-based scoring.
func countFallbacks(results map[string]model.AgentResult) int {
	n := 0
	for _, r := range results {
		if r.IsFallback() {
			n++
		}
	}
	return n
}

// DefaultAgents returns the five analysis agents in reporting order.
func DefaultAgents(client llm.Client, fetcher llm.Fetcher, opts ...Option) []Agent {
	return []Agent{
		NewTextAgent(client, opts...),
		NewVisualAgent(client, fetcher, opts...),
		NewUXAgent(client, opts...),
		NewTrustAgent(client, opts...),
		NewTechAgent(client, opts...),
	}
}
