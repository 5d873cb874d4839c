package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/agent"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/config"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/extract"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/fetch"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/score"
)

// FetchStep retrieves the page document over HTTP.
// It stores the raw HTML on the report together with a snapshot
// skeleton carrying the final URL, load time, and status code for the
// extract step to build on.
//
// Design decision: Fetching is a separate step because:
// 1. It's the only step that talks to the target site
// 2. Its failure aborts the run before any model spend
// 3. Tests can skip it and seed the report with a canned document
type FetchStep struct {
	// fetcher performs the HTTP page retrieval.
	fetcher *fetch.Fetcher

	// logger for structured logging.
	logger *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a new page fetch step.
func NewFetchStep(fetcher *fetch.Fetcher, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		fetcher: fetcher,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, report *model.Report) error {
	result, err := s.fetcher.Fetch(ctx, report.URL)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	report.RawHTML = result.HTML

	// Snapshot skeleton; the extract step fills in the page signals.
	snap := model.NewSnapshot(result.FinalURL)
	snap.LoadTimeSeconds = result.LoadTimeSeconds
	snap.StatusCode = result.StatusCode
	report.Snapshot = snap

	s.logger.Debug("page fetched",
		"url", result.FinalURL,
		"status", result.StatusCode,
		"loadSeconds", result.LoadTimeSeconds,
	)

	return nil
}

// ExtractStep parses the fetched document into the page snapshot that
// every analysis agent reads.
type ExtractStep struct {
	// extractor builds the snapshot from raw HTML.
	extractor *extract.Extractor

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new snapshot extraction step.
func NewExtractStep(extractor *extract.Extractor, opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		extractor: extractor,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extract step.
func (s *ExtractStep) Do(_ context.Context, report *model.Report) error {
	if report.RawHTML == "" || report.Snapshot == nil {
		return ErrNoDocument
	}

	skeleton := report.Snapshot
	snap, err := s.extractor.Snapshot(report.RawHTML, skeleton.URL, skeleton.LoadTimeSeconds)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	snap.StatusCode = skeleton.StatusCode
	report.Snapshot = snap

	s.logger.Debug("snapshot extracted",
		"url", snap.URL,
		"images", len(snap.ImageURLs),
		"internalLinks", len(snap.InternalLinks),
		"textChars", len(snap.TextContent),
	)

	return nil
}

// UsageSource reports cumulative generative API usage.
// The Gemini client implements it; test fakes can too.
type UsageSource interface {
	Usage() model.Usage
}

// AnalyzeStep runs the five analysis agents over the snapshot and
// stores one result per dimension on the report.
//
// Design decision: The step owns the dispatcher rather than the agent
// list because:
// 1. The dispatcher already encodes the concurrency cap and progress hook
// 2. Agents never fail, so this step only fails on broken wiring
// 3. Usage is snapshotted here, right after the last model call
type AnalyzeStep struct {
	// dispatcher fans the snapshot out to the agents.
	dispatcher *agent.Dispatcher

	// usage, when set, is copied onto the report after analysis.
	usage UsageSource

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeUsage sets the usage source copied onto the report.
func WithAnalyzeUsage(src UsageSource) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.usage = src
	}
}

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(dispatcher *agent.Dispatcher, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		dispatcher: dispatcher,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analyze step.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.Report) error {
	if report.Snapshot == nil {
		return ErrNoSnapshot
	}

	report.Dimensions = s.dispatcher.Run(ctx, report.Snapshot)
	if s.usage != nil {
		report.Usage = s.usage.Usage()
	}

	return nil
}

// ComposeStep folds the five dimension results into the overall score
// and grade.
type ComposeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// ComposeStepOption configures a ComposeStep.
type ComposeStepOption func(*ComposeStep)

// WithComposeLogger sets a custom logger for the compose step.
func WithComposeLogger(logger *slog.Logger) ComposeStepOption {
	return func(s *ComposeStep) {
		s.logger = logger
	}
}

// NewComposeStep creates a new score composition step.
func NewComposeStep(opts ...ComposeStepOption) *ComposeStep {
	s := &ComposeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ComposeStep) Name() string {
	return "compose"
}

// Do executes the compose step.
func (s *ComposeStep) Do(_ context.Context, report *model.Report) error {
	overall, grade, err := score.Compose(report.Dimensions)
	if err != nil {
		return fmt.Errorf("compose failed: %w", err)
	}

	report.Overall = overall
	report.Grade = grade

	s.logger.Info("scores composed",
		"overall", overall,
		"grade", grade.String(),
		"fallbacks", len(report.FallbackDimensions()),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Timeout bounds the page fetch.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with page requests.
	UserAgent string

	// MaxBodySize is the maximum page body size in bytes.
	MaxBodySize int64

	// MaxImages caps how many images the visual agent downloads.
	MaxImages int

	// MaxTextChars truncates the snapshot text content when positive.
	MaxTextChars int

	// Concurrency caps how many agents run at once.
	Concurrency int

	// Progress, when set, is invoked after each agent completes.
	Progress agent.ProgressFunc

	// HTTPClient overrides the transport for page and image fetches.
	// Mainly a test seam.
	HTTPClient *http.Client

	// Sites carries per-site request overrides from the config file.
	Sites *config.File
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineTimeout sets the page fetch timeout.
func WithPipelineTimeout(timeout time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Timeout = timeout
	}
}

// WithPipelineUserAgent sets the User-Agent header for page requests.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.UserAgent = userAgent
	}
}

// WithPipelineMaxBodySize sets the maximum page body size in bytes.
func WithPipelineMaxBodySize(maxBodySize int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxBodySize = maxBodySize
	}
}

// WithPipelineMaxImages caps how many images the visual agent downloads.
func WithPipelineMaxImages(maxImages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxImages = maxImages
	}
}

// WithPipelineMaxTextChars truncates the snapshot text content.
func WithPipelineMaxTextChars(maxTextChars int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxTextChars = maxTextChars
	}
}

// WithPipelineConcurrency caps how many agents run at once.
func WithPipelineConcurrency(concurrency int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Concurrency = concurrency
	}
}

// WithPipelineProgress sets the per-agent completion callback.
func WithPipelineProgress(progress agent.ProgressFunc) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Progress = progress
	}
}

// WithPipelineHTTPClient overrides the HTTP client used for page and
// image fetches.
func WithPipelineHTTPClient(client *http.Client) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.HTTPClient = client
	}
}

// WithPipelineSites sets per-site request overrides from the config file.
func WithPipelineSites(sites *config.File) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Sites = sites
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard fetch, extract, analyze, compose chain the CLI
// runs for a page.
//
// Design decision: We provide a default pipeline because:
// 1. Most callers want the full chain
// 2. Reduces boilerplate in the CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineTimeout, etc).
func DefaultPipeline(client llm.Client, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	// Apply default config
	cfg := &DefaultPipelineConfig{
		Timeout:     config.DefaultTimeout,
		UserAgent:   config.DefaultUserAgent,
		MaxBodySize: config.DefaultMaxBodySize,
		MaxImages:   config.DefaultMaxImages,
		Concurrency: config.DefaultConcurrency,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	// Build the page fetcher
	fetchOpts := []fetch.Option{
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(p.logger),
	}
	if cfg.HTTPClient != nil {
		fetchOpts = append(fetchOpts, fetch.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Sites != nil {
		fetchOpts = append(fetchOpts, fetch.WithSiteOverrides(cfg.Sites))
	}

	// Build the snapshot extractor
	extractOpts := []extract.Option{
		extract.WithMaxImages(cfg.MaxImages),
	}
	if cfg.MaxTextChars > 0 {
		extractOpts = append(extractOpts, extract.WithMaxTextChars(cfg.MaxTextChars))
	}

	// Build the agents and their dispatcher
	imageOpts := []llm.HTTPFetcherOption{}
	if cfg.HTTPClient != nil {
		imageOpts = append(imageOpts, llm.WithFetchClient(cfg.HTTPClient))
	}
	agents := agent.DefaultAgents(client, llm.NewHTTPFetcher(imageOpts...), agent.WithLogger(p.logger))

	dispatchOpts := []agent.DispatchOption{
		agent.WithConcurrency(cfg.Concurrency),
		agent.WithDispatchLogger(p.logger),
	}
	if cfg.Progress != nil {
		dispatchOpts = append(dispatchOpts, agent.WithProgress(cfg.Progress))
	}

	analyzeOpts := []AnalyzeStepOption{
		WithAnalyzeLogger(p.logger),
	}
	if src, ok := client.(UsageSource); ok {
		analyzeOpts = append(analyzeOpts, WithAnalyzeUsage(src))
	}

	// Add steps in logical order
	p.AddSteps(
		NewFetchStep(fetch.New(cfg.Timeout, fetchOpts...), WithFetchLogger(p.logger)),
		NewExtractStep(extract.New(extractOpts...), WithExtractLogger(p.logger)),
		NewAnalyzeStep(agent.NewDispatcher(agents, dispatchOpts...), analyzeOpts...),
		NewComposeStep(WithComposeLogger(p.logger)),
	)

	return p
}
