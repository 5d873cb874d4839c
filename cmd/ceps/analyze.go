package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/cache"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/config"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/llm"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/log"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/pipeline"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/report"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url]",
		Short: "Analyze the quality of a web page",
		Long: `Analyze fetches a web page and scores its quality across five dimensions:

- Content Quality (clarity, depth, metadata)
- Visual Quality (imagery, alt text)
- User Experience (structure, navigation, responsiveness)
- Trust & Credibility (HTTPS, policies, contact signals)
- Technical Health (load time, page weight, markup hygiene)

Each dimension is scored 0-100 by a Gemini model. When a model call
fails or its answer cannot be parsed, deterministic rules score the
dimension from page signals instead, so the command always produces a
report. Dimension scores are combined into a weighted overall score
with a letter grade.

Examples:
  # Analyze a page and print a human-readable report
  ceps analyze https://example.com

  # A missing scheme defaults to https
  ceps analyze example.com

  # Output a JSON report to a file
  ceps analyze --json -o report.json https://example.com

  # Output a Markdown report
  ceps analyze --markdown https://example.com

  # Reuse cached model responses between runs
  ceps analyze --cache https://example.com

  # Use a custom configuration file
  ceps analyze -c myconfig.yaml https://example.com

Configuration file (.ceps.yaml) example:
  settings:
    model: gemini-2.5-flash
    maxImages: 3
  sites:
    example.com:
      cookie: "consent=accepted"
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	// Model flags
	cmd.Flags().StringP("api-key", "k", "",
		"Gemini API key (defaults to the GEMINI_API_KEY environment variable)")
	cmd.Flags().String("model", llm.DefaultModel,
		"Gemini model used for analysis")

	// Fetch and analysis behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Page fetch timeout")
	cmd.Flags().IntP("max-images", "i", config.DefaultMaxImages,
		"Maximum number of page images sent to the vision model")
	cmd.Flags().Int("max-text-chars", 0,
		"Maximum page text characters included in prompts (0 means no limit)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum page size in bytes to read")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of analysis agents run in parallel")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with page requests")

	// Cache flags
	cmd.Flags().Bool("cache", false,
		"Cache model responses on disk and reuse them between runs")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"How long cached model responses stay valid")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ceps.yaml in current directory, XDG config, or home)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("log-json", false,
		"Emit logs as JSON lines")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	// Build config from file, environment, and flags
	cfg, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration. A missing API key aborts here, before any
	// fetching or agent work starts.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalyze(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildAnalyzeConfig creates a Config for the analyze command. Sources
// are applied in reverse precedence order: defaults first, then the
// config file, then environment variables, then explicit flags.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load settings and per-site overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.Sites = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.LoadEnv()

	if err := applyAnalyzeFlags(cmd, cfg); err != nil {
		return nil, err
	}

	// Positional argument (page URL)
	cfg.TargetURL = args[0]

	return cfg, nil
}

// applyAnalyzeFlags overlays flag values onto the config. Flags that
// share a setting with the config file or the environment only apply
// when the user set them, so flag defaults do not clobber the other
// sources.
func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("api-key") {
		v, err := flags.GetString("api-key")
		if err != nil {
			return err
		}
		cfg.APIKey = v
	}

	if flags.Changed("model") {
		v, err := flags.GetString("model")
		if err != nil {
			return err
		}
		cfg.Model = v
	}

	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = v
	}

	if flags.Changed("max-images") {
		v, err := flags.GetInt("max-images")
		if err != nil {
			return err
		}
		cfg.MaxImages = v
	}

	if flags.Changed("max-text-chars") {
		v, err := flags.GetInt("max-text-chars")
		if err != nil {
			return err
		}
		cfg.MaxTextChars = v
	}

	if flags.Changed("max-body-size") {
		v, err := flags.GetInt64("max-body-size")
		if err != nil {
			return err
		}
		cfg.MaxBodySize = v
	}

	if flags.Changed("concurrency") {
		v, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = v
	}

	if flags.Changed("user-agent") {
		v, err := flags.GetString("user-agent")
		if err != nil {
			return err
		}
		cfg.UserAgent = v
	}

	if flags.Changed("cache") {
		v, err := flags.GetBool("cache")
		if err != nil {
			return err
		}
		cfg.CacheEnabled = v
	}

	if flags.Changed("cache-ttl") {
		v, err := flags.GetDuration("cache-ttl")
		if err != nil {
			return err
		}
		cfg.CacheTTL = v
	}

	// Report flags have no config file counterpart and always apply.
	var err error
	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return err
	}

	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return err
	}

	cfg.ReportFile, err = flags.GetString("output")
	if err != nil {
		return err
	}

	cfg.LogJSON, err = flags.GetBool("log-json")
	if err != nil {
		return err
	}

	return nil
}

// setupLogger creates a structured logger with credential redaction
// based on the configured verbosity and log format.
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return log.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	}
	return log.NewSecureLogger(os.Stderr, cfg.Verbose)
}

// runAnalyze executes the analysis.
func runAnalyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"url", cfg.TargetURL,
		"model", cfg.Model,
		"concurrency", cfg.Concurrency,
		"cacheEnabled", cfg.CacheEnabled,
	)

	clientOpts := []llm.GeminiOption{
		llm.WithModel(cfg.Model),
		llm.WithLogger(logger),
	}

	// Open the generation cache when enabled
	if cfg.CacheEnabled {
		opts := cache.DefaultOptions()
		opts.TTL = cfg.CacheTTL

		store, err := cache.Open(cfg.CacheDir, opts)
		if err != nil {
			return fmt.Errorf("failed to open generation cache: %w", err)
		}
		defer store.Close()

		purged, err := store.PurgeExpired(ctx)
		if err != nil {
			logger.Warn("failed to purge expired cache entries", "error", err)
		} else if purged > 0 {
			logger.Debug("purged expired cache entries", "count", purged)
		}

		clientOpts = append(clientOpts, llm.WithCache(store))
		logger.Info("generation cache enabled", "dir", cfg.CacheDir, "ttl", cfg.CacheTTL)
	}

	client := llm.NewGeminiClient(cfg.APIKey, clientOpts...)

	p := pipeline.DefaultPipeline(client,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineTimeout(cfg.Timeout),
		pipeline.WithPipelineUserAgent(cfg.UserAgent),
		pipeline.WithPipelineMaxBodySize(cfg.MaxBodySize),
		pipeline.WithPipelineMaxImages(cfg.MaxImages),
		pipeline.WithPipelineMaxTextChars(cfg.MaxTextChars),
		pipeline.WithPipelineConcurrency(cfg.Concurrency),
		pipeline.WithPipelineSites(cfg.Sites),
		pipeline.WithPipelineProgress(printAgentProgress),
	)

	pageReport := model.NewReport(cfg.TargetURL)

	fmt.Printf("Analyzing %s...\n", cfg.TargetURL)
	startTime := time.Now()

	// Execute the pipeline
	if err := p.Execute(ctx, pageReport); err != nil {
		logger.Error("analysis failed", "url", cfg.TargetURL, "error", err)
		return fmt.Errorf("analysis failed: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Analysis completed in %s\n", elapsed.Round(time.Millisecond))

	return outputReport(cfg, pageReport)
}

// printAgentProgress prints one line per completed analysis agent. The
// dispatcher serializes progress callbacks, so plain Printf is safe.
func printAgentProgress(fraction float64, result model.AgentResult) {
	marker := ""
	if result.IsFallback() {
		marker = " (rule-based)"
	}
	fmt.Printf("  [%3.0f%%] %s: %.1f%s\n", fraction*100, result.AgentName, result.Score, marker)
}

// outputReport outputs the analysis report in the requested format.
func outputReport(cfg *config.Config, pageReport *model.Report) error {
	format := report.FormatText
	switch {
	case cfg.JSONReport:
		format = report.FormatJSON
	case cfg.MarkdownReport:
		format = report.FormatMarkdown
	}

	if cfg.ReportFile == "" {
		writer, err := report.New(format, os.Stdout)
		if err != nil {
			return err
		}
		_, err = writer.Write(pageReport)
		return err
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Create/overwrite the output file with secure permissions (0600)
	// Reports may embed page text fetched with private cookies
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	fileWriter, err := report.New(format, f)
	if err != nil {
		return err
	}

	var writer report.Writer = fileWriter
	if format != report.FormatText {
		// Keep a human-readable copy on the terminal when the file
		// format is machine-oriented.
		writer = report.NewMultiWriter(fileWriter, report.NewSimpleWriter(os.Stdout))
	}

	_, err = writer.Write(pageReport)
	return err
}
