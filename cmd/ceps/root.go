// Package main provides the entry point for the ceps CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ceps.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ceps",
		Short: "Composite quality analyzer for web pages",
		Long: `ceps fetches a web page and scores its quality across five dimensions:
content, visual design, user experience, trustworthiness, and technical
health. Each dimension is scored by a Gemini model; when the model is
unreachable or returns garbage, deterministic page-signal rules take
over, so a report is always produced.

Set GEMINI_API_KEY before running an analysis.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
