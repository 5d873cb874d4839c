package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/report"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// Constants for score change direction.
const (
	directionImproved  = "improved"
	directionWorsened  = "worsened"
	directionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares two analysis reports saved with --json.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [before-report] [after-report]",
		Short: "Compare two saved analysis reports",
		Long: `Compare displays differences between two analysis reports of the same page.

Both arguments are JSON report files written by 'ceps analyze --json -o'.
The comparison shows:
- The change in the overall score and grade
- Per-dimension score changes
- New findings that appeared in the later report
- Resolved findings that are no longer present

Examples:
  # Save a baseline, then compare after changing the page
  ceps analyze --json -o before.json https://example.com
  ceps analyze --json -o after.json https://example.com
  ceps compare before.json after.json

  # Output the comparison as JSON for scripting
  ceps compare --format json before.json after.json

  # Output the comparison as Markdown for a pull request
  ceps compare --format markdown before.json after.json`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("format", "f", string(report.FormatText),
		"Output format: text, json, or markdown")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	previous, err := loadReport(args[0])
	if err != nil {
		return err
	}
	current, err := loadReport(args[1])
	if err != nil {
		return err
	}

	if previous.URL != current.URL {
		return fmt.Errorf("reports describe different pages: %s vs %s", previous.URL, current.URL)
	}

	result := compareReports(previous, current)

	out := cmd.OutOrStdout()
	switch format {
	case report.FormatJSON:
		return writeComparisonJSON(out, result)
	case report.FormatMarkdown:
		return writeComparisonMarkdown(out, result)
	default:
		return writeComparisonText(out, result)
	}
}

// loadReport reads an analysis report previously saved with --json.
// It accepts both the plain report document and the versioned envelope.
func loadReport(path string) (*model.Report, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var rep model.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse report file %s: %w", path, err)
	}
	if rep.URL != "" {
		return &rep, nil
	}

	var wrapped report.JSONReport
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Report != nil && wrapped.Report.URL != "" {
		return wrapped.Report, nil
	}

	return nil, fmt.Errorf("%s does not look like a ceps JSON report", path)
}

// ComparisonResult holds the result of comparing two analysis reports.
type ComparisonResult struct {
	// URL is the analyzed page.
	URL string `json:"url"`

	// Previous contains metadata about the earlier report.
	Previous ReportSummary `json:"previous"`

	// Current contains metadata about the later report.
	Current ReportSummary `json:"current"`

	// OverallDelta is the change in the overall score.
	OverallDelta float64 `json:"overall_delta"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// Dimensions holds the per-dimension changes in canonical order.
	Dimensions []DimensionChange `json:"dimensions"`
}

// ReportSummary contains metadata about one report for comparison display.
type ReportSummary struct {
	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Overall is the weighted overall score.
	Overall float64 `json:"overall_score"`

	// Grade is the letter grade for the overall score.
	Grade model.Grade `json:"grade"`
}

// DimensionChange describes how one quality dimension changed between
// two reports.
type DimensionChange struct {
	// Key is the dimension key, for example "text" or "trust".
	Key string `json:"key"`

	// Name is the human-readable agent name.
	Name string `json:"name"`

	// PreviousScore is the dimension score in the earlier report.
	PreviousScore float64 `json:"previous_score"`

	// CurrentScore is the dimension score in the later report.
	CurrentScore float64 `json:"current_score"`

	// Delta is the score change, rounded to one decimal.
	Delta float64 `json:"delta"`

	// PreviousSource is "model" or "rule-based" for the earlier report.
	PreviousSource string `json:"previous_source"`

	// CurrentSource is "model" or "rule-based" for the later report.
	CurrentSource string `json:"current_source"`

	// NewFindings contains findings present only in the later report.
	NewFindings []string `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings present only in the earlier report.
	ResolvedFindings []string `json:"resolved_findings,omitempty"`
}

// compareReports compares two analysis reports of the same page.
func compareReports(previous, current *model.Report) *ComparisonResult {
	result := &ComparisonResult{
		URL: current.URL,
		Previous: ReportSummary{
			AnalyzedAt: previous.AnalyzedAt,
			Overall:    previous.Overall,
			Grade:      previous.Grade,
		},
		Current: ReportSummary{
			AnalyzedAt: current.AnalyzedAt,
			Overall:    current.Overall,
			Grade:      current.Grade,
		},
	}

	result.OverallDelta = roundDelta(current.Overall - previous.Overall)
	switch {
	case result.OverallDelta > 0:
		result.Direction = directionImproved
	case result.OverallDelta < 0:
		result.Direction = directionWorsened
	default:
		result.Direction = directionUnchanged
	}

	for _, key := range model.DimensionKeys {
		prev, prevOK := previous.Dimensions[key]
		cur, curOK := current.Dimensions[key]
		if !prevOK && !curOK {
			continue
		}

		change := DimensionChange{
			Key:              key,
			Name:             cur.AgentName,
			PreviousScore:    prev.Score,
			CurrentScore:     cur.Score,
			Delta:            roundDelta(cur.Score - prev.Score),
			PreviousSource:   scoreSource(prev),
			CurrentSource:    scoreSource(cur),
			NewFindings:      diffFindings(cur.Findings, prev.Findings),
			ResolvedFindings: diffFindings(prev.Findings, cur.Findings),
		}
		if change.Name == "" {
			change.Name = prev.AgentName
		}

		result.Dimensions = append(result.Dimensions, change)
	}

	return result
}

// findingTotals returns the number of new and resolved findings across
// all dimensions.
func (r *ComparisonResult) findingTotals() (newCount, resolvedCount int) {
	for _, change := range r.Dimensions {
		newCount += len(change.NewFindings)
		resolvedCount += len(change.ResolvedFindings)
	}
	return newCount, resolvedCount
}

// diffFindings returns the findings in a that are absent from b,
// preserving a's order.
func diffFindings(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, f := range b {
		seen[f] = struct{}{}
	}

	var diff []string
	for _, f := range a {
		if _, ok := seen[f]; !ok {
			diff = append(diff, f)
		}
	}
	return diff
}

// scoreSource reports whether a dimension was scored by the model or
// by the deterministic rules.
func scoreSource(result model.AgentResult) string {
	if result.IsFallback() {
		return "rule-based"
	}
	return "model"
}

// roundDelta rounds a score difference to one decimal place. Scores are
// already stored with one decimal, so this only removes float noise.
func roundDelta(delta float64) float64 {
	return math.Round(delta*10) / 10
}

// formatScoreDelta formats a score delta with an explicit sign.
func formatScoreDelta(delta float64) string {
	if delta > 0 {
		return fmt.Sprintf("+%.1f", delta)
	}
	return fmt.Sprintf("%.1f", delta)
}

// writeComparisonJSON outputs the comparison result in JSON format.
func writeComparisonJSON(w io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeComparisonText outputs the comparison result in human-readable
// text format.
func writeComparisonText(w io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(w, "Quality Comparison: %s\n", result.URL)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nOverall: %.1f -> %.1f (%s, %s)\n",
		result.Previous.Overall, result.Current.Overall,
		formatScoreDelta(result.OverallDelta), result.Direction)
	fmt.Fprintf(w, "Grade:   %s -> %s\n", result.Previous.Grade, result.Current.Grade)

	fmt.Fprintf(w, "\nPrevious report: %s\n", result.Previous.AnalyzedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Current report:  %s\n", result.Current.AnalyzedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintln(w, "\nDimension Scores:")
	fmt.Fprintf(w, "  %-20s  %-10s  %-10s  %s\n", "Dimension", "Before", "After", "Change")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 52))
	for _, change := range result.Dimensions {
		fmt.Fprintf(w, "  %-20s  %-10.1f  %-10.1f  %s\n",
			change.Name, change.PreviousScore, change.CurrentScore,
			formatScoreDelta(change.Delta))
	}

	newTotal, resolvedTotal := result.findingTotals()

	if newTotal > 0 {
		fmt.Fprintf(w, "\nNew Findings (%d):\n", newTotal)
		for _, change := range result.Dimensions {
			for _, f := range change.NewFindings {
				fmt.Fprintf(w, "  [+] [%s] %s\n", change.Name, f)
			}
		}
	}

	if resolvedTotal > 0 {
		fmt.Fprintf(w, "\nResolved Findings (%d):\n", resolvedTotal)
		for _, change := range result.Dimensions {
			for _, f := range change.ResolvedFindings {
				fmt.Fprintf(w, "  [-] [%s] %s\n", change.Name, f)
			}
		}
	}

	return nil
}

// writeComparisonMarkdown outputs the comparison result in Markdown format.
func writeComparisonMarkdown(w io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(w)

	md.H1("Quality Comparison")
	md.PlainTextf("Page: `%s`", result.URL)

	switch result.Direction {
	case directionImproved:
		md.Tip(fmt.Sprintf("Overall score improved by %s (%.1f to %.1f).",
			formatScoreDelta(result.OverallDelta), result.Previous.Overall, result.Current.Overall))
	case directionWorsened:
		md.Cautionf("Overall score dropped by %.1f (%.1f to %.1f).",
			-result.OverallDelta, result.Previous.Overall, result.Current.Overall)
	default:
		md.Note("Overall score is unchanged.")
	}

	md.H2("Scores")
	rows := [][]string{
		{
			"Overall",
			fmt.Sprintf("%.1f", result.Previous.Overall),
			fmt.Sprintf("%.1f", result.Current.Overall),
			formatScoreDelta(result.OverallDelta),
		},
		{"Grade", string(result.Previous.Grade), string(result.Current.Grade), "-"},
	}
	for _, change := range result.Dimensions {
		rows = append(rows, []string{
			change.Name,
			fmt.Sprintf("%.1f (%s)", change.PreviousScore, change.PreviousSource),
			fmt.Sprintf("%.1f (%s)", change.CurrentScore, change.CurrentSource),
			formatScoreDelta(change.Delta),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Before", "After", "Change"},
		Rows:   rows,
	})

	newTotal, resolvedTotal := result.findingTotals()

	if newTotal > 0 {
		md.H2(fmt.Sprintf("New Findings (%d)", newTotal))
		var items []string
		for _, change := range result.Dimensions {
			for _, f := range change.NewFindings {
				items = append(items, fmt.Sprintf("**%s**: %s", change.Name, f))
			}
		}
		md.BulletList(items...)
	}

	if resolvedTotal > 0 {
		md.H2(fmt.Sprintf("Resolved Findings (%d)", resolvedTotal))
		var items []string
		for _, change := range result.Dimensions {
			for _, f := range change.ResolvedFindings {
				items = append(items, fmt.Sprintf("**%s**: %s", change.Name, f))
			}
		}
		md.BulletList(items...)
	}

	return md.Build()
}
