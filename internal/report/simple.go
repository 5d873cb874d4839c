package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/extract"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/score"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether dimensions without findings appear in
	// the findings section.
	showEmpty bool

	// verbose enables per-dimension summaries and the page signal
	// section.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show dimensions with no findings.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, report)

	// Per-dimension scores
	w.writeScores(&sb, report)

	// Findings by dimension
	w.writeFindings(&sb, report)

	// Page signals (verbose only)
	if w.verbose {
		w.writePageSignals(&sb, report.Snapshot)
	}

	// Footer
	w.writeFooter(&sb, report)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       PAGE QUALITY REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("URL:       %s\n", report.URL))
	sb.WriteString(fmt.Sprintf("Analyzed:  %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:  %.1fs\n", report.ElapsedSeconds))
	sb.WriteString(fmt.Sprintf("Overall:   %.1f / 100 (Grade %s)\n", report.Overall, report.Grade))
	sb.WriteString(fmt.Sprintf("Verdict:   %s\n", report.Grade.Description()))

	if fallbacks := report.FallbackDimensions(); len(fallbacks) > 0 {
		sb.WriteString(fmt.Sprintf("Note:      %d dimension(s) scored by rules: %s\n",
			len(fallbacks), strings.Join(fallbacks, ", ")))
	}

	sb.WriteString("\n")
}

// writeScores writes the per-dimension score table.
func (w *SimpleWriter) writeScores(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DIMENSION SCORES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, key := range model.DimensionKeys {
		result, ok := report.Dimensions[key]
		if !ok {
			continue
		}

		marker := ""
		if result.IsFallback() {
			marker = "  [rule-based]"
		}
		sb.WriteString(fmt.Sprintf("  %-20s %5.1f / 100  (weight %.0f%%)%s\n",
			result.AgentName, result.Score, score.Weight(key)*100, marker))
	}
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by dimension.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, key := range model.DimensionKeys {
		result, ok := report.Dimensions[key]
		if !ok {
			continue
		}
		if len(result.Findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeDimensionFindings(sb, result)
	}
}

// writeDimensionFindings writes the findings of a single dimension.
func (w *SimpleWriter) writeDimensionFindings(sb *strings.Builder, result model.AgentResult) {
	sb.WriteString(fmt.Sprintf("[%s]\n", result.AgentName))

	if len(result.Findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range result.Findings {
		sb.WriteString(fmt.Sprintf("  * %s\n", finding))
	}
	if w.verbose && result.Summary != "" {
		sb.WriteString(fmt.Sprintf("  Summary: %s\n", result.Summary))
	}
	sb.WriteString("\n")
}

// writePageSignals writes the extracted page statistics.
func (w *SimpleWriter) writePageSignals(sb *strings.Builder, snap *model.Snapshot) {
	if snap == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE SIGNALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if snap.Title != "" {
		sb.WriteString(fmt.Sprintf("  Title:      %q\n", snap.Title))
	}
	sb.WriteString(fmt.Sprintf("  Load time:  %.2fs (HTTP %d)\n", snap.LoadTimeSeconds, snap.StatusCode))
	sb.WriteString(fmt.Sprintf("  Page size:  %.1f KB\n", snap.HTMLSizeKB))
	sb.WriteString(fmt.Sprintf("  Text:       %d characters, %d headings\n",
		utf8.RuneCountInString(snap.TextContent), snap.HeadingCount()))
	sb.WriteString(fmt.Sprintf("  Images:     %d (%d with alt text)\n",
		len(snap.ImageURLs), snap.ImagesWithAlt()))
	sb.WriteString(fmt.Sprintf("  Links:      %d internal, %d external\n",
		len(snap.InternalLinks), len(snap.ExternalLinks)))
	if platforms := extract.Platforms(snap.SocialLinks); len(platforms) > 0 {
		sb.WriteString(fmt.Sprintf("  Social:     %s\n", strings.Join(platforms, ", ")))
	}
	sb.WriteString(fmt.Sprintf("  HTTPS:      %s\n", yesNo(snap.HasSSL)))
	sb.WriteString("\n")
}

// writeFooter writes the report footer with usage totals.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	if report.Usage.Calls > 0 {
		sb.WriteString(fmt.Sprintf("Model usage: %d call(s), %d tokens (%d prompt / %d completion)\n",
			report.Usage.Calls, report.Usage.TotalTokens,
			report.Usage.PromptTokens, report.Usage.CompletionTokens))
	} else {
		sb.WriteString("Model usage: none (rule-based scoring only)\n")
	}

	sb.WriteString("Report generated by ceps-analyzer\n")
	sb.WriteString("https://github.com/jurasovic-andreja/ceps-analyzer\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// yesNo renders a boolean page signal for terminal output.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
