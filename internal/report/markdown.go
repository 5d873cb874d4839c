package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/extract"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
	"github.com/jurasovic-andreja/ceps-analyzer/internal/score"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, report)

	// Per-dimension scores
	w.writeScores(md, report)

	// Findings by dimension
	w.writeFindings(md, report)

	// Page signals
	w.writePageSignals(md, report.Snapshot)

	// Usage totals
	w.writeUsage(md, report)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Page Quality Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + report.URL + "`"},
			{"Analyzed", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")},
			{"Overall Score", fmt.Sprintf("**%.1f / 100**", report.Overall)},
			{"Grade", w.gradeBadge(report.Grade)},
			{"Duration", fmt.Sprintf("%.1fs", report.ElapsedSeconds)},
		},
	})
	md.PlainText("")

	// Add alert based on grade
	w.writeAlert(md, report)
}

// gradeBadge returns the grade with a color indicator.
func (w *MarkdownWriter) gradeBadge(grade model.Grade) string {
	switch grade {
	case model.GradeAPlus, model.GradeA:
		return "🟢 " + grade.String()
	case model.GradeB:
		return "🔵 " + grade.String()
	case model.GradeC:
		return "🟡 " + grade.String()
	case model.GradeD:
		return "🟠 " + grade.String()
	default:
		return "🔴 " + grade.String()
	}
}

// writeAlert writes an appropriate alert based on the grade.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.Report) {
	switch report.Grade {
	case model.GradeAPlus, model.GradeA:
		md.Tip(report.Grade.Description())
	case model.GradeB:
		md.Note(report.Grade.Description())
	case model.GradeC:
		md.Importantf("Composite score %.1f. %s", report.Overall, report.Grade.Description())
	case model.GradeD:
		md.Warningf("Composite score %.1f. %s", report.Overall, report.Grade.Description())
	default:
		md.Cautionf("Composite score %.1f. %s", report.Overall, report.Grade.Description())
	}
	md.PlainText("")

	if fallbacks := report.FallbackDimensions(); len(fallbacks) > 0 {
		md.PlainTextf("*%d of %d dimensions scored by deterministic rules: %s.*",
			len(fallbacks), len(model.DimensionKeys), strings.Join(fallbacks, ", "))
		md.PlainText("")
	}
}

// writeScores writes the per-dimension score table and contribution chart.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, report *model.Report) {
	md.H2("Dimension Scores")
	md.PlainText("")

	rows := make([][]string, 0, len(model.DimensionKeys))
	for _, key := range model.DimensionKeys {
		result, ok := report.Dimensions[key]
		if !ok {
			continue
		}

		source := "model"
		if result.IsFallback() {
			source = "rule-based"
		}
		rows = append(rows, []string{
			result.AgentName,
			fmt.Sprintf("%.1f", result.Score),
			fmt.Sprintf("%.0f%%", score.Weight(key)*100),
			source,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Dimension", "Score", "Weight", "Source"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report)
}

// writePieChart writes a mermaid pie chart showing how much each
// dimension contributed to the overall score.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Weighted Score Contribution"),
		piechart.WithShowData(true),
	)

	empty := true
	for _, key := range model.DimensionKeys {
		result, ok := report.Dimensions[key]
		if !ok {
			continue
		}

		points := uint64(math.Round(result.Score * score.Weight(key)))
		if points == 0 {
			continue
		}
		chart.LabelAndIntValue(result.AgentName, points)
		empty = false
	}
	if empty {
		return
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFindings writes each dimension's findings with its summary.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.Report) {
	md.H2("Findings")
	md.PlainText("")

	wrote := false
	for _, key := range model.DimensionKeys {
		result, ok := report.Dimensions[key]
		if !ok || len(result.Findings) == 0 {
			continue
		}

		md.PlainText("### " + result.AgentName)
		md.PlainText("")
		md.BulletList(result.Findings...)
		md.PlainText("")
		if result.Summary != "" {
			md.PlainTextf("*%s*", result.Summary)
			md.PlainText("")
		}
		wrote = true
	}

	if !wrote {
		md.PlainText("No findings reported.")
		md.PlainText("")
	}
}

// writePageSignals writes the extracted page statistics.
func (w *MarkdownWriter) writePageSignals(md *markdown.Markdown, snap *model.Snapshot) {
	if snap == nil {
		return
	}

	md.H2("Page Signals")
	md.PlainText("")

	social := "-"
	if platforms := extract.Platforms(snap.SocialLinks); len(platforms) > 0 {
		social = strings.Join(platforms, ", ")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Value"},
		Rows: [][]string{
			{"Load time", fmt.Sprintf("%.2fs", snap.LoadTimeSeconds)},
			{"Page size", fmt.Sprintf("%.1f KB", snap.HTMLSizeKB)},
			{"Images", fmt.Sprintf("%d (%d with alt text)", len(snap.ImageURLs), snap.ImagesWithAlt())},
			{"Headings", strconv.Itoa(snap.HeadingCount())},
			{"Links", fmt.Sprintf("%d internal, %d external", len(snap.InternalLinks), len(snap.ExternalLinks))},
			{"Social platforms", social},
			{"HTTPS", checkmark(snap.HasSSL)},
			{"Viewport meta", checkmark(snap.HasViewportMeta)},
			{"Structured data", checkmark(snap.HasStructuredData)},
			{"Privacy policy", checkmark(snap.HasPrivacyPolicy)},
			{"Contact info", checkmark(snap.HasContactInfo)},
		},
	})
	md.PlainText("")
}

// writeUsage writes the generative API usage table.
func (w *MarkdownWriter) writeUsage(md *markdown.Markdown, report *model.Report) {
	md.H2("Model Usage")
	md.PlainText("")

	if report.Usage.Calls == 0 {
		md.PlainText("No generative API calls were made.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"API calls", strconv.Itoa(report.Usage.Calls)},
			{"Prompt tokens", strconv.Itoa(report.Usage.PromptTokens)},
			{"Completion tokens", strconv.Itoa(report.Usage.CompletionTokens)},
			{"Total tokens", strconv.Itoa(report.Usage.TotalTokens)},
		},
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ceps-analyzer](https://github.com/jurasovic-andreja/ceps-analyzer)*")
}

// checkmark renders a boolean page signal as a symbol.
func checkmark(b bool) string {
	if b {
		return "✅"
	}
	return "❌"
}
