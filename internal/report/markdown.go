package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/linkprobe/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for sharing.
type MarkdownWriter struct {
	baseWriter

	// verbose adds a collapsible list of valid links.
	verbose bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithValidLinks includes the valid links in a collapsible section.
func WithValidLinks(include bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.verbose = include
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeDead(md, report)
	w.writeUnresolved(md, report)
	if w.verbose {
		w.writeValid(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Link Check Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.ID + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"URLs", strconv.Itoa(len(report.Inputs))},
			{"Concurrency", strconv.Itoa(report.Settings.Concurrency)},
			{"Status", w.statusIcon(report) + " " + statusText(report)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusIcon(report *model.RunReport) string {
	switch statusText(report) {
	case "Complete":
		return "✅"
	default:
		return "⚠️"
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	s := report.Summary()

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Verdict", "Count"},
		Rows: [][]string{
			{"🟢 Valid", strconv.Itoa(s.Valid)},
			{"🔴 Dead", strconv.Itoa(s.Dead)},
			{"🟡 Unresolved", strconv.Itoa(s.Unresolved)},
			{"Retried", strconv.Itoa(s.Retried)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Verdicts"),
		piechart.WithShowData(true),
	)

	if s.Valid > 0 {
		chart.LabelAndIntValue("Valid", uint64(s.Valid))
	}
	if s.Dead > 0 {
		chart.LabelAndIntValue("Dead", uint64(s.Dead))
	}
	if s.Unresolved > 0 {
		chart.LabelAndIntValue("Unresolved", uint64(s.Unresolved))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s model.Summary) {
	switch {
	case s.Unresolved > 0:
		md.Cautionf("%d URL(s) could not be checked. Re-run on them or check them manually.", s.Unresolved)
	case s.Dead > 0:
		md.Warningf("%d dead link(s) found.", s.Dead)
	default:
		md.Tip("All links are alive.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeDead(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Dead Links")
	md.PlainText("")

	details := deadDetails(report)
	if len(details) == 0 {
		md.PlainText("No dead links.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(details))
	for i, d := range details {
		rows[i] = []string{truncateString(d.URL, 80), strconv.Itoa(d.Status)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeUnresolved(md *markdown.Markdown, report *model.RunReport) {
	details := unresolvedDetails(report)
	if len(details) == 0 {
		return
	}

	md.H2("Unresolved")
	md.PlainText("")

	rows := make([][]string, len(details))
	for i, d := range details {
		reason := d.Reason
		if reason == "" {
			reason = "-"
		}
		rows[i] = []string{truncateString(d.URL, 80), d.Kind, truncateString(reason, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Error", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeValid(md *markdown.Markdown, report *model.RunReport) {
	if report.Result == nil || len(report.Result.Valid) == 0 {
		return
	}
	md.Details("Valid links ("+strconv.Itoa(len(report.Result.Valid))+")", strings.Join(report.Result.Valid, "\n"))
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linkprobe](https://github.com/nao1215/linkprobe)*")
}
