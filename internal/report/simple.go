package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/nao1215/linkprobe/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: Color is off unless WithColor(true) is given. The caller
// decides based on whether the destination is a terminal, so the same
// writer can target files and pipes without escape codes.
type SimpleWriter struct {
	baseWriter

	// verbose lists valid links as well.
	verbose bool

	valid   *color.Color
	dead    *color.Color
	warn    *color.Color
	heading *color.Color
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables listing of valid links.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor enables ANSI colors.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		for _, c := range []*color.Color{w.valid, w.dead, w.warn, w.heading} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		valid:      color.New(color.FgGreen),
		dead:       color.New(color.FgRed),
		warn:       color.New(color.FgYellow),
		heading:    color.New(color.Bold),
	}
	WithColor(false)(w)

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeDead(&sb, report)
	w.writeUnresolved(&sb, report)
	if w.verbose {
		w.writeValid(&sb, report)
	}
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(w.heading.Sprint(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(w.heading.Sprint("                         LINKPROBE REPORT"))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:         %s\n", report.ID)
	fmt.Fprintf(sb, "Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %s\n", report.Elapsed().Round(time.Millisecond))
	if report.Duplicates > 0 {
		fmt.Fprintf(sb, "URLs:           %s (%d duplicates dropped)\n", humanize.Comma(int64(len(report.Inputs))), report.Duplicates)
	} else {
		fmt.Fprintf(sb, "URLs:           %s\n", humanize.Comma(int64(len(report.Inputs))))
	}

	status := statusText(report)
	if status != "Complete" {
		status = w.warn.Sprint(status)
	}
	fmt.Fprintf(sb, "Status:         %s\n\n", status)
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	s := report.Summary()
	w.section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  VALID:      %s\n", w.valid.Sprint(s.Valid))
	fmt.Fprintf(sb, "  DEAD:       %s\n", w.dead.Sprint(s.Dead))
	fmt.Fprintf(sb, "  UNRESOLVED: %s\n", w.warn.Sprint(s.Unresolved))
	fmt.Fprintf(sb, "  RETRIED:    %d\n\n", s.Retried)
}

func (w *SimpleWriter) writeDead(sb *strings.Builder, report *model.RunReport) {
	details := deadDetails(report)
	if len(details) == 0 {
		return
	}

	w.section(sb, "DEAD LINKS")
	for _, d := range details {
		fmt.Fprintf(sb, "  %s %s (%d)\n", w.dead.Sprint("[x]"), d.URL, d.Status)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeUnresolved(sb *strings.Builder, report *model.RunReport) {
	details := unresolvedDetails(report)
	if len(details) == 0 {
		return
	}

	w.section(sb, "UNRESOLVED")
	urls := make([]string, 0, len(details))
	for _, d := range details {
		fmt.Fprintf(sb, "  %s %s (%s: %s)\n", w.warn.Sprint("[?]"), d.URL, d.Kind, truncateString(d.Reason, 60))
		urls = append(urls, d.URL)
	}

	list, err := json.Marshal(urls)
	if err == nil {
		fmt.Fprintf(sb, "\n  Re-run on these URLs or check them manually:\n  %s\n", list)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeValid(sb *strings.Builder, report *model.RunReport) {
	if report.Result == nil || len(report.Result.Valid) == 0 {
		return
	}

	w.section(sb, "VALID LINKS")
	for _, u := range report.Result.Valid {
		fmt.Fprintf(sb, "  %s %s\n", w.valid.Sprint("[+]"), u)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by linkprobe\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
