package report

import (
	"io"

	"github.com/nao1215/linkprobe/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. The check command composes a terminal writer with an
// optional file writer through MultiWriter.
type Writer interface {
	// Write outputs the run report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// linkDetail is one row of a dead or unresolved listing.
type linkDetail struct {
	URL    string
	Status int
	Kind   string
	Reason string
}

// deadDetails returns the dead links with the status code that condemned them.
func deadDetails(report *model.RunReport) []linkDetail {
	if report.Result == nil {
		return nil
	}
	byURL := outcomesByURL(report)
	details := make([]linkDetail, 0, len(report.Result.Dead))
	for _, u := range report.Result.Dead {
		details = append(details, linkDetail{URL: u, Status: byURL[u].StatusCode})
	}
	return details
}

// unresolvedDetails returns the unresolved links with their last error.
func unresolvedDetails(report *model.RunReport) []linkDetail {
	if report.Reconciliation == nil {
		return nil
	}
	byURL := outcomesByURL(report)
	details := make([]linkDetail, 0, len(report.Reconciliation.Unresolved))
	for _, u := range report.Reconciliation.Unresolved {
		d := linkDetail{URL: u, Kind: model.KindCanceled.String(), Reason: "not attempted"}
		if o, ok := byURL[u]; ok && o.Err != nil {
			d.Kind = o.Err.Kind.String()
			d.Reason = o.Err.Message
		}
		details = append(details, d)
	}
	return details
}

func outcomesByURL(report *model.RunReport) map[string]model.ProbeOutcome {
	m := make(map[string]model.ProbeOutcome, len(report.Outcomes))
	for _, o := range report.Outcomes {
		m[o.URL] = o
	}
	return m
}

// statusText returns a one-line run status.
func statusText(report *model.RunReport) string {
	switch {
	case report.Canceled:
		return "Canceled (partial results)"
	case report.Reconciliation != nil && !report.Reconciliation.AllResolved:
		return "Incomplete"
	default:
		return "Complete"
	}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
