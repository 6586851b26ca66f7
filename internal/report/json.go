package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/linkprobe/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
//
// Design decision: We use standard encoding/json. The report types carry
// their own MarshalJSON where the wire form differs from the Go form, and
// no library in use offers anything beyond that.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// version is embedded in the document when non-empty.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithVersion records the linkprobe version in the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport wraps a run with its headline counts.
type JSONReport struct {
	// Version is the linkprobe version that produced the report.
	Version string `json:"version,omitempty"`

	// Summary repeats the counts so consumers need not recompute them.
	Summary model.Summary `json:"summary"`

	// Report is the full run.
	Report *model.RunReport `json:"report"`
}

// Write outputs the wrapped run report.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	return w.writeJSON(JSONReport{
		Version: w.version,
		Summary: report.Summary(),
		Report:  report,
	})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
