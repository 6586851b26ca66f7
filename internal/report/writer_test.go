package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkprobe/internal/model"
)

// createTestReport creates a finished run with one valid, one dead and one
// unresolved URL.
func createTestReport(t *testing.T) *model.RunReport {
	t.Helper()

	report := model.NewRunReport([]string{
		"https://ok.example",
		"https://gone.example/page",
		"https://down.example",
	})
	report.Settings = model.RunSettings{Concurrency: 5, Method: "GET"}
	report.Outcomes = []model.ProbeOutcome{
		model.NewStatusOutcome("https://ok.example", 200, model.AttemptBatch),
		model.NewStatusOutcome("https://gone.example/page", 404, model.AttemptBatch),
		model.NewErrorOutcome("https://down.example",
			model.NewProbeError(model.KindTimeout, "https://down.example", errors.New("context deadline exceeded")),
			model.AttemptFallback),
	}
	report.Retried = []string{"https://down.example"}

	result := model.NewClassificationResult()
	if err := result.Add("https://ok.example", model.VerdictValid); err != nil {
		t.Fatal(err)
	}
	if err := result.Add("https://gone.example/page", model.VerdictDead); err != nil {
		t.Fatal(err)
	}
	report.Result = result
	report.Reconciliation = &model.ReconciliationReport{Unresolved: []string{"https://down.example"}}
	report.FinishedAt = report.StartedAt.Add(1500 * time.Millisecond)

	return report
}

// createCleanReport creates a run where every URL is valid.
func createCleanReport(t *testing.T) *model.RunReport {
	t.Helper()

	report := model.NewRunReport([]string{"https://ok.example"})
	report.Outcomes = []model.ProbeOutcome{model.NewStatusOutcome("https://ok.example", 204, model.AttemptBatch)}
	result := model.NewClassificationResult()
	if err := result.Add("https://ok.example", model.VerdictValid); err != nil {
		t.Fatal(err)
	}
	report.Result = result
	report.Reconciliation = &model.ReconciliationReport{AllResolved: true, Unresolved: []string{}}
	report.FinishedAt = report.StartedAt.Add(time.Second)
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport(t)
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"LINKPROBE REPORT", report.ID, "VALID:      1", "DEAD:       1", "UNRESOLVED: 1", "Status:         Incomplete"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists dead links with status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[x] https://gone.example/page (404)") {
			t.Errorf("dead link line missing:\n%s", buf.String())
		}
	})

	t.Run("lists unresolved links as JSON array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[?] https://down.example (timeout:") {
			t.Error("unresolved line missing")
		}
		if !strings.Contains(output, `["https://down.example"]`) {
			t.Error("unresolved JSON array missing")
		}
	})

	t.Run("valid links only in verbose mode", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		report := createTestReport(t)
		if _, err := NewSimpleWriter(&quiet).Write(report); err != nil {
			t.Fatal(err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(report); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(quiet.String(), "VALID LINKS") {
			t.Error("valid links should be hidden by default")
		}
		if !strings.Contains(verbose.String(), "[+] https://ok.example") {
			t.Error("verbose output should list valid links")
		}
	})

	t.Run("no escape codes without color", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "\x1b[") {
			t.Error("unexpected ANSI escape in uncolored output")
		}
	})

	t.Run("color adds escape codes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(true)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Error("expected ANSI escape in colored output")
		}
	})

	t.Run("canceled run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport(t)
		report.Canceled = true
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Canceled (partial results)") {
			t.Error("expected canceled status")
		}
	})

	t.Run("clean run omits sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createCleanReport(t)); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if strings.Contains(output, "DEAD LINKS") || strings.Contains(output, "UNRESOLVED\n") {
			t.Error("empty sections should be omitted")
		}
		if !strings.Contains(output, "Status:         Complete") {
			t.Error("expected complete status")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Summary model.Summary `json:"summary"`
			Report  struct {
				ID     string `json:"id"`
				Result struct {
					Valid []string `json:"valid_links"`
					Dead  []string `json:"dead_links"`
				} `json:"result"`
			} `json:"report"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Summary.Dead != 1 || decoded.Summary.Unresolved != 1 {
			t.Errorf("unexpected summary %+v", decoded.Summary)
		}
		if len(decoded.Report.Result.Dead) != 1 || decoded.Report.Result.Dead[0] != "https://gone.example/page" {
			t.Errorf("dead links = %v", decoded.Report.Result.Dead)
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected a single line of JSON")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"summary\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("includes version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithVersion("1.2.3")).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"version":"1.2.3"`) {
			t.Error("expected version in output")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport(t)
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Link Check Report", report.ID, "## Summary", "## Dead Links", "https://gone.example/page", "## Unresolved", "timeout"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "pie") {
			t.Error("expected mermaid pie chart")
		}
	})

	t.Run("caution alert for unresolved links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "[!CAUTION]") {
			t.Error("expected CAUTION alert")
		}
	})

	t.Run("tip alert when all links are alive", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createCleanReport(t)); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected TIP alert")
		}
		if !strings.Contains(output, "No dead links.") {
			t.Error("expected empty dead links notice")
		}
		if strings.Contains(output, "## Unresolved") {
			t.Error("unresolved section should be omitted")
		}
	})

	t.Run("valid links in details when requested", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, WithValidLinks(true)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Valid links (1)") {
			t.Error("expected valid links details")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createCleanReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "https://github.com/nao1215/linkprobe") {
			t.Error("expected footer link")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))

		n, err := multi.Write(createTestReport(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf1.Len()+buf2.Len() {
			t.Errorf("n = %d, want %d", n, buf1.Len()+buf2.Len())
		}
		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (simple) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(createTestReport(t))
		if err != nil || n != 0 {
			t.Errorf("got (%d, %v), want (0, nil)", n, err)
		}
	})
}

func TestUnresolvedDetailsWithoutOutcome(t *testing.T) {
	t.Parallel()

	report := model.NewRunReport([]string{"https://never.example"})
	report.Reconciliation = &model.ReconciliationReport{Unresolved: []string{"https://never.example"}}

	details := unresolvedDetails(report)
	if len(details) != 1 {
		t.Fatalf("len = %d, want 1", len(details))
	}
	if details[0].Kind != "canceled" {
		t.Errorf("Kind = %q, want canceled", details[0].Kind)
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{in: "short", maxLen: 10, want: "short"},
		{in: "exactly10!", maxLen: 10, want: "exactly10!"},
		{in: "this is too long", maxLen: 10, want: "this is..."},
		{in: "abcdef", maxLen: 3, want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}
