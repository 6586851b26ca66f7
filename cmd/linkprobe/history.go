package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nao1215/linkprobe/internal/config"
	"github.com/nao1215/linkprobe/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous runs",
		Long: `History lists the runs recorded by 'linkprobe check'.

Examples:
  # List the 20 most recent runs
  linkprobe history

  # Show the full report of one run
  linkprobe history --run 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # Print a run's unresolved URLs and check them again
  linkprobe history --unresolved 1b4e28ba-2fa1-11d2-883f-0016d3cca427 > retry.json
  linkprobe check --input retry.json

  # How often has a URL been found dead?
  linkprobe history --url https://example.com/old-page`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Number of runs to list (0 = all)")
	cmd.Flags().String("run", "", "Show the report of the run with this ID")
	cmd.Flags().String("unresolved", "", "Print the unresolved URLs of the run with this ID as a JSON array")
	cmd.Flags().String("url", "", "Count the recorded runs in which this URL was dead")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (with --run)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (with --run)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := flags.GetString("run")
	if err != nil {
		return err
	}
	unresolvedID, err := flags.GetString("unresolved")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	deadURL, err := flags.GetString("url")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'linkprobe check' to check some links.")
		return nil
	}

	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	switch {
	case deadURL != "":
		n, err := db.DeadCount(ctx, deadURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s was dead in %d recorded run(s)\n", deadURL, n)
		return nil
	case unresolvedID != "":
		return printUnresolved(ctx, db, unresolvedID, out)
	case runID != "":
		runReport, err := db.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		_, err = newReportWriter(cfg, out).Write(runReport)
		return err
	default:
		return listRuns(ctx, db, limit, out)
	}
}

// listRuns prints the most recent runs as a table.
func listRuns(ctx context.Context, db *database.HistoryDB, limit int, out io.Writer) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header("ID", "Started", "Duration", "Total", "Valid", "Dead", "Unresolved", "Retried")
	for _, r := range runs {
		duration := "canceled"
		if !r.Canceled {
			duration = r.Duration().Round(10 * time.Millisecond).String()
		}
		row := []string{
			r.ID,
			humanize.Time(r.StartedAt),
			duration,
			humanize.Comma(int64(r.Total)),
			strconv.Itoa(r.Valid),
			strconv.Itoa(r.Dead),
			strconv.Itoa(r.Unresolved),
			strconv.Itoa(r.Retried),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to format run %s: %w", r.ID, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}

	fmt.Fprintln(out, "\nUse 'linkprobe history --run <id>' to show a run.")
	return nil
}

// printUnresolved prints a run's unresolved URLs in the same JSON array
// format that check accepts as input.
func printUnresolved(ctx context.Context, db *database.HistoryDB, runID string, out io.Writer) error {
	urls, err := db.GetUnresolved(ctx, runID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
