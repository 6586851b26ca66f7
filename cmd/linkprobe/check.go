package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkprobe/internal/config"
	"github.com/nao1215/linkprobe/internal/database"
	applog "github.com/nao1215/linkprobe/internal/log"
	"github.com/nao1215/linkprobe/internal/model"
	"github.com/nao1215/linkprobe/internal/pipeline"
	"github.com/nao1215/linkprobe/internal/probe"
	"github.com/nao1215/linkprobe/internal/progress"
	"github.com/nao1215/linkprobe/internal/report"
	"github.com/nao1215/linkprobe/internal/transport"
	"github.com/nao1215/linkprobe/internal/urllist"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Check URLs and sort them into valid and dead links",
		Long: `Check probes every URL and classifies it by HTTP status code.

Status codes 200-399 are valid, everything else is dead. URLs that produce
no status at all (timeouts, refused connections, broken responses) are
retried once, one at a time, over fresh connections. URLs that still fail
are reported as unresolved so you can re-run on them or check them by hand.

The input file may be a JSON array, a single-quoted list such as
['https://a', 'https://b'], or one URL per line. URLs given as arguments
are checked after the ones in the file.

Examples:
  # Check a list and write both partitions
  linkprobe check --input urls.json --valid-output valid.json --dead-output dead.json

  # Check a few URLs directly
  linkprobe check https://example.com https://example.org

  # Ten at a time, up to 500ms of random delay, HEAD requests
  linkprobe check -n 10 --max-delay 500ms --head --input urls.txt

  # Through a SOCKS5 proxy, Markdown report to a file
  linkprobe check --proxy 127.0.0.1:9050 --markdown -o report.md --input urls.json

Configuration file (.linkprobe) example:
  defaults:
    concurrency: 8
    maxDelay: 2s
  hosts:
    intranet.example.com:
      cookie: "session_id=abc123"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// Input and output
	cmd.Flags().StringP("input", "i", "", "File containing the URLs to check")
	cmd.Flags().String("valid-output", "", "Write valid URLs to this file as a JSON array")
	cmd.Flags().String("dead-output", "", "Write dead URLs to this file as a JSON array")

	// Engine behavior
	cmd.Flags().IntP(config.FlagConcurrency, "n", config.DefaultConcurrency,
		"Maximum number of requests in flight")
	cmd.Flags().Duration(config.FlagMaxDelay, config.DefaultMaxJitterDelay,
		"Upper bound of the random delay before each request (0 disables)")
	cmd.Flags().DurationP(config.FlagTimeout, "t", config.DefaultTimeout,
		"Timeout for one request, redirects included")
	cmd.Flags().Bool(config.FlagHead, false,
		"Use HEAD requests (falls back to GET when rejected)")
	cmd.Flags().Float64(config.FlagRate, 0,
		"Maximum requests per second across all workers (0 = unlimited)")
	cmd.Flags().Int(config.FlagBurst, config.DefaultRateBurst,
		"Burst size for --rate")
	cmd.Flags().Int(config.FlagMaxRedirects, config.DefaultMaxRedirects,
		"Redirects to follow per request, at least 1 (-1 follows none and classifies the 3xx answer itself)")
	cmd.Flags().Bool(config.FlagProgress, true,
		"Draw a progress bar on stderr when it is a terminal")

	// Transport
	cmd.Flags().String(config.FlagProxy, "",
		"Route requests through a SOCKS5 proxy (host:port)")
	cmd.Flags().Bool(config.FlagInsecure, false,
		"Skip TLS certificate verification")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkprobe in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History and logging
	cmd.Flags().Bool("no-save", false, "Do not record this run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	cmd.Flags().Bool("json-log", false, "Write logs as JSON")

	return cmd
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewSecureLogger(cmd.ErrOrStderr(), applog.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.JSONLog,
	})
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing with what has been checked")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from flags and the configuration file.
// Flags the user set explicitly win over file values, which win over the
// built-in defaults.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()
	var err error

	if cfg.InputFile, err = flags.GetString("input"); err != nil {
		return nil, err
	}
	if cfg.ValidOutput, err = flags.GetString("valid-output"); err != nil {
		return nil, err
	}
	if cfg.DeadOutput, err = flags.GetString("dead-output"); err != nil {
		return nil, err
	}
	if cfg.ConcurrencyCap, err = flags.GetInt(config.FlagConcurrency); err != nil {
		return nil, err
	}
	if cfg.MaxJitterDelay, err = flags.GetDuration(config.FlagMaxDelay); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration(config.FlagTimeout); err != nil {
		return nil, err
	}
	head, err := flags.GetBool(config.FlagHead)
	if err != nil {
		return nil, err
	}
	if head {
		cfg.Method = http.MethodHead
	}
	if cfg.RateLimit, err = flags.GetFloat64(config.FlagRate); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = flags.GetInt(config.FlagBurst); err != nil {
		return nil, err
	}
	if cfg.MaxRedirects, err = flags.GetInt(config.FlagMaxRedirects); err != nil {
		return nil, err
	}
	if cfg.PrintProgress, err = flags.GetBool(config.FlagProgress); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString(config.FlagProxy); err != nil {
		return nil, err
	}
	if cfg.Insecure, err = flags.GetBool(config.FlagInsecure); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.JSONLog, err = flags.GetBool("json-log"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// An explicit --config must exist; the implicit search may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(f, flags.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Targets = args

	return cfg, nil
}

// collectURLs reads the input file and appends the positional targets.
func collectURLs(cfg *config.Config) ([]string, error) {
	var urls []string
	if cfg.InputFile != "" {
		loaded, err := urllist.Load(cfg.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %s: %w", cfg.InputFile, err)
		}
		urls = loaded
	}
	return append(urls, cfg.Targets...), nil
}

// runCheck performs the run and writes every output.
// A canceled run still saves outputs and history, then returns the
// cancellation error.
func runCheck(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	urls, err := collectURLs(cfg)
	if err != nil {
		return err
	}

	if cfg.ProxyAddress != "" {
		if status := transport.CheckProxy(ctx, cfg.ProxyAddress); status != transport.ProxyStatusOK {
			return fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				status.Err(), cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	unique, _ := urllist.Dedupe(urls)
	var observers []probe.Observer
	bar := newProgressBar(stderr, len(unique), cfg.PrintProgress)
	if bar != nil {
		observers = append(observers, bar)
	}

	logger.Info("starting check",
		"urls", len(unique),
		"concurrency", cfg.ConcurrencyCap,
		"maxDelay", cfg.MaxJitterDelay,
		"method", cfg.Method,
	)

	runReport, runErr := pipeline.CheckLinks(ctx, urls, cfg, logger, observers...)
	if runReport == nil {
		return runErr
	}
	canceled := errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
	if runErr != nil && !canceled {
		return runErr
	}
	if bar != nil && bar.Done() < int64(len(unique)) {
		fmt.Fprintln(stderr)
	}

	// Bookkeeping must finish even when the run was interrupted.
	saveCtx := context.WithoutCancel(ctx)

	if err := writeLists(cfg, runReport); err != nil {
		return err
	}
	if err := saveRun(saveCtx, db, runReport, logger); err != nil {
		return err
	}
	if err := outputReport(cfg, runReport, stdout); err != nil {
		return err
	}

	if canceled {
		return fmt.Errorf("run canceled: %w", runErr)
	}
	return nil
}

// newProgressBar returns a bar when w is a terminal file.
func newProgressBar(w io.Writer, total int, enabled bool) *progress.Bar {
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	return progress.NewIfTerminal(f, total, enabled)
}

// writeLists saves the valid and dead partitions when requested.
func writeLists(cfg *config.Config, runReport *model.RunReport) error {
	if runReport.Result == nil {
		return nil
	}
	if cfg.ValidOutput != "" {
		if err := urllist.Save(cfg.ValidOutput, runReport.Result.Valid); err != nil {
			return fmt.Errorf("failed to write valid links: %w", err)
		}
	}
	if cfg.DeadOutput != "" {
		if err := urllist.Save(cfg.DeadOutput, runReport.Result.Dead); err != nil {
			return fmt.Errorf("failed to write dead links: %w", err)
		}
	}
	return nil
}

// saveRun records the run in the history database. A nil db is a no-op.
func saveRun(ctx context.Context, db *database.HistoryDB, runReport *model.RunReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	if err := db.SaveRun(ctx, runReport); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("run saved to history", "run", runReport.ID)
	return nil
}

// outputReport writes the report to the configured file or to stdout.
func outputReport(cfg *config.Config, runReport *model.RunReport, stdout io.Writer) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list every checked URL, which may include private hosts.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(cfg, output).Write(runReport)
	return err
}

// newReportWriter picks the writer for the configured format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output, report.WithValidLinks(cfg.Verbose))
	default:
		f, ok := output.(*os.File)
		return report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
			report.WithColor(ok && progress.IsTerminal(f)),
		)
	}
}
