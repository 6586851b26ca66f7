package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linkprobe/internal/model"
)

// FileName is the name of the history database inside the data directory.
const FileName = "linkprobe.db"

// ErrRunNotFound is returned when a run ID is not in the history.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores finished runs in SQLite.
//
// Design decision: The full report is kept as one JSON document next to a
// few denormalized columns. Listing runs reads only the columns, while
// showing a run decodes the document, so the schema does not need to track
// every field of RunReport.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a check first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		total INTEGER NOT NULL,
		valid INTEGER NOT NULL,
		dead INTEGER NOT NULL,
		unresolved INTEGER NOT NULL,
		retried INTEGER NOT NULL,
		canceled INTEGER NOT NULL DEFAULT 0,
		settings_json TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Final outcome of every URL in a run
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER,
		error_kind TEXT,
		attempt INTEGER NOT NULL,
		verdict TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
	CREATE INDEX IF NOT EXISTS idx_outcomes_url ON outcomes(url);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is the listing form of a stored run.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Canceled   bool
	model.Summary
}

// Duration returns how long the run took.
func (s RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// SaveRun stores report and its outcomes in one transaction.
// Saving a run ID twice replaces the earlier entry.
func (h *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) error {
	if report == nil {
		return errors.New("nil report")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	settingsJSON, err := json.Marshal(report.Settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM outcomes WHERE run_id = ?`, report.ID); err != nil {
		return fmt.Errorf("failed to clear outcomes: %w", err)
	}

	s := report.Summary()
	query := `
	INSERT INTO runs (id, started_at, finished_at, total, valid, dead, unresolved, retried, canceled, settings_json, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		started_at = excluded.started_at,
		finished_at = excluded.finished_at,
		total = excluded.total,
		valid = excluded.valid,
		dead = excluded.dead,
		unresolved = excluded.unresolved,
		retried = excluded.retried,
		canceled = excluded.canceled,
		settings_json = excluded.settings_json,
		report_json = excluded.report_json
	`
	_, err = tx.ExecContext(ctx, query,
		report.ID,
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		s.Total, s.Valid, s.Dead, s.Unresolved, s.Retried,
		boolToInt(report.Canceled),
		string(settingsJSON),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO outcomes (run_id, url, status_code, error_kind, attempt, verdict)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range report.Outcomes {
		var status sql.NullInt64
		var kind sql.NullString
		if o.HasStatus() {
			status = sql.NullInt64{Int64: int64(o.StatusCode), Valid: true}
		} else if o.Err != nil {
			kind = sql.NullString{String: o.Err.Kind.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, report.ID, o.URL, status, kind, o.Attempt, verdictOf(report, o.URL)); err != nil {
			return fmt.Errorf("failed to save outcome for %s: %w", o.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// verdictOf returns "valid", "dead" or "unresolved".
func verdictOf(report *model.RunReport, rawURL string) string {
	if report.Result == nil {
		return "unresolved"
	}
	v, ok := report.Result.Lookup(rawURL)
	if !ok {
		return "unresolved"
	}
	return v.String()
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, started_at, finished_at, total, valid, dead, unresolved, retried, canceled
	FROM runs
	ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var s RunSummary
		var started string
		var finished sql.NullString
		var canceled int
		if err := rows.Scan(&s.ID, &started, &finished, &s.Total, &s.Valid, &s.Dead, &s.Unresolved, &s.Retried, &canceled); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.StartedAt = parseTimestamp(started)
		if finished.Valid {
			s.FinishedAt = parseTimestamp(finished.String)
		}
		s.Canceled = canceled != 0
		runs = append(runs, s)
	}

	return runs, rows.Err()
}

// GetRun loads the full report of a run.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*model.RunReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// GetUnresolved returns the unresolved URLs of a run in input order.
func (h *HistoryDB) GetUnresolved(ctx context.Context, id string) ([]string, error) {
	var exists int
	err := h.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := h.db.QueryContext(ctx, `
	SELECT url FROM outcomes
	WHERE run_id = ? AND verdict = 'unresolved'
	ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get unresolved urls: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// DeadCount returns how many runs recorded rawURL as dead.
func (h *HistoryDB) DeadCount(ctx context.Context, rawURL string) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM outcomes WHERE url = ? AND verdict = 'dead'`, rawURL).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count dead outcomes: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time if s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
