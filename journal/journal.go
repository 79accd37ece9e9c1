// Package journal records patch runs in a local SQLite database.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Momin010/MominAI-Beta-1/rewrite"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema/*.sql
var schemaFS embed.FS

var migrationPattern = regexp.MustCompile(`^(\d{3})-.*\.sql$`)

// Config holds journal configuration
type Config struct {
	DSN string // path to the SQLite database file
}

// Journal stores one row per patch run
type Journal struct {
	db *sql.DB
}

// Run is one recorded patch run. Counts holds per-rule replacement
// counts in application order.
type Run struct {
	ID          string
	StartedAt   time.Time
	Target      string
	Changed     bool
	Total       int
	Counts      []rewrite.RuleCount
	BytesBefore int
	BytesAfter  int
	SumBefore   string
	SumAfter    string
	Duration    time.Duration
}

// New opens the journal database at cfg.DSN, creating parent
// directories as needed.
func New(cfg Config) (*Journal, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("journal DSN cannot be empty")
	}
	if cfg.DSN == ":memory:" {
		return nil, fmt.Errorf(":memory: journal not supported (connections do not share it); use a temp file")
	}

	dir := filepath.Dir(cfg.DSN)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the journal database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Migrate runs the schema migrations. Already executed migrations are
// skipped, so calling it on every start is safe.
func (j *Journal) Migrate(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("failed to read schema directory: %w", err)
	}

	var migrations []string
	for _, entry := range entries {
		if entry.IsDir() || !migrationPattern.MatchString(entry.Name()) {
			continue
		}
		migrations = append(migrations, entry.Name())
	}
	sort.Strings(migrations)

	executed := make(map[int]bool)
	var tableName string
	err = j.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='migrations'").Scan(&tableName)
	switch {
	case err == nil:
		rows, err := j.db.QueryContext(ctx, "SELECT migration_number FROM migrations")
		if err != nil {
			return fmt.Errorf("failed to query executed migrations: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var n int
			if err := rows.Scan(&n); err != nil {
				return fmt.Errorf("failed to scan migration number: %w", err)
			}
			executed[n] = true
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to load executed migrations: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		slog.Info("migrations table not found, running all migrations")
	default:
		return fmt.Errorf("failed to check migrations table: %w", err)
	}

	for _, migration := range migrations {
		matches := migrationPattern.FindStringSubmatch(migration)
		if len(matches) != 2 {
			return fmt.Errorf("invalid migration filename format: %s", migration)
		}
		number, err := strconv.Atoi(matches[1])
		if err != nil {
			return fmt.Errorf("failed to parse migration number from %s: %w", migration, err)
		}
		if executed[number] {
			continue
		}

		slog.Info("running migration", "file", migration, "number", number)
		content, err := schemaFS.ReadFile("schema/" + migration)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", migration, err)
		}
		if _, err := j.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration, err)
		}
		if _, err := j.db.ExecContext(ctx,
			"INSERT INTO migrations (migration_number, migration_name) VALUES (?, ?)",
			number, migration); err != nil {
			return fmt.Errorf("failed to record migration %s in migrations table: %w", migration, err)
		}
	}

	return nil
}

// RecordRun inserts a run row and returns its ID. A missing ID gets a
// fresh ULID; a zero StartedAt becomes now.
func (j *Journal) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal rule counts: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, started_at, target, changed, total_replacements,
			counts, bytes_before, bytes_after, sum_before, sum_after, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Target,
		run.Changed,
		run.Total,
		string(counts),
		run.BytesBefore,
		run.BytesAfter,
		run.SumBefore,
		run.SumAfter,
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first. ULIDs sort by
// creation time, so ordering by run_id is ordering by time.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, started_at, target, changed, total_replacements,
			counts, bytes_before, bytes_after, sum_before, sum_after, duration_ms
		FROM runs ORDER BY run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			counts     string
			durationMS int64
		)
		if err := rows.Scan(
			&run.ID, &startedAt, &run.Target, &run.Changed, &run.Total,
			&counts, &run.BytesBefore, &run.BytesAfter,
			&run.SumBefore, &run.SumAfter, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &run.Counts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rule counts: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
