package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/attrition/internal/models"
)

// SQLiteStore archives runs into a single SQLite file
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (or creates) the archive at path
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them
	dsn := path + "?_foreign_keys=on&_journal_mode=WAL"
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.WithField("path", path).Debug("run archive opened")
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		config TEXT,
		records INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS projects (
		run_id TEXT NOT NULL,
		project TEXT NOT NULL,
		row_count INTEGER NOT NULL DEFAULT 0,
		size_class TEXT,
		departure REAL,
		left_count INTEGER NOT NULL DEFAULT 0,
		reference_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, project),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS developers (
		run_id TEXT NOT NULL,
		project TEXT NOT NULL,
		developer TEXT NOT NULL,
		work_type TEXT,
		left_project BOOLEAN NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, project, developer),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS test_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		name TEXT NOT NULL,
		statistic REAL,
		p_value REAL,
		df REAL,
		significant BOOLEAN NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_test_results_run ON test_results(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Run operations
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	query := `
		INSERT OR REPLACE INTO runs
		(id, stage, started_at, finished_at, config, records, skipped, warnings)
		VALUES (:id, :stage, :started_at, :finished_at, :config, :records, :skipped, :warnings)
	`
	if _, err := s.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	query := `SELECT * FROM runs WHERE id = ?`

	err := s.db.GetContext(ctx, &run, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*Run
	query := `SELECT * FROM runs ORDER BY started_at DESC LIMIT ?`

	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}

// Project operations
func (s *SQLiteStore) SaveProjects(ctx context.Context, runID string, records []models.ProjectRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO projects
		(run_id, project, row_count, size_class, departure, left_count, reference_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, r := range records {
		var departure sql.NullFloat64
		if r.Departure.Defined {
			departure = NullFloat(r.Departure.Value)
		}
		var size sql.NullString
		if r.Size != models.SizeUnknown {
			size = sql.NullString{String: r.Size.String(), Valid: true}
		}
		_, err := tx.ExecContext(ctx, query,
			runID, string(r.Key), r.RowCount, size,
			departure, r.LeftCount, r.ReferenceCount)
		if err != nil {
			return fmt.Errorf("save project %s: %w", r.Key, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetProjects(ctx context.Context, runID string) ([]ProjectRow, error) {
	var rows []ProjectRow
	query := `
		SELECT run_id, project, row_count, COALESCE(size_class, '') AS size_class,
		       departure, left_count, reference_count
		FROM projects WHERE run_id = ? ORDER BY project
	`

	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, err
	}
	return rows, nil
}

// Developer operations
func (s *SQLiteStore) SaveDevelopers(ctx context.Context, runID string, records []models.DeveloperRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT OR IGNORE INTO developers
		(run_id, project, developer, work_type, left_project)
		VALUES (?, ?, ?, ?, ?)
	`

	for _, r := range records {
		_, err := tx.ExecContext(ctx, query,
			runID, string(r.Project), r.Developer, string(r.WorkType), r.Left)
		if err != nil {
			return fmt.Errorf("save developer %s/%s: %w", r.Project, r.Developer, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetDevelopers(ctx context.Context, runID string) ([]DeveloperRow, error) {
	var rows []DeveloperRow
	query := `
		SELECT run_id, project, developer, COALESCE(work_type, '') AS work_type, left_project
		FROM developers WHERE run_id = ? ORDER BY project, developer
	`

	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, err
	}
	return rows, nil
}

// Test result operations
func (s *SQLiteStore) SaveTestResults(ctx context.Context, runID string, rows []TestRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO test_results
		(run_id, stage, name, statistic, p_value, df, significant)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for _, r := range rows {
		_, err := tx.ExecContext(ctx, query,
			runID, r.Stage, r.Name, r.Statistic, r.PValue, r.DF, r.Significant)
		if err != nil {
			return fmt.Errorf("save test %s: %w", r.Name, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetTestResults(ctx context.Context, runID string) ([]TestRow, error) {
	var rows []TestRow
	query := `
		SELECT run_id, stage, name, statistic, p_value, df, significant
		FROM test_results WHERE run_id = ? ORDER BY id
	`

	if err := s.db.SelectContext(ctx, &rows, query, runID); err != nil {
		return nil, err
	}
	return rows, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
