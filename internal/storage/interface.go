package storage

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/rohankatakam/attrition/internal/models"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("not found")

// Run is one archived command invocation
type Run struct {
	ID         string       `db:"id"`
	Stage      string       `db:"stage"`
	StartedAt  time.Time    `db:"started_at"`
	FinishedAt sql.NullTime `db:"finished_at"`
	Config     string       `db:"config"` // effective YAML
	Records    int          `db:"records"`
	Skipped    int          `db:"skipped"`
	Warnings   int          `db:"warnings"`
}

// ProjectRow is an archived project record. Departure is NULL when the
// percentage is undefined.
type ProjectRow struct {
	RunID          string          `db:"run_id"`
	Project        string          `db:"project"`
	RowCount       int             `db:"row_count"`
	SizeClass      string          `db:"size_class"`
	Departure      sql.NullFloat64 `db:"departure"`
	LeftCount      int             `db:"left_count"`
	ReferenceCount int             `db:"reference_count"`
}

// Record converts the row back to the domain type
func (r ProjectRow) Record() models.ProjectRecord {
	rec := models.ProjectRecord{
		Key:            models.MatchKey(r.Project),
		RowCount:       r.RowCount,
		LeftCount:      r.LeftCount,
		ReferenceCount: r.ReferenceCount,
	}
	if c, err := models.ParseSizeClass(r.SizeClass); err == nil {
		rec.Size = c
	}
	if r.Departure.Valid {
		rec.Departure = models.DefinedPercentage(r.Departure.Float64)
	}
	return rec
}

// DeveloperRow is an archived developer record
type DeveloperRow struct {
	RunID     string `db:"run_id"`
	Project   string `db:"project"`
	Developer string `db:"developer"`
	WorkType  string `db:"work_type"`
	Left      bool   `db:"left_project"`
}

// TestRow is an archived hypothesis test. Statistics that are NaN are
// stored as NULL.
type TestRow struct {
	RunID       string          `db:"run_id"`
	Stage       string          `db:"stage"`
	Name        string          `db:"name"`
	Statistic   sql.NullFloat64 `db:"statistic"`
	PValue      sql.NullFloat64 `db:"p_value"`
	DF          sql.NullFloat64 `db:"df"`
	Significant bool            `db:"significant"`
}

// NullFloat maps NaN and infinities to NULL
func NullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Store defines the run archive
type Store interface {
	// Run operations
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// Record operations
	SaveProjects(ctx context.Context, runID string, records []models.ProjectRecord) error
	GetProjects(ctx context.Context, runID string) ([]ProjectRow, error)
	SaveDevelopers(ctx context.Context, runID string, records []models.DeveloperRecord) error
	GetDevelopers(ctx context.Context, runID string) ([]DeveloperRow, error)

	// Test result operations
	SaveTestResults(ctx context.Context, runID string, rows []TestRow) error
	GetTestResults(ctx context.Context, runID string) ([]TestRow, error)

	Close() error
}
