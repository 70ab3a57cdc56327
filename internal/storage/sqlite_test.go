package storage

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/attrition/internal/models"
)

var _ Store = (*SQLiteStore)(nil)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "archive.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	run := &Run{Stage: "sizes", StartedAt: started, Config: "paths: {}\n"}
	require.NoError(t, store.SaveRun(ctx, run))
	require.NotEmpty(t, run.ID, "an ID is assigned")

	run.Records = 3
	run.FinishedAt = sql.NullTime{Time: started.Add(time.Second), Valid: true}
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "sizes", got.Stage)
	assert.Equal(t, 3, got.Records)
	assert.True(t, got.FinishedAt.Valid)
	assert.WithinDuration(t, started, got.StartedAt, time.Millisecond)

	later := &Run{Stage: "analyze", StartedAt: started.Add(time.Hour)}
	require.NoError(t, store.SaveRun(ctx, later))

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, later.ID, runs[0].ID, "newest first")

	_, err = store.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Projects(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := &Run{Stage: "departures", StartedAt: time.Now()}
	require.NoError(t, store.SaveRun(ctx, run))

	records := []models.ProjectRecord{
		{Key: "alpha", Departure: models.DefinedPercentage(26.32), LeftCount: 5, ReferenceCount: 19},
		{Key: "beta", Departure: models.Undefined},
		{Key: "gamma", RowCount: 31, Size: models.SizeLarge},
	}
	require.NoError(t, store.SaveProjects(ctx, run.ID, records))

	rows, err := store.GetProjects(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, records[0], rows[0].Record())
	assert.False(t, rows[1].Departure.Valid, "undefined percentage is NULL")
	assert.Equal(t, models.SizeLarge, rows[2].Record().Size)
	assert.Equal(t, "", rows[0].SizeClass)
}

func TestSQLiteStore_Developers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := &Run{Stage: "match-worktype", StartedAt: time.Now()}
	require.NoError(t, store.SaveRun(ctx, run))

	records := []models.DeveloperRecord{
		{Developer: "bob", Project: "p", WorkType: "coding", Left: true},
		{Developer: "alice", Project: "p", WorkType: "review", Left: true},
		{Developer: "alice", Project: "p", WorkType: "review", Left: true},
	}
	require.NoError(t, store.SaveDevelopers(ctx, run.ID, records))

	rows, err := store.GetDevelopers(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2, "duplicates are ignored")
	assert.Equal(t, "alice", rows[0].Developer)
	assert.True(t, rows[1].Left)
}

func TestSQLiteStore_TestResults(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := &Run{Stage: "analyze", StartedAt: time.Now()}
	require.NoError(t, store.SaveRun(ctx, run))

	rows := []TestRow{
		{Stage: "analyze", Name: "Kruskal-Wallis", Statistic: NullFloat(7.2), PValue: NullFloat(0.0273), DF: NullFloat(2), Significant: true},
		{Stage: "analyze", Name: "Mann-Whitney U", Statistic: NullFloat(0), PValue: NullFloat(math.NaN())},
	}
	require.NoError(t, store.SaveTestResults(ctx, run.ID, rows))

	got, err := store.GetTestResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, run.ID, got[0].RunID)
	assert.InDelta(t, 7.2, got[0].Statistic.Float64, 1e-12)
	assert.True(t, got[0].Significant)
	assert.False(t, got[1].PValue.Valid)
}

func TestSQLiteStore_ForeignKeys(t *testing.T) {
	store := newTestStore(t)
	err := store.SaveProjects(context.Background(), "no-such-run", []models.ProjectRecord{{Key: "x"}})
	assert.Error(t, err)
}

func TestNullFloat(t *testing.T) {
	assert.False(t, NullFloat(math.Inf(1)).Valid)
	assert.Equal(t, sql.NullFloat64{Float64: 1.5, Valid: true}, NullFloat(1.5))
}
