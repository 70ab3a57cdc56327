package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/attrition/internal/config"
	"github.com/rohankatakam/attrition/internal/errors"
	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/output"
	"github.com/rohankatakam/attrition/internal/stats"
	"github.com/rohankatakam/attrition/internal/storage"
)

// Stage names, also the CLI subcommands
const (
	StageSizes           = "sizes"
	StageDepartures      = "departures"
	StageConsolidate     = "consolidate"
	StageMatchOperations = "match-operations"
	StageMatchWorkType   = "match-worktype"
	StageAnalyze         = "analyze"
	StageWeighted        = "weighted"
	StageFollowUp        = "follow-up"
	StageJoiningTime     = "joining-time"
)

// Result is everything one stage produced
type Result struct {
	Report     *output.Report
	Projects   []models.ProjectRecord
	Developers []models.DeveloperRecord
	Tests      []stats.TestResult
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Report.Warnings = append(r.Report.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) wrote(path string) {
	r.Report.Outputs = append(r.Report.Outputs, path)
}

func (r *Result) test(t stats.TestResult) *output.TestSummary {
	r.Tests = append(r.Tests, t)
	return output.FromTest(t)
}

type stage struct {
	name       string
	validation config.ValidationContext
	// dir returns the input folder of an optional stage; run skips the
	// stage when it is unset or missing
	dir func(*config.Config) string
	run func(o *Orchestrator, ctx context.Context, res *Result) error
}

// stages in run order
var stages = []stage{
	{name: StageSizes, validation: config.ValidationContextSizes, run: (*Orchestrator).sizes},
	{name: StageDepartures, validation: config.ValidationContextDepartures, run: (*Orchestrator).departures},
	{name: StageConsolidate, validation: config.ValidationContextConsolidate, run: (*Orchestrator).consolidate},
	{
		name:       StageMatchOperations,
		validation: config.ValidationContextMatchOperations,
		dir:        func(c *config.Config) string { return c.Paths.OperationsDir },
		run:        (*Orchestrator).matchOperations,
	},
	{
		name:       StageMatchWorkType,
		validation: config.ValidationContextMatchWorkType,
		dir:        func(c *config.Config) string { return c.Paths.WorkTypeDir },
		run:        (*Orchestrator).matchWorkType,
	},
	{name: StageAnalyze, validation: config.ValidationContextAnalyze, run: (*Orchestrator).analyze},
	{name: StageWeighted, validation: config.ValidationContextAnalyze, run: (*Orchestrator).weighted},
	{name: StageFollowUp, validation: config.ValidationContextAnalyze, run: (*Orchestrator).followUp},
	{
		name:       StageJoiningTime,
		validation: config.ValidationContextJoiningTime,
		dir:        func(c *config.Config) string { return c.Paths.JoiningTimeDir },
		run:        (*Orchestrator).joiningTime,
	},
}

// Stages lists the stage names in run order
func Stages() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}

func lookup(name string) (stage, bool) {
	for _, s := range stages {
		if s.name == name {
			return s, true
		}
	}
	return stage{}, false
}

// Orchestrator runs pipeline stages against one configuration
type Orchestrator struct {
	config *config.Config
	store  storage.Store // nil disables archiving
	logger *logrus.Logger
}

// NewOrchestrator creates a new pipeline orchestrator
func NewOrchestrator(cfg *config.Config, store storage.Store, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

// Run validates the configuration for one stage and executes it
func (o *Orchestrator) Run(ctx context.Context, name string) (*Result, error) {
	st, ok := lookup(name)
	if !ok {
		return nil, errors.ValidationErrorf("unknown stage %q", name)
	}

	v := o.config.Validate(st.validation)
	for _, w := range v.Warnings {
		o.logger.Warn(w)
	}
	if v.HasErrors() {
		return nil, errors.ConfigError(v.Error())
	}

	return o.execute(ctx, st)
}

// RunAll executes every stage in order. Stages whose optional input folder
// is not configured are skipped; a failing optional stage is reported and
// the run continues, a failing required stage aborts it.
func (o *Orchestrator) RunAll(ctx context.Context) ([]*Result, error) {
	v := o.config.Validate(config.ValidationContextRun)
	for _, w := range v.Warnings {
		o.logger.Warn(w)
	}
	if v.HasErrors() {
		return nil, errors.ConfigError(v.Error())
	}

	var results []*Result
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if st.dir != nil {
			dir := st.dir(o.config)
			if dir == "" || !isDir(dir) {
				o.logger.WithField("stage", st.name).Info("Skipping optional stage (input folder not available)")
				continue
			}
		}

		res, err := o.execute(ctx, st)
		if err != nil {
			if st.dir != nil && !errors.IsFatal(err) {
				o.logger.WithError(err).WithField("stage", st.name).Warn("Optional stage failed")
				continue
			}
			return results, fmt.Errorf("stage %s: %w", st.name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (o *Orchestrator) execute(ctx context.Context, st stage) (*Result, error) {
	started := time.Now()
	o.logger.WithField("stage", st.name).Info("Starting stage")

	res := &Result{Report: &output.Report{Stage: st.name}}
	if err := st.run(o, ctx, res); err != nil {
		return nil, err
	}

	if o.store != nil {
		if err := o.archive(ctx, res, started); err != nil {
			return nil, errors.StorageError(err, "failed to archive run")
		}
	}

	o.logger.WithFields(logrus.Fields{
		"stage":    st.name,
		"records":  res.Report.Records,
		"skipped":  res.Report.Skipped,
		"warnings": len(res.Report.Warnings),
		"duration": time.Since(started).String(),
	}).Info("Stage completed")

	return res, nil
}

func (o *Orchestrator) archive(ctx context.Context, res *Result, started time.Time) error {
	cfgYAML, err := o.config.YAML()
	if err != nil {
		return err
	}

	run := &storage.Run{
		ID:         uuid.NewString(),
		Stage:      res.Report.Stage,
		StartedAt:  started,
		FinishedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Config:     string(cfgYAML),
		Records:    res.Report.Records,
		Skipped:    res.Report.Skipped,
		Warnings:   len(res.Report.Warnings),
	}
	if err := o.store.SaveRun(ctx, run); err != nil {
		return err
	}
	if err := o.store.SaveProjects(ctx, run.ID, res.Projects); err != nil {
		return err
	}
	if err := o.store.SaveDevelopers(ctx, run.ID, res.Developers); err != nil {
		return err
	}

	rows := make([]storage.TestRow, len(res.Tests))
	for i, t := range res.Tests {
		rows[i] = storage.TestRow{
			Stage:       res.Report.Stage,
			Name:        t.Name,
			Statistic:   storage.NullFloat(t.Statistic),
			PValue:      storage.NullFloat(t.PValue),
			DF:          storage.NullFloat(t.DF),
			Significant: t.Significant(),
		}
	}
	if err := o.store.SaveTestResults(ctx, run.ID, rows); err != nil {
		return err
	}

	res.Report.RunID = run.ID
	o.logger.WithFields(logrus.Fields{"stage": run.Stage, "run_id": run.ID}).Debug("Run archived")
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
