package extract

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/rohankatakam/attrition/internal/errors"
	"github.com/rohankatakam/attrition/internal/match"
	"github.com/rohankatakam/attrition/internal/models"
	"github.com/rohankatakam/attrition/internal/scan"
	"github.com/rohankatakam/attrition/internal/table"
)

// ErrUndefinedPercentage is returned when the reference set is empty
var ErrUndefinedPercentage = stderrors.New("undefined percentage: empty reference set")

// SizeClassifier maps a row count to a size class
type SizeClassifier interface {
	Classify(v float64) (models.SizeClass, error)
}

// RecordError ties a per-record failure to its project. Err is an
// *errors.Error whose severity tells whether the record was kept.
type RecordError struct {
	Key models.MatchKey
	Err error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// RowCount returns the number of data rows in a CSV file
func RowCount(path string) (int, error) {
	n, err := table.CountRows(path)
	if err != nil {
		return 0, errors.FileSystemErrorf(err, "failed to count rows").WithContext("file", path)
	}
	return n, nil
}

// Percentage is subset/reference*100 rounded to 2 decimals, exact halves
// to the even digit. An empty reference set yields an undefined Percentage
// and ErrUndefinedPercentage.
func Percentage(subset, reference int) (models.Percentage, error) {
	if subset < 0 || reference < 0 {
		return models.Undefined, fmt.Errorf("negative count: %d/%d", subset, reference)
	}
	if reference == 0 {
		return models.Undefined, ErrUndefinedPercentage
	}
	v := float64(subset) / float64(reference) * 100
	return models.DefinedPercentage(round2(v)), nil
}

// round2 rounds the exact binary value of v to 2 decimals, so 0.625 becomes
// 0.62 and 3.125 becomes 3.12
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// ProjectSizes counts the rows of every entry and classifies the count.
// Unreadable files are reported and left out.
func ProjectSizes(entries []scan.Entry, classifier SizeClassifier) ([]models.ProjectRecord, []RecordError) {
	logger := slog.Default().With("component", "extract")

	var records []models.ProjectRecord
	var problems []RecordError
	for _, e := range entries {
		n, err := RowCount(e.Path)
		if err != nil {
			logger.Warn("skipping project", "project", e.Key, "file", e.Name, "error", err)
			problems = append(problems, RecordError{Key: e.Key, Err: err})
			continue
		}

		size, err := classifier.Classify(float64(n))
		if err != nil {
			wrapped := errors.Wrap(err, errors.ErrorTypeData, errors.SeverityMedium, "failed to classify project size")
			problems = append(problems, RecordError{Key: e.Key, Err: wrapped})
			continue
		}

		records = append(records, models.ProjectRecord{
			Key:      e.Key,
			RowCount: n,
			Size:     size,
		})
	}
	return records, problems
}

// Departures computes the departure percentage of every matched pair: the
// right file (departed developers) over the left file (all identities).
// A project with an empty reference set is kept with an undefined
// percentage; a project whose files cannot be read is dropped.
func Departures(pairs []match.Pair) ([]models.ProjectRecord, []RecordError) {
	logger := slog.Default().With("component", "extract")

	var records []models.ProjectRecord
	var problems []RecordError
	for _, p := range pairs {
		reference, err := RowCount(p.Left.Path)
		if err != nil {
			logger.Warn("skipping project", "project", p.Key, "file", p.Left.Name, "error", err)
			problems = append(problems, RecordError{Key: p.Key, Err: err})
			continue
		}
		left, err := RowCount(p.Right.Path)
		if err != nil {
			logger.Warn("skipping project", "project", p.Key, "file", p.Right.Name, "error", err)
			problems = append(problems, RecordError{Key: p.Key, Err: err})
			continue
		}

		pct, err := Percentage(left, reference)
		if err != nil {
			logger.Warn("departure percentage undefined", "project", p.Key, "left", left, "reference", reference)
			problems = append(problems, RecordError{
				Key: p.Key,
				Err: errors.DataErrorf(err, "project %s", p.Key),
			})
		}

		records = append(records, models.ProjectRecord{
			Key:            p.Key,
			RowCount:       reference,
			Departure:      pct,
			LeftCount:      left,
			ReferenceCount: reference,
		})
	}
	return records, problems
}
