package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// RunSummary is one archived stage invocation
type RunSummary struct {
	ID         string     `json:"id"`
	Stage      string     `json:"stage"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Records    int        `json:"records"`
	Skipped    int        `json:"skipped"`
	Warnings   int        `json:"warnings"`
}

// ArchivedProject is a project record read back from the archive.
// Departure is NaN when the percentage was undefined.
type ArchivedProject struct {
	Project   string `json:"project"`
	RowCount  int    `json:"row_count"`
	Size      string `json:"size,omitempty"`
	Departure Float  `json:"departure"`
	Left      int    `json:"left"`
	Reference int    `json:"reference"`
}

// RunDetail is everything archived for one run
type RunDetail struct {
	Run        RunSummary        `json:"run"`
	Config     string            `json:"config,omitempty"`
	Projects   []ArchivedProject `json:"projects,omitempty"`
	Developers int               `json:"developers"`
	Departed   int               `json:"departed"`
	Tests      []TestSummary     `json:"tests,omitempty"`
}

const timeLayout = "2006-01-02 15:04:05"

// FormatRuns lists archived runs, newest first
func FormatRuns(runs []RunSummary, level VerbosityLevel, w io.Writer) error {
	switch level {
	case VerbosityJSON:
		return encodeJSON(w, runs)
	case VerbosityQuiet:
		for _, r := range runs {
			fmt.Fprintf(w, "%s %s %d\n", r.ID, r.Stage, r.Records)
		}
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No archived runs")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-16s  %-19s  %7s  %7s  %8s\n", "id", "stage", "started", "records", "skipped", "warnings")
	fmt.Fprintln(w, strings.Repeat("─", 102))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-16s  %-19s  %7d  %7d  %8d\n",
			r.ID, r.Stage, r.StartedAt.Local().Format(timeLayout), r.Records, r.Skipped, r.Warnings)
	}
	return nil
}

// FormatRunDetail prints one archived run with its records and tests
func FormatRunDetail(d *RunDetail, level VerbosityLevel, w io.Writer) error {
	switch level {
	case VerbosityJSON:
		return encodeJSON(w, d)
	case VerbosityQuiet:
		fmt.Fprintf(w, "%s %s: %d records, %d projects, %d developers, %d tests\n",
			d.Run.ID, d.Run.Stage, d.Run.Records, len(d.Projects), d.Developers, len(d.Tests))
		return nil
	}

	fmt.Fprintf(w, "📦 %s (%s)\n", d.Run.Stage, d.Run.ID)
	fmt.Fprintf(w, "Started: %s\n", d.Run.StartedAt.Local().Format(timeLayout))
	if d.Run.FinishedAt != nil {
		fmt.Fprintf(w, "Took: %s\n", d.Run.FinishedAt.Sub(d.Run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Records: %d (%d skipped, %d warnings)\n", d.Run.Records, d.Run.Skipped, d.Run.Warnings)

	if len(d.Projects) > 0 {
		fmt.Fprintln(w, "\nProjects:")
		for _, p := range d.Projects {
			fmt.Fprintf(w, "  %-24s rows=%-6d size=%-6s departure=%s (%d/%d)\n",
				p.Project, p.RowCount, p.Size, p.Departure.String(), p.Left, p.Reference)
		}
	}

	if d.Developers > 0 {
		fmt.Fprintf(w, "\nDevelopers: %d (%d departed)\n", d.Developers, d.Departed)
	}

	if len(d.Tests) > 0 {
		fmt.Fprintln(w, "\nTests:")
		for i := range d.Tests {
			fmt.Fprint(w, "  ")
			writeTest(w, &d.Tests[i])
		}
	}
	return nil
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
