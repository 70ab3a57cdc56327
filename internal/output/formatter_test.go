package output

import (
	"bytes"
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rohankatakam/attrition/internal/stats"
	"github.com/rohankatakam/attrition/internal/table"
)

func TestQuietFormatter(t *testing.T) {
	tests := []struct {
		name     string
		report   *Report
		expected string
	}{
		{
			name:     "no test",
			report:   &Report{Stage: "sizes", Records: 12, Skipped: 1},
			expected: "✅ sizes: 12 records, 1 skipped\n",
		},
		{
			name: "significant",
			report: &Report{
				Stage:   "analyze",
				Records: 40,
				Test:    &TestSummary{Name: "Kruskal-Wallis", PValue: 0.01234, Significant: true},
			},
			expected: "✅ analyze: Kruskal-Wallis * (p=0.0123), 40 records\n",
		},
		{
			name: "not significant",
			report: &Report{
				Stage:   "analyze",
				Records: 40,
				Test:    &TestSummary{Name: "Mann-Whitney U", PValue: 0.5},
			},
			expected: "✅ analyze: Mann-Whitney U n.s. (p=0.5000), 40 records\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			formatter := &QuietFormatter{}
			require.NoError(t, formatter.Format(tt.report, &buf))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestStandardFormatter(t *testing.T) {
	c, err := stats.CompareGroups([]stats.Group{
		{Name: "small", Values: []float64{1, 2, 3}},
		{Name: "medium", Values: []float64{4, 5, 6}},
		{Name: "large", Values: []float64{7, 8, 9}},
	})
	require.NoError(t, err)

	report := &Report{
		Stage:    "analyze",
		RunID:    "run-1",
		Records:  9,
		Warnings: []string{"project X: departure percentage undefined"},
		Outputs:  []string{"out/balanced_data.csv"},
		Describe: []GroupStats{{Group: "small", Count: 1, Mean: 2, Std: Float(math.NaN())}},
	}
	report.FromComparison(c)

	var buf bytes.Buffer
	require.NoError(t, (&StandardFormatter{}).Format(report, &buf))
	out := buf.String()

	assert.Contains(t, out, "📊 analyze")
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "Kruskal-Wallis: statistic=7.20")
	assert.Contains(t, out, "η² = 0.900")
	assert.Contains(t, out, "small vs medium")
	assert.Contains(t, out, "NaN")
	assert.Contains(t, out, "1 warnings")
	assert.Contains(t, out, "out/balanced_data.csv")
}

func TestJSONFormatter_NaNIsNull(t *testing.T) {
	report := &Report{
		Stage:    "follow-up",
		Describe: []GroupStats{{Group: "large", Count: 1, Mean: 3, Std: Float(math.NaN())}},
	}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(report, &buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	row := decoded["describe"].([]interface{})[0].(map[string]interface{})
	assert.Nil(t, row["std"])
	assert.Equal(t, 3.0, row["mean"])
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &QuietFormatter{}, NewFormatter(VerbosityQuiet))
	assert.IsType(t, &StandardFormatter{}, NewFormatter(VerbosityStandard))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(VerbosityJSON))
}

func TestGetDefaultVerbosity(t *testing.T) {
	t.Setenv("ATTRITION_JSON", "")
	t.Setenv("CI", "")
	assert.Equal(t, VerbosityStandard, GetDefaultVerbosity())

	t.Setenv("CI", "true")
	assert.Equal(t, VerbosityQuiet, GetDefaultVerbosity())

	t.Setenv("ATTRITION_JSON", "1")
	assert.Equal(t, VerbosityJSON, GetDefaultVerbosity())
}

func TestNewPowerSummary(t *testing.T) {
	p := NewPowerSummary(0.25, 157.2, 3)
	require.NotNil(t, p.RequiredN)
	assert.Equal(t, 158, *p.RequiredN)
	assert.Equal(t, 53, *p.RequiredPerGroup)
	assert.Equal(t, Float(0.05), p.Alpha)
}

func TestUnsolvedPowerSummary(t *testing.T) {
	report := &Report{Stage: "follow-up", Power: UnsolvedPowerSummary(0, 3)}

	var buf bytes.Buffer
	require.NoError(t, (&StandardFormatter{}).Format(report, &buf))
	assert.Contains(t, buf.String(), "Cohen's f = 0.000")
	assert.NotContains(t, buf.String(), "Required N")

	buf.Reset()
	require.NoError(t, (&JSONFormatter{}).Format(report, &buf))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	power := decoded["power"].(map[string]interface{})
	assert.Contains(t, power, "required_n")
	assert.Nil(t, power["required_n"])
	assert.Nil(t, power["required_per_group"])
}

func TestWriteWorkbook(t *testing.T) {
	grouping := table.New("项目规模", "规模分组2", "离开百分比")
	grouping.Append("大项目", "大项目", "26.32")
	grouping.Append("小项目", "非大项目", "10")

	path := filepath.Join(t.TempDir(), "out", "supplementary_analysis.xlsx")
	err := WriteWorkbook(path, Workbook{
		Describe: []GroupStats{
			{Group: "大项目", Count: 1, Mean: 26.32, Std: Float(math.NaN()), Min: 26.32, Q1: 26.32, Median: 26.32, Q3: 26.32, Max: 26.32},
		},
		Power:    NewPowerSummary(0.18, 301.4, 3),
		Grouping: grouping,
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetDescribe, SheetPower, SheetGrouping}, f.GetSheetList())

	rows, err := f.GetRows(SheetDescribe)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "大项目", rows[1][0])
	assert.Equal(t, "", rows[1][3])

	rows, err = f.GetRows(SheetPower)
	require.NoError(t, err)
	assert.Equal(t, []string{"所需样本量", "302"}, rows[4])

	rows, err = f.GetRows(SheetGrouping)
	require.NoError(t, err)
	assert.Equal(t, "非大项目", rows[2][1])
	assert.True(t, strings.HasPrefix(rows[1][2], "26.32"))
}

func TestFormatRuns(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []RunSummary{
		{ID: "run-2", Stage: "analyze", StartedAt: started, Records: 20},
		{ID: "run-1", Stage: "sizes", StartedAt: started.Add(-time.Hour), Records: 12, Skipped: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatRuns(runs, VerbosityQuiet, &buf))
	assert.Equal(t, "run-2 analyze 20\nrun-1 sizes 12\n", buf.String())

	buf.Reset()
	require.NoError(t, FormatRuns(runs, VerbosityStandard, &buf))
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "sizes")

	buf.Reset()
	require.NoError(t, FormatRuns(nil, VerbosityStandard, &buf))
	assert.Equal(t, "No archived runs\n", buf.String())
}

func TestFormatRunDetail(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(1500 * time.Millisecond)
	detail := &RunDetail{
		Run: RunSummary{ID: "run-1", Stage: "departures", StartedAt: started, FinishedAt: &finished, Records: 2},
		Projects: []ArchivedProject{
			{Project: "alpha", RowCount: 19, Size: "small", Departure: 26.32, Left: 5, Reference: 19},
			{Project: "delta", Departure: Float(math.NaN())},
		},
		Developers: 3,
		Departed:   1,
		Tests:      []TestSummary{{Name: "Kruskal-Wallis", Statistic: 7.2, PValue: 0.027, Significant: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatRunDetail(detail, VerbosityStandard, &buf))
	out := buf.String()
	assert.Contains(t, out, "📦 departures (run-1)")
	assert.Contains(t, out, "Took: 1.5s")
	assert.Contains(t, out, "departure=26.32 (5/19)")
	assert.Contains(t, out, "departure= (0/0)")
	assert.Contains(t, out, "Developers: 3 (1 departed)")
	assert.Contains(t, out, "Kruskal-Wallis: statistic=7.20")

	buf.Reset()
	require.NoError(t, FormatRunDetail(detail, VerbosityJSON, &buf))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	projects := decoded["projects"].([]interface{})
	assert.Nil(t, projects[1].(map[string]interface{})["departure"])
}
