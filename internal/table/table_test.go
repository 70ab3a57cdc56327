package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRead_UTF8WithBOM(t *testing.T) {
	path := writeFile(t, "a.csv", "\xEF\xBB\xBF项目名称,离开百分比\nX,26.32\nY,\n")

	tbl, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"项目名称", "离开百分比"}, tbl.Columns)
	want := [][]string{{"X", "26.32"}, {"Y", ""}}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_GBKFallback(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("项目名称,项目规模\n甲,小项目\n")
	require.NoError(t, err)
	path := writeFile(t, "gbk.csv", encoded)

	tbl, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"项目名称", "项目规模"}, tbl.Columns)
	assert.Equal(t, "小项目", tbl.Value(0, "项目规模"))
}

func TestRead_ShortRowsArePadded(t *testing.T) {
	path := writeFile(t, "short.csv", "a,b,c\n1,2\n")

	tbl, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", Missing}, tbl.Rows[0])
}

func TestRead_LongRowFails(t *testing.T) {
	path := writeFile(t, "long.csv", "a,b\n1,2,3\n")

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 fields")
}

func TestRead_Empty(t *testing.T) {
	tbl, err := Read(writeFile(t, "empty.csv", ""))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Columns)
}

func TestCountRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"header only", "Author\n", 0},
		{"three rows", "Author\nalice\nbob\ncarol\n", 3},
		{"no trailing newline", "Author\nalice\nbob", 2},
		{"embedded newline", "Author,Note\nalice,\"line one\nline two\"\nbob,x\n", 2},
		{"blank lines ignored", "Author\nalice\n\nbob\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CountRows(writeFile(t, "x.csv", tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestCountRows_MissingFile(t *testing.T) {
	_, err := CountRows(filepath.Join(t.TempDir(), "nope.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRequire(t *testing.T) {
	tbl := New("Developer", "Main Work Type")

	assert.NoError(t, tbl.Require("f.csv", "Developer"))

	err := tbl.Require("f.csv", "Developer", "Author")
	var mce *MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "Author", mce.Column)
	assert.Equal(t, `f.csv: missing column "Author"`, err.Error())
}

func TestSelectAndSetColumns(t *testing.T) {
	tbl := New("a", "b", "c")
	tbl.Append("1", "2", "3")

	sel, err := tbl.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"3", "1"}}, sel.Rows)

	_, err = tbl.Select("z")
	assert.Error(t, err)

	require.NoError(t, tbl.SetColumns("Author", "First Commit", "Date Comparison"))
	assert.Equal(t, "Author", tbl.Columns[0])
	assert.Error(t, tbl.SetColumns("only-one"))
}

func TestDropMissing(t *testing.T) {
	tbl := New("size", "pct")
	tbl.Append("small", "10")
	tbl.Append("", "20")
	tbl.Append("large", " ")

	assert.Equal(t, 1, tbl.DropMissing().Len())
	assert.Equal(t, 2, tbl.DropMissing("size").Len())
	// original untouched
	assert.Equal(t, 3, tbl.Len())
}

func TestSetColumnAndFloats(t *testing.T) {
	tbl := New("x")
	tbl.Append("1.5")
	tbl.Append("2")

	require.NoError(t, tbl.SetColumn("y", []string{"a", "b"}))
	assert.Equal(t, []string{"2", "b"}, tbl.Rows[1])

	require.NoError(t, tbl.SetColumn("x", []string{"3", "4"}))
	got, err := tbl.Floats("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, got)

	_, err = tbl.Floats("y")
	assert.Error(t, err)
	assert.Error(t, tbl.SetColumn("z", []string{"only one"}))
}

func TestWrite_BOM(t *testing.T) {
	tbl := New("项目名称", "离开百分比")
	tbl.Append("X", "26.32")

	path := filepath.Join(t.TempDir(), "out", "leave.csv")
	require.NoError(t, Write(path, tbl, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBF项目名称,离开百分比\nX,26.32\n", string(data))

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Columns, back.Columns)
}
