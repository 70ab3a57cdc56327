package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeFileSystem, SeverityHigh, "read"))
}

func TestFileSystemError_NotFatal(t *testing.T) {
	err := FileSystemError(fs.ErrNotExist, "open x_identities.csv")

	assert.False(t, IsFatal(err))
	assert.Equal(t, SeverityHigh, GetSeverity(err))
	assert.Equal(t, ErrorTypeFileSystem, GetType(err))
	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "open x_identities.csv")
}

func TestSchemaError_Fatal(t *testing.T) {
	err := SchemaError(stderrors.New("missing column Author"), "load identities")

	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrorTypeSchema, GetType(err))
}

func TestIsFatal_PlainError(t *testing.T) {
	assert.True(t, IsFatal(stderrors.New("boom")))
	assert.False(t, IsFatal(nil))
}

func TestIs_MatchesByType(t *testing.T) {
	err := DataErrorf(stderrors.New("zero"), "project %s", "x")

	assert.True(t, stderrors.Is(err, &Error{Type: ErrorTypeData}))
	assert.False(t, stderrors.Is(err, &Error{Type: ErrorTypeSchema}))
}

func TestDetailedString(t *testing.T) {
	err := FileSystemErrorf(fs.ErrPermission, "open %s", "a.csv").WithContext("dir", "/data")

	s := err.DetailedString()
	require.Contains(t, s, "[HIGH] [FILESYSTEM] open a.csv")
	assert.Contains(t, s, "dir: /data")
}
