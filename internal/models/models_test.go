package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizeClass_LegacyLabels(t *testing.T) {
	tests := []struct {
		in   string
		want SizeClass
	}{
		{"小规模项目", SizeSmall},
		{"小项目", SizeSmall},
		{"small", SizeSmall},
		{"中规模项目", SizeMedium},
		{"middle", SizeMedium},
		{" Medium ", SizeMedium},
		{"大项目", SizeLarge},
		{"big", SizeLarge},
		{"LARGE", SizeLarge},
	}
	for _, tt := range tests {
		got, err := ParseSizeClass(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSizeClass("huge")
	assert.Error(t, err)
}

func TestSizeClass_Labels(t *testing.T) {
	assert.Equal(t, "medium", SizeMedium.String())
	assert.Equal(t, "大项目", SizeLarge.Chinese())
	assert.Equal(t, "unknown", SizeUnknown.String())
}

func TestParseJoinTiming(t *testing.T) {
	j, err := ParseJoinTiming("late")
	require.NoError(t, err)
	assert.Equal(t, 1.0, j.Code())

	j, err = ParseJoinTiming("0")
	require.NoError(t, err)
	assert.Equal(t, JoinEarly, j)

	_, err = ParseJoinTiming("早")
	assert.Error(t, err, "raw labels go through the configured mapping")
}

func TestParseWorkType(t *testing.T) {
	wt, err := ParseWorkType("  Coding ", nil)
	require.NoError(t, err)
	assert.Equal(t, WorkType("Coding"), wt)

	wt, err = ParseWorkType("coding", []string{"Coding", "Review"})
	require.NoError(t, err)
	assert.Equal(t, WorkType("Coding"), wt)

	_, err = ParseWorkType("docs", []string{"Coding", "Review"})
	assert.Error(t, err)

	_, err = ParseWorkType(" ", nil)
	assert.Error(t, err)
}

func TestParseLeft(t *testing.T) {
	for _, s := range []string{"1", "1.0", "True"} {
		v, err := ParseLeft(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	v, err := ParseLeft("0")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = ParseLeft("maybe")
	assert.Error(t, err)
}

func TestPercentage_String(t *testing.T) {
	assert.Equal(t, "26.32", DefinedPercentage(26.32).String())
	assert.Equal(t, "100", DefinedPercentage(100).String())
	assert.Equal(t, "12.5", DefinedPercentage(12.5).String())
	assert.Equal(t, "", Undefined.String())
}
