package classify

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/attrition/internal/models"
)

func TestSizeThresholds_Partition(t *testing.T) {
	th, err := SizeThresholds([]float64{15, 30})
	require.NoError(t, err)

	tests := []struct {
		rows float64
		want models.SizeClass
	}{
		{0, models.SizeSmall},
		{14, models.SizeSmall},
		{15, models.SizeMedium},
		{29, models.SizeMedium},
		{30, models.SizeLarge},
		{100, models.SizeLarge},
		{-1, models.SizeSmall},
		{math.Inf(1), models.SizeLarge},
	}
	for _, tt := range tests {
		got, err := th.Classify(tt.rows)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "rows=%v", tt.rows)
	}
}

func TestSizeThresholds_RowCounts(t *testing.T) {
	th, err := SizeThresholds([]float64{15, 30})
	require.NoError(t, err)

	var got []models.SizeClass
	for _, n := range []int{10, 20, 31} {
		c, err := th.Classify(float64(n))
		require.NoError(t, err)
		got = append(got, c)
	}
	assert.Equal(t, []models.SizeClass{models.SizeSmall, models.SizeMedium, models.SizeLarge}, got)
}

func TestThresholds_NaN(t *testing.T) {
	th, err := SizeThresholds([]float64{15, 30})
	require.NoError(t, err)

	_, err = th.Classify(math.NaN())
	assert.Error(t, err)
}

func TestNewThresholds_Invalid(t *testing.T) {
	_, err := NewThresholds([]float64{30, 15}, []string{"a", "b", "c"})
	assert.ErrorContains(t, err, "strictly ascending")

	_, err = NewThresholds([]float64{15}, []string{"a", "b", "c"})
	assert.ErrorContains(t, err, "need 2 labels")

	_, err = NewThresholds([]float64{math.NaN()}, []string{"a", "b"})
	assert.Error(t, err)
}

func TestThresholds_CustomLabels(t *testing.T) {
	th, err := NewThresholds([]float64{0.5}, []int{0, 1})
	require.NoError(t, err)

	v, err := th.Classify(0.7)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestPercentileThresholds(t *testing.T) {
	values := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	th, err := PercentileThresholds(values, []float64{30, 60}, models.SizeClasses)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{30, 60}, th.Cuts, 1e-9)

	for v, want := range map[float64]models.SizeClass{
		30: models.SizeSmall,
		31: models.SizeMedium,
		60: models.SizeMedium,
		61: models.SizeLarge,
	} {
		got, err := th.Classify(v)
		require.NoError(t, err)
		assert.Equal(t, want, got, "v=%v", v)
	}

	// all-equal input collapses the cuts
	_, err = PercentileThresholds([]float64{5, 5, 5}, []float64{33, 66}, models.SizeClasses)
	assert.Error(t, err)
}

func TestJoinTimingMapping(t *testing.T) {
	m, err := JoinTimingMapping(map[string]string{"早": "early", "晚": "late"})
	require.NoError(t, err)

	v, err := m.Classify(" 晚 ")
	require.NoError(t, err)
	assert.Equal(t, models.JoinLate, v)

	v, err = m.Classify("早")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Code())

	_, err = m.Classify("中")
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	_, err = JoinTimingMapping(map[string]string{"早": "soon"})
	assert.Error(t, err)
}
