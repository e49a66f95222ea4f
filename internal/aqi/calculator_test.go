package aqi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	return NewCalculator(DefaultTable())
}

func TestDefaultTableValid(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, 1, table.Version)
	for _, param := range []Parameter{ParamPM25, ParamPM10, ParamO3, ParamNO2, ParamSO2, ParamCO} {
		_, ok := table.Parameters[param]
		assert.True(t, ok, "missing table for %s", param)
	}

	// Formaldehyde intentionally has no table; it must resolve to unknown.
	_, ok := table.Parameters[ParamHCHO]
	assert.False(t, ok)
}

func TestComputeIndexBandBoundaries(t *testing.T) {
	calc := newTestCalculator(t)

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"top of good band", 12.0, 50},
		{"bottom of moderate band", 12.1, 51},
		{"top of moderate band", 35.4, 100},
		{"bottom of sensitive band", 35.5, 101},
		{"top of sensitive band", 55.4, 150},
		{"bottom of unhealthy band", 55.5, 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := calc.ComputeIndex(ParamPM25, tt.value, UnitUGM3)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeIndexMonotonicWithinBand(t *testing.T) {
	calc := newTestCalculator(t)

	prev := -1
	for c := 0.0; c <= 55.0; c += 0.5 {
		index, ok := calc.ComputeIndex(ParamPM25, c, UnitUGM3)
		require.True(t, ok)
		assert.GreaterOrEqual(t, index, prev, "index decreased at concentration %v", c)
		prev = index
	}
}

func TestComputeIndexCapsAtMax(t *testing.T) {
	calc := newTestCalculator(t)

	index, ok := calc.ComputeIndex(ParamPM25, 600.0, UnitUGM3)
	require.True(t, ok)
	assert.Equal(t, MaxIndex, index)

	// Ozone's table tops out at 200 ppb; beyond it still caps, no extrapolation.
	index, ok = calc.ComputeIndex(ParamO3, 250, UnitPPB)
	require.True(t, ok)
	assert.Equal(t, MaxIndex, index)
}

func TestComputeIndexUnknownParameter(t *testing.T) {
	calc := newTestCalculator(t)

	_, ok := calc.ComputeIndex(ParamHCHO, 10, UnitUGM3)
	assert.False(t, ok)

	_, ok = calc.ComputeIndex(Parameter("radon"), 10, UnitUGM3)
	assert.False(t, ok)
}

func TestComputeIndexNegativeConcentration(t *testing.T) {
	calc := newTestCalculator(t)

	index, ok := calc.ComputeIndex(ParamPM25, -3.0, UnitUGM3)
	require.True(t, ok)
	assert.Equal(t, 0, index)
}

func TestComputeIndexUnitNormalization(t *testing.T) {
	calc := newTestCalculator(t)

	// 0.055 ppm ozone is 55 ppb, the exact bottom of the moderate band.
	index, ok := calc.ComputeIndex(ParamO3, 0.055, UnitPPM)
	require.True(t, ok)
	assert.Equal(t, 51, index)

	// 5 mg/m3 CO converts through ug/m3 and molecular weight to ~4.36 ppm.
	index, ok = calc.ComputeIndex(ParamCO, 5.0, UnitMGM3)
	require.True(t, ok)
	assert.Equal(t, 50, index)
}

func TestNormalizeRoundTrip(t *testing.T) {
	calc := newTestCalculator(t)

	ppb, ok := calc.Normalize(ParamNO2, 94.06, UnitUGM3)
	require.True(t, ok)
	// 94.06 ug/m3 * 24.45 / 46.01 = 49.98 ppb
	assert.InDelta(t, 50.0, ppb, 0.1)

	// Parameters without a molecular weight cannot cross the mass/volume gap.
	_, ok = calc.Normalize(ParamPM25, 10, UnitPPB)
	assert.False(t, ok)
}

func TestCategoryLadder(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, CategoryGood},
		{50, CategoryGood},
		{51, CategoryModerate},
		{100, CategoryModerate},
		{101, CategorySensitive},
		{150, CategorySensitive},
		{151, CategoryUnhealthy},
		{200, CategoryUnhealthy},
		{201, CategoryVeryUnhealthy},
		{300, CategoryVeryUnhealthy},
		{301, CategoryHazardous},
		{500, CategoryHazardous},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.index), "index %d", tt.index)
	}
}
