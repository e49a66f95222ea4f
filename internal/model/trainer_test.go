package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpenumatsa/airsense-server/internal/features"
)

// rowWithTemp builds a row where only the temperature covariate varies
func rowWithTemp(temp, target float64) features.Row {
	return features.Row{
		Features: features.Vector{12, 2, temp, 60, 3, 1013, 40},
		Target:   target,
	}
}

func TestTrainRequiresMinimumRows(t *testing.T) {
	var rows []features.Row
	for i := 0; i < MinTrainingRows-1; i++ {
		rows = append(rows, rowWithTemp(float64(i), float64(i)))
	}

	assert.Nil(t, Train("pm25", rows))
	assert.Nil(t, Train("pm25", nil))
}

func TestTrainFitsQuadraticRelationship(t *testing.T) {
	// Target is an exact quadratic in temperature; the degree-2 fit should
	// recover it almost perfectly.
	var rows []features.Row
	for i := 0; i < 30; i++ {
		temp := float64(i)
		target := 2.0 + 3.0*temp + 0.5*temp*temp
		rows = append(rows, rowWithTemp(temp, target))
	}

	m := Train("o3", rows)
	require.NotNil(t, m)

	assert.Equal(t, "o3", m.Parameter)
	assert.Equal(t, 30, m.SampleCount)
	assert.Greater(t, m.R2, 0.99)
	assert.Less(t, m.MSE, 1.0)

	got := m.Predict(rowWithTemp(10, 0).Features)
	assert.InDelta(t, 2.0+30.0+50.0, got, 1.0)
}

func TestTrainFitQualityBounds(t *testing.T) {
	// Noisy-ish data: target loosely tracks temperature.
	var rows []features.Row
	for i := 0; i < 40; i++ {
		temp := float64(i % 13)
		target := 5 + temp + float64((i*7)%5)
		rows = append(rows, rowWithTemp(temp, target))
	}

	m := Train("no2", rows)
	require.NotNil(t, m)

	assert.GreaterOrEqual(t, m.R2, 0.0)
	assert.LessOrEqual(t, m.R2, 1.0)
	assert.GreaterOrEqual(t, m.MSE, 0.0)
}

func TestTrainConstantTarget(t *testing.T) {
	var rows []features.Row
	for i := 0; i < 20; i++ {
		rows = append(rows, rowWithTemp(float64(i), 42.0))
	}

	m := Train("so2", rows)
	require.NotNil(t, m)

	// R2 is undefined for a constant target; the trainer reports zero.
	assert.Equal(t, 0.0, m.R2)
	assert.InDelta(t, 42.0, m.Predict(rowWithTemp(5, 0).Features), 1.0)
}
