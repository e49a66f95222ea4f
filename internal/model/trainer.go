// Package model fits the per-parameter concentration regressors. One model is
// trained from scratch per parameter per sweep cycle and discarded wholesale
// at the next cycle; nothing here is persisted.
package model

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/rpenumatsa/airsense-server/internal/features"
)

// MinTrainingRows is the minimum number of joined rows required to fit a
// model. Below this the trainer returns nil and the caller must fall back to
// a trend-based forecast.
const MinTrainingRows = 10

// numTerms is the size of the degree-2 design row: intercept, the seven
// covariates, and their squares.
const numTerms = 1 + 2*features.Dim

// ridge is a small diagonal regularizer keeping the normal equations solvable
// when the design matrix is rank-deficient (e.g. constant covariates).
const ridge = 1e-4

// Model is a trained degree-2 least-squares regressor with its in-sample fit
// quality. MSE and R2 describe fit on the training set only; they serve as a
// confidence proxy, not a generalization guarantee.
type Model struct {
	Parameter    string
	Coefficients []float64
	MSE          float64
	R2           float64
	SampleCount  int
	TrainedAt    time.Time
}

// Train fits a degree-2 polynomial regression over the 7 covariates. Returns
// nil when fewer than MinTrainingRows rows are available or the solve fails;
// insufficient data is an expected condition, not an error.
func Train(parameter string, rows []features.Row) *Model {
	if len(rows) < MinTrainingRows {
		return nil
	}

	n := len(rows)
	x := mat.NewDense(n, numTerms, nil)
	y := mat.NewVecDense(n, nil)

	for i, row := range rows {
		x.SetRow(i, designRow(row.Features))
		y.SetVec(i, row.Target)
	}

	// Regularized normal equations: (XtX + rI) b = Xty. Cheap at this scale
	// (15x15) and stable enough for the near-collinear covariates weather
	// series produce.
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for i := 0; i < numTerms; i++ {
		xtx.Set(i, i, xtx.At(i, i)+ridge)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var beta mat.VecDense
	if err := beta.SolveVec(&xtx, &xty); err != nil {
		return nil
	}

	m := &Model{
		Parameter:    parameter,
		Coefficients: make([]float64, numTerms),
		SampleCount:  n,
		TrainedAt:    time.Now(),
	}
	copy(m.Coefficients, beta.RawVector().Data)

	m.MSE, m.R2 = fitQuality(m, rows)
	return m
}

// Predict evaluates the regressor on a covariate vector
func (m *Model) Predict(v features.Vector) float64 {
	terms := designRow(v)
	var sum float64
	for i, c := range m.Coefficients {
		sum += c * terms[i]
	}
	return sum
}

// designRow expands a covariate vector into the degree-2 design terms
func designRow(v features.Vector) []float64 {
	row := make([]float64, numTerms)
	row[0] = 1
	for i, f := range v {
		row[1+i] = f
		row[1+features.Dim+i] = f * f
	}
	return row
}

// fitQuality computes in-sample MSE and R2 over the training rows
func fitQuality(m *Model, rows []features.Row) (mse, r2 float64) {
	n := float64(len(rows))

	var mean float64
	for _, row := range rows {
		mean += row.Target
	}
	mean /= n

	var ssRes, ssTot float64
	for _, row := range rows {
		residual := row.Target - m.Predict(row.Features)
		ssRes += residual * residual
		dev := row.Target - mean
		ssTot += dev * dev
	}

	mse = ssRes / n
	if ssTot == 0 {
		// Constant target: the intercept fits it exactly, but R2 is
		// undefined. Report zero so confidence stays conservative.
		return mse, 0
	}

	r2 = 1 - ssRes/ssTot
	if r2 < 0 {
		r2 = 0
	}
	return mse, r2
}
