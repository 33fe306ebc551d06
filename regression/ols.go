// Package regression implements ordinary least squares fitting used by the
// Theta and MSTL trend components. Grounded on the OLSEstimator.Estimate
// normal-equations-with-SVD-fallback pattern in ../functions.go, adapted
// from multivariate VAR regression to univariate trend regression.
package regression

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"tsforecast/tserr"
)

// OLSResult holds a fitted simple or multiple linear regression.
type OLSResult struct {
	Coefficients []float64
	Residuals    []float64
	FittedValues []float64
}

// FitOLS solves y = X*beta by least squares, minimizing ||y - X*beta||.
// X has shape (n, k) in row-major order (rows[i] = X[i*k : i*k+k]). The
// least-squares problem is solved directly on X (no normal equations are
// formed); when that solve reports X singular, it falls back to an
// SVD-based minimum-norm solution, mirroring OLSEstimator.Estimate's
// xtxError fallback.
func FitOLS(rows [][]float64, y []float64) (OLSResult, error) {
	n := len(rows)
	if n == 0 || len(y) != n {
		return OLSResult{}, fmt.Errorf("%w: rows and y must be non-empty and equal length", tserr.ErrInvalidInput)
	}
	k := len(rows[0])
	for _, r := range rows {
		if len(r) != k {
			return OLSResult{}, fmt.Errorf("%w: all rows must have %d columns", tserr.ErrInvalidInput, k)
		}
	}
	if n < k {
		return OLSResult{}, fmt.Errorf("%w: need at least %d observations to fit %d coefficients, got %d", tserr.ErrInsufficientData, k, k, n)
	}

	flat := make([]float64, 0, n*k)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	X := mat.NewDense(n, k, flat)
	Y := mat.NewVecDense(n, append([]float64(nil), y...))

	var beta mat.VecDense
	if err := beta.SolveVec(X, Y); err != nil {
		var svd mat.SVD
		if ok := svd.Factorize(X, mat.SVDThin); !ok {
			return OLSResult{}, fmt.Errorf("%w: OLS least-squares solve singular and SVD factorization failed", tserr.ErrNumericFailure)
		}
		rank := svd.Rank(1e-12)
		var betaMat mat.Dense
		if rank == 0 {
			betaMat = *mat.NewDense(k, 1, nil)
		} else {
			Ycol := mat.NewDense(n, 1, append([]float64(nil), y...))
			svd.SolveTo(&betaMat, Ycol, rank)
		}
		beta = *mat.NewVecDense(k, betaMat.RawMatrix().Data)
	}

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)

	result := OLSResult{
		Coefficients: append([]float64(nil), beta.RawVector().Data...),
		FittedValues: make([]float64, n),
		Residuals:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		result.FittedValues[i] = fitted.AtVec(i)
		result.Residuals[i] = y[i] - result.FittedValues[i]
	}
	return result, nil
}

// FitLinearTrend fits y[i] = intercept + slope*i via OLS, the trend model
// used by Theta and by MSTL's detrending step.
func FitLinearTrend(y []float64) (slope, intercept float64, err error) {
	n := len(y)
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = []float64{1.0, float64(i)}
	}
	result, fitErr := FitOLS(rows, y)
	if fitErr != nil {
		return 0, 0, fitErr
	}
	return result.Coefficients[1], result.Coefficients[0], nil
}
