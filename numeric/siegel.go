package numeric

import (
	"fmt"
	"math"

	"tsforecast/tserr"
)

// SiegelRepeatedMedians computes a robust linear fit y = slope*x + intercept
// using Siegel's repeated-medians estimator (50% breakdown point). For each
// point i it takes the median of the n-1 pairwise slopes to every other
// point, then the overall slope is the median of those per-point medians;
// the intercept is the median of y[i] - slope*x[i].
//
// Reference: statsforecast's MFLES siegel_repeated_medians.
func SiegelRepeatedMedians(x, y []float64) (slope, intercept float64, err error) {
	n := len(x)
	if n != len(y) {
		return 0, 0, fmt.Errorf("%w: x and y must have the same length (got %d and %d)", tserr.ErrInvalidInput, n, len(y))
	}
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: need at least 2 points for regression, got %d", tserr.ErrInvalidInput, n)
	}

	pointSlopes := make([]float64, n)
	scratch := make([]float64, n-1)

	for i := 0; i < n; i++ {
		k := 0
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			xd := x[j] - x[i]
			var s float64
			if math.Abs(xd) < 1e-10 {
				s = 0.0
			} else {
				s = (y[j] - y[i]) / xd
			}
			scratch[k] = s
			k++
		}
		med, medErr := Median(append([]float64(nil), scratch...))
		if medErr != nil {
			return 0, 0, medErr
		}
		pointSlopes[i] = med
	}

	slope, err = Median(append([]float64(nil), pointSlopes...))
	if err != nil {
		return 0, 0, err
	}

	intercepts := make([]float64, n)
	for i := 0; i < n; i++ {
		intercepts[i] = y[i] - slope*x[i]
	}
	intercept, err = Median(intercepts)
	if err != nil {
		return 0, 0, err
	}
	return slope, intercept, nil
}
