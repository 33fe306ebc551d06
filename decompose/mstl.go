// Package decompose implements MSTL (multiple seasonal-trend decomposition
// via LOESS-style moving-average smoothing) and a Bayesian online
// changepoint detector. Grounded on
// original_source/src/table_functions/ts_mstl_decomposition_native.cpp and
// original_source/src/table_functions/ts_detect_changepoints_native.cpp
// (see _INDEX.md; both are DuckDB table-function wrappers around the
// algorithms reimplemented here in library form).
package decompose

import (
	"fmt"
	"sort"

	"tsforecast/regression"
	"tsforecast/tserr"
)

// MSTLResult holds one seasonal component per period plus the shared trend
// and the residual left after removing trend and every season.
type MSTLResult struct {
	Trend     []float64
	Seasonals map[int][]float64 // keyed by period length
	Residual  []float64
}

// centeredMovingAverage computes a moving average over the window centred
// on each point. An odd window spans i-window/2..i+window/2; an even window
// spans i-window/2..i+window/2-1 (one more point before i than after it).
// Near the ends the window is cut off at the series boundary, so edge
// points average fewer, one-sided neighbours.
func centeredMovingAverage(values []float64, window int) []float64 {
	n := len(values)
	result := make([]float64, n)
	half := window / 2

	for i := 0; i < n; i++ {
		lo := i - half
		hi := i + half
		if window%2 == 0 {
			hi--
		}
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		result[i] = sum / float64(hi-lo+1)
	}
	return result
}

// MSTL decomposes values into a trend and one seasonal component per entry
// in periods (sorted ascending, smallest period removed first, matching
// the standard MSTL iteration order), leaving a residual. Requires
// len(values) >= 2*max(periods).
func MSTL(values []float64, periods []int, iterations int) (MSTLResult, error) {
	if len(periods) == 0 {
		return MSTLResult{}, fmt.Errorf("%w: MSTL requires at least one seasonal period", tserr.ErrInvalidInput)
	}
	sorted := append([]int(nil), periods...)
	sort.Ints(sorted)
	maxPeriod := sorted[len(sorted)-1]
	if len(values) < 2*maxPeriod {
		return MSTLResult{}, fmt.Errorf("%w: MSTL requires at least %d observations for max period %d, got %d",
			tserr.ErrInsufficientData, 2*maxPeriod, maxPeriod, len(values))
	}
	if iterations < 1 {
		iterations = 2
	}

	n := len(values)
	seasonals := make(map[int][]float64, len(sorted))
	for _, p := range sorted {
		seasonals[p] = make([]float64, n)
	}
	deseasonalized := append([]float64(nil), values...)

	for iter := 0; iter < iterations; iter++ {
		for _, p := range sorted {
			// Add back this period's current seasonal estimate, then
			// re-estimate it from the residual.
			withSeason := make([]float64, n)
			for i := range withSeason {
				withSeason[i] = deseasonalized[i] + seasonals[p][i]
			}

			seasonAvg := make([]float64, p)
			counts := make([]int, p)
			trendForSeason := centeredMovingAverage(withSeason, p)
			for i := 0; i < n; i++ {
				detrended := withSeason[i] - trendForSeason[i]
				phase := i % p
				seasonAvg[phase] += detrended
				counts[phase]++
			}
			for phase := range seasonAvg {
				if counts[phase] > 0 {
					seasonAvg[phase] /= float64(counts[phase])
				}
			}
			mean := 0.0
			for _, v := range seasonAvg {
				mean += v
			}
			mean /= float64(p)
			for phase := range seasonAvg {
				seasonAvg[phase] -= mean
			}

			newSeason := make([]float64, n)
			for i := 0; i < n; i++ {
				newSeason[i] = seasonAvg[i%p]
			}
			seasonals[p] = newSeason

			for i := 0; i < n; i++ {
				deseasonalized[i] = withSeason[i] - newSeason[i]
			}
		}
	}

	trend := centeredMovingAverage(deseasonalized, 2*maxPeriod+1)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonSum := 0.0
		for _, p := range sorted {
			seasonSum += seasonals[p][i]
		}
		residual[i] = values[i] - trend[i] - seasonSum
	}

	return MSTLResult{Trend: trend, Seasonals: seasonals, Residual: residual}, nil
}

// TrendSlope fits a linear trend line through an MSTL trend component,
// used to extrapolate the trend beyond the observed range.
func TrendSlope(trend []float64) (slope, intercept float64, err error) {
	return regression.FitLinearTrend(trend)
}
