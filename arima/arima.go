// Package arima implements ARIMA(p,d,q) estimation by conditional least
// squares and AutoARIMA order search. Grounded on the OLS-via-gonum/mat
// pattern in ../functions.go (OLSEstimator.Estimate), generalized from
// multivariate VAR regression to a single AR+MA difference equation.
package arima

import (
	"fmt"
	"math"

	"tsforecast/perf"
	"tsforecast/regression"
	"tsforecast/series"
	"tsforecast/tserr"
)

// Order is the (p, d, q) specification: AR order, differencing order, MA
// order.
type Order struct {
	P, D, Q int
}

// Model is a fitted ARIMA(p,d,q) model: AR/MA coefficients estimated by
// conditional least squares on the d-times-differenced series, with
// residuals carried forward for multi-step forecasting.
type Model struct {
	order        Order
	arCoeffs     []float64
	maCoeffs     []float64
	intercept    float64
	lastDiffLevels []float64 // last P differenced observations, most recent last
	lastResiduals  []float64 // last Q residuals, most recent last
	undiffSeeds    []float64 // last D values of the original series, for re-integration
	fitted         bool
}

func New(order Order) *Model { return &Model{order: order} }

func (m *Model) Name() string { return fmt.Sprintf("ARIMA(%d,%d,%d)", m.order.P, m.order.D, m.order.Q) }

func minLength(order Order) int {
	return order.P + order.D + order.Q + 1
}

// Difference applies d-th order differencing, returning the differenced
// series and the seeds needed to re-integrate a forecast.
func Difference(values []float64, d int) (diffed []float64, seeds []float64) {
	current := append([]float64(nil), values...)
	var allSeeds []float64
	for i := 0; i < d; i++ {
		if len(current) == 0 {
			break
		}
		allSeeds = append(allSeeds, current[len(current)-1])
		next := make([]float64, len(current)-1)
		for j := 1; j < len(current); j++ {
			next[j-1] = current[j] - current[j-1]
		}
		current = next
	}
	return current, allSeeds
}

// Integrate reverses Difference on forecast values, using seeds captured
// at fit time (in the order Difference produced them).
func Integrate(forecastDiffs []float64, seeds []float64) []float64 {
	result := append([]float64(nil), forecastDiffs...)
	for i := len(seeds) - 1; i >= 0; i-- {
		next := make([]float64, len(result))
		level := seeds[i]
		for j, d := range result {
			level += d
			next[j] = level
		}
		result = next
	}
	return result
}

func (m *Model) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	required := minLength(m.order)
	if len(values) < required {
		return fmt.Errorf("%w: ARIMA%+v requires at least %d observations, got %d", tserr.ErrInsufficientData, m.order, required, len(values))
	}

	diffed, seeds := Difference(values, m.order.D)
	if len(diffed) < m.order.P+m.order.Q+1 {
		return fmt.Errorf("%w: not enough points remain after differencing", tserr.ErrInsufficientData)
	}
	m.undiffSeeds = seeds

	p, q := m.order.P, m.order.Q
	n := len(diffed)

	// Conditional least squares: regress diffed[t] on
	// [1, diffed[t-1..t-p], resid[t-1..t-q]]. The regression runs once, while
	// the residual array is still all zero, so the MA regressor columns are
	// zero; the residuals it leaves behind seed lastResiduals for forecasting
	// and are not fed into a second regression.
	residuals := make([]float64, n)

	var rows [][]float64
	var targets []float64
	for t := p; t < n; t++ {
		row := make([]float64, 0, 1+p+q)
		row = append(row, 1.0)
		for lag := 1; lag <= p; lag++ {
			row = append(row, diffed[t-lag])
		}
		for lag := 1; lag <= q; lag++ {
			if t-lag >= 0 {
				row = append(row, residuals[t-lag])
			} else {
				row = append(row, 0.0)
			}
		}
		rows = append(rows, row)
		targets = append(targets, diffed[t])
	}

	if len(rows) == 0 {
		return fmt.Errorf("%w: no regression rows available after accounting for AR order", tserr.ErrInsufficientData)
	}

	var result regression.OLSResult
	fitErr := perf.Track("arima.Model", "Fit", func() error {
		var olsErr error
		result, olsErr = regression.FitOLS(rows, targets)
		return olsErr
	})
	if fitErr != nil {
		return fmt.Errorf("ARIMA: CLS estimation failed: %w", fitErr)
	}

	m.intercept = result.Coefficients[0]
	m.arCoeffs = append([]float64(nil), result.Coefficients[1:1+p]...)
	m.maCoeffs = append([]float64(nil), result.Coefficients[1+p:1+p+q]...)

	for i := range rows {
		residuals[i+p] = targets[i] - result.FittedValues[i]
	}

	if p > 0 {
		m.lastDiffLevels = append([]float64(nil), diffed[n-p:]...)
	}
	if q > 0 {
		m.lastResiduals = append([]float64(nil), residuals[n-q:]...)
	}
	m.fitted = true
	return nil
}

func (m *Model) Predict(horizon int) (series.Forecast, error) {
	if !m.fitted {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	if horizon < 1 {
		return series.Forecast{}, fmt.Errorf("%w: horizon must be >= 1", tserr.ErrInvalidInput)
	}

	p, q := m.order.P, m.order.Q
	levels := append([]float64(nil), m.lastDiffLevels...)
	residuals := append([]float64(nil), m.lastResiduals...)

	diffForecast := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		value := m.intercept
		for lag := 1; lag <= p; lag++ {
			idx := len(levels) - lag
			if idx >= 0 {
				value += m.arCoeffs[lag-1] * levels[idx]
			}
		}
		for lag := 1; lag <= q; lag++ {
			idx := len(residuals) - lag
			if idx >= 0 {
				value += m.maCoeffs[lag-1] * residuals[idx]
			}
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return series.Forecast{}, fmt.Errorf("%w: ARIMA forecast diverged at step %d", tserr.ErrNumericFailure, h+1)
		}
		diffForecast[h] = value
		levels = append(levels, value)
		residuals = append(residuals, 0.0) // future innovations have expectation zero
	}

	point := Integrate(diffForecast, m.undiffSeeds)
	return series.Forecast{Point: point, ModelName: m.Name()}, nil
}

// AutoARIMA searches a small grid of (p, d, q) orders and keeps the one
// with the lowest in-sample sum of squared residuals.
type AutoARIMA struct {
	maxP, maxD, maxQ int
	best             *Model
}

func NewAutoARIMA(maxP, maxD, maxQ int) *AutoARIMA {
	return &AutoARIMA{maxP: maxP, maxD: maxD, maxQ: maxQ}
}

func (a *AutoARIMA) Name() string { return "AutoARIMA" }

func (a *AutoARIMA) Fit(ts *series.TimeSeries) error {
	var best *Model
	bestSSE := math.Inf(1)

	for d := 0; d <= a.maxD; d++ {
		for p := 0; p <= a.maxP; p++ {
			for q := 0; q <= a.maxQ; q++ {
				if p == 0 && q == 0 {
					continue
				}
				candidate := New(Order{P: p, D: d, Q: q})
				if err := candidate.Fit(ts); err != nil {
					continue
				}
				sse := candidateSSE(candidate, ts)
				if sse < bestSSE {
					bestSSE = sse
					best = candidate
				}
			}
		}
	}

	if best == nil {
		return fmt.Errorf("%w: AutoARIMA found no admissible order", tserr.ErrNotConverged)
	}
	a.best = best
	return nil
}

func candidateSSE(m *Model, ts *series.TimeSeries) float64 {
	values := ts.Values()
	diffed, _ := Difference(values, m.order.D)
	sse := 0.0
	for i := m.order.P; i < len(diffed); i++ {
		predicted := m.intercept
		for lag := 1; lag <= m.order.P; lag++ {
			predicted += m.arCoeffs[lag-1] * diffed[i-lag]
		}
		d := diffed[i] - predicted
		sse += d * d
	}
	return sse
}

func (a *AutoARIMA) Predict(horizon int) (series.Forecast, error) {
	if a.best == nil {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	forecast, err := a.best.Predict(horizon)
	forecast.ModelName = a.Name()
	return forecast, err
}
