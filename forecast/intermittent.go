package forecast

import (
	"fmt"

	"tsforecast/series"
	"tsforecast/tserr"
)

// crostonCore implements Croston's method for intermittent demand: demand
// size and inter-demand interval are smoothed separately with exponential
// smoothing, applied only at non-zero observations.
type crostonCore struct {
	alpha   float64
	biasSBA bool
	level   float64 // smoothed demand size
	period  float64 // smoothed inter-demand interval
	fitted  bool
}

func (c *crostonCore) fit(values []float64) error {
	if len(values) < 2 {
		return fmt.Errorf("%w: Croston requires at least 2 observations", tserr.ErrInsufficientData)
	}

	var firstDemand float64
	var firstInterval float64
	sinceLastDemand := 0
	haveFirst := false

	for _, v := range values {
		sinceLastDemand++
		if v != 0 {
			if !haveFirst {
				firstDemand = v
				firstInterval = float64(sinceLastDemand)
				c.level = firstDemand
				c.period = firstInterval
				haveFirst = true
			} else {
				c.level += c.alpha * (v - c.level)
				c.period += c.alpha * (float64(sinceLastDemand) - c.period)
			}
			sinceLastDemand = 0
		}
	}

	if !haveFirst {
		return fmt.Errorf("%w: Croston requires at least one non-zero observation", tserr.ErrInsufficientData)
	}
	c.fitted = true
	return nil
}

func (c *crostonCore) forecast() float64 {
	rate := c.level / c.period
	if c.biasSBA {
		rate *= (1.0 - c.alpha/2.0)
	}
	return rate
}

// CrostonClassic is Croston's method with alpha=0.1.
type CrostonClassic struct{ core crostonCore }

func NewCrostonClassic() *CrostonClassic { return &CrostonClassic{core: crostonCore{alpha: 0.1}} }
func (m *CrostonClassic) Name() string   { return "CrostonClassic" }
func (m *CrostonClassic) Fit(ts *series.TimeSeries) error { return m.core.fit(ts.Values()) }
func (m *CrostonClassic) Predict(horizon int) (series.Forecast, error) {
	return flatForecast(m.core.fitted, m.core.forecast(), horizon, m.Name())
}

// CrostonSBA is the Syntetos-Boylan bias-corrected variant.
type CrostonSBA struct{ core crostonCore }

func NewCrostonSBA() *CrostonSBA { return &CrostonSBA{core: crostonCore{alpha: 0.1, biasSBA: true}} }
func (m *CrostonSBA) Name() string { return "CrostonSBA" }
func (m *CrostonSBA) Fit(ts *series.TimeSeries) error { return m.core.fit(ts.Values()) }
func (m *CrostonSBA) Predict(horizon int) (series.Forecast, error) {
	return flatForecast(m.core.fitted, m.core.forecast(), horizon, m.Name())
}

// CrostonOptimized grid-searches alpha in (0,1) for the value minimizing
// in-sample squared error of the implied demand-rate forecast.
type CrostonOptimized struct {
	core     crostonCore
	bestOk   bool
}

func NewCrostonOptimized() *CrostonOptimized { return &CrostonOptimized{} }
func (m *CrostonOptimized) Name() string     { return "CrostonOptimized" }

func (m *CrostonOptimized) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	bestSSE := -1.0
	var best crostonCore
	for alpha := 0.05; alpha <= 0.95; alpha += 0.05 {
		candidate := crostonCore{alpha: alpha}
		if err := candidate.fit(values); err != nil {
			continue
		}
		rate := candidate.forecast()
		sse := 0.0
		for _, v := range values {
			d := v - rate
			sse += d * d
		}
		if bestSSE < 0 || sse < bestSSE {
			bestSSE = sse
			best = candidate
		}
	}
	if bestSSE < 0 {
		return fmt.Errorf("%w: CrostonOptimized found no admissible alpha", tserr.ErrNotConverged)
	}
	m.core = best
	m.bestOk = true
	return nil
}

func (m *CrostonOptimized) Predict(horizon int) (series.Forecast, error) {
	return flatForecast(m.bestOk, m.core.forecast(), horizon, m.Name())
}

// ADIDA (Aggregate-Disaggregate Intermittent Demand Approach) aggregates
// the series into non-overlapping blocks sized to the average inter-demand
// interval, takes the mean of the block totals as the aggregate level (no
// exponential smoothing is applied), then disaggregates evenly back to the
// base frequency.
type ADIDA struct {
	blockSize int
	rate      float64
	fitted    bool
}

func NewADIDA() *ADIDA { return &ADIDA{} }
func (m *ADIDA) Name() string { return "ADIDA" }

func (m *ADIDA) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	if len(values) < 2 {
		return fmt.Errorf("%w: ADIDA requires at least 2 observations", tserr.ErrInsufficientData)
	}

	nonZero := 0
	for _, v := range values {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		return fmt.Errorf("%w: ADIDA requires at least one non-zero observation", tserr.ErrInsufficientData)
	}
	blockSize := len(values) / nonZero
	if blockSize < 1 {
		blockSize = 1
	}
	m.blockSize = blockSize

	var aggregated []float64
	for i := 0; i < len(values); i += blockSize {
		end := i + blockSize
		if end > len(values) {
			end = len(values)
		}
		sum := 0.0
		for _, v := range values[i:end] {
			sum += v
		}
		aggregated = append(aggregated, sum)
	}

	sum := 0.0
	for _, v := range aggregated {
		sum += v
	}
	m.rate = sum / float64(len(aggregated)) / float64(blockSize)
	m.fitted = true
	return nil
}

func (m *ADIDA) Predict(horizon int) (series.Forecast, error) {
	return flatForecast(m.fitted, m.rate, horizon, m.Name())
}

// IMAPA (Intermittent Multiple Aggregation Prediction Algorithm) averages
// ADIDA-style aggregate forecasts across several aggregation levels.
type IMAPA struct {
	rate   float64
	fitted bool
}

func NewIMAPA() *IMAPA { return &IMAPA{} }
func (m *IMAPA) Name() string { return "IMAPA" }

func (m *IMAPA) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	if len(values) < 4 {
		return fmt.Errorf("%w: IMAPA requires at least 4 observations", tserr.ErrInsufficientData)
	}

	maxLevel := len(values) / 2
	if maxLevel > 12 {
		maxLevel = 12
	}
	if maxLevel < 1 {
		maxLevel = 1
	}

	var rateSum float64
	count := 0
	for blockSize := 1; blockSize <= maxLevel; blockSize++ {
		var aggregated []float64
		for i := 0; i < len(values); i += blockSize {
			end := i + blockSize
			if end > len(values) {
				end = len(values)
			}
			sum := 0.0
			for _, v := range values[i:end] {
				sum += v
			}
			aggregated = append(aggregated, sum)
		}
		sum := 0.0
		for _, v := range aggregated {
			sum += v
		}
		rateSum += sum / float64(len(aggregated)) / float64(blockSize)
		count++
	}

	m.rate = rateSum / float64(count)
	m.fitted = true
	return nil
}

func (m *IMAPA) Predict(horizon int) (series.Forecast, error) {
	return flatForecast(m.fitted, m.rate, horizon, m.Name())
}

// TSB (Teunter-Syntetos-Babai) smooths demand size and demand probability
// separately with independent smoothing constants, updating the
// probability every period (not just on demand occurrences, unlike
// Croston).
type TSB struct {
	alphaD, alphaP float64
	level          float64
	prob           float64
	fitted         bool
}

func NewTSB(alphaD, alphaP float64) *TSB { return &TSB{alphaD: alphaD, alphaP: alphaP} }
func (m *TSB) Name() string { return "TSB" }

func (m *TSB) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	if len(values) < 2 {
		return fmt.Errorf("%w: TSB requires at least 2 observations", tserr.ErrInsufficientData)
	}

	level := 0.0
	prob := 0.0
	haveFirst := false
	for _, v := range values {
		occurred := 0.0
		if v != 0 {
			occurred = 1.0
		}
		if !haveFirst {
			level = v
			prob = occurred
			haveFirst = true
			continue
		}
		prob += m.alphaP * (occurred - prob)
		if v != 0 {
			level += m.alphaD * (v - level)
		}
	}

	m.level = level
	m.prob = prob
	m.fitted = true
	return nil
}

func (m *TSB) Predict(horizon int) (series.Forecast, error) {
	return flatForecast(m.fitted, m.level*m.prob, horizon, m.Name())
}

func flatForecast(fitted bool, value float64, horizon int, name string) (series.Forecast, error) {
	if !fitted {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	if horizon < 1 {
		return series.Forecast{}, fmt.Errorf("%w: horizon must be >= 1", tserr.ErrInvalidInput)
	}
	point := make([]float64, horizon)
	for i := range point {
		point[i] = value
	}
	return series.Forecast{Point: point, ModelName: name}, nil
}
