package forecast

import (
	"fmt"
	"sort"

	"tsforecast/decompose"
	"tsforecast/series"
	"tsforecast/tserr"
)

// MSTLModel decomposes the series with decompose.MSTL, extrapolates the
// trend linearly, and repeats the last full cycle of each seasonal
// component — the forecasting counterpart of
// original_source/src/table_functions/ts_mstl_decomposition_native.cpp's
// decomposition, reassembled for multi-step prediction.
type MSTLModel struct {
	periods []int
	trendSlope, trendIntercept float64
	seasonals map[int][]float64
	n         int
	fitted    bool
}

func NewMSTLModel(periods []int) *MSTLModel { return &MSTLModel{periods: periods} }

func (m *MSTLModel) Name() string { return "MSTL" }

func (m *MSTLModel) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	result, err := decompose.MSTL(values, m.periods, 3)
	if err != nil {
		return err
	}
	slope, intercept, err := decompose.TrendSlope(result.Trend)
	if err != nil {
		return fmt.Errorf("%w: MSTL trend extrapolation failed: %v", tserr.ErrNumericFailure, err)
	}
	m.trendSlope = slope
	m.trendIntercept = intercept
	m.seasonals = result.Seasonals
	m.n = len(values)
	m.fitted = true
	return nil
}

func (m *MSTLModel) Predict(horizon int) (series.Forecast, error) {
	if !m.fitted {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	if horizon < 1 {
		return series.Forecast{}, fmt.Errorf("%w: horizon must be >= 1", tserr.ErrInvalidInput)
	}

	point := make([]float64, horizon)
	periods := append([]int(nil), m.periods...)
	sort.Ints(periods)

	for h := 1; h <= horizon; h++ {
		value := m.trendIntercept + m.trendSlope*float64(m.n+h-1)
		for _, p := range periods {
			seasonal := m.seasonals[p]
			value += seasonal[(m.n+h-1)%p]
		}
		point[h-1] = value
	}

	return series.Forecast{Point: point, ModelName: m.Name()}, nil
}

// AutoMSTLModel searches candidate period sets (derived from the single
// season length supplied) and keeps whichever minimizes in-sample
// residual variance.
type AutoMSTLModel struct {
	candidatePeriods [][]int
	best             *MSTLModel
}

// NewAutoMSTLModel builds an AutoMSTL searcher over the single period and
// (period, 2*period) candidate sets.
func NewAutoMSTLModel(period int) *AutoMSTLModel {
	return &AutoMSTLModel{candidatePeriods: [][]int{{period}, {period, 2 * period}}}
}

func (a *AutoMSTLModel) Name() string { return "AutoMSTL" }

func (a *AutoMSTLModel) Fit(ts *series.TimeSeries) error {
	var best *MSTLModel
	bestVariance := -1.0

	for _, periods := range a.candidatePeriods {
		candidate := NewMSTLModel(periods)
		if err := candidate.Fit(ts); err != nil {
			continue
		}
		values := ts.Values()
		result, err := decompose.MSTL(values, periods, 3)
		if err != nil {
			continue
		}
		variance := 0.0
		for _, r := range result.Residual {
			variance += r * r
		}
		if bestVariance < 0 || variance < bestVariance {
			bestVariance = variance
			best = candidate
		}
	}

	if best == nil {
		return fmt.Errorf("%w: AutoMSTL found no admissible decomposition", tserr.ErrNotConverged)
	}
	a.best = best
	return nil
}

func (a *AutoMSTLModel) Predict(horizon int) (series.Forecast, error) {
	if a.best == nil {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	forecast, err := a.best.Predict(horizon)
	forecast.ModelName = a.Name()
	return forecast, err
}
