package forecast

import (
	"fmt"
	"math"

	"tsforecast/decompose"
	"tsforecast/series"
	"tsforecast/tserr"
)

// MFLESModel (Multiple Frequency LOESS-ES) decomposes trend and seasonality
// with decompose.MSTL, then smooths the residual with SES rather than
// assuming it is zero-mean noise — the combination that distinguishes
// MFLES from plain MSTL in the catalog.
type MFLESModel struct {
	mstl     *MSTLModel
	residual *ETSModel
	fitted   bool
}

func NewMFLESModel(periods []int) *MFLESModel {
	return &MFLESModel{mstl: NewMSTLModel(periods)}
}

func (m *MFLESModel) Name() string { return "MFLES" }

func (m *MFLESModel) Fit(ts *series.TimeSeries) error {
	if err := m.mstl.Fit(ts); err != nil {
		return err
	}
	values := ts.Values()
	result, err := decompose.MSTL(values, m.mstl.periods, 3)
	if err != nil {
		return err
	}
	residualTS, err := series.NewFromValues(result.Residual)
	if err != nil {
		return fmt.Errorf("%w: MFLES residual series invalid: %v", tserr.ErrNumericFailure, err)
	}
	residualModel := NewSES()
	if err := residualModel.Fit(residualTS); err != nil {
		return fmt.Errorf("MFLES: residual smoothing failed: %w", err)
	}
	m.residual = residualModel
	m.fitted = true
	return nil
}

func (m *MFLESModel) Predict(horizon int) (series.Forecast, error) {
	if !m.fitted {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	trendSeasonal, err := m.mstl.Predict(horizon)
	if err != nil {
		return series.Forecast{}, err
	}
	residualForecast, err := m.residual.Predict(horizon)
	if err != nil {
		return series.Forecast{}, err
	}
	point := make([]float64, horizon)
	for i := range point {
		point[i] = trendSeasonal.Point[i] + residualForecast.Point[i]
	}
	return series.Forecast{Point: point, ModelName: m.Name()}, nil
}

// AutoMFLESModel searches the same period-set candidates as AutoMSTL but
// scores the MFLES residual-smoothed variant.
type AutoMFLESModel struct {
	candidatePeriods [][]int
	best             *MFLESModel
}

func NewAutoMFLESModel(period int) *AutoMFLESModel {
	return &AutoMFLESModel{candidatePeriods: [][]int{{period}, {period, 2 * period}}}
}

func (a *AutoMFLESModel) Name() string { return "AutoMFLES" }

func (a *AutoMFLESModel) Fit(ts *series.TimeSeries) error {
	var best *MFLESModel
	bestSSE := math.Inf(1)

	for _, periods := range a.candidatePeriods {
		candidate := NewMFLESModel(periods)
		if err := candidate.Fit(ts); err != nil {
			continue
		}
		fitted, err := candidate.Predict(1)
		if err != nil {
			continue
		}
		values := ts.Values()
		last := values[len(values)-1]
		sse := (fitted.Point[0] - last) * (fitted.Point[0] - last)
		if sse < bestSSE {
			bestSSE = sse
			best = candidate
		}
	}

	if best == nil {
		return fmt.Errorf("%w: AutoMFLES found no admissible decomposition", tserr.ErrNotConverged)
	}
	a.best = best
	return nil
}

func (a *AutoMFLESModel) Predict(horizon int) (series.Forecast, error) {
	if a.best == nil {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	forecast, err := a.best.Predict(horizon)
	forecast.ModelName = a.Name()
	return forecast, err
}

// TBATSModel approximates TBATS (Trigonometric, Box-Cox, ARMA, Trend,
// Seasonal) by an MSTL decomposition (standing in for the trigonometric
// seasonal representation) plus an AR(1) correction on the residual
// (standing in for the ARMA error term). A full Box-Cox/trigonometric-
// Fourier TBATS is out of scope for this forecaster catalog; this captures
// its multi-seasonal-plus-autocorrelated-residual structure.
type TBATSModel struct {
	mstl      *MSTLModel
	arCoeff   float64
	lastResid float64
	fitted    bool
}

func NewTBATSModel(periods []int) *TBATSModel {
	return &TBATSModel{mstl: NewMSTLModel(periods)}
}

func (t *TBATSModel) Name() string { return "TBATS" }

func (t *TBATSModel) Fit(ts *series.TimeSeries) error {
	if err := t.mstl.Fit(ts); err != nil {
		return err
	}
	values := ts.Values()
	result, err := decompose.MSTL(values, t.mstl.periods, 3)
	if err != nil {
		return err
	}
	residual := result.Residual
	if len(residual) < 2 {
		return fmt.Errorf("%w: TBATS requires at least 2 residual points to fit the AR(1) error term", tserr.ErrInsufficientData)
	}

	var num, denom float64
	for i := 1; i < len(residual); i++ {
		num += residual[i] * residual[i-1]
		denom += residual[i-1] * residual[i-1]
	}
	if denom > 0 {
		t.arCoeff = num / denom
	}
	if t.arCoeff > 0.98 {
		t.arCoeff = 0.98
	}
	if t.arCoeff < -0.98 {
		t.arCoeff = -0.98
	}
	t.lastResid = residual[len(residual)-1]
	t.fitted = true
	return nil
}

func (t *TBATSModel) Predict(horizon int) (series.Forecast, error) {
	if !t.fitted {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	trendSeasonal, err := t.mstl.Predict(horizon)
	if err != nil {
		return series.Forecast{}, err
	}
	point := make([]float64, horizon)
	resid := t.lastResid
	for i := range point {
		resid *= t.arCoeff
		point[i] = trendSeasonal.Point[i] + resid
	}
	return series.Forecast{Point: point, ModelName: t.Name()}, nil
}

// AutoTBATSModel searches the same period-set candidates as AutoMSTL for
// the TBATS variant.
type AutoTBATSModel struct {
	candidatePeriods [][]int
	best             *TBATSModel
}

func NewAutoTBATSModel(period int) *AutoTBATSModel {
	return &AutoTBATSModel{candidatePeriods: [][]int{{period}, {period, 2 * period}}}
}

func (a *AutoTBATSModel) Name() string { return "AutoTBATS" }

func (a *AutoTBATSModel) Fit(ts *series.TimeSeries) error {
	var best *TBATSModel
	bestAbsAR := -1.0

	for _, periods := range a.candidatePeriods {
		candidate := NewTBATSModel(periods)
		if err := candidate.Fit(ts); err != nil {
			continue
		}
		if math.Abs(candidate.arCoeff) > bestAbsAR {
			bestAbsAR = math.Abs(candidate.arCoeff)
			best = candidate
		}
	}

	if best == nil {
		return fmt.Errorf("%w: AutoTBATS found no admissible decomposition", tserr.ErrNotConverged)
	}
	a.best = best
	return nil
}

func (a *AutoTBATSModel) Predict(horizon int) (series.Forecast, error) {
	if a.best == nil {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	forecast, err := a.best.Predict(horizon)
	forecast.ModelName = a.Name()
	return forecast, err
}
