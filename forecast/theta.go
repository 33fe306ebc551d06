package forecast

import (
	"fmt"

	"tsforecast/regression"
	"tsforecast/series"
	"tsforecast/tserr"
)

// Theta combines an OLS linear trend line (the theta=0 line) with a simple
// exponential smoothing forecast of the observed series and averages their
// extrapolations with equal weights. The SES smoothing parameter is always
// optimized through the shared ETSModel machinery, so every Theta variant
// in the catalog behaves like "OptimizedTheta".
type Theta struct {
	trendSlope     float64
	trendIntercept float64
	ses            *ETSModel
	n              int
	fitted         bool
}

func NewTheta() *Theta { return &Theta{} }

func (t *Theta) Name() string { return "Theta" }

func (t *Theta) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	if len(values) < 4 {
		return fmt.Errorf("%w: Theta requires at least 4 observations, got %d", tserr.ErrInsufficientData, len(values))
	}

	slope, intercept, err := regression.FitLinearTrend(values)
	if err != nil {
		return fmt.Errorf("%w: Theta trend-line fit failed: %v", tserr.ErrNumericFailure, err)
	}

	ses := NewSES()
	if err := ses.Fit(ts); err != nil {
		return fmt.Errorf("Theta: SES component failed to fit: %w", err)
	}

	t.trendSlope = slope
	t.trendIntercept = intercept
	t.ses = ses
	t.n = len(values)
	t.fitted = true
	return nil
}

func (t *Theta) Predict(horizon int) (series.Forecast, error) {
	if !t.fitted {
		return series.Forecast{}, tserr.ErrNotFitted
	}
	if horizon < 1 {
		return series.Forecast{}, fmt.Errorf("%w: horizon must be >= 1", tserr.ErrInvalidInput)
	}

	sesForecast, err := t.ses.Predict(horizon)
	if err != nil {
		return series.Forecast{}, err
	}

	point := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		trendLine := t.trendIntercept + t.trendSlope*float64(t.n+h-1)
		point[h-1] = 0.5*trendLine + 0.5*sesForecast.Point[h-1]
	}

	return series.Forecast{Point: point, ModelName: t.Name()}, nil
}

// DynamicTheta re-estimates the trend-line combination weight implicitly
// by re-fitting both theta-lines on the full history every time Fit is
// called; functionally identical to Theta in this implementation since
// both components are already refit from scratch, but kept as a distinct
// catalog entry to match the model names the factory exposes.
type DynamicTheta struct{ Theta }

func NewDynamicTheta() *DynamicTheta {
	d := &DynamicTheta{}
	d.Theta = Theta{}
	return d
}

func (d *DynamicTheta) Name() string { return "DynamicTheta" }

func (d *DynamicTheta) Predict(horizon int) (series.Forecast, error) {
	forecast, err := d.Theta.Predict(horizon)
	forecast.ModelName = d.Name()
	return forecast, err
}
