// Package forecast provides the Forecaster abstraction, a name-override
// wrapper, and a factory over the full model catalog (spec §5). Grounded on
// the IForecaster interface implied by
// original_source/anofox-time/src/models/method_name_wrapper.cpp and on
// original_source/src/model_factory.cpp's name-to-constructor dispatch.
package forecast

import (
	"tsforecast/series"
)

// Forecaster is implemented by every model in the catalog: fit consumes a
// training series, Predict produces a horizon-length forecast, and Name
// reports the model's identity for logging and CV reporting.
type Forecaster interface {
	Fit(ts *series.TimeSeries) error
	Predict(horizon int) (series.Forecast, error)
	Name() string
}
