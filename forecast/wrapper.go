package forecast

import (
	"fmt"

	"tsforecast/series"
	"tsforecast/tserr"
)

// NameWrapper wraps a Forecaster and reports a custom name from Name()
// while delegating Fit and Predict unchanged. Grounded on
// original_source/anofox-time/src/models/method_name_wrapper.cpp's
// MethodNameWrapper, which exists so a caller can register the same
// underlying model under several display names (e.g. a tuned preset).
type NameWrapper struct {
	wrapped    Forecaster
	customName string
}

// NewNameWrapper constructs a NameWrapper. Both wrapped and customName are
// required, matching the source constructor's validation.
func NewNameWrapper(wrapped Forecaster, customName string) (*NameWrapper, error) {
	if wrapped == nil {
		return nil, fmt.Errorf("%w: wrapped model cannot be nil", tserr.ErrInvalidInput)
	}
	if customName == "" {
		return nil, fmt.Errorf("%w: custom name cannot be empty", tserr.ErrInvalidInput)
	}
	return &NameWrapper{wrapped: wrapped, customName: customName}, nil
}

func (w *NameWrapper) Fit(ts *series.TimeSeries) error { return w.wrapped.Fit(ts) }

func (w *NameWrapper) Predict(horizon int) (series.Forecast, error) {
	forecast, err := w.wrapped.Predict(horizon)
	if err == nil {
		forecast.ModelName = w.customName
	}
	return forecast, err
}

func (w *NameWrapper) Name() string { return w.customName }

// Wrapped returns the underlying model, letting a caller inspect it without
// going through the custom-name facade.
func (w *NameWrapper) Wrapped() Forecaster { return w.wrapped }
