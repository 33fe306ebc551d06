package eval

import (
	"fmt"
	"math"

	"tsforecast/series"
	"tsforecast/tserr"
)

// Strategy selects how the training window grows across folds.
type Strategy int

const (
	// Expanding keeps train_start at 0 and grows train_end each fold.
	Expanding Strategy = iota
	// Rolling keeps a fixed-size (or capped) training window that slides.
	Rolling
)

// FoldSpec configures rolling/expanding-window fold generation, grounded on
// CrossValidation::generateFolds in
// original_source/anofox-time/src/utils/cross_validation.cpp.
type FoldSpec struct {
	InitialWindow int
	Horizon       int
	Step          int // >= 1
	MaxWindow     int // only used by Rolling; 0 means use InitialWindow
	Strategy      Strategy
}

// Fold is one (train, test) index range, half-open [Start, End).
type Fold struct {
	ID         int
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

// GenerateFolds returns the fold index ranges for a series of length
// nSamples under spec. Mirrors the source's pos-increments-by-step loop
// exactly, including its off-by-step termination condition.
func GenerateFolds(nSamples int, spec FoldSpec) ([]Fold, error) {
	if spec.Step < 1 {
		return nil, fmt.Errorf("%w: step must be >= 1, got %d", tserr.ErrInvalidInput, spec.Step)
	}
	if nSamples < spec.InitialWindow+spec.Horizon {
		return nil, fmt.Errorf("%w: series too short for cross-validation: need at least %d points, got %d",
			tserr.ErrInsufficientData, spec.InitialWindow+spec.Horizon, nSamples)
	}

	var folds []Fold
	pos := spec.InitialWindow
	id := 0
	for pos+spec.Horizon <= nSamples {
		var trainStart, trainEnd int
		if spec.Strategy == Expanding {
			trainStart, trainEnd = 0, pos
		} else {
			windowSize := spec.InitialWindow
			if spec.MaxWindow > 0 {
				windowSize = spec.MaxWindow
				if windowSize > pos {
					windowSize = pos
				}
			}
			trainStart, trainEnd = pos-windowSize, pos
		}

		testStart := pos
		testEnd := pos + spec.Horizon
		if testEnd > nSamples {
			testEnd = nSamples
		}

		folds = append(folds, Fold{ID: id, TrainStart: trainStart, TrainEnd: trainEnd, TestStart: testStart, TestEnd: testEnd})
		id++
		pos += spec.Step
	}

	return folds, nil
}

// Forecaster is the minimal contract a model needs for cross-validation:
// fit on a training series, then produce point forecasts for a horizon.
// Defined structurally here (rather than imported) so eval has no
// dependency on the forecast package's factory/catalog.
type Forecaster interface {
	Fit(ts *series.TimeSeries) error
	Predict(horizon int) (series.Forecast, error)
}

// FoldResult holds one fold's outcome. Metrics is the zero value with NaN
// fields when the fold's fit/predict failed — a failed fold is excluded
// from aggregation but does not abort the run (spec §4.6 Failure modes).
type FoldResult struct {
	Fold      Fold
	Actuals   []float64
	Forecasts []float64
	Metrics   Metrics
	Failed    bool
	Err       error
}

// Results is the full cross-validation report: one FoldResult per fold
// plus metrics aggregated across every successful fold's forecasts.
type Results struct {
	Folds      []FoldResult
	Aggregated Metrics
}

// Evaluate runs rolling/expanding-window cross-validation over ts, calling
// newModel() to construct a fresh, unfitted model for each fold. A fold
// whose Fit or Predict fails is recorded with NaN metrics and excluded
// from the aggregate, matching the source's try/catch-and-skip semantics.
func Evaluate(ts *series.TimeSeries, newModel func() Forecaster, spec FoldSpec) (Results, error) {
	folds, err := GenerateFolds(ts.Len(), spec)
	if err != nil {
		return Results{}, err
	}
	if len(folds) == 0 {
		return Results{}, fmt.Errorf("%w: no cross-validation folds generated", tserr.ErrInsufficientData)
	}

	values := ts.Values()
	results := Results{Folds: make([]FoldResult, 0, len(folds))}

	var allActuals, allForecasts, allBaseline []float64

	for _, fold := range folds {
		trainTS, sliceErr := ts.Slice(fold.TrainStart, fold.TrainEnd)
		result := FoldResult{Fold: fold}
		if sliceErr != nil {
			result.Failed = true
			result.Err = sliceErr
			result.Metrics = nanMetrics()
			results.Folds = append(results.Folds, result)
			continue
		}

		model := newModel()
		h := fold.TestEnd - fold.TestStart
		actuals := append([]float64(nil), values[fold.TestStart:fold.TestEnd]...)

		fitErr := model.Fit(trainTS)
		if fitErr != nil {
			result.Failed = true
			result.Err = fitErr
			result.Metrics = nanMetrics()
			results.Folds = append(results.Folds, result)
			continue
		}

		forecast, predictErr := model.Predict(h)
		if predictErr != nil {
			result.Failed = true
			result.Err = predictErr
			result.Metrics = nanMetrics()
			results.Folds = append(results.Folds, result)
			continue
		}

		forecasts := forecast.Point
		if len(forecasts) > len(actuals) {
			forecasts = forecasts[:len(actuals)]
		}

		metrics, metricsErr := Compute(actuals[:len(forecasts)], forecasts)
		if metricsErr != nil {
			result.Failed = true
			result.Err = metricsErr
			result.Metrics = nanMetrics()
			results.Folds = append(results.Folds, result)
			continue
		}

		trainValues := trainTS.Values()
		baseline := make([]float64, len(forecasts))
		for i := range baseline {
			baseline[i] = trainValues[len(trainValues)-1]
		}
		if rmae, rmaeErr := RMAE(actuals[:len(forecasts)], forecasts, actuals[:len(forecasts)], baseline); rmaeErr == nil {
			metrics.RMAE = rmae
		}

		result.Actuals = actuals[:len(forecasts)]
		result.Forecasts = forecasts
		result.Metrics = metrics
		results.Folds = append(results.Folds, result)

		allActuals = append(allActuals, result.Actuals...)
		allForecasts = append(allForecasts, result.Forecasts...)
		allBaseline = append(allBaseline, baseline...)
	}

	if len(allActuals) == 0 {
		results.Aggregated = nanMetrics()
		return results, nil
	}

	aggregated, _ := Compute(allActuals, allForecasts)
	if rmae, rmaeErr := RMAE(allActuals, allForecasts, allActuals, allBaseline); rmaeErr == nil {
		aggregated.RMAE = rmae
	}
	results.Aggregated = aggregated
	return results, nil
}

func nanMetrics() Metrics {
	return Metrics{
		MAE: math.NaN(), MSE: math.NaN(), RMSE: math.NaN(), MAPE: math.NaN(),
		SMAPE: math.NaN(), RMAE: math.NaN(), Bias: math.NaN(), R2: math.NaN(),
	}
}
