package eval

import (
	"errors"
	"math"
	"testing"

	"tsforecast/series"
	"tsforecast/tserr"
)

func TestMAEandRMSE(t *testing.T) {
	actuals := []float64{1, 2, 3, 4}
	forecasts := []float64{1, 2, 4, 5}
	mae, err := MAE(actuals, forecasts)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mae-0.5) > 1e-9 {
		t.Fatalf("expected MAE 0.5, got %v", mae)
	}
	rmse, err := RMSE(actuals, forecasts)
	if err != nil {
		t.Fatal(err)
	}
	if rmse <= 0 {
		t.Fatalf("expected positive RMSE, got %v", rmse)
	}
}

func TestMAPESkipsZeroActuals(t *testing.T) {
	actuals := []float64{0, 2}
	forecasts := []float64{5, 2}
	mape, err := MAPE(actuals, forecasts)
	if err != nil {
		t.Fatal(err)
	}
	if mape != 0 {
		t.Fatalf("expected MAPE 0 (only non-zero actual is exact), got %v", mape)
	}
}

func TestMismatchedLengthFails(t *testing.T) {
	_, err := MAE([]float64{1, 2}, []float64{1})
	if !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// TestGenerateFoldsExpanding covers spec E6: expanding-window CV folds.
func TestGenerateFoldsExpanding(t *testing.T) {
	spec := FoldSpec{InitialWindow: 10, Horizon: 2, Step: 2, Strategy: Expanding}
	folds, err := GenerateFolds(20, spec)
	if err != nil {
		t.Fatal(err)
	}
	if len(folds) == 0 {
		t.Fatal("expected at least one fold")
	}
	for _, f := range folds {
		if f.TrainStart != 0 {
			t.Fatalf("expanding window must start training at 0, got %d", f.TrainStart)
		}
		if f.TrainEnd != f.TestStart {
			t.Fatalf("train must end where test begins: trainEnd=%d testStart=%d", f.TrainEnd, f.TestStart)
		}
	}
}

func TestGenerateFoldsRollingWindowSize(t *testing.T) {
	spec := FoldSpec{InitialWindow: 5, Horizon: 1, Step: 1, MaxWindow: 5, Strategy: Rolling}
	folds, err := GenerateFolds(12, spec)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range folds {
		if f.TrainEnd-f.TrainStart > 5 {
			t.Fatalf("rolling window exceeded MaxWindow: %+v", f)
		}
	}
}

func TestGenerateFoldsTooShortFails(t *testing.T) {
	_, err := GenerateFolds(5, FoldSpec{InitialWindow: 10, Horizon: 2, Step: 1})
	if !errors.Is(err, tserr.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

type constantModel struct {
	value float64
}

func (m *constantModel) Fit(ts *series.TimeSeries) error {
	values := ts.Values()
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m.value = sum / float64(len(values))
	return nil
}

func (m *constantModel) Predict(horizon int) (series.Forecast, error) {
	point := make([]float64, horizon)
	for i := range point {
		point[i] = m.value
	}
	return series.Forecast{Point: point, ModelName: "constant"}, nil
}

// TestEvaluateRunsFoldsAndAggregates covers spec E6 end to end: a
// well-formed CV run over a simple model produces per-fold and aggregated
// metrics without error.
func TestEvaluateRunsFoldsAndAggregates(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 10.0
	}
	ts, err := series.NewFromValues(values)
	if err != nil {
		t.Fatal(err)
	}

	spec := FoldSpec{InitialWindow: 10, Horizon: 2, Step: 5, Strategy: Expanding}
	results, err := Evaluate(ts, func() Forecaster { return &constantModel{} }, spec)
	if err != nil {
		t.Fatal(err)
	}
	if len(results.Folds) == 0 {
		t.Fatal("expected folds")
	}
	if math.IsNaN(results.Aggregated.MAE) {
		t.Fatal("expected a non-NaN aggregated MAE for an all-successful run")
	}
	for _, f := range results.Folds {
		if f.Failed {
			t.Fatalf("unexpected fold failure: %v", f.Err)
		}
		if f.Metrics.MAE > 1e-9 {
			t.Fatalf("constant series forecast by constant model should have ~0 MAE, got %v", f.Metrics.MAE)
		}
	}
}

type failingModel struct{}

func (m *failingModel) Fit(ts *series.TimeSeries) error { return tserr.ErrNotConverged }
func (m *failingModel) Predict(horizon int) (series.Forecast, error) {
	return series.Forecast{}, nil
}

// TestEvaluateExcludesFailedFoldsWithoutAborting covers the NaN-on-failure
// semantics: a fold whose Fit fails is recorded but does not abort the run.
func TestEvaluateExcludesFailedFoldsWithoutAborting(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i)
	}
	ts, err := series.NewFromValues(values)
	if err != nil {
		t.Fatal(err)
	}

	spec := FoldSpec{InitialWindow: 10, Horizon: 2, Step: 2, Strategy: Expanding}
	results, err := Evaluate(ts, func() Forecaster { return &failingModel{} }, spec)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range results.Folds {
		if !f.Failed {
			t.Fatal("expected every fold to fail for failingModel")
		}
	}
	if !math.IsNaN(results.Aggregated.MAE) {
		t.Fatal("expected NaN aggregated MAE when every fold failed")
	}
}

// TestIntervalCoverage covers spec E7: prediction-interval coverage.
func TestIntervalCoverage(t *testing.T) {
	actuals := []float64{1, 5, 3, 10}
	lower := []float64{0, 0, 0, 0}
	upper := []float64{2, 2, 4, 4}
	coverage, err := IntervalCoverage(actuals, lower, upper)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(coverage-0.5) > 1e-9 {
		t.Fatalf("expected coverage 0.5 (2 of 4 within bounds), got %v", coverage)
	}
}

func TestIntervalCoverageRejectsMismatchedLength(t *testing.T) {
	_, err := IntervalCoverage([]float64{1, 2}, []float64{0}, []float64{3, 3})
	if !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestQuantileLossZeroAtExactForecast(t *testing.T) {
	actuals := []float64{1, 2, 3}
	loss, err := QuantileLoss(actuals, actuals, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if loss != 0 {
		t.Fatalf("expected zero pinball loss for an exact forecast, got %v", loss)
	}
}

func TestQuantileLossRejectsTauOutOfRange(t *testing.T) {
	_, err := QuantileLoss([]float64{1}, []float64{1}, 1.5)
	if !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMASEScalesByInSampleNaiveError(t *testing.T) {
	train := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	actuals := []float64{9, 10}
	forecasts := []float64{9, 10}
	mase, err := MASE(actuals, forecasts, train, 1)
	if err != nil {
		t.Fatal(err)
	}
	if mase != 0 {
		t.Fatalf("expected MASE 0 for an exact forecast, got %v", mase)
	}
}

func TestMASERejectsShortTrainingWindow(t *testing.T) {
	_, err := MASE([]float64{1}, []float64{1}, []float64{1}, 1)
	if !errors.Is(err, tserr.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestIntervalWidthAveragesBoundGap(t *testing.T) {
	width, err := IntervalWidth([]float64{0, 1, 2}, []float64{2, 3, 2})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(width-(2.0/3.0+2.0/3.0+0)) > 1e-9 {
		t.Fatalf("expected mean width 4/3, got %v", width)
	}
}

func TestMultiQuantileLossAveragesAcrossQuantiles(t *testing.T) {
	actuals := []float64{10, 10}
	loss, err := MultiQuantileLoss(actuals, [][]float64{{10, 10}, {8, 8}}, []float64{0.5, 0.1})
	if err != nil {
		t.Fatal(err)
	}
	// first quantile forecast is exact (loss 0), second is off by 2 at tau=0.1
	want, _ := QuantileLoss(actuals, []float64{8, 8}, 0.1)
	if math.Abs(loss-want/2) > 1e-9 {
		t.Fatalf("expected averaged loss %v, got %v", want/2, loss)
	}
}

func TestMultiQuantileLossRejectsMismatchedLength(t *testing.T) {
	_, err := MultiQuantileLoss([]float64{1}, [][]float64{{1}}, []float64{0.1, 0.9})
	if !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRMAEBelowOneWhenFirstMethodIsBetter(t *testing.T) {
	actuals := []float64{10, 10, 10}
	good := []float64{10, 10, 10}
	bad := []float64{0, 0, 0}
	rmae, err := RMAE(actuals, good, actuals, bad)
	if err != nil {
		t.Fatal(err)
	}
	if rmae != 0 {
		t.Fatalf("expected RMAE 0 for a perfect method against an imperfect baseline, got %v", rmae)
	}
}

// TestEvaluateFillsInRMAEAgainstNaiveBaseline covers the wiring of RMAE
// into the cross-validation driver against a naive flat-baseline
// comparison, on a trending series where neither the model nor the
// baseline forecasts exactly.
func TestEvaluateFillsInRMAEAgainstNaiveBaseline(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	ts, err := series.NewFromValues(values)
	if err != nil {
		t.Fatal(err)
	}
	spec := FoldSpec{InitialWindow: 10, Horizon: 2, Step: 5, Strategy: Expanding}
	results, err := Evaluate(ts, func() Forecaster { return &constantModel{} }, spec)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(results.Aggregated.RMAE) {
		t.Fatal("expected a non-NaN aggregated RMAE for an all-successful run")
	}
}
