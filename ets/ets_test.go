package ets

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func syntheticSeries(n int) []float64 {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 10.0 + 0.05*float64(i) + 2.0*math.Sin(2*math.Pi*float64(i)/12.0)
	}
	return values
}

func floatPtr(v float64) *float64 { return &v }

// TestForwardBackwardGradientMatchesFiniteDifference checks the analytical
// gradient from RunBackward against a central finite-difference estimate of
// the NLL surface, across five (error, trend, season) combinations (ANN,
// AAN, AAdN, AAA, MAM), to 1e-4 relative tolerance (spec §8 property #11).
func TestForwardBackwardGradientMatchesFiniteDifference(t *testing.T) {
	values := syntheticSeries(48)
	m := 12
	seasonal0 := make([]float64, m)
	for i := range seasonal0 {
		seasonal0[i] = 1.0
	}

	configs := []Config{
		{Error: ErrorAdditive, Trend: TrendNone, Season: SeasonNone, M: 1, Alpha: 0.3},
		{Error: ErrorAdditive, Trend: TrendAdditive, Season: SeasonNone, M: 1, Alpha: 0.3, Beta: floatPtr(0.1)},
		{Error: ErrorAdditive, Trend: TrendDampedAdditive, Season: SeasonNone, M: 1, Alpha: 0.3, Beta: floatPtr(0.1), Phi: 0.9},
		{Error: ErrorAdditive, Trend: TrendAdditive, Season: SeasonAdditive, M: m, Alpha: 0.3, Beta: floatPtr(0.1), Gamma: floatPtr(0.1)},
		{Error: ErrorMultiplicative, Trend: TrendAdditive, Season: SeasonMultiplicative, M: m, Alpha: 0.3, Beta: floatPtr(0.1), Gamma: floatPtr(0.1)},
	}

	const h = 1e-5
	level0 := values[0]
	trend0 := 0.0

	for _, config := range configs {
		seasonal := seasonal0
		if !config.HasSeason() {
			seasonal = nil
		}

		nll, gradients, _ := ComputeNLLWithGradients(config, values, level0, trend0, seasonal)
		if math.IsInf(nll, 1) {
			t.Fatalf("config %+v: NLL is +Inf", config)
		}

		checkParam := func(name string, get func(Config) float64, set func(*Config, float64), analytical float64) {
			plus := config
			set(&plus, get(config)+h)
			minus := config
			set(&minus, get(config)-h)

			nllPlus, _, _ := ComputeNLLWithGradients(plus, values, level0, trend0, seasonal)
			nllMinus, _, _ := ComputeNLLWithGradients(minus, values, level0, trend0, seasonal)
			numerical := (nllPlus - nllMinus) / (2 * h)

			denom := math.Max(1.0, math.Abs(numerical))
			if !almostEqual(analytical, numerical, 1e-4*denom+1e-4) {
				t.Errorf("config %+v: %s gradient mismatch: analytical=%v numerical=%v", config, name, analytical, numerical)
			}
		}

		checkParam("alpha", func(c Config) float64 { return c.Alpha }, func(c *Config, v float64) { c.Alpha = v }, gradients.DAlpha)

		if config.HasTrend() {
			checkParam("beta", func(c Config) float64 { return *c.Beta }, func(c *Config, v float64) { c.Beta = floatPtr(v) }, gradients.DBeta)
		}
		if config.HasSeason() {
			checkParam("gamma", func(c Config) float64 { return *c.Gamma }, func(c *Config, v float64) { c.Gamma = floatPtr(v) }, gradients.DGamma)
		}
		if config.IsDampedTrend() {
			checkParam("phi", func(c Config) float64 { return c.Phi }, func(c *Config, v float64) { c.Phi = v }, gradients.DPhi)
		}
	}
}

// TestCheckpointRecomputeMatchesForwardPass verifies that
// RecomputeFromCheckpoint reproduces the exact state that the
// non-checkpointed RunForward trajectory recorded at the same timestep,
// for a series long enough to engage checkpointing (spec §8 property #2).
func TestCheckpointRecomputeMatchesForwardPass(t *testing.T) {
	n := 240
	values := syntheticSeries(n)
	m := 12
	seasonal0 := make([]float64, m)
	for i := range seasonal0 {
		seasonal0[i] = 1.0
	}

	config := Config{
		Error: ErrorAdditive, Trend: TrendAdditive, Season: SeasonAdditive, M: m,
		Alpha: 0.3, Beta: floatPtr(0.1), Gamma: floatPtr(0.1),
	}
	level0 := values[0]
	trend0 := 0.1

	forward := RunForward(config, values, level0, trend0, seasonal0)

	checkpointConfig := DefaultCheckpointConfig()
	if !ShouldUseCheckpointing(n, checkpointConfig) {
		t.Fatalf("expected checkpointing to engage for n=%d", n)
	}
	checkpoints := CreateCheckpoints(config, values, level0, trend0, seasonal0, checkpointConfig)

	for _, target := range []int{0, 1, 37, 49, 50, 51, 113, 200, n} {
		got := RecomputeFromCheckpoint(checkpoints, config, values, target)
		if !almostEqual(got.Level, forward.Levels[target], 1e-9) {
			t.Errorf("t=%d: level mismatch: checkpoint=%v forward=%v", target, got.Level, forward.Levels[target])
		}
		if !almostEqual(got.Trend, forward.Trends[target], 1e-9) {
			t.Errorf("t=%d: trend mismatch: checkpoint=%v forward=%v", target, got.Trend, forward.Trends[target])
		}
		for i, s := range got.Seasonals {
			if !almostEqual(s, forward.SeasonalStates[target][i], 1e-9) {
				t.Errorf("t=%d: seasonal[%d] mismatch: checkpoint=%v forward=%v", target, i, s, forward.SeasonalStates[target][i])
			}
		}
	}
}

func TestConfigValidateRejectsBadAlpha(t *testing.T) {
	config := Config{Error: ErrorAdditive, Trend: TrendNone, Season: SeasonNone, M: 1, Alpha: 0}
	if err := config.Validate(); err == nil {
		t.Fatal("expected error for alpha=0")
	}
}

func TestConfigValidateRequiresBetaWithTrend(t *testing.T) {
	config := Config{Error: ErrorAdditive, Trend: TrendAdditive, Season: SeasonNone, M: 1, Alpha: 0.3}
	if err := config.Validate(); err == nil {
		t.Fatal("expected error for missing beta")
	}
}

func TestComputeNLLEmptySeriesReturnsInf(t *testing.T) {
	config := Config{Error: ErrorAdditive, Trend: TrendNone, Season: SeasonNone, M: 1, Alpha: 0.3}
	nll, gradients, _ := ComputeNLLWithGradients(config, nil, 0, 0, nil)
	if !math.IsInf(nll, 1) {
		t.Fatalf("expected +Inf NLL for empty series, got %v", nll)
	}
	if gradients != (GradientComponents{}) {
		t.Fatalf("expected zero gradients for empty series, got %+v", gradients)
	}
}
