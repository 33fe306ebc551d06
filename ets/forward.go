package ets

import (
	"math"

	"tsforecast/numeric"
)

// ForwardPass holds the full trajectory of an ETS forward recursion: level
// and trend arrays of length n+1, fitted/innovation arrays of length n, and
// (when the config has a seasonal component) a seasonal-state snapshot of
// length n+1, each of size m.
type ForwardPass struct {
	Levels         []float64
	Trends         []float64
	Fitted         []float64
	Innovations    []float64
	SeasonalStates [][]float64 // nil when config has no seasonal component
	InnovationSSE  float64
	SumLogForecast float64
}

// forwardStep is the single authoritative state-update operator: both
// RunForward (below) and the checkpoint replay path
// (checkpoint.go:RecomputeFromCheckpoint) call it, so the two paths can
// never drift apart (spec §4.3, §9 Design Notes).
//
// It mutates *level, *trend, and seasonals[seasonIdx] in place and returns
// this step's fitted value and innovation.
func forwardStep(config Config, observation float64, level, trend *float64, seasonals []float64, seasonIdx int) (fitted, innovation float64) {
	hasTrend := config.HasTrend()
	hasSeason := config.HasSeason()
	errorAdditive := config.Error == ErrorAdditive
	seasonAdditive := config.Season == SeasonAdditive
	seasonMultiplicative := config.Season == SeasonMultiplicative

	base := *level
	switch config.Trend {
	case TrendAdditive:
		base += *trend
	case TrendMultiplicative:
		base *= numeric.Clamp(*trend, 0.01, 10.0)
	case TrendDampedAdditive:
		base += config.Phi * (*trend)
	case TrendDampedMultiplicative:
		base *= math.Pow(numeric.Clamp(*trend, 0.01, 10.0), config.Phi)
	}

	fitted = base
	var seasonal float64
	if hasSeason && len(seasonals) > 0 {
		seasonal = seasonals[seasonIdx]
		if seasonAdditive {
			fitted = base + seasonal
		} else if seasonMultiplicative {
			fitted = base * seasonal
		}
	}
	fitted = numeric.ClampPositive(fitted)

	if errorAdditive {
		innovation = observation - fitted
	} else {
		innovation = numeric.SafeDivide(observation, fitted) - 1.0
		innovation = numeric.Clamp(innovation, -0.999, 1e6)
	}

	newLevel := *level
	newTrend := *trend
	newSeasonal := seasonal

	if errorAdditive {
		newLevel = base + config.Alpha*innovation

		if hasTrend && config.Beta != nil {
			switch config.Trend {
			case TrendAdditive:
				newTrend = *trend + (*config.Beta)*innovation
			case TrendDampedAdditive:
				newTrend = config.Phi*(*trend) + (*config.Beta)*innovation
			}
		}

		if hasSeason && config.Gamma != nil {
			if seasonAdditive {
				newSeasonal = seasonal + (*config.Gamma)*innovation
			} else if seasonMultiplicative {
				update := 1.0 + (*config.Gamma)*numeric.SafeDivide(innovation, base)
				newSeasonal = numeric.Clamp(seasonal*update, 0.1, 10.0)
			}
		}
	} else {
		newLevel = base * (1.0 + config.Alpha*innovation)
		scale := base * innovation

		if hasTrend && config.Beta != nil {
			switch config.Trend {
			case TrendAdditive:
				newTrend = *trend + (*config.Beta)*scale
			case TrendDampedAdditive:
				newTrend = config.Phi*(*trend) + (*config.Beta)*scale
			}
		}

		if hasSeason && config.Gamma != nil {
			if seasonAdditive {
				newSeasonal = seasonal + (*config.Gamma)*scale
			} else if seasonMultiplicative {
				newSeasonal = numeric.Clamp(seasonal*(1.0+(*config.Gamma)*innovation), 0.1, 10.0)
			}
		}
	}

	*level = newLevel
	if hasTrend {
		*trend = newTrend
	}
	if hasSeason && len(seasonals) > 0 {
		seasonals[seasonIdx] = newSeasonal
	}
	return fitted, innovation
}

// RunForward executes the full forward recursion over values, given
// ETSConfig and initial (level0, trend0, seasonal0) state, and records the
// complete trajectory needed by the backward pass.
func RunForward(config Config, values []float64, level0, trend0 float64, seasonal0 []float64) ForwardPass {
	n := len(values)
	m := len(seasonal0)

	pass := ForwardPass{
		Levels:      make([]float64, 0, n+1),
		Trends:      make([]float64, 0, n+1),
		Fitted:      make([]float64, 0, n),
		Innovations: make([]float64, 0, n),
	}
	pass.Levels = append(pass.Levels, level0)
	pass.Trends = append(pass.Trends, trend0)

	hasSeason := config.HasSeason()
	if hasSeason {
		pass.SeasonalStates = make([][]float64, 0, n+1)
		pass.SeasonalStates = append(pass.SeasonalStates, append([]float64(nil), seasonal0...))
	}

	level := level0
	trend := trend0
	seasonals := append([]float64(nil), seasonal0...)
	errorAdditive := config.Error == ErrorAdditive

	for t := 0; t < n; t++ {
		seasonIdx := 0
		if m > 0 {
			seasonIdx = t % m
		}
		fitted, innovation := forwardStep(config, values[t], &level, &trend, seasonals, seasonIdx)

		pass.Fitted = append(pass.Fitted, fitted)
		pass.Innovations = append(pass.Innovations, innovation)
		pass.InnovationSSE += innovation * innovation
		if !errorAdditive {
			pass.SumLogForecast += math.Log(math.Abs(fitted))
		}

		pass.Levels = append(pass.Levels, level)
		pass.Trends = append(pass.Trends, trend)
		if hasSeason {
			pass.SeasonalStates = append(pass.SeasonalStates, append([]float64(nil), seasonals...))
		}
	}

	return pass
}
