package ets

import (
	"math"

	"tsforecast/numeric"
)

// GradientComponents holds the analytical gradients of the negative
// log-likelihood with respect to each ETS parameter and the initial
// states. Fields that don't apply to the configured model (e.g. DPhi when
// the trend isn't damped) are left at zero.
type GradientComponents struct {
	DAlpha float64
	DBeta  float64
	DGamma float64
	DPhi   float64
	DLevel float64 // d/d(level0)
	DTrend float64 // d/d(trend0)
}

// RunBackward computes GradientComponents by backpropagating through the
// ETS state-update recurrences captured in forward. The derivation follows
// original_source/anofox-time/src/optimization/ets_gradients.cpp's
// runBackward: seed d(NLL)/d(innovation_t) via the SIMD normalize
// primitive, then walk time in reverse accumulating sensitivities into
// per-step level/trend/seasonal gradients and the parameter gradients.
func RunBackward(config Config, values []float64, forward ForwardPass) GradientComponents {
	var gradients GradientComponents

	n := len(values)
	if n == 0 {
		return gradients
	}

	m := 1
	if len(forward.SeasonalStates) > 0 {
		m = len(forward.SeasonalStates[0])
	}

	hasTrend := config.HasTrend()
	hasSeason := config.HasSeason()
	errorAdditive := config.Error == ErrorAdditive
	seasonAdditive := config.Season == SeasonAdditive
	seasonMultiplicative := config.Season == SeasonMultiplicative
	damped := config.IsDampedTrend()

	sigma2 := math.Max(forward.InnovationSSE/float64(n), numeric.Epsilon)

	// Seed d(NLL)/d(innovation_t) = innovation_t / sigma2 via the SIMD
	// normalize primitive.
	dInnovations := make([]float64, n)
	numeric.Normalize(dInnovations, forward.Innovations, sigma2)

	dLevel := make([]float64, n+1)
	dTrend := make([]float64, n+1)
	var dSeasonal [][]float64
	if hasSeason && m > 0 {
		dSeasonal = make([][]float64, n+1)
		for t := 0; t <= n; t++ {
			dSeasonal[t] = make([]float64, m)
		}
	}

	for t := n - 1; t >= 0; t-- {
		innovation := forward.Innovations[t]
		fitted := forward.Fitted[t]
		level := forward.Levels[t]
		trend := forward.Trends[t]

		var seasonal float64
		seasonIdx := 0
		if hasSeason && m > 0 && t < len(forward.SeasonalStates) {
			seasonIdx = t % m
			if seasonIdx < len(forward.SeasonalStates[t]) {
				seasonal = forward.SeasonalStates[t][seasonIdx]
			}
		}

		base := level
		switch config.Trend {
		case TrendAdditive:
			base += trend
		case TrendMultiplicative:
			base *= numeric.Clamp(trend, 0.01, 10.0)
		case TrendDampedAdditive:
			base += config.Phi * trend
		case TrendDampedMultiplicative:
			base *= math.Pow(numeric.Clamp(trend, 0.01, 10.0), config.Phi)
		}

		var dInnovFitted float64
		if errorAdditive {
			dInnovFitted = -1.0
		} else {
			dInnovFitted = -values[t] / (fitted * fitted)
		}

		dFitted := dInnovations[t] * dInnovFitted
		if !errorAdditive {
			dFitted += 1.0 / fitted
		}

		dBase := dFitted
		var dSeas float64
		if hasSeason {
			if seasonAdditive {
				dSeas = dFitted
			} else if seasonMultiplicative {
				dBase = dFitted * seasonal
				dSeas = dFitted * base
			}
		}

		dLev := dBase
		var dTrd float64
		switch config.Trend {
		case TrendAdditive:
			dTrd = dBase
		case TrendDampedAdditive:
			dTrd = dBase * config.Phi
		case TrendMultiplicative:
			trendClamped := numeric.Clamp(trend, 0.01, 10.0)
			dLev = dBase * trendClamped
			dTrd = dBase * level
		case TrendDampedMultiplicative:
			trendClamped := numeric.Clamp(trend, 0.01, 10.0)
			trendPow := math.Pow(trendClamped, config.Phi)
			dLev = dBase * trendPow
			dTrd = dBase * level * config.Phi * math.Pow(trendClamped, config.Phi-1.0)
		}

		// Gradients flowing back from the next step's state.
		dLev += dLevel[t+1]
		if hasTrend {
			dTrd += dTrend[t+1]
		}
		if hasSeason && dSeasonal != nil && t+1 < len(dSeasonal) && seasonIdx < len(dSeasonal[t+1]) {
			dSeas += dSeasonal[t+1][seasonIdx]
		}

		if errorAdditive {
			gradients.DAlpha += dLevel[t+1] * innovation
			dLev += dLevel[t+1]
			dInnovations[t] += dLevel[t+1] * config.Alpha

			if hasTrend && config.Beta != nil {
				gradients.DBeta += dTrend[t+1] * innovation
				if damped {
					gradients.DPhi += dTrend[t+1] * trend
					dTrd += dTrend[t+1] * config.Phi
				}
				dInnovations[t] += dTrend[t+1] * (*config.Beta)
			}

			if hasSeason && config.Gamma != nil {
				if seasonAdditive {
					gradients.DGamma += dSeasonal[t+1][seasonIdx] * innovation
					dInnovations[t] += dSeasonal[t+1][seasonIdx] * (*config.Gamma)
				} else if seasonMultiplicative {
					updateFactor := numeric.SafeDivide(innovation, base)
					gradients.DGamma += dSeasonal[t+1][seasonIdx] * seasonal * updateFactor
					dSeas += dSeasonal[t+1][seasonIdx] * (1.0 + (*config.Gamma)*updateFactor)
				}
			}
		} else {
			scaleFactor := 1.0 + config.Alpha*innovation
			gradients.DAlpha += dLevel[t+1] * base * innovation
			dLev += dLevel[t+1] * scaleFactor
			dInnovations[t] += dLevel[t+1] * base * config.Alpha

			if hasTrend && config.Beta != nil {
				trendScale := base * innovation
				gradients.DBeta += dTrend[t+1] * trendScale
				if damped {
					gradients.DPhi += dTrend[t+1] * trend
				}
				dInnovations[t] += dTrend[t+1] * (*config.Beta) * base
			}

			if hasSeason && config.Gamma != nil && seasonMultiplicative {
				seasScale := 1.0 + (*config.Gamma)*innovation
				gradients.DGamma += dSeasonal[t+1][seasonIdx] * seasonal * innovation
				dSeas += dSeasonal[t+1][seasonIdx] * seasScale
				dInnovations[t] += dSeasonal[t+1][seasonIdx] * seasonal * (*config.Gamma)
			}
		}

		dLevel[t] = dLev
		if hasTrend {
			dTrend[t] = dTrd
		}
		if hasSeason && dSeasonal != nil && t < len(dSeasonal) && seasonIdx < len(dSeasonal[t]) {
			dSeasonal[t][seasonIdx] = dSeas
		}
	}

	gradients.DLevel = dLevel[0]
	if hasTrend {
		gradients.DTrend = dTrend[0]
	}
	return gradients
}
