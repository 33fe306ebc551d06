package ets

import (
	"math"

	"tsforecast/numeric"
)

// ComputeNLLWithGradients runs the forward pass, computes the negative
// log-likelihood, and runs the analytical backward pass to obtain its
// gradients with respect to alpha/beta/gamma/phi/level0/trend0 in one call
// — the entry point the optimizer's objective callback uses.
//
// ℓ = (n/2)*log(max(σ², ε)) + [multiplicative error only: Σ log|fitted|].
// For n == 0 it returns +Inf with zero gradients (spec §4.3 Failure modes).
func ComputeNLLWithGradients(config Config, values []float64, level0, trend0 float64, seasonal0 []float64) (float64, GradientComponents, ForwardPass) {
	n := len(values)
	if n == 0 {
		return math.Inf(1), GradientComponents{}, ForwardPass{}
	}

	forward := RunForward(config, values, level0, trend0, seasonal0)

	sigma2 := forward.InnovationSSE / float64(n)
	negLogLik := 0.5 * float64(n) * math.Log(math.Max(sigma2, numeric.Epsilon))
	if config.Error == ErrorMultiplicative {
		negLogLik += forward.SumLogForecast
	}

	gradients := RunBackward(config, values, forward)
	return negLogLik, gradients, forward
}
