package decompose

import (
	"fmt"
	"math"

	"tsforecast/tserr"
)

// ChangepointConfig configures Bayesian online changepoint detection
// (Adams & MacKay, 2007): HazardRate is the prior probability of a
// changepoint at any given step (1/expected run length), and the Normal-
// Gamma prior hyperparameters (Mu0, Kappa0, Alpha0, Beta0) describe the
// expected mean/variance of a "no change" segment before any data is
// seen.
//
// original_source's table-function wrapper
// (ts_detect_changepoints_native.cpp) delegates the actual detection to an
// external FFI library not present in the retrieved sources, so this
// implementation follows the standard BOCPD algorithm directly rather
// than a specific source file.
type ChangepointConfig struct {
	HazardRate float64
	Mu0        float64
	Kappa0     float64
	Alpha0     float64
	Beta0      float64
}

// DefaultChangepointConfig assumes an expected run length of 250 points
// and a weakly informative Normal-Gamma prior.
func DefaultChangepointConfig() ChangepointConfig {
	return ChangepointConfig{HazardRate: 1.0 / 250.0, Mu0: 0, Kappa0: 1.0, Alpha0: 1.0, Beta0: 1.0}
}

type runLengthParams struct {
	mu, kappa, alpha, beta float64
}

func studentTLogPDF(x, mu float64, params runLengthParams) float64 {
	nu := 2 * params.alpha
	scale := math.Sqrt(params.beta * (params.kappa + 1) / (params.alpha * params.kappa))
	z := (x - mu) / scale
	return lgammaHalf(nu+1) - lgammaHalf(nu) - 0.5*math.Log(nu*math.Pi) - math.Log(scale) -
		(nu+1)/2*math.Log(1+z*z/nu)
}

func lgammaHalf(x float64) float64 {
	v, _ := math.Lgamma(x / 2)
	return v
}

// ChangepointThreshold is the posterior-probability cutoff Detect uses to
// derive the boolean is-changepoint flag from the continuous probability
// (spec §6 output schema: per-row is_changepoint plus changepoint_probability).
const ChangepointThreshold = 0.5

// Detect runs Bayesian online changepoint detection over values and
// returns, for each index, the posterior probability that a changepoint
// occurred at that index (index 0 is always 0, since there is no prior
// segment to change from) and a boolean flag marking probability >=
// ChangepointThreshold.
func Detect(values []float64, config ChangepointConfig) (isChangepoint []bool, probability []float64, err error) {
	n := len(values)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: Detect requires a non-empty series", tserr.ErrInvalidInput)
	}
	if config.HazardRate <= 0 || config.HazardRate >= 1 {
		return nil, nil, fmt.Errorf("%w: hazard rate must be in (0,1), got %v", tserr.ErrInvalidInput, config.HazardRate)
	}

	runLengthProbs := []float64{1.0}
	params := []runLengthParams{{mu: config.Mu0, kappa: config.Kappa0, alpha: config.Alpha0, beta: config.Beta0}}

	changepointProb := make([]float64, n)

	for t := 0; t < n; t++ {
		x := values[t]

		predLogProbs := make([]float64, len(params))
		for i, p := range params {
			predLogProbs[i] = studentTLogPDF(x, p.mu, p)
		}

		growthProbs := make([]float64, len(runLengthProbs))
		sumCP := 0.0
		for i, rp := range runLengthProbs {
			jointProb := rp * math.Exp(predLogProbs[i])
			growthProbs[i] = jointProb * (1 - config.HazardRate)
			sumCP += jointProb * config.HazardRate
		}

		newRunLengthProbs := make([]float64, len(growthProbs)+1)
		newRunLengthProbs[0] = sumCP
		copy(newRunLengthProbs[1:], growthProbs)

		total := 0.0
		for _, v := range newRunLengthProbs {
			total += v
		}
		if total > 0 {
			for i := range newRunLengthProbs {
				newRunLengthProbs[i] /= total
			}
		}

		// Posterior mass on run length 1: the current run began at t.
		changepointProb[t] = newRunLengthProbs[1]

		newParams := make([]runLengthParams, len(params)+1)
		newParams[0] = runLengthParams{mu: config.Mu0, kappa: config.Kappa0, alpha: config.Alpha0, beta: config.Beta0}
		for i, p := range params {
			kappaNew := p.kappa + 1
			muNew := (p.kappa*p.mu + x) / kappaNew
			alphaNew := p.alpha + 0.5
			betaNew := p.beta + p.kappa*(x-p.mu)*(x-p.mu)/(2*kappaNew)
			newParams[i+1] = runLengthParams{mu: muNew, kappa: kappaNew, alpha: alphaNew, beta: betaNew}
		}

		runLengthProbs = newRunLengthProbs
		params = newParams
	}

	changepointProb[0] = 0

	flags := make([]bool, n)
	for i, p := range changepointProb {
		flags[i] = p >= ChangepointThreshold
	}
	return flags, changepointProb, nil
}
