package lbfgs

import "math"

// lineSearch performs a backtracking line search satisfying an
// Armijo-Wolfe-style criterion, projecting each trial point onto the box.
// It returns the accepted step length, the resulting point/value/gradient,
// and whether an acceptable step was found within opts.MaxLineSearch tries.
func lineSearch(
	objective Objective,
	x []float64,
	fx float64,
	grad []float64,
	direction []float64,
	lower, upper []float64,
	opts Options,
) (step float64, newX []float64, newFx float64, newGrad []float64, ok bool) {
	const c1 = 1e-4 // Armijo sufficient-decrease constant
	c2 := opts.Wolfe
	if c2 <= c1 || c2 >= 1 {
		c2 = 0.9
	}

	n := len(x)
	dirGrad := dotProduct(direction, grad)
	if dirGrad >= 0 {
		return 0, nil, 0, nil, false
	}

	step = 1.0
	trial := make([]float64, n)
	trialGrad := make([]float64, n)

	for attempt := 0; attempt < opts.MaxLineSearch; attempt++ {
		for i := 0; i < n; i++ {
			trial[i] = x[i] + step*direction[i]
		}
		projectBounds(trial, lower, upper)

		trialFx := objective(trial, trialGrad)
		if math.IsNaN(trialFx) {
			step *= 0.5
			continue
		}

		armijoOK := trialFx <= fx+c1*step*dirGrad
		curvature := dotProduct(direction, trialGrad)
		wolfeOK := curvature >= c2*dirGrad

		if armijoOK && wolfeOK {
			return step, append([]float64(nil), trial...), trialFx, append([]float64(nil), trialGrad...), true
		}

		if !armijoOK {
			step *= 0.5
		} else {
			// Sufficient decrease satisfied but curvature condition isn't:
			// extend the step, bounded so it can't run away.
			step = math.Min(step*2.0, 1e3)
		}
	}

	// Out of attempts: evaluate the final step length once more and accept
	// that point if it decreased the objective (without the Armijo or
	// curvature checks); otherwise report failure so the caller can flag
	// non-convergence.
	for i := 0; i < n; i++ {
		trial[i] = x[i] + step*direction[i]
	}
	projectBounds(trial, lower, upper)
	trialFx := objective(trial, trialGrad)
	if !math.IsNaN(trialFx) && trialFx < fx {
		return step, append([]float64(nil), trial...), trialFx, append([]float64(nil), trialGrad...), true
	}
	return 0, nil, 0, nil, false
}
