// Package lbfgs implements a box-constrained limited-memory BFGS minimizer
// with a bounded number of Wolfe line-search attempts. It is the engine's
// own optimizer, not a general toolkit: the ETS gradient engine is the only
// caller, and the implementation is grounded on
// original_source/anofox-time/src/optimization/lbfgs_optimizer.cpp (a
// wrapper around LBFGS++ there; hand-rolled here because gonum/optimize's
// LBFGS has no box-projection support and no checkpoint-aware hook).
package lbfgs

import (
	"fmt"
	"math"
)

// Objective evaluates f(x) and writes its gradient into grad (grad has the
// same length as x and is overwritten in place).
type Objective func(x []float64, grad []float64) float64

// Options configures the minimizer. Zero-value Options are not usable;
// callers should start from DefaultOptions().
type Options struct {
	MaxIterations int     // iteration cap
	Memory        int     // m: number of retained curvature pairs (default 10)
	FTol          float64 // relative function-change tolerance
	GTol          float64 // gradient-norm tolerance
	Epsilon       float64 // parameter-step tolerance
	MaxLineSearch int     // bounded number of line-search attempts per iteration
	Wolfe         float64 // Wolfe curvature condition constant (c2)
}

// DefaultOptions mirrors the teacher's original LBFGSOptimizer::Options
// defaults (max_iterations=200, epsilon=1e-6, m=10, ftol=1e-6, gtol=1e-5).
func DefaultOptions() Options {
	return Options{
		MaxIterations: 200,
		Memory:        10,
		FTol:          1e-6,
		GTol:          1e-5,
		Epsilon:       1e-6,
		MaxLineSearch: 20,
		Wolfe:         0.9,
	}
}

// Result carries the optimizer's outcome. X is always projected onto
// [Lower, Upper] even on non-convergence.
type Result struct {
	X          []float64
	Fx         float64
	Iterations int
	Converged  bool
	Message    string
}

// curvaturePair is one (s, y) correction pair retained by the two-loop
// recursion, along with rho = 1/(y.s).
type curvaturePair struct {
	s, y []float64
	rho  float64
}

// Minimize minimizes objective over x subject to lower <= x <= upper,
// starting from x0. It always returns a feasible x: the initial point is
// projected onto the box before the first evaluation, and the final
// iterate is projected again before return.
func Minimize(objective Objective, x0, lower, upper []float64, opts Options) (Result, error) {
	n := len(x0)
	if len(lower) != n || len(upper) != n {
		return Result{}, fmt.Errorf("lbfgs: x0, lower, upper must have equal length (got %d, %d, %d)", n, len(lower), len(upper))
	}
	if n == 0 {
		return Result{X: nil, Fx: 0, Iterations: 0, Converged: true, Message: "empty problem"}, nil
	}

	x := append([]float64(nil), x0...)
	projectBounds(x, lower, upper)

	grad := make([]float64, n)
	fx := objective(x, grad)

	if math.IsNaN(fx) {
		projectBounds(x, lower, upper)
		return Result{X: x, Fx: fx, Iterations: 0, Converged: false, Message: "objective is NaN at initial point"}, nil
	}

	pairs := make([]curvaturePair, 0, opts.Memory)

	converged := false
	message := "maximum iterations reached"
	iter := 0

	for ; iter < opts.MaxIterations; iter++ {
		projectedGrad := projectedGradient(x, grad, lower, upper)
		if gradNorm(projectedGrad) < opts.GTol {
			converged = true
			message = "gradient norm below tolerance"
			break
		}

		direction := twoLoopRecursion(pairs, grad)
		// Ensure descent; if the two-loop recursion produced an ascent
		// direction (can happen transiently with box projection), fall
		// back to steepest descent for this iteration.
		if dotProduct(direction, grad) > 0 {
			for i := range direction {
				direction[i] = -grad[i]
			}
		}

		step, newX, newFx, newGrad, lsOK := lineSearch(objective, x, fx, grad, direction, lower, upper, opts)
		if !lsOK {
			converged = false
			message = "line search failed to find an acceptable step"
			break
		}

		relChange := math.Abs(newFx-fx) / math.Max(1.0, math.Abs(fx))

		s := make([]float64, n)
		y := make([]float64, n)
		var sNorm float64
		for i := 0; i < n; i++ {
			s[i] = newX[i] - x[i]
			y[i] = newGrad[i] - grad[i]
			sNorm += s[i] * s[i]
		}
		sNorm = math.Sqrt(sNorm)

		ys := dotProduct(y, s)
		if ys > 1e-10 {
			pair := curvaturePair{s: s, y: y, rho: 1.0 / ys}
			if len(pairs) == opts.Memory {
				pairs = pairs[1:]
			}
			pairs = append(pairs, pair)
		}

		x, fx, grad = newX, newFx, newGrad

		if relChange < opts.FTol {
			converged = true
			message = "function change below tolerance"
			break
		}
		if sNorm < opts.Epsilon && step > 0 {
			converged = true
			message = "parameter step below tolerance"
			break
		}
	}

	if math.IsNaN(fx) {
		converged = false
		message = "objective became NaN"
	}

	projectBounds(x, lower, upper)
	return Result{X: x, Fx: fx, Iterations: iter, Converged: converged, Message: message}, nil
}

// projectBounds clamps x onto [lower, upper] componentwise, in place.
func projectBounds(x, lower, upper []float64) {
	for i := range x {
		if x[i] < lower[i] {
			x[i] = lower[i]
		} else if x[i] > upper[i] {
			x[i] = upper[i]
		}
	}
}

// projectedGradient zeroes gradient components that would push the iterate
// outside the box: a positive gradient at the lower bound (a descent step
// would push x below it) and a negative gradient at the upper bound (a
// descent step would push x above it), mirroring atBoundary in the source.
func projectedGradient(x, grad, lower, upper []float64) []float64 {
	const boundaryTol = 1e-6
	pg := append([]float64(nil), grad...)
	for i := range x {
		atLower := math.Abs(x[i]-lower[i]) < boundaryTol
		atUpper := math.Abs(x[i]-upper[i]) < boundaryTol
		if atLower && grad[i] > 0 {
			pg[i] = 0
		}
		if atUpper && grad[i] < 0 {
			pg[i] = 0
		}
	}
	return pg
}

func gradNorm(g []float64) float64 {
	var sum float64
	for _, v := range g {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func dotProduct(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// twoLoopRecursion computes the L-BFGS search direction -H*grad using the
// standard two-loop recursion over the retained curvature pairs.
func twoLoopRecursion(pairs []curvaturePair, grad []float64) []float64 {
	n := len(grad)
	q := append([]float64(nil), grad...)

	m := len(pairs)
	alpha := make([]float64, m)

	for i := m - 1; i >= 0; i-- {
		p := pairs[i]
		alpha[i] = p.rho * dotProduct(p.s, q)
		for j := 0; j < n; j++ {
			q[j] -= alpha[i] * p.y[j]
		}
	}

	gamma := 1.0
	if m > 0 {
		last := pairs[m-1]
		ys := dotProduct(last.y, last.s)
		yy := dotProduct(last.y, last.y)
		if yy > 1e-12 {
			gamma = ys / yy
		}
	}
	for j := 0; j < n; j++ {
		q[j] *= gamma
	}

	for i := 0; i < m; i++ {
		p := pairs[i]
		beta := p.rho * dotProduct(p.y, q)
		for j := 0; j < n; j++ {
			q[j] += p.s[j] * (alpha[i] - beta)
		}
	}

	direction := q
	for i := range direction {
		direction[i] = -direction[i]
	}
	return direction
}
