package lbfgs

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestMinimizeQuadraticUnconstrained checks convergence to the minimum of a
// simple convex quadratic f(x) = (x0-3)^2 + (x1+2)^2 with loose bounds.
func TestMinimizeQuadraticUnconstrained(t *testing.T) {
	objective := func(x, grad []float64) float64 {
		d0 := x[0] - 3
		d1 := x[1] + 2
		grad[0] = 2 * d0
		grad[1] = 2 * d1
		return d0*d0 + d1*d1
	}

	x0 := []float64{0, 0}
	lower := []float64{-100, -100}
	upper := []float64{100, 100}

	res, err := Minimize(objective, x0, lower, upper, DefaultOptions())
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if !res.Converged {
		t.Fatalf("Minimize did not converge: %s", res.Message)
	}
	if !almostEqual(res.X[0], 3, 1e-3) || !almostEqual(res.X[1], -2, 1e-3) {
		t.Errorf("X = %v, want close to [3, -2]", res.X)
	}
}

// TestMinimizeRespectsBoxConstraint checks that a minimum outside the box is
// clipped to the boundary.
func TestMinimizeRespectsBoxConstraint(t *testing.T) {
	objective := func(x, grad []float64) float64 {
		d := x[0] - 10
		grad[0] = 2 * d
		return d * d
	}

	res, err := Minimize(objective, []float64{0}, []float64{-1}, []float64{1}, DefaultOptions())
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if !almostEqual(res.X[0], 1.0, 1e-2) {
		t.Errorf("X[0] = %v, want close to 1.0 (box boundary)", res.X[0])
	}
	for _, v := range res.X {
		if v < -1 || v > 1 {
			t.Fatalf("X out of bounds: %v", res.X)
		}
	}
}

func TestMinimizeAlwaysReturnsFeasiblePoint(t *testing.T) {
	objective := func(x, grad []float64) float64 {
		grad[0] = math.NaN()
		return math.NaN()
	}
	res, err := Minimize(objective, []float64{0.5}, []float64{0}, []float64{1}, DefaultOptions())
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if res.Converged {
		t.Errorf("expected non-convergence on NaN objective")
	}
	if res.X[0] < 0 || res.X[0] > 1 {
		t.Fatalf("X out of bounds on NaN objective: %v", res.X)
	}
}

func TestMinimizeEmptyProblem(t *testing.T) {
	res, err := Minimize(func(x, g []float64) float64 { return 0 }, nil, nil, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if !res.Converged {
		t.Errorf("empty problem should be trivially converged")
	}
}
