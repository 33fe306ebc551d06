package numeric

import (
	"errors"
	"math"
	"testing"

	"tsforecast/tserr"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestMedianOdd(t *testing.T) {
	got, err := Median([]float64{5, 1, 3})
	if err != nil {
		t.Fatalf("Median returned error: %v", err)
	}
	if !almostEqual(got, 3, 1e-9) {
		t.Errorf("Median = %v, want 3", got)
	}
}

func TestMedianEven(t *testing.T) {
	// E5 — Median even count
	got, err := Median([]float64{3, 1, 4, 2})
	if err != nil {
		t.Fatalf("Median returned error: %v", err)
	}
	if !almostEqual(got, 2.5, 1e-9) {
		t.Errorf("Median = %v, want 2.5", got)
	}
}

func TestMedianEmptyFails(t *testing.T) {
	_, err := Median(nil)
	if !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("Median(empty) error = %v, want ErrInvalidInput", err)
	}
}

func TestSiegelOnCleanLine(t *testing.T) {
	// E4 — Siegel on clean line
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{3, 5, 7, 9, 11}
	slope, intercept, err := SiegelRepeatedMedians(x, y)
	if err != nil {
		t.Fatalf("SiegelRepeatedMedians returned error: %v", err)
	}
	if !almostEqual(slope, 2.0, 0.2) {
		t.Errorf("slope = %v, want within 0.2 of 2.0", slope)
	}
	if !almostEqual(intercept, 1.0, 0.2) {
		t.Errorf("intercept = %v, want within 0.2 of 1.0", intercept)
	}
}

func TestSiegelResistsOutlier(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	y := []float64{2, 4, 6, 8, 10, 12, 1000} // last point is a gross outlier
	slope, _, err := SiegelRepeatedMedians(x, y)
	if err != nil {
		t.Fatalf("SiegelRepeatedMedians returned error: %v", err)
	}
	if !almostEqual(slope, 2.0, 0.5) {
		t.Errorf("slope = %v, want within 0.5 of 2.0 despite outlier", slope)
	}
}

func TestSiegelTooFewPointsFails(t *testing.T) {
	_, _, err := SiegelRepeatedMedians([]float64{1}, []float64{1})
	if !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestSiegelMismatchedLengthsFails(t *testing.T) {
	_, _, err := SiegelRepeatedMedians([]float64{1, 2}, []float64{1, 2, 3})
	if !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestDotMatchesScalarWithinTolerance(t *testing.T) {
	n := 1000
	a := make([]float64, n)
	b := make([]float64, n)
	for i := range a {
		a[i] = math.Sin(float64(i) * 0.01)
		b[i] = math.Cos(float64(i) * 0.017)
	}
	scalar := dotScalar(a, b, n)
	wide := dotWide(a, b, n)
	rel := math.Abs(wide-scalar) / math.Max(1, math.Abs(scalar))
	if rel > 1e-12 {
		t.Errorf("wide/scalar dot mismatch: wide=%v scalar=%v rel=%v", wide, scalar, rel)
	}
}

func TestAccumulate(t *testing.T) {
	out := []float64{1, 1, 1, 1, 1}
	in := []float64{1, 2, 3, 4, 5}
	Accumulate(out, in, 2.0)
	want := []float64{3, 5, 7, 9, 11}
	for i := range out {
		if !almostEqual(out[i], want[i], 1e-12) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestNormalize(t *testing.T) {
	out := make([]float64, 4)
	in := []float64{2, 4, 6, 8}
	Normalize(out, in, 2.0)
	want := []float64{1, 2, 3, 4}
	for i := range out {
		if !almostEqual(out[i], want[i], 1e-12) {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSafeDivideAvoidsNaN(t *testing.T) {
	got := SafeDivide(1.0, 0.0)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("SafeDivide(1,0) = %v, want finite", got)
	}
}

func TestClampPositive(t *testing.T) {
	if ClampPositive(-5) != PositiveFloor {
		t.Errorf("ClampPositive(-5) = %v, want %v", ClampPositive(-5), PositiveFloor)
	}
	if ClampPositive(5) != 5 {
		t.Errorf("ClampPositive(5) = %v, want 5", ClampPositive(5))
	}
}
