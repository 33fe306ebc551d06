package numeric

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Diagnostics summarizes a vector for logging/validation purposes only —
// never called from the hot reduction paths in simd.go, which stay
// hand-rolled per their own dispatch contract.
type Diagnostics struct {
	Sum    float64
	MaxAbs float64
}

// Summarize computes Diagnostics for values using gonum/floats, the
// general-purpose vector-ops package the hand-rolled SIMD kernels
// deliberately avoid.
func Summarize(values []float64) Diagnostics {
	if len(values) == 0 {
		return Diagnostics{}
	}
	return Diagnostics{
		Sum:    floats.Sum(values),
		MaxAbs: floats.Norm(values, math.Inf(1)),
	}
}
