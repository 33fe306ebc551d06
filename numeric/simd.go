package numeric

import (
	"runtime"
	"sync"
)

// wideLanes is the width of the unrolled accumulation used by the "wide"
// code path below. Real SIMD would pick this from the detected vector
// width (4 lanes for AVX2 float64); we keep the same lane count so the
// reduction order — and therefore the floating-point rounding behavior —
// matches what a vectorized build would produce.
const wideLanes = 4

var (
	dispatchOnce sync.Once
	wideEnabled  bool
)

// simdAvailable reports whether the wide (lane-unrolled) reduction path
// should be used on this process. The decision is made exactly once per
// process via a one-shot latch and never re-evaluated inside a hot loop
// (§9 Design Notes — "decide once per process which code path to use").
func simdAvailable() bool {
	dispatchOnce.Do(func() {
		// A real dispatcher would probe CPUID (AVX2 et al.); Go's portable
		// runtime doesn't expose that without cgo or an assembly shim, so
		// the detection here is architecture-based: amd64/arm64 builds get
		// the wide path, everything else (e.g. wasm) falls back to scalar.
		switch runtime.GOARCH {
		case "amd64", "arm64":
			wideEnabled = true
		default:
			wideEnabled = false
		}
	})
	return wideEnabled
}

// Accumulate computes out[i] += scale*in[i] for all i, dispatching to the
// wide or scalar path once per process.
func Accumulate(out, in []float64, scale float64) {
	n := len(out)
	if len(in) < n {
		n = len(in)
	}
	if simdAvailable() {
		accumulateWide(out, in, scale, n)
		return
	}
	accumulateScalar(out, in, scale, n)
}

func accumulateScalar(out, in []float64, scale float64, n int) {
	for i := 0; i < n; i++ {
		out[i] += scale * in[i]
	}
}

func accumulateWide(out, in []float64, scale float64, n int) {
	i := 0
	for ; i+wideLanes <= n; i += wideLanes {
		out[i] += scale * in[i]
		out[i+1] += scale * in[i+1]
		out[i+2] += scale * in[i+2]
		out[i+3] += scale * in[i+3]
	}
	for ; i < n; i++ {
		out[i] += scale * in[i]
	}
}

// Normalize computes out[i] = in[i] / sigma2 for all i.
func Normalize(out, in []float64, sigma2 float64) {
	n := len(out)
	if len(in) < n {
		n = len(in)
	}
	if simdAvailable() {
		normalizeWide(out, in, sigma2, n)
		return
	}
	normalizeScalar(out, in, sigma2, n)
}

func normalizeScalar(out, in []float64, sigma2 float64, n int) {
	for i := 0; i < n; i++ {
		out[i] = in[i] / sigma2
	}
}

func normalizeWide(out, in []float64, sigma2 float64, n int) {
	i := 0
	for ; i+wideLanes <= n; i += wideLanes {
		out[i] = in[i] / sigma2
		out[i+1] = in[i+1] / sigma2
		out[i+2] = in[i+2] / sigma2
		out[i+3] = in[i+3] / sigma2
	}
	for ; i < n; i++ {
		out[i] = in[i] / sigma2
	}
}

// Dot computes the dot product sum(a[i]*b[i]). The wide path accumulates
// into wideLanes independent partial sums and combines them at the end,
// which is the source of the permitted floating-point reordering: results
// from the wide and scalar paths are equal only up to the rearrangement
// associativity allows within a lane, not bit-identical in general.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if simdAvailable() {
		return dotWide(a, b, n)
	}
	return dotScalar(a, b, n)
}

func dotScalar(a, b []float64, n int) float64 {
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func dotWide(a, b []float64, n int) float64 {
	var acc [wideLanes]float64
	i := 0
	for ; i+wideLanes <= n; i += wideLanes {
		acc[0] += a[i] * b[i]
		acc[1] += a[i+1] * b[i+1]
		acc[2] += a[i+2] * b[i+2]
		acc[3] += a[i+3] * b[i+3]
	}
	sum := acc[0] + acc[1] + acc[2] + acc[3]
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
