// Package series holds the cross-cutting data types the forecasting engine
// passes between components: the immutable TimeSeries input and the
// Forecast result bundle (spec §3).
package series

import (
	"fmt"
	"math"

	"tsforecast/tserr"
)

// TimeSeries is an ordered sequence of (timestamp, value) pairs with
// strictly increasing timestamps and finite values. It is constructed only
// through Builder, which validates those invariants, and is immutable
// thereafter.
type TimeSeries struct {
	timestamps []float64 // microsecond instants, or integer indices as float64
	values     []float64
	integer    bool // true when timestamps are integer indices rather than wall-clock instants
}

// Len returns the number of observations.
func (ts *TimeSeries) Len() int { return len(ts.values) }

// Values returns the observed values. The returned slice must not be
// mutated by callers.
func (ts *TimeSeries) Values() []float64 { return ts.values }

// Timestamps returns the timestamp axis. The returned slice must not be
// mutated by callers.
func (ts *TimeSeries) Timestamps() []float64 { return ts.timestamps }

// IsIntegerIndexed reports whether the timestamp axis holds integer indices
// rather than microsecond wall-clock instants.
func (ts *TimeSeries) IsIntegerIndexed() bool { return ts.integer }

// Slice returns the sub-series [start, end) sharing no backing storage with
// the receiver (the result is itself a valid, independent TimeSeries).
func (ts *TimeSeries) Slice(start, end int) (*TimeSeries, error) {
	if start < 0 || end > ts.Len() || start > end {
		return nil, fmt.Errorf("%w: slice range [%d,%d) out of bounds for length %d", tserr.ErrInvalidInput, start, end, ts.Len())
	}
	return &TimeSeries{
		timestamps: append([]float64(nil), ts.timestamps[start:end]...),
		values:     append([]float64(nil), ts.values[start:end]...),
		integer:    ts.integer,
	}, nil
}

// Builder validates and constructs a TimeSeries. It is the only way to
// obtain one.
type Builder struct {
	timestamps []float64
	values     []float64
	integer    bool
}

// NewBuilder starts an empty builder. integerIndexed selects whether the
// timestamp axis is treated as integer indices (true) or microsecond
// instants (false).
func NewBuilder(integerIndexed bool) *Builder {
	return &Builder{integer: integerIndexed}
}

// Append adds one (timestamp, value) observation.
func (b *Builder) Append(timestamp, value float64) *Builder {
	b.timestamps = append(b.timestamps, timestamp)
	b.values = append(b.values, value)
	return b
}

// Build validates the accumulated invariants (strictly increasing
// timestamps, no duplicates, all-finite values, equal lengths) and returns
// an immutable TimeSeries.
func (b *Builder) Build() (*TimeSeries, error) {
	n := len(b.values)
	if n != len(b.timestamps) {
		return nil, fmt.Errorf("%w: %d values but %d timestamps", tserr.ErrInvalidInput, n, len(b.timestamps))
	}
	for i, v := range b.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: value at index %d is not finite", tserr.ErrInvalidInput, i)
		}
	}
	for i := 1; i < n; i++ {
		if b.timestamps[i] <= b.timestamps[i-1] {
			return nil, fmt.Errorf("%w: timestamps must be strictly increasing (index %d: %v <= %v)",
				tserr.ErrInvalidInput, i, b.timestamps[i], b.timestamps[i-1])
		}
	}
	return &TimeSeries{
		timestamps: append([]float64(nil), b.timestamps...),
		values:     append([]float64(nil), b.values...),
		integer:    b.integer,
	}, nil
}

// NewFromValues builds an integer-indexed TimeSeries from values alone,
// using 0..n-1 as the timestamp axis. This is the common case for models
// that only need the value vector (most of the forecaster catalog).
func NewFromValues(values []float64) (*TimeSeries, error) {
	b := NewBuilder(true)
	for i, v := range values {
		b.Append(float64(i), v)
	}
	return b.Build()
}
