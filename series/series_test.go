package series

import (
	"errors"
	"math"
	"testing"

	"tsforecast/tserr"
)

func TestBuilderRejectsNonIncreasingTimestamps(t *testing.T) {
	b := NewBuilder(true).Append(0, 1).Append(0, 2)
	if _, err := b.Build(); !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestBuilderRejectsNonFiniteValue(t *testing.T) {
	b := NewBuilder(true).Append(0, 1).Append(1, math.Inf(1))
	if _, err := b.Build(); !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestNewFromValues(t *testing.T) {
	ts, err := NewFromValues([]float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("NewFromValues returned error: %v", err)
	}
	if ts.Len() != 5 {
		t.Errorf("Len() = %d, want 5", ts.Len())
	}
	if !ts.IsIntegerIndexed() {
		t.Errorf("expected integer-indexed series")
	}
}

func TestSliceIsIndependent(t *testing.T) {
	ts, _ := NewFromValues([]float64{1, 2, 3, 4, 5})
	sub, err := ts.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice returned error: %v", err)
	}
	if sub.Len() != 2 {
		t.Fatalf("sub.Len() = %d, want 2", sub.Len())
	}
	sub.values[0] = 999
	if ts.Values()[1] == 999 {
		t.Errorf("Slice shares backing storage with parent")
	}
}

func TestForecastValidateBoundsOrder(t *testing.T) {
	f := &Forecast{Point: []float64{1, 2, 3}, Lower: []float64{0, 0, 4}, Upper: []float64{2, 3, 5}}
	if err := f.Validate(3); !errors.Is(err, tserr.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput (lower[2] > point[2])", err)
	}
}

func TestForecastValidateOK(t *testing.T) {
	f := &Forecast{Point: []float64{1, 2, 3}}
	if err := f.Validate(3); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}
