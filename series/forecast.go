package series

import (
	"fmt"

	"tsforecast/tserr"
)

// Forecast is a result bundle: a primary point-forecast vector, optional
// prediction bounds, optional in-sample fitted values and residuals, and
// the producing model's reported name.
type Forecast struct {
	Point     []float64
	Lower     []float64 // optional; nil when no interval was requested
	Upper     []float64 // optional; nil when no interval was requested
	Fitted    []float64 // optional in-sample fitted values
	Residuals []float64 // optional in-sample residuals
	ModelName string
}

// Validate checks the Forecast invariants from spec §3: if bounds are
// present, lower[i] <= point[i] <= upper[i], and all three share the
// requested horizon's length.
func (f *Forecast) Validate(horizon int) error {
	if len(f.Point) != horizon {
		return fmt.Errorf("%w: point forecast has length %d, want horizon %d", tserr.ErrInvalidInput, len(f.Point), horizon)
	}
	hasLower := f.Lower != nil
	hasUpper := f.Upper != nil
	if hasLower != hasUpper {
		return fmt.Errorf("%w: lower and upper bounds must both be present or both absent", tserr.ErrInvalidInput)
	}
	if !hasLower {
		return nil
	}
	if len(f.Lower) != horizon || len(f.Upper) != horizon {
		return fmt.Errorf("%w: bound vectors must have length %d (lower=%d, upper=%d)",
			tserr.ErrInvalidInput, horizon, len(f.Lower), len(f.Upper))
	}
	for i := 0; i < horizon; i++ {
		if f.Lower[i] > f.Point[i] || f.Point[i] > f.Upper[i] {
			return fmt.Errorf("%w: bounds out of order at index %d: lower=%v point=%v upper=%v",
				tserr.ErrInvalidInput, i, f.Lower[i], f.Point[i], f.Upper[i])
		}
	}
	return nil
}
