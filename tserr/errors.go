// Package tserr defines the error kinds shared across the forecasting
// engine. Every fallible operation returns a plain error wrapping one of
// these sentinels, checked with errors.Is, rather than a bespoke exception
// hierarchy.
package tserr

import "errors"

// Sentinel error kinds. See spec §7.
var (
	// ErrInvalidInput marks malformed arguments: null dates, unknown model
	// names, empty series, incompatible frequency, out-of-range parameters.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFitted marks a Predict call before a successful Fit.
	ErrNotFitted = errors.New("model not fitted")

	// ErrNumericFailure marks optimizer divergence, all-NaN gradients, or a
	// non-finite state encountered during checkpoint replay.
	ErrNumericFailure = errors.New("numeric failure")

	// ErrInsufficientData marks fewer points than a model's minimum
	// requirement.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotConverged marks an L-BFGS run that returned without meeting
	// tolerances. Callers in strict one-shot-fit mode treat this as an
	// error; CV and search contexts treat it as a non-fatal flag on the
	// best iterate instead.
	ErrNotConverged = errors.New("did not converge")
)
