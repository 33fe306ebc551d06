// Package ets implements the ETS (Error/Trend/Season) state-space gradient
// engine: the forward state recursion, the analytical backward pass that
// differentiates the negative log-likelihood with respect to the smoothing
// parameters and initial states, and an optional checkpointing mode that
// caps memory for long series. Grounded on
// original_source/anofox-time/src/optimization/ets_gradients*.cpp.
package ets

import (
	"fmt"

	"tsforecast/tserr"
)

// ErrorType is the ETS error component kind.
type ErrorType int

const (
	ErrorAdditive ErrorType = iota
	ErrorMultiplicative
)

// TrendType is the ETS trend component kind.
type TrendType int

const (
	TrendNone TrendType = iota
	TrendAdditive
	TrendMultiplicative
	TrendDampedAdditive
	TrendDampedMultiplicative
)

// SeasonType is the ETS seasonal component kind.
type SeasonType int

const (
	SeasonNone SeasonType = iota
	SeasonAdditive
	SeasonMultiplicative
)

// Config is an immutable ETS specification: error/trend/season kinds,
// season length, and smoothing parameters. Beta and Gamma are nil when the
// trend/season component doesn't use them.
type Config struct {
	Error  ErrorType
	Trend  TrendType
	Season SeasonType
	M      int // season length, >= 1

	Alpha float64  // (0, 1]
	Beta  *float64 // [0, 1], required when Trend != TrendNone
	Gamma *float64 // [0, 1], required when Season != SeasonNone
	Phi   float64  // (0, 1], damping; meaningful only for damped trend kinds
}

// HasTrend reports whether the config specifies a (possibly damped) trend.
func (c Config) HasTrend() bool { return c.Trend != TrendNone }

// HasSeason reports whether the config specifies a seasonal component.
func (c Config) HasSeason() bool { return c.Season != SeasonNone }

// IsDampedTrend reports whether the trend kind applies geometric damping.
func (c Config) IsDampedTrend() bool {
	return c.Trend == TrendDampedAdditive || c.Trend == TrendDampedMultiplicative
}

// Validate checks the ranges and cross-field constraints from spec §3.
func (c Config) Validate() error {
	if c.M < 1 {
		return fmt.Errorf("%w: season length m must be >= 1, got %d", tserr.ErrInvalidInput, c.M)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("%w: alpha must be in (0,1], got %v", tserr.ErrInvalidInput, c.Alpha)
	}
	if c.HasTrend() {
		if c.Beta == nil {
			return fmt.Errorf("%w: beta is required when a trend component is configured", tserr.ErrInvalidInput)
		}
		if *c.Beta < 0 || *c.Beta > 1 {
			return fmt.Errorf("%w: beta must be in [0,1], got %v", tserr.ErrInvalidInput, *c.Beta)
		}
	}
	if c.HasSeason() {
		if c.Gamma == nil {
			return fmt.Errorf("%w: gamma is required when a seasonal component is configured", tserr.ErrInvalidInput)
		}
		if *c.Gamma < 0 || *c.Gamma > 1 {
			return fmt.Errorf("%w: gamma must be in [0,1], got %v", tserr.ErrInvalidInput, *c.Gamma)
		}
	}
	if c.IsDampedTrend() {
		if c.Phi <= 0 || c.Phi > 1 {
			return fmt.Errorf("%w: phi must be in (0,1], got %v", tserr.ErrInvalidInput, c.Phi)
		}
	}
	return nil
}
