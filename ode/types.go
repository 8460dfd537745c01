// Package ode provides an adaptive explicit Runge-Kutta stepper for
// first-order complex-valued systems dy/dt = f(t, y).
//
// The only integrator currently implemented is the Dormand-Prince 5(4)
// embedded pair (DOPRI5) with FSAL reuse and standard proportional step
// control. It is the deterministic propagation backend of the quantum
// trajectory engine, but carries no quantum semantics of its own.
//
// Configuration:
//
//	– AbsTol / RelTol: local error tolerances (defaults 1e-8 / 1e-6).
//	– InitialStep:     starting step size; ≤ 0 selects a heuristic.
//	– MinStep:         floor below which the controller gives up.
//	– MaxStep:         ceiling on any single step; ≤ 0 means unbounded.
//	– MaxRejects:      consecutive step rejections before failing.
//	– MaxSteps:        total accepted+rejected step budget.
//
// Errors (sentinel):
//
//	– ErrBadTolerance   if a tolerance is not positive.
//	– ErrBadInterval    if tEnd precedes t.
//	– ErrDimension      if the state length does not match the stepper.
//	– ErrStepBelowMin   if the controller would need a step under MinStep.
//	– ErrTooManyRejects if MaxRejects consecutive rejections occur.
//	– ErrMaxSteps       if the total step budget is exhausted.
package ode

import "errors"

// Sentinel errors for the adaptive stepper.
var (
	// ErrBadTolerance indicates a non-positive absolute or relative tolerance.
	ErrBadTolerance = errors.New("ode: tolerances must be positive")

	// ErrBadInterval indicates an integration interval with tEnd < t.
	ErrBadInterval = errors.New("ode: tEnd must not precede t")

	// ErrDimension indicates a state vector whose length differs from the
	// dimension the stepper was built for.
	ErrDimension = errors.New("ode: state dimension mismatch")

	// ErrStepBelowMin indicates the controller required a step smaller than
	// MinStep to satisfy the tolerances.
	ErrStepBelowMin = errors.New("ode: required step below MinStep")

	// ErrTooManyRejects indicates MaxRejects consecutive step rejections.
	ErrTooManyRejects = errors.New("ode: too many consecutive step rejections")

	// ErrMaxSteps indicates the total step budget was exhausted before tEnd.
	ErrMaxSteps = errors.New("ode: maximum step count exceeded")

	// ErrNilFunc indicates a nil derivative function.
	ErrNilFunc = errors.New("ode: derivative function is nil")
)

// Func evaluates the right-hand side of the system, writing dy/dt at (t, y)
// into dy. Implementations must not retain y or dy.
type Func func(t float64, y, dy []complex128)

// Config controls the adaptive step behavior of a single Integrate call.
type Config struct {
	AbsTol      float64 // absolute local error tolerance, > 0
	RelTol      float64 // relative local error tolerance, > 0
	InitialStep float64 // first step size; ≤ 0 selects (tEnd−t)/100
	MinStep     float64 // smallest admissible step; ≤ 0 disables the floor
	MaxStep     float64 // largest admissible step; ≤ 0 disables the ceiling
	MaxRejects  int     // consecutive rejection budget; ≤ 0 selects 16
	MaxSteps    int     // total step budget; ≤ 0 selects 1_000_000
}

// DefaultConfig returns the tolerances and budgets used when the caller does
// not override them.
func DefaultConfig() Config {
	return Config{
		AbsTol:     1e-8,
		RelTol:     1e-6,
		MaxRejects: defaultMaxRejects,
		MaxSteps:   defaultMaxSteps,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.AbsTol <= 0 || c.RelTol <= 0 {
		return ErrBadTolerance
	}

	return nil
}

// Statistics describes the work performed by one Integrate call.
type Statistics struct {
	Steps       int     // accepted steps
	Rejected    int     // rejected steps
	Evaluations int     // derivative evaluations
	LastStep    float64 // size of the last accepted step
	NextStep    float64 // step the controller would take next
	CurrentTime float64 // time actually reached
}

const (
	defaultMaxRejects = 16
	defaultMaxSteps   = 1_000_000

	// Proportional controller constants: factor = safety·err^(−1/5),
	// clamped to [minFactor, maxFactor].
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 5.0
)
