// Package lindblad provides the deterministic counterpart of the trajectory
// solver: dense integration of the Lindblad master equation for the density
// matrix, explicit construction of the Liouvillian superoperator, and a
// steady-state finder.
//
// The master equation integrated is
//
//	dρ/dt = −i[H, ρ] + Σ_k ( C_k ρ C_k† − ½{C_k†C_k, ρ} )
//
// in column-stacking vectorized form dvec(ρ)/dt = L·vec(ρ), with the
// Liouvillian
//
//	L = −i(I⊗H − Hᵀ⊗I) + Σ_k ( C̄_k⊗C_k − ½ I⊗C_k†C_k − ½ (C_k†C_k)ᵀ⊗I ).
//
// Integration is classic fixed-step RK4; the step is an explicit option
// because the reference solver's job is verifiable accuracy, not speed.
//
// Errors (sentinel):
//
//	– ErrNilHamiltonian    nil Hamiltonian.
//	– ErrNilCollapse       nil collapse operator.
//	– ErrNilDensity        nil initial density matrix.
//	– ErrNilObservable     nil observable.
//	– ErrDimensionMismatch operator dimensions disagree.
//	– ErrNoTimes           empty output-time list.
//	– ErrTimesNotSorted    output times not strictly increasing.
//	– ErrBadStep           non-positive integration step.
//	– ErrNoConvergence     steady-state iteration did not converge.
package lindblad

import "errors"

// Sentinel errors for the master-equation solver.
var (
	// ErrNilHamiltonian indicates a nil Hamiltonian operator.
	ErrNilHamiltonian = errors.New("lindblad: hamiltonian is nil")

	// ErrNilCollapse indicates a nil collapse operator in the channel list.
	ErrNilCollapse = errors.New("lindblad: collapse operator is nil")

	// ErrNilDensity indicates a nil initial density matrix.
	ErrNilDensity = errors.New("lindblad: density matrix is nil")

	// ErrNilObservable indicates a nil observable operator.
	ErrNilObservable = errors.New("lindblad: observable is nil")

	// ErrDimensionMismatch indicates operators of disagreeing dimension.
	ErrDimensionMismatch = errors.New("lindblad: dimension mismatch")

	// ErrNoTimes indicates an empty list of output times.
	ErrNoTimes = errors.New("lindblad: output times are empty")

	// ErrTimesNotSorted indicates non-strictly-increasing output times.
	ErrTimesNotSorted = errors.New("lindblad: output times must be strictly increasing")

	// ErrBadStep indicates a non-positive RK4 step size.
	ErrBadStep = errors.New("lindblad: step size must be positive")

	// ErrNoConvergence indicates the steady-state fixed-point iteration did
	// not reach the requested tolerance within the iteration budget.
	ErrNoConvergence = errors.New("lindblad: steady state did not converge")
)

// Options configures MESolve and SteadyState.
type Options struct {
	StepSize float64 // RK4 step; ≤ 0 selects span/2000 (MESolve) or horizon/200 (SteadyState)
	Horizon  float64 // steady state: window propagated between convergence checks
	Tol      float64 // steady state: max-norm change below which ρ is converged
	MaxIters int     // steady state: windows to try before ErrNoConvergence
}

// Option mutates Options before validation.
type Option func(*Options)

// DefaultOptions returns the reference-solver defaults.
func DefaultOptions() Options {
	return Options{
		Horizon:  1.0,
		Tol:      1e-8,
		MaxIters: 500,
	}
}

// WithStepSize fixes the RK4 step. Panics if dt is not positive.
func WithStepSize(dt float64) Option {
	if dt <= 0 {
		panic(ErrBadStep.Error())
	}

	return func(o *Options) { o.StepSize = dt }
}

// WithHorizon sets the propagation window between steady-state convergence
// checks. Panics if h is not positive.
func WithHorizon(h float64) Option {
	if h <= 0 {
		panic("lindblad: horizon must be positive")
	}

	return func(o *Options) { o.Horizon = h }
}

// WithTol sets the steady-state convergence tolerance. Panics if tol is not
// positive.
func WithTol(tol float64) Option {
	if tol <= 0 {
		panic("lindblad: tolerance must be positive")
	}

	return func(o *Options) { o.Tol = tol }
}

// WithMaxIters bounds the number of steady-state windows. Panics if n < 1.
func WithMaxIters(n int) Option {
	if n < 1 {
		panic("lindblad: max iterations must be at least 1")
	}

	return func(o *Options) { o.MaxIters = n }
}
