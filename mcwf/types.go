// Package mcwf defines the configuration options, sentinel errors, and
// result types for the Monte Carlo wavefunction (quantum trajectory) solver.
//
// The solver unravels a Lindblad master equation into an ensemble of
// stochastically collapsing pure-state trajectories whose average reproduces
// the density-matrix evolution. Each trajectory evolves under the
// non-Hermitian effective generator G = H − (i/2)·Σ C†C between jumps; the
// squared norm of the state decays toward a uniformly drawn threshold, and
// crossing it triggers a collapse through one of the channels C_k.
//
// Options:
//
//	– WithTolerances:         propagator abs/rel error bounds (1e-8 / 1e-6).
//	– WithMaxStep:            ceiling on a single propagation step.
//	– WithJumpResolution:     time resolution of jump-time bisection.
//	– WithKeepStates:         retain per-trajectory records and states.
//	– WithWorkers:            parallelism degree (default GOMAXPROCS).
//	– WithTimeout:            wall-clock budget for the whole ensemble.
//	– WithMinSuccessFraction: fraction of trajectories that must succeed.
//	– WithStandardError:      also report the standard error of the mean.
//	– WithProgress:           callback invoked as trajectories complete.
//	– WithLogger:             zerolog sink for driver diagnostics.
//	– WithContext:            base context for cancellation.
//
// Errors (sentinel):
//
//	– ErrNilHamiltonian      nil Hamiltonian operator.
//	– ErrNilCollapse         nil entry in the collapse-operator list.
//	– ErrNilObservable       nil entry in the observable list.
//	– ErrDimensionMismatch   operators and state disagree on dimension.
//	– ErrNilState            nil or empty initial state.
//	– ErrZeroState           initial state with numerically zero norm.
//	– ErrNoTimes             empty output-time list.
//	– ErrTimesNotSorted      output times not strictly increasing.
//	– ErrNoTrajectories      trajectory count below one.
//	– ErrIntegrationFailure  the adaptive propagator could not converge.
//	– ErrDegenerateJump      zero total jump rate at a located jump time.
//	– ErrCancelled           trajectory stopped by cancellation or timeout.
//	– ErrEnsembleFailure     too few trajectories succeeded.
package mcwf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Sentinel errors for setup validation and trajectory execution.
var (
	// ErrNilHamiltonian indicates a nil Hamiltonian operator.
	ErrNilHamiltonian = errors.New("mcwf: hamiltonian is nil")

	// ErrNilCollapse indicates a nil collapse operator in the channel list.
	ErrNilCollapse = errors.New("mcwf: collapse operator is nil")

	// ErrNilObservable indicates a nil observable operator.
	ErrNilObservable = errors.New("mcwf: observable is nil")

	// ErrDimensionMismatch indicates that the Hamiltonian, a collapse
	// operator, an observable, or the initial state disagree on the
	// Hilbert-space dimension.
	ErrDimensionMismatch = errors.New("mcwf: dimension mismatch")

	// ErrNilState indicates a nil or empty initial state.
	ErrNilState = errors.New("mcwf: initial state is nil or empty")

	// ErrZeroState indicates an initial state with numerically zero norm.
	ErrZeroState = errors.New("mcwf: initial state has zero norm")

	// ErrNoTimes indicates an empty list of output times.
	ErrNoTimes = errors.New("mcwf: output times are empty")

	// ErrTimesNotSorted indicates output times that are not strictly
	// increasing.
	ErrTimesNotSorted = errors.New("mcwf: output times must be strictly increasing")

	// ErrNoTrajectories indicates a requested trajectory count below one.
	ErrNoTrajectories = errors.New("mcwf: trajectory count must be at least 1")

	// ErrIntegrationFailure indicates the deterministic propagator could not
	// meet its tolerances within the step budget. Fatal to one trajectory.
	ErrIntegrationFailure = errors.New("mcwf: propagator failed to converge")

	// ErrDegenerateJump indicates a numerically zero total jump rate at a
	// detected jump time. Fatal to one trajectory.
	ErrDegenerateJump = errors.New("mcwf: zero total jump rate at jump time")

	// ErrCancelled indicates a trajectory was stopped by cancellation or by
	// the ensemble timeout before completing.
	ErrCancelled = errors.New("mcwf: trajectory cancelled")

	// ErrEnsembleFailure indicates that fewer trajectories succeeded than
	// the configured minimum success fraction requires.
	ErrEnsembleFailure = errors.New("mcwf: too few trajectories succeeded")

	// errBadOption reports statically invalid option arguments; option
	// constructors panic with it rather than deferring to run time.
	errBadOption = errors.New("mcwf: invalid option value")
)

// degenerateRateTol is the relative total-jump-rate threshold below which a
// located jump point is treated as degenerate.
const degenerateRateTol = 1e-14

// ProgressFunc is invoked by the ensemble driver after each trajectory
// completes (successfully or not), with the number completed so far and the
// total requested. It runs on the driver goroutine; keep it cheap.
type ProgressFunc func(completed, total int)

// Options configures a Solve run. Construct with DefaultOptions and adjust
// via functional options; Solve validates the final configuration once
// before dispatching any trajectory.
type Options struct {
	AbsTol             float64         // propagator absolute tolerance, > 0
	RelTol             float64         // propagator relative tolerance, > 0
	MaxStep            float64         // propagation step ceiling; 0 = none
	JumpResolution     float64         // jump bisection resolution; 0 = span·1e-6
	KeepStates         bool            // retain per-trajectory records
	Workers            int             // parallel workers; 0 = GOMAXPROCS
	Timeout            time.Duration   // wall-clock budget; 0 = none
	MinSuccessFraction float64         // in [0, 1]; below it the run fails
	StandardError      bool            // also compute standard errors
	Progress           ProgressFunc    // completion callback; nil = none
	Logger             zerolog.Logger  // driver diagnostics; default Nop
	Context            context.Context // base context; nil = Background
}

// Option mutates Options before validation.
type Option func(*Options)

// DefaultOptions returns the solver defaults: tolerances 1e-8/1e-6, no step
// ceiling, automatic jump resolution, no retained states, GOMAXPROCS
// workers, no timeout, minimum success fraction 0.5, silent logger.
func DefaultOptions() Options {
	return Options{
		AbsTol:             1e-8,
		RelTol:             1e-6,
		MinSuccessFraction: 0.5,
		Logger:             zerolog.Nop(),
	}
}

// WithTolerances sets the propagator's absolute and relative local error
// tolerances. Panics if either is not positive.
func WithTolerances(absTol, relTol float64) Option {
	if absTol <= 0 || relTol <= 0 {
		panic(fmt.Sprintf("%v: tolerances %g/%g", errBadOption, absTol, relTol))
	}

	return func(o *Options) {
		o.AbsTol = absTol
		o.RelTol = relTol
	}
}

// WithMaxStep caps the size of any single propagation step.
// Panics if maxStep is not positive.
func WithMaxStep(maxStep float64) Option {
	if maxStep <= 0 {
		panic(fmt.Sprintf("%v: max step %g", errBadOption, maxStep))
	}

	return func(o *Options) { o.MaxStep = maxStep }
}

// WithJumpResolution sets the time resolution to which jump times are
// located by bisection. Panics if res is not positive. The default is
// 1e-6 of the full output-time span.
func WithJumpResolution(res float64) Option {
	if res <= 0 {
		panic(fmt.Sprintf("%v: jump resolution %g", errBadOption, res))
	}

	return func(o *Options) { o.JumpResolution = res }
}

// WithKeepStates retains every trajectory's full record: per-time
// expectation values, normalized states, and jump history.
func WithKeepStates() Option {
	return func(o *Options) { o.KeepStates = true }
}

// WithWorkers sets the number of parallel trajectory workers.
// Panics if n is negative; 0 selects GOMAXPROCS.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("%v: workers %d", errBadOption, n))
	}

	return func(o *Options) { o.Workers = n }
}

// WithTimeout bounds the wall-clock time of the whole ensemble. Trajectories
// still pending when it elapses are cancelled and counted as failures.
// Panics if d is negative.
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		panic(fmt.Sprintf("%v: timeout %s", errBadOption, d))
	}

	return func(o *Options) { o.Timeout = d }
}

// WithMinSuccessFraction sets the fraction of trajectories that must
// succeed for the run to be considered usable. Panics unless f ∈ [0, 1].
func WithMinSuccessFraction(f float64) Option {
	if f < 0 || f > 1 {
		panic(fmt.Sprintf("%v: success fraction %g", errBadOption, f))
	}

	return func(o *Options) { o.MinSuccessFraction = f }
}

// WithStandardError also reports the sample standard error of the ensemble
// mean for every observable and output time.
func WithStandardError() Option {
	return func(o *Options) { o.StandardError = true }
}

// WithProgress installs a completion callback on the ensemble driver.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Options) { o.Progress = fn }
}

// WithLogger routes driver diagnostics to the given zerolog logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Options) { o.Logger = log }
}

// WithContext sets the base context; cancelling it stops all in-flight
// trajectories at their next sub-step boundary.
func WithContext(ctx context.Context) Option {
	return func(o *Options) { o.Context = ctx }
}

// TrajectoryError describes the failure of a single trajectory. It wraps
// one of the per-trajectory sentinels (ErrIntegrationFailure,
// ErrDegenerateJump, ErrCancelled) and records where the trajectory was
// when it failed.
type TrajectoryError struct {
	Index int     // trajectory index within the ensemble
	Time  float64 // simulation time reached before the failure
	Err   error   // wrapped cause
}

// Error implements the error interface.
func (e *TrajectoryError) Error() string {
	return fmt.Sprintf("mcwf: trajectory %d failed at t=%g: %v", e.Index, e.Time, e.Err)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *TrajectoryError) Unwrap() error { return e.Err }
