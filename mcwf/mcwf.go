package mcwf

import (
	"fmt"

	"github.com/quanterra/qtraj/hilbert"
	"github.com/quanterra/qtraj/ode"
)

// Solve runs the Monte Carlo wavefunction method: it unravels the Lindblad
// dynamics defined by Hamiltonian h and collapse operators into nTraj
// stochastic pure-state trajectories, records each observable's expectation
// value at every output time, and returns the ensemble statistics.
//
// Inputs are never mutated and may be shared across calls. The returned
// Result always reports both successes and failures; when the success
// fraction falls below the configured minimum, the Result is still returned
// alongside an error wrapping ErrEnsembleFailure.
//
// Validation (in order, before any trajectory is dispatched):
//  1. h must be non-nil (ErrNilHamiltonian).
//  2. Every collapse operator must be non-nil and match h's dimension
//     (ErrNilCollapse, ErrDimensionMismatch).
//  3. psi0 must be non-empty, match the dimension, and have nonzero norm
//     (ErrNilState, ErrDimensionMismatch, ErrZeroState).
//  4. times must be non-empty and strictly increasing
//     (ErrNoTimes, ErrTimesNotSorted).
//  5. Every observable must be non-nil and match the dimension
//     (ErrNilObservable, ErrDimensionMismatch).
//  6. nTraj must be ≥ 1 (ErrNoTrajectories).
//
// Determinism: rerunning with identical inputs, seed, and trajectory count
// reproduces bit-identical results regardless of worker count or
// scheduling, because every trajectory's random stream depends only on
// (seed, index) and the reduction is applied in index order.
func Solve(h *hilbert.Operator, collapse []*hilbert.Operator, psi0 hilbert.State,
	times []float64, observables []*hilbert.Operator,
	nTraj int, seed int64, opts ...Option) (*Result, error) {

	// 1) Resolve options.
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// 2) Build the effective generator; this validates h and the channels.
	gen, err := NewEffectiveGenerator(h, collapse)
	if err != nil {
		return nil, err
	}
	d := gen.Dim()

	// 3) Validate the initial state.
	if len(psi0) == 0 {
		return nil, ErrNilState
	}
	if len(psi0) != d {
		return nil, fmt.Errorf("%w: state has dim %d, hamiltonian has %d",
			ErrDimensionMismatch, len(psi0), d)
	}
	if psi0.Norm2() == 0 {
		return nil, ErrZeroState
	}

	// 4) Validate the output-time grid.
	if len(times) == 0 {
		return nil, ErrNoTimes
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: times[%d]=%g, times[%d]=%g",
				ErrTimesNotSorted, i-1, times[i-1], i, times[i])
		}
	}

	// 5) Validate observables.
	for i, op := range observables {
		if op == nil {
			return nil, fmt.Errorf("%w: observable %d", ErrNilObservable, i)
		}
		if op.Dim() != d {
			return nil, fmt.Errorf("%w: observable %d has dim %d, hamiltonian has %d",
				ErrDimensionMismatch, i, op.Dim(), d)
		}
	}

	// 6) Validate the trajectory count.
	if nTraj < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoTrajectories, nTraj)
	}

	// 7) Derive the propagator configuration and jump resolution.
	odeCfg := ode.DefaultConfig()
	odeCfg.AbsTol = o.AbsTol
	odeCfg.RelTol = o.RelTol
	odeCfg.MaxStep = o.MaxStep

	jumpRes := o.JumpResolution
	if jumpRes <= 0 {
		span := times[len(times)-1] - times[0]
		jumpRes = span * 1e-6
	}

	// 8) Dispatch the ensemble.
	cfg := &runConfig{
		gen:     gen,
		psi0:    psi0,
		times:   times,
		obs:     observables,
		nTraj:   nTraj,
		seed:    seed,
		odeCfg:  odeCfg,
		jumpRes: jumpRes,
		opts:    o,
	}

	return runEnsemble(cfg)
}
