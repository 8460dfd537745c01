package lindblad

import (
	"fmt"

	"github.com/quanterra/qtraj/hilbert"
)

// SteadyState finds the stationary density matrix of the dissipative
// dynamics by propagating the maximally mixed state forward in windows of
// Options.Horizon until the max-norm change over a window falls below
// Options.Tol.
//
// Long-time propagation is used instead of a null-space solve because the
// Liouvillian is non-Hermitian and complex; for a unique attracting steady
// state the fixed point is reached geometrically at the spectral gap rate.
// When the dynamics admit several stationary states (or none is attracting
// within Options.MaxIters windows) the search fails with ErrNoConvergence;
// note that purely unitary dynamics leave the maximally mixed seed fixed,
// so they return I/d rather than an error.
func SteadyState(h *hilbert.Operator, collapse []*hilbert.Operator, opts ...Option) (*hilbert.Operator, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	liou, err := Liouvillian(h, collapse)
	if err != nil {
		return nil, err
	}
	d := h.Dim()

	// Start from the maximally mixed state: full support on every basis
	// state, so no candidate steady state is missed.
	id, err := hilbert.Identity(d)
	if err != nil {
		return nil, err
	}
	rho := id.Scale(complex(1/float64(d), 0))

	dt := o.StepSize
	if dt <= 0 {
		dt = o.Horizon / 200
	}

	stepper := newRK4(liou)
	v := vectorize(rho)
	prev := rho

	t := 0.0
	for iter := 0; iter < o.MaxIters; iter++ {
		stepper.advance(v, t, t+o.Horizon, dt)
		t += o.Horizon

		cur, err := devectorize(v, d)
		if err != nil {
			return nil, err
		}
		if cur.MaxAbsDiff(prev) < o.Tol {
			return cur, nil
		}
		prev = cur
	}

	return nil, fmt.Errorf("%w: after %d windows of %g", ErrNoConvergence, o.MaxIters, o.Horizon)
}
