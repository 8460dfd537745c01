package lindblad

import (
	"fmt"
	"math"

	"github.com/quanterra/qtraj/hilbert"
)

// Solution is the deterministic master-equation result over the requested
// output times.
type Solution struct {
	// Times echoes the requested output times.
	Times []float64

	// Expectations holds, per observable, the real part of Tr(ρ(t)·O) at
	// each output time.
	Expectations [][]float64

	// States holds the density matrix at each output time.
	States []*hilbert.Operator
}

// MESolve integrates the Lindblad master equation for rho0 under h and the
// collapse channels, reporting Tr(ρO) for every observable at every output
// time. Fixed-step RK4 on the vectorized Liouvillian; the step defaults to
// 1/2000 of the full time span.
func MESolve(h *hilbert.Operator, collapse []*hilbert.Operator, rho0 *hilbert.Operator,
	times []float64, observables []*hilbert.Operator, opts ...Option) (*Solution, error) {

	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	liou, err := Liouvillian(h, collapse)
	if err != nil {
		return nil, err
	}
	d := h.Dim()

	if rho0 == nil {
		return nil, ErrNilDensity
	}
	if rho0.Dim() != d {
		return nil, fmt.Errorf("%w: density matrix has dim %d, hamiltonian has %d",
			ErrDimensionMismatch, rho0.Dim(), d)
	}
	if len(times) == 0 {
		return nil, ErrNoTimes
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: times[%d]=%g, times[%d]=%g",
				ErrTimesNotSorted, i-1, times[i-1], i, times[i])
		}
	}
	for i, op := range observables {
		if op == nil {
			return nil, fmt.Errorf("%w: observable %d", ErrNilObservable, i)
		}
		if op.Dim() != d {
			return nil, fmt.Errorf("%w: observable %d has dim %d, hamiltonian has %d",
				ErrDimensionMismatch, i, op.Dim(), d)
		}
	}

	dt := o.StepSize
	if dt <= 0 {
		span := times[len(times)-1] - times[0]
		if span > 0 {
			dt = span / 2000
		} else {
			dt = 1e-3
		}
	}

	sol := &Solution{
		Times:        times,
		Expectations: make([][]float64, len(observables)),
		States:       make([]*hilbert.Operator, len(times)),
	}
	for i := range observables {
		sol.Expectations[i] = make([]float64, len(times))
	}

	stepper := newRK4(liou)
	v := vectorize(rho0)

	record := func(ti int) error {
		for oi, op := range observables {
			sol.Expectations[oi][ti] = real(expectOfVec(v, d, op))
		}
		rho, err := devectorize(v, d)
		if err != nil {
			return err
		}
		sol.States[ti] = rho

		return nil
	}

	if err := record(0); err != nil {
		return nil, err
	}
	for ti := 1; ti < len(times); ti++ {
		stepper.advance(v, times[ti-1], times[ti], dt)
		if err := record(ti); err != nil {
			return nil, err
		}
	}

	return sol, nil
}

// rk4 integrates dv/dt = L·v with the classic fourth-order Runge-Kutta
// scheme; all stage buffers are preallocated against the superoperator
// dimension.
type rk4 struct {
	liou                *hilbert.Operator
	k1, k2, k3, k4, tmp []complex128
}

func newRK4(liou *hilbert.Operator) *rk4 {
	n := liou.Dim()

	return &rk4{
		liou: liou,
		k1:   make([]complex128, n),
		k2:   make([]complex128, n),
		k3:   make([]complex128, n),
		k4:   make([]complex128, n),
		tmp:  make([]complex128, n),
	}
}

// advance integrates v in place over [from, to] in uniform steps of at most
// dt, shrinking the final step to land exactly on to.
func (s *rk4) advance(v []complex128, from, to, dt float64) {
	steps := int(math.Ceil((to - from) / dt))
	if steps < 1 {
		steps = 1
	}
	h := (to - from) / float64(steps)

	for i := 0; i < steps; i++ {
		s.step(v, h)
	}
}

func (s *rk4) step(v []complex128, h float64) {
	n := len(v)
	hc := complex(h, 0)

	s.liou.ApplyTo(s.k1, v)
	for i := 0; i < n; i++ {
		s.tmp[i] = v[i] + hc/2*s.k1[i]
	}
	s.liou.ApplyTo(s.k2, s.tmp)
	for i := 0; i < n; i++ {
		s.tmp[i] = v[i] + hc/2*s.k2[i]
	}
	s.liou.ApplyTo(s.k3, s.tmp)
	for i := 0; i < n; i++ {
		s.tmp[i] = v[i] + hc*s.k3[i]
	}
	s.liou.ApplyTo(s.k4, s.tmp)

	for i := 0; i < n; i++ {
		v[i] += hc / 6 * (s.k1[i] + 2*s.k2[i] + 2*s.k3[i] + s.k4[i])
	}
}
