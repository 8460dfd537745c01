package lindblad_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanterra/qtraj/hilbert"
	"github.com/quanterra/qtraj/lindblad"
)

// decaySystem is the two-level amplitude-damping benchmark: H = diag(0, 1),
// C = √γ·σ⁻, with the excited state at basis index 0.
func decaySystem(t *testing.T, gamma float64) (*hilbert.Operator, []*hilbert.Operator) {
	t.Helper()

	h, err := hilbert.NewOperator(2, []complex128{0, 0, 0, 1})
	require.NoError(t, err)
	c := hilbert.SigmaMinus().Scale(complex(math.Sqrt(gamma), 0))

	return h, []*hilbert.Operator{c}
}

func TestLiouvillian_Validation(t *testing.T) {
	_, err := lindblad.Liouvillian(nil, nil)
	assert.ErrorIs(t, err, lindblad.ErrNilHamiltonian)

	_, err = lindblad.Liouvillian(hilbert.PauliZ(), []*hilbert.Operator{nil})
	assert.ErrorIs(t, err, lindblad.ErrNilCollapse)

	id3, err := hilbert.Identity(3)
	require.NoError(t, err)
	_, err = lindblad.Liouvillian(hilbert.PauliZ(), []*hilbert.Operator{id3})
	assert.ErrorIs(t, err, lindblad.ErrDimensionMismatch)
}

// TestLiouvillian_DecayStructure pins down the column-stacked matrix for
// pure amplitude damping (H = 0, C = √γ·σ⁻). In vec order (ρ00, ρ10, ρ01,
// ρ11) the exact generator is:
//
//	dρ00/dt = −γ·ρ00      dρ11/dt = +γ·ρ00
//	dρ10/dt = −γ/2·ρ10    dρ01/dt = −γ/2·ρ01
func TestLiouvillian_DecayStructure(t *testing.T) {
	const gamma = 0.8
	h, err := hilbert.Zero(2)
	require.NoError(t, err)
	c := hilbert.SigmaMinus().Scale(complex(math.Sqrt(gamma), 0))

	liou, err := lindblad.Liouvillian(h, []*hilbert.Operator{c})
	require.NoError(t, err)
	require.Equal(t, 4, liou.Dim())

	assert.InDelta(t, -gamma, real(liou.At(0, 0)), 1e-14, "excited population decays at γ")
	assert.InDelta(t, gamma, real(liou.At(3, 0)), 1e-14, "ground population is fed at γ")
	assert.InDelta(t, -gamma/2, real(liou.At(1, 1)), 1e-14, "coherence decays at γ/2")
	assert.InDelta(t, -gamma/2, real(liou.At(2, 2)), 1e-14, "coherence decays at γ/2")
	assert.InDelta(t, 0, real(liou.At(3, 3)), 1e-14, "ground population has no loss term")

	// Trace preservation: every column of L must sum to zero over the
	// diagonal rows (ρ00 at 0, ρ11 at 3).
	for col := 0; col < 4; col++ {
		sum := liou.At(0, col) + liou.At(3, col)
		assert.InDelta(t, 0, real(sum), 1e-14, "column %d", col)
		assert.InDelta(t, 0, imag(sum), 1e-14, "column %d", col)
	}
}

// TestLiouvillian_UnitaryPart checks the commutator block: for H = σz the
// coherence ρ01 rotates as dρ01/dt = −2i·ρ01.
func TestLiouvillian_UnitaryPart(t *testing.T) {
	liou, err := lindblad.Liouvillian(hilbert.PauliZ(), nil)
	require.NoError(t, err)

	assert.InDelta(t, -2, imag(liou.At(2, 2)), 1e-14)
	assert.InDelta(t, 2, imag(liou.At(1, 1)), 1e-14)
	assert.InDelta(t, 0, imag(liou.At(0, 0)), 1e-14, "populations are untouched by a diagonal H")
	assert.InDelta(t, 0, imag(liou.At(3, 3)), 1e-14)
}

func TestMESolve_Validation(t *testing.T) {
	h, collapse := decaySystem(t, 0.5)
	rho, err := hilbert.Identity(2)
	require.NoError(t, err)
	rho = rho.Scale(0.5)
	obs := []*hilbert.Operator{hilbert.PauliZ()}

	_, err = lindblad.MESolve(h, collapse, nil, []float64{0, 1}, obs)
	assert.ErrorIs(t, err, lindblad.ErrNilDensity)

	_, err = lindblad.MESolve(h, collapse, rho, nil, obs)
	assert.ErrorIs(t, err, lindblad.ErrNoTimes)

	_, err = lindblad.MESolve(h, collapse, rho, []float64{0, 2, 1}, obs)
	assert.ErrorIs(t, err, lindblad.ErrTimesNotSorted)

	_, err = lindblad.MESolve(h, collapse, rho, []float64{0, 1}, []*hilbert.Operator{nil})
	assert.ErrorIs(t, err, lindblad.ErrNilObservable)

	id3, err := hilbert.Identity(3)
	require.NoError(t, err)
	_, err = lindblad.MESolve(h, collapse, rho, []float64{0, 1}, []*hilbert.Operator{id3})
	assert.ErrorIs(t, err, lindblad.ErrDimensionMismatch)
}

// TestMESolve_DecayMatchesAnalytic integrates amplitude damping from the
// excited state and compares against ⟨σz⟩(t) = 2·exp(−γt) − 1 exactly.
func TestMESolve_DecayMatchesAnalytic(t *testing.T) {
	const gamma = 0.5
	h, collapse := decaySystem(t, gamma)
	excited, err := hilbert.BasisState(2, 0)
	require.NoError(t, err)
	rho0, err := hilbert.Outer(excited)
	require.NoError(t, err)
	times := []float64{0, 0.5, 1, 2, 4}

	sol, err := lindblad.MESolve(h, collapse, rho0, times,
		[]*hilbert.Operator{hilbert.PauliZ()})
	require.NoError(t, err)

	for i, ti := range times {
		want := 2*math.Exp(-gamma*ti) - 1
		assert.InDelta(t, want, sol.Expectations[0][i], 1e-8, "⟨σz⟩ at t=%g", ti)
	}

	// The density matrix stays physical along the way: unit trace and
	// Hermitian at every output time.
	require.Len(t, sol.States, len(times))
	for i, rho := range sol.States {
		assert.InDelta(t, 1.0, real(rho.Trace()), 1e-10, "trace at t=%g", times[i])
		assert.True(t, rho.IsHermitian(1e-10), "hermiticity at t=%g", times[i])
	}
}

// TestMESolve_CoherenceRotation: unitary σz dynamics rotate ⟨σx⟩ as cos(2t)
// starting from the superposition state.
func TestMESolve_CoherenceRotation(t *testing.T) {
	plus := hilbert.State{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}
	rho0, err := hilbert.Outer(plus)
	require.NoError(t, err)
	times := []float64{0, 0.4, 0.9, 1.6}

	sol, err := lindblad.MESolve(hilbert.PauliZ(), nil, rho0, times,
		[]*hilbert.Operator{hilbert.PauliX()})
	require.NoError(t, err)

	for i, ti := range times {
		assert.InDelta(t, math.Cos(2*ti), sol.Expectations[0][i], 1e-8)
	}
}

func TestExpectation(t *testing.T) {
	_, err := lindblad.Expectation(nil, hilbert.PauliZ())
	assert.ErrorIs(t, err, lindblad.ErrNilObservable)

	// Mixed state diag(0.7, 0.3): ⟨σz⟩ = 0.7 − 0.3.
	rho, err := hilbert.NewOperator(2, []complex128{0.7, 0, 0, 0.3})
	require.NoError(t, err)
	val, err := lindblad.Expectation(rho, hilbert.PauliZ())
	require.NoError(t, err)
	assert.InDelta(t, 0.4, val, 1e-14)
}

// TestSteadyState_DecayReachesGround: amplitude damping has a unique
// attracting fixed point, the ground state.
func TestSteadyState_DecayReachesGround(t *testing.T) {
	h, collapse := decaySystem(t, 1.0)

	rho, err := lindblad.SteadyState(h, collapse, lindblad.WithTol(1e-9))
	require.NoError(t, err)

	assert.InDelta(t, 0, real(rho.At(0, 0)), 1e-6, "excited population must vanish")
	assert.InDelta(t, 1, real(rho.At(1, 1)), 1e-6, "all weight lands in the ground state")
	assert.InDelta(t, 1, real(rho.Trace()), 1e-8)
}

// TestSteadyState_UnitaryKeepsMixedSeed: without dissipation the maximally
// mixed seed commutes with H and is already stationary.
func TestSteadyState_UnitaryKeepsMixedSeed(t *testing.T) {
	rho, err := lindblad.SteadyState(hilbert.PauliZ(), nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, real(rho.At(0, 0)), 1e-9)
	assert.InDelta(t, 0.5, real(rho.At(1, 1)), 1e-9)
}

// TestSteadyState_NoConvergence: a relaxation rate far slower than the
// allotted window budget must be reported, not silently accepted.
func TestSteadyState_NoConvergence(t *testing.T) {
	h, collapse := decaySystem(t, 0.01)

	_, err := lindblad.SteadyState(h, collapse,
		lindblad.WithMaxIters(1), lindblad.WithTol(1e-12))
	assert.ErrorIs(t, err, lindblad.ErrNoConvergence)
}

func TestOptions_PanicOnInvalid(t *testing.T) {
	assert.Panics(t, func() { lindblad.WithStepSize(-1) })
	assert.Panics(t, func() { lindblad.WithHorizon(0) })
	assert.Panics(t, func() { lindblad.WithTol(0) })
	assert.Panics(t, func() { lindblad.WithMaxIters(0) })
}
