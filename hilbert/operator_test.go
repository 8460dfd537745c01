package hilbert_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanterra/qtraj/hilbert"
)

const opTol = 1e-12

// TestNewOperator_Validation covers constructor error paths.
func TestNewOperator_Validation(t *testing.T) {
	_, err := hilbert.NewOperator(0, nil)
	assert.ErrorIs(t, err, hilbert.ErrBadDimension)

	_, err = hilbert.NewOperator(2, []complex128{1, 2, 3})
	assert.ErrorIs(t, err, hilbert.ErrBadData, "data length must be d*d")
}

// TestOperator_DaggerPauli verifies σy† == σy (Hermitian) and that the
// adjoint conjugates off-diagonal elements.
func TestOperator_DaggerPauli(t *testing.T) {
	sy := hilbert.PauliY()
	assert.True(t, sy.Dagger().EqualApprox(sy, opTol), "σy must be Hermitian")
	assert.True(t, sy.IsHermitian(opTol))

	sm := hilbert.SigmaMinus()
	sp := hilbert.SigmaPlus()
	assert.True(t, sm.Dagger().EqualApprox(sp, opTol), "(σ⁻)† must equal σ⁺")
	assert.False(t, sm.IsHermitian(opTol))
}

// TestOperator_MulPauliAlgebra checks σx·σy = i·σz, a sharp test of both
// the product and complex bookkeeping.
func TestOperator_MulPauliAlgebra(t *testing.T) {
	prod, err := hilbert.PauliX().Mul(hilbert.PauliY())
	require.NoError(t, err)

	want := hilbert.PauliZ().Scale(complex(0, 1))
	assert.True(t, prod.EqualApprox(want, opTol), "σx·σy must equal i·σz")
}

// TestOperator_DimensionMismatch verifies binary ops reject mixed dimensions.
func TestOperator_DimensionMismatch(t *testing.T) {
	id3, err := hilbert.Identity(3)
	require.NoError(t, err)

	_, err = hilbert.PauliX().Mul(id3)
	assert.ErrorIs(t, err, hilbert.ErrDimensionMismatch)

	_, err = hilbert.PauliX().Add(id3)
	assert.ErrorIs(t, err, hilbert.ErrDimensionMismatch)

	_, err = hilbert.PauliX().Apply(hilbert.State{1, 0, 0})
	assert.ErrorIs(t, err, hilbert.ErrDimensionMismatch)
}

// TestOperator_AddScaled assembles σz = σ⁺σ⁻ − σ⁻σ⁺ ... here simply checks
// A + f·B element-wise.
func TestOperator_AddScaled(t *testing.T) {
	id, err := hilbert.Identity(2)
	require.NoError(t, err)

	got, err := id.AddScaled(complex(0, -2), hilbert.PauliZ())
	require.NoError(t, err)

	assert.InDelta(t, 1.0, real(got.At(0, 0)), opTol)
	assert.InDelta(t, -2.0, imag(got.At(0, 0)), opTol)
	assert.InDelta(t, 2.0, imag(got.At(1, 1)), opTol)
}

// TestKron_LadderStructure builds σz ⊗ I and checks block placement, then
// verifies dim arithmetic for a 2⊗3 product.
func TestKron_LadderStructure(t *testing.T) {
	id3, err := hilbert.Identity(3)
	require.NoError(t, err)

	k, err := hilbert.Kron(hilbert.PauliZ(), id3)
	require.NoError(t, err)

	assert.Equal(t, 6, k.Dim())
	assert.Equal(t, complex128(1), k.At(0, 0))
	assert.Equal(t, complex128(-1), k.At(3, 3), "lower block must carry −1")
	assert.Equal(t, complex128(0), k.At(0, 3))
}

// TestDestroy_LadderAction verifies a|n⟩ = √n|n−1⟩ and the number operator.
func TestDestroy_LadderAction(t *testing.T) {
	const d = 5
	a, err := hilbert.Destroy(d)
	require.NoError(t, err)

	n2, err := hilbert.BasisState(d, 2)
	require.NoError(t, err)

	got, err := a.Apply(n2)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2), real(got[1]), opTol, "a|2⟩ must be √2|1⟩")

	// a†a must equal the number operator on the truncated space.
	num, err := hilbert.Number(d)
	require.NoError(t, err)
	ada, err := a.Dagger().Mul(a)
	require.NoError(t, err)
	assert.True(t, ada.EqualApprox(num, opTol), "a†a must equal the number operator")
}

// TestOperator_Expectation checks renormalized expectation values on a
// deliberately sub-normalized state, the invariant trajectory recording
// depends on.
func TestOperator_Expectation(t *testing.T) {
	// ψ = 0.5·|0⟩: norm² = 0.25, but ⟨σz⟩ must still report +1.
	psi := hilbert.State{0.5, 0}
	ev, err := hilbert.PauliZ().Expectation(psi)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, real(ev), opTol, "sub-normalization must not bias ⟨σz⟩")

	_, err = hilbert.PauliZ().Expectation(hilbert.State{0, 0})
	assert.ErrorIs(t, err, hilbert.ErrZeroNorm)
}

// TestOuter_TraceOne verifies |ψ⟩⟨ψ| of a normalized state has unit trace
// and is Hermitian.
func TestOuter_TraceOne(t *testing.T) {
	psi := hilbert.State{complex(1/math.Sqrt2, 0), complex(0, 1/math.Sqrt2)}
	rho, err := hilbert.Outer(psi)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, real(rho.Trace()), opTol)
	assert.True(t, rho.IsHermitian(opTol))
}
