package mcwf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanterra/qtraj/hilbert"
	"github.com/quanterra/qtraj/ode"
)

// newTestTrajectory wires a trajectory directly, bypassing Solve, so the
// jump machinery can be exercised in isolation.
func newTestTrajectory(t *testing.T, h *hilbert.Operator, collapse []*hilbert.Operator,
	psi0 hilbert.State, jumpRes float64) *trajectory {
	t.Helper()

	gen, err := NewEffectiveGenerator(h, collapse)
	require.NoError(t, err)
	stepper, err := ode.NewStepper(gen.Dim())
	require.NoError(t, err)

	return newTrajectory(0, gen, psi0, []float64{0, 10}, nil,
		stepper, ode.DefaultConfig(), 42, jumpRes, false)
}

// TestApplyJump_RenormalizesExactly verifies the post-jump unit-norm
// invariant and the jump bookkeeping.
func TestApplyJump_RenormalizesExactly(t *testing.T) {
	h, err := hilbert.Zero(2)
	require.NoError(t, err)
	sm := hilbert.SigmaMinus().Scale(complex(math.Sqrt(0.3), 0))

	excited, err := hilbert.BasisState(2, 0)
	require.NoError(t, err)

	tr := newTestTrajectory(t, h, []*hilbert.Operator{sm}, excited, 1e-8)
	tr.psi = excited.Clone()
	// A sub-normalized pre-jump state, as it would be mid-decay.
	tr.psi.Scale(0.6)

	require.NoError(t, tr.applyJump(0.5, tr.psi))

	assert.InDelta(t, 1.0, tr.psi.Norm2(), 1e-10, "norm must be exactly reset after a jump")
	assert.InDelta(t, 1.0, real(tr.psi[1]), 1e-10, "σ⁻ must land in the ground state")
	require.Len(t, tr.rec.JumpTimes, 1)
	assert.Equal(t, 0.5, tr.rec.JumpTimes[0])
	assert.Equal(t, []int{0}, tr.rec.JumpChannels)
}

// TestApplyJump_Degenerate fires the zero-total-rate edge case: σ⁻ applied
// to the ground state annihilates it.
func TestApplyJump_Degenerate(t *testing.T) {
	h, err := hilbert.Zero(2)
	require.NoError(t, err)
	sm := hilbert.SigmaMinus()

	ground, err := hilbert.BasisState(2, 1)
	require.NoError(t, err)

	tr := newTestTrajectory(t, h, []*hilbert.Operator{sm}, ground, 1e-8)
	tr.psi = ground.Clone()

	err = tr.applyJump(1.0, tr.psi)
	assert.ErrorIs(t, err, ErrDegenerateJump)

	var te *TrajectoryError
	require.ErrorAs(t, err, &te, "trajectory failures must carry their index")
	assert.Equal(t, 0, te.Index)
	assert.Equal(t, 1.0, te.Time)
}

// TestLocateJump_AnalyticCrossing uses C = √γ·I so ‖ψ(t)‖² = exp(−γt)
// exactly and the crossing time of a given threshold is −ln(r)/γ.
func TestLocateJump_AnalyticCrossing(t *testing.T) {
	const gamma = 2.0
	h, err := hilbert.Zero(2)
	require.NoError(t, err)
	id, err := hilbert.Identity(2)
	require.NoError(t, err)
	c := id.Scale(complex(math.Sqrt(gamma), 0))

	psi0, err := hilbert.BasisState(2, 0)
	require.NoError(t, err)

	const res = 1e-7
	tr := newTestTrajectory(t, h, []*hilbert.Operator{c}, psi0, res)
	tr.psi = psi0.Clone()
	tr.t = 0
	tr.threshold = 0.37

	tj, psiJ, err := tr.locateJump(context.Background(), 10)
	require.NoError(t, err)

	want := -math.Log(tr.threshold) / gamma
	assert.InDelta(t, want, tj, 1e-5, "bisection must locate the analytic crossing")
	assert.LessOrEqual(t, psiJ.Norm2(), tr.threshold+1e-6,
		"the located state must sit at or just below the threshold")
}

// TestChannelSampling_Proportional checks that channel selection follows
// the ⟨C†C⟩ weights: with rates 1 and 3 the second channel must fire about
// three times as often.
func TestChannelSampling_Proportional(t *testing.T) {
	h, err := hilbert.Zero(2)
	require.NoError(t, err)
	id, err := hilbert.Identity(2)
	require.NoError(t, err)
	c1 := id.Scale(1)
	c2 := id.Scale(complex(math.Sqrt(3), 0))

	psi0, err := hilbert.BasisState(2, 0)
	require.NoError(t, err)

	tr := newTestTrajectory(t, h, []*hilbert.Operator{c1, c2}, psi0, 1e-8)

	counts := [2]int{}
	const draws = 4000
	for i := 0; i < draws; i++ {
		tr.psi = psi0.Clone()
		require.NoError(t, tr.applyJump(0, tr.psi))
		counts[tr.rec.JumpChannels[len(tr.rec.JumpChannels)-1]]++
	}

	frac := float64(counts[1]) / draws
	assert.InDelta(t, 0.75, frac, 0.03, "channel 2 carries 3/4 of the total rate")
}

// TestSplitmix_StreamIndependence spot-checks that neighboring trajectory
// indices do not produce overlapping streams.
func TestSplitmix_StreamIndependence(t *testing.T) {
	a := newStream(7, 0)
	b := newStream(7, 1)

	same := 0
	for i := 0; i < 100; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	assert.Less(t, same, 3, "adjacent streams must not track each other")

	// Identical (seed, index) must reproduce the identical sequence.
	c := newStream(7, 0)
	d := newStream(7, 0)
	for i := 0; i < 100; i++ {
		assert.Equal(t, c.Float64(), d.Float64())
	}
}
