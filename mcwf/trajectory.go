package mcwf

import (
	"context"
	"fmt"
	"math/cmplx"
	"math/rand"

	"github.com/quanterra/qtraj/hilbert"
	"github.com/quanterra/qtraj/ode"
)

// maxBisect caps jump-time bisection; 64 halvings exceed float64 precision
// for any sane interval, so hitting the cap means the resolution was met.
const maxBisect = 64

// trajectory holds the mutable state of a single stochastic realization.
// Each trajectory owns its state vector, scratch buffers, stepper, and
// random stream; only the generator and observables are shared (read-only).
type trajectory struct {
	idx     int
	gen     *EffectiveGenerator
	times   []float64
	obs     []*hilbert.Operator
	stepper *ode.Stepper
	odeCfg  ode.Config
	rng     *rand.Rand
	jumpRes float64
	keep    bool

	t         float64       // current simulation time
	psi       hilbert.State // owned, sub-normalized between jumps
	threshold float64       // current jump threshold r ∈ (0,1)
	scratch   hilbert.State // matvec buffer for expectations and collapses

	rec *TrajectoryRecord
}

// newTrajectory prepares trajectory idx of a run. The initial state is
// cloned and normalized; psi0 itself is never mutated.
func newTrajectory(idx int, gen *EffectiveGenerator, psi0 hilbert.State, times []float64,
	obs []*hilbert.Operator, stepper *ode.Stepper, odeCfg ode.Config,
	seed int64, jumpRes float64, keep bool) *trajectory {

	tr := &trajectory{
		idx:     idx,
		gen:     gen,
		times:   times,
		obs:     obs,
		stepper: stepper,
		odeCfg:  odeCfg,
		rng:     newStream(seed, idx),
		jumpRes: jumpRes,
		keep:    keep,
		t:       times[0],
		psi:     psi0.Clone(),
		scratch: make(hilbert.State, gen.Dim()),
	}

	rec := &TrajectoryRecord{Index: idx, Expectations: make([][]float64, len(obs))}
	for o := range obs {
		rec.Expectations[o] = make([]float64, len(times))
	}
	if keep {
		rec.States = make([]hilbert.State, len(times))
	}
	tr.rec = rec

	return tr
}

// run drives the realization from times[0] to the final output time and
// returns the trajectory record. The state machine is implicit in the loop:
// propagating between output times, collapsing when the norm threshold is
// crossed, recording at each output time, done at the last one.
//
// Failures are returned as *TrajectoryError wrapping one of the
// per-trajectory sentinels; they never affect sibling trajectories.
func (tr *trajectory) run(ctx context.Context) (*TrajectoryRecord, error) {
	// Initial state must normalize; Solve validated the norm already.
	if err := tr.psi.Normalize(); err != nil {
		return nil, tr.fail(err)
	}
	tr.threshold = uniform01Open(tr.rng)

	tr.record(0)
	for i := 1; i < len(tr.times); i++ {
		if err := tr.advanceTo(ctx, tr.times[i]); err != nil {
			return nil, err
		}
		tr.record(i)
	}

	return tr.rec, nil
}

// advanceTo propagates from tr.t to target, applying as many jumps as occur
// on the way. Between jumps the squared norm decays monotonically, so a
// single end-point check per segment is sufficient to detect a crossing.
func (tr *trajectory) advanceTo(ctx context.Context, target float64) error {
	for tr.t < target {
		if err := ctx.Err(); err != nil {
			return tr.fail(fmt.Errorf("%w: %v", ErrCancelled, err))
		}

		// 1) Tentatively propagate the whole remaining segment.
		cand := tr.psi.Clone()
		if err := tr.propagate(cand, tr.t, target); err != nil {
			return err
		}

		// 2) No channels, or threshold not reached: accept the segment.
		if tr.gen.Channels() == 0 || cand.Norm2() > tr.threshold {
			tr.psi = cand
			tr.t = target

			return nil
		}

		// 3) The norm crossed the threshold inside (tr.t, target]: locate
		//    the jump time by bisection, collapse, renew the threshold, and
		//    continue propagating from the jump time.
		tj, psiAtJump, err := tr.locateJump(ctx, target)
		if err != nil {
			return err
		}
		if err := tr.applyJump(tj, psiAtJump); err != nil {
			return err
		}
		tr.psi = psiAtJump
		tr.t = tj
		tr.threshold = uniform01Open(tr.rng)
	}

	return nil
}

// propagate integrates dψ/dt = −iGψ over [from, to], mutating y in place.
// Stepper errors are fatal to the trajectory as ErrIntegrationFailure.
func (tr *trajectory) propagate(y hilbert.State, from, to float64) error {
	if _, err := tr.stepper.Integrate(from, to, y, tr.gen.Derivative, tr.odeCfg); err != nil {
		return tr.fail(fmt.Errorf("%w: %v", ErrIntegrationFailure, err))
	}

	return nil
}

// locateJump finds the time in (tr.t, hi] at which ‖ψ(t)‖² crosses the
// threshold, to within tr.jumpRes, by bisection with a moving lower base:
// each accepted midpoint becomes the new starting state, so every probe
// integrates only the shrinking bracket.
//
// Precondition: ‖ψ(tr.t)‖² > threshold and ‖ψ(hi)‖² ≤ threshold.
func (tr *trajectory) locateJump(ctx context.Context, hi float64) (float64, hilbert.State, error) {
	loT := tr.t
	loPsi := tr.psi
	hiT := hi

	for iter := 0; iter < maxBisect && hiT-loT > tr.jumpRes; iter++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, tr.fail(fmt.Errorf("%w: %v", ErrCancelled, err))
		}

		mid := loT + (hiT-loT)/2
		probe := loPsi.Clone()
		if err := tr.propagate(probe, loT, mid); err != nil {
			return 0, nil, err
		}
		if probe.Norm2() > tr.threshold {
			loT, loPsi = mid, probe
		} else {
			hiT = mid
		}
	}

	// The jump is applied at the upper bracket edge, the first time the
	// norm is known to be at or below the threshold.
	psiJ := loPsi.Clone()
	if err := tr.propagate(psiJ, loT, hiT); err != nil {
		return 0, nil, err
	}

	return hiT, psiJ, nil
}

// applyJump samples the collapse channel with probability proportional to
// ⟨ψ|C_k†C_k|ψ⟩ and replaces psi with the renormalized collapsed state
// C_k·ψ/‖C_k·ψ‖, recording the event.
func (tr *trajectory) applyJump(tj float64, psi hilbert.State) error {
	n := tr.gen.Channels()
	weights := make([]float64, n)
	var total float64
	for k := 0; k < n; k++ {
		tr.gen.Channel(k).ApplyTo(tr.scratch, psi)
		weights[k] = tr.scratch.Norm2()
		total += weights[k]
	}

	if total <= degenerateRateTol*psi.Norm2() {
		tr.t = tj

		return tr.fail(fmt.Errorf("%w: total rate %g at t=%g", ErrDegenerateJump, total, tj))
	}

	// Discrete sampling over channels with a second uniform draw.
	u := uniform01Open(tr.rng) * total
	channel := n - 1
	var cum float64
	for k := 0; k < n; k++ {
		cum += weights[k]
		if u <= cum {
			channel = k
			break
		}
	}

	tr.gen.Channel(channel).ApplyTo(tr.scratch, psi)
	psi.CopyFrom(tr.scratch)
	if err := psi.Normalize(); err != nil {
		tr.t = tj

		return tr.fail(fmt.Errorf("%w: collapsed state has zero norm at t=%g", ErrDegenerateJump, tj))
	}

	tr.rec.JumpTimes = append(tr.rec.JumpTimes, tj)
	tr.rec.JumpChannels = append(tr.rec.JumpChannels, channel)

	return nil
}

// record computes every observable's expectation value against the
// renormalized current state and stores it at output-time slot i.
func (tr *trajectory) record(i int) {
	n2 := tr.psi.Norm2()
	for o, op := range tr.obs {
		op.ApplyTo(tr.scratch, tr.psi)
		var num complex128
		for j, v := range tr.psi {
			num += cmplx.Conj(v) * tr.scratch[j]
		}
		tr.rec.Expectations[o][i] = real(num) / n2
	}
	if tr.keep {
		s := tr.psi.Clone()
		// Recorded states are always unit-norm, matching the reported
		// expectation values.
		_ = s.Normalize()
		tr.rec.States[i] = s
	}
}

// fail wraps err with the trajectory's index and current time.
func (tr *trajectory) fail(err error) *TrajectoryError {
	return &TrajectoryError{Index: tr.idx, Time: tr.t, Err: err}
}
