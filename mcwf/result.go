package mcwf

import "github.com/quanterra/qtraj/hilbert"

// TrajectoryRecord is the full history of one stochastic realization:
// expectation values at every output time, the jump events that occurred,
// and (when states are kept) the normalized state at each output time.
type TrajectoryRecord struct {
	// Index is the trajectory's position within the ensemble; records are
	// index-stable across reruns with the same seed.
	Index int

	// Expectations holds, per observable, the real expectation value at
	// each output time, always computed against the renormalized state.
	Expectations [][]float64

	// States holds the normalized state at each output time. Nil unless the
	// run was configured with WithKeepStates.
	States []hilbert.State

	// JumpTimes lists the located collapse times, in order.
	JumpTimes []float64

	// JumpChannels lists, parallel to JumpTimes, the index of the collapse
	// channel that fired.
	JumpChannels []int
}

// Result is the outcome of an ensemble run. It always reports both
// successes and failures, so callers can distinguish a degraded-but-usable
// run from an outright EnsembleFailure.
type Result struct {
	// RunID uniquely identifies this run in logs; it does not affect any
	// numerical output.
	RunID string

	// Times echoes the requested output times.
	Times []float64

	// Means holds, per observable, the ensemble-averaged expectation value
	// at each output time, averaged over successful trajectories only.
	Means [][]float64

	// StdErrs holds, per observable, the standard error of the mean at each
	// output time. Nil unless WithStandardError was set; zero-valued when
	// fewer than two trajectories succeeded.
	StdErrs [][]float64

	// Trajectories holds the per-trajectory records of successful
	// trajectories, ordered by index. Nil unless WithKeepStates was set.
	Trajectories []*TrajectoryRecord

	// Failures lists every failed trajectory with its cause, ordered by
	// index.
	Failures []*TrajectoryError

	// Requested and Succeeded count all and successful trajectories.
	Requested int
	Succeeded int

	// Jumps is the total number of collapse events across successful
	// trajectories.
	Jumps int
}

// SuccessFraction returns Succeeded/Requested.
func (r *Result) SuccessFraction() float64 {
	if r.Requested == 0 {
		return 0
	}

	return float64(r.Succeeded) / float64(r.Requested)
}
