package mcwf

import "math"

// outcome is one trajectory's report to the ensemble driver: either a
// record or a typed failure, never both.
type outcome struct {
	idx int
	rec *TrajectoryRecord
	err *TrajectoryError
}

// aggregator performs the streaming reduction of per-trajectory expectation
// series into ensemble statistics using Welford's algorithm, so memory stays
// bounded when histories are not retained.
//
// Outcomes may arrive in any completion order, but Welford updates are
// applied strictly in trajectory-index order through a small reorder buffer
// (bounded by the scheduling skew, typically the worker count). This makes
// ensemble statistics bit-identical across reruns with the same seed, not
// merely identical within floating-point reassociation tolerance.
//
// The aggregator is deliberately unexported and consumed by the single
// driver goroutine; serialization is by construction (single-consumer
// channel), not by locking.
type aggregator struct {
	nObs   int
	nTimes int
	keep   bool

	count int           // trajectories folded into mean/m2 so far
	mean  [][]float64   // [obs][time] running mean
	m2    [][]float64   // [obs][time] running sum of squared deviations
	jumps int

	trajectories []*TrajectoryRecord
	failures     []*TrajectoryError

	next    int             // lowest trajectory index not yet applied
	pending map[int]outcome // out-of-order buffer keyed by index
}

func newAggregator(nObs, nTimes int, keep bool) *aggregator {
	a := &aggregator{
		nObs:    nObs,
		nTimes:  nTimes,
		keep:    keep,
		mean:    make([][]float64, nObs),
		m2:      make([][]float64, nObs),
		pending: make(map[int]outcome),
	}
	for o := 0; o < nObs; o++ {
		a.mean[o] = make([]float64, nTimes)
		a.m2[o] = make([]float64, nTimes)
	}

	return a
}

// add buffers one outcome and flushes every contiguous run of indices
// starting at the reduction frontier.
func (a *aggregator) add(oc outcome) {
	a.pending[oc.idx] = oc
	for {
		nextOc, ok := a.pending[a.next]
		if !ok {
			return
		}
		delete(a.pending, a.next)
		a.apply(nextOc)
		a.next++
	}
}

// apply folds a single outcome into the running statistics.
func (a *aggregator) apply(oc outcome) {
	if oc.err != nil {
		a.failures = append(a.failures, oc.err)

		return
	}

	a.count++
	n := float64(a.count)
	for o := 0; o < a.nObs; o++ {
		series := oc.rec.Expectations[o]
		for ti := 0; ti < a.nTimes; ti++ {
			delta := series[ti] - a.mean[o][ti]
			a.mean[o][ti] += delta / n
			a.m2[o][ti] += delta * (series[ti] - a.mean[o][ti])
		}
	}
	a.jumps += len(oc.rec.JumpTimes)

	if a.keep {
		a.trajectories = append(a.trajectories, oc.rec)
	}
}

// finalize returns the ensemble means and, when requested, the standard
// error of the mean. Must be called only after every trajectory is
// accounted for.
func (a *aggregator) finalize(withStdErr bool) (means, stdErrs [][]float64) {
	means = a.mean
	if !withStdErr {
		return means, nil
	}

	stdErrs = make([][]float64, a.nObs)
	for o := 0; o < a.nObs; o++ {
		stdErrs[o] = make([]float64, a.nTimes)
		if a.count < 2 {
			continue
		}
		for ti := 0; ti < a.nTimes; ti++ {
			variance := a.m2[o][ti] / float64(a.count-1)
			stdErrs[o][ti] = math.Sqrt(variance / float64(a.count))
		}
	}

	return means, stdErrs
}
