package mcwf

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quanterra/qtraj/hilbert"
	"github.com/quanterra/qtraj/ode"
)

// runConfig is the fully validated input of an ensemble run; Solve builds
// it once, before any worker starts.
type runConfig struct {
	gen     *EffectiveGenerator
	psi0    hilbert.State
	times   []float64
	obs     []*hilbert.Operator
	nTraj   int
	seed    int64
	odeCfg  ode.Config
	jumpRes float64
	opts    Options
}

// runEnsemble dispatches nTraj independent trajectories across a bounded
// worker pool and reduces their reports into a Result.
//
// Concurrency contract: workers share only the immutable generator and
// observables; each trajectory owns its state, stepper, and RNG stream.
// All reduction happens on this goroutine, fed by a single outcome channel.
func runEnsemble(cfg *runConfig) (*Result, error) {
	runID := uuid.NewString()
	log := cfg.opts.Logger.With().
		Str("component", "mcwf").
		Str("run_id", runID).
		Logger()

	base := cfg.opts.Context
	if base == nil {
		base = context.Background()
	}
	var ctx context.Context
	var cancel context.CancelFunc
	if cfg.opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(base, cfg.opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(base)
	}
	defer cancel()

	workers := cfg.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.nTraj {
		workers = cfg.nTraj
	}

	log.Info().
		Int("trajectories", cfg.nTraj).
		Int("workers", workers).
		Int("dim", cfg.gen.Dim()).
		Int("channels", cfg.gen.Channels()).
		Int64("seed", cfg.seed).
		Msg("ensemble run starting")

	started := time.Now()

	// Every index is queued up front so a timeout can never wedge the
	// feeder: cancelled workers drain the queue reporting ErrCancelled.
	jobs := make(chan int, cfg.nTraj)
	for i := 0; i < cfg.nTraj; i++ {
		jobs <- i
	}
	close(jobs)

	outcomes := make(chan outcome, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, cfg, jobs, outcomes)
		}()
	}
	go func() {
		wg.Wait()
		close(outcomes)
	}()

	agg := newAggregator(len(cfg.obs), len(cfg.times), cfg.opts.KeepStates)
	completed := 0
	for oc := range outcomes {
		agg.add(oc)
		completed++

		if oc.err != nil {
			log.Debug().
				Int("trajectory", oc.err.Index).
				Float64("at", oc.err.Time).
				Err(oc.err.Err).
				Msg("trajectory failed")
		} else {
			log.Debug().
				Int("trajectory", oc.rec.Index).
				Int("jumps", len(oc.rec.JumpTimes)).
				Msg("trajectory completed")
		}
		if cfg.opts.Progress != nil {
			cfg.opts.Progress(completed, cfg.nTraj)
		}
	}

	means, stdErrs := agg.finalize(cfg.opts.StandardError)
	res := &Result{
		RunID:        runID,
		Times:        cfg.times,
		Means:        means,
		StdErrs:      stdErrs,
		Trajectories: agg.trajectories,
		Failures:     agg.failures,
		Requested:    cfg.nTraj,
		Succeeded:    cfg.nTraj - len(agg.failures),
		Jumps:        agg.jumps,
	}

	log.Info().
		Int("succeeded", res.Succeeded).
		Int("failed", len(res.Failures)).
		Int("jumps", res.Jumps).
		Dur("elapsed", time.Since(started)).
		Msg("ensemble run finished")

	if res.SuccessFraction() < cfg.opts.MinSuccessFraction {
		return res, fmt.Errorf("%w: %d of %d trajectories succeeded, need fraction %g",
			ErrEnsembleFailure, res.Succeeded, res.Requested, cfg.opts.MinSuccessFraction)
	}

	return res, nil
}

// worker consumes trajectory indices until the queue drains, reporting one
// outcome per index. A worker owns one stepper, reused across trajectories.
func worker(ctx context.Context, cfg *runConfig, jobs <-chan int, outcomes chan<- outcome) {
	stepper, err := ode.NewStepper(cfg.gen.Dim())
	if err != nil {
		// Dimension was validated at setup; surface the impossible case as
		// per-index failures rather than dropping outcomes.
		for idx := range jobs {
			outcomes <- outcome{idx: idx, err: &TrajectoryError{Index: idx, Err: err}}
		}

		return
	}

	for idx := range jobs {
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcomes <- outcome{idx: idx, err: &TrajectoryError{
				Index: idx,
				Time:  cfg.times[0],
				Err:   fmt.Errorf("%w: %v", ErrCancelled, ctxErr),
			}}

			continue
		}

		tr := newTrajectory(idx, cfg.gen, cfg.psi0, cfg.times, cfg.obs,
			stepper, cfg.odeCfg, cfg.seed, cfg.jumpRes, cfg.opts.KeepStates)
		rec, runErr := tr.run(ctx)
		if runErr != nil {
			var te *TrajectoryError
			if !errors.As(runErr, &te) {
				te = &TrajectoryError{Index: idx, Err: runErr}
			}
			outcomes <- outcome{idx: idx, err: te}

			continue
		}
		outcomes <- outcome{idx: idx, rec: rec}
	}
}
