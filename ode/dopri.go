package ode

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Dormand-Prince 5(4) Butcher tableau. The seventh stage row equals the
// fifth-order solution weights (FSAL), so an accepted step's last evaluation
// is reused as the first evaluation of the next step.
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}

	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}

	// dpE holds the difference between the fifth- and fourth-order weights;
	// contracting the stages with dpE yields the local error estimate.
	dpE = [7]float64{
		71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920,
		-17253.0 / 339200, 22.0 / 525, -1.0 / 40,
	}
)

// Stepper integrates complex systems of a fixed dimension with the
// Dormand-Prince 5(4) pair. A Stepper owns scratch buffers and is therefore
// not safe for concurrent use; create one per goroutine.
type Stepper struct {
	dim  int
	k    [7][]complex128 // stage derivatives
	ytmp []complex128    // stage argument buffer
	ynew []complex128    // fifth-order candidate
	yerr []complex128    // embedded error estimate
}

// NewStepper returns a Stepper for systems of the given dimension.
func NewStepper(dim int) (*Stepper, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dim=%d", ErrDimension, dim)
	}
	s := &Stepper{dim: dim}
	for i := range s.k {
		s.k[i] = make([]complex128, dim)
	}
	s.ytmp = make([]complex128, dim)
	s.ynew = make([]complex128, dim)
	s.yerr = make([]complex128, dim)

	return s, nil
}

// Dim returns the system dimension the stepper was built for.
func (s *Stepper) Dim() int { return s.dim }

// Integrate advances y in place from t to tEnd under dy/dt = f(t, y),
// adapting the step size so the local error estimate stays within the
// configured tolerances. On success y holds the solution at tEnd.
//
// On failure y holds the last accepted state and Statistics.CurrentTime the
// time it corresponds to, so callers can report how far integration got.
func (s *Stepper) Integrate(t, tEnd float64, y []complex128, f Func, cfg Config) (Statistics, error) {
	var stat Statistics
	stat.CurrentTime = t

	if f == nil {
		return stat, ErrNilFunc
	}
	if len(y) != s.dim {
		return stat, fmt.Errorf("%w: have %d, want %d", ErrDimension, len(y), s.dim)
	}
	if err := cfg.Validate(); err != nil {
		return stat, err
	}
	if tEnd < t {
		return stat, fmt.Errorf("%w: t=%g tEnd=%g", ErrBadInterval, t, tEnd)
	}
	if tEnd == t {
		return stat, nil
	}

	maxRejects := cfg.MaxRejects
	if maxRejects <= 0 {
		maxRejects = defaultMaxRejects
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	// 1) Choose the initial step.
	h := cfg.InitialStep
	if h <= 0 {
		h = (tEnd - t) / 100
	}
	h = s.clampStep(h, cfg)

	// 2) Prime the FSAL stage: k[0] = f(t, y).
	f(t, y, s.k[0])
	stat.Evaluations++

	rejects := 0
	for t < tEnd {
		if stat.Steps+stat.Rejected >= maxSteps {
			stat.CurrentTime = t

			return stat, fmt.Errorf("%w: t=%g of tEnd=%g", ErrMaxSteps, t, tEnd)
		}

		// 3) Never step past the end of the interval.
		last := false
		if t+h >= tEnd {
			h = tEnd - t
			last = true
		}

		// 4) Evaluate stages 2..7 of the tableau.
		for i := 1; i < 7; i++ {
			for j := 0; j < s.dim; j++ {
				acc := y[j]
				for l := 0; l < i; l++ {
					if dpA[i][l] != 0 {
						acc += complex(h*dpA[i][l], 0) * s.k[l][j]
					}
				}
				s.ytmp[j] = acc
			}
			f(t+dpC[i]*h, s.ytmp, s.k[i])
			stat.Evaluations++
		}

		// 5) Fifth-order candidate and embedded error estimate.
		//    The seventh stage argument is already the candidate (FSAL row).
		copy(s.ynew, s.ytmp)
		for j := 0; j < s.dim; j++ {
			var e complex128
			for i := 0; i < 7; i++ {
				if dpE[i] != 0 {
					e += complex(h*dpE[i], 0) * s.k[i][j]
				}
			}
			s.yerr[j] = e
		}

		// 6) Weighted RMS error norm against atol + rtol·max(|y|,|ynew|).
		errNorm := s.errorNorm(y, cfg)

		if errNorm <= 1 {
			// 7) Accept: advance time and state, reuse k7 as next k1 (FSAL).
			t += h
			copy(y, s.ynew)
			copy(s.k[0], s.k[6])
			stat.Steps++
			stat.LastStep = h
			rejects = 0

			h = s.nextStep(h, errNorm, cfg)
			if !last && h < cfg.MinStep && cfg.MinStep > 0 {
				stat.CurrentTime = t

				return stat, fmt.Errorf("%w: h=%g at t=%g", ErrStepBelowMin, h, t)
			}
			stat.NextStep = h

			continue
		}

		// 8) Reject: shrink the step and retry from the same point.
		stat.Rejected++
		rejects++
		if rejects > maxRejects {
			stat.CurrentTime = t

			return stat, fmt.Errorf("%w: %d rejections at t=%g", ErrTooManyRejects, rejects, t)
		}
		h = s.nextStep(h, errNorm, cfg)
		if cfg.MinStep > 0 && h < cfg.MinStep {
			stat.CurrentTime = t

			return stat, fmt.Errorf("%w: h=%g at t=%g", ErrStepBelowMin, h, t)
		}
	}

	stat.CurrentTime = t

	return stat, nil
}

// errorNorm computes the scaled RMS norm of the embedded error estimate.
func (s *Stepper) errorNorm(y []complex128, cfg Config) float64 {
	var sum float64
	for j := 0; j < s.dim; j++ {
		sc := cfg.AbsTol + cfg.RelTol*math.Max(cmplx.Abs(y[j]), cmplx.Abs(s.ynew[j]))
		r := cmplx.Abs(s.yerr[j]) / sc
		sum += r * r
	}

	return math.Sqrt(sum / float64(s.dim))
}

// nextStep applies the proportional controller to propose the next step.
func (s *Stepper) nextStep(h, errNorm float64, cfg Config) float64 {
	factor := maxFactor
	if errNorm > 0 {
		factor = safety * math.Pow(errNorm, -0.2)
		if factor < minFactor {
			factor = minFactor
		} else if factor > maxFactor {
			factor = maxFactor
		}
	}

	return s.clampStep(h*factor, cfg)
}

// clampStep enforces the configured step ceiling.
func (s *Stepper) clampStep(h float64, cfg Config) float64 {
	if cfg.MaxStep > 0 && h > cfg.MaxStep {
		return cfg.MaxStep
	}

	return h
}
