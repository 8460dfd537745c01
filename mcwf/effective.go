package mcwf

import (
	"fmt"

	"github.com/quanterra/qtraj/hilbert"
)

// EffectiveGenerator holds the non-Hermitian generator of no-jump evolution,
// G = H − (i/2)·Σ_k C_k†C_k, together with the collapse channels it was
// built from. It is immutable and shared read-only by every trajectory.
type EffectiveGenerator struct {
	dim      int
	g        *hilbert.Operator   // H − (i/2)·Σ C†C
	minusIG  *hilbert.Operator   // −i·G, the right-hand-side matrix of dψ/dt
	collapse []*hilbert.Operator // the channels, in caller order
}

// NewEffectiveGenerator builds the effective generator from a Hamiltonian
// and a (possibly empty) list of collapse operators. With no collapse
// operators the generator reduces to H and evolution stays unitary.
//
// Pure function: inputs are not mutated and may be shared. Fails with
// ErrNilHamiltonian, ErrNilCollapse, or ErrDimensionMismatch.
func NewEffectiveGenerator(h *hilbert.Operator, collapse []*hilbert.Operator) (*EffectiveGenerator, error) {
	if h == nil {
		return nil, ErrNilHamiltonian
	}
	d := h.Dim()

	g := h
	for k, c := range collapse {
		if c == nil {
			return nil, fmt.Errorf("%w: channel %d", ErrNilCollapse, k)
		}
		if c.Dim() != d {
			return nil, fmt.Errorf("%w: collapse operator %d has dim %d, hamiltonian has %d",
				ErrDimensionMismatch, k, c.Dim(), d)
		}

		// G ← G − (i/2)·C†C
		cdc, err := c.Dagger().Mul(c)
		if err != nil {
			return nil, err
		}
		g, err = g.AddScaled(complex(0, -0.5), cdc)
		if err != nil {
			return nil, err
		}
	}

	chans := make([]*hilbert.Operator, len(collapse))
	copy(chans, collapse)

	return &EffectiveGenerator{
		dim:      d,
		g:        g,
		minusIG:  g.Scale(complex(0, -1)),
		collapse: chans,
	}, nil
}

// Dim returns the Hilbert-space dimension.
func (eg *EffectiveGenerator) Dim() int { return eg.dim }

// Generator returns G = H − (i/2)·Σ C†C.
func (eg *EffectiveGenerator) Generator() *hilbert.Operator { return eg.g }

// Channels returns the number of collapse channels.
func (eg *EffectiveGenerator) Channels() int { return len(eg.collapse) }

// Channel returns the k-th collapse operator.
func (eg *EffectiveGenerator) Channel(k int) *hilbert.Operator { return eg.collapse[k] }

// Derivative writes dψ/dt = −i·G·ψ into dy. It satisfies ode.Func and is
// safe for concurrent use because the matrix is read-only.
func (eg *EffectiveGenerator) Derivative(_ float64, y, dy []complex128) {
	eg.minusIG.ApplyTo(dy, y)
}
