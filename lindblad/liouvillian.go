package lindblad

import (
	"fmt"

	"github.com/quanterra/qtraj/hilbert"
)

// Liouvillian builds the D²×D² superoperator matrix L generating the master
// equation in column-stacking convention, vec(ρ)[j·D+i] = ρ_ij:
//
//	L = −i(I⊗H − Hᵀ⊗I) + Σ_k ( C̄_k⊗C_k − ½ I⊗C_k†C_k − ½ (C_k†C_k)ᵀ⊗I )
//
// Its eigenvalues determine the relaxation rates of the open system; the
// zero eigenvector is the steady state.
func Liouvillian(h *hilbert.Operator, collapse []*hilbert.Operator) (*hilbert.Operator, error) {
	if h == nil {
		return nil, ErrNilHamiltonian
	}
	d := h.Dim()

	id, err := hilbert.Identity(d)
	if err != nil {
		return nil, err
	}

	// Hamiltonian part: −i(I⊗H − Hᵀ⊗I).
	ih, err := hilbert.Kron(id, h)
	if err != nil {
		return nil, err
	}
	hi, err := hilbert.Kron(h.Transpose(), id)
	if err != nil {
		return nil, err
	}
	liou := ih.Scale(complex(0, -1))
	liou, err = liou.AddScaled(complex(0, 1), hi)
	if err != nil {
		return nil, err
	}

	// Dissipators: C̄⊗C − ½ I⊗C†C − ½ (C†C)ᵀ⊗I per channel.
	for k, c := range collapse {
		if c == nil {
			return nil, fmt.Errorf("%w: channel %d", ErrNilCollapse, k)
		}
		if c.Dim() != d {
			return nil, fmt.Errorf("%w: collapse operator %d has dim %d, hamiltonian has %d",
				ErrDimensionMismatch, k, c.Dim(), d)
		}

		jump, err := hilbert.Kron(c.Conj(), c)
		if err != nil {
			return nil, err
		}
		liou, err = liou.Add(jump)
		if err != nil {
			return nil, err
		}

		cdc, err := c.Dagger().Mul(c)
		if err != nil {
			return nil, err
		}
		left, err := hilbert.Kron(id, cdc)
		if err != nil {
			return nil, err
		}
		right, err := hilbert.Kron(cdc.Transpose(), id)
		if err != nil {
			return nil, err
		}
		liou, err = liou.AddScaled(-0.5, left)
		if err != nil {
			return nil, err
		}
		liou, err = liou.AddScaled(-0.5, right)
		if err != nil {
			return nil, err
		}
	}

	return liou, nil
}

// vectorize writes ρ into column-stacking order, vec[j·D+i] = ρ_ij.
func vectorize(rho *hilbert.Operator) []complex128 {
	d := rho.Dim()
	v := make([]complex128, d*d)
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			v[j*d+i] = rho.At(i, j)
		}
	}

	return v
}

// devectorize rebuilds the density operator from a column-stacked vector.
func devectorize(v []complex128, d int) (*hilbert.Operator, error) {
	data := make([]complex128, d*d)
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			data[i*d+j] = v[j*d+i]
		}
	}

	return hilbert.NewOperator(d, data)
}

// traceOfVec returns Tr(ρ) from the column-stacked vector.
func traceOfVec(v []complex128, d int) complex128 {
	var tr complex128
	for i := 0; i < d; i++ {
		tr += v[i*d+i]
	}

	return tr
}

// expectOfVec returns Tr(ρO) = Σ_ij ρ_ij·O_ji from the column-stacked vector.
func expectOfVec(v []complex128, d int, op *hilbert.Operator) complex128 {
	var sum complex128
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			sum += v[j*d+i] * op.At(j, i)
		}
	}

	return sum
}

// Expectation returns the real part of Tr(ρO).
func Expectation(rho, op *hilbert.Operator) (float64, error) {
	if rho == nil || op == nil {
		return 0, ErrNilObservable
	}
	if rho.Dim() != op.Dim() {
		return 0, ErrDimensionMismatch
	}
	prod, err := rho.Mul(op)
	if err != nil {
		return 0, err
	}

	return real(prod.Trace()), nil
}
