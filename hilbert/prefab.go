// This file provides the prefabricated operators every open-system model is
// assembled from: identity, the Pauli matrices, the two-level raising and
// lowering operators, and the harmonic-oscillator ladder and number
// operators. All constructors return fresh immutable operators.

package hilbert

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Identity returns the D×D identity operator.
func Identity(d int) (*Operator, error) {
	if d <= 0 {
		return nil, ErrBadDimension
	}
	out := mat.NewCDense(d, d, nil)
	for i := 0; i < d; i++ {
		out.Set(i, i, 1)
	}

	return wrap(d, out), nil
}

// PauliX returns σx on a two-level system.
func PauliX() *Operator {
	op, _ := NewOperator(2, []complex128{
		0, 1,
		1, 0,
	})

	return op
}

// PauliY returns σy on a two-level system.
func PauliY() *Operator {
	op, _ := NewOperator(2, []complex128{
		0, complex(0, -1),
		complex(0, 1), 0,
	})

	return op
}

// PauliZ returns σz on a two-level system, with |0⟩ the +1 eigenstate.
func PauliZ() *Operator {
	op, _ := NewOperator(2, []complex128{
		1, 0,
		0, -1,
	})

	return op
}

// SigmaMinus returns the two-level lowering operator σ⁻ = |1⟩⟨0⟩ mapping the
// excited state |0⟩ to the ground state |1⟩ in the PauliZ eigenbasis.
func SigmaMinus() *Operator {
	op, _ := NewOperator(2, []complex128{
		0, 0,
		1, 0,
	})

	return op
}

// SigmaPlus returns the two-level raising operator σ⁺ = (σ⁻)†.
func SigmaPlus() *Operator {
	return SigmaMinus().Dagger()
}

// Destroy returns the harmonic-oscillator annihilation operator a truncated
// to a D-dimensional Fock space: a|n⟩ = √n |n−1⟩.
func Destroy(d int) (*Operator, error) {
	if d <= 0 {
		return nil, ErrBadDimension
	}
	out := mat.NewCDense(d, d, nil)
	for n := 1; n < d; n++ {
		out.Set(n-1, n, complex(math.Sqrt(float64(n)), 0))
	}

	return wrap(d, out), nil
}

// Create returns the creation operator a† on a D-dimensional Fock space.
func Create(d int) (*Operator, error) {
	a, err := Destroy(d)
	if err != nil {
		return nil, err
	}

	return a.Dagger(), nil
}

// Number returns the number operator a†a on a D-dimensional Fock space.
func Number(d int) (*Operator, error) {
	if d <= 0 {
		return nil, ErrBadDimension
	}
	out := mat.NewCDense(d, d, nil)
	for n := 0; n < d; n++ {
		out.Set(n, n, complex(float64(n), 0))
	}

	return wrap(d, out), nil
}
