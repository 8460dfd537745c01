// This file declares the State vector type, its arithmetic methods,
// and the sentinel errors shared by the hilbert package.
//
// Errors:
//
//	ErrBadDimension      - requested dimension is not positive.
//	ErrBadData           - operator data length does not equal D×D.
//	ErrDimensionMismatch - two objects disagree on Hilbert-space dimension.
//	ErrNilOperator       - operator pointer is nil.
//	ErrEmptyState        - state vector has zero length.
//	ErrZeroNorm          - attempt to normalize a numerically zero vector.
//	ErrBadIndex          - basis index outside [0, D).

package hilbert

import (
	"errors"
	"math"
	"math/cmplx"
)

// Sentinel errors for Hilbert-space operations.
var (
	// ErrBadDimension indicates a non-positive Hilbert-space dimension.
	ErrBadDimension = errors.New("hilbert: dimension must be positive")

	// ErrBadData indicates operator data whose length is not D×D.
	ErrBadData = errors.New("hilbert: operator data length must equal D*D")

	// ErrDimensionMismatch indicates that two operators or an operator and a
	// state disagree on the Hilbert-space dimension.
	ErrDimensionMismatch = errors.New("hilbert: dimension mismatch")

	// ErrNilOperator indicates a nil *Operator argument.
	ErrNilOperator = errors.New("hilbert: operator is nil")

	// ErrEmptyState indicates a zero-length state vector.
	ErrEmptyState = errors.New("hilbert: state is empty")

	// ErrZeroNorm indicates an attempt to normalize a vector whose norm is
	// numerically zero.
	ErrZeroNorm = errors.New("hilbert: cannot normalize zero-norm state")

	// ErrBadIndex indicates a basis index outside the valid range [0, D).
	ErrBadIndex = errors.New("hilbert: basis index out of range")
)

// zeroNormTol is the squared-norm threshold below which a vector is treated
// as numerically zero for normalization purposes.
const zeroNormTol = 1e-300

// State is a complex amplitude vector over a fixed D-dimensional basis.
//
// A State is owned by exactly one computation at a time; use Clone before
// handing a copy to another goroutine. Between collapse events the norm of a
// trajectory state decays below one; Normalize restores unit norm in place.
type State []complex128

// NewState returns a zero State of dimension d.
func NewState(d int) (State, error) {
	if d <= 0 {
		return nil, ErrBadDimension
	}

	return make(State, d), nil
}

// BasisState returns the computational basis vector |i⟩ in dimension d.
func BasisState(d, i int) (State, error) {
	if d <= 0 {
		return nil, ErrBadDimension
	}
	if i < 0 || i >= d {
		return nil, ErrBadIndex
	}
	s := make(State, d)
	s[i] = 1

	return s, nil
}

// Dim returns the Hilbert-space dimension of s.
func (s State) Dim() int { return len(s) }

// Clone returns an independent copy of s.
func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)

	return c
}

// CopyFrom overwrites s with the amplitudes of src. Both vectors must have
// the same dimension; the shorter prefix is copied otherwise.
func (s State) CopyFrom(src State) {
	copy(s, src)
}

// Norm2 returns the squared Euclidean norm ⟨s|s⟩ as a real number.
func (s State) Norm2() float64 {
	var sum float64
	for _, v := range s {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}

	return sum
}

// Norm returns the Euclidean norm ‖s‖.
func (s State) Norm() float64 { return math.Sqrt(s.Norm2()) }

// Dot returns the inner product ⟨s|other⟩ = Σ conj(s_i)·other_i.
// Returns ErrDimensionMismatch if the dimensions disagree.
func (s State) Dot(other State) (complex128, error) {
	if len(s) != len(other) {
		return 0, ErrDimensionMismatch
	}
	var sum complex128
	for i, v := range s {
		sum += cmplx.Conj(v) * other[i]
	}

	return sum, nil
}

// Scale multiplies every amplitude by f in place.
func (s State) Scale(f complex128) {
	for i := range s {
		s[i] *= f
	}
}

// Normalize rescales s to unit norm in place.
// Returns ErrZeroNorm when the vector is numerically zero.
func (s State) Normalize() error {
	n2 := s.Norm2()
	if n2 < zeroNormTol {
		return ErrZeroNorm
	}
	inv := complex(1/math.Sqrt(n2), 0)
	s.Scale(inv)

	return nil
}

// IsValid reports whether every amplitude is finite (no NaN or Inf).
func (s State) IsValid() bool {
	for _, v := range s {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}

	return true
}
