// Package hilbert provides the finite-dimensional Hilbert-space primitives
// used throughout qtraj: complex state vectors, immutable complex operators,
// tensor products, and the standard operator vocabulary of quantum optics
// (Pauli matrices, ladder operators, the number operator).
//
// Design:
//
//   - State is a plain []complex128 owned by exactly one computation at a
//     time. Methods that mutate (Normalize, Scale) do so in place; Clone
//     produces an independent copy for hand-off across goroutines.
//   - Operator wraps a gonum mat.CDense and is immutable after construction.
//     All derived operators (Dagger, Mul, Add, Scale, Kron) allocate fresh
//     storage, so a single Operator may be shared read-only across any number
//     of goroutines without locking.
//   - Dimension checks are explicit: constructors and binary operations
//     return ErrDimensionMismatch rather than panicking, so a caller can
//     surface configuration problems before a simulation starts.
//
// Complexity: Apply/ApplyTo are O(D²) for dimension D, Mul and Kron are
// O(D³) and O(D⁴) respectively; all are one-shot setup costs in a typical
// trajectory simulation where D is small.
package hilbert
