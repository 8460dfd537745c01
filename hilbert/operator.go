// This file implements the immutable Operator type over gonum's complex
// dense matrix, together with the linear-algebra operations the trajectory
// engine needs: adjoint, product, linear combination, tensor product,
// matrix-vector application, and expectation values.

package hilbert

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// Operator is an immutable complex D×D matrix acting on a D-dimensional
// Hilbert space. Operators are safe for concurrent read-only use; every
// derived operator allocates fresh storage.
type Operator struct {
	d      int             // Hilbert-space dimension
	m      *mat.CDense     // backing matrix, never mutated after construction
	data   []complex128    // raw row-major view into m for fast matvec
	stride int             // row stride of data
}

// wrap finalizes a freshly built CDense into an immutable Operator,
// caching the raw storage view used by ApplyTo.
func wrap(d int, m *mat.CDense) *Operator {
	raw := m.RawCMatrix()

	return &Operator{d: d, m: m, data: raw.Data, stride: raw.Stride}
}

// NewOperator builds a D×D operator from row-major data. The slice is
// copied; the caller retains ownership of data.
//
// Returns ErrBadDimension if d ≤ 0 and ErrBadData if len(data) ≠ d·d.
func NewOperator(d int, data []complex128) (*Operator, error) {
	if d <= 0 {
		return nil, ErrBadDimension
	}
	if len(data) != d*d {
		return nil, ErrBadData
	}
	buf := make([]complex128, d*d)
	copy(buf, data)

	return wrap(d, mat.NewCDense(d, d, buf)), nil
}

// Zero returns the D×D zero operator.
func Zero(d int) (*Operator, error) {
	if d <= 0 {
		return nil, ErrBadDimension
	}

	return wrap(d, mat.NewCDense(d, d, nil)), nil
}

// Dim returns the Hilbert-space dimension D.
func (o *Operator) Dim() int { return o.d }

// At returns the matrix element ⟨i|O|j⟩.
func (o *Operator) At(i, j int) complex128 { return o.m.At(i, j) }

// Matrix returns a read-only view of the backing gonum matrix.
// Callers must not type-assert and mutate it.
func (o *Operator) Matrix() mat.CMatrix { return o.m }

// Dagger returns the conjugate transpose O†.
func (o *Operator) Dagger() *Operator {
	out := mat.NewCDense(o.d, o.d, nil)
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			out.Set(j, i, cmplx.Conj(o.m.At(i, j)))
		}
	}

	return wrap(o.d, out)
}

// Mul returns the matrix product O·B.
// Returns ErrNilOperator or ErrDimensionMismatch on invalid input.
func (o *Operator) Mul(b *Operator) (*Operator, error) {
	if b == nil {
		return nil, ErrNilOperator
	}
	if o.d != b.d {
		return nil, ErrDimensionMismatch
	}
	out := mat.NewCDense(o.d, o.d, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, o.m.RawCMatrix(), b.m.RawCMatrix(), 0, out.RawCMatrix())

	return wrap(o.d, out), nil
}

// Add returns the sum O + B.
func (o *Operator) Add(b *Operator) (*Operator, error) {
	if b == nil {
		return nil, ErrNilOperator
	}
	if o.d != b.d {
		return nil, ErrDimensionMismatch
	}
	out := mat.NewCDense(o.d, o.d, nil)
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			out.Set(i, j, o.m.At(i, j)+b.m.At(i, j))
		}
	}

	return wrap(o.d, out), nil
}

// AddScaled returns O + f·B, the workhorse for assembling Hamiltonians and
// effective generators without intermediate allocations at call sites.
func (o *Operator) AddScaled(f complex128, b *Operator) (*Operator, error) {
	if b == nil {
		return nil, ErrNilOperator
	}
	if o.d != b.d {
		return nil, ErrDimensionMismatch
	}
	out := mat.NewCDense(o.d, o.d, nil)
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			out.Set(i, j, o.m.At(i, j)+f*b.m.At(i, j))
		}
	}

	return wrap(o.d, out), nil
}

// Scale returns f·O.
func (o *Operator) Scale(f complex128) *Operator {
	out := mat.NewCDense(o.d, o.d, nil)
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			out.Set(i, j, f*o.m.At(i, j))
		}
	}

	return wrap(o.d, out)
}

// Transpose returns the plain (non-conjugated) transpose Oᵀ.
func (o *Operator) Transpose() *Operator {
	out := mat.NewCDense(o.d, o.d, nil)
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			out.Set(j, i, o.m.At(i, j))
		}
	}

	return wrap(o.d, out)
}

// Conj returns the element-wise complex conjugate Ō.
func (o *Operator) Conj() *Operator {
	out := mat.NewCDense(o.d, o.d, nil)
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			out.Set(i, j, cmplx.Conj(o.m.At(i, j)))
		}
	}

	return wrap(o.d, out)
}

// Kron returns the tensor (Kronecker) product A ⊗ B of dimension
// A.Dim()·B.Dim().
func Kron(a, b *Operator) (*Operator, error) {
	if a == nil || b == nil {
		return nil, ErrNilOperator
	}
	da, db := a.d, b.d
	d := da * db
	out := mat.NewCDense(d, d, nil)
	for i := 0; i < da; i++ {
		for j := 0; j < da; j++ {
			aij := a.m.At(i, j)
			if aij == 0 {
				continue
			}
			for k := 0; k < db; k++ {
				for l := 0; l < db; l++ {
					out.Set(i*db+k, j*db+l, aij*b.m.At(k, l))
				}
			}
		}
	}

	return wrap(d, out), nil
}

// ApplyTo writes O·psi into dst without allocating. dst and psi must both
// have dimension O.Dim() and must not alias each other; the caller is
// responsible for both (hot-path contract, validated by Apply).
func (o *Operator) ApplyTo(dst, psi State) {
	for i := 0; i < o.d; i++ {
		row := o.data[i*o.stride : i*o.stride+o.d]
		var sum complex128
		for j, a := range row {
			sum += a * psi[j]
		}
		dst[i] = sum
	}
}

// Apply returns O·psi as a fresh State.
// Returns ErrDimensionMismatch if psi has the wrong dimension.
func (o *Operator) Apply(psi State) (State, error) {
	if len(psi) != o.d {
		return nil, ErrDimensionMismatch
	}
	dst := make(State, o.d)
	o.ApplyTo(dst, psi)

	return dst, nil
}

// Expectation returns ⟨ψ|O|ψ⟩ / ⟨ψ|ψ⟩, i.e. the expectation value against
// the renormalized state, so sub-normalized trajectory states report
// unbiased values. Returns ErrDimensionMismatch or ErrZeroNorm.
func (o *Operator) Expectation(psi State) (complex128, error) {
	if len(psi) != o.d {
		return 0, ErrDimensionMismatch
	}
	n2 := psi.Norm2()
	if n2 < zeroNormTol {
		return 0, ErrZeroNorm
	}
	tmp := make(State, o.d)
	o.ApplyTo(tmp, psi)
	num, err := psi.Dot(tmp)
	if err != nil {
		return 0, err
	}

	return num / complex(n2, 0), nil
}

// Outer returns the projector |ψ⟩⟨ψ| as an operator (a pure density matrix
// when ψ is normalized).
func Outer(psi State) (*Operator, error) {
	d := len(psi)
	if d == 0 {
		return nil, ErrEmptyState
	}
	out := mat.NewCDense(d, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, psi[i]*cmplx.Conj(psi[j]))
		}
	}

	return wrap(d, out), nil
}

// Trace returns Tr(O).
func (o *Operator) Trace() complex128 {
	var tr complex128
	for i := 0; i < o.d; i++ {
		tr += o.m.At(i, i)
	}

	return tr
}

// IsHermitian reports whether O equals O† within tol element-wise.
func (o *Operator) IsHermitian(tol float64) bool {
	for i := 0; i < o.d; i++ {
		for j := i; j < o.d; j++ {
			if cmplx.Abs(o.m.At(i, j)-cmplx.Conj(o.m.At(j, i))) > tol {
				return false
			}
		}
	}

	return true
}

// EqualApprox reports whether O and B agree element-wise within tol.
func (o *Operator) EqualApprox(b *Operator, tol float64) bool {
	if b == nil || o.d != b.d {
		return false
	}
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			if cmplx.Abs(o.m.At(i, j)-b.m.At(i, j)) > tol {
				return false
			}
		}
	}

	return true
}

// MaxAbsDiff returns the largest element-wise |O_ij − B_ij|, or math.Inf(1)
// when dimensions disagree. Used by fixed-point convergence checks.
func (o *Operator) MaxAbsDiff(b *Operator) float64 {
	if b == nil || o.d != b.d {
		return math.Inf(1)
	}
	var maxDiff float64
	for i := 0; i < o.d; i++ {
		for j := 0; j < o.d; j++ {
			if d := cmplx.Abs(o.m.At(i, j) - b.m.At(i, j)); d > maxDiff {
				maxDiff = d
			}
		}
	}

	return maxDiff
}
