package lindblad_test

import (
	"fmt"
	"math"

	"github.com/quanterra/qtraj/hilbert"
	"github.com/quanterra/qtraj/lindblad"
)

// ExampleMESolve integrates two-level amplitude damping; ⟨σz⟩ follows
// 2·exp(−γt) − 1 exactly.
func ExampleMESolve() {
	h, _ := hilbert.NewOperator(2, []complex128{0, 0, 0, 1})
	c := hilbert.SigmaMinus().Scale(complex(math.Sqrt(0.5), 0))
	excited, _ := hilbert.BasisState(2, 0)
	rho0, _ := hilbert.Outer(excited)

	sol, err := lindblad.MESolve(h, []*hilbert.Operator{c}, rho0,
		[]float64{0, 2}, []*hilbert.Operator{hilbert.PauliZ()})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("t=0 ⟨σz⟩=%.3f\n", sol.Expectations[0][0])
	fmt.Printf("t=2 ⟨σz⟩=%.3f\n", sol.Expectations[0][1])
	// Output:
	// t=0 ⟨σz⟩=1.000
	// t=2 ⟨σz⟩=-0.264
}

// ExampleSteadyState finds the attracting fixed point of pure damping: the
// ground state.
func ExampleSteadyState() {
	h, _ := hilbert.NewOperator(2, []complex128{0, 0, 0, 1})
	c := hilbert.SigmaMinus()

	rho, _ := lindblad.SteadyState(h, []*hilbert.Operator{c})
	fmt.Printf("ground population %.2f\n", real(rho.At(1, 1)))
	// Output:
	// ground population 1.00
}
