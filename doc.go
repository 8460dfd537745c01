// Package qtraj simulates open quantum systems by Monte Carlo wavefunction
// sampling — stochastic quantum trajectories whose ensemble average
// reproduces the Lindblad master equation.
//
// 🚀 What is qtraj?
//
//	A small, focused simulation library that brings together:
//		• State & operator primitives: kets, dense complex operators, Kronecker products
//		• Prefab operators: Pauli matrices, ladder and number operators
//		• Adaptive propagation: embedded Dormand–Prince 5(4) for complex ODE systems
//		• Trajectory unraveling: norm-threshold jump detection with bisection refinement
//		• Parallel ensembles: deterministic, seed-reproducible statistics across workers
//		• Reference solutions: dense Lindblad integration and steady-state search
//
// ✨ Why choose qtraj?
//
//   - Reproducible – identical seeds give bit-identical results at any worker count
//   - Memory-light – trajectories cost O(D) state instead of the O(D²) density matrix
//   - Verifiable – every stochastic result can be cross-checked against lindblad
//   - Pure Go – no cgo, no external solver binaries
//
// Under the hood, everything is organized under four subpackages:
//
//	hilbert/  — states, operators, prefab matrices & expectation values
//	ode/      — adaptive Dormand–Prince integration for complex systems
//	mcwf/     — the trajectory solver: jumps, sampling, parallel ensembles
//	lindblad/ — the deterministic master-equation reference solver
//
// Quick sketch of the unraveling:
//
//	|ψ⟩ ──(non-Hermitian drift)──▶ ‖ψ‖² hits threshold r ──▶ jump C_k|ψ⟩, renormalize
//
//	averaging many such runs recovers ρ(t) = E[|ψ⟩⟨ψ|].
//
// Start with mcwf.Solve for stochastic ensembles, or lindblad.MESolve when
// the Hilbert space is small enough for the full density matrix.
//
//	go get github.com/quanterra/qtraj
package qtraj
