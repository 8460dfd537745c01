package mcwf

import "math/rand"

// goldenGamma is the 64-bit golden-ratio increment used to decorrelate
// per-trajectory seeds derived from (global seed, trajectory index).
const goldenGamma = 0x9E3779B97F4A7C15

// splitmix64 is the finalizer of the SplitMix64 generator; one application
// is enough to turn structured (seed + k·gamma) inputs into well-mixed
// stream seeds.
func splitmix64(x uint64) uint64 {
	x += goldenGamma
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB

	return x ^ (x >> 31)
}

// newStream returns the independent pseudo-random stream for one trajectory,
// derived deterministically from the global seed and the trajectory index.
// Identical (seed, index) pairs always yield identical streams, which is
// what makes ensemble reruns reproducible regardless of worker scheduling.
func newStream(seed int64, index int) *rand.Rand {
	mixed := splitmix64(uint64(seed) + uint64(index)*goldenGamma)

	return rand.New(rand.NewSource(int64(mixed)))
}

// uniform01Open draws from the open interval (0, 1); the jump-threshold
// comparison ‖ψ‖² ≤ r must never receive an exact 0 or 1.
func uniform01Open(rng *rand.Rand) float64 {
	for {
		u := rng.Float64()
		if u > 0 && u < 1 {
			return u
		}
	}
}
