// Package shuffle provides a uniform Fisher-Yates shuffle with an injectable
// random source so permutation outcomes are reproducible in tests.
package shuffle

import (
	"math/rand"
	"time"
)

// New returns a time-seeded source for production use.
func New() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Slice returns a uniformly random permutation of s as a new slice; s itself
// is never modified. Fisher-Yates: for i from len-1 down to 1, swap i with a
// uniform j in [0,i].
func Slice[T any](rnd *rand.Rand, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
