package shuffle

import (
	"math/rand"
	"testing"
)

func TestSliceIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	input := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	out := Slice(rnd, input)

	if len(out) != len(input) {
		t.Fatalf("expected length %d, got %d", len(input), len(out))
	}
	seen := make(map[int]int)
	for _, v := range out {
		seen[v]++
	}
	for _, v := range input {
		if seen[v] != 1 {
			t.Fatalf("expected %d exactly once, got %d", v, seen[v])
		}
	}
}

func TestSliceLeavesInputUnmodified(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	input := []string{"a", "b", "c", "d"}

	// Shuffle until the output differs, then check the input is intact.
	for i := 0; i < 50; i++ {
		Slice(rnd, input)
	}
	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if input[i] != want[i] {
			t.Fatalf("input modified at %d: got %q", i, input[i])
		}
	}
}

func TestSliceIsReproducibleWithSeed(t *testing.T) {
	input := []int{1, 2, 3, 4, 5}

	first := Slice(rand.New(rand.NewSource(42)), input)
	second := Slice(rand.New(rand.NewSource(42)), input)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestSliceEmptyAndSingle(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	if out := Slice(rnd, []int{}); len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
	if out := Slice(rnd, []int{7}); len(out) != 1 || out[0] != 7 {
		t.Fatalf("expected [7], got %v", out)
	}
}
