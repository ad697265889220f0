package testutil

import (
	"math"
	"math/rand"
)

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DeterministicIntegers generates integer-valued samples in [-limit, limit].
// Sums of their products are exact in float64 for moderate lengths, which
// lets tests compare against hand-computed results without tolerance.
func DeterministicIntegers(seed int64, limit, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float64(rng.Intn(2*limit+1) - limit)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Ramp returns 1, 2, ..., n.
func Ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// NaiveValid is a reference valid-mode sliding dot product written
// directly from the definition. It returns nil when the kernel is empty or
// longer than the signal.
func NaiveValid(signal, kernel []float64) []float64 {
	if len(kernel) == 0 || len(signal) < len(kernel) {
		return nil
	}
	out := make([]float64, len(signal)-len(kernel)+1)
	for i := range out {
		var acc float64
		for j := range kernel {
			acc += float64(signal[i+j] * kernel[j])
		}
		out[i] = acc
	}
	return out
}

// Dot returns the left-to-right dot product of a and b over their common length.
func Dot(a, b []float64) float64 {
	var acc float64
	for i := range min(len(a), len(b)) {
		acc += float64(a[i] * b[i])
	}
	return acc
}

// Bits returns the IEEE-754 bit patterns of x.
func Bits(x []float64) []uint64 {
	out := make([]uint64, len(x))
	for i, v := range x {
		out[i] = math.Float64bits(v)
	}
	return out
}
