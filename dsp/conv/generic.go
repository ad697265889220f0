package conv

import (
	algofft "github.com/MeKo-Christian/algo-fft"
)

// ValidT is the generic form of Valid. Products and sums are rounded to F,
// so ValidT[float64] returns the same bits as Valid.
func ValidT[F algofft.Float](signal, kernel []F) ([]F, error) {
	n, err := ValidLen(len(signal), len(kernel))
	if err != nil {
		return nil, err
	}
	if err := DefaultLimits().check(n); err != nil {
		return nil, err
	}

	k := len(kernel)
	out := make([]F, n)
	for i := range out {
		window := signal[i : i+k]
		var acc F
		for j, h := range kernel {
			acc += F(window[j] * h)
		}
		out[i] = acc
	}
	return out, nil
}

// Valid32 is the float32 specialization of ValidT.
func Valid32(signal, kernel []float32) ([]float32, error) {
	return ValidT(signal, kernel)
}
