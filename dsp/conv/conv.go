package conv

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrInvalidArgument   = errors.New("conv: invalid argument")
	ErrResourceExhausted = errors.New("conv: resource exhausted")
)

// Errors returned by the sliding-window functions.
var (
	ErrEmptySignal    = invalidArgument("conv: empty signal")
	ErrEmptyKernel    = invalidArgument("conv: empty kernel")
	ErrKernelTooLong  = invalidArgument("conv: signal length must be >= kernel length")
	ErrLengthMismatch = invalidArgument("conv: buffer length mismatch")
	ErrAliasedOutput  = invalidArgument("conv: output overlaps an input")
	ErrInvalidBlock   = invalidArgument("conv: invalid block size")
	ErrOutputTooLarge = resourceExhausted("conv: output exceeds allocation limit")
)

// kindError is a sentinel that also matches its kind.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func invalidArgument(msg string) error {
	return &kindError{msg: msg, kind: ErrInvalidArgument}
}

func resourceExhausted(msg string) error {
	return &kindError{msg: msg, kind: ErrResourceExhausted}
}

// vectorThreshold is the kernel length from which the inner products are
// formed with vecmath.MulBlock. Both paths round every product before
// accumulation, so they produce identical bits.
const vectorThreshold = 16

// ValidLen returns the valid-mode output length n-k+1 for a signal of n
// samples and a kernel of k taps, or the error Valid would report.
func ValidLen(n, k int) (int, error) {
	if k <= 0 {
		return 0, ErrEmptyKernel
	}
	if n <= 0 {
		return 0, ErrEmptySignal
	}
	if n < k {
		return 0, fmt.Errorf("%w: signal %d, kernel %d", ErrKernelTooLong, n, k)
	}
	return n - k + 1, nil
}

// Valid computes the valid-mode sliding dot product of signal and kernel:
//
//	out[i] = sum(signal[i+j] * kernel[j]) for j in [0, len(kernel))
//
// for every i in [0, len(signal)-len(kernel)]. The kernel is not reversed, so
// this is cross-correlation in the signal-processing sense.
//
// Each position is accumulated left to right with every product rounded to
// float64 first, so repeated calls return bit-identical results on every
// platform. The output is freshly allocated and never aliases the inputs.
// On error the returned slice is nil.
func Valid(signal, kernel []float64) ([]float64, error) {
	return ValidWithLimits(signal, kernel, DefaultLimits())
}

// ValidWithLimits is Valid with an explicit allocation bound.
func ValidWithLimits(signal, kernel []float64, lim Limits) ([]float64, error) {
	n, err := ValidLen(len(signal), len(kernel))
	if err != nil {
		return nil, err
	}
	if err := lim.check(n); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	validDirect(out, signal, kernel)
	return out, nil
}

// ValidTo writes the valid-mode sliding dot product into dst.
// dst must have length len(signal)-len(kernel)+1 and must not share memory
// with signal or kernel. dst is left untouched on error.
func ValidTo(dst, signal, kernel []float64) error {
	n, err := ValidLen(len(signal), len(kernel))
	if err != nil {
		return err
	}
	if len(dst) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrLengthMismatch, n, len(dst))
	}
	if overlaps(dst, signal) || overlaps(dst, kernel) {
		return ErrAliasedOutput
	}

	validDirect(dst, signal, kernel)
	return nil
}

// Auto computes the same result as Valid, switching to FFT-based
// computation for kernels longer than 64 taps. FFT results agree with Valid
// to within rounding error only.
func Auto(signal, kernel []float64) ([]float64, error) {
	const directThreshold = 64
	if len(kernel) <= directThreshold {
		return Valid(signal, kernel)
	}
	return ValidFFT(signal, kernel)
}

func validDirect(dst, signal, kernel []float64) {
	if len(kernel) >= vectorThreshold {
		validVector(dst, signal, kernel)
	} else {
		validScalar(dst, signal, kernel)
	}
}

// validScalar is the reference loop. The float64 conversion keeps the
// compiler from fusing the multiply and add.
func validScalar(dst, signal, kernel []float64) {
	k := len(kernel)
	for i := range dst {
		window := signal[i : i+k]
		var acc float64
		for j, h := range kernel {
			acc += float64(window[j] * h)
		}
		dst[i] = acc
	}
}

// validVector forms the products of each window with vecmath.MulBlock and
// sums them in index order.
func validVector(dst, signal, kernel []float64) {
	k := len(kernel)
	products := make([]float64, k)
	for i := range dst {
		vecmath.MulBlock(products, signal[i:i+k], kernel)
		var acc float64
		for _, p := range products {
			acc += p
		}
		dst[i] = acc
	}
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
