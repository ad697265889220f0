package conv

import (
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Plans are pooled per FFT size so one-shot ValidFFT calls do not rebuild
// twiddle tables. A plan is owned by one goroutine between Get and Put.
var (
	planPoolsMu sync.RWMutex
	planPools   = make(map[int]*sync.Pool)
)

// Correlator computes valid-mode sliding dot products against a fixed
// kernel using FFT overlap-save. The kernel spectrum is computed once.
//
// Each block of fftSize input samples is transformed, multiplied by the
// spectrum of the reversed kernel and transformed back. The first
// kernelLen-1 samples of every block are circular wrap-around and are
// discarded; the remaining stepSize samples are output positions.
//
// A Correlator holds scratch buffers and must not be used by more than one
// goroutine at a time.
type Correlator struct {
	kernelSpec []complex128
	kernelLen  int
	fftSize    int
	stepSize   int
	limits     Limits

	plan *algofft.Plan[complex128]

	segment  []complex128
	spectrum []complex128
}

// NewCorrelator prepares a Correlator for kernel. blockSize is the minimum
// number of output samples produced per FFT block; 0 picks a size from the
// kernel length.
func NewCorrelator(kernel []float64, blockSize int) (*Correlator, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if blockSize < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlock, blockSize)
	}

	fftSize := autoFFTSize(len(kernel))
	if blockSize > 0 {
		fftSize = max(nextPowerOf2(blockSize+len(kernel)-1), minFFTSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("%w: fft plan of size %d: %w", ErrResourceExhausted, fftSize, err)
	}
	return newCorrelator(kernel, fftSize, plan)
}

func newCorrelator(kernel []float64, fftSize int, plan *algofft.Plan[complex128]) (*Correlator, error) {
	k := len(kernel)
	c := &Correlator{
		kernelSpec: make([]complex128, fftSize),
		kernelLen:  k,
		fftSize:    fftSize,
		stepSize:   fftSize - k + 1,
		limits:     DefaultLimits(),
		plan:       plan,
		segment:    make([]complex128, fftSize),
		spectrum:   make([]complex128, fftSize),
	}

	// Correlation is convolution with the reversed kernel.
	for j, h := range kernel {
		c.segment[k-1-j] = complex(h, 0)
	}
	if err := plan.Forward(c.kernelSpec, c.segment); err != nil {
		return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}
	return c, nil
}

// KernelLen returns the kernel length.
func (c *Correlator) KernelLen() int { return c.kernelLen }

// FFTSize returns the FFT size used internally.
func (c *Correlator) FFTSize() int { return c.fftSize }

// BlockSize returns the number of output samples produced per FFT block.
func (c *Correlator) BlockSize() int { return c.stepSize }

// SetLimits replaces the allocation bound applied by Process.
func (c *Correlator) SetLimits(lim Limits) { c.limits = lim }

// Process returns the valid-mode sliding dot product of signal with the
// kernel. Validation and errors match Valid.
func (c *Correlator) Process(signal []float64) ([]float64, error) {
	n, err := ValidLen(len(signal), c.kernelLen)
	if err != nil {
		return nil, err
	}
	if err := c.limits.check(n); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	if err := c.process(out, signal); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessTo writes the result of Process into dst, which must have length
// len(signal)-KernelLen()+1 and must not overlap signal. It allocates
// nothing. Argument errors leave dst untouched; if an FFT fails part way,
// the blocks before it have already been written.
func (c *Correlator) ProcessTo(dst, signal []float64) error {
	n, err := ValidLen(len(signal), c.kernelLen)
	if err != nil {
		return err
	}
	if len(dst) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrLengthMismatch, n, len(dst))
	}
	if overlaps(dst, signal) {
		return ErrAliasedOutput
	}

	return c.process(dst, signal)
}

func (c *Correlator) process(out, signal []float64) error {
	wrap := c.kernelLen - 1
	for pos := 0; pos < len(out); pos += c.stepSize {
		for i := range c.segment {
			if idx := pos + i; idx < len(signal) {
				c.segment[i] = complex(signal[idx], 0)
			} else {
				c.segment[i] = 0
			}
		}

		if err := c.plan.Forward(c.spectrum, c.segment); err != nil {
			return fmt.Errorf("conv: forward FFT failed: %w", err)
		}
		for i := range c.spectrum {
			c.spectrum[i] *= c.kernelSpec[i]
		}
		if err := c.plan.Inverse(c.segment, c.spectrum); err != nil {
			return fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		count := min(c.stepSize, len(out)-pos)
		for i := 0; i < count; i++ {
			out[pos+i] = real(c.segment[wrap+i])
		}
	}
	return nil
}

// ValidFFT computes the same result as Valid using FFT overlap-save.
// It is faster for long kernels; values agree with Valid to within
// floating-point rounding, not bit for bit.
func ValidFFT(signal, kernel []float64) ([]float64, error) {
	return ValidFFTWithLimits(signal, kernel, DefaultLimits())
}

// ValidFFTWithLimits is ValidFFT with an explicit allocation bound.
func ValidFFTWithLimits(signal, kernel []float64, lim Limits) ([]float64, error) {
	n, err := ValidLen(len(signal), len(kernel))
	if err != nil {
		return nil, err
	}
	if err := lim.check(n); err != nil {
		return nil, err
	}

	// A single block suffices when the whole signal fits.
	fftSize := max(min(autoFFTSize(len(kernel)), nextPowerOf2(len(signal))), defaultFFTSize)

	pool := getPlanPool(fftSize)
	plan, ok := pool.Get().(*algofft.Plan[complex128])
	if !ok || plan == nil {
		return nil, fmt.Errorf("%w: fft plan of size %d unavailable", ErrResourceExhausted, fftSize)
	}
	defer pool.Put(plan)

	c, err := newCorrelator(kernel, fftSize, plan)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	if err := c.process(out, signal); err != nil {
		return nil, err
	}
	return out, nil
}

const (
	minFFTSize     = 16
	defaultFFTSize = 256
)

func autoFFTSize(kernelLen int) int {
	return max(nextPowerOf2(2*kernelLen), defaultFFTSize)
}

// getPlanPool returns the plan pool for fftSize, creating it if needed.
func getPlanPool(fftSize int) *sync.Pool {
	planPoolsMu.RLock()
	pool, ok := planPools[fftSize]
	planPoolsMu.RUnlock()
	if ok {
		return pool
	}

	planPoolsMu.Lock()
	defer planPoolsMu.Unlock()

	// Check again in case another goroutine created it
	if pool, ok := planPools[fftSize]; ok {
		return pool
	}

	pool = &sync.Pool{
		New: func() any {
			plan, err := algofft.NewPlan64(fftSize)
			if err != nil {
				return nil
			}
			return plan
		},
	}
	planPools[fftSize] = pool
	return pool
}
