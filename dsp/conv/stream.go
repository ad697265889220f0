package conv

import "fmt"

// Stream computes the valid-mode sliding dot product of a signal that
// arrives in chunks of any length.
//
// The last len(kernel)-1 samples are kept between writes, so the outputs of
// all Write calls, concatenated, are bit-identical to Valid applied to the
// concatenated chunks. No output is produced until a full kernel length of
// samples has been seen.
//
// A Stream must not be used by more than one goroutine at a time.
type Stream struct {
	kernel  []float64
	limits  Limits
	history []float64 // at most len(kernel)-1 samples
	window  []float64
	emitted int
}

// NewStream prepares a Stream for kernel. The kernel is copied.
func NewStream(kernel []float64) (*Stream, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	return &Stream{
		kernel:  append([]float64(nil), kernel...),
		limits:  DefaultLimits(),
		history: make([]float64, 0, len(kernel)-1),
	}, nil
}

// KernelLen returns the kernel length.
func (s *Stream) KernelLen() int { return len(s.kernel) }

// Pending returns the number of buffered samples not yet fully consumed.
func (s *Stream) Pending() int { return len(s.history) }

// Emitted returns the number of output samples produced since the last
// Reset.
func (s *Stream) Emitted() int { return s.emitted }

// SetLimits replaces the allocation bound applied to each Write.
func (s *Stream) SetLimits(lim Limits) { s.limits = lim }

// Write consumes chunk and returns the outputs it completes. The result is
// empty, not nil, while fewer than KernelLen samples have been seen. On
// error the stream state is unchanged.
func (s *Stream) Write(chunk []float64) ([]float64, error) {
	k := len(s.kernel)
	total := len(s.history) + len(chunk)
	if total < k {
		s.history = append(s.history, chunk...)
		return []float64{}, nil
	}

	n := total - k + 1
	if err := s.limits.check(n); err != nil {
		return nil, err
	}

	s.window = append(append(s.window[:0], s.history...), chunk...)
	out := make([]float64, n)
	validDirect(out, s.window, s.kernel)

	s.history = append(s.history[:0], s.window[total-(k-1):]...)
	s.emitted += n
	return out, nil
}

// WriteTo consumes chunk and writes the completed outputs into dst, which
// must have length OutputLen(len(chunk)). dst must not overlap chunk.
func (s *Stream) WriteTo(dst, chunk []float64) error {
	n := s.OutputLen(len(chunk))
	if len(dst) != n {
		return fmt.Errorf("%w: expected %d, got %d", ErrLengthMismatch, n, len(dst))
	}
	if overlaps(dst, chunk) {
		return ErrAliasedOutput
	}
	if n == 0 {
		s.history = append(s.history, chunk...)
		return nil
	}

	k := len(s.kernel)
	total := len(s.history) + len(chunk)
	s.window = append(append(s.window[:0], s.history...), chunk...)
	validDirect(dst, s.window, s.kernel)

	s.history = append(s.history[:0], s.window[total-(k-1):]...)
	s.emitted += n
	return nil
}

// OutputLen returns the number of samples a Write of chunkLen samples would
// produce in the current state.
func (s *Stream) OutputLen(chunkLen int) int {
	return max(len(s.history)+chunkLen-len(s.kernel)+1, 0)
}

// Reset discards buffered samples.
func (s *Stream) Reset() {
	s.history = s.history[:0]
	s.emitted = 0
}
