package conv

import "fmt"

// DefaultMaxOutputLen bounds the output of Valid and ValidFFT at 64 Mi
// samples (512 MiB of float64).
const DefaultMaxOutputLen = 1 << 26

// Limits bounds the memory a single call may allocate.
type Limits struct {
	// MaxOutputLen is the largest output length accepted. Zero or negative
	// disables the check.
	MaxOutputLen int
}

// LimitOption mutates a Limits value.
type LimitOption func(*Limits)

// DefaultLimits returns the limits used by Valid, ValidFFT and Auto.
func DefaultLimits() Limits {
	return Limits{MaxOutputLen: DefaultMaxOutputLen}
}

// WithMaxOutputLen sets the output length bound. n <= 0 means unbounded.
func WithMaxOutputLen(n int) LimitOption {
	return func(l *Limits) {
		l.MaxOutputLen = n
	}
}

// NewLimits applies zero or more options to DefaultLimits.
func NewLimits(opts ...LimitOption) Limits {
	lim := DefaultLimits()
	for _, opt := range opts {
		if opt != nil {
			opt(&lim)
		}
	}
	return lim
}

func (l Limits) check(n int) error {
	if l.MaxOutputLen > 0 && n > l.MaxOutputLen {
		return fmt.Errorf("%w: %d samples, limit %d", ErrOutputTooLarge, n, l.MaxOutputLen)
	}
	return nil
}
