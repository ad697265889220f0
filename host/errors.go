package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/cwbudde/algo-xcorr/dsp/conv"
)

// Errors returned by coercion and dispatch. Input errors match
// conv.ErrInvalidArgument.
var (
	ErrNotNumeric = fmt.Errorf("host: value is not numeric: %w", conv.ErrInvalidArgument)
	ErrInexact    = fmt.Errorf("host: integer not exactly representable as float64: %w", conv.ErrInvalidArgument)
	ErrNotScalar  = fmt.Errorf("host: expected a single value: %w", conv.ErrInvalidArgument)
	ErrNotString  = fmt.Errorf("host: expected a single string: %w", conv.ErrInvalidArgument)
	ErrArity      = fmt.Errorf("host: wrong number of arguments: %w", conv.ErrInvalidArgument)

	ErrUnknownEntry   = errors.New("host: unknown entry point")
	ErrDuplicateEntry = errors.New("host: entry point already registered")
	ErrInvalidEntry   = errors.New("host: invalid entry point")
)

// Kind classifies an error for hosts that report error categories.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidArgument
	KindResourceExhausted
	KindNotFound
	KindCanceled
	KindInternal
)

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindNotFound:
		return "not_found"
	case KindCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// Classify maps err onto a Kind. A nil error is KindNone.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, conv.ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, conv.ErrResourceExhausted):
		return KindResourceExhausted
	case errors.Is(err, ErrUnknownEntry):
		return KindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
