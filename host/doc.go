// Package host is the boundary between dynamically typed callers and the
// numeric kernels.
//
// Callers that hold loosely typed values (decoded JSON, JavaScript arrays,
// command-line arguments) invoke named entry points through a [Registry]:
//
//	reg, err := host.Default()
//	out, err := reg.Call(ctx, "convolve", []any{1, 2, 3, 4, 5}, []int{1, 0})
//
// Arguments are coerced to float64 sequences by [ToFloat64s] before the
// kernel sees them; anything that is not exactly representable as a real
// number is rejected. Errors carry a [Kind] obtained with [Classify] so a
// caller can map them onto its own error-reporting mechanism.
//
// The builtin entry points are hello, add, convolve, convolve_fft and
// device_info. None of them write to process-wide streams: hello returns
// its greeting instead of printing it.
package host
