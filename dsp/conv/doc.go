// Package conv provides an allocation-bounded valid-mode sliding dot product.
//
// The operation goes by "convolve" in the bindings this package serves, but
// the kernel is never reversed:
//
//	out[i] = signal[i]*kernel[0] + signal[i+1]*kernel[1] + ... + signal[i+k-1]*kernel[k-1]
//
// Only positions where the kernel fully overlaps the signal are produced, so
// the output has len(signal)-len(kernel)+1 samples.
//
// # Usage
//
// For one-shot computation, use the simple functions:
//
//	out, err := conv.Valid(signal, kernel)     // Direct, bit-exact
//	out, err := conv.ValidFFT(signal, kernel)  // FFT overlap-save
//	out, err := conv.Auto(signal, kernel)      // Direct up to 64 taps, FFT above
//
// For repeated computation with the same kernel, create a reusable correlator:
//
//	c, err := conv.NewCorrelator(kernel, blockSize)
//	out, err := c.Process(signal)
//
// For a signal that arrives in pieces, a Stream keeps the last
// len(kernel)-1 samples between writes and returns each output as soon as
// its window is complete:
//
//	s, err := conv.NewStream(kernel)
//	out, err := s.Write(chunk)
//
// # Numeric contract
//
// Valid, ValidTo, ValidT and Stream accumulate each output left to right and round
// every product before adding it. Identical inputs give identical bits on
// every call and platform, and the vectorised inner loop used for long
// kernels matches the scalar loop exactly.
//
// # Errors
//
// All errors match either [ErrInvalidArgument] (bad input shape, detected
// before any allocation) or [ErrResourceExhausted] (output larger than the
// configured [Limits], or an FFT plan that could not be built). No partial
// output is ever returned.
//
// Empty signals and empty kernels are rejected with [ErrEmptySignal] and
// [ErrEmptyKernel].
package conv
