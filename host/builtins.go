package host

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/cwbudde/algo-xcorr/dsp/conv"
	"github.com/cwbudde/algo-xcorr/internal/cpu"
)

// Greeting is the prefix hello puts in front of its message.
const Greeting = "Hello from algo-xcorr: "

// DeviceInfo describes the machine the kernels run on.
type DeviceInfo struct {
	ID        string   `json:"id" yaml:"id"`
	OS        string   `json:"os" yaml:"os"`
	Arch      string   `json:"arch" yaml:"arch"`
	CPUs      int      `json:"cpus" yaml:"cpus"`
	GoVersion string   `json:"go_version" yaml:"go_version"`
	SIMD      string   `json:"simd" yaml:"simd"`
	Features  []string `json:"features" yaml:"features"`
}

// Default returns a Registry holding the builtin entry points.
func Default(opts ...RegistryOption) (*Registry, error) {
	r := NewRegistry(opts...)
	for _, e := range r.builtins() {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) builtins() []Entry {
	return []Entry{
		{
			Name:  "hello",
			Arity: 1,
			Doc:   "hello(msg) returns a greeting for msg",
			Fn: func(_ context.Context, args []any) (any, error) {
				msg, err := ToString(args[0])
				if err != nil {
					return nil, fmt.Errorf("msg: %w", err)
				}
				return Hello(msg), nil
			},
		},
		{
			Name:  "add",
			Arity: 2,
			Doc:   "add(a, b) returns a + b",
			Fn: func(_ context.Context, args []any) (any, error) {
				a, err := ToFloat64(args[0])
				if err != nil {
					return nil, fmt.Errorf("a: %w", err)
				}
				b, err := ToFloat64(args[1])
				if err != nil {
					return nil, fmt.Errorf("b: %w", err)
				}
				return a + b, nil
			},
		},
		{
			Name:  "convolve",
			Arity: 2,
			Doc:   "convolve(signal, kernel) returns the valid-mode sliding dot product",
			Fn: func(_ context.Context, args []any) (any, error) {
				signal, kernel, err := signalAndKernel(args)
				if err != nil {
					return nil, err
				}
				return conv.ValidWithLimits(signal, kernel, r.config.limits)
			},
		},
		{
			Name:  "convolve_fft",
			Arity: 2,
			Doc:   "convolve_fft(signal, kernel) is convolve computed by FFT",
			Fn: func(_ context.Context, args []any) (any, error) {
				signal, kernel, err := signalAndKernel(args)
				if err != nil {
					return nil, err
				}
				return conv.ValidFFTWithLimits(signal, kernel, r.config.limits)
			},
		},
		{
			Name:  "device_info",
			Arity: 0,
			Doc:   "device_info() describes the host CPU",
			Fn: func(context.Context, []any) (any, error) {
				return Device(), nil
			},
		},
	}
}

// Hello returns the greeting for msg.
func Hello(msg string) string {
	return Greeting + msg
}

// Device reports the current machine.
func Device() DeviceInfo {
	f := cpu.DetectFeatures()
	simd := f.Best().String()
	return DeviceInfo{
		ID:        strings.ToLower(fmt.Sprintf("%s/%s/%s", runtime.GOOS, f.Architecture, simd)),
		OS:        runtime.GOOS,
		Arch:      f.Architecture,
		CPUs:      runtime.NumCPU(),
		GoVersion: runtime.Version(),
		SIMD:      simd,
		Features:  f.Names(),
	}
}

func signalAndKernel(args []any) (signal, kernel []float64, err error) {
	signal, err = ToFloat64s(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("signal: %w", err)
	}
	kernel, err = ToFloat64s(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("kernel: %w", err)
	}
	return signal, kernel, nil
}
