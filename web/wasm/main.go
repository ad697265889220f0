//go:build js && wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/cwbudde/algo-xcorr/host"
)

var (
	reg   *host.Registry
	funcs []js.Func
)

func main() {
	r, err := host.Default()
	if err != nil {
		js.Global().Get("console").Call("error", "algo-xcorr: "+err.Error())
		return
	}
	reg = r

	api := js.Global().Get("Object").New()

	// call(name, ...args) invokes any registered entry point.
	api.Set("call", export(func(args []js.Value) any {
		if len(args) < 1 || args[0].Type() != js.TypeString {
			return failure(fmt.Errorf("%w: call needs an entry point name", host.ErrArity))
		}
		in := make([]any, len(args)-1)
		for i, a := range args[1:] {
			v, err := fromJS(a)
			if err != nil {
				return failure(fmt.Errorf("argument %d: %w", i, err))
			}
			in[i] = v
		}
		out, err := reg.Call(context.Background(), args[0].String(), in...)
		if err != nil {
			return failure(err)
		}
		return toJS(out)
	}))

	api.Set("convolve", export(func(args []js.Value) any {
		if len(args) != 2 {
			return failure(fmt.Errorf("%w: convolve takes 2, got %d", host.ErrArity, len(args)))
		}
		signal, err := fromJS(args[0])
		if err != nil {
			return failure(fmt.Errorf("signal: %w", err))
		}
		kernel, err := fromJS(args[1])
		if err != nil {
			return failure(fmt.Errorf("kernel: %w", err))
		}
		out, err := reg.Call(context.Background(), "convolve", signal, kernel)
		if err != nil {
			return failure(err)
		}
		return toJS(out)
	}))

	api.Set("entries", export(func([]js.Value) any {
		entries := reg.List()
		arr := js.Global().Get("Array").New(len(entries))
		for i, e := range entries {
			arr.SetIndex(i, e.Name)
		}
		return arr
	}))

	js.Global().Set("AlgoXcorr", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}

var errUnsupportedValue = errors.New("unsupported JavaScript value")

// fromJS converts a JavaScript value into the Go values accepted by the host
// registry. Arrays and typed arrays become []float64.
func fromJS(v js.Value) (any, error) {
	switch v.Type() {
	case js.TypeNumber:
		return v.Float(), nil
	case js.TypeString:
		return v.String(), nil
	case js.TypeObject:
		if v.Get("length").Type() != js.TypeNumber {
			break
		}
		n := v.Length()
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			e := v.Index(i)
			if e.Type() != js.TypeNumber {
				return nil, fmt.Errorf("%w: element %d is %s", host.ErrNotNumeric, i, e.Type())
			}
			out[i] = e.Float()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnsupportedValue, v.Type())
}

func toJS(v any) any {
	switch x := v.(type) {
	case []float64:
		arr := js.Global().Get("Float64Array").New(len(x))
		for i, f := range x {
			arr.SetIndex(i, f)
		}
		return arr
	case host.DeviceInfo:
		features := make([]any, len(x.Features))
		for i, f := range x.Features {
			features[i] = f
		}
		return map[string]any{
			"id":        x.ID,
			"os":        x.OS,
			"arch":      x.Arch,
			"cpus":      x.CPUs,
			"goVersion": x.GoVersion,
			"simd":      x.SIMD,
			"features":  features,
		}
	default:
		return v
	}
}

func failure(err error) any {
	return map[string]any{
		"error": err.Error(),
		"kind":  host.Classify(err).String(),
	}
}
