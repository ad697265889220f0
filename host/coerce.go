package host

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// maxExactInt is the largest magnitude up to which every integer has an
// exact float64 representation.
const maxExactInt = 1 << 53

var jsonNumberType = reflect.TypeOf(json.Number(""))

// ToFloat64s converts v into a float64 sequence.
//
// Accepted inputs are slices and arrays of any integer or floating-point
// kind, []any holding such values, json.Number elements, and a single
// numeric scalar (treated as a length-1 sequence). A []float64 is returned
// as is, without copying. Integers whose magnitude exceeds 2^53 are rejected
// with ErrInexact; everything else non-numeric with ErrNotNumeric. Byte
// slices and byte arrays count as non-numeric.
//
// NaN and infinities are valid samples, also when spelled as json.Number
// ("NaN", "Inf", "+Inf", "-Inf"). A finite literal too large for float64,
// such as "1e400", is rejected.
func ToFloat64s(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, err := scalar(reflect.ValueOf(e))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = f
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			// Byte slices and arrays are opaque data, not vectors.
			return nil, fmt.Errorf("%w: %T", ErrNotNumeric, v)
		}
		out := make([]float64, rv.Len())
		for i := range out {
			f, err := scalar(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = f
		}
		return out, nil
	default:
		f, err := scalar(rv)
		if err != nil {
			return nil, err
		}
		return []float64{f}, nil
	}
}

// ToFloat64 converts v into a single float64. Length-1 sequences are
// accepted; longer or empty ones fail with ErrNotScalar.
func ToFloat64(v any) (float64, error) {
	xs, err := ToFloat64s(v)
	if err != nil {
		return 0, err
	}
	if len(xs) != 1 {
		return 0, fmt.Errorf("%w: got %d values", ErrNotScalar, len(xs))
	}
	return xs[0], nil
}

// ToString converts v into a single string. A string, or a []string or
// []any holding exactly one string, is accepted.
func ToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []string:
		if len(x) == 1 {
			return x[0], nil
		}
		return "", fmt.Errorf("%w: got %d values", ErrNotString, len(x))
	case []any:
		if len(x) == 1 {
			return ToString(x[0])
		}
		return "", fmt.Errorf("%w: got %d values", ErrNotString, len(x))
	default:
		return "", fmt.Errorf("%w: %T", ErrNotString, v)
	}
}

func scalar(rv reflect.Value) (float64, error) {
	if !rv.IsValid() {
		return 0, fmt.Errorf("%w: nil", ErrNotNumeric)
	}
	if rv.Kind() == reflect.Interface {
		return scalar(rv.Elem())
	}
	if rv.Type() == jsonNumberType {
		return jsonNumber(json.Number(rv.String()))
	}

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i > maxExactInt || i < -maxExactInt {
			return 0, fmt.Errorf("%w: %d", ErrInexact, i)
		}
		return float64(i), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > maxExactInt {
			return 0, fmt.Errorf("%w: %d", ErrInexact, u)
		}
		return float64(u), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrNotNumeric, rv.Type())
	}
}

func jsonNumber(n json.Number) (float64, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		if i > maxExactInt || i < -maxExactInt {
			return 0, fmt.Errorf("%w: %d", ErrInexact, i)
		}
		return float64(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, string(n))
	}
	return f, nil
}
