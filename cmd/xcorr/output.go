package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-xcorr/host"
)

// write renders v to w in the given format.
func write(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		switch x := v.(type) {
		case []float64:
			v = vector(x)
		case float64:
			v = number(x)
		}
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		_, err := fmt.Fprintln(w, text(v))
		return err
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

func text(v any) string {
	switch x := v.(type) {
	case []float64:
		return formatVector(x)
	case float64:
		return formatFloat(x)
	case string:
		return x
	case host.DeviceInfo:
		var b strings.Builder
		fmt.Fprintf(&b, "id:       %s\n", x.ID)
		fmt.Fprintf(&b, "os:       %s\n", x.OS)
		fmt.Fprintf(&b, "arch:     %s\n", x.Arch)
		fmt.Fprintf(&b, "cpus:     %d\n", x.CPUs)
		fmt.Fprintf(&b, "go:       %s\n", x.GoVersion)
		fmt.Fprintf(&b, "simd:     %s\n", x.SIMD)
		fmt.Fprintf(&b, "features: %s", strings.Join(x.Features, " "))
		return b.String()
	default:
		return fmt.Sprint(v)
	}
}

func formatVector(x []float64) string {
	parts := make([]string, len(x))
	for i, v := range x {
		parts[i] = formatFloat(v)
	}
	return strings.Join(parts, " ")
}

// formatFloat prints the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// number is a float64 that encodes NaN and infinities as the JSON strings
// "NaN", "+Inf" and "-Inf", which encoding/json would otherwise reject.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	return appendJSONFloat(nil, float64(n)), nil
}

// vector is a []float64 that encodes its elements like number.
type vector []float64

func (v vector) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	b := make([]byte, 0, 2+8*len(v))
	b = append(b, '[')
	for i, f := range v {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendJSONFloat(b, f)
	}
	return append(b, ']'), nil
}

func appendJSONFloat(b []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(b, `"NaN"`...)
	case math.IsInf(f, 1):
		return append(b, `"+Inf"`...)
	case math.IsInf(f, -1):
		return append(b, `"-Inf"`...)
	default:
		return strconv.AppendFloat(b, f, 'g', -1, 64)
	}
}
