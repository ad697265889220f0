package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/cwbudde/algo-xcorr/host"
)

// parseVector splits s on commas and whitespace. Tokens are kept as
// json.Number so the host boundary decides what counts as numeric.
func parseVector(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	tokens := make([]any, len(fields))
	for i, f := range fields {
		tokens[i] = json.Number(f)
	}
	return host.ToFloat64s(tokens)
}

// readVector parses arg, or all of stdin when arg is "-".
func readVector(arg string, stdin io.Reader) ([]float64, error) {
	if arg != "-" {
		return parseVector(arg)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return parseVector(string(data))
}
