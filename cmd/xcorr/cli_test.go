package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-xcorr/dsp/conv"
	"github.com/cwbudde/algo-xcorr/host"
)

// run executes the CLI with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmdWithLogger(zap.NewNop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConvolveCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"direct", []string{"convolve", "--signal", "1,2,3,4,5", "--kernel", "1,0"}, "1 2 3 4\n"},
		{"full overlap", []string{"convolve", "-s", "1 2 3", "-k", "1,1,1"}, "6\n"},
		{"fractional", []string{"convolve", "-s", "1,2,3,4", "-k", "0.5,0.5"}, "1.5 2.5 3.5\n"},
		{"auto short kernel", []string{"convolve", "-s", "1,2,3", "-k", "1,2", "-m", "auto"}, "5 8\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.want {
				t.Fatalf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestConvolveFFTCommand(t *testing.T) {
	out, err := run(t, "", "convolve", "-s", "1,2,3,4,5", "-k", "1,0", "-m", "fft", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []float64
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	want := []float64{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if d := got[i] - want[i]; d > 1e-9 || d < -1e-9 {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConvolveFromStdin(t *testing.T) {
	out, err := run(t, "1\n2\n3\n4\n", "convolve", "--signal", "-", "--kernel", "1,1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3 5 7\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestConvolveCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"kernel too long", []string{"convolve", "-s", "1,2", "-k", "1,2,3"}, conv.ErrKernelTooLong},
		{"non-numeric", []string{"convolve", "-s", "1,x,3", "-k", "1"}, host.ErrNotNumeric},
		{"empty kernel", []string{"convolve", "-s", "1,2", "-k", ","}, conv.ErrEmptyKernel},
		{"missing kernel", []string{"convolve", "-s", "1,2"}, errMissingVector},
		{"bad format", []string{"convolve", "-s", "1", "-k", "1", "-o", "xml"}, errUnknownFormat},
		{"limit", []string{"--max-output", "2", "convolve", "-s", "1,2,3,4", "-k", "1"}, conv.ErrResourceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if out != "" {
				t.Fatalf("unexpected output %q", out)
			}
		})
	}

	if _, err := run(t, "", "convolve", "-s", "1", "-k", "1", "-m", "bogus"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestAddAndHelloCommands(t *testing.T) {
	out, err := run(t, "", "add", "2", "0.5")
	if err != nil || out != "2.5\n" {
		t.Fatalf("add = %q, %v", out, err)
	}

	if _, err := run(t, "", "add", "1,2", "3"); !errors.Is(err, host.ErrNotScalar) {
		t.Fatalf("expected ErrNotScalar, got %v", err)
	}

	out, err = run(t, "", "hello", "world")
	if err != nil || out != host.Greeting+"world\n" {
		t.Fatalf("hello = %q, %v", out, err)
	}
}

func TestDeviceInfoCommand(t *testing.T) {
	out, err := run(t, "", "device-info", "-o", "yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var info host.DeviceInfo
	if err := yaml.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid yaml %q: %v", out, err)
	}
	if info.ID == "" || info.Arch == "" || info.CPUs < 1 {
		t.Fatalf("unexpected info: %+v", info)
	}

	out, err = run(t, "", "device-info")
	if err != nil || !strings.HasPrefix(out, "id:") {
		t.Fatalf("text output = %q, %v", out, err)
	}
}

func TestEntriesCommand(t *testing.T) {
	out, err := run(t, "", "entries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"NAME", "add", "convolve", "convolve_fft", "device_info", "hello"} {
		if !strings.Contains(out, name) {
			t.Errorf("entries output missing %q:\n%s", name, out)
		}
	}

	out, err = run(t, "", "entries", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var infos []struct {
		Name  string `json:"name"`
		Arity int    `json:"arity"`
	}
	if err := json.Unmarshal([]byte(out), &infos); err != nil || len(infos) != 5 {
		t.Fatalf("entries json = %q, %v", out, err)
	}
}

func TestBatchCommand(t *testing.T) {
	doc := `jobs:
  - name: shift
    signal: [1, 2, 3, 4, 5]
    kernel: [1, 0]
  - name: sum
    signal: [1, 2, 3]
    kernel: [1, 1, 1]
    method: auto
  - name: spectral
    signal: [1, 2, 3, 4]
    kernel: [1, 0]
    method: fft
`
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "batch", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "shift: 1 2 3 4\n") {
		t.Fatalf("missing shift result:\n%s", out)
	}
	if !strings.Contains(out, "sum: 6\n") {
		t.Fatalf("missing sum result:\n%s", out)
	}
	if !strings.Contains(out, "spectral: ") {
		t.Fatalf("missing spectral result:\n%s", out)
	}
}

func TestBatchCommandReportsJobErrors(t *testing.T) {
	doc := `jobs:
  - name: ok
    signal: [1, 2]
    kernel: [1]
  - name: bad
    signal: [1]
    kernel: [1, 2]
`
	out, err := run(t, doc, "batch", "-", "-o", "yaml")
	if !errors.Is(err, errJobsFailed) {
		t.Fatalf("expected errJobsFailed, got %v", err)
	}

	var results []batchResult
	if err := yaml.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid yaml %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Name != "ok" || len(results[0].Output) != 2 || results[0].Error != "" {
		t.Fatalf("ok result = %+v", results[0])
	}
	if results[1].Name != "bad" || results[1].Kind != "invalid_argument" || results[1].Output != nil {
		t.Fatalf("bad result = %+v", results[1])
	}
}

func TestLoadBatchValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty document"},
		{"no jobs", "jobs: []\n", "Jobs"},
		{"missing kernel", "jobs:\n  - name: a\n    signal: [1]\n", "Kernel"},
		{"empty signal", "jobs:\n  - name: a\n    signal: []\n    kernel: [1]\n", "Signal"},
		{"bad method", "jobs:\n  - name: a\n    signal: [1]\n    kernel: [1]\n    method: slow\n", "Method"},
		{"missing name", "jobs:\n  - signal: [1]\n    kernel: [1]\n", "Name"},
		{"unknown field", "jobs:\n  - name: a\n    signal: [1]\n    kernel: [1]\n    mode: valid\n", "mode"},
		{"non-numeric", "jobs:\n  - name: a\n    signal: [x]\n    kernel: [1]\n", "batch:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadBatch([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEntryForMethod(t *testing.T) {
	tests := []struct {
		method string
		k      int
		want   string
	}{
		{"", 3, "convolve"},
		{"direct", 500, "convolve"},
		{"fft", 3, "convolve_fft"},
		{"auto", 64, "convolve"},
		{"auto", 65, "convolve_fft"},
	}
	for _, tt := range tests {
		got, err := entryForMethod(tt.method, tt.k)
		if err != nil || got != tt.want {
			t.Errorf("entryForMethod(%q, %d) = %q, %v; want %q", tt.method, tt.k, got, err, tt.want)
		}
	}
}

func TestConvolveJSONNonFinite(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []any
	}{
		{"overflow", []string{"convolve", "-s", "1e308,1e308", "-k", "10", "-o", "json"}, []any{"+Inf", "+Inf"}},
		{"nan input", []string{"convolve", "-s", "NaN,1", "-k", "1", "-o", "json"}, []any{"NaN", 1.0}},
		{"negative infinity input", []string{"convolve", "--signal=-Inf,2", "-k", "1", "-o", "json"}, []any{"-Inf", 2.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got []any
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("invalid json %q: %v", out, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	out, err := run(t, "", "add", "1e308", "1e308", "-o", "json")
	if err != nil || out != "\"+Inf\"\n" {
		t.Fatalf("add json = %q, %v", out, err)
	}
}

func TestConvolveAcceptsInfinityTokens(t *testing.T) {
	out, err := run(t, "", "convolve", "-s", "Inf,1,-Inf", "-k", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "+Inf 1 -Inf\n" {
		t.Fatalf("output = %q", out)
	}

	if _, err := run(t, "", "convolve", "-s", "1e400,1", "-k", "1"); !errors.Is(err, host.ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric for overflowing literal, got %v", err)
	}
}

func TestBatchJSONNonFinite(t *testing.T) {
	doc := `jobs:
  - name: overflow
    signal: [1e308, 1e308]
    kernel: [10]
  - name: nan
    signal: [.nan, 1]
    kernel: [1]
  - name: plain
    signal: [1, 2, 3]
    kernel: [1, 1]
`
	out, err := run(t, doc, "batch", "-", "-o", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var results []struct {
		Name   string `json:"name"`
		Output []any  `json:"output"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	if r := results[0]; r.Name != "overflow" || len(r.Output) != 2 || r.Output[0] != "+Inf" {
		t.Fatalf("overflow result = %+v", r)
	}
	if r := results[1]; r.Name != "nan" || len(r.Output) != 2 || r.Output[0] != "NaN" || r.Output[1] != 1.0 {
		t.Fatalf("nan result = %+v", r)
	}
	if r := results[2]; r.Name != "plain" || len(r.Output) != 2 || r.Output[0] != 3.0 || r.Output[1] != 5.0 {
		t.Fatalf("plain result = %+v", r)
	}
}

func TestVectorMarshalJSON(t *testing.T) {
	b, err := json.Marshal(vector{1, math.NaN(), math.Inf(1), math.Inf(-1), 0.5})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := `[1,"NaN","+Inf","-Inf",0.5]`; string(b) != want {
		t.Fatalf("Marshal = %s, want %s", b, want)
	}

	b, err = json.Marshal(vector(nil))
	if err != nil || string(b) != "null" {
		t.Fatalf("Marshal(nil) = %s, %v", b, err)
	}
}

func TestConvolveRejectsTwoStdinVectors(t *testing.T) {
	out, err := run(t, "1,2,3", "convolve", "--signal", "-", "--kernel", "-")
	if !errors.Is(err, errStdinConflict) {
		t.Fatalf("expected errStdinConflict, got %v", err)
	}
	if out != "" {
		t.Fatalf("unexpected output %q", out)
	}
}
