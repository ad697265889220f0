package cpu

import (
	"runtime"
	"testing"
)

func TestDetectFeaturesArchitecture(t *testing.T) {
	ResetDetection()
	t.Cleanup(ResetDetection)

	f := DetectFeatures()
	if f.Architecture != runtime.GOARCH {
		t.Fatalf("Architecture = %q, want %q", f.Architecture, runtime.GOARCH)
	}
	if runtime.GOARCH == "amd64" && !f.HasSSE2 {
		t.Fatal("amd64 must report SSE2")
	}
}

func TestForcedFeatures(t *testing.T) {
	t.Cleanup(ResetDetection)

	SetForcedFeatures(Features{HasSSE2: true, HasAVX2: true, Architecture: "amd64"})
	f := DetectFeatures()
	if f.Best() != SIMDAVX2 {
		t.Fatalf("Best = %v, want AVX2", f.Best())
	}

	ResetDetection()
	if DetectFeatures().Architecture != runtime.GOARCH {
		t.Fatal("ResetDetection did not clear forced features")
	}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name string
		f    Features
		want SIMDLevel
	}{
		{"none", Features{}, SIMDNone},
		{"sse2", Features{HasSSE2: true}, SIMDSSE2},
		{"avx512", Features{HasSSE2: true, HasAVX: true, HasAVX2: true, HasAVX512: true}, SIMDAVX512},
		{"neon", Features{HasNEON: true}, SIMDNEON},
		{"forced generic", Features{HasAVX2: true, ForceGeneric: true}, SIMDNone},
	}
	for _, tt := range tests {
		if got := tt.f.Best(); got != tt.want {
			t.Errorf("%s: Best = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNames(t *testing.T) {
	f := Features{HasSSE2: true, HasAVX2: true, HasFMA: true}
	got := f.Names()
	want := []string{"sse2", "avx2", "fma"}
	if len(got) != len(want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names = %v, want %v", got, want)
		}
	}

	if names := (Features{HasAVX: true, ForceGeneric: true}).Names(); names != nil {
		t.Fatalf("ForceGeneric Names = %v, want nil", names)
	}
}

func TestSIMDLevelString(t *testing.T) {
	if SIMDAVX512.String() != "AVX-512" || SIMDLevel(99).String() != "Unknown" {
		t.Fatal("unexpected SIMDLevel names")
	}
}
