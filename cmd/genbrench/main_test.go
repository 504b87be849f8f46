package main

import (
	"testing"

	"github.com/Hakuto4838/skipset/datastream"
)

func TestFormatScientific(t *testing.T) {
	cases := map[int]string{0: "0", 7: "7e0", 1000: "1e3", 1500: "1.5e3", 100000: "1e5"}
	for in, want := range cases {
		if got := formatScientific(in); got != want {
			t.Errorf("formatScientific(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := map[float64]string{1: "1", 0.5: "0_5", 1.07: "1_07", 0: "0"}
	for in, want := range cases {
		if got := formatDecimal(in); got != want {
			t.Errorf("formatDecimal(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBenchFileName(t *testing.T) {
	cfg := datastream.DefaultWorkloadConfig()
	if got, want := benchFileName(cfg), "bench_n1e3_k1e4_a1_07_b1_p1r0_5_er0_1"; got != want {
		t.Errorf("benchFileName = %q, want %q", got, want)
	}
	cfg.DupRatio = 0.05
	if got, want := benchFileName(cfg), "bench_n1e3_k1e4_a1_07_b1_p1r0_5_er0_1_dr0_05"; got != want {
		t.Errorf("benchFileName = %q, want %q", got, want)
	}
}
