package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseScientificNotation(t *testing.T) {
	cases := map[string]int{"1e5": 100000, "2.5e3": 2500, "42": 42, "0": 0}
	for in, want := range cases {
		got, err := ParseScientificNotation(in)
		if err != nil || got != want {
			t.Errorf("ParseScientificNotation(%q) = %d, %v, want %d", in, got, err, want)
		}
	}
	if _, err := ParseScientificNotation("abc"); err == nil {
		t.Error("ParseScientificNotation(abc) err = nil")
	}
}

func TestCollectBenchFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.bin", "a.bin", "note.txt", filepath.Join("sub", "c.bin")} {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := CollectBenchFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.bin"),
		filepath.Join(dir, "b.bin"),
		filepath.Join(dir, "sub", "c.bin"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files = %v, want %v", files, want)
		}
	}
	if _, err := CollectBenchFiles(filepath.Join(dir, "nope")); err == nil {
		t.Error("missing dir: err = nil")
	}
}

func TestNewLogger(t *testing.T) {
	for _, prod := range []bool{false, true} {
		logger, err := NewLogger(prod)
		if err != nil || logger == nil {
			t.Fatalf("NewLogger(%v) = %v, %v", prod, logger, err)
		}
	}
}
