package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hakuto4838/skipset/skiplist"
	"github.com/Hakuto4838/skipset/skiplist/basic"
)

func TestWriteCSV(t *testing.T) {
	kmap := map[skiplist.K]float64{}
	for k := range 20 {
		kmap[skiplist.K(k)] = 0.05
	}
	v := variant{name: "default", maxHeight: basic.DefaultMaxHeight, seed: basic.DefaultSeed}
	sl, err := basic.New[skiplist.K](basic.WithMaxHeight(v.maxHeight), basic.WithSeed(v.seed))
	if err != nil {
		t.Fatal(err)
	}
	insertSequential(sl, kmap)

	var out bytes.Buffer
	steps, err := testOne(&out, v, sl, kmap, 8, 35, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 20 {
		t.Fatalf("steps for %d keys, want 20", len(steps))
	}
	if !strings.Contains(out.String(), "=== default") || !strings.Contains(out.String(), "score:") {
		t.Errorf("report:\n%s", out.String())
	}

	dir := t.TempDir()
	if err := writeCSV(dir, v, sl, steps, 8, 35); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(filepath.Join(dir, "default.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	_, height := sl.GetMaxStats()
	height = min(height, 8)
	if len(rows) != height+1 {
		t.Fatalf("got %d rows, want %d level rows + steps", len(rows), height)
	}
	if rows[height-1][0] != "level 0" || len(rows[height-1]) != 21 {
		t.Errorf("level 0 row = %v", rows[height-1])
	}
	last := rows[height]
	if last[0] != "steps" || len(last) != 21 {
		t.Errorf("steps row = %v", last)
	}
}

func TestWriteCSVMissingDir(t *testing.T) {
	sl, err := basic.New[skiplist.K]()
	if err != nil {
		t.Fatal(err)
	}
	v := variant{name: "default"}
	if err := writeCSV(filepath.Join(t.TempDir(), "missing"), v, sl, nil, 8, 35); err == nil {
		t.Error("write into missing directory succeeded")
	}
}
