package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Hakuto4838/skipset/datastream"
	"github.com/Hakuto4838/skipset/saalgo"
)

func smallWorkload(t *testing.T) []*datastream.BenchFile {
	t.Helper()
	cfg := datastream.DefaultWorkloadConfig()
	cfg.N = 100
	cfg.K = 1000
	bf, err := datastream.GenerateWorkload(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return []*datastream.BenchFile{bf}
}

func TestGridSearch(t *testing.T) {
	var seen int
	points, err := gridSearch(context.Background(), smallWorkload(t), 2, 6, 2, []uint64{1, 2}, 1,
		zaptest.NewLogger(t), func(point) { seen++ })
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 6 || seen != 6 {
		t.Fatalf("got %d points, %d callbacks, want 6", len(points), seen)
	}
	for i := 1; i < len(points); i++ {
		if points[i-1].costMs > points[i].costMs {
			t.Fatalf("points not sorted by cost: %+v", points)
		}
	}
	for _, p := range points {
		if p.steps <= 0 {
			t.Errorf("maxHeight %d seed %d: steps = %v", p.maxHeight, p.seed, p.steps)
		}
	}
}

func TestGridSearchRejectsBadRange(t *testing.T) {
	bfs := smallWorkload(t)
	logger := zaptest.NewLogger(t)
	if _, err := gridSearch(context.Background(), bfs, 0, 4, 1, []uint64{1}, 1, logger, nil); err == nil {
		t.Error("hmin = 0 accepted")
	}
	if _, err := gridSearch(context.Background(), bfs, 4, 2, 1, []uint64{1}, 1, logger, nil); err == nil {
		t.Error("hmax < hmin accepted")
	}
	if _, err := gridSearch(context.Background(), bfs, 2, 4, 1, nil, 1, logger, nil); err == nil {
		t.Error("no seeds accepted")
	}
}

func TestAnneal(t *testing.T) {
	bfs := smallWorkload(t)
	cfg := saalgo.DefaultConfig()
	cfg.InitialTemp = 1
	cfg.FinalTemp = 1e-3
	cfg.Iterations = 5
	cfg.MaxIterations = 30
	best, err := anneal(context.Background(), bfs, 1, 8, 1, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if best.maxHeight < 1 || best.maxHeight > 8 {
		t.Errorf("maxHeight = %d out of range", best.maxHeight)
	}
	start, err := evaluateCost(context.Background(), bfs, 8, 1, 1, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if best.steps > start.steps {
		t.Errorf("anneal result %v worse than start %v", best.steps, start.steps)
	}

	if _, err := anneal(context.Background(), bfs, 3, 2, 1, cfg, zaptest.NewLogger(t)); err == nil {
		t.Error("hmax < hmin accepted")
	}
}

func TestRunWritesCSV(t *testing.T) {
	dir := t.TempDir()
	benchPath := filepath.Join(dir, "w.bin")
	if err := datastream.SaveBenchFile(benchPath, smallWorkload(t)[0]); err != nil {
		t.Fatal(err)
	}
	opts := options{
		benchPath: benchPath,
		hMin:      2,
		hMax:      4,
		hStep:     2,
		seedBase:  1,
		seedCount: 2,
		runs:      1,
		top:       10,
		outputCSV: filepath.Join(dir, "grid.csv"),
	}
	var out bytes.Buffer
	if err := run(context.Background(), opts, &out, zaptest.NewLogger(t)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "basic.WithMaxHeight(") {
		t.Errorf("output:\n%s", out.String())
	}

	f, err := os.Open(opts.outputCSV)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 || rows[0][0] != "max_height" {
		t.Fatalf("csv rows = %v, want header + 4 points", rows)
	}
}

func TestRunReportsErrors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	if err := run(context.Background(), options{}, &bytes.Buffer{}, logger); err == nil {
		t.Error("missing -bench accepted")
	}
	opts := options{benchPath: filepath.Join(t.TempDir(), "missing.bin"), hMin: 1, hMax: 2, hStep: 1, seedCount: 1, runs: 1}
	if err := run(context.Background(), opts, &bytes.Buffer{}, logger); err == nil {
		t.Error("missing bench file accepted")
	}

	dir := t.TempDir()
	benchPath := filepath.Join(dir, "w.bin")
	if err := datastream.SaveBenchFile(benchPath, smallWorkload(t)[0]); err != nil {
		t.Fatal(err)
	}
	opts = options{benchPath: benchPath, hMin: 1, hMax: 2, hStep: 1, seedCount: 1, runs: 1,
		outputCSV: filepath.Join(dir, "no", "grid.csv")}
	if err := run(context.Background(), opts, &bytes.Buffer{}, logger); err == nil {
		t.Error("unwritable csv path accepted")
	}
}
