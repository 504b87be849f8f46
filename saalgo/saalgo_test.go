package saalgo

import (
	"context"
	randv2 "math/rand/v2"
	"testing"
)

// 一維整數解，成本為 (x-target)^2
type intSol struct {
	x, target int
	evals     *int
}

func (s intSol) Cost() float64 {
	*s.evals++
	d := float64(s.x - s.target)
	return d * d
}

func (s intSol) Neighbor(rng *randv2.Rand) Solution {
	s.x += rng.IntN(5) - 2
	return s
}

func TestRunFindsMinimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialTemp = 50
	cfg.Iterations = 50
	cfg.MaxIterations = 5000
	sa, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var evals int
	best, cost, err := sa.Run(context.Background(), intSol{x: 100, target: 7, evals: &evals})
	if err != nil {
		t.Fatal(err)
	}
	if cost != 0 || best.(intSol).x != 7 {
		t.Fatalf("best = %+v cost %v, want x = 7", best, cost)
	}
	if sa.Iterations() > cfg.MaxIterations {
		t.Errorf("iterations %d > max %d", sa.Iterations(), cfg.MaxIterations)
	}
	if evals != sa.Iterations()+1 {
		t.Errorf("evals = %d, want %d", evals, sa.Iterations()+1)
	}
}

func TestRunDeterministic(t *testing.T) {
	run := func() int {
		cfg := DefaultConfig()
		cfg.MaxIterations = 300
		sa, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		var evals int
		best, _, err := sa.Run(context.Background(), intSol{x: -40, target: 3, evals: &evals})
		if err != nil {
			t.Fatal(err)
		}
		return best.(intSol).x
	}
	if a, b := run(), run(); a != b {
		t.Errorf("same seed gave %d and %d", a, b)
	}
}

func TestRunHonoursContext(t *testing.T) {
	sa, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var evals int
	_, _, err = sa.Run(ctx, intSol{x: 1, evals: &evals})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestProgressCallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 100
	cfg.ProgressInterval = 10
	var calls int
	cfg.ProgressCallback = func(int, float64, float64, float64) { calls++ }
	sa, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var evals int
	if _, _, err := sa.Run(context.Background(), intSol{evals: &evals}); err != nil {
		t.Fatal(err)
	}
	if calls != 10 {
		t.Errorf("calls = %d, want 10", calls)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.CoolingRate = 1 },
		func(c *Config) { c.FinalTemp = c.InitialTemp },
		func(c *Config) { c.Iterations = 0 },
		func(c *Config) { c.InitialTemp = -1 },
	}
	for i, mut := range bad {
		cfg := DefaultConfig()
		mut(&cfg)
		if _, err := New(cfg); err == nil {
			t.Errorf("case %d accepted", i)
		}
	}
}
