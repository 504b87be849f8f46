// Package saalgo 是通用的模擬退火搜尋，用來調整 skiplist 參數
package saalgo

import (
	"context"
	"math"
	randv2 "math/rand/v2"

	"github.com/pkg/errors"
)

// Solution 表示一個解
type Solution interface {
	// Cost 返回當前解的成本，越小越好
	Cost() float64
	// Neighbor 以 rng 生成鄰居解，不可修改接收者
	Neighbor(rng *randv2.Rand) Solution
}

// ProgressCallback 進度回報
type ProgressCallback func(iteration int, temperature, bestCost, currentCost float64)

// Config 模擬退火配置
type Config struct {
	InitialTemp      float64 // 初始溫度
	FinalTemp        float64 // 最終溫度
	CoolingRate      float64 // 冷卻率，(0, 1)
	Iterations       int     // 每個溫度的迭代次數
	MaxIterations    int     // 最大總迭代次數
	Seed             uint64
	ProgressCallback ProgressCallback // 可選
	ProgressInterval int              // 每 N 次迭代回報一次，0 表示不回報
}

func DefaultConfig() Config {
	return Config{
		InitialTemp:   1000.0,
		FinalTemp:     0.1,
		CoolingRate:   0.95,
		Iterations:    100,
		MaxIterations: 10000,
		Seed:          1,
	}
}

func (c Config) Validate() error {
	switch {
	case c.InitialTemp <= 0 || c.FinalTemp <= 0 || c.FinalTemp >= c.InitialTemp:
		return errors.Errorf("invalid temperatures: initial=%v final=%v", c.InitialTemp, c.FinalTemp)
	case c.CoolingRate <= 0 || c.CoolingRate >= 1:
		return errors.Errorf("cooling rate %v must be in (0, 1)", c.CoolingRate)
	case c.Iterations < 1 || c.MaxIterations < 1:
		return errors.Errorf("iterations must be positive: per-temp=%d max=%d", c.Iterations, c.MaxIterations)
	}
	return nil
}

// Annealer 保存一次搜尋的狀態
type Annealer struct {
	cfg        Config
	rng        *randv2.Rand
	best       Solution
	bestCost   float64
	iterations int
}

func New(cfg Config) (*Annealer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Annealer{
		cfg: cfg,
		rng: randv2.New(randv2.NewPCG(cfg.Seed, 0)),
	}, nil
}

// Run 從 initial 開始搜尋，回傳找到的最佳解與成本。
// ctx 取消時回傳目前最佳解與 ctx.Err()。
func (sa *Annealer) Run(ctx context.Context, initial Solution) (Solution, float64, error) {
	current := initial
	currentCost := current.Cost()
	sa.best, sa.bestCost = current, currentCost

	for temp := sa.cfg.InitialTemp; temp > sa.cfg.FinalTemp; temp *= sa.cfg.CoolingRate {
		for i := 0; i < sa.cfg.Iterations; i++ {
			if sa.iterations >= sa.cfg.MaxIterations {
				return sa.best, sa.bestCost, nil
			}
			if err := ctx.Err(); err != nil {
				return sa.best, sa.bestCost, err
			}

			neighbor := current.Neighbor(sa.rng)
			neighborCost := neighbor.Cost()
			if sa.accept(neighborCost-currentCost, temp) {
				current, currentCost = neighbor, neighborCost
				if currentCost < sa.bestCost {
					sa.best, sa.bestCost = current, currentCost
				}
			}
			sa.iterations++

			if cb := sa.cfg.ProgressCallback; cb != nil && sa.cfg.ProgressInterval > 0 &&
				sa.iterations%sa.cfg.ProgressInterval == 0 {
				cb(sa.iterations, temp, sa.bestCost, currentCost)
			}
		}
	}
	return sa.best, sa.bestCost, nil
}

// accept 以 Metropolis 準則決定是否接受新解
func (sa *Annealer) accept(delta, temp float64) bool {
	if delta <= 0 {
		return true
	}
	return sa.rng.Float64() < math.Exp(-delta/temp)
}

func (sa *Annealer) Best() (Solution, float64) {
	return sa.best, sa.bestCost
}

func (sa *Annealer) Iterations() int {
	return sa.iterations
}
