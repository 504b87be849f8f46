package bench

import (
	"cmp"
	"context"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipset/datastream"
	"github.com/Hakuto4838/skipset/skiplist"
	"github.com/Hakuto4838/skipset/skiplist/analyTool"
	"github.com/Hakuto4838/skipset/skiplist/basic"
	"github.com/Hakuto4838/skipset/skiplist/instrumented"
)

var ErrOutcomeMismatch = errors.New("implementation disagrees with the reference replay")

// Config 是 Runner 的設定
type Config struct {
	Runs      int    // 每個實作重複次數
	Seed      uint64 // skiplist 的高度種子
	MaxHeight int
	Impls     []string
	Metrics   *instrumented.Metrics // 可選
	Logger    *zap.Logger           // nil 時使用 zap.L()
}

func DefaultConfig() Config {
	return Config{
		Runs:      5,
		Seed:      basic.DefaultSeed,
		MaxHeight: basic.DefaultMaxHeight,
		Impls:     append([]string(nil), AllImpls...),
	}
}

// Result 是單一實作在單一 bench file 上的結果
type Result struct {
	Impl     string
	Runs     int
	Ops      int
	AvgMs    float64
	MinMs    float64
	MaxMs    float64
	AvgSteps float64 // 無法分析時為 NaN
	Height   int     // 可分析的實作結束時的層數
	Outcome  Outcome
}

// Throughput 回傳平均每秒操作數
func (r Result) Throughput() float64 {
	if r.AvgMs <= 0 {
		return 0
	}
	return float64(r.Ops) / (r.AvgMs / 1000.0)
}

type Runner struct {
	cfg    Config
	logger *zap.Logger
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Runs < 1 {
		return nil, errors.Errorf("runs must be >= 1, got %d", cfg.Runs)
	}
	if len(cfg.Impls) == 0 {
		cfg.Impls = append([]string(nil), AllImpls...)
	}
	// 先建一次確認設定可用
	for _, name := range cfg.Impls {
		if _, err := NewImpl(name, Config{MaxHeight: cfg.MaxHeight, Seed: cfg.Seed}); err != nil {
			return nil, errors.Wrapf(err, "impl %s", name)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.L()
	}
	return &Runner{cfg: cfg, logger: logger}, nil
}

// Run 對 bf 執行所有實作，任一實作的結果與參考重播不同即回傳錯誤
func (r *Runner) Run(ctx context.Context, bf *datastream.BenchFile) ([]Result, error) {
	expected := Expected(bf)
	r.logger.Debug("reference replay", zap.Int("ops", len(bf.Ops)), zap.Any("outcome", expected))

	results := make([]Result, 0, len(r.cfg.Impls))
	for _, name := range r.cfg.Impls {
		newSet := func() (skiplist.Set[skiplist.K], error) {
			return NewImpl(name, r.cfg)
		}
		res, err := r.runImpl(ctx, name, newSet, bf, expected)
		if err != nil {
			return results, err
		}
		r.logger.Info("benchmark finished",
			zap.String("impl", name),
			zap.Int("runs", res.Runs),
			zap.Float64("avg_ms", res.AvgMs),
			zap.Float64("ops_per_sec", res.Throughput()),
		)
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runImpl(ctx context.Context, name string, newSet func() (skiplist.Set[skiplist.K], error),
	bf *datastream.BenchFile, expected Outcome) (Result, error) {
	res := Result{
		Impl:     name,
		Runs:     r.cfg.Runs,
		Ops:      len(bf.Ops),
		AvgSteps: math.NaN(),
	}
	durations := make([]float64, 0, r.cfg.Runs)

	for i := 0; i < r.cfg.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return res, errors.Wrapf(err, "impl %s run %d", name, i)
		}
		s, err := newSet()
		if err != nil {
			return res, errors.Wrapf(err, "impl %s", name)
		}

		start := time.Now()
		outcome := Replay(s, bf.Ops)
		elapsed := time.Since(start)
		durations = append(durations, float64(elapsed.Nanoseconds())/1e6)

		if outcome != expected {
			return res, errors.Wrapf(ErrOutcomeMismatch, "impl %s: got %+v, want %+v", name, outcome, expected)
		}
		res.Outcome = outcome

		// 結構只和種子與操作序列有關，分析一次即可
		if math.IsNaN(res.AvgSteps) {
			if a, ok := analyable(s); ok {
				res.AvgSteps, _ = analyTool.AnalyzeStep(a, bf.Dist, cmp.Less[skiplist.K])
				_, res.Height = a.GetMaxStats()
			}
		}
	}

	sort.Float64s(durations)
	res.AvgMs = average(durations)
	res.MinMs = durations[0]
	res.MaxMs = durations[len(durations)-1]
	return res, nil
}

// Aggregate 是單一實作在多個 bench file 上的匯總
type Aggregate struct {
	Impl      string
	Files     int
	TotalRuns int
	AvgMs     float64
	MinMs     float64
	MaxMs     float64
	OpsPerSec float64
	AvgSteps  float64 // 無法分析時為 NaN
}

// RunFiles 對多個 bench file 執行並匯總，讀檔失敗的檔案會被略過
func (r *Runner) RunFiles(ctx context.Context, paths []string) ([]Aggregate, error) {
	var perFile [][]Result
	for idx, path := range paths {
		r.logger.Info("testing bench file",
			zap.Int("index", idx+1),
			zap.Int("total", len(paths)),
			zap.String("file", filepath.Base(path)),
		)
		bf, err := datastream.LoadBenchFile(path)
		if err != nil {
			r.logger.Warn("skip bench file", zap.String("file", path), zap.Error(err))
			continue
		}
		results, err := r.Run(ctx, bf)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		perFile = append(perFile, results)
	}
	if len(perFile) == 0 {
		return nil, errors.New("no readable bench files")
	}
	return Summarize(perFile), nil
}

// Summarize 依實作匯總多個檔案的結果，順序與第一個檔案相同
func Summarize(perFile [][]Result) []Aggregate {
	type acc struct {
		avg, min, max, steps []float64
		ops                  int
		sec                  float64
		runs                 int
	}
	var order []string
	accs := map[string]*acc{}
	for _, results := range perFile {
		for _, res := range results {
			a, ok := accs[res.Impl]
			if !ok {
				a = &acc{}
				accs[res.Impl] = a
				order = append(order, res.Impl)
			}
			a.avg = append(a.avg, res.AvgMs)
			a.min = append(a.min, res.MinMs)
			a.max = append(a.max, res.MaxMs)
			if !math.IsNaN(res.AvgSteps) {
				a.steps = append(a.steps, res.AvgSteps)
			}
			a.ops += res.Ops
			a.sec += res.AvgMs / 1000.0
			a.runs += res.Runs
		}
	}

	out := make([]Aggregate, 0, len(order))
	for _, impl := range order {
		a := accs[impl]
		agg := Aggregate{
			Impl:      impl,
			Files:     len(a.avg),
			TotalRuns: a.runs,
			AvgMs:     average(a.avg),
			MinMs:     minOf(a.min),
			MaxMs:     maxOf(a.max),
			AvgSteps:  math.NaN(),
		}
		if a.sec > 0 {
			agg.OpsPerSec = float64(a.ops) / a.sec
		}
		if len(a.steps) > 0 {
			agg.AvgSteps = average(a.steps)
		}
		out = append(out, agg)
	}
	return out
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}
