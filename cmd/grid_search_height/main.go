package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	randv2 "math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipset/bench"
	"github.com/Hakuto4838/skipset/datastream"
	"github.com/Hakuto4838/skipset/internal/cli"
	"github.com/Hakuto4838/skipset/saalgo"
	"github.com/Hakuto4838/skipset/skiplist/basic"
)

// point 是網格上一組參數的評估結果
type point struct {
	maxHeight int
	seed      uint64
	costMs    float64 // 每個 bench file 平均時間的總和
	steps     float64 // 每個 bench file 平均步數的平均
}

// evaluateCost 評估給定參數的執行時間成本
func evaluateCost(ctx context.Context, benchFiles []*datastream.BenchFile, maxHeight int, seed uint64, runs int,
	logger *zap.Logger) (point, error) {
	p := point{maxHeight: maxHeight, seed: seed}
	runner, err := bench.NewRunner(bench.Config{
		Runs:      runs,
		Seed:      seed,
		MaxHeight: maxHeight,
		Impls:     []string{bench.ImplSkipList},
		Logger:    logger,
	})
	if err != nil {
		return p, err
	}

	var steps float64
	for _, bf := range benchFiles {
		results, err := runner.Run(ctx, bf)
		if err != nil {
			return p, errors.Wrapf(err, "maxHeight=%d seed=%d", maxHeight, seed)
		}
		// 累加每個檔案的平均時間
		p.costMs += results[0].AvgMs
		steps += results[0].AvgSteps
	}
	p.steps = steps / float64(len(benchFiles))
	return p, nil
}

// gridSearch 依序評估 [hMin, hMax] 與 seeds 的所有組合，回傳依成本排序的結果
func gridSearch(ctx context.Context, benchFiles []*datastream.BenchFile, hMin, hMax, hStep int, seeds []uint64, runs int,
	logger *zap.Logger, onPoint func(point)) ([]point, error) {
	if hMin < 1 || hMax < hMin || hStep < 1 {
		return nil, errors.Errorf("invalid height range [%d, %d] step %d", hMin, hMax, hStep)
	}
	if len(seeds) == 0 {
		return nil, errors.New("no seeds")
	}
	var points []point
	for h := hMin; h <= hMax; h += hStep {
		for _, seed := range seeds {
			p, err := evaluateCost(ctx, benchFiles, h, seed, runs, logger)
			if err != nil {
				return points, err
			}
			if onPoint != nil {
				onPoint(p)
			}
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].costMs < points[j].costMs })
	return points, nil
}

type gridKey struct {
	maxHeight int
	seed      uint64
}

// heightSolution 是退火搜尋中的一組 (maxHeight, seed)，成本為平均步數
type heightSolution struct {
	key        gridKey
	hMin, hMax int
	eval       func(gridKey) float64
}

func (s heightSolution) Cost() float64 {
	return s.eval(s.key)
}

func (s heightSolution) Neighbor(rng *randv2.Rand) saalgo.Solution {
	if rng.IntN(2) == 0 {
		s.key.seed = rng.Uint64()
		return s
	}
	if rng.IntN(2) == 0 {
		s.key.maxHeight++
	} else {
		s.key.maxHeight--
	}
	s.key.maxHeight = max(s.hMin, min(s.hMax, s.key.maxHeight))
	return s
}

// anneal 以模擬退火在 [hMin, hMax] 與任意種子間搜尋平均步數最低的參數
func anneal(ctx context.Context, benchFiles []*datastream.BenchFile, hMin, hMax int, seed uint64, cfg saalgo.Config,
	logger *zap.Logger) (point, error) {
	if hMin < 1 || hMax < hMin {
		return point{}, errors.Errorf("invalid height range [%d, %d]", hMin, hMax)
	}
	// 步數只和參數有關，相同參數不必重算
	cache := map[gridKey]point{}
	var evalErr error
	eval := func(k gridKey) float64 {
		if p, ok := cache[k]; ok {
			return p.steps
		}
		if evalErr != nil {
			return math.Inf(1)
		}
		p, err := evaluateCost(ctx, benchFiles, k.maxHeight, k.seed, 1, logger)
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		cache[k] = p
		return p.steps
	}

	sa, err := saalgo.New(cfg)
	if err != nil {
		return point{}, err
	}
	start := heightSolution{key: gridKey{maxHeight: hMax, seed: seed}, hMin: hMin, hMax: hMax, eval: eval}
	best, _, err := sa.Run(ctx, start)
	if err != nil {
		return point{}, err
	}
	if evalErr != nil {
		return point{}, evalErr
	}
	return cache[best.(heightSolution).key], nil
}

// options 是一次搜尋的命令行參數
type options struct {
	benchPath, benchDir string
	hMin, hMax, hStep   int
	seedBase            uint64
	seedCount           int
	runs                int
	top                 int
	outputCSV           string
	annealIters         int
}

func main() {
	var opts options
	var prodLog bool

	flag.StringVar(&opts.benchPath, "bench", "", "單一 benchmark 檔案路徑")
	flag.StringVar(&opts.benchDir, "benchdir", "", "包含多個 benchmark 檔案的目錄 (使用所有 .bin 檔案)")
	flag.IntVar(&opts.hMin, "hmin", 4, "maxHeight 的最小值")
	flag.IntVar(&opts.hMax, "hmax", 32, "maxHeight 的最大值")
	flag.IntVar(&opts.hStep, "hstep", 4, "maxHeight 的步長")
	flag.Uint64Var(&opts.seedBase, "seed", basic.DefaultSeed, "第一個高度種子")
	flag.IntVar(&opts.seedCount, "seeds", 3, "每個 maxHeight 測試的種子數")
	flag.IntVar(&opts.runs, "runs", 3, "每組參數運行的次數（取平均值）")
	flag.IntVar(&opts.top, "top", 10, "輸出成本最低的前幾組")
	flag.StringVar(&opts.outputCSV, "csv", "", "輸出 CSV 檔案路徑（選填，用於生成熱力圖）")
	flag.BoolVar(&prodLog, "log.prod", false, "use production (JSON) logging")
	flag.IntVar(&opts.annealIters, "anneal", 0, "改用模擬退火搜尋平均步數最低的參數，值為最大迭代次數（0 表示使用網格搜尋）")
	flag.Parse()

	logger, err := cli.NewLogger(prodLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Fatal("grid search failed", zap.Error(err))
	}
}

// loadBenchFiles 依 -benchdir 或 -bench 讀入所有 workload
func loadBenchFiles(opts options, logger *zap.Logger) ([]*datastream.BenchFile, error) {
	var paths []string
	switch {
	case opts.benchDir != "":
		var err error
		paths, err = cli.CollectBenchFiles(opts.benchDir)
		if err != nil {
			return nil, errors.Wrap(err, "掃描目錄失敗")
		}
		if len(paths) == 0 {
			return nil, errors.Errorf("目錄 %s 中找不到 .bin 檔案", opts.benchDir)
		}
	case opts.benchPath != "":
		paths = []string{opts.benchPath}
	default:
		return nil, errors.New("請提供 -bench 或 -benchdir 參數")
	}

	benchFiles := make([]*datastream.BenchFile, 0, len(paths))
	for _, fpath := range paths {
		bf, err := datastream.LoadBenchFile(fpath)
		if err != nil {
			return nil, errors.Wrapf(err, "讀取 benchmark 檔案 %s 失敗", fpath)
		}
		benchFiles = append(benchFiles, bf)
		logger.Info("loaded", zap.String("file", filepath.Base(fpath)), zap.Int("ops", len(bf.Ops)))
	}
	return benchFiles, nil
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *zap.Logger) (err error) {
	benchFiles, err := loadBenchFiles(opts, logger)
	if err != nil {
		return err
	}
	totalOps := 0
	for _, bf := range benchFiles {
		totalOps += len(bf.Ops)
	}

	seeds := make([]uint64, opts.seedCount)
	for i := range seeds {
		seeds[i] = opts.seedBase + uint64(i)
	}
	logger.Info("grid search",
		zap.Int("files", len(benchFiles)),
		zap.Int("ops", totalOps),
		zap.Int("hmin", opts.hMin), zap.Int("hmax", opts.hMax), zap.Int("hstep", opts.hStep),
		zap.Int("seeds", opts.seedCount),
		zap.Int("runs", opts.runs),
	)

	runnerLogger := logger.Named("runner").WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	if opts.annealIters > 0 {
		cfg := saalgo.DefaultConfig()
		cfg.InitialTemp = 1.0
		cfg.FinalTemp = 1e-3
		cfg.Iterations = 20
		cfg.MaxIterations = opts.annealIters
		cfg.Seed = opts.seedBase
		cfg.ProgressInterval = 20
		cfg.ProgressCallback = func(iter int, temp, bestCost, currentCost float64) {
			logger.Info("annealing",
				zap.Int("iteration", iter),
				zap.Float64("temperature", temp),
				zap.Float64("best_steps", bestCost),
				zap.Float64("current_steps", currentCost),
			)
		}
		best, err := anneal(ctx, benchFiles, opts.hMin, opts.hMax, opts.seedBase, cfg, runnerLogger)
		if err != nil {
			return errors.Wrap(err, "anneal")
		}
		fmt.Fprintf(stdout, "\n最佳參數（平均步數 %.6f，成本 %.3f ms）:\n", best.steps, best.costMs)
		fmt.Fprintf(stdout, "    sl, err := basic.New[skiplist.K](basic.WithMaxHeight(%d), basic.WithSeed(%d))\n", best.maxHeight, best.seed)
		return nil
	}

	// CSV 輸出準備
	var csvWriter *csv.Writer
	if opts.outputCSV != "" {
		csvFile, err := os.Create(opts.outputCSV)
		if err != nil {
			return errors.Wrap(err, "無法創建 CSV 檔案")
		}
		defer func() {
			csvWriter.Flush()
			if werr := csvWriter.Error(); err == nil && werr != nil {
				err = errors.Wrap(werr, "write csv")
			}
			if cerr := csvFile.Close(); err == nil && cerr != nil {
				err = errors.Wrap(cerr, "close csv")
			}
		}()
		csvWriter = csv.NewWriter(csvFile)
		if err := csvWriter.Write([]string{"max_height", "seed", "cost_ms", "avg_steps"}); err != nil {
			return errors.Wrap(err, "write csv")
		}
	}

	bestCost := math.Inf(1)
	startTime := time.Now()
	points, err := gridSearch(ctx, benchFiles, opts.hMin, opts.hMax, opts.hStep, seeds, opts.runs, runnerLogger,
		func(p point) {
			if csvWriter != nil {
				if err := csvWriter.Write([]string{
					fmt.Sprintf("%d", p.maxHeight),
					fmt.Sprintf("%d", p.seed),
					fmt.Sprintf("%.3f", p.costMs),
					fmt.Sprintf("%.6f", p.steps),
				}); err != nil {
					logger.Error("write csv", zap.Error(err))
				}
			}
			fields := []zap.Field{
				zap.Int("maxHeight", p.maxHeight),
				zap.Uint64("seed", p.seed),
				zap.Float64("cost_ms", p.costMs),
				zap.Float64("avg_steps", p.steps),
			}
			if p.costMs < bestCost {
				bestCost = p.costMs
				logger.Info("新最佳", fields...)
				return
			}
			logger.Debug("evaluated", fields...)
		})
	if err != nil {
		return err
	}
	logger.Info("搜索完成", zap.Duration("elapsed", time.Since(startTime)))

	top := max(0, min(opts.top, len(points)))
	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Rank", "MaxHeight", "Seed", "Cost(ms)", "AvgSteps"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	for i, p := range points[:top] {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", p.maxHeight),
			fmt.Sprintf("%d", p.seed),
			fmt.Sprintf("%.3f", p.costMs),
			fmt.Sprintf("%.6f", p.steps),
		})
	}
	table.Render()

	if top > 0 {
		best := points[0]
		fmt.Fprintf(stdout, "\n使用方式:\n")
		fmt.Fprintf(stdout, "    sl, err := basic.New[skiplist.K](basic.WithMaxHeight(%d), basic.WithSeed(%d))\n", best.maxHeight, best.seed)
	}
	if opts.outputCSV != "" {
		fmt.Fprintf(stdout, "\nCSV 結果已保存至: %s\n", opts.outputCSV)
	}
	return nil
}
