package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipset/bench"
	"github.com/Hakuto4838/skipset/datastream"
	"github.com/Hakuto4838/skipset/internal/cli"
	"github.com/Hakuto4838/skipset/skiplist/basic"
	"github.com/Hakuto4838/skipset/skiplist/instrumented"
)

func main() {
	// Input: either provide -file, -dir, or provide -out and generation params
	var file string
	var dir string
	var out string
	var impls string
	var runs int
	var seed uint64
	var maxHeight int
	var metricsAddr string
	var metricsHold time.Duration
	var prodLog bool

	gen := datastream.DefaultWorkloadConfig()
	gen.N = 0
	gen.K = 0

	flag.StringVar(&file, "file", "", "existing bench file (SLSET001 format)")
	flag.StringVar(&dir, "dir", "", "directory containing bench files to test (will test all .bin files)")
	flag.StringVar(&out, "out", "", "output path to write generated bench file")
	flag.IntVar(&gen.N, "n", gen.N, "number of keys for workload generator")
	flag.Float64Var(&gen.S, "a", gen.S, "Zipf parameter s (0 = uniform)")
	flag.Float64Var(&gen.V, "b", gen.V, "Zipf parameter v")
	flag.IntVar(&gen.K, "k", gen.K, "number of operations to generate")
	flag.Uint64Var(&gen.Seed, "genseed", uint64(time.Now().UnixNano()), "seed for workload generation")
	flag.Float64Var(&gen.Phase1Ratio, "phase1Ratio", gen.Phase1Ratio, "ratio of phase1 operations")
	flag.Float64Var(&gen.EraseRatio, "eraseRatio", gen.EraseRatio, "ratio of erase operations on present keys")
	flag.Float64Var(&gen.DupRatio, "dupRatio", gen.DupRatio, "ratio of duplicate inserts on present keys")
	flag.Float64Var(&gen.MissRatio, "missRatio", gen.MissRatio, "ratio of lookups for keys never inserted")
	flag.BoolVar(&gen.SimpleKey, "simplekey", false, "use keys 0..n-1 instead of random keys")

	flag.StringVar(&impls, "impl", "all", "implementations to run: all or comma list (skiplist,huandu,treeset)")
	flag.IntVar(&runs, "runs", 5, "how many times to repeat each benchmark")
	flag.Uint64Var(&seed, "seed", basic.DefaultSeed, "seed for skiplist heights")
	flag.IntVar(&maxHeight, "maxheight", basic.DefaultMaxHeight, "skiplist max height")
	flag.StringVar(&metricsAddr, "metrics.addr", "", "expose prometheus metrics on this address (e.g. :9100)")
	flag.DurationVar(&metricsHold, "metrics.hold", 0, "keep the metrics endpoint alive after the run")
	flag.BoolVar(&prodLog, "log.prod", false, "use production (JSON) logging")
	flag.Parse()

	logger, err := cli.NewLogger(prodLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var benchPaths []string

	// 判斷模式: -dir 優先於 -file
	switch {
	case dir != "":
		files, err := cli.CollectBenchFiles(dir)
		if err != nil {
			logger.Fatal("scan directory", zap.String("dir", dir), zap.Error(err))
		}
		if len(files) == 0 {
			logger.Fatal("no .bin files found in directory", zap.String("dir", dir))
		}
		benchPaths = files
		logger.Info("found bench files", zap.Int("count", len(files)), zap.String("dir", dir))
	case file != "":
		benchPaths = []string{file}
	default:
		if out == "" {
			logger.Fatal("either -file, -dir, or -out with generation params (-n,-a,-b,-k,-genseed) must be provided")
		}
		bf, err := datastream.GenerateWorkload(gen)
		if err != nil {
			logger.Fatal("generate bench file", zap.Error(err))
		}
		if err := datastream.SaveBenchFile(out, bf); err != nil {
			logger.Fatal("write bench file", zap.Error(err))
		}
		logger.Info("generated bench file", zap.String("file", out), zap.Int("ops", len(bf.Ops)))
		benchPaths = []string{out}
	}

	toRun, err := bench.ParseImpls(impls)
	if err != nil {
		logger.Fatal("parse -impl", zap.Error(err))
	}

	cfg := bench.Config{
		Runs:      runs,
		Seed:      seed,
		MaxHeight: maxHeight,
		Impls:     toRun,
		Logger:    logger,
	}
	if metricsAddr != "" {
		cfg.Metrics = instrumented.NewMetrics("skipset")
		srv := serveMetrics(metricsAddr, cfg.Metrics, logger)
		defer func() {
			if metricsHold > 0 {
				logger.Info("holding metrics endpoint", zap.Duration("for", metricsHold))
				select {
				case <-time.After(metricsHold):
				case <-ctx.Done():
				}
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shut down metrics server", zap.Error(err))
			}
		}()
	}

	runner, err := bench.NewRunner(cfg)
	if err != nil {
		logger.Fatal("init runner", zap.Error(err))
	}
	fmt.Printf("implementations to test: %s\n", strings.Join(toRun, ","))
	fmt.Println(strings.Repeat("=", 80))

	// 如果是多個檔案，匯總統計
	if len(benchPaths) > 1 {
		aggs, err := runner.RunFiles(ctx, benchPaths)
		if err != nil {
			logger.Error("benchmark failed", zap.Error(err))
			return
		}
		fmt.Println("AGGREGATE STATISTICS (across all benchmark files)")
		bench.RenderAggregate(os.Stdout, aggs)
		return
	}

	// 單一檔案，顯示詳細結果
	bf, err := datastream.LoadBenchFile(benchPaths[0])
	if err != nil {
		logger.Error("read bench file", zap.String("file", benchPaths[0]), zap.Error(err))
		return
	}
	fmt.Printf("bench_file: %s\n", benchPaths[0])
	fmt.Printf("ops: %d\n", len(bf.Ops))
	fmt.Printf("entropy: %.6f\n", bf.Entropy())
	bench.RenderOutcome(os.Stdout, bench.Expected(bf))

	results, err := runner.Run(ctx, bf)
	if err != nil {
		logger.Error("benchmark failed", zap.Error(err))
		return
	}
	bench.RenderResults(os.Stdout, results)
}

func serveMetrics(addr string, m *instrumented.Metrics, logger *zap.Logger) *http.Server {
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		logger.Fatal("register metrics", zap.Error(err))
	}
	sm := http.NewServeMux()
	sm.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: sm}
	go func() {
		logger.Info("metrics server start listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	return srv
}
