package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Hakuto4838/skipset/datastream"
	"github.com/Hakuto4838/skipset/internal/cli"
)

// formatScientific 將數字格式化為科學記號（用於檔名）
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}

	// 找出最大的 10 的冪次
	exp := 0
	divisor := 1
	for temp := n; temp >= 10; temp /= 10 {
		exp++
		divisor *= 10
	}
	coefficient := float64(n) / float64(divisor)

	// 如果係數是整數，就不顯示小數
	if coefficient == float64(int(coefficient)) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

// formatDecimal 將浮點數格式化為不含小數點的字串（用於檔名）
func formatDecimal(f float64) string {
	// 保留兩位小數的精度
	val := int(f*100 + 0.5)
	switch {
	case val%100 == 0:
		return fmt.Sprintf("%d", val/100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

// benchFileName 依參數組出輸出檔名前綴
func benchFileName(cfg datastream.WorkloadConfig) string {
	name := fmt.Sprintf("bench_n%s_k%s_a%s_b%s_p1r%s_er%s",
		formatScientific(cfg.N),
		formatScientific(cfg.K),
		formatDecimal(cfg.S),
		formatDecimal(cfg.V),
		formatDecimal(cfg.Phase1Ratio),
		formatDecimal(cfg.EraseRatio))
	if cfg.DupRatio > 0 {
		name += "_dr" + formatDecimal(cfg.DupRatio)
	}
	if cfg.MissRatio > 0 {
		name += "_mr" + formatDecimal(cfg.MissRatio)
	}
	return name
}

func main() {
	var out string
	var path string
	var nStr string
	var kStr string
	var nums int
	var prodLog bool

	cfg := datastream.DefaultWorkloadConfig()

	flag.StringVar(&nStr, "n", "1e3", "number of keys for Zipf generator (支援科學記號，如 1e5)")
	flag.Float64Var(&cfg.S, "a", cfg.S, "Zipf parameter a (設為 0 時使用均勻分布)")
	flag.Float64Var(&cfg.V, "b", cfg.V, "Zipf parameter b (當 a > 0 時有效，需 >= 1)")
	flag.StringVar(&kStr, "k", "1e4", "number of operations to generate (支援科學記號，如 1e6)")
	flag.Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "seed for workload generation")
	flag.Float64Var(&cfg.Phase1Ratio, "phase1Ratio", cfg.Phase1Ratio, "ratio of phase1 operations")
	flag.Float64Var(&cfg.EraseRatio, "eraseRatio", cfg.EraseRatio, "ratio of erase operations")
	flag.Float64Var(&cfg.DupRatio, "dupRatio", cfg.DupRatio, "ratio of duplicate inserts")
	flag.Float64Var(&cfg.MissRatio, "missRatio", cfg.MissRatio, "ratio of lookups for keys never inserted")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (留空則自動生成)")
	flag.StringVar(&path, "path", ".", "output directory path (輸出目錄路徑)")
	flag.BoolVar(&cfg.SimpleKey, "simplekey", false, "是否使用 0..n-1 作為 key")
	flag.BoolVar(&prodLog, "log.prod", false, "use production (JSON) logging")
	flag.Parse()

	logger, err := cli.NewLogger(prodLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 解析科學記號
	if cfg.N, err = cli.ParseScientificNotation(nStr); err != nil {
		logger.Fatal("解析參數 n 錯誤", zap.Error(err))
	}
	if cfg.K, err = cli.ParseScientificNotation(kStr); err != nil {
		logger.Fatal("解析參數 k 錯誤", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid workload", zap.Error(err))
	}

	// 如果沒有指定輸出檔名，則根據參數自動生成
	if out == "" {
		out = benchFileName(cfg)
	}

	// 確保輸出目錄存在
	if path != "." && path != "" {
		if err := os.MkdirAll(path, 0o755); err != nil {
			logger.Fatal("建立輸出目錄失敗", zap.String("path", path), zap.Error(err))
		}
	}

	logger.Info("生成參數",
		zap.Int("n", cfg.N),
		zap.Int("k", cfg.K),
		zap.Float64("a", cfg.S),
		zap.Float64("b", cfg.V),
		zap.Float64("phase1Ratio", cfg.Phase1Ratio),
		zap.Float64("eraseRatio", cfg.EraseRatio),
		zap.Float64("dupRatio", cfg.DupRatio),
		zap.Float64("missRatio", cfg.MissRatio),
		zap.Uint64("seed", cfg.Seed),
		zap.Int("nums", nums),
		zap.String("path", path),
		zap.String("prefix", out),
	)

	baseSeed := cfg.Seed
	for i := 0; i < nums; i++ {
		filename := out + ".bin"
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)

		cfg.Seed = baseSeed + uint64(i)
		bf, err := datastream.GenerateWorkload(cfg)
		if err != nil {
			logger.Fatal("generate workload", zap.Error(err))
		}
		if err := datastream.SaveBenchFile(outfile, bf); err != nil {
			logger.Fatal("write bench file", zap.String("file", outfile), zap.Error(err))
		}
		logger.Info("generated",
			zap.String("file", outfile),
			zap.Int("ops", len(bf.Ops)),
			zap.Float64("entropy", bf.Entropy()),
		)
	}
	fmt.Println("完成!")
}
