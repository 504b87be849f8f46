package main

import (
	"cmp"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipset/datastream"
	"github.com/Hakuto4838/skipset/internal/cli"
	"github.com/Hakuto4838/skipset/skiplist"
	"github.com/Hakuto4838/skipset/skiplist/analyTool"
	"github.com/Hakuto4838/skipset/skiplist/basic"
)

// variant 是一組要比較的 skiplist 參數
type variant struct {
	name      string
	maxHeight int
	seed      uint64
}

// insertSequential 依 key 順序插入，讓高度序列只和種子有關
func insertSequential(sl skiplist.Set[skiplist.K], kmap map[skiplist.K]float64) {
	for _, k := range slices.Sorted(maps.Keys(kmap)) {
		sl.Insert(k)
	}
}

func testOne(w io.Writer, v variant, sl *basic.SkipList[skiplist.K], kmap map[skiplist.K]float64, levels, nodes int,
	showSteps bool) (analyTool.StepMap[skiplist.K], error) {
	less := cmp.Less[skiplist.K]
	fmt.Fprintf(w, "=== %s (maxHeight=%d, seed=%d) ===\n", v.name, v.maxHeight, v.seed)
	if err := analyTool.CheckStruct[skiplist.K](sl, less); err != nil {
		return nil, errors.Wrapf(err, "variant %s", v.name)
	}
	score, steps := analyTool.AnalyzeStep[skiplist.K](sl, kmap, less)
	fmt.Fprintf(w, "score: %.6f\n\n", score)
	analyTool.PrintLevelCounts[skiplist.K](w, sl)
	analyTool.PrintSkipList[skiplist.K](w, sl, levels, nodes)
	if showSteps {
		steps.Print(w, less)
	}
	fmt.Fprintln(w)
	return steps, nil
}

// writeCSV 將結構與每個 key 的步數寫到 dir/<variant>.csv
func writeCSV(dir string, v variant, sl *basic.SkipList[skiplist.K], steps analyTool.StepMap[skiplist.K],
	levels, nodes int) (err error) {
	path := filepath.Join(dir, v.name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv")
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close csv")
		}
	}()
	writer := csv.NewWriter(file)
	if err := analyTool.PrintSkipListToCSV[skiplist.K](sl, levels, nodes, writer); err != nil {
		return errors.Wrapf(err, "%s", path)
	}
	return errors.Wrapf(steps.PrintToCSV(writer, cmp.Less[skiplist.K]), "%s", path)
}

func main() {
	var n int
	var a, b float64
	var seed uint64
	var levels, nodes int
	var prodLog bool
	var csvDir string
	var showSteps bool

	flag.IntVar(&n, "n", 900, "number of keys")
	flag.Float64Var(&a, "a", 1.07, "Zipf parameter a")
	flag.Float64Var(&b, "b", 1.0, "Zipf parameter b")
	flag.Uint64Var(&seed, "seed", 42, "seed for key generation")
	flag.IntVar(&levels, "levels", 8, "levels to print")
	flag.IntVar(&nodes, "nodes", 35, "nodes to print")
	flag.BoolVar(&prodLog, "log.prod", false, "use production (JSON) logging")
	flag.StringVar(&csvDir, "csv", "", "directory to write one <variant>.csv per variant (structure rows + steps row)")
	flag.BoolVar(&showSteps, "steps", false, "print the search steps of every key")
	flag.Parse()

	logger, err := cli.NewLogger(prodLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Zipf distribution for analysis
	gen := datastream.NewZipfDataGenerator(n, a, b, seed)
	kmap := gen.GetKeyMap()
	fmt.Printf("keys: %d, entropy: %.6f\n\n", len(kmap), gen.Entropy())

	variants := []variant{
		{name: "default", maxHeight: basic.DefaultMaxHeight, seed: basic.DefaultSeed},
		{name: "reseeded", maxHeight: basic.DefaultMaxHeight, seed: seed},
		{name: "short", maxHeight: 4, seed: basic.DefaultSeed},
		{name: "flat", maxHeight: 1, seed: basic.DefaultSeed},
	}
	for _, v := range variants {
		sl, err := basic.New[skiplist.K](basic.WithMaxHeight(v.maxHeight), basic.WithSeed(v.seed))
		if err != nil {
			logger.Fatal("new skiplist", zap.String("variant", v.name), zap.Error(err))
		}
		insertSequential(sl, kmap)
		steps, err := testOne(os.Stdout, v, sl, kmap, levels, nodes, showSteps)
		if err != nil {
			logger.Error("broken structure", zap.Error(err))
			continue
		}
		if csvDir != "" {
			if err := writeCSV(csvDir, v, sl, steps, levels, nodes); err != nil {
				logger.Error("write csv", zap.String("variant", v.name), zap.Error(err))
			}
		}
	}
}
