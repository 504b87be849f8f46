package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipset/internal/cli"
	"github.com/Hakuto4838/skipset/skiplist/basic"
)

var keys = []int{12, 16, 2, 6, 15, 8, 13, 1, 11, 14, 0, 4, 19, 10, 9, 5, 7, 3, 17, 18}

// run 插入固定的 key 序列、輸出結構，再檢查查詢結果
func run(sl *basic.SkipList[int], dump bool) error {
	for _, k := range keys {
		if !sl.Insert(k) {
			return errors.Errorf("insert %d: already present", k)
		}
	}
	if dump {
		if err := sl.Print(os.Stdout); err != nil {
			return errors.Wrap(err, "print")
		}
	}
	if sl.Size() != len(keys) {
		return errors.Errorf("size = %d, want %d", sl.Size(), len(keys))
	}
	for _, k := range keys {
		if !sl.Contains(k) {
			return errors.Errorf("contains %d = false", k)
		}
	}
	for _, k := range []int{-1, 20, 100} {
		if sl.Contains(k) {
			return errors.Errorf("contains %d = true", k)
		}
	}
	return nil
}

func main() {
	var seed uint64
	var maxHeight int
	var prodLog bool

	flag.Uint64Var(&seed, "seed", basic.DefaultSeed, "seed for skiplist heights")
	flag.IntVar(&maxHeight, "maxheight", basic.DefaultMaxHeight, "skiplist max height")
	flag.BoolVar(&prodLog, "log.prod", false, "use production (JSON) logging")
	flag.Parse()

	logger, err := cli.NewLogger(prodLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sl, err := basic.New[int](basic.WithSeed(seed), basic.WithMaxHeight(maxHeight))
	if err != nil {
		logger.Fatal("new skiplist", zap.Error(err))
	}
	if err := run(sl, true); err != nil {
		logger.Fatal("primer failed", zap.Error(err))
	}
	logger.Info("primer passed", zap.Int("size", sl.Size()), zap.Uint64("seed", sl.Seed()))
}
