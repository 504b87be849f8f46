// Package cli 放 cmd/* 共用的小工具
package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// NewLogger 建立 zap logger，prod 為 false 時使用開發模式的可讀輸出
func NewLogger(prod bool) (*zap.Logger, error) {
	if prod {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ParseScientificNotation 解析科學記號字串（如 "1e5"）為整數
func ParseScientificNotation(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %q", s)
	}
	return int(f), nil
}

// CollectBenchFiles 收集指定目錄下所有 .bin 檔案，依檔名排序
func CollectBenchFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", dir)
	}
	sort.Strings(files)
	return files, nil
}
