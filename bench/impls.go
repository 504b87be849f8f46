package bench

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Hakuto4838/skipset/skiplist"
	"github.com/Hakuto4838/skipset/skiplist/baseline"
	"github.com/Hakuto4838/skipset/skiplist/basic"
	"github.com/Hakuto4838/skipset/skiplist/instrumented"
)

const (
	ImplSkipList = "skiplist"
	ImplHuandu   = "huandu"
	ImplTreeSet  = "treeset"
)

// AllImpls 是 -impl=all 時的執行順序
var AllImpls = []string{ImplSkipList, ImplHuandu, ImplTreeSet}

var ErrUnknownImpl = errors.New("unknown implementation")

// ParseImpls 解析逗號分隔的實作清單，"" 或 "all" 代表全部
func ParseImpls(s string) ([]string, error) {
	if s == "" || s == "all" {
		return append([]string(nil), AllImpls...), nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		t := strings.TrimSpace(strings.ToLower(p))
		if t == "" || seen[t] {
			continue
		}
		switch t {
		case ImplSkipList, ImplHuandu, ImplTreeSet:
			out = append(out, t)
			seen[t] = true
		default:
			return nil, errors.Wrapf(ErrUnknownImpl, "%q", t)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), AllImpls...), nil
	}
	return out, nil
}

// NewImpl 建立一個新的集合實例，若設定了 Metrics 則包上 instrumented.Set
func NewImpl(name string, cfg Config) (skiplist.Set[skiplist.K], error) {
	var s skiplist.Set[skiplist.K]
	switch name {
	case ImplSkipList:
		sl, err := basic.New[skiplist.K](basic.WithMaxHeight(cfg.MaxHeight), basic.WithSeed(cfg.Seed))
		if err != nil {
			return nil, err
		}
		s = sl
	case ImplHuandu:
		s = baseline.NewHuandu()
	case ImplTreeSet:
		s = baseline.NewTreeSet()
	default:
		return nil, errors.Wrapf(ErrUnknownImpl, "%q", name)
	}
	if cfg.Metrics != nil {
		return instrumented.Wrap(name, s, cfg.Metrics), nil
	}
	return s, nil
}

// analyable 取得可分析的實作，會先拆掉 instrumented 的包裝
func analyable(s skiplist.Set[skiplist.K]) (skiplist.Analyable[skiplist.K], bool) {
	if w, ok := s.(interface {
		Unwrap() skiplist.Set[skiplist.K]
	}); ok {
		s = w.Unwrap()
	}
	a, ok := s.(skiplist.Analyable[skiplist.K])
	return a, ok
}
