package datastream

import (
	"math"
	randv2 "math/rand/v2"
	"sort"

	"github.com/pkg/errors"

	"github.com/Hakuto4838/skipset/skiplist"
)

// WorkloadConfig 描述一份 benchmark 操作序列。
//
//   - N: key 數量
//   - S, V: Zipf 參數。S = 0 時使用均勻分布；否則需滿足 S > 1、V >= 1
//   - K: 操作數量（需 >= N，以保證每個 key 至少出現一次）
//   - Phase1Ratio: 第一階段佔 K 的比例，第一階段涵蓋所有 key 後打亂
//   - EraseRatio: key 已存在時發出 Erase 的機率
//   - DupRatio: key 已存在時發出重複 Insert 的機率（預期回傳 false）
//   - MissRatio: 第二階段查詢一個從未出現過的 key 的機率
//   - SimpleKey: key 為 0..N-1；否則為不重複的隨機 uint32
type WorkloadConfig struct {
	N           int
	S, V        float64
	Seed        uint64
	K           int
	Phase1Ratio float64
	EraseRatio  float64
	DupRatio    float64
	MissRatio   float64
	SimpleKey   bool
}

// DefaultWorkloadConfig 回傳與 cmd/genbrench 相同的預設值
func DefaultWorkloadConfig() WorkloadConfig {
	return WorkloadConfig{
		N:           1000,
		S:           1.07,
		V:           1.0,
		Seed:        42,
		K:           10000,
		Phase1Ratio: 0.5,
		EraseRatio:  0.1,
	}
}

func (c WorkloadConfig) phase1Size() int {
	return int(float64(c.K) * c.Phase1Ratio)
}

// Validate 檢查參數是否合法
func (c WorkloadConfig) Validate() error {
	if c.N <= 0 {
		return errors.Errorf("invalid n: %d", c.N)
	}
	if c.S != 0 && (c.S <= 1.0 || c.V < 1.0) {
		return errors.Errorf("invalid zipf params: s=%v must >1, v=%v must >=1", c.S, c.V)
	}
	if c.K < c.N {
		return errors.Errorf("k (%d) must be >= n (%d) to ensure each key appears at least once", c.K, c.N)
	}
	if p := c.phase1Size(); p < c.N || p > c.K {
		return errors.Errorf("phase1Size (%d) must satisfy n <= phase1Size <= k", p)
	}
	for name, r := range map[string]float64{"eraseRatio": c.EraseRatio, "dupRatio": c.DupRatio, "missRatio": c.MissRatio} {
		if r < 0.0 || r > 1.0 {
			return errors.Errorf("%s (%v) must be between 0.0 and 1.0", name, r)
		}
	}
	if c.EraseRatio+c.DupRatio > 1.0 {
		return errors.Errorf("eraseRatio + dupRatio (%v) must not exceed 1.0", c.EraseRatio+c.DupRatio)
	}
	return nil
}

// GenerateWorkload 依設定產生操作序列。
// 相同設定一定產生相同結果。
//
// 規則：
//   - key 不在表中：Insert
//   - key 在表中：EraseRatio 機率 Erase，DupRatio 機率重複 Insert，其餘 Contains
//   - 第二階段另有 MissRatio 機率查詢從未插入過的 key
func GenerateWorkload(cfg WorkloadConfig) (*BenchFile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.N
	r := randv2.New(randv2.NewPCG(cfg.Seed, 0))

	// 1) 建立 rank -> key 的隨機對應（不重複）
	rankToKey := make([]skiplist.K, n)
	keySet := make(map[skiplist.K]struct{}, n)
	if cfg.SimpleKey {
		for i := range rankToKey {
			rankToKey[i] = skiplist.K(i)
		}
		r.Shuffle(n, func(i, j int) { rankToKey[i], rankToKey[j] = rankToKey[j], rankToKey[i] })
	} else {
		for i := range rankToKey {
			genKey := skiplist.K(r.Uint32())
			for _, ok := keySet[genKey]; ok; _, ok = keySet[genKey] {
				genKey = skiplist.K(r.Uint32())
			}
			rankToKey[i] = genKey
			keySet[genKey] = struct{}{}
		}
	}
	for _, k := range rankToKey {
		keySet[k] = struct{}{}
	}

	// 2) 每個 rank 的理論機率與抽樣方式
	weights := make([]float64, n)
	var sampleRank func() int
	if cfg.S == 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
		sampleRank = func() int { return r.IntN(n) }
	} else {
		var sumW float64
		for i := range weights {
			weights[i] = 1.0 / math.Pow(cfg.V+float64(i), cfg.S)
			sumW += weights[i]
		}
		for i := range weights {
			weights[i] /= sumW
		}
		zipf := randv2.NewZipf(r, cfg.S, cfg.V, uint64(n-1))
		sampleRank = func() int { return int(zipf.Uint64()) }
	}

	dist := make(map[skiplist.K]float64, n)
	for rank, k := range rankToKey {
		dist[k] = weights[rank]
	}

	missKey := func() skiplist.K {
		for {
			var k skiplist.K
			if cfg.SimpleKey {
				k = skiplist.K(n + r.IntN(n))
			} else {
				k = skiplist.K(r.Uint32())
			}
			if _, ok := keySet[k]; !ok {
				return k
			}
		}
	}

	// 狀態：是否在表中
	present := make(map[skiplist.K]bool, n)
	nextOp := func(key skiplist.K) Operation {
		if !present[key] {
			present[key] = true
			return Operation{Type: OpInsert, Key: key}
		}
		p := r.Float64()
		switch {
		case p < cfg.EraseRatio:
			present[key] = false
			return Operation{Type: OpErase, Key: key}
		case p < cfg.EraseRatio+cfg.DupRatio:
			return Operation{Type: OpInsert, Key: key}
		default:
			return Operation{Type: OpContains, Key: key}
		}
	}

	// 3) 第一階段：前 n 個覆蓋所有 key，其餘依分布補齊，最後打亂
	phase1Size := cfg.phase1Size()
	phase1Keys := make([]skiplist.K, phase1Size)
	copy(phase1Keys, rankToKey)
	for i := n; i < phase1Size; i++ {
		phase1Keys[i] = rankToKey[sampleRank()]
	}
	r.Shuffle(len(phase1Keys), func(i, j int) { phase1Keys[i], phase1Keys[j] = phase1Keys[j], phase1Keys[i] })

	ops := make([]Operation, 0, cfg.K)
	for _, key := range phase1Keys {
		ops = append(ops, nextOp(key))
	}

	// 4) 第二階段：剩餘 k - phase1Size 個操作
	for i := phase1Size; i < cfg.K; i++ {
		if cfg.MissRatio > 0 && r.Float64() < cfg.MissRatio {
			ops = append(ops, Operation{Type: OpContains, Key: missKey()})
			continue
		}
		ops = append(ops, nextOp(rankToKey[sampleRank()]))
	}

	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// EntropyFromDist 計算分布的熵（單位：bit），會自動忽略 <= 0 的值。
func EntropyFromDist(dist map[skiplist.K]float64) float64 {
	// 依 key 排序後加總，讓浮點結果與 map 走訪順序無關
	keys := make([]skiplist.K, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	h := 0.0
	for _, k := range keys {
		if p := dist[k]; p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
