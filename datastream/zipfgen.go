package datastream

import (
	"math"
	randv2 "math/rand/v2"

	"github.com/Hakuto4838/skipset/skiplist"
)

// ZipfDataGenerator 產生符合 Zipf 分布的 key 序列，key 為 0..n-1。
// 權重依 rank 計算後打亂，讓熱門 key 分散在整個 key 空間。
type ZipfDataGenerator struct {
	n       int
	a, b    float64
	Weights []float64
	cdf     []float64
	rng     *randv2.Rand
}

func NewZipfDataGenerator(n int, a, b float64, seed uint64) *ZipfDataGenerator {
	rng := randv2.New(randv2.NewPCG(seed, 0))
	weights := make([]float64, n)
	var sum float64
	for i := 1; i <= n; i++ {
		weights[i-1] = 1.0 / math.Pow(float64(i)+b, a)
		sum += weights[i-1]
	}
	// 正規化
	for i := range weights {
		weights[i] /= sum
	}
	rng.Shuffle(len(weights), func(i, j int) {
		weights[i], weights[j] = weights[j], weights[i]
	})
	// 建立累積分布函數 (CDF)
	cdf := make([]float64, n)
	if n > 0 {
		cdf[0] = weights[0]
	}
	for i := 1; i < n; i++ {
		cdf[i] = cdf[i-1] + weights[i]
	}
	return &ZipfDataGenerator{
		n:       n,
		a:       a,
		b:       b,
		Weights: weights,
		cdf:     cdf,
		rng:     rng,
	}
}

// Next 產生一個 key（二分搜尋 cdf）
func (z *ZipfDataGenerator) Next() skiplist.K {
	r := z.rng.Float64()
	lo, hi := 0, z.n-1
	for lo < hi {
		mid := (lo + hi) / 2
		if r > z.cdf[mid] {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return skiplist.K(lo)
}

// GenerateSequence 產生指定長度的 key 序列
func (z *ZipfDataGenerator) GenerateSequence(seqLen int) []skiplist.K {
	seq := make([]skiplist.K, seqLen)
	for i := range seq {
		seq[i] = z.Next()
	}
	return seq
}

// GetKeyMap 回傳 key -> 機率
func (z *ZipfDataGenerator) GetKeyMap() map[skiplist.K]float64 {
	result := make(map[skiplist.K]float64, z.n)
	for i, w := range z.Weights {
		result[skiplist.K(i)] = w
	}
	return result
}

func (z *ZipfDataGenerator) Entropy() float64 {
	h := 0.0
	for _, p := range z.Weights {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
