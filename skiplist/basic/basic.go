package basic

import (
	"cmp"
	"io"
	randv2 "math/rand/v2"

	"github.com/pkg/errors"

	"github.com/Hakuto4838/skipset/skiplist"
	"github.com/Hakuto4838/skipset/skiplist/analyTool"
)

// 升階機率為 1/branchingFactor
const branchingFactor = 4

var (
	ErrInvalidMaxHeight = errors.New("skiplist: max height must be at least 1")
	ErrNilLess          = errors.New("skiplist: nil comparator")
)

type basicNode[K any] struct {
	key   K
	links []*basicNode[K] // links[i] 為第 i 層的下一個節點
}

// SkipList 是不帶 value 的有序集合，key 依 less 排序且不重複。
// 非併發安全，併發使用需由外部加鎖。
type SkipList[K any] struct {
	header    *basicNode[K]
	less      func(a, b K) bool
	height    int // 目前使用中的層數，至少為 1
	size      int
	maxHeight int
	seed      uint64
	rand      *randv2.Rand
	update    []*basicNode[K] // Insert/Erase 共用的前驅節點暫存
}

// New 建立以升冪排序的 SkipList
func New[K cmp.Ordered](opts ...Option) (*SkipList[K], error) {
	return NewWithLess(cmp.Less[K], opts...)
}

// NewWithLess 以自訂的 strict weak ordering 建立 SkipList。
// a、b 等價當且僅當 !less(a, b) && !less(b, a)。
func NewWithLess[K any](less func(a, b K) bool, opts ...Option) (*SkipList[K], error) {
	if less == nil {
		return nil, ErrNilLess
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxHeight < 1 {
		return nil, errors.Wrapf(ErrInvalidMaxHeight, "got %d", cfg.maxHeight)
	}

	var zero K
	return &SkipList[K]{
		header:    newNode(zero, cfg.maxHeight),
		less:      less,
		height:    1,
		maxHeight: cfg.maxHeight,
		seed:      cfg.seed,
		rand:      randv2.New(randv2.NewPCG(cfg.seed, 0)),
		update:    make([]*basicNode[K], cfg.maxHeight),
	}, nil
}

func newNode[K any](key K, height int) *basicNode[K] {
	return &basicNode[K]{
		key:   key,
		links: make([]*basicNode[K], height),
	}
}

// findGreaterOrEqual 自上而下搜尋，update[h] 記錄第 h 層最後一個 key < key 的節點，
// 回傳 level 0 上第一個 key >= key 的節點，沒有則為 nil
func (sl *SkipList[K]) findGreaterOrEqual(key K, update []*basicNode[K]) *basicNode[K] {
	curr := sl.header
	for h := sl.height - 1; h >= 0; h-- {
		for next := curr.links[h]; next != nil && sl.less(next.key, key); next = curr.links[h] {
			curr = next
		}
		update[h] = curr
	}
	return curr.links[0]
}

// Empty 判斷是否沒有任何元素
func (sl *SkipList[K]) Empty() bool {
	return sl.header.links[0] == nil
}

// Size 回傳元素數量
func (sl *SkipList[K]) Size() int {
	return sl.size
}

// Contains 判斷 key 是否存在
func (sl *SkipList[K]) Contains(key K) bool {
	curr := sl.header
	for h := sl.height - 1; h >= 0; h-- {
		next := curr.links[h]
		for next != nil && sl.less(next.key, key) {
			curr = next
			next = curr.links[h]
		}
		// next.key >= key，只需再檢查 key < next.key
		if next != nil && !sl.less(key, next.key) {
			return true
		}
	}
	return false
}

// Insert 插入 key，已存在等價 key 時回傳 false 且不改變結構。
// 每次呼叫都會先抽一次高度，重複的 key 也一樣。
func (sl *SkipList[K]) Insert(key K) bool {
	update := sl.update
	defer clear(update)

	lvl := sl.RandomHeight()
	if next := sl.findGreaterOrEqual(key, update); next != nil && !sl.less(key, next.key) {
		return false
	}

	if lvl > sl.height {
		for h := sl.height; h < lvl; h++ {
			update[h] = sl.header
		}
		sl.height = lvl
	}

	nd := newNode(key, lvl)
	for h := lvl - 1; h >= 0; h-- {
		nd.links[h] = update[h].links[h]
		update[h].links[h] = nd
	}
	sl.size++
	return true
}

// Erase 刪除 key，不存在時回傳 false。
// 節點在 0..height-1 每一層都要各自解除連結。
func (sl *SkipList[K]) Erase(key K) bool {
	update := sl.update
	defer clear(update)

	target := sl.findGreaterOrEqual(key, update)
	if target == nil || sl.less(key, target.key) {
		return false
	}

	for h := 0; h < len(target.links); h++ {
		if prev := update[h]; prev.links[h] == target {
			prev.links[h] = target.links[h]
		}
		target.links[h] = nil
	}

	for sl.height > 1 && sl.header.links[sl.height-1] == nil {
		sl.height--
	}
	sl.size--
	return true
}

// Clear 移除所有元素。
// 逐層把鏈拆開，一次只解除一個連結，不依賴遞迴。
func (sl *SkipList[K]) Clear() {
	for h := range sl.header.links {
		curr := sl.header.links[h]
		sl.header.links[h] = nil
		for curr != nil {
			next := curr.links[h]
			curr.links[h] = nil
			curr = next
		}
	}
	sl.height = 1
	sl.size = 0
}

// RandomHeight 以 branching factor 4 模擬幾何分布產生節點高度，範圍 [1, maxHeight]。
// 只用整數取餘數，固定種子時在任何平台結果都相同。
func (sl *SkipList[K]) RandomHeight() int {
	lvl := 1
	for lvl < sl.maxHeight && sl.rand.Uint32()%branchingFactor == 0 {
		lvl++
	}
	return lvl
}

func (sl *SkipList[K]) MaxHeight() int {
	return sl.maxHeight
}

func (sl *SkipList[K]) Seed() uint64 {
	return sl.seed
}

// Print 依 level 0 順序輸出每個節點的 key 與高度，僅供除錯
func (sl *SkipList[K]) Print(w io.Writer) error {
	return analyTool.PrintNodes[K](w, sl)
}

func (sl *SkipList[K]) GetHead() skiplist.Nodelike[K] {
	return sl.header
}

func (sl *SkipList[K]) GetMaxStats() (int, int) {
	return sl.size, sl.height
}

func (nd *basicNode[K]) GetKey() K {
	return nd.key
}

func (nd *basicNode[K]) GetHeight() int {
	return len(nd.links)
}

func (nd *basicNode[K]) GetNextAt(level int) skiplist.Nodelike[K] {
	if level < 0 || level >= len(nd.links) {
		return nil
	}
	if nd.links[level] == nil {
		return nil
	}
	return nd.links[level]
}
