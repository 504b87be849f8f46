package basic

import (
	"bytes"
	"cmp"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/Hakuto4838/skipset/skiplist"
	"github.com/Hakuto4838/skipset/skiplist/analyTool"
)

var primerKeys = []int{12, 16, 2, 6, 15, 8, 13, 1, 11, 14, 0, 4, 19, 10, 9, 5, 7, 3, 17, 18}

func mustNew[K cmp.Ordered](t testing.TB, opts ...Option) *SkipList[K] {
	t.Helper()
	sl, err := New[K](opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sl
}

func checkStruct[K cmp.Ordered](t testing.TB, sl *SkipList[K]) {
	t.Helper()
	if err := analyTool.CheckStruct[K](sl, cmp.Less[K]); err != nil {
		t.Fatalf("CheckStruct: %v", err)
	}
}

// levelZero 依 level 0 順序收集 key 與高度
func levelZero[K any](sl *SkipList[K]) ([]K, []int) {
	var keys []K
	var heights []int
	for nd := sl.header.links[0]; nd != nil; nd = nd.links[0] {
		keys = append(keys, nd.key)
		heights = append(heights, len(nd.links))
	}
	return keys, heights
}

func TestBasicSkipListInterface(t *testing.T) {
	var _ skiplist.Set[int] = (*SkipList[int])(nil)
	var _ skiplist.Analyable[int] = (*SkipList[int])(nil)
	var _ skiplist.Nodelike[int] = (*basicNode[int])(nil)
}

func TestNewRejectsMisconfiguration(t *testing.T) {
	for _, h := range []int{0, -1} {
		sl, err := New[int](WithMaxHeight(h))
		if !errors.Is(err, ErrInvalidMaxHeight) {
			t.Errorf("WithMaxHeight(%d): err = %v, want ErrInvalidMaxHeight", h, err)
		}
		if sl != nil {
			t.Errorf("WithMaxHeight(%d): got non-nil list", h)
		}
	}

	if _, err := NewWithLess[int](nil); !errors.Is(err, ErrNilLess) {
		t.Errorf("NewWithLess(nil): err = %v, want ErrNilLess", err)
	}

	sl := mustNew[int](t)
	if sl.MaxHeight() != DefaultMaxHeight || sl.Seed() != DefaultSeed {
		t.Errorf("defaults = (%d, %d), want (%d, %d)", sl.MaxHeight(), sl.Seed(), DefaultMaxHeight, DefaultSeed)
	}
}

func TestPrimerScenario(t *testing.T) {
	sl := mustNew[int](t)
	if !sl.Empty() {
		t.Fatal("new list should be empty")
	}

	for _, k := range primerKeys {
		if !sl.Insert(k) {
			t.Fatalf("Insert(%d) = false, want true", k)
		}
	}
	if sl.Empty() {
		t.Fatal("list should not be empty after inserts")
	}
	if sl.Size() != 20 {
		t.Fatalf("Size() = %d, want 20", sl.Size())
	}

	for _, k := range primerKeys {
		if !sl.Contains(k) {
			t.Errorf("Contains(%d) = false, want true", k)
		}
	}
	for _, k := range []int{-100, -1, 20, 21, 1000} {
		if sl.Contains(k) {
			t.Errorf("Contains(%d) = true, want false", k)
		}
	}

	keys, heights := levelZero(sl)
	for i, k := range keys {
		if k != i {
			t.Fatalf("level 0 scan = %v, want 0..19", keys)
		}
	}
	for i, h := range heights {
		if h < 1 || h > DefaultMaxHeight {
			t.Errorf("node %d height %d out of range", keys[i], h)
		}
	}
	checkStruct(t, sl)
}

func TestDuplicateInsert(t *testing.T) {
	sl := mustNew[int](t)
	if !sl.Insert(7) {
		t.Fatal("first Insert(7) = false, want true")
	}
	if sl.Insert(7) {
		t.Fatal("second Insert(7) = true, want false")
	}
	if sl.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", sl.Size())
	}
	checkStruct(t, sl)
}

func TestEraseRoundTrip(t *testing.T) {
	sl := mustNew[int](t)
	if sl.Erase(3) {
		t.Fatal("Erase on empty list = true, want false")
	}

	sl.Insert(3)
	if !sl.Contains(3) {
		t.Fatal("Contains(3) = false after insert")
	}
	if !sl.Erase(3) {
		t.Fatal("Erase(3) = false, want true")
	}
	if sl.Contains(3) {
		t.Fatal("Contains(3) = true after erase")
	}
	if sl.Erase(3) {
		t.Fatal("second Erase(3) = true, want false")
	}
	if !sl.Empty() || sl.Size() != 0 {
		t.Fatalf("Empty() = %v, Size() = %d after erasing the only key", sl.Empty(), sl.Size())
	}
	checkStruct(t, sl)
}

// 高節點必須在每一層都被解除連結
func TestEraseUnlinksEveryLevel(t *testing.T) {
	sl := mustNew[int](t, WithMaxHeight(8), WithSeed(7))
	const n = 2000
	for i := 0; i < n; i++ {
		sl.Insert(i)
	}
	checkStruct(t, sl)

	for i := 0; i < n; i += 2 {
		if !sl.Erase(i) {
			t.Fatalf("Erase(%d) = false, want true", i)
		}
	}
	checkStruct(t, sl)

	for i := 0; i < n; i++ {
		if got, want := sl.Contains(i), i%2 == 1; got != want {
			t.Fatalf("Contains(%d) = %v, want %v", i, got, want)
		}
	}
	if sl.Size() != n/2 {
		t.Fatalf("Size() = %d, want %d", sl.Size(), n/2)
	}

	for i := 1; i < n; i += 2 {
		sl.Erase(i)
	}
	if !sl.Empty() {
		t.Fatal("list should be empty after erasing every key")
	}
	if _, height := sl.GetMaxStats(); height != 1 {
		t.Errorf("height = %d after erasing every key, want 1", height)
	}
	checkStruct(t, sl)
}

func TestRandomOperationsAgainstMap(t *testing.T) {
	sl := mustNew[int](t, WithMaxHeight(12), WithSeed(99))
	ref := make(map[int]bool)
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 20000; i++ {
		key := r.Intn(500)
		switch r.Intn(3) {
		case 0:
			if got, want := sl.Insert(key), !ref[key]; got != want {
				t.Fatalf("op %d: Insert(%d) = %v, want %v", i, key, got, want)
			}
			ref[key] = true
		case 1:
			if got, want := sl.Erase(key), ref[key]; got != want {
				t.Fatalf("op %d: Erase(%d) = %v, want %v", i, key, got, want)
			}
			delete(ref, key)
		case 2:
			if got, want := sl.Contains(key), ref[key]; got != want {
				t.Fatalf("op %d: Contains(%d) = %v, want %v", i, key, got, want)
			}
		}
		if sl.Size() != len(ref) {
			t.Fatalf("op %d: Size() = %d, want %d", i, sl.Size(), len(ref))
		}
		if i%1000 == 0 {
			checkStruct(t, sl)
		}
	}
	checkStruct(t, sl)
}

func TestDeterministicHeights(t *testing.T) {
	build := func(seed uint64) []int {
		sl := mustNew[int](t, WithSeed(seed))
		for _, k := range primerKeys {
			sl.Insert(k)
		}
		for k := 100; k < 400; k++ {
			sl.Insert(k)
		}
		_, heights := levelZero(sl)
		return heights
	}

	a, b := build(42), build(42)
	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("heights differ at %d: %d vs %d", i, a[i], b[i])
		}
	}

	c := build(43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical shapes")
	}
}

// DefaultSeed 下依序插入 primerKeys，level 0 上 key 0..19 的高度
var primerHeights = []int{1, 1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2}

func TestPrimerHeights(t *testing.T) {
	sl := mustNew[int](t)
	for _, k := range primerKeys {
		sl.Insert(k)
	}
	keys, heights := levelZero(sl)
	for i := range primerHeights {
		if keys[i] != i || heights[i] != primerHeights[i] {
			t.Fatalf("level 0 = %v heights %v, want heights %v", keys, heights, primerHeights)
		}
	}
	if _, h := sl.GetMaxStats(); h != 2 {
		t.Errorf("height = %d, want 2", h)
	}
}

// 重複插入也會消耗一次高度抽樣
func TestDuplicateInsertConsumesHeight(t *testing.T) {
	ref := mustNew[int](t)
	draws := make([]int, 2*len(primerKeys))
	for i := range draws {
		draws[i] = ref.RandomHeight()
	}

	sl := mustNew[int](t)
	want := map[int]int{}
	for i, k := range primerKeys {
		if !sl.Insert(k) {
			t.Fatalf("Insert(%d) = false", k)
		}
		if sl.Insert(k) {
			t.Fatalf("second Insert(%d) = true", k)
		}
		want[k] = draws[2*i]
	}
	keys, heights := levelZero(sl)
	for i, k := range keys {
		if heights[i] != want[k] {
			t.Errorf("key %d: height %d, want %d", k, heights[i], want[k])
		}
	}
	checkStruct(t, sl)
}

func TestRandomHeight(t *testing.T) {
	one := mustNew[int](t, WithMaxHeight(1))
	for i := 0; i < 1000; i++ {
		if h := one.RandomHeight(); h != 1 {
			t.Fatalf("RandomHeight() = %d with max height 1", h)
		}
	}

	sl := mustNew[int](t, WithMaxHeight(3), WithSeed(11))
	const draws = 100000
	atLeast2 := 0
	for i := 0; i < draws; i++ {
		h := sl.RandomHeight()
		if h < 1 || h > 3 {
			t.Fatalf("RandomHeight() = %d, want [1, 3]", h)
		}
		if h >= 2 {
			atLeast2++
		}
	}
	// P(height >= 2) = 1/4
	if p := float64(atLeast2) / draws; p < 0.23 || p > 0.27 {
		t.Errorf("P(height >= 2) = %.4f, want about 0.25", p)
	}
}

func TestClear(t *testing.T) {
	sl := mustNew[int](t)
	const n = 200000
	for i := 0; i < n; i++ {
		sl.Insert(i)
	}
	sl.Clear()

	if !sl.Empty() || sl.Size() != 0 {
		t.Fatalf("Empty() = %v, Size() = %d after Clear", sl.Empty(), sl.Size())
	}
	for h, link := range sl.header.links {
		if link != nil {
			t.Fatalf("header link %d not reset", h)
		}
	}
	if sl.Contains(10) {
		t.Fatal("Contains(10) = true after Clear")
	}
	checkStruct(t, sl)

	if !sl.Insert(10) || sl.Size() != 1 {
		t.Fatal("list unusable after Clear")
	}
	checkStruct(t, sl)
}

func TestCustomComparator(t *testing.T) {
	desc, err := NewWithLess(func(a, b int) bool { return a > b }, WithMaxHeight(8))
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range primerKeys {
		desc.Insert(k)
	}
	keys, _ := levelZero(desc)
	for i, k := range keys {
		if k != 19-i {
			t.Fatalf("descending scan = %v", keys)
		}
	}
	if err := analyTool.CheckStruct[int](desc, func(a, b int) bool { return a > b }); err != nil {
		t.Fatal(err)
	}

	// 不分大小寫：等價的 key 視為重複
	fold, err := NewWithLess(func(a, b string) bool { return strings.ToLower(a) < strings.ToLower(b) })
	if err != nil {
		t.Fatal(err)
	}
	if !fold.Insert("Go") {
		t.Fatal(`Insert("Go") = false`)
	}
	if fold.Insert("go") {
		t.Fatal(`Insert("go") = true, want false for an equivalent key`)
	}
	if !fold.Contains("GO") {
		t.Fatal(`Contains("GO") = false`)
	}
	if !fold.Erase("gO") || !fold.Empty() {
		t.Fatal(`Erase("gO") did not remove the equivalent key`)
	}
}

func TestStringKeys(t *testing.T) {
	sl := mustNew[string](t, WithMaxHeight(4))
	words := []string{"pear", "apple", "fig", "kiwi", "banana"}
	for _, w := range words {
		sl.Insert(w)
	}
	keys, _ := levelZero(sl)
	want := []string{"apple", "banana", "fig", "kiwi", "pear"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("scan = %v, want %v", keys, want)
		}
	}
	checkStruct(t, sl)
}

func TestPrint(t *testing.T) {
	sl := mustNew[int](t)
	for _, k := range primerKeys {
		sl.Insert(k)
	}
	var buf bytes.Buffer
	if err := sl.Print(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("Print wrote %d lines, want 20", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Node { key: 0, height: ") {
		t.Errorf("first line = %q", lines[0])
	}
	if sl.Size() != 20 {
		t.Error("Print mutated the list")
	}
}

func BenchmarkInsert(b *testing.B) {
	sl := mustNew[int](b)
	r := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sl.Insert(r.Int())
	}
}

func BenchmarkContains(b *testing.B) {
	sl := mustNew[int](b)
	const n = 1 << 16
	for i := 0; i < n; i++ {
		sl.Insert(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sl.Contains(i % n)
	}
}
