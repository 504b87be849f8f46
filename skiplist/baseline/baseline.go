// Package baseline 將第三方的有序容器包裝成 skiplist.Set，作為 benchmark 的對照組。
package baseline

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	hskiplist "github.com/huandu/skiplist"

	"github.com/Hakuto4838/skipset/skiplist"
)

// Huandu 使用 github.com/huandu/skiplist，value 固定為空
type Huandu struct {
	list *hskiplist.SkipList
}

func NewHuandu() *Huandu {
	return &Huandu{list: hskiplist.New(hskiplist.Int64)}
}

func (h *Huandu) Insert(key skiplist.K) bool {
	if h.list.Get(key) != nil {
		return false
	}
	h.list.Set(key, struct{}{})
	return true
}

func (h *Huandu) Erase(key skiplist.K) bool {
	return h.list.Remove(key) != nil
}

func (h *Huandu) Contains(key skiplist.K) bool {
	return h.list.Get(key) != nil
}

func (h *Huandu) Empty() bool {
	return h.list.Len() == 0
}

func (h *Huandu) Size() int {
	return h.list.Len()
}

func (h *Huandu) Clear() {
	h.list.Init()
}

// TreeSet 使用 gods 的紅黑樹 treeset
type TreeSet struct {
	set *treeset.Set
}

func NewTreeSet() *TreeSet {
	return &TreeSet{set: treeset.NewWith(utils.Int64Comparator)}
}

func (s *TreeSet) Insert(key skiplist.K) bool {
	if s.set.Contains(key) {
		return false
	}
	s.set.Add(key)
	return true
}

func (s *TreeSet) Erase(key skiplist.K) bool {
	if !s.set.Contains(key) {
		return false
	}
	s.set.Remove(key)
	return true
}

func (s *TreeSet) Contains(key skiplist.K) bool {
	return s.set.Contains(key)
}

func (s *TreeSet) Empty() bool {
	return s.set.Empty()
}

func (s *TreeSet) Size() int {
	return s.set.Size()
}

func (s *TreeSet) Clear() {
	s.set.Clear()
}
