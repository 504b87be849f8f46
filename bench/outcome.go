package bench

import (
	"github.com/Hakuto4838/skipset/datastream"
	"github.com/Hakuto4838/skipset/skiplist"
)

// Outcome 統計一次重播中每種操作的布林結果
type Outcome struct {
	Inserted   int // Insert 回傳 true
	Duplicates int // Insert 回傳 false
	Erased     int
	Missing    int // Erase 回傳 false
	Hits       int
	Misses     int
}

func (o *Outcome) record(t datastream.OperationType, ok bool) {
	switch t {
	case datastream.OpInsert:
		if ok {
			o.Inserted++
		} else {
			o.Duplicates++
		}
	case datastream.OpErase:
		if ok {
			o.Erased++
		} else {
			o.Missing++
		}
	default:
		if ok {
			o.Hits++
		} else {
			o.Misses++
		}
	}
}

// Replay 依序對 s 執行 ops
func Replay(s skiplist.Set[skiplist.K], ops []datastream.Operation) Outcome {
	var o Outcome
	for _, op := range ops {
		o.record(op.Type, op.Apply(s))
	}
	return o
}

// Expected 以 map 重播得到的正確結果
func Expected(bf *datastream.BenchFile) Outcome {
	return Replay(make(mapSet), bf.Ops)
}

type mapSet map[skiplist.K]struct{}

func (m mapSet) Insert(key skiplist.K) bool {
	if _, ok := m[key]; ok {
		return false
	}
	m[key] = struct{}{}
	return true
}

func (m mapSet) Erase(key skiplist.K) bool {
	if _, ok := m[key]; !ok {
		return false
	}
	delete(m, key)
	return true
}

func (m mapSet) Contains(key skiplist.K) bool {
	_, ok := m[key]
	return ok
}

func (m mapSet) Empty() bool { return len(m) == 0 }
func (m mapSet) Size() int   { return len(m) }
func (m mapSet) Clear()      { clear(m) }
