package datastream

import "github.com/Hakuto4838/skipset/skiplist"

// OperationType 表示操作種類
type OperationType uint8

const (
	OpContains OperationType = iota
	OpInsert
	OpErase
	opTypeCount
)

func (t OperationType) String() string {
	switch t {
	case OpContains:
		return "Contains"
	case OpInsert:
		return "Insert"
	case OpErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

// Valid 判斷是否為已定義的操作
func (t OperationType) Valid() bool {
	return t < opTypeCount
}

// Operation 表示一筆操作
type Operation struct {
	Type OperationType
	Key  skiplist.K
}

// Apply 對集合執行此操作並回傳結果
func (op Operation) Apply(s skiplist.Set[skiplist.K]) bool {
	switch op.Type {
	case OpInsert:
		return s.Insert(op.Key)
	case OpErase:
		return s.Erase(op.Key)
	default:
		return s.Contains(op.Key)
	}
}

// SequenceModel 以既有的 Operation 序列提供順序重播
type SequenceModel struct {
	ops []Operation
	pos int
}

// NewSequenceModelFromOps 由外部供給的操作序列建立模型
func NewSequenceModelFromOps(ops []Operation) *SequenceModel {
	cp := make([]Operation, len(ops))
	copy(cp, ops)
	return &SequenceModel{ops: cp}
}

// Next 回傳下一筆操作，若結束則回傳零值與 false
func (m *SequenceModel) Next() (Operation, bool) {
	if m.pos >= len(m.ops) {
		return Operation{}, false
	}
	op := m.ops[m.pos]
	m.pos++
	return op, true
}

// NextN 回傳接下來 n 筆（或直到結束）的操作
func (m *SequenceModel) NextN(n int) []Operation {
	if n <= 0 || m.pos >= len(m.ops) {
		return nil
	}
	end := min(m.pos+n, len(m.ops))
	// 回傳拷貝避免外部修改底層切片
	out := make([]Operation, end-m.pos)
	copy(out, m.ops[m.pos:end])
	m.pos = end
	return out
}

// Len 回傳操作總數
func (m *SequenceModel) Len() int { return len(m.ops) }

// Reset 游標重置到起點
func (m *SequenceModel) Reset() { m.pos = 0 }
