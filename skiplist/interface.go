package skiplist

// K 是 benchmark 與工具程式使用的 key 型別
type K = int64

// Set 是唯一 key 的有序集合操作
type Set[T any] interface {
	// Insert 插入 key，若已存在等價的 key 則不變動並回傳 false
	Insert(key T) bool
	// Erase 刪除 key，若不存在則回傳 false
	Erase(key T) bool
	Contains(key T) bool
	Empty() bool
	Size() int
	// Clear 移除所有元素
	Clear()
}

// Analyable 提供分析功能的介面
type Analyable[T any] interface {
	Set[T]
	// GetHead 回傳 header（哨兵節點，不帶 key）
	GetHead() Nodelike[T]
	// GetMaxStats 獲取元素數量和目前使用中的最高層數
	GetMaxStats() (size int, height int)
}

// Nodelike 是唯讀的節點檢視
type Nodelike[T any] interface {
	GetKey() T
	// GetHeight 節點參與的層數，level 0 .. height-1
	GetHeight() int
	// GetNextAt 回傳該層的下一個節點，沒有則回傳 nil
	GetNextAt(level int) Nodelike[T]
}
