package datastream

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/Hakuto4838/skipset/skiplist"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "SLSET001"
// uint16   Version: 1
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次（key 升冪）：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Contains,1=Insert,2=Erase)
//   int64   Key

var (
	benchMagic   = [8]byte{'S', 'L', 'S', 'E', 'T', '0', '0', '1'}
	benchVersion = uint16(1)
)

var (
	ErrBadMagic   = errors.New("bench file: invalid magic")
	ErrBadVersion = errors.New("bench file: unsupported version")
	ErrBadOpType  = errors.New("bench file: invalid operation type")
)

// BenchFile 包含 key 的機率分布與操作序列
type BenchFile struct {
	Dist map[skiplist.K]float64
	Ops  []Operation
}

// Entropy 回傳分布的熵
func (bf *BenchFile) Entropy() float64 {
	return EntropyFromDist(bf.Dist)
}

// SortedKeys 依升冪回傳分布中的所有 key
func (bf *BenchFile) SortedKeys() []skiplist.K {
	keys := make([]skiplist.K, 0, len(bf.Dist))
	for k := range bf.Dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ToSequenceModel 將 BenchFile 轉為可重播的 SequenceModel
func (bf *BenchFile) ToSequenceModel() *SequenceModel {
	if bf == nil {
		return NewSequenceModelFromOps(nil)
	}
	return NewSequenceModelFromOps(bf.Ops)
}

// binWriter 記住第一個錯誤，之後的寫入都忽略
type binWriter struct {
	w   io.Writer
	err error
}

func (bw *binWriter) put(v any) {
	if bw.err != nil {
		return
	}
	bw.err = binary.Write(bw.w, binary.LittleEndian, v)
}

// WriteBenchFile 將 bf 以 SLSET001 格式寫入 w
func WriteBenchFile(w io.Writer, bf *BenchFile) error {
	if bf == nil {
		return errors.New("nil bench file")
	}
	buf := bufio.NewWriter(w)
	bw := &binWriter{w: buf}

	bw.put(benchMagic)
	bw.put(benchVersion)
	bw.put(uint16(0)) // reserved

	keys := bf.SortedKeys()
	bw.put(uint32(len(keys)))
	for _, k := range keys {
		bw.put(int64(k))
		bw.put(bf.Dist[k])
	}

	bw.put(uint64(len(bf.Ops)))
	for _, op := range bf.Ops {
		bw.put(uint8(op.Type))
		bw.put(int64(op.Key))
	}
	if bw.err != nil {
		return errors.Wrap(bw.err, "write bench file")
	}
	return errors.Wrap(buf.Flush(), "flush bench file")
}

// ReadBenchFile 從 r 讀取 SLSET001 格式的資料
func ReadBenchFile(r io.Reader) (*BenchFile, error) {
	br := bufio.NewReader(r)
	read := func(v any) error {
		return binary.Read(br, binary.LittleEndian, v)
	}

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, errors.Wrap(err, "read magic")
	}
	if magic != benchMagic {
		return nil, errors.Wrapf(ErrBadMagic, "%q", magic[:])
	}
	var ver, reserved uint16
	if err := read(&ver); err != nil {
		return nil, errors.Wrap(err, "read version")
	}
	if ver != benchVersion {
		return nil, errors.Wrapf(ErrBadVersion, "%d", ver)
	}
	if err := read(&reserved); err != nil {
		return nil, errors.Wrap(err, "read reserved")
	}

	// distribution
	var distCount uint32
	if err := read(&distCount); err != nil {
		return nil, errors.Wrap(err, "read dist count")
	}
	dist := make(map[skiplist.K]float64, min(distCount, 1<<20))
	for i := uint32(0); i < distCount; i++ {
		var key int64
		var weight float64
		if err := read(&key); err != nil {
			return nil, errors.Wrapf(err, "read dist key %d", i)
		}
		if err := read(&weight); err != nil {
			return nil, errors.Wrapf(err, "read dist weight %d", i)
		}
		dist[skiplist.K(key)] = weight
	}

	// operations
	var opCount uint64
	if err := read(&opCount); err != nil {
		return nil, errors.Wrap(err, "read op count")
	}
	ops := make([]Operation, 0, min(opCount, 1<<20))
	for i := uint64(0); i < opCount; i++ {
		var t uint8
		var key int64
		if err := read(&t); err != nil {
			return nil, errors.Wrapf(err, "read op %d", i)
		}
		if !OperationType(t).Valid() {
			return nil, errors.Wrapf(ErrBadOpType, "op %d: type %d", i, t)
		}
		if err := read(&key); err != nil {
			return nil, errors.Wrapf(err, "read op %d", i)
		}
		ops = append(ops, Operation{Type: OperationType(t), Key: skiplist.K(key)})
	}

	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// SaveBenchFile 寫入檔案
func SaveBenchFile(filename string, bf *BenchFile) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "create bench file")
	}
	if err := WriteBenchFile(file, bf); err != nil {
		file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "close bench file")
}

// LoadBenchFile 讀取檔案
func LoadBenchFile(filename string) (*BenchFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open bench file")
	}
	defer file.Close()
	bf, err := ReadBenchFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return bf, nil
}
