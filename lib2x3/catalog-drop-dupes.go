package lib2x3

import (
	"bytes"
	"hash/maphash"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/gogo/protobuf/proto"
)

type dropDupes struct {
	hashMap   map[uint64][]byte
	hasher    maphash.Hash
	bufPool   []byte
	bufPoolSz int
	opts      DropDupeOpts
}

const DefaultPoolSz = 32 * 1024

type DropDupeOpts struct {
	PoolSz int // 0 denotes DefaultPoolSz (32k)
}

// DropDupes is a CubicAdder that only accepts graphs whose neighbour tables it has not seen before.
type DropDupes interface {
	go2x3.CubicAdder

	// Reset forgets every graph added so far.
	Reset()

	Close()
}

func NewDropDupes(opts DropDupeOpts) DropDupes {
	if opts.PoolSz <= 0 {
		opts.PoolSz = DefaultPoolSz
	}
	return &dropDupes{
		hashMap: make(map[uint64][]byte),
		opts:    opts,
	}
}

func (cat *dropDupes) Reset() {
	cat.bufPoolSz = 0
	for k := range cat.hashMap {
		delete(cat.hashMap, k)
	}
}

func (cat *dropDupes) Close() {
	cat.Reset()
	cat.hashMap = nil
}

// appendCubicKey appends N then every neighbour ID (all varints).
func appendCubicKey(key []byte, X *go2x3.CubicGraph) []byte {
	key = append(key, proto.EncodeVarint(uint64(X.NumAtoms()))...)
	for _, v := range X.Neighbours {
		key = append(key, proto.EncodeVarint(uint64(v))...)
	}
	return key
}

func (cat *dropDupes) TryAddGraph(X *go2x3.CubicGraph) bool {
	var keyBuf [512]byte
	Xkey := appendCubicKey(keyBuf[:0], X)

	cat.hasher.Reset()
	cat.hasher.Write(Xkey)
	hash := cat.hasher.Sum64()

	existing, found := cat.hashMap[hash]
	for found {
		if bytes.Equal(existing, Xkey) {
			return false
		}
		hash++
		existing, found = cat.hashMap[hash]
	}

	// If we've gotten here, it means this is a new entry.
	// Place a copy of the key in our backing pool (in the heap).
	// If we run out of space in our pool, we start a new pool
	pos := cat.bufPoolSz
	itemLen := len(Xkey)
	if pos+itemLen > cap(cat.bufPool) {
		allocSz := max(cat.opts.PoolSz, itemLen)
		cat.bufPool = make([]byte, allocSz)
		cat.bufPoolSz = 0
		pos = 0
	}

	cat.hashMap[hash] = append(cat.bufPool[pos:pos], Xkey...)
	cat.bufPoolSz += itemLen
	return true
}
