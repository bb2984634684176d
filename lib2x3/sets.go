package lib2x3

import (
	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// DualSet allows adding rotation systems and returning if an identical one has already been added.
type DualSet interface {

	// TryAdd adds the given rotation system if it is not already present.
	//
	// If an identical rotation system (same node count, same rows in the same slot order) is already in this set,
	// this call has no effect and TryAdd() returns false.  Otherwise G is added and TryAdd() returns true.
	//
	// After one or more calls to TryAdd(), call Close() for cleanup.
	TryAdd(G *go2x3.DualGraph) bool

	// Close removes all previously added items from this set.
	//
	// If you make subsequent calls to TryAdd(), be sure you call Close() when you're done.
	Close()
}

func NewDualSet() DualSet {
	return &dualSet{}
}

type dualSet struct {
	lsmSet
}

// appendDualKey appends Nf then each row as degree, neighbours (all varints).
func appendDualKey(key []byte, G *go2x3.DualGraph) []byte {
	Nf := G.NumFaces()
	key = append(key, proto.EncodeVarint(uint64(Nf))...)
	for u := 0; u < Nf; u++ {
		row := G.Row(go2x3.NodeID(u))
		key = append(key, proto.EncodeVarint(uint64(len(row)))...)
		for _, v := range row {
			key = append(key, proto.EncodeVarint(uint64(v))...)
		}
	}
	return key
}

func (set *dualSet) TryAdd(G *go2x3.DualGraph) bool {
	var buf [512]byte
	key := appendDualKey(buf[:0], G)
	return set.tryAdd(key)
}

type lsmSet struct {
	db *badger.DB
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(errors.Wrap(err, "open in-memory set"))
		}
	}
}

func (set *lsmSet) tryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Discard()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}
	if err == nil {
		err = txn.Commit()
	}

	if err != nil {
		panic(err)
	}

	return added
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
