package catalog

import (
	"encoding/binary"
	"runtime"
	"sort"
	"sync"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState
		MajorVers, MinorVers (varint)
		{ N, count } (varint pairs, ascending N)

	N (uint16 BE), ID (uint64 BE) => CubicGraph
		BatchID (16 bytes)
		N*3 neighbour IDs (varint)

Graph keys sort by atom count, then isomer ID, so a selection over an atom range is one iterator seek.
The state key is shorter than any graph key and N=0 is never a valid atom count, so the state entry never collides.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kMajorVers = 2026
	kMinorVers = 1

	kGraphKeyLen = 2 + 8
)

// catalogState is the bookkeeping persisted alongside the graph entries.
type catalogState struct {
	MajorVers uint64
	MinorVers uint64
	NumGraphs map[int]uint64 // graph count by atom count
}

func (st *catalogState) Marshal() []byte {
	buf := proto.NewBuffer(make([]byte, 0, 64))
	buf.EncodeVarint(st.MajorVers)
	buf.EncodeVarint(st.MinorVers)

	counts := make([]int, 0, len(st.NumGraphs))
	for N := range st.NumGraphs {
		counts = append(counts, N)
	}
	sort.Ints(counts)
	for _, N := range counts {
		buf.EncodeVarint(uint64(N))
		buf.EncodeVarint(st.NumGraphs[N])
	}
	return buf.Bytes()
}

func (st *catalogState) Unmarshal(val []byte) error {
	var fields []uint64
	for len(val) > 0 {
		x, n := proto.DecodeVarint(val)
		if n == 0 {
			return errors.Wrap(go2x3.ErrBadEncoding, "catalog state")
		}
		fields = append(fields, x)
		val = val[n:]
	}
	if len(fields) < 2 || len(fields)%2 != 0 {
		return errors.Wrap(go2x3.ErrBadEncoding, "catalog state")
	}

	st.MajorVers, st.MinorVers = fields[0], fields[1]
	st.NumGraphs = make(map[int]uint64, len(fields)/2-1)
	for i := 2; i < len(fields); i += 2 {
		st.NumGraphs[int(fields[i])] = fields[i+1]
	}
	return nil
}

// catalog is a badger db wrapper for dualised cubic graphs
type catalog struct {
	ctx        go2x3.CatalogContext
	readOnly   bool
	mu         sync.Mutex
	readers    sync.WaitGroup // in-flight Select scans; Close waits on these before closing db
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) a catalog and attaches it to the given context.
//
// An empty opts.DbPathName opens an in-memory catalog.
func OpenCatalog(ctx go2x3.CatalogContext, opts go2x3.CatalogOpts) (go2x3.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(go2x3.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "open catalog %q", opts.DbPathName)
	}

	// Once the db is open, the catalog ctx is blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = nil
		cat.stateDirty = true
		cat.state = catalogState{
			MajorVers: kMajorVers,
			MinorVers: kMinorVers,
			NumGraphs: make(map[int]uint64),
		}
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(go2x3.ErrBadCatalogParam, "catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(1).Infof("catalog: opened %q (in-memory=%v, read-only=%v)", opts.DbPathName, dbOpts.InMemory, cat.readOnly)
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal())
	})
	if err != nil {
		return errors.Wrap(err, "flush catalog state")
	}
	cat.stateDirty = false
	return nil
}

func (cat *catalog) Close() error {
	cat.mu.Lock()
	db := cat.db
	if db == nil {
		cat.mu.Unlock()
		return nil
	}
	err := cat.flushState()
	cat.db = nil
	cat.mu.Unlock()

	cat.readers.Wait()
	if closeErr := db.Close(); err == nil {
		err = closeErr
	}
	cat.ctx.DetachCatalog(cat)
	return err
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumGraphs(forAtomCount int) int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumGraphs[forAtomCount])
}

func formGraphKey(key []byte, numAtoms int, id uint64) []byte {
	key = binary.BigEndian.AppendUint16(key, uint16(numAtoms))
	key = binary.BigEndian.AppendUint64(key, id)
	return key
}

func appendGraphValue(val []byte, X *go2x3.CubicGraph) []byte {
	val = append(val, X.BatchID[:]...)
	for _, v := range X.Neighbours {
		val = append(val, proto.EncodeVarint(uint64(v))...)
	}
	return val
}

func readGraphValue(key, val []byte) (*go2x3.CubicGraph, error) {
	if len(key) != kGraphKeyLen || len(val) < len(uuid.UUID{}) {
		return nil, errors.Wrap(go2x3.ErrBadEncoding, "catalog entry")
	}
	N := int(binary.BigEndian.Uint16(key))
	X := &go2x3.CubicGraph{
		ID:         binary.BigEndian.Uint64(key[2:]),
		Neighbours: make([]go2x3.NodeID, N*go2x3.EdgesPerVertex),
	}
	copy(X.BatchID[:], val)

	val = val[len(X.BatchID):]
	for i := range X.Neighbours {
		v, n := proto.DecodeVarint(val)
		if n == 0 || v > go2x3.MaxNodeID {
			return nil, errors.Wrapf(go2x3.ErrBadEncoding, "graph %d row %d", X.ID, i/go2x3.EdgesPerVertex)
		}
		X.Neighbours[i] = go2x3.NodeID(v)
		val = val[n:]
	}
	return X, nil
}

// TryAddGraph adds X keyed by its atom count and isomer ID.  An existing entry under that key is left as is.
func (cat *catalog) TryAddGraph(X *go2x3.CubicGraph) bool {
	if cat.readOnly || X == nil {
		return false
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.db == nil {
		return false
	}

	var keyBuf [kGraphKeyLen]byte
	N := X.NumAtoms()
	key := formGraphKey(keyBuf[:0], N, X.ID)

	added := false
	err := cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		val := appendGraphValue(make([]byte, 0, 16+3*N*2), X)
		if err = txn.Set(key, val); err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		klog.Errorf("catalog: add graph %d (N=%d): %v", X.ID, N, err)
		return false
	}
	if added {
		cat.state.NumGraphs[N]++
		cat.stateDirty = true
	}
	return added
}

func (cat *catalog) Get(numAtoms int, id uint64) (*go2x3.CubicGraph, error) {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.db == nil {
		return nil, errors.Wrap(go2x3.ErrBadCatalogParam, "catalog is closed")
	}

	var keyBuf [kGraphKeyLen]byte
	key := formGraphKey(keyBuf[:0], numAtoms, id)

	var X *go2x3.CubicGraph
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		X, err = readGraphValue(key, val)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(go2x3.ErrGraphNotFound, "N=%d id=%d", numAtoms, id)
	}
	return X, err
}

// Select sends every graph within the selector's atom range to onHit, ordered by atom count then isomer ID.
//
// onHit is not closed.  A Close issued mid-scan waits for the scan to finish.
func (cat *catalog) Select(sel go2x3.GraphSelector, onHit go2x3.OnGraphHit) {
	cat.mu.Lock()
	db := cat.db
	if db != nil {
		cat.readers.Add(1)
	}
	cat.mu.Unlock()
	if db == nil {
		return
	}
	defer cat.readers.Done()

	var minKey [2]byte
	binary.BigEndian.PutUint16(minKey[:], uint16(max(sel.MinAtoms, 0)))

	txn := db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   300,
	})
	defer it.Close()

	for it.Seek(minKey[:]); it.Valid(); it.Next() {
		item := it.Item()
		key := item.Key()
		if len(key) != kGraphKeyLen {
			continue
		}
		N := int(binary.BigEndian.Uint16(key))
		if sel.MaxAtoms > 0 && N > sel.MaxAtoms {
			break
		}

		err := item.Value(func(val []byte) error {
			X, err := readGraphValue(key, val)
			if err != nil {
				return err
			}
			if sel.SelectsGraph(X) {
				onHit <- X
			}
			return nil
		})
		if err != nil {
			klog.Warningf("catalog: skipping entry: %v", err)
		}
	}
}
