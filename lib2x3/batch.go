package lib2x3

import (
	"context"
	"runtime"
	"time"
	"unsafe"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// IsomerBatch holds a batch of same-sized dual graphs and the cubic graphs produced from them.
//
// Every table is a flat array of Capacity equally sized rows, one row per isomer.
type IsomerBatch struct {
	RunID    uuid.UUID // identifies this batch in catalogs
	NumAtoms int       // N, vertices per cubic graph
	NumFaces int       // Nf, nodes per dual graph
	Capacity int       // max isomers
	Opts     go2x3.DualiseOpts

	CubicNeighbours []go2x3.NodeID // Capacity x N x 3
	DualNeighbours  []go2x3.NodeID // Capacity x Nf x MaxDegree
	FaceDegrees     []uint8        // Capacity x Nf
	IDs             []uint64       // Capacity
	Statuses        []go2x3.IsomerStatus

	count int // isomers pushed so far
}

// batchField describes one table of an IsomerBatch so that allocate, copy and clear can iterate all tables generically.
type batchField struct {
	Name     string
	ElemSize int
	Scalar   bool // one element per isomer rather than a per-graph table

	width func(b *IsomerBatch) int
	alloc func(b *IsomerBatch, n int)
	copy  func(dst, src *IsomerBatch)
	clear func(b *IsomerBatch)
}

func makeField[T any](name string, scalar bool, width func(b *IsomerBatch) int, table func(b *IsomerBatch) *[]T) batchField {
	var zero T
	return batchField{
		Name:     name,
		ElemSize: int(unsafe.Sizeof(zero)),
		Scalar:   scalar,
		width:    width,
		alloc: func(b *IsomerBatch, n int) {
			*table(b) = make([]T, n)
		},
		copy: func(dst, src *IsomerBatch) {
			copy(*table(dst), *table(src))
		},
		clear: func(b *IsomerBatch) {
			tbl := *table(b)
			for i := range tbl {
				tbl[i] = zero
			}
		},
	}
}

var batchSchema = []batchField{
	makeField("cubic_neighbours", false,
		func(b *IsomerBatch) int { return b.NumAtoms * go2x3.EdgesPerVertex },
		func(b *IsomerBatch) *[]go2x3.NodeID { return &b.CubicNeighbours }),
	makeField("dual_neighbours", false,
		func(b *IsomerBatch) int { return b.NumFaces * b.Opts.MaxDegree },
		func(b *IsomerBatch) *[]go2x3.NodeID { return &b.DualNeighbours }),
	makeField("face_degrees", false,
		func(b *IsomerBatch) int { return b.NumFaces },
		func(b *IsomerBatch) *[]uint8 { return &b.FaceDegrees }),
	makeField("IDs", true,
		func(b *IsomerBatch) int { return 1 },
		func(b *IsomerBatch) *[]uint64 { return &b.IDs }),
	makeField("statuses", true,
		func(b *IsomerBatch) int { return 1 },
		func(b *IsomerBatch) *[]go2x3.IsomerStatus { return &b.Statuses }),
}

// ResolveOpts returns opts with every zero field replaced by its default.
func ResolveOpts(opts go2x3.DualiseOpts) go2x3.DualiseOpts {
	if opts.MaxDegree <= 0 {
		opts.MaxDegree = go2x3.MaxDegree
	}
	if opts.MaxWorkgroups <= 0 {
		opts.MaxWorkgroups = runtime.GOMAXPROCS(0)
	}
	if opts.LocalMemBytes <= 0 {
		opts.LocalMemBytes = go2x3.DefaultLocalMemBytes
	}
	return opts
}

// NewIsomerBatch allocates an empty batch for up to capacity isomers of N atoms.
func NewIsomerBatch(N, capacity int, opts go2x3.DualiseOpts) (*IsomerBatch, error) {
	opts = ResolveOpts(opts)
	if N < go2x3.MinAtoms || N%2 != 0 || N > go2x3.MaxNodeID+1 {
		return nil, errors.Wrapf(go2x3.ErrBadAtomCount, "N=%d", N)
	}
	if opts.MaxDegree < 3 || opts.MaxDegree > 255 {
		return nil, errors.Wrapf(go2x3.ErrBadDegree, "MaxDegree=%d", opts.MaxDegree)
	}
	if capacity <= 0 {
		return nil, errors.Wrapf(go2x3.ErrBatchFull, "capacity=%d", capacity)
	}

	b := &IsomerBatch{
		RunID:    uuid.New(),
		NumAtoms: N,
		NumFaces: go2x3.NumFaces(N),
		Capacity: capacity,
		Opts:     opts,
	}
	for _, f := range batchSchema {
		f.alloc(b, capacity*f.width(b))
	}
	return b, nil
}

// Bytes returns the total size of all tables in this batch.
func (b *IsomerBatch) Bytes() int {
	total := 0
	for _, f := range batchSchema {
		total += b.Capacity * f.width(b) * f.ElemSize
	}
	return total
}

// CopyFrom replaces the contents of b with a copy of src, reallocating when the shapes differ.
func (b *IsomerBatch) CopyFrom(src *IsomerBatch) {
	sameShape := b.NumAtoms == src.NumAtoms && b.Capacity == src.Capacity && b.Opts.MaxDegree == src.Opts.MaxDegree
	b.RunID = src.RunID
	b.NumAtoms = src.NumAtoms
	b.NumFaces = src.NumFaces
	b.Capacity = src.Capacity
	b.Opts = src.Opts
	b.count = src.count
	for _, f := range batchSchema {
		if !sameShape {
			f.alloc(b, b.Capacity*f.width(b))
		}
		f.copy(b, src)
	}
}

// Clear empties the batch, zeroing every table.
func (b *IsomerBatch) Clear() {
	for _, f := range batchSchema {
		f.clear(b)
	}
	b.count = 0
}

// Len returns the number of isomers pushed into this batch.
func (b *IsomerBatch) Len() int {
	return b.count
}

// Push validates G and appends it as the next isomer, returning its index.
func (b *IsomerBatch) Push(G *go2x3.DualGraph, id uint64) (int, error) {
	if b.count >= b.Capacity {
		return -1, go2x3.ErrBatchFull
	}
	idx := b.count
	if err := b.SetIsomer(idx, G, id); err != nil {
		return -1, err
	}
	return idx, nil
}

// SetIsomer validates G and stages it at the given batch index.
func (b *IsomerBatch) SetIsomer(idx int, G *go2x3.DualGraph, id uint64) error {
	if idx < 0 || idx >= b.Capacity {
		return errors.Wrapf(go2x3.ErrBadIsomerIndex, "index %d (capacity %d)", idx, b.Capacity)
	}
	if G == nil {
		return go2x3.ErrNilGraph
	}
	if err := ValidateDual(G, b.NumAtoms, b.Opts.MaxDegree); err != nil {
		return errors.Wrapf(err, "isomer %d", id)
	}

	stride := b.Opts.MaxDegree
	Nf := b.NumFaces
	dst := b.DualNeighbours[idx*Nf*stride : (idx+1)*Nf*stride]
	for i := range dst {
		dst[i] = 0
	}
	for u := 0; u < Nf; u++ {
		copy(dst[u*stride:], G.Row(go2x3.NodeID(u)))
	}
	copy(b.FaceDegrees[idx*Nf:(idx+1)*Nf], G.Degrees)
	b.IDs[idx] = id
	b.Statuses[idx] = go2x3.IsomerReady
	if idx >= b.count {
		b.count = idx + 1
	}
	return nil
}

// Isomer returns a view of the dual graph staged at the given index.
func (b *IsomerBatch) Isomer(idx int) DualView {
	stride := b.Opts.MaxDegree
	Nf := b.NumFaces
	return DualView{
		Neighbours: b.DualNeighbours[idx*Nf*stride : (idx+1)*Nf*stride],
		Degrees:    b.FaceDegrees[idx*Nf : (idx+1)*Nf],
		Stride:     stride,
	}
}

// Cubic returns a copy of the cubic graph produced for the given index.
func (b *IsomerBatch) Cubic(idx int) (*go2x3.CubicGraph, error) {
	if idx < 0 || idx >= b.Capacity {
		return nil, errors.Wrapf(go2x3.ErrBadIsomerIndex, "index %d (capacity %d)", idx, b.Capacity)
	}
	if b.Statuses[idx] != go2x3.IsomerDualised {
		return nil, errors.Wrapf(go2x3.ErrNotDualised, "isomer %d is %v", b.IDs[idx], b.Statuses[idx])
	}
	rowLen := b.NumAtoms * go2x3.EdgesPerVertex
	return &go2x3.CubicGraph{
		ID:         b.IDs[idx],
		BatchID:    b.RunID,
		Neighbours: append([]go2x3.NodeID(nil), b.CubicNeighbours[idx*rowLen:(idx+1)*rowLen]...),
	}, nil
}

// Stream emits every dualised isomer of this batch and then closes.
func (b *IsomerBatch) Stream() *go2x3.CubicStream {
	next := go2x3.NewCubicStream()

	go func() {
		for i := 0; i < b.count; i++ {
			if X, err := b.Cubic(i); err == nil {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

// Dualise transforms every Ready isomer of b into its cubic graph, one workgroup per isomer.
//
// Isomers are marked Dualised or Failed.  The first failure aborts the invocation and is returned.
func Dualise(ctx context.Context, b *IsomerBatch) error {
	k, err := newDualiseKernel(b.NumAtoms, b.Opts.MaxDegree, b.Opts.LocalMemBytes)
	if err != nil {
		return err
	}

	startTime := time.Now()
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(b.Opts.MaxWorkgroups)

	launched := 0
	stride := b.Opts.MaxDegree
	Nf, N := b.NumFaces, b.NumAtoms
	for i := 0; i < b.count; i++ {
		if b.Statuses[i] != go2x3.IsomerReady {
			continue
		}
		if grpCtx.Err() != nil {
			break
		}
		idx := i
		launched++
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			err := k.launch(
				b.DualNeighbours[idx*Nf*stride:(idx+1)*Nf*stride],
				b.FaceDegrees[idx*Nf:(idx+1)*Nf],
				b.CubicNeighbours[idx*N*go2x3.EdgesPerVertex:(idx+1)*N*go2x3.EdgesPerVertex],
			)
			if err != nil {
				b.Statuses[idx] = go2x3.IsomerFailed
				klog.Warningf("dualise: isomer %d (N=%d) failed: %v", b.IDs[idx], N, err)
				return errors.Wrapf(err, "isomer %d", b.IDs[idx])
			}
			b.Statuses[idx] = go2x3.IsomerDualised
			klog.V(3).Infof("dualise: isomer %d done", b.IDs[idx])
			return nil
		})
	}

	err = grp.Wait()
	if err == nil {
		err = ctx.Err()
	}
	klog.V(2).Infof("dualise: %d isomers of N=%d in %v", launched, N, time.Since(startTime))
	return err
}
