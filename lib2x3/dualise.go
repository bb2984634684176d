package lib2x3

import (
	"sync"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/pkg/errors"
)

// arcTarget is a worker-private discovery: the target of a canonical arc found at one neighbour slot.
type arcTarget struct {
	to go2x3.NodeID
	ok bool
}

// dualiseKernel holds the launch shape shared by every workgroup of one size class.
type dualiseKernel struct {
	N      int // workgroup size and output vertex count
	Nf     int // dual node count
	stride int // adjacency row stride

	groupPool sync.Pool
}

type groupState struct {
	group   *workgroup
	mem     localMem
	scratch []arcTarget // worker-private discovery slots, N x stride
}

func newDualiseKernel(N, stride, localMemLimit int) (*dualiseKernel, error) {
	if N < go2x3.MinAtoms || N%2 != 0 || N > go2x3.MaxNodeID+1 {
		return nil, errors.Wrapf(go2x3.ErrBadAtomCount, "N=%d", N)
	}
	Nf := go2x3.NumFaces(N)
	if need := localMemBytes(Nf, N, stride); need > localMemLimit {
		return nil, errors.Wrapf(go2x3.ErrCapacityExceeded, "N=%d needs %d bytes (limit %d)", N, need, localMemLimit)
	}

	k := &dualiseKernel{
		N:      N,
		Nf:     Nf,
		stride: stride,
	}
	k.groupPool.New = func() any {
		return &groupState{
			group:   newWorkgroup(N),
			mem:     newLocalMem(Nf, N, stride),
			scratch: make([]arcTarget, N*stride),
		}
	}
	return k, nil
}

// launch runs one workgroup over one batch element.
// dualNeighbours and degrees are the element's global input tables; out receives its N x 3 cubic neighbour rows.
func (k *dualiseKernel) launch(dualNeighbours []go2x3.NodeID, degrees []uint8, out []go2x3.NodeID) error {
	st := k.groupPool.Get().(*groupState)
	defer k.groupPool.Put(st)

	return st.group.run(func(w *worker) {
		k.work(w, st, dualNeighbours, degrees, out)
	})
}

func (k *dualiseKernel) work(w *worker, st *groupState, dualNeighbours []go2x3.NodeID, degrees []uint8, out []go2x3.NodeID) {
	mem := &st.mem
	stageStrided(w, mem.neighbours, dualNeighbours)
	stageStrided(w, mem.degrees, degrees)
	w.Barrier()

	G := DualView{
		Neighbours: mem.neighbours,
		Degrees:    mem.degrees,
		Stride:     k.stride,
	}
	u := go2x3.NodeID(w.ID)
	hasNode := w.ID < k.Nf

	// Phase 1: each node claims the triangles whose canonical arc starts at it.
	found := st.scratch[w.ID*k.stride : (w.ID+1)*k.stride]
	for i := range found {
		found[i] = arcTarget{}
	}
	count := uint32(0)
	if hasNode {
		w.guard(func() {
			for i, Nu := 0, G.Degree(u); i < Nu; i++ {
				arc := G.CanonicalTriangleArc(u, G.Neighbour(u, i))
				if arc.From == u {
					found[i] = arcTarget{to: arc.To, ok: true}
					count++
				}
			}
		})
	}
	w.Barrier()

	// Phase 2: compact the claims into triangle indices 0..N-1.
	base, total := w.ExclusiveScan(count)
	compact := total == uint32(k.N)
	if !compact && w.ID == 0 {
		w.group.fail(errors.Wrapf(go2x3.ErrTriangleCount, "found %d triangles, expected %d", total, k.N))
	}
	if compact && hasNode {
		idx := base
		for i, f := range found {
			if !f.ok {
				continue
			}
			mem.numbers[w.ID*k.stride+i] = go2x3.NodeID(idx)
			mem.arcs[idx] = go2x3.Arc{From: u, To: f.to}
			idx++
		}
	}
	w.Barrier()

	// Phase 3: worker t resolves the three triangles adjacent to triangle t.
	if !compact || w.ID >= k.N || w.group.failed() {
		return
	}
	w.guard(func() {
		t := w.ID
		arc := mem.arcs[t]
		u, v := arc.From, arc.To
		x := G.Next(u, v)

		row := out[t*go2x3.EdgesPerVertex : (t+1)*go2x3.EdgesPerVertex]
		row[0] = k.triangleIndex(G, mem.numbers, G.CanonicalTriangleArc(v, u))
		row[1] = k.triangleIndex(G, mem.numbers, G.CanonicalTriangleArc(x, v))
		row[2] = k.triangleIndex(G, mem.numbers, G.CanonicalTriangleArc(u, x))
	})
}

func (k *dualiseKernel) triangleIndex(G DualView, numbers []go2x3.NodeID, arc go2x3.Arc) go2x3.NodeID {
	return numbers[int(arc.From)*k.stride+G.NeighbourSlot(arc.From, arc.To)]
}
