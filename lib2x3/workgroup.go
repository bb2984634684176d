package lib2x3

import (
	"sync"
	"unsafe"

	"github.com/2x3systems/dual2x3/go2x3"
)

// workgroup is a cooperating group of workers that share local memory and synchronise via barriers.
//
// Every worker runs on its own goroutine and must reach every barrier, including after a failure,
// so a failed phase is recorded with fail() rather than by returning early.
type workgroup struct {
	size    int
	barrier barrier
	scan    [2][]uint32 // double-buffered scan slots, one per worker

	mu  sync.Mutex
	err error
}

type worker struct {
	ID    int
	group *workgroup
}

func newWorkgroup(size int) *workgroup {
	wg := &workgroup{
		size: size,
	}
	wg.barrier.init(size)
	wg.scan[0] = make([]uint32, size)
	wg.scan[1] = make([]uint32, size)
	return wg
}

// run launches one goroutine per worker, blocks until all complete and returns the first recorded failure.
func (wg *workgroup) run(kernel func(w *worker)) error {
	wg.err = nil

	var done sync.WaitGroup
	done.Add(wg.size)
	for i := 0; i < wg.size; i++ {
		w := &worker{
			ID:    i,
			group: wg,
		}
		go func() {
			defer done.Done()
			kernel(w)
		}()
	}
	done.Wait()
	return wg.err
}

func (wg *workgroup) fail(err error) {
	wg.mu.Lock()
	if wg.err == nil {
		wg.err = err
	}
	wg.mu.Unlock()
}

func (wg *workgroup) failed() bool {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	return wg.err != nil
}

// Barrier blocks until every worker of the group has arrived.
// Writes made by any worker before the barrier are visible to all workers after it.
func (w *worker) Barrier() {
	w.group.barrier.wait()
}

// ExclusiveScan returns the sum of the values contributed by all lower-numbered workers, and the group total.
// Every worker of the group must call it.
func (w *worker) ExclusiveScan(val uint32) (prefix, total uint32) {
	g := w.group
	g.scan[0][w.ID] = val
	w.Barrier()

	src := 0
	for d := 1; d < g.size; d <<= 1 {
		cur, nxt := g.scan[src], g.scan[src^1]
		x := cur[w.ID]
		if w.ID >= d {
			x += cur[w.ID-d]
		}
		nxt[w.ID] = x
		w.Barrier()
		src ^= 1
	}

	inclusive := g.scan[src][w.ID]
	total = g.scan[src][g.size-1]

	// the slots are rewritten by the next scan
	w.Barrier()
	return inclusive - val, total
}

// guard runs one kernel phase, converting an invariant violation into a group failure.
func (w *worker) guard(phase func()) {
	defer func() {
		if r := recover(); r != nil {
			iv, ok := r.(invariantViolation)
			if !ok {
				panic(r)
			}
			w.group.fail(iv.err)
		}
	}()
	phase()
}

// stageStrided cooperatively copies src into dst: worker i copies elements i, i+size, i+2*size, ...
func stageStrided[T any](w *worker, dst, src []T) {
	for i := w.ID; i < len(dst); i += w.group.size {
		dst[i] = src[i]
	}
}

// barrier is a reusable (cyclic) barrier for a fixed number of parties.
type barrier struct {
	mu         sync.Mutex
	cond       sync.Cond
	parties    int
	waiting    int
	generation uint64
}

func (b *barrier) init(parties int) {
	b.parties = parties
	b.cond.L = &b.mu
}

func (b *barrier) wait() {
	b.mu.Lock()
	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
	} else {
		for gen == b.generation {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}

// localMem is the per-workgroup staging area of one batch element.
type localMem struct {
	neighbours []go2x3.NodeID // cached adjacency, Nf x stride
	degrees    []uint8        // cached degrees, Nf
	numbers    []go2x3.NodeID // triangle index of each canonical arc, Nf x stride
	arcs       []go2x3.Arc    // canonical arc of each triangle index, N
}

// localMemBytes returns the local memory footprint of one workgroup.
func localMemBytes(Nf, N, stride int) int {
	var (
		node go2x3.NodeID
		deg  uint8
		arc  go2x3.Arc
	)
	return 2*Nf*stride*int(unsafe.Sizeof(node)) + Nf*int(unsafe.Sizeof(deg)) + N*int(unsafe.Sizeof(arc))
}

func newLocalMem(Nf, N, stride int) localMem {
	return localMem{
		neighbours: make([]go2x3.NodeID, Nf*stride),
		degrees:    make([]uint8, Nf),
		numbers:    make([]go2x3.NodeID, Nf*stride),
		arcs:       make([]go2x3.Arc, N),
	}
}
