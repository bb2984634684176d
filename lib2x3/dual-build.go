package lib2x3

import (
	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/emirpasic/gods/queues/arrayqueue"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"
)

func arcKey(u, v go2x3.NodeID) uint64 {
	return uint64(u)<<32 | uint64(v)
}

// ValidateDual checks that G is a triangulated rotation system for the cubic size class of N atoms
// whose node degrees lie within 3..maxDegree.
//
// This is the batch constructor's gate: the dualise kernel assumes every property checked here.
func ValidateDual(G *go2x3.DualGraph, N, maxDegree int) error {
	if G == nil {
		return go2x3.ErrNilGraph
	}
	Nf := G.NumFaces()
	if Nf != go2x3.NumFaces(N) || go2x3.NumAtoms(Nf) != N {
		return errors.Wrapf(go2x3.ErrBadFaceCount, "got %d nodes, N=%d requires %d", Nf, N, go2x3.NumFaces(N))
	}
	stride := G.RowStride()
	if len(G.Neighbours) < Nf*stride {
		return errors.Wrapf(go2x3.ErrBadEncoding, "adjacency table has %d entries, expected %d", len(G.Neighbours), Nf*stride)
	}

	// Every arc u->v, keyed in a tree so reverse arcs and repeats can be looked up.
	arcs := redblacktree.NewWith(utils.UInt64Comparator)
	for u := 0; u < Nf; u++ {
		deg := int(G.Degrees[u])
		if deg < 3 || deg > maxDegree || deg > stride {
			return errors.Wrapf(go2x3.ErrBadDegree, "node %d has degree %d (max %d)", u, deg, maxDegree)
		}
		for i, v := range G.Row(go2x3.NodeID(u)) {
			if int(v) >= Nf {
				return errors.Wrapf(go2x3.ErrBadNodeID, "node %d slot %d refers to %d", u, i, v)
			}
			if int(v) == u {
				return errors.Wrapf(go2x3.ErrBrokenEdges, "node %d is its own neighbour", u)
			}
			key := arcKey(go2x3.NodeID(u), v)
			if _, exists := arcs.Get(key); exists {
				return errors.Wrapf(go2x3.ErrBrokenEdges, "node %d lists neighbour %d twice", u, v)
			}
			arcs.Put(key, i)
		}
	}

	// A triangulated sphere with Nf nodes has 3*Nf - 6 edges
	if want := 2 * (3*Nf - 6); arcs.Size() != want {
		return errors.Wrapf(go2x3.ErrBrokenEdges, "found %d arcs, expected %d", arcs.Size(), want)
	}

	it := arcs.Iterator()
	for it.Next() {
		key := it.Key().(uint64)
		u, v := go2x3.NodeID(key>>32), go2x3.NodeID(key)
		if _, exists := arcs.Get(arcKey(v, u)); !exists {
			return errors.Wrapf(go2x3.ErrBrokenEdges, "arc %d->%d has no reverse", u, v)
		}
	}

	// With the edge count above, a connected triangulation is a sphere.  A sphere plus a torus is not.
	reached := make([]bool, Nf)
	reached[0] = true
	numReached := 1
	queue := arrayqueue.New()
	queue.Enqueue(go2x3.NodeID(0))
	for !queue.Empty() {
		next, _ := queue.Dequeue()
		for _, v := range G.Row(next.(go2x3.NodeID)) {
			if !reached[v] {
				reached[v] = true
				numReached++
				queue.Enqueue(v)
			}
		}
	}
	if numReached != Nf {
		return errors.Wrapf(go2x3.ErrNotTriangulated, "only %d of %d nodes are connected to node 0", numReached, Nf)
	}

	// The face left of each arc u->v must close after three steps
	view := ViewOf(G)
	for it.Begin(); it.Next(); {
		key := it.Key().(uint64)
		u, v := go2x3.NodeID(key>>32), go2x3.NodeID(key)
		w := view.Next(u, v)
		_, vw := arcs.Get(arcKey(v, w))
		_, wu := arcs.Get(arcKey(w, u))
		if !vw || !wu {
			return errors.Wrapf(go2x3.ErrNotTriangulated, "face at arc %d->%d", u, v)
		}
		if view.Next(v, w) != u || view.Next(w, u) != v {
			return errors.Wrapf(go2x3.ErrNotTriangulated, "face at arc %d->%d", u, v)
		}
	}
	return nil
}

// DualFromTriangles builds the rotation system of a triangulation given as consistently oriented faces.
//
// For each face (a, b, c), the rotation at a continues from b to c, at b from c to a, and at c from a to b.
// Each row starts at the node's smallest neighbour.  A stride of 0 denotes go2x3.MaxDegree.
func DualFromTriangles(Nf int, faces [][3]go2x3.NodeID, stride int) (*go2x3.DualGraph, error) {
	if stride <= 0 {
		stride = go2x3.MaxDegree
	}
	if Nf < 4 || Nf > go2x3.MaxNodeID+1 {
		return nil, errors.Wrapf(go2x3.ErrBadFaceCount, "Nf=%d", Nf)
	}

	succ := make([]map[go2x3.NodeID]go2x3.NodeID, Nf)
	for i := range succ {
		succ[i] = make(map[go2x3.NodeID]go2x3.NodeID, stride)
	}
	for fi, f := range faces {
		for j := 0; j < 3; j++ {
			a, b, c := f[j], f[(j+1)%3], f[(j+2)%3]
			if int(a) >= Nf || int(b) >= Nf || int(c) >= Nf {
				return nil, errors.Wrapf(go2x3.ErrBadNodeID, "face %d", fi)
			}
			if _, dupe := succ[a][b]; dupe {
				return nil, errors.Wrapf(go2x3.ErrBrokenEdges, "arc %d->%d bounds two faces", a, b)
			}
			succ[a][b] = c
		}
	}

	G := &go2x3.DualGraph{
		Neighbours: make([]go2x3.NodeID, Nf*stride),
		Degrees:    make([]uint8, Nf),
		Stride:     stride,
	}
	for u := 0; u < Nf; u++ {
		deg := len(succ[u])
		if deg < 3 || deg > stride {
			return nil, errors.Wrapf(go2x3.ErrBadDegree, "node %d has degree %d", u, deg)
		}
		first := go2x3.NodeID(go2x3.MaxNodeID + 1)
		for v := range succ[u] {
			if v < first {
				first = v
			}
		}
		row := G.Neighbours[u*stride : u*stride+deg]
		v := first
		for i := range row {
			if i > 0 && v == first {
				return nil, errors.Wrapf(go2x3.ErrNotTriangulated, "rotation at node %d is not a single cycle", u)
			}
			row[i] = v
			next, ok := succ[u][v]
			if !ok {
				return nil, errors.Wrapf(go2x3.ErrNotTriangulated, "rotation at node %d is open at %d", u, v)
			}
			v = next
		}
		if v != first {
			return nil, errors.Wrapf(go2x3.ErrNotTriangulated, "rotation at node %d is not a single cycle", u)
		}
		G.Degrees[u] = uint8(deg)
	}
	return G, nil
}
