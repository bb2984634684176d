package lib2x3

import (
	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/pkg/errors"
)

// DualView is a read-only rotation system view over one dual graph's adjacency and degree tables.
//
// All queries are pure; a query that presumes adjacency the tables do not have panics with an invariantViolation,
// which the dualise kernel converts into a workgroup failure.
type DualView struct {
	Neighbours []go2x3.NodeID // Nf x Stride
	Degrees    []uint8        // Nf
	Stride     int
}

// invariantViolation is a fatal input-invariant failure raised while traversing a rotation system.
type invariantViolation struct {
	err error
}

func (iv invariantViolation) Error() string {
	return iv.err.Error()
}

func (iv invariantViolation) Unwrap() error {
	return iv.err
}

// ViewOf returns a DualView over the tables of G.
func ViewOf(G *go2x3.DualGraph) DualView {
	return DualView{
		Neighbours: G.Neighbours,
		Degrees:    G.Degrees,
		Stride:     G.RowStride(),
	}
}

func (G DualView) NumNodes() int {
	return len(G.Degrees)
}

func (G DualView) Degree(u go2x3.NodeID) int {
	return int(G.Degrees[u])
}

// Neighbour returns the neighbour of u at slot i.
func (G DualView) Neighbour(u go2x3.NodeID, i int) go2x3.NodeID {
	return G.Neighbours[int(u)*G.Stride+i]
}

// TryNeighbourSlot returns the slot i such that the i-th neighbour of u is v.
func (G DualView) TryNeighbourSlot(u, v go2x3.NodeID) (int, bool) {
	if int(u) >= len(G.Degrees) {
		return 0, false
	}
	row := G.Neighbours[int(u)*G.Stride:]
	for j, Nu := 0, int(G.Degrees[u]); j < Nu; j++ {
		if row[j] == v {
			return j, true
		}
	}
	return 0, false
}

// NeighbourSlot is TryNeighbourSlot for callers that guarantee u and v are adjacent.
func (G DualView) NeighbourSlot(u, v go2x3.NodeID) int {
	j, ok := G.TryNeighbourSlot(u, v)
	if !ok {
		panic(invariantViolation{errors.Wrapf(go2x3.ErrNotAdjacent, "node %d has no neighbour %d", u, v)})
	}
	return j
}

// Next returns the neighbour of u immediately clockwise after v.
func (G DualView) Next(u, v go2x3.NodeID) go2x3.NodeID {
	j := G.NeighbourSlot(u, v)
	return G.Neighbours[int(u)*G.Stride+(j+1)%int(G.Degrees[u])]
}

// Prev returns the neighbour of u immediately counter-clockwise before v.
func (G DualView) Prev(u, v go2x3.NodeID) go2x3.NodeID {
	j := G.NeighbourSlot(u, v)
	Nu := int(G.Degrees[u])
	return G.Neighbours[int(u)*G.Stride+(j-1+Nu)%Nu]
}

// NextOnFace returns the node following v on the face left of the arc u->v.
func (G DualView) NextOnFace(u, v go2x3.NodeID) go2x3.NodeID {
	return G.Prev(v, u)
}

// PrevOnFace returns the node preceding u on the face left of the arc u->v.
func (G DualView) PrevOnFace(u, v go2x3.NodeID) go2x3.NodeID {
	return G.Next(v, u)
}

// CanonicalTriangleArc returns the representative arc of the triangle (u, v, Next(u, v)).
//
// Of the three arcs of a triangle, the canonical one is the arc whose source is the smallest node,
// so the same triangle reached from any of its nodes resolves to the same arc.
func (G DualView) CanonicalTriangleArc(u, v go2x3.NodeID) go2x3.Arc {
	w := G.Next(u, v)
	switch {
	case v < u && v < w:
		return go2x3.Arc{From: v, To: w}
	case w < u && w < v:
		return go2x3.Arc{From: w, To: u}
	}
	return go2x3.Arc{From: u, To: v}
}
