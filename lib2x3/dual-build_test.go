package lib2x3

import (
	"testing"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/pkg/errors"
)

func TestValidateDual(t *testing.T) {
	gT = t

	cases := []struct {
		expr string
		N    int
		err  error
	}{
		{tetraExpr, 4, nil},
		{tetraExpr, 6, go2x3.ErrBadFaceCount},
		{"0: 1,2,3; 1: 0,3,2; 2: 0,1,3; 3: 0,2;", 4, go2x3.ErrBadDegree},         // degree 2
		{"0: 1,2,3; 1: 0,3,2; 2: 0,1,3; 3: 3,2,1;", 4, go2x3.ErrBrokenEdges},     // self-loop
		{"0: 1,2,1; 1: 0,3,2; 2: 0,1,3; 3: 0,2,1;", 4, go2x3.ErrBrokenEdges},     // repeated neighbour
		{"0: 1,2,3; 1: 0,3,2; 2: 0,1,3; 3: 1,2,1;", 4, go2x3.ErrBrokenEdges},     // repeated neighbour
		{"0: 1,2,3; 1: 0,2,3; 2: 0,1,3; 3: 0,2,1;", 4, go2x3.ErrNotTriangulated}, // mirrored rotation at node 1
		{"0: 1,2,3; 1: 0,3,2; 2: 0,1,3; 3: 0,1,2;", 4, go2x3.ErrNotTriangulated}, // mirrored rotation at node 3
	}
	for _, c := range cases {
		G, err := ParseDualGraph(c.expr, 0)
		if err != nil {
			t.Fatalf("%q: %v", c.expr, err)
		}
		err = ValidateDual(G, c.N, go2x3.MaxDegree)
		if c.err == nil && err != nil {
			t.Fatalf("%q: %v", c.expr, err)
		}
		if c.err != nil && !errors.Is(err, c.err) {
			t.Fatalf("%q: expected %v, got %v", c.expr, c.err, err)
		}
	}

	// an arc without its reverse: node 5 of the icosahedron drops neighbour 0 for 11
	ico := mustFromTriangles(12, icosahedronFaces())
	row := ico.Neighbours[5*go2x3.MaxDegree : 5*go2x3.MaxDegree+int(ico.Degrees[5])]
	for i, v := range row {
		if v == 0 {
			row[i] = 11
		}
	}
	if err := ValidateDual(ico, 20, go2x3.MaxDegree); !errors.Is(err, go2x3.ErrBrokenEdges) {
		t.Fatalf("expected ErrBrokenEdges, got %v", err)
	}

	// a tetrahedron beside the 7-node torus: the arc count matches N=18 but the surface is not a sphere
	faces := append([][3]go2x3.NodeID(nil), tetraFaces...)
	for i := 0; i < 7; i++ {
		at := func(k int) go2x3.NodeID { return go2x3.NodeID(4 + (i+k)%7) }
		faces = append(faces,
			[3]go2x3.NodeID{at(0), at(1), at(3)},
			[3]go2x3.NodeID{at(0), at(3), at(2)},
		)
	}
	split := mustFromTriangles(11, faces)
	if err := ValidateDual(split, 18, go2x3.MaxDegree); !errors.Is(err, go2x3.ErrNotTriangulated) {
		t.Fatalf("expected ErrNotTriangulated, got %v", err)
	}

	if err := ValidateDual(nil, 4, go2x3.MaxDegree); !errors.Is(err, go2x3.ErrNilGraph) {
		t.Fatalf("expected ErrNilGraph, got %v", err)
	}
}

func TestDualFromTriangles(t *testing.T) {
	gT = t

	G := mustFromTriangles(4, tetraFaces)
	if G.String() != tetraExpr {
		t.Fatalf("tetrahedron: %q", G.String())
	}

	ico := mustFromTriangles(12, icosahedronFaces())
	for u := 0; u < 12; u++ {
		if ico.Degrees[u] != 5 {
			t.Fatalf("icosahedron node %d has degree %d", u, ico.Degrees[u])
		}
	}

	c60 := mustFromTriangles(32, pentakisFaces())
	pentagons, hexagons := 0, 0
	for _, deg := range c60.Degrees {
		switch deg {
		case 5:
			pentagons++
		case 6:
			hexagons++
		}
	}
	if pentagons != 12 || hexagons != 20 {
		t.Fatalf("C60 dual has %d pentagons and %d hexagons", pentagons, hexagons)
	}

	// inconsistent orientation: the last face repeats arc 0->1
	bad := append([][3]go2x3.NodeID(nil), tetraFaces...)
	bad[3] = [3]go2x3.NodeID{0, 1, 3}
	if _, err := DualFromTriangles(4, bad, 0); !errors.Is(err, go2x3.ErrBrokenEdges) {
		t.Fatalf("expected ErrBrokenEdges, got %v", err)
	}

	// a missing face leaves nodes short of neighbours
	if _, err := DualFromTriangles(4, tetraFaces[:3], 0); !errors.Is(err, go2x3.ErrBadDegree) {
		t.Fatalf("expected ErrBadDegree, got %v", err)
	}

	if _, err := DualFromTriangles(4, [][3]go2x3.NodeID{{0, 1, 7}}, 0); !errors.Is(err, go2x3.ErrBadNodeID) {
		t.Fatalf("expected ErrBadNodeID, got %v", err)
	}
}
