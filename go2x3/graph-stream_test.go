package go2x3

import (
	"strings"
	"testing"
)

var gT *testing.T

// K4 as produced by dualising the tetrahedron
var k4 = CubicGraph{
	ID:         7,
	Neighbours: []NodeID{2, 3, 1, 0, 3, 2, 1, 3, 0, 2, 1, 0},
}

type closingBuilder struct {
	strings.Builder
	closed bool
}

func (b *closingBuilder) Close() error {
	b.closed = true
	return nil
}

type firstOnly struct {
	seen map[uint64]bool
}

func (f *firstOnly) TryAddGraph(X *CubicGraph) bool {
	if f.seen[X.ID] {
		return false
	}
	f.seen[X.ID] = true
	return true
}

func TestStreamPipeline(t *testing.T) {
	gT = t

	prism := &CubicGraph{
		ID:         9,
		Neighbours: []NodeID{1, 2, 3, 0, 2, 4, 0, 1, 5, 0, 4, 5, 1, 3, 5, 2, 3, 4},
	}

	out := &closingBuilder{}
	stream := StreamGraphs(&k4, prism, &k4).
		Print(out, PrintOpts{Label: "dual", Graph: true, Rows: 2}).
		AddTo(&firstOnly{seen: map[uint64]bool{}}).
		SelectFromStream(GraphSelector{MinAtoms: 6})

	count := 0
	for X := range stream.Outlet {
		count++
		if X.ID != 9 || !X.IsEqual(prism) {
			gT.Fatalf("unexpected graph %v", X)
		}
	}
	if count != 1 {
		gT.Fatalf("expected 1 graph, got %d", count)
	}
	if !out.closed {
		gT.Fatal("Print did not close its writer")
	}

	printed := out.String()
	if strings.Count(printed, " N=") != 3 {
		gT.Fatalf("expected 3 printed graphs:\n%s", printed)
	}
	if !strings.Contains(printed, "000001,dual N=4 id=7\n  0: 2 3 1\n  1: 0 3 2\n  ...") {
		gT.Fatalf("unexpected print output:\n%s", printed)
	}
}

func TestStreamCopies(t *testing.T) {
	stream := StreamGraphs(&k4)
	X := stream.PullGraph()
	X.Neighbours[0] = 3
	if k4.Neighbours[0] != 2 {
		t.Fatal("StreamGraphs must emit copies")
	}
	if n := stream.PullAll(); n != 0 {
		t.Fatalf("expected drained stream, got %d", n)
	}
}

func TestDualExpr(t *testing.T) {
	G := DualGraph{
		Neighbours: []NodeID{
			1, 2, 3, 0, 0, 0,
			0, 3, 2, 0, 0, 0,
			0, 1, 3, 0, 0, 0,
			0, 2, 1, 0, 0, 0,
		},
		Degrees: []uint8{3, 3, 3, 3},
	}
	if G.NumFaces() != 4 || NumAtoms(G.NumFaces()) != 4 || NumFaces(4) != 4 {
		t.Fatal("bad size class")
	}
	if expr := G.String(); expr != "0: 1,2,3; 1: 0,3,2; 2: 0,1,3; 3: 0,2,1;" {
		t.Fatalf("unexpected expr %q", expr)
	}
	if row := G.Row(2); len(row) != 3 || row[1] != 1 {
		t.Fatalf("unexpected row %v", row)
	}
}

func TestStatusString(t *testing.T) {
	if IsomerDualised.String() != "dualised" || IsomerStatus(9).String() != "IsomerStatus(9)" {
		t.Fatal("bad IsomerStatus string")
	}
}
