package lib2x3

import (
	"testing"

	"github.com/2x3systems/dual2x3/go2x3"
)

var gT *testing.T

const tetraExpr = "0: 1,2,3; 1: 0,3,2; 2: 0,1,3; 3: 0,2,1;"

// K4 as produced by dualising tetraExpr
var tetraCubic = []go2x3.NodeID{
	2, 3, 1,
	0, 3, 2,
	1, 3, 0,
	2, 1, 0,
}

var tetraFaces = [][3]go2x3.NodeID{
	{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2},
}

// icosahedronFaces returns the 20 faces of the icosahedron: node 0 on top, an upper ring 1..5,
// a lower ring 6..10 (node 6+i sits between 1+i and 1+(i+1)%5), and node 11 at the bottom.
func icosahedronFaces() [][3]go2x3.NodeID {
	faces := make([][3]go2x3.NodeID, 0, 20)
	for i := 0; i < 5; i++ {
		j := (i + 1) % 5
		ui, uj := go2x3.NodeID(1+i), go2x3.NodeID(1+j)
		li, lj := go2x3.NodeID(6+i), go2x3.NodeID(6+j)
		faces = append(faces,
			[3]go2x3.NodeID{0, ui, uj},
			[3]go2x3.NodeID{ui, li, uj},
			[3]go2x3.NodeID{uj, li, lj},
			[3]go2x3.NodeID{11, lj, li},
		)
	}
	return faces
}

// pentakisFaces returns the 60 faces of the pentakis dodecahedron, the dual of C60.
// Nodes 0..11 are the icosahedron's vertices (degree 5) and node 12+f stands for icosahedron face f (degree 6).
func pentakisFaces() [][3]go2x3.NodeID {
	ico := icosahedronFaces()

	leftOf := make(map[go2x3.Arc]go2x3.NodeID, 60)
	for f, face := range ico {
		for j := 0; j < 3; j++ {
			leftOf[go2x3.Arc{From: face[j], To: face[(j+1)%3]}] = go2x3.NodeID(12 + f)
		}
	}

	faces := make([][3]go2x3.NodeID, 0, 60)
	for arc, left := range leftOf {
		right := leftOf[go2x3.Arc{From: arc.To, To: arc.From}]
		faces = append(faces, [3]go2x3.NodeID{arc.From, right, left})
	}
	return faces
}

func mustFromTriangles(Nf int, faces [][3]go2x3.NodeID) *go2x3.DualGraph {
	G, err := DualFromTriangles(Nf, faces, 0)
	if err != nil {
		gT.Fatalf("DualFromTriangles: %v", err)
	}
	return G
}

// referenceDualise is a sequential rendition of the transform: triangles are numbered by the node owning
// their canonical arc, then by slot.
func referenceDualise(G *go2x3.DualGraph) []go2x3.NodeID {
	view := ViewOf(G)
	Nf := G.NumFaces()
	N := go2x3.NumAtoms(Nf)

	index := make(map[go2x3.Arc]go2x3.NodeID, N)
	arcs := make([]go2x3.Arc, 0, N)
	for u := go2x3.NodeID(0); int(u) < Nf; u++ {
		for _, v := range G.Row(u) {
			arc := view.CanonicalTriangleArc(u, v)
			if arc.From == u {
				index[arc] = go2x3.NodeID(len(arcs))
				arcs = append(arcs, arc)
			}
		}
	}

	out := make([]go2x3.NodeID, 0, N*3)
	for _, arc := range arcs {
		u, v := arc.From, arc.To
		x := view.Next(u, v)
		out = append(out,
			index[view.CanonicalTriangleArc(v, u)],
			index[view.CanonicalTriangleArc(x, v)],
			index[view.CanonicalTriangleArc(u, x)],
		)
	}
	return out
}

// checkCubic verifies that rows is a simple 3-regular graph with symmetric adjacency.
func checkCubic(t *testing.T, N int, rows []go2x3.NodeID) {
	if len(rows) != N*3 {
		t.Fatalf("expected %d entries, got %d", N*3, len(rows))
	}
	for s := 0; s < N; s++ {
		row := rows[s*3 : s*3+3]
		for i, t2 := range row {
			if int(t2) >= N || int(t2) == s {
				t.Fatalf("atom %d has bad neighbour %d", s, t2)
			}
			if row[(i+1)%3] == t2 {
				t.Fatalf("atom %d lists %d twice", s, t2)
			}
			back := rows[int(t2)*3 : int(t2)*3+3]
			if back[0] != go2x3.NodeID(s) && back[1] != go2x3.NodeID(s) && back[2] != go2x3.NodeID(s) {
				t.Fatalf("edge %d-%d is not symmetric", s, t2)
			}
		}
	}
}

func equalRows(a, b []go2x3.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// distanceProfile returns how many atoms lie at each BFS distance from src.
func distanceProfile(N int, rows []go2x3.NodeID, src int) []int {
	dist := make([]int, N)
	for i := range dist {
		dist[i] = -1
	}
	dist[src] = 0
	queue := []int{src}
	profile := []int{1}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range rows[s*3 : s*3+3] {
			if dist[t] >= 0 {
				continue
			}
			dist[t] = dist[s] + 1
			if dist[t] == len(profile) {
				profile = append(profile, 0)
			}
			profile[dist[t]]++
			queue = append(queue, int(t))
		}
	}
	return profile
}

// girth returns the length of the shortest cycle in a simple cubic graph.
func girth(N int, rows []go2x3.NodeID) int {
	best := N + 1
	for src := 0; src < N; src++ {
		dist := make([]int, N)
		parent := make([]int, N)
		for i := range dist {
			dist[i] = -1
		}
		dist[src], parent[src] = 0, -1
		queue := []int{src}
		for len(queue) > 0 {
			s := queue[0]
			queue = queue[1:]
			for _, nt := range rows[s*3 : s*3+3] {
				t := int(nt)
				if dist[t] < 0 {
					dist[t], parent[t] = dist[s]+1, s
					queue = append(queue, t)
				} else if parent[s] != t {
					if cycle := dist[s] + dist[t] + 1; cycle < best {
						best = cycle
					}
				}
			}
		}
	}
	return best
}

// faceSizes traces the faces of the embedding given by the cyclic order of each row and returns
// how many faces there are of each size.
func faceSizes(N int, rows []go2x3.NodeID) map[int]int {
	slotOf := func(s, t go2x3.NodeID) int {
		for i, x := range rows[int(s)*3 : int(s)*3+3] {
			if x == t {
				return i
			}
		}
		return -1
	}

	visited := make(map[go2x3.Arc]bool, N*3)
	sizes := make(map[int]int)
	for s := 0; s < N; s++ {
		for _, t := range rows[s*3 : s*3+3] {
			arc := go2x3.Arc{From: go2x3.NodeID(s), To: t}
			if visited[arc] {
				continue
			}
			size := 0
			for !visited[arc] {
				visited[arc] = true
				size++
				i := slotOf(arc.To, arc.From)
				arc = go2x3.Arc{From: arc.To, To: rows[int(arc.To)*3+(i+1)%3]}
			}
			sizes[size]++
		}
	}
	return sizes
}
