package go2x3

import (
	"io"
	"strconv"
	"sync"
)

func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		openCatalogs: make(map[Catalog]struct{}),
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	ctx.openCount.Add(1)
	go func() {
		<-ctx.Closing()
		ctx.openCount.Done()
		ctx.openCount.Wait()
		close(ctx.closed)
	}()
	return ctx
}

type catalogContext struct {
	mu           sync.Mutex
	openCount    sync.WaitGroup
	openCatalogs map[Catalog]struct{}
	closing      chan struct{}
	closed       chan struct{}
	closeOnce    sync.Once
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.openCount.Add(1)
	ctx.mu.Lock()
	ctx.openCatalogs[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	if _, exists := ctx.openCatalogs[cat]; exists {
		delete(ctx.openCatalogs, cat)
		ctx.openCount.Done()
	}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) Closing() <-chan struct{} {
	return ctx.closing
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Close() {
	ctx.closeOnce.Do(func() {
		close(ctx.closing)
		ctx.mu.Lock()
		for cat := range ctx.openCatalogs {
			go cat.Close()
		}
		ctx.mu.Unlock()
	})
}

func (s IsomerStatus) String() string {
	switch s {
	case IsomerEmpty:
		return "empty"
	case IsomerReady:
		return "ready"
	case IsomerDualised:
		return "dualised"
	case IsomerFailed:
		return "failed"
	}
	return "IsomerStatus(" + strconv.Itoa(int(s)) + ")"
}

// RowStride returns the effective row width of G.Neighbours.
func (G *DualGraph) RowStride() int {
	if G.Stride <= 0 {
		return MaxDegree
	}
	return G.Stride
}

// NumFaces returns Nf, the number of nodes in this dual graph.
func (G *DualGraph) NumFaces() int {
	return len(G.Degrees)
}

// Row returns the rotation of node u (its neighbours in clockwise order).
func (G *DualGraph) Row(u NodeID) []NodeID {
	stride := G.RowStride()
	start := int(u) * stride
	return G.Neighbours[start : start+int(G.Degrees[u])]
}

// AppendExpr appends this graph in the rotation text format, e.g. "0: 1,2,3; 1: 0,3,2; ..."
func (G *DualGraph) AppendExpr(dst []byte) []byte {
	for u := range G.Degrees {
		if u > 0 {
			dst = append(dst, ' ')
		}
		dst = strconv.AppendInt(dst, int64(u), 10)
		dst = append(dst, ':', ' ')
		for i, v := range G.Row(NodeID(u)) {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = strconv.AppendInt(dst, int64(v), 10)
		}
		dst = append(dst, ';')
	}
	return dst
}

func (G *DualGraph) String() string {
	return string(G.AppendExpr(nil))
}

// NumAtoms returns N, the number of vertices in this cubic graph.
func (X *CubicGraph) NumAtoms() int {
	return len(X.Neighbours) / EdgesPerVertex
}

// Row returns the 3 neighbours of atom t.
func (X *CubicGraph) Row(t NodeID) []NodeID {
	start := int(t) * EdgesPerVertex
	return X.Neighbours[start : start+EdgesPerVertex]
}

// IsEqual returns true if X and Y have identical neighbour tables (IDs are not compared).
func (X *CubicGraph) IsEqual(Y *CubicGraph) bool {
	if len(X.Neighbours) != len(Y.Neighbours) {
		return false
	}
	for i, v := range X.Neighbours {
		if Y.Neighbours[i] != v {
			return false
		}
	}
	return true
}

// Returns a new copy of this instance.
func (X *CubicGraph) MakeCopy() *CubicGraph {
	Y := *X
	Y.Neighbours = append([]NodeID(nil), X.Neighbours...)
	return &Y
}

// WriteAsString writes a human readable form of this graph to the given writer.
func (X *CubicGraph) WriteAsString(out io.Writer, opts PrintOpts) {
	var buf [64]byte
	line := buf[:0]

	if len(opts.Label) > 0 {
		line = append(line, opts.Label...)
		line = append(line, ' ')
	}
	line = append(line, "N="...)
	line = strconv.AppendInt(line, int64(X.NumAtoms()), 10)
	line = append(line, " id="...)
	line = strconv.AppendUint(line, X.ID, 10)
	out.Write(line)

	if !opts.Graph {
		return
	}

	Nrows := X.NumAtoms()
	if opts.Rows > 0 && opts.Rows < Nrows {
		Nrows = opts.Rows
	}
	for t := 0; t < Nrows; t++ {
		line = append(line[:0], "\n  "...)
		line = strconv.AppendInt(line, int64(t), 10)
		line = append(line, ':')
		for _, v := range X.Row(NodeID(t)) {
			line = append(line, ' ')
			line = strconv.AppendInt(line, int64(v), 10)
		}
		out.Write(line)
	}
	if Nrows < X.NumAtoms() {
		out.Write([]byte("\n  ..."))
	}
}

// SelectsGraph is a convenience function used to see if a CubicGraph is selected according to a GraphSelector.
func (sel *GraphSelector) SelectsGraph(X *CubicGraph) bool {
	Na := X.NumAtoms()
	if Na < sel.MinAtoms {
		return false
	}
	if sel.MaxAtoms > 0 && Na > sel.MaxAtoms {
		return false
	}
	return true
}
