package go2x3

import (
	"github.com/google/uuid"
)

const (

	// MaxDegree is the largest face size of a dual graph node and the default adjacency row stride.
	MaxDegree = 6

	// EdgesPerVertex is the number of neighbours of every vertex of a cubic ("2x3") graph.
	EdgesPerVertex = 3

	// MaxNodeID is the largest NodeID a dual or cubic graph may contain.
	MaxNodeID = 1<<16 - 2

	// MinAtoms is the smallest cubic size class (the tetrahedron).
	MinAtoms = 4
)

// NodeID is a zero-based index of a dual graph node or a cubic graph vertex ("atom").
type NodeID uint16

// Arc is a directed edge of a dual graph.
type Arc struct {
	From NodeID
	To   NodeID
}

// NumFaces returns Nf, the dual graph node count for a cubic graph of N atoms.
func NumFaces(N int) int {
	return N/2 + 2
}

// NumAtoms returns N, the cubic graph vertex count for a dual graph of Nf nodes.
func NumAtoms(Nf int) int {
	return 2*Nf - 4
}

// DualGraph is a planar triangulation expressed as a rotation system.
//
// Row u of Neighbours holds the neighbours of node u in clockwise order starting at an arbitrary but fixed offset.
// Slots at or beyond Degrees[u] are unused.
type DualGraph struct {
	Neighbours []NodeID // Nf x Stride
	Degrees    []uint8  // Nf
	Stride     int      // row width of Neighbours; 0 denotes MaxDegree
}

// CubicGraph is the 3-regular graph produced by dualising a DualGraph.
type CubicGraph struct {
	ID         uint64    // isomer ID assigned by the batch producer
	BatchID    uuid.UUID // batch invocation that produced this graph
	Neighbours []NodeID  // N x EdgesPerVertex
}

// IsomerStatus is the state of one batch element.
type IsomerStatus byte

const (
	IsomerEmpty IsomerStatus = iota
	IsomerReady
	IsomerDualised
	IsomerFailed
)

// DualiseOpts specifies params for batches and the dualise transform.
type DualiseOpts struct {
	MaxDegree     int // largest allowed node degree and the adjacency row stride; 0 denotes MaxDegree
	MaxWorkgroups int // max concurrently running workgroups; 0 denotes runtime.GOMAXPROCS(0)
	LocalMemBytes int // per-workgroup staging capacity; 0 denotes DefaultLocalMemBytes
}

// DefaultLocalMemBytes mirrors the local memory typically available to one GPU workgroup.
const DefaultLocalMemBytes = 64 * 1024

// CubicAdder is implemented by anything that accepts cubic graphs (catalogs, dedupe filters).
type CubicAdder interface {

	// Tries to add the given graph.
	// If true is returned, X did not exist and was added.
	TryAddGraph(X *CubicGraph) bool
}

// OnGraphHit is a callback channel used to return graphs meeting a set of selection criteria.
// Ownership of a CubicGraph also travels through the channel.
type OnGraphHit chan<- *CubicGraph

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

// Catalog wraps a database of dualised cubic graphs keyed by atom count and isomer ID.
type Catalog interface {
	CubicAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumGraphs returns the number of graphs in this catalog having the given atom count.
	NumGraphs(forAtomCount int) int64

	// Get returns the graph stored for the given atom count and isomer ID.
	Get(numAtoms int, id uint64) (*CubicGraph, error)

	// Select fires the given callback with each graph that meets the selection criteria.
	Select(sel GraphSelector, onHit OnGraphHit)

	Close() error
}

// GraphSelector is an operator that either selects a given CubicGraph or not.
type GraphSelector struct {
	MinAtoms int // lower select bound (inclusive)
	MaxAtoms int // upper select bound (inclusive); 0 denotes no bound
}

// PrintOpts specifies what is printed when printing a graph
type PrintOpts struct {
	Label string // Prefix label
	Graph bool   // If set, prints the neighbour rows
	Rows  int    // Max number of rows to print (0 denotes all)
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Graph: true,
}

// DefaultGraphSelector selects all graphs.
var DefaultGraphSelector = GraphSelector{
	MinAtoms: MinAtoms,
}
