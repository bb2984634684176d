package go2x3

import "errors"

// Errors
var (
	ErrBadAtomCount     = errors.New("bad atom count")
	ErrBadFaceCount     = errors.New("face count does not match size class")
	ErrBadDegree        = errors.New("bad node degree")
	ErrCapacityExceeded = errors.New("workgroup local memory capacity exceeded")
	ErrBadNodeID        = errors.New("bad node ID")
	ErrNotAdjacent      = errors.New("nodes are not adjacent")
	ErrBrokenEdges      = errors.New("bad or inconsistent rotation system edges")
	ErrNotTriangulated  = errors.New("rotation system face is not a triangle")
	ErrTriangleCount    = errors.New("discovered triangle count does not match atom count")
	ErrBatchFull        = errors.New("isomer batch is full")
	ErrBadIsomerIndex   = errors.New("bad isomer index")
	ErrBadEncoding      = errors.New("bad graph encoding")
	ErrBadSampleFile    = errors.New("bad sample file")
	ErrBadCatalogParam  = errors.New("bad catalog param")
	ErrNilGraph         = errors.New("nil graph")
	ErrNotDualised      = errors.New("isomer has not been dualised")
	ErrGraphNotFound    = errors.New("graph not found")
)
