package lib2x3

import (
	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// DualExpr is a rotation system in text form, e.g. "0: 1,2,3; 1: 0,3,2; 2: 0,1,3; 3: 0,2,1;"
type DualExpr struct {
	Nodes []*NodeExpr `parser:"@@*"`
}

// NodeExpr lists one node's neighbours in clockwise order.
type NodeExpr struct {
	ID         int   `parser:"@Int \":\""`
	Neighbours []int `parser:"@Int ( \",\" @Int )* \";\""`
}

var sDualLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:,;]`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var parseDualExpr = participle.MustBuild[DualExpr](
	participle.Lexer(sDualLexer),
	participle.Elide("Comment", "Whitespace"),
)

// ParseDualGraph reads a rotation system in text form.  A stride of 0 denotes go2x3.MaxDegree.
//
// Node IDs must cover 0..Nf-1 exactly once, in any order.  No triangulation checks are made here; see ValidateDual.
func ParseDualGraph(graphExpr string, stride int) (*go2x3.DualGraph, error) {
	if stride <= 0 {
		stride = go2x3.MaxDegree
	}

	expr, err := parseDualExpr.ParseString("", graphExpr)
	if err != nil {
		return nil, errors.Wrap(go2x3.ErrBadEncoding, err.Error())
	}

	Nf := len(expr.Nodes)
	if Nf > go2x3.MaxNodeID+1 {
		return nil, errors.Wrapf(go2x3.ErrBadFaceCount, "%d nodes", Nf)
	}
	G := &go2x3.DualGraph{
		Neighbours: make([]go2x3.NodeID, Nf*stride),
		Degrees:    make([]uint8, Nf),
		Stride:     stride,
	}
	seen := make([]bool, Nf)
	for _, node := range expr.Nodes {
		u := node.ID
		if u < 0 || u >= Nf {
			return nil, errors.Wrapf(go2x3.ErrBadNodeID, "node %d of %d", u, Nf)
		}
		if seen[u] {
			return nil, errors.Wrapf(go2x3.ErrBadEncoding, "node %d appears twice", u)
		}
		seen[u] = true
	}

	for _, node := range expr.Nodes {
		u := node.ID
		if len(node.Neighbours) > stride {
			return nil, errors.Wrapf(go2x3.ErrBadDegree, "node %d has %d neighbours (max %d)", u, len(node.Neighbours), stride)
		}
		for i, v := range node.Neighbours {
			if v < 0 || v >= Nf {
				return nil, errors.Wrapf(go2x3.ErrBadNodeID, "node %d refers to %d", u, v)
			}
			G.Neighbours[u*stride+i] = go2x3.NodeID(v)
		}
		G.Degrees[u] = uint8(len(node.Neighbours))
	}
	return G, nil
}
