package lib2x3

import (
	"context"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/2x3systems/dual2x3/lib2x3/catalog"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2026.1"
)

// Workspace collects the resources of one session: open catalogs and the dualise options batches are created with.
type Workspace struct {
	CatalogCtx go2x3.CatalogContext
	Opts       go2x3.DualiseOpts
}

func NewWorkspace(opts go2x3.DualiseOpts) *Workspace {
	return &Workspace{
		CatalogCtx: go2x3.NewCatalogContext(),
		Opts:       ResolveOpts(opts),
	}
}

// OpenCatalog opens a catalog that closes when this Workspace closes.
func (ws *Workspace) OpenCatalog(opts go2x3.CatalogOpts) (go2x3.Catalog, error) {
	return catalog.OpenCatalog(ws.CatalogCtx, opts)
}

// NewBatch allocates a batch using this Workspace's options.
func (ws *Workspace) NewBatch(N, capacity int) (*IsomerBatch, error) {
	return NewIsomerBatch(N, capacity, ws.Opts)
}

// DualiseGraph dualises a single rotation system, sizing the batch from G's node count.
func (ws *Workspace) DualiseGraph(ctx context.Context, G *go2x3.DualGraph, id uint64) (*go2x3.CubicGraph, error) {
	if G == nil {
		return nil, go2x3.ErrNilGraph
	}
	N := go2x3.NumAtoms(G.NumFaces())
	b, err := ws.NewBatch(N, 1)
	if err != nil {
		return nil, err
	}
	if _, err = b.Push(G, id); err != nil {
		return nil, err
	}
	if err = Dualise(ctx, b); err != nil {
		return nil, err
	}
	return b.Cubic(0)
}

// DualiseInto dualises b and offers every produced graph to adder, returning how many were accepted.
func (ws *Workspace) DualiseInto(ctx context.Context, b *IsomerBatch, adder go2x3.CubicAdder) (int, error) {
	if err := Dualise(ctx, b); err != nil {
		return 0, errors.Wrapf(err, "batch %v", b.RunID)
	}
	added := 0
	for i := 0; i < b.Len(); i++ {
		X, err := b.Cubic(i)
		if err != nil {
			continue
		}
		if adder.TryAddGraph(X) {
			added++
		}
	}
	return added, nil
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}
