package go2x3

import (
	"fmt"
	"io"
	"strings"
)

// CubicStream is a channel pipeline of cubic graphs; each stage owns the graphs it receives.
type CubicStream struct {
	Outlet chan *CubicGraph
}

func NewCubicStream() *CubicStream {
	stream := &CubicStream{
		Outlet: make(chan *CubicGraph),
	}
	return stream
}

// StreamGraphs emits a copy of each given graph and then closes.
func StreamGraphs(graphs ...*CubicGraph) *CubicStream {
	next := NewCubicStream()

	go func() {
		for _, X := range graphs {
			next.Outlet <- X.MakeCopy()
		}
		next.Close()
	}()

	return next
}

func (stream *CubicStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *CubicStream) PushGraph(X *CubicGraph) {
	stream.Outlet <- X.MakeCopy()
}

func (stream *CubicStream) PullGraph() *CubicGraph {
	X := <-stream.Outlet
	return X
}

func (stream *CubicStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

func (stream *CubicStream) Print(
	out io.WriteCloser,
	opts PrintOpts) *CubicStream {

	next := &CubicStream{
		Outlet: make(chan *CubicGraph, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for X := range stream.Outlet {
			count++
			fmt.Fprintf(&buf, "%06d,", count)
			X.WriteAsString(&buf, opts)
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- X
		}
		out.Close()
		next.Close()
	}()

	return next
}

// AddTo passes along only the graphs the given target reports as newly added.
func (stream *CubicStream) AddTo(target CubicAdder) *CubicStream {
	next := &CubicStream{
		Outlet: make(chan *CubicGraph, 1),
	}

	go func() {
		for X := range stream.Outlet {
			if target.TryAddGraph(X) {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

func SelectFromCatalog(cat Catalog, sel GraphSelector) *CubicStream {
	next := &CubicStream{
		Outlet: make(chan *CubicGraph, 1),
	}

	onHit := make(chan *CubicGraph, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		for X := range onHit {
			if sel.SelectsGraph(X) {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

func (stream *CubicStream) SelectFromStream(sel GraphSelector) *CubicStream {
	next := &CubicStream{
		Outlet: make(chan *CubicGraph, 1),
	}

	go func() {
		for X := range stream.Outlet {
			if sel.SelectsGraph(X) {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}
