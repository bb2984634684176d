package lib2x3

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// SampleStride is the row width of a sample record.
const SampleStride = 6

// sampleUnused marks an unused slot of a sample record.
const sampleUnused = 0xFFFF

// SampleFileName returns the conventional name of the sample file for N atoms.
func SampleFileName(N int) string {
	return fmt.Sprintf("dual_layout_%d_seed_42", N)
}

// ReadSamples reads every sample record for the size class of N atoms.
//
// A record is Nf rows of SampleStride little-endian uint16 node IDs.  A row's degree is the number of slots
// before the first unused (0xFFFF) slot, so fullerene duals have degree 5 or 6.
func ReadSamples(r io.Reader, N int) ([]*go2x3.DualGraph, error) {
	if N < go2x3.MinAtoms || N%2 != 0 || N > go2x3.MaxNodeID+1 {
		return nil, errors.Wrapf(go2x3.ErrBadAtomCount, "N=%d", N)
	}
	Nf := go2x3.NumFaces(N)
	record := make([]uint16, Nf*SampleStride)

	var samples []*go2x3.DualGraph
	rd := bufio.NewReader(r)
	for {
		err := binary.Read(rd, binary.LittleEndian, record)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(go2x3.ErrBadSampleFile, "truncated record %d", len(samples))
		}
		if err != nil {
			return nil, errors.Wrap(err, "read samples")
		}

		G := &go2x3.DualGraph{
			Neighbours: make([]go2x3.NodeID, Nf*SampleStride),
			Degrees:    make([]uint8, Nf),
			Stride:     SampleStride,
		}
		for u := 0; u < Nf; u++ {
			row := record[u*SampleStride : (u+1)*SampleStride]
			deg := 0
			for deg < SampleStride && row[deg] != sampleUnused {
				G.Neighbours[u*SampleStride+deg] = go2x3.NodeID(row[deg])
				deg++
			}
			G.Degrees[u] = uint8(deg)
		}
		samples = append(samples, G)
	}

	if len(samples) == 0 {
		return nil, errors.Wrapf(go2x3.ErrBadSampleFile, "no samples for N=%d", N)
	}
	klog.V(2).Infof("samples: read %d samples for N=%d", len(samples), N)
	return samples, nil
}

// WriteSamples writes each graph as one sample record, marking unused slots.
// Every graph must have the same node count and degrees of at most SampleStride.
func WriteSamples(w io.Writer, graphs []*go2x3.DualGraph) error {
	if len(graphs) == 0 {
		return nil
	}
	Nf := graphs[0].NumFaces()
	record := make([]uint16, Nf*SampleStride)

	bw := bufio.NewWriter(w)
	for gi, G := range graphs {
		if G.NumFaces() != Nf {
			return errors.Wrapf(go2x3.ErrBadFaceCount, "sample %d has %d nodes, expected %d", gi, G.NumFaces(), Nf)
		}
		for u := 0; u < Nf; u++ {
			row := G.Row(go2x3.NodeID(u))
			if len(row) > SampleStride {
				return errors.Wrapf(go2x3.ErrBadDegree, "sample %d node %d has degree %d", gi, u, len(row))
			}
			dst := record[u*SampleStride : (u+1)*SampleStride]
			for i := range dst {
				if i < len(row) {
					dst[i] = uint16(row[i])
				} else {
					dst[i] = sampleUnused
				}
			}
		}
		if err := binary.Write(bw, binary.LittleEndian, record); err != nil {
			return errors.Wrap(err, "write samples")
		}
	}
	return bw.Flush()
}

// FillBatch pushes samples into b until it is full, cycling through them when b holds more isomers than there are samples.
// Isomer IDs are the push order.
func FillBatch(b *IsomerBatch, samples []*go2x3.DualGraph) error {
	if len(samples) == 0 {
		return errors.Wrap(go2x3.ErrBadSampleFile, "no samples")
	}
	for i := b.Len(); i < b.Capacity; i++ {
		if _, err := b.Push(samples[i%len(samples)], uint64(i)); err != nil {
			return err
		}
	}
	return nil
}
