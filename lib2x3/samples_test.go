package lib2x3

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/pkg/errors"
)

func TestSamplesRoundTrip(t *testing.T) {
	gT = t

	c60 := mustFromTriangles(32, pentakisFaces())
	var buf bytes.Buffer
	if err := WriteSamples(&buf, []*go2x3.DualGraph{c60, c60, c60}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 3*32*SampleStride*2 {
		t.Fatalf("unexpected sample file size %d", buf.Len())
	}

	// pentagon rows mark slot 5 as unused
	raw := buf.Bytes()
	for u := 0; u < 32; u++ {
		slot5 := binary.LittleEndian.Uint16(raw[(u*SampleStride+5)*2:])
		if isPentagon := c60.Degrees[u] == 5; isPentagon != (slot5 == 0xFFFF) {
			t.Fatalf("node %d: slot 5 is %#x for degree %d", u, slot5, c60.Degrees[u])
		}
	}

	samples, err := ReadSamples(bytes.NewReader(raw), 60)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	for _, G := range samples {
		if G.String() != c60.String() {
			t.Fatal("sample changed across the round trip")
		}
	}

	// cycling through fewer samples than the batch holds
	b, err := NewIsomerBatch(60, 7, go2x3.DualiseOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if err = FillBatch(b, samples); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 7 || b.IDs[6] != 6 {
		t.Fatal("FillBatch did not fill the batch")
	}
}

func TestSamplesErrors(t *testing.T) {
	gT = t

	tetra, _ := ParseDualGraph(tetraExpr, 0)
	var buf bytes.Buffer
	if err := WriteSamples(&buf, []*go2x3.DualGraph{tetra}); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadSamples(bytes.NewReader(buf.Bytes()[:buf.Len()-2]), 4); !errors.Is(err, go2x3.ErrBadSampleFile) {
		t.Fatalf("expected ErrBadSampleFile, got %v", err)
	}
	if _, err := ReadSamples(bytes.NewReader(nil), 4); !errors.Is(err, go2x3.ErrBadSampleFile) {
		t.Fatalf("expected ErrBadSampleFile, got %v", err)
	}
	if _, err := ReadSamples(bytes.NewReader(buf.Bytes()), 3); !errors.Is(err, go2x3.ErrBadAtomCount) {
		t.Fatalf("expected ErrBadAtomCount, got %v", err)
	}

	ico := mustFromTriangles(12, icosahedronFaces())
	if err := WriteSamples(&buf, []*go2x3.DualGraph{tetra, ico}); !errors.Is(err, go2x3.ErrBadFaceCount) {
		t.Fatalf("expected ErrBadFaceCount, got %v", err)
	}

	b, _ := NewIsomerBatch(4, 1, go2x3.DualiseOpts{})
	if err := FillBatch(b, nil); !errors.Is(err, go2x3.ErrBadSampleFile) {
		t.Fatalf("expected ErrBadSampleFile, got %v", err)
	}
}
