package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/2x3systems/dual2x3/lib2x3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type sampleRun struct {
	NumAtoms    int
	BatchSize   int
	Pathname    string
	Unique      bool
	PrintCount  int
	CatalogPath string
	Workgroups  int
}

// runSamples loads a sample file into a batch, dualises it, then prints and/or catalogs the results.
func runSamples(run sampleRun, out io.Writer) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	file, err := os.Open(run.Pathname)
	if err != nil {
		return errors.Wrap(err, "open samples")
	}
	samples, err := lib2x3.ReadSamples(file, run.NumAtoms)
	file.Close()
	if err != nil {
		return errors.Wrapf(err, "read %q", run.Pathname)
	}

	if run.Unique {
		set := lib2x3.NewDualSet()
		unique := samples[:0]
		for _, G := range samples {
			if set.TryAdd(G) {
				unique = append(unique, G)
			}
		}
		set.Close()
		klog.V(1).Infof("samples: %d unique of %d", len(unique), len(samples))
		samples = unique
	}

	batchSize := run.BatchSize
	if run.Unique && batchSize > len(samples) {
		batchSize = len(samples)
	}

	ws := lib2x3.NewWorkspace(go2x3.DualiseOpts{
		MaxWorkgroups: run.Workgroups,
	})
	defer ws.Close()

	b, err := ws.NewBatch(run.NumAtoms, batchSize)
	if err != nil {
		return err
	}
	if err = lib2x3.FillBatch(b, samples); err != nil {
		return err
	}
	klog.Infof("batch %v: %d isomers of N=%d (%d KiB)", b.RunID, b.Len(), b.NumAtoms, b.Bytes()>>10)

	startTime := time.Now()
	var dst go2x3.CubicAdder = lib2x3.NewDropDupes(lib2x3.DropDupeOpts{})
	if len(run.CatalogPath) > 0 {
		cat, err := ws.OpenCatalog(go2x3.CatalogOpts{
			DbPathName: run.CatalogPath,
		})
		if err != nil {
			return err
		}
		dst = cat
	}
	added, err := ws.DualiseInto(ctx, b, dst)
	if err != nil {
		return err
	}
	klog.Infof("dualised %d isomers in %v (%d new)", b.Len(), time.Since(startTime), added)

	if run.PrintCount > 0 {
		opts := go2x3.DefaultPrintOpts
		for i := 0; i < b.Len() && i < run.PrintCount; i++ {
			X, err := b.Cubic(i)
			if err != nil {
				return err
			}
			opts.Label = fmt.Sprintf("out[%d]", i)
			X.WriteAsString(out, opts)
			fmt.Fprintln(out)
		}
	}
	return nil
}
