package main

import (
	"flag"
	"os"

	"github.com/plan-systems/klog"
)

var (
	gNumAtoms   = flag.Int("n", 60, "atom count of the sample size class")
	gBatchSize  = flag.Int("batch", 1024, "isomers per batch")
	gSamples    = flag.String("samples", "", "sample file to dualise (see lib2x3.SampleFileName)")
	gUnique     = flag.Bool("unique", false, "drop repeated samples instead of cycling through them")
	gPrintRows  = flag.Int("print", 0, "print the first n dualised graphs")
	gCatalog    = flag.String("catalog", "", "catalog pathname to store dualised graphs into")
	gWorkgroups = flag.Int("workgroups", 0, "max concurrent workgroups (0 denotes GOMAXPROCS)")
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	exitCode := 0
	if len(*gSamples) > 0 {
		err := runSamples(sampleRun{
			NumAtoms:    *gNumAtoms,
			BatchSize:   *gBatchSize,
			Pathname:    *gSamples,
			Unique:      *gUnique,
			PrintCount:  *gPrintRows,
			CatalogPath: *gCatalog,
			Workgroups:  *gWorkgroups,
		}, os.Stdout)
		if err != nil {
			klog.Errorf("go2x3: %v", err)
			exitCode = 1
		}
	} else {
		pathname := flag.Arg(0)
		go_gpython(pathname)
	}

	klog.Flush()
	os.Exit(exitCode)
}
