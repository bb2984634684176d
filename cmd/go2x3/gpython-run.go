package main

import (
	"fmt"
	"log"
	"time"

	"github.com/2x3systems/dual2x3/go2x3"
	"github.com/2x3systems/dual2x3/lib2x3"
	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"

	_ "github.com/2x3systems/dual2x3/py2x3"
	_ "github.com/go-python/gpython/stdlib"
)

// Run in every REPL session before the first prompt
const kReplPrelude = "import _py2x3 as py2x3"

func banner() string {
	return fmt.Sprintf("go2x3 %s (rotation degree <= %d, %d B workgroup memory)", lib2x3.LIB_VERSION, go2x3.MaxDegree, go2x3.DefaultLocalMemBytes)
}

// newREPL returns a REPL whose session already has py2x3 imported.
func newREPL(ctx py.Context) (*repl.REPL, error) {
	replCtx := repl.New(ctx)
	if _, err := py.RunSrc(ctx, kReplPrelude, "<prelude>", replCtx.Module); err != nil {
		return nil, err
	}
	return replCtx, nil
}

func go_gpython(pathname string) {
	ctx := py.NewContext(py.DefaultContextOpts())
	fmt.Println(banner())

	var err error
	if len(pathname) == 0 {
		var replCtx *repl.REPL
		if replCtx, err = newREPL(ctx); err == nil {
			fmt.Printf("%q is loaded; Ctrl-D exits\n", kReplPrelude)
			cli.RunREPL(replCtx)
		}

	} else {
		startTime := time.Now()
		fmt.Printf("<<<>>>   dualising via '%s'   <<<>>>\n", pathname)

		_, err = py.RunFile(ctx, pathname, py.CompileOpts{}, nil)
		if err == nil {
			fmt.Printf("<<<>>>   %s complete: %v   <<<>>>\n", pathname, time.Since(startTime))
		}
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
		log.Fatal(err)
	}
}
