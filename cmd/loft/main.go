// Command loft evaluates a loft script and writes the resulting
// geometry as an STL file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"go.uber.org/zap"

	"github.com/chazu/loft/pkg/engine"
)

func main() {
	out := flag.String("o", "out.stl", "output STL path")
	verbose := flag.Bool("v", false, "log evaluation diagnostics")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [script.lisp]\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Reads from stdin when no script file is given.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Arg(0), *out, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "loft:", err)
		os.Exit(1)
	}
}

func run(script, out string, verbose bool) error {
	var source []byte
	var err error
	if script == "" {
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(script)
	}
	if err != nil {
		return err
	}

	eng := engine.NewEngine()
	if verbose {
		logger, lerr := zap.NewDevelopment()
		if lerr != nil {
			return lerr
		}
		defer logger.Sync()
		eng = engine.NewEngineWithLogger(logger)
	}

	frags, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", scriptName(script), e.Line, e.Col, e.Message)
		}
		return fmt.Errorf("%d evaluation errors", len(evalErrs))
	}
	if len(frags) == 0 {
		return fmt.Errorf("script produced no geometry")
	}

	var tris []*sdf.Triangle3
	degraded := false
	for _, f := range frags {
		tris = append(tris, f.Triangles()...)
		degraded = degraded || f.Degraded
	}
	if degraded {
		fmt.Fprintln(os.Stderr, "loft: warning: output contains concatenated fragments and may be non-manifold")
	}

	if err := render.SaveSTL(out, tris); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Printf("wrote %s: %d fragments, %d triangles\n", out, len(frags), len(tris))
	return nil
}

func scriptName(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}
