package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/disasm"
	"github.com/andyyu8588/Luminous/lang/luminerr"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/value"
	"github.com/andyyu8588/Luminous/lang/vm"
)

// Run compiles and executes args[0] (spec.md §2 "source text -> tokens ->
// Function -> VM execution").
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	_, err := runFile(stdio, args[0], c.effectiveTraceExec(), c.effectiveDumpChunks(), c.stackMax())
	return err
}

// runFile is Run's scan+compile+execute path for one file. Repl does not
// use it: it scans, compiles and runs each input line itself.
func runFile(stdio mainer.Stdio, path string, traceExec, dumpChunks bool, maxFrames int) (*value.Function, error) {
	toks, err := scanner.ScanFile(path)
	if err != nil {
		diags := luminerr.FromScanErr(err)
		fmt.Fprintln(stdio.Stderr, diags)
		return nil, diags
	}

	fn, errs := compiler.Compile(toks, value.NewInterner())
	if len(errs) > 0 {
		diags := luminerr.FromCompileErrs(errs)
		fmt.Fprintln(stdio.Stderr, diags)
		return fn, diags
	}

	if dumpChunks {
		disasm.Function(stdio.Stdout, fn)
	}

	machine := vm.New(stdio.Stdout, traceExec, maxFrames)
	if err := machine.Run(fn); err != nil {
		diags := luminerr.FromRuntimeErr(err)
		fmt.Fprintln(stdio.Stderr, diags)
		return fn, diags
	}
	return fn, nil
}
