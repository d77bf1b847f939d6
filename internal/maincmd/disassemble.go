package maincmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/mna/mainer"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/disasm"
	"github.com/andyyu8588/Luminous/lang/luminerr"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/value"
)

// Disassemble compiles args[0] and prints the bytecode disassembly of
// every Chunk reachable from the root Function, without executing it.
func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	toks, err := scanner.ScanFile(args[0])
	if err != nil {
		diags := luminerr.FromScanErr(err)
		fmt.Fprintln(stdio.Stderr, diags)
		return diags
	}

	fn, errs := compiler.Compile(toks, value.NewInterner())
	if len(errs) > 0 {
		diags := luminerr.FromCompileErrs(errs)
		fmt.Fprintln(stdio.Stderr, diags)
		return diags
	}

	disasm.Function(stdio.Stdout, fn)
	fmt.Fprintf(stdio.Stdout, "\n%s bytecode bytes\n", humanize.Comma(int64(len(fn.Chunk.Code))))
	return nil
}
