package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/mna/mainer"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/disasm"
	"github.com/andyyu8588/Luminous/lang/luminerr"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/value"
	"github.com/andyyu8588/Luminous/lang/vm"
)

const replFile = "<repl>"

// Repl runs an interactive read-eval-print loop: one statement per line,
// sharing a single VM (and therefore its globals) across the whole session
// (spec.md §6 "with no args, enter REPL"). Compile and runtime errors are
// reported and the loop continues; only EOF on stdin ends the session.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	printBanner(stdio)

	machine := vm.New(stdio.Stdout, c.effectiveTraceExec(), c.stackMax())
	interner := value.NewInterner()
	interactive := isTerminal(stdio)
	dumpChunks := c.effectiveDumpChunks()

	sc := bufio.NewScanner(stdio.Stdin)
	for {
		if interactive {
			fmt.Fprint(stdio.Stdout, "> ")
		}
		if !sc.Scan() {
			break
		}
		line := sc.Text()
		if line == "" {
			continue
		}

		s := scanner.New(replFile, []byte(line), scanner.NewImportGraph())
		toks, serr := s.Scan()
		if serr != nil {
			fmt.Fprintln(stdio.Stderr, luminerr.FromScanErr(serr))
			continue
		}

		fn, errs := compiler.Compile(toks, interner)
		if len(errs) > 0 {
			fmt.Fprintln(stdio.Stderr, luminerr.FromCompileErrs(errs))
			continue
		}
		if dumpChunks {
			disasm.Function(stdio.Stdout, fn)
		}
		if err := machine.Run(fn); err != nil {
			fmt.Fprintln(stdio.Stderr, luminerr.FromRuntimeErr(err))
		}
	}
	return nil
}

// printBanner prints the VERSION file's contents, if present in the
// working directory, followed by an ephemeral session id (spec.md §6: "A
// VERSION file in the working directory provides the REPL banner text").
func printBanner(stdio mainer.Stdio) {
	if b, err := os.ReadFile("VERSION"); err == nil {
		fmt.Fprintf(stdio.Stdout, "Luminous %s\n", trimTrailingNewline(string(b)))
	} else {
		fmt.Fprintln(stdio.Stdout, "Luminous")
	}
	fmt.Fprintf(stdio.Stdout, "session %s\n", uuid.New())
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// isTerminal reports whether stdout is an interactive terminal, deciding
// whether the REPL prints a `>` prompt.
func isTerminal(stdio mainer.Stdio) bool {
	f, ok := stdio.Stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
