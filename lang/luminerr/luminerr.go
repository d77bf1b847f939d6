// Package luminerr generalizes the scanner's and compiler's per-package
// Error/ErrorList pattern into a single diagnostic shape the CLI can sort,
// deduplicate, and render uniformly, whichever phase (scan, compile, run)
// produced the failure (spec.md §6 "Error messages", §7 "Runtime errors").
package luminerr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/vm"
)

// Kind distinguishes where in the pipeline a Diagnostic originated, since
// §6/§7 use distinct marker lines for each.
type Kind uint8

const (
	CompileError Kind = iota
	RuntimeError
)

func (k Kind) marker() string {
	if k == RuntimeError {
		return "(Runtime Error)"
	}
	return "(Compile Error)"
}

// Diagnostic is one reported problem: a (line, file) position, a message,
// and — for a RuntimeError — the call-stack trace at the point of failure.
type Diagnostic struct {
	Kind    Kind
	Line    int
	File    string
	Message string
	Trace   []string
}

func (d Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (line %d in file '%s')\n%s", d.Message, d.Line, d.File, d.Kind.marker())
	for _, t := range d.Trace {
		sb.WriteByte('\n')
		sb.WriteString(t)
	}
	return sb.String()
}

// List is an ordered, deduplicated diagnostic batch (spec.md §7: panic-mode
// statement-level suppression means a single syntax fault should surface
// once, not once per recovery point).
type List []Diagnostic

// Sort orders by (File, Line), matching the teacher's ErrorList.Sort.
func (l List) Sort() {
	sort.Slice(l, func(i, j int) bool {
		if l[i].File != l[j].File {
			return l[i].File < l[j].File
		}
		return l[i].Line < l[j].Line
	})
}

// Dedup removes consecutive (File, Line, Message) duplicates; call Sort
// first for it to be effective across the whole list.
func (l List) Dedup() List {
	out := l[:0]
	for i, d := range l {
		if i > 0 {
			p := l[i-1]
			if p.File == d.File && p.Line == d.Line && p.Message == d.Message {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

// FromScanErr converts a scanner error (nil, *scanner.Error, or
// scanner.ErrorList) into a List.
func FromScanErr(err error) List {
	switch e := err.(type) {
	case nil:
		return nil
	case *scanner.Error:
		return List{{Kind: CompileError, Line: e.Line, File: e.File, Message: e.Message}}
	case scanner.ErrorList:
		out := make(List, len(e))
		for i, se := range e {
			out[i] = Diagnostic{Kind: CompileError, Line: se.Line, File: se.File, Message: se.Message}
		}
		return out
	default:
		return List{{Kind: CompileError, Message: e.Error()}}
	}
}

// FromCompileErrs converts the compiler's []*compiler.Error into a List.
func FromCompileErrs(errs []*compiler.Error) List {
	out := make(List, len(errs))
	for i, e := range errs {
		out[i] = Diagnostic{Kind: CompileError, Line: e.Line, File: e.File, Message: e.Message}
	}
	return out
}

// FromRuntimeErr converts a *vm.RuntimeError into a single-entry List,
// carrying its stack trace along.
func FromRuntimeErr(err error) List {
	re, ok := err.(*vm.RuntimeError)
	if !ok {
		return List{{Kind: RuntimeError, Message: err.Error()}}
	}
	return List{{Kind: RuntimeError, Line: re.Line, File: re.File, Message: re.Message, Trace: re.Trace}}
}
