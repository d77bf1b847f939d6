package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is a runtime-class diagnostic (spec.md §6 "Error messages",
// §7 "Runtime errors"): the failing instruction's (line, file) plus a
// call-stack trace from the point of failure outward, innermost first.
type RuntimeError struct {
	Line    int
	File    string
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (line %d in file '%s')\n(Runtime Error)", e.Message, e.Line, e.File)
	for _, t := range e.Trace {
		sb.WriteByte('\n')
		sb.WriteString(t)
	}
	return sb.String()
}

// runtimeErrAt formats a fresh RuntimeError for the instruction at opIP in
// frame f's chunk, attaching the full call-stack trace.
func (vm *VM) runtimeErrAt(opIP int, f *frame, format string, args ...any) error {
	return vm.wrapErr(opIP, f, fmt.Errorf(format, args...))
}

// wrapErr attaches position and stack-trace information to an error raised
// by an opcode handler (spec.md §4.4.2 handlers return plain errors; the
// dispatch loop is solely responsible for diagnostic formatting).
func (vm *VM) wrapErr(opIP int, f *frame, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*RuntimeError); ok {
		return err
	}
	chunk := f.closure.Func.Chunk
	return &RuntimeError{
		Line:    chunk.LineAt(opIP),
		File:    chunk.FileAt(opIP),
		Message: err.Error(),
		Trace:   vm.stackTrace(),
	}
}

// stackTrace renders one "[line N in file P] in <function or "script">"
// line per live frame, innermost (currently executing) first (spec.md §6).
func (vm *VM) stackTrace() []string {
	trace := make([]string, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		fr := vm.frames[i]
		ip := fr.pc - 1
		if ip < 0 {
			ip = 0
		}
		chunk := fr.closure.Func.Chunk
		name := fr.closure.Func.Name
		if name == "" {
			name = "script"
		}
		trace = append(trace, fmt.Sprintf("[line %d in file %s] in %s", chunk.LineAt(ip), chunk.FileAt(ip), name))
	}
	return trace
}
