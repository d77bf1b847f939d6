// Package disasm renders a compiled value.Function tree to human-readable
// bytecode text (spec.md §4.4, "the DumpChunks config knob"). It is a
// read-only consumer: nothing here mutates a Chunk or Function.
package disasm

import (
	"fmt"
	"io"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/value"
)

// operandWidths gives each opcode's operand byte count. Opcodes absent from
// this map take no operand.
var operandWidths = map[compiler.OpCode]int{
	compiler.OpConstant:     1,
	compiler.OpDuplicate:    1,
	compiler.OpGetLocal:     1,
	compiler.OpSetLocal:     1,
	compiler.OpGetGlobal:    1,
	compiler.OpSetGlobal:    1,
	compiler.OpGetUpvalue:   1,
	compiler.OpSetUpvalue:   1,
	compiler.OpGetProperty:  3, // name, hasAccessor, accessorClass
	compiler.OpSetProperty:  3,
	compiler.OpGetSuper:     1,
	compiler.OpJump:         2,
	compiler.OpJumpIfFalse:  2,
	compiler.OpLoop:         2,
	compiler.OpCall:         1,
	compiler.OpInvoke:       4, // name, argc, hasAccessor, accessorClass
	compiler.OpSuperInvoke:  2,
	compiler.OpClass:        1,
	compiler.OpMethod:       1,
	compiler.OpField:        2,
	compiler.OpArray:        1,
}

// Function writes fn's disassembly, then recurses into every nested
// function reachable through its constant pool, to w.
func Function(w io.Writer, fn *value.Function) {
	name := fn.Name
	if name == "" {
		name = "script"
	}
	fmt.Fprintf(w, "== %s ==\n", name)

	chunk := fn.Chunk
	offset := 0
	for offset < len(chunk.Code) {
		offset = Instruction(w, chunk, offset)
	}

	for _, c := range chunk.Constants {
		if c.IsObject() && c.Is(value.ObjFunction) {
			fmt.Fprintln(w)
			Function(w, c.AsObject().Func)
		}
	}
}

// Instruction writes one disassembled instruction at offset and returns
// the offset of the next one; exported so the VM's execution tracer
// (internal/config's LUMINOUS_TRACE_EXEC) can reuse it per-step.
func Instruction(w io.Writer, chunk *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d %4d %-14s", offset, chunk.LineAt(offset), compiler.OpCode(chunk.Code[offset]))

	op := compiler.OpCode(chunk.Code[offset])
	if op == compiler.OpClosure {
		return closureInstruction(w, chunk, offset)
	}

	width, hasOperand := operandWidths[op]
	if !hasOperand {
		fmt.Fprintln(w)
		return offset + 1
	}

	switch op {
	case compiler.OpJump, compiler.OpJumpIfFalse:
		jumpOffset := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
		fmt.Fprintf(w, " %04d -> %04d\n", jumpOffset, offset+1+width+jumpOffset)
	case compiler.OpLoop:
		jumpOffset := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
		fmt.Fprintf(w, " %04d -> %04d\n", jumpOffset, offset+1+width-jumpOffset)
	case compiler.OpConstant, compiler.OpGetGlobal, compiler.OpSetGlobal,
		compiler.OpClass, compiler.OpMethod:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, " %4d '%s'\n", idx, chunk.Constants[idx].String())
	case compiler.OpGetProperty, compiler.OpSetProperty:
		idx := chunk.Code[offset+1]
		hasAccessor := chunk.Code[offset+2] != 0
		accessor := "-"
		if hasAccessor {
			accessor = chunk.Constants[chunk.Code[offset+3]].String()
		}
		fmt.Fprintf(w, " %4d '%s' (accessor=%s)\n", idx, chunk.Constants[idx].String(), accessor)
	case compiler.OpInvoke:
		idx := chunk.Code[offset+1]
		argc := chunk.Code[offset+2]
		hasAccessor := chunk.Code[offset+3] != 0
		accessor := "-"
		if hasAccessor {
			accessor = chunk.Constants[chunk.Code[offset+4]].String()
		}
		fmt.Fprintf(w, " (%d args) %4d '%s' (accessor=%s)\n", argc, idx, chunk.Constants[idx].String(), accessor)
	case compiler.OpSuperInvoke:
		idx := chunk.Code[offset+1]
		argc := chunk.Code[offset+2]
		fmt.Fprintf(w, " (%d args) %4d '%s'\n", argc, idx, chunk.Constants[idx].String())
	case compiler.OpGetSuper:
		idx := chunk.Code[offset+1]
		fmt.Fprintf(w, " %4d '%s'\n", idx, chunk.Constants[idx].String())
	case compiler.OpField:
		idx := chunk.Code[offset+1]
		access := value.Access(chunk.Code[offset+2])
		fmt.Fprintf(w, " %4d '%s' (%s)\n", idx, chunk.Constants[idx].String(), accessName(access))
	default:
		for i := 0; i < width; i++ {
			fmt.Fprintf(w, " %d", chunk.Code[offset+1+i])
		}
		fmt.Fprintln(w)
	}
	return offset + 1 + width
}

// closureInstruction disassembles CLOSURE, whose operand width depends on
// the referenced function's captured-upvalue count (spec.md §4.4.5): one
// constant-pool byte, then an (isLocal, index) pair per upvalue descriptor.
func closureInstruction(w io.Writer, chunk *value.Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fn := chunk.Constants[idx].AsObject().Func
	fmt.Fprintf(w, " %4d '%s'\n", idx, fn.String())

	pos := offset + 2
	for i, uv := range fn.Upvalues {
		kind := "upvalue"
		if uv.IsLocal {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %d captured %s %d\n", pos, i, kind, chunk.Code[pos+1])
		pos += 2
	}
	return pos
}

func accessName(a value.Access) string {
	switch a {
	case value.AccessPrivate:
		return "private"
	case value.AccessProtected:
		return "protected"
	default:
		return "public"
	}
}
