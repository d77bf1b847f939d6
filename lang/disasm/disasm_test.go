package disasm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/disasm"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/value"
)

func TestFunctionHeaderAndOpcodeNames(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte(`print 3 + 4 * 2;`), scanner.NewImportGraph()).Scan()
	require.NoError(t, err)
	fn, errs := compiler.Compile(toks, value.NewInterner())
	require.Empty(t, errs)

	var buf bytes.Buffer
	disasm.Function(&buf, fn)
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "== script ==\n"))
	require.Contains(t, out, "CONSTANT")
	require.Contains(t, out, "MUL")
	require.Contains(t, out, "ADD")
	require.Contains(t, out, "PRINT")
	require.Contains(t, out, "RETURN")
}

func TestFunctionRecursesIntoNestedFunctions(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte(`function f() { return 1; }`), scanner.NewImportGraph()).Scan()
	require.NoError(t, err)
	fn, errs := compiler.Compile(toks, value.NewInterner())
	require.Empty(t, errs)

	var buf bytes.Buffer
	disasm.Function(&buf, fn)
	out := buf.String()

	require.Contains(t, out, "== script ==")
	require.Contains(t, out, "== f ==")
	require.Equal(t, 1, strings.Count(out, "CLOSURE"))
}

func TestInstructionAdvancesPastClosureUpvalues(t *testing.T) {
	toks, err := scanner.New("t.lum", []byte(`
function make() {
	x = 0;
	function inc() { return x; }
	return inc;
}
`), scanner.NewImportGraph()).Scan()
	require.NoError(t, err)
	fn, errs := compiler.Compile(toks, value.NewInterner())
	require.Empty(t, errs)

	// make is the only nested function constant on the script; its own
	// chunk holds inc's CLOSURE, which carries one upvalue descriptor pair
	// (for x). Walk make's chunk and confirm Instruction consumes those
	// trailing bytes without desyncing the following offsets.
	var maker *value.Function
	for _, k := range fn.Chunk.Constants {
		if k.Is(value.ObjFunction) {
			maker = k.AsObject().Func
		}
	}
	require.NotNil(t, maker)

	var buf bytes.Buffer
	offset := 0
	sawClosure := false
	for offset < len(maker.Chunk.Code) {
		if compiler.OpCode(maker.Chunk.Code[offset]) == compiler.OpClosure {
			sawClosure = true
		}
		offset = disasm.Instruction(&buf, maker.Chunk, offset)
	}
	require.True(t, sawClosure)
	require.Equal(t, len(maker.Chunk.Code), offset)
}
