package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/value"
)

func compile(t *testing.T, src string) (*value.Function, []*compiler.Error) {
	t.Helper()
	toks, err := scanner.New("t.lum", []byte(src), scanner.NewImportGraph()).Scan()
	require.NoError(t, err)
	return compiler.Compile(toks, value.NewInterner())
}

func opcodesOf(fn *value.Function) []compiler.OpCode {
	var ops []compiler.OpCode
	code := fn.Chunk.Code
	for i := 0; i < len(code); {
		op := compiler.OpCode(code[i])
		ops = append(ops, op)
		i += 1 + operandWidth(op, fn, i)
	}
	return ops
}

// operandWidth mirrors lang/disasm's fixed-width table for the opcodes this
// test file actually exercises; it does not need to handle every opcode.
func operandWidth(op compiler.OpCode, fn *value.Function, offset int) int {
	switch op {
	case compiler.OpConstant, compiler.OpGetLocal, compiler.OpSetLocal,
		compiler.OpGetGlobal, compiler.OpSetGlobal, compiler.OpGetUpvalue,
		compiler.OpSetUpvalue, compiler.OpCall, compiler.OpArray:
		return 1
	case compiler.OpJump, compiler.OpJumpIfFalse, compiler.OpLoop:
		return 2
	case compiler.OpGetProperty, compiler.OpSetProperty:
		return 3
	case compiler.OpInvoke:
		return 4
	case compiler.OpSuperInvoke:
		return 2
	case compiler.OpField:
		return 2
	case compiler.OpClosure:
		constIdx := fn.Chunk.Code[offset+1]
		nested := fn.Chunk.Constants[constIdx].AsObject().Func
		return 1 + 2*len(nested.Upvalues)
	default:
		return 0
	}
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	fn, errs := compile(t, `print 3 + 4 * 2;`)
	require.Empty(t, errs)
	require.Equal(t, []compiler.OpCode{
		compiler.OpConstant, compiler.OpConstant, compiler.OpConstant,
		compiler.OpMul, compiler.OpAdd, compiler.OpPrint,
		compiler.OpNull, compiler.OpReturn,
	}, opcodesOf(fn))
}

func TestCompileImplicitLocalDeclaration(t *testing.T) {
	fn, errs := compile(t, `function f() { x = 1; return x; }`)
	require.Empty(t, errs)
	require.NotNil(t, fn)
}

func TestCompileReturnOutsideFunctionIsError(t *testing.T) {
	_, errs := compile(t, `return 1;`)
	require.NotEmpty(t, errs)
	require.Contains(t, errs[0].Message, "Can't return from top-level code.")
}

func TestCompileSelfInheritanceIsError(t *testing.T) {
	_, errs := compile(t, `class A inherits A { function constructor() {} }`)
	require.NotEmpty(t, errs)
	require.Contains(t, errs[0].Message, "can't inherit from itself")
}

func TestCompileSuperOutsideClassIsError(t *testing.T) {
	_, errs := compile(t, `function f() { super.x(); }`)
	require.NotEmpty(t, errs)
}

func TestCompileInvalidAssignmentTargetIsError(t *testing.T) {
	_, errs := compile(t, `1 = 2;`)
	require.NotEmpty(t, errs)
}

func TestCompileSelfReferenceInInitializerIsError(t *testing.T) {
	_, errs := compile(t, `function f() { x = x; }`)
	require.NotEmpty(t, errs)
	require.Contains(t, errs[0].Message, "Can't read local variable in its own initializer.")
}

func TestCompileDuplicateParameterNameIsError(t *testing.T) {
	_, errs := compile(t, `function f(a, a) { return a; }`)
	require.NotEmpty(t, errs)
	require.Contains(t, errs[0].Message, "Illegal function parameter name, variable already exists.")
}

func TestCompilePanicModeSynchronizes(t *testing.T) {
	// The first statement is malformed (bad assignment target); the second
	// is well-formed and should still compile once synchronize() resumes.
	_, errs := compile(t, `1 = 2; print 1;`)
	require.Len(t, errs, 1)
}
