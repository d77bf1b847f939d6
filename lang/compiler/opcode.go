// Package compiler implements Luminous's single-pass, Pratt-style parser
// and bytecode code generator (spec.md §4.3). It consumes a token sequence
// from lang/scanner and produces a root value.Function whose value.Chunk
// carries nested functions as constants.
package compiler

// OpCode identifies a bytecode instruction (spec.md §4.2).
type OpCode byte

//nolint:revive
const (
	OpConstant OpCode = iota
	OpNull
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpInvoke
	OpSuperInvoke
	OpClosure
	OpCloseUpvalue
	OpReturn
	OpClass
	OpInherit
	OpMethod
	OpField
	OpArray
	OpArrayGet
	OpArraySet
	OpDuplicate
)

var opcodeNames = [...]string{
	OpConstant:     "CONSTANT",
	OpNull:         "NULL",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpPop:          "POP",
	OpGetLocal:     "GET_LOCAL",
	OpSetLocal:     "SET_LOCAL",
	OpGetGlobal:    "GET_GLOBAL",
	OpSetGlobal:    "SET_GLOBAL",
	OpGetUpvalue:   "GET_UPVALUE",
	OpSetUpvalue:   "SET_UPVALUE",
	OpGetProperty:  "GET_PROPERTY",
	OpSetProperty:  "SET_PROPERTY",
	OpGetSuper:     "GET_SUPER",
	OpEqual:        "EQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpAdd:          "ADD",
	OpSub:          "SUB",
	OpMul:          "MUL",
	OpDiv:          "DIV",
	OpMod:          "MOD",
	OpNot:          "NOT",
	OpNegate:       "NEGATE",
	OpPrint:        "PRINT",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpLoop:         "LOOP",
	OpCall:         "CALL",
	OpInvoke:       "INVOKE",
	OpSuperInvoke:  "SUPER_INVOKE",
	OpClosure:      "CLOSURE",
	OpCloseUpvalue: "CLOSE_UPVALUE",
	OpReturn:       "RETURN",
	OpClass:        "CLASS",
	OpInherit:      "INHERIT",
	OpMethod:       "METHOD",
	OpField:        "FIELD",
	OpArray:        "ARRAY",
	OpArrayGet:     "ARRAY_GET",
	OpArraySet:     "ARRAY_SET",
	OpDuplicate:    "DUPLICATE",
}

func (op OpCode) String() string {
	if int(op) >= len(opcodeNames) {
		return "<invalid opcode>"
	}
	return opcodeNames[op]
}

// MaxConstants is the largest number of constants a single Chunk may hold
// (spec.md §3: "Constant-pool indices fit in a single byte").
const MaxConstants = 256

// MaxJump is the largest forward/backward distance a JUMP/LOOP instruction
// can encode (spec.md §4.2: "2 bytes, big-endian").
const MaxJump = 1<<16 - 1

// MaxArgs is the largest argument count a single CALL/INVOKE may pass
// (spec.md §4.2).
const MaxArgs = 255

// MaxFrames is the maximum depth of the VM's call-frame stack (spec.md §3).
const MaxFrames = 256
