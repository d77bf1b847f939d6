package compiler

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/andyyu8588/Luminous/lang/token"
	"github.com/andyyu8588/Luminous/lang/value"
)

// funcBuilder accumulates the value.Function being compiled for one
// funcState (spec.md §4.3.4: the Function becomes a constant once its
// enclosing CLOSURE op is emitted).
type funcBuilder struct {
	name     string
	arity    int
	isMethod bool
	chunk    *value.Chunk
}

// classState tracks the class body currently being compiled, for `super`
// resolution and field-access-modifier enforcement (spec.md §4.3.4,
// §4.4.4).
type classState struct {
	enclosing     *classState
	name          string
	hasSuperclass bool
}

// Compiler holds every piece of single-pass compile state for one
// compilation unit (spec.md §9: "carry compile state in an owning
// CompileSession passed by reference" rather than teacher-style global
// mutable flags).
type Compiler struct {
	toks []token.Token
	pos  int

	prev    token.Token
	current token.Token

	panicMode bool
	errs      []*Error

	current_ *funcState
	class    *classState

	// lastExprDeclaredLocal is set by namedVariable when an expression
	// statement's assignment declared a brand-new local rather than
	// assigning to an existing binding, so expressionStatement knows to
	// skip the usual trailing POP (spec.md §4.3.2: "a local expression
	// statement pops only when it does not introduce a new local").
	lastExprDeclaredLocal bool

	// globals interns global names for GET_GLOBAL/SET_GLOBAL constant pool
	// entries (spec.md §4.3.3 step 3), and likewise property, method and
	// class names. It is a single tier: a name is interned as soon as it is
	// compiled, and names interned by a compile that fails are kept.
	globals *value.Interner
}

// Error is a single compile-time diagnostic (spec.md §7).
type Error struct {
	Line    int
	File    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (line %d in file '%s')\n(Compile Error)", e.Message, e.Line, e.File)
}

// Compile parses and compiles toks into a root value.Function representing
// the top-level script (spec.md §2: "Compiler consumes tokens and emits a
// root Function whose Chunk carries nested functions as constants").
//
// On any compile error, Compile still finishes walking the token stream
// (panic-mode synchronization keeps it from cascading), then returns the
// accumulated errors and a nil Function: the driver must discard the
// partially-built program (spec.md §7).
func Compile(toks []token.Token, interner *value.Interner) (*value.Function, []*Error) {
	if interner == nil {
		interner = value.NewInterner()
	}
	c := &Compiler{toks: toks, globals: interner}
	c.advance()

	c.current_ = &funcState{funcType: typeScript, fn: &funcBuilder{name: "", chunk: &value.Chunk{}}}
	c.current_.declareLocal("") // slot 0, unnamed for the top-level script
	c.current_.markInitialized()

	for !c.check(token.EOF) {
		c.declaration()
	}

	fn := c.endFunction()
	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return fn, nil
}

func (c *Compiler) fs() *funcState { return c.current_ }

// --- token cursor -----------------------------------------------------

func (c *Compiler) advance() {
	c.prev = c.current
	for {
		if c.pos >= len(c.toks) {
			c.current = token.Token{Kind: token.EOF}
			return
		}
		c.current = c.toks[c.pos]
		c.pos++
		if c.current.Kind != token.ILLEGAL {
			return
		}
		c.errorAtCurrent("illegal token")
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.current.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

// --- error reporting / panic mode -------------------------------------

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.errs = append(c.errs, &Error{Line: tok.Line, File: tok.File, Message: msg})
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.current, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.prev, msg) }

// synchronize skips tokens until a likely statement boundary, clearing
// panicMode so error reporting resumes (spec.md §7).
func (c *Compiler) synchronize() {
	c.panicMode = false
	for !c.check(token.EOF) {
		if c.prev.Kind == token.SEMICOLON {
			return
		}
		switch c.current.Kind {
		case token.CLASS, token.FUNCTION, token.IF, token.WHILE, token.FOR, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- bytecode emission -------------------------------------------------

func (c *Compiler) chunk() *value.Chunk { return c.fs().fn.chunk }

func (c *Compiler) emitByte(b byte) int {
	return c.chunk().WriteByte(b, c.prev.Line, c.prev.File)
}

func (c *Compiler) emitOp(op OpCode) int { return c.emitByte(byte(op)) }

func (c *Compiler) emitOpByte(op OpCode, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

func (c *Compiler) emitReturn() {
	if c.fs().funcType == typeConstructor {
		c.emitOpByte(OpGetLocal, 0)
	} else {
		c.emitOp(OpNull)
	}
	c.emitOp(OpReturn)
}

// makeConstant appends v to the current chunk's constant pool, enforcing
// the 256-entry limit (spec.md §7 "Too many constants in one chunk").
func (c *Compiler) makeConstant(v value.Value) byte {
	ch := c.chunk()
	if i := slices.IndexFunc(ch.Constants, func(existing value.Value) bool {
		return value.Equal(existing, v)
	}); i >= 0 {
		return byte(i)
	}
	if len(ch.Constants) >= MaxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(ch.AddConstant(v))
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitOpByte(OpConstant, c.makeConstant(v))
}

// identifierConstant interns name and returns its constant-pool index,
// deduplicating within the compilation unit (spec.md §4.3.3 step 3,
// §8 "Interning").
func (c *Compiler) identifierConstant(name string) byte {
	obj := c.globals.Intern(name)
	return c.makeConstant(value.Obj(obj))
}

// emitJump writes op followed by a 2-byte placeholder distance and returns
// the offset of the placeholder's first byte, for a later patchJump
// (spec.md §4.3.5).
func (c *Compiler) emitJump(op OpCode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.chunk().Code) - 2
}

// patchJump backfills the 2-byte placeholder at offset with the distance
// from just after it to the current code position (spec.md §4.3.5).
func (c *Compiler) patchJump(offset int) {
	jump := len(c.chunk().Code) - offset - 2
	if jump > MaxJump {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk().Code[offset] = byte(jump >> 8)
	c.chunk().Code[offset+1] = byte(jump)
}

// emitLoop emits a backward LOOP jump to loopStart (spec.md §4.3.5).
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(OpLoop)
	jump := len(c.chunk().Code) - loopStart + 2
	if jump > MaxJump {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(jump >> 8))
	c.emitByte(byte(jump))
}

// --- scopes -------------------------------------------------------------

func (c *Compiler) beginScope() { c.fs().scopeDepth++ }

// endScope pops every local declared in the scope being left, emitting
// CLOSE_UPVALUE for any that were captured (so the upvalue detaches from
// the stack before the slot is reused) and POP otherwise (spec.md §4.4.5).
func (c *Compiler) endScope() {
	fs := c.fs()
	fs.scopeDepth--
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		if fs.locals[len(fs.locals)-1].isCaptured {
			c.emitOp(OpCloseUpvalue)
		} else {
			c.emitOp(OpPop)
		}
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}

// endFunction closes off the current funcState: emits an implicit `null;
// return` if the body didn't already end in one, builds the value.Function,
// and pops back to the enclosing funcState. It emits no CLOSURE itself;
// function() does that in the enclosing chunk once this returns.
func (c *Compiler) endFunction() *value.Function {
	fs := c.fs()
	code := fs.fn.chunk.Code
	if len(code) == 0 || OpCode(code[len(code)-1]) != OpReturn {
		c.emitReturn()
	}

	fn := &value.Function{
		Name:     fs.fn.name,
		Arity:    fs.fn.arity,
		IsMethod: fs.fn.isMethod,
		Chunk:    fs.fn.chunk,
		Upvalues: make([]value.UpvalueDesc, len(fs.upvalues)),
	}
	for i, uv := range fs.upvalues {
		fn.Upvalues[i] = value.UpvalueDesc{IsLocal: uv.isLocal, Index: uv.index}
	}

	c.current_ = fs.enclosing
	return fn
}
