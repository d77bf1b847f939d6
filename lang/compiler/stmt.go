package compiler

import (
	"github.com/andyyu8588/Luminous/lang/token"
	"github.com/andyyu8588/Luminous/lang/value"
)

// declaration is the top of the recursive-descent statement grammar
// (spec.md §4.3.1): function and class declarations get dedicated forms,
// everything else falls through to statement(). panicMode synchronization
// happens here so one bad statement never cascades into the rest of the
// block (spec.md §7).
func (c *Compiler) declaration() {
	switch {
	case c.match(token.FUNCTION):
		c.funDeclaration()
	case c.match(token.CLASS):
		c.classDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.BREAK):
		c.breakStatement()
	case c.match(token.CONTINUE):
		c.continueStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(OpPrint)
}

// expressionStatement implements spec.md §4.3.2's pop rule: a global
// expression statement always pops; a local one pops only when it did not
// just declare a brand-new local (namedVariable signals that case via
// lastExprDeclaredLocal).
func (c *Compiler) expressionStatement() {
	fs := c.fs()
	topLevel := fs.scopeDepth == 0
	c.lastExprDeclaredLocal = false
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")

	if topLevel || !c.lastExprDeclaredLocal {
		c.emitOp(OpPop)
	}
	c.lastExprDeclaredLocal = false
}

func (c *Compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.statement()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emitOp(OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	fs := c.fs()
	loopStart := len(c.chunk().Code)

	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)

	fs.loops = append(fs.loops, loopState{loopStart: loopStart})
	c.statement()
	loop := fs.loops[len(fs.loops)-1]
	fs.loops = fs.loops[:len(fs.loops)-1]

	c.emitLoop(loopStart)
	c.patchJump(exitJump)
	c.emitOp(OpPop)

	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}
}

// forStatement compiles `for (id from expr to expr by [-]num) stmt`
// (spec.md §4.3.5). The loop variable is a global at top level; in a local
// scope it reuses an existing local of that name or else declares a new
// one (an enclosing function's variable is never captured for it); the `to`
// bound is cached in a synthetic local so it is evaluated once, not every
// iteration. Continue targets the increment step, reordered ahead of the
// body (classic jump-over-increment technique) so its bytecode offset is
// known before the body compiles, avoiding a forward patch list for it.
func (c *Compiler) forStatement() {
	fs := c.fs()
	topLevel := fs.scopeDepth == 0
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after 'for'.")
	c.consume(token.IDENT, "Expect loop variable name.")
	varName := c.prev.Lexeme
	c.consume(token.FROM, "Expect 'from' after loop variable.")
	c.expression()

	var getOp, setOp OpCode
	var slot int
	switch {
	case fs.resolveLocal(varName) != -1:
		slot = fs.resolveLocal(varName)
		getOp, setOp = OpGetLocal, OpSetLocal
		c.emitOpByte(OpSetLocal, byte(slot))
		c.emitOp(OpPop)
	case !topLevel:
		fs.declareLocal(varName)
		fs.markInitialized()
		slot = len(fs.locals) - 1
		getOp, setOp = OpGetLocal, OpSetLocal
	default:
		nameConst := c.identifierConstant(varName)
		getOp, setOp = OpGetGlobal, OpSetGlobal
		slot = int(nameConst)
		c.emitOpByte(OpSetGlobal, byte(slot))
		c.emitOp(OpPop)
	}

	c.consume(token.TO, "Expect 'to' after start value.")
	c.expression()
	fs.declareLocal("")
	fs.markInitialized()
	boundSlot := len(fs.locals) - 1

	step := 1.0
	if c.match(token.BY) {
		neg := c.match(token.MINUS)
		c.consume(token.NUMBER, "Expect a number after 'by'.")
		step = c.prev.Number
		if neg {
			step = -step
		}
	}

	conditionStart := len(c.chunk().Code)
	c.emitOpByte(getOp, byte(slot))
	c.emitOpByte(OpGetLocal, byte(boundSlot))
	if step < 0 {
		c.emitOp(OpGreater)
	} else {
		c.emitOp(OpLess)
	}
	exitJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)

	bodyJump := c.emitJump(OpJump)
	incrementStart := len(c.chunk().Code)
	c.emitOpByte(getOp, byte(slot))
	c.emitConstant(value.Number(step))
	c.emitOp(OpAdd)
	c.emitOpByte(setOp, byte(slot))
	c.emitOp(OpPop)
	c.emitLoop(conditionStart)
	c.patchJump(bodyJump)

	c.consume(token.RPAREN, "Expect ')' after for clause.")

	fs.loops = append(fs.loops, loopState{loopStart: incrementStart})
	c.statement()
	loop := fs.loops[len(fs.loops)-1]
	fs.loops = fs.loops[:len(fs.loops)-1]

	c.emitLoop(incrementStart)
	c.patchJump(exitJump)
	c.emitOp(OpPop)

	for _, j := range loop.breakJumps {
		c.patchJump(j)
	}

	c.endScope()
}

func (c *Compiler) returnStatement() {
	fs := c.fs()
	if fs.funcType == typeScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if fs.funcType == typeConstructor {
		c.error("Can't return a value from a constructor.")
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(OpReturn)
}

func (c *Compiler) breakStatement() {
	fs := c.fs()
	if len(fs.loops) == 0 {
		c.error("Can't use 'break' outside of a loop.")
	} else {
		idx := len(fs.loops) - 1
		j := c.emitJump(OpJump)
		fs.loops[idx].breakJumps = append(fs.loops[idx].breakJumps, j)
	}
	c.consume(token.SEMICOLON, "Expect ';' after 'break'.")
}

func (c *Compiler) continueStatement() {
	fs := c.fs()
	if len(fs.loops) == 0 {
		c.error("Can't use 'continue' outside of a loop.")
	} else {
		c.emitLoop(fs.loops[len(fs.loops)-1].loopStart)
	}
	c.consume(token.SEMICOLON, "Expect ';' after 'continue'.")
}
