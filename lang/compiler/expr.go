package compiler

import (
	"github.com/andyyu8588/Luminous/lang/token"
	"github.com/andyyu8588/Luminous/lang/value"
)

// precedence is the Pratt precedence ladder (spec.md §4.3.1), low to high.
type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

// precedenceOf returns the infix precedence of k, or precNone if k never
// appears as an infix operator. Per spec.md §9's design note, the Pratt
// table is a static switch rather than a table of closures: there is
// nothing dynamic about which rule a fixed keyword set dispatches to.
func precedenceOf(k token.Kind) precedence {
	switch k {
	case token.EQUALS:
		return precEquality
	case token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL:
		return precComparison
	case token.PLUS, token.MINUS:
		return precTerm
	case token.STAR, token.SLASH, token.PERCENT:
		return precFactor
	case token.AND:
		return precAnd
	case token.OR:
		return precOr
	case token.DOT, token.LPAREN, token.LBRACK:
		return precCall
	default:
		return precNone
	}
}

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

// parsePrecedence implements precedence climbing (spec.md §4.3.1): read the
// prefix rule for c.prev, then while the current token's infix precedence
// is at least p, advance and run its infix rule. canAssign is threaded
// through so that `=` is only legal at assignment precedence.
func (c *Compiler) parsePrecedence(p precedence) {
	c.advance()
	canAssign := p <= precAssignment
	if !c.prefix(c.prev.Kind, canAssign) {
		c.error("Expect expression.")
		return
	}

	for p <= precedenceOf(c.current.Kind) {
		c.advance()
		c.infix(c.prev.Kind, canAssign)
	}

	if canAssign && c.check(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) prefix(k token.Kind, canAssign bool) bool {
	switch k {
	case token.NUMBER:
		c.number()
	case token.STRING:
		c.stringLiteral()
	case token.TRUE, token.FALSE, token.NULL:
		c.literal(k)
	case token.LPAREN:
		c.grouping()
	case token.MINUS, token.NOT:
		c.unary()
	case token.IDENT:
		c.variable(canAssign)
	case token.THIS:
		c.thisExpr()
	case token.SUPER:
		c.superExpr()
	case token.LBRACK:
		c.arrayLiteral()
	default:
		return false
	}
	return true
}

func (c *Compiler) infix(k token.Kind, canAssign bool) {
	switch k {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL, token.EQUALS:
		c.binary(k)
	case token.AND:
		c.and_()
	case token.OR:
		c.or_()
	case token.DOT:
		c.dot(canAssign)
	case token.LPAREN:
		c.callExpr()
	case token.LBRACK:
		c.subscript(canAssign)
	}
}

func (c *Compiler) number() {
	c.emitConstant(value.Number(c.prev.Number))
}

func (c *Compiler) stringLiteral() {
	c.emitConstant(value.NewString(c.prev.Str))
}

func (c *Compiler) literal(k token.Kind) {
	switch k {
	case token.TRUE:
		c.emitOp(OpTrue)
	case token.FALSE:
		c.emitOp(OpFalse)
	case token.NULL:
		c.emitOp(OpNull)
	}
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary() {
	op := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch op {
	case token.MINUS:
		c.emitOp(OpNegate)
	case token.NOT:
		c.emitOp(OpNot)
	}
}

func (c *Compiler) binary(op token.Kind) {
	prec := precedenceOf(op)
	c.parsePrecedence(prec + 1)
	switch op {
	case token.PLUS:
		c.emitOp(OpAdd)
	case token.MINUS:
		c.emitOp(OpSub)
	case token.STAR:
		c.emitOp(OpMul)
	case token.SLASH:
		c.emitOp(OpDiv)
	case token.PERCENT:
		c.emitOp(OpMod)
	case token.EQUALS:
		c.emitOp(OpEqual)
	case token.LESS:
		c.emitOp(OpLess)
	case token.GREATER:
		c.emitOp(OpGreater)
	case token.LESS_EQUAL:
		c.emitOp(OpGreater)
		c.emitOp(OpNot)
	case token.GREATER_EQUAL:
		c.emitOp(OpLess)
		c.emitOp(OpNot)
	}
}

// and_ implements short-circuit logical AND using the existing jump
// opcodes, without a dedicated AND opcode (spec.md §4.2 defines no such
// opcode): if the left operand is falsy, JUMP_IF_FALSE leaves it as the
// result; otherwise it's popped and the right operand is the result.
func (c *Compiler) and_() {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emitOp(OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

// or_ is and_'s mirror for logical OR.
func (c *Compiler) or_() {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	c.emitOp(OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) callExpr() {
	argc := c.argumentList()
	c.emitOp(OpCall)
	c.emitByte(byte(argc))
}

func (c *Compiler) argumentList() int {
	argc := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == MaxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return argc
}

// accessorClass returns the (hasAccessor, nameConstant) operand pair
// identifying the class context this property access compiles within
// (spec.md §4.4.4: "The declaring-class context is propagated through an
// extra name-constant operand that identifies the accessing class at the
// call site").
func (c *Compiler) accessorClass() (hasAccessor byte, nameConst byte) {
	if c.class == nil {
		return 0, 0
	}
	return 1, c.identifierConstant(c.class.name)
}

// dot is the '.' infix rule (property access, method invocation, and
// property assignment; spec.md §4.4.4). Unlike namedVariable, it never
// implicitly declares a new binding -- `a.x = v` always targets an existing
// receiver's field table.
func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.prev.Lexeme
	nameConst := c.identifierConstant(name)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		hasAcc, accConst := c.accessorClass()
		c.emitOp(OpSetProperty)
		c.emitByte(nameConst)
		c.emitByte(hasAcc)
		c.emitByte(accConst)
	case c.match(token.LPAREN):
		argc := c.argumentList()
		hasAcc, accConst := c.accessorClass()
		c.emitOp(OpInvoke)
		c.emitByte(nameConst)
		c.emitByte(byte(argc))
		c.emitByte(hasAcc)
		c.emitByte(accConst)
	default:
		hasAcc, accConst := c.accessorClass()
		c.emitOp(OpGetProperty)
		c.emitByte(nameConst)
		c.emitByte(hasAcc)
		c.emitByte(accConst)
	}
}

func (c *Compiler) thisExpr() {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable("this", false)
}

func (c *Compiler) superExpr() {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}
	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.prev.Lexeme
	nameConst := c.identifierConstant(name)

	c.namedVariable("this", false)
	if c.match(token.LPAREN) {
		argc := c.argumentList()
		c.namedVariable("super", false)
		c.emitOp(OpSuperInvoke)
		c.emitByte(nameConst)
		c.emitByte(byte(argc))
		return
	}
	c.namedVariable("super", false)
	c.emitOp(OpGetSuper)
	c.emitByte(nameConst)
}

func (c *Compiler) arrayLiteral() {
	n := 0
	if !c.check(token.RBRACK) {
		for {
			c.expression()
			n++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RBRACK, "Expect ']' after list elements.")
	c.emitOp(OpArray)
	c.emitByte(byte(n))
}

func (c *Compiler) subscript(canAssign bool) {
	c.expression()
	c.consume(token.RBRACK, "Expect ']' after index.")
	if canAssign && c.check(token.EQUAL) {
		c.advance()
		c.expression()
		c.emitOp(OpArraySet)
		return
	}
	c.emitOp(OpArrayGet)
}

// variable is the IDENT prefix rule (spec.md §4.3.3).
func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev.Lexeme, canAssign)
}

// namedVariable resolves name to local/upvalue/global and, if canAssign and
// an assignment operator follows, compiles the assignment. If name is not
// resolvable as a local or upvalue, we're inside a local scope, canAssign,
// and the next token is a plain '=', this is the first mention of name at
// assignment position: it declares a brand-new local rather than assigning
// to an existing binding (spec.md §4.3.2, §8 boundary case; preserved
// exactly as an intentional deviation from block-scoped `var` declarations,
// per spec.md §9's note to mirror this behavior rather than "fix" it).
func (c *Compiler) namedVariable(name string, canAssign bool) {
	fs := c.fs()

	if slot := fs.resolveLocal(name); slot != -1 {
		if fs.locals[slot].depth == -1 {
			c.error("Can't read local variable in its own initializer.")
		}
		c.namedExisting(OpGetLocal, OpSetLocal, slot, canAssign)
		return
	}
	if idx := fs.resolveUpvalue(name); idx != -1 {
		c.namedExisting(OpGetUpvalue, OpSetUpvalue, idx, canAssign)
		return
	}

	if fs.scopeDepth > 0 && canAssign && c.check(token.EQUAL) {
		c.advance() // consume '='
		fs.declareLocal(name)
		c.expression()
		fs.markInitialized()
		c.lastExprDeclaredLocal = true
		return
	}

	arg := int(c.identifierConstant(name))
	c.namedExisting(OpGetGlobal, OpSetGlobal, arg, canAssign)
}

func (c *Compiler) namedExisting(getOp, setOp OpCode, arg int, canAssign bool) {
	if canAssign {
		if op, ok := c.matchCompoundOp(); ok {
			if op != 0 {
				c.emitOpByte(getOp, byte(arg))
			}
			c.expression()
			if op != 0 {
				c.emitOp(op)
			}
			c.emitOpByte(setOp, byte(arg))
			return
		}
	}
	c.emitOpByte(getOp, byte(arg))
}

// matchCompoundOp consumes one of `= += -= *= /=` if present, returning the
// OpCode implied for the compound forms (0 for plain '=').
func (c *Compiler) matchCompoundOp() (OpCode, bool) {
	switch c.current.Kind {
	case token.EQUAL:
		c.advance()
		return 0, true
	case token.PLUS_EQUAL:
		c.advance()
		return OpAdd, true
	case token.MINUS_EQUAL:
		c.advance()
		return OpSub, true
	case token.STAR_EQUAL:
		c.advance()
		return OpMul, true
	case token.SLASH_EQUAL:
		c.advance()
		return OpDiv, true
	}
	return 0, false
}
