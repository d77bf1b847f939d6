package compiler

import (
	"github.com/andyyu8588/Luminous/lang/token"
	"github.com/andyyu8588/Luminous/lang/value"
)

// funDeclaration compiles `function name(...) { ... }` as a statement,
// binding name the same way a plain assignment would (spec.md §4.3.4): a
// local name's slot is simply the pushed CLOSURE value; a global name goes
// through SET_GLOBAL + POP.
func (c *Compiler) funDeclaration() {
	c.consume(token.IDENT, "Expect function name.")
	name := c.prev.Lexeme
	fs := c.fs()

	local := fs.scopeDepth > 0
	var globalConst byte
	if local {
		fs.declareLocal(name)
		fs.markInitialized()
	} else {
		globalConst = c.identifierConstant(name)
	}

	c.function(name, typeFunction)

	if !local {
		c.emitOpByte(OpSetGlobal, globalConst)
		c.emitOp(OpPop)
	}
}

// function compiles a function body (spec.md §4.3.4: "pushing a new
// FunctionInfo"), pushing a fresh funcState, parsing the parameter list and
// block body, then closing back out to the enclosing funcState with a
// CLOSURE instruction and its trailing upvalue descriptor bytes.
func (c *Compiler) function(name string, ftype functionType) {
	fs := &funcState{
		enclosing: c.fs(),
		funcType:  ftype,
		fn: &funcBuilder{
			name:     name,
			chunk:    &value.Chunk{},
			isMethod: ftype == typeMethod || ftype == typeConstructor,
		},
	}
	c.current_ = fs
	c.beginScope()

	if fs.fn.isMethod {
		fs.declareLocal("this")
	} else {
		fs.declareLocal("")
	}
	fs.markInitialized()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			fs.fn.arity++
			if fs.fn.arity > MaxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			c.consume(token.IDENT, "Expect parameter name.")
			pname := c.prev.Lexeme
			for _, l := range fs.locals {
				if l.name == pname {
					c.error("Illegal function parameter name, variable already exists.")
					break
				}
			}
			fs.declareLocal(pname)
			fs.markInitialized()
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	fn := c.endFunction()
	constIdx := c.makeConstant(value.NewFunction(fn))
	c.emitOp(OpClosure)
	c.emitByte(constIdx)
	for _, uv := range fn.Upvalues {
		if uv.IsLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitByte(byte(uv.Index))
	}
}
