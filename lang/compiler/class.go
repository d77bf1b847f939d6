package compiler

import (
	"github.com/andyyu8588/Luminous/lang/token"
	"github.com/andyyu8588/Luminous/lang/value"
)

// classDeclaration compiles `class Name [inherits Parent] { members }`
// (spec.md §4.3.4, §4.4.3). The superclass, when present, is captured as a
// synthetic `super` local surrounding every method body, resolved by the
// ordinary upvalue machinery rather than a dedicated VM mechanism.
func (c *Compiler) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	name := c.prev.Lexeme
	nameConst := c.identifierConstant(name)
	fs := c.fs()

	local := fs.scopeDepth > 0
	if local {
		fs.declareLocal(name)
		fs.markInitialized()
	}

	c.emitOp(OpClass)
	c.emitByte(nameConst)
	if !local {
		c.emitOpByte(OpSetGlobal, nameConst)
		c.emitOp(OpPop)
	}

	cs := &classState{enclosing: c.class, name: name}
	c.class = cs

	if c.match(token.INHERITS) {
		c.consume(token.IDENT, "Expect superclass name.")
		superName := c.prev.Lexeme
		if superName == name {
			c.error("A class can't inherit from itself.")
		}
		c.namedVariable(superName, false)

		c.beginScope()
		fs.declareLocal("super")
		fs.markInitialized()

		c.namedVariable(name, false)
		c.emitOp(OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(name, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.classMember()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(OpPop)

	if cs.hasSuperclass {
		c.endScope()
	}

	c.class = cs.enclosing
}

// classMember compiles one member of a class body: a method (including the
// `constructor` special case) or a `public`/`private`/`protected` field
// declaration (spec.md §4.4.4).
func (c *Compiler) classMember() {
	switch {
	case c.match(token.FUNCTION):
		c.method()
	case c.match(token.PUBLIC):
		c.fieldDecl(value.AccessPublic)
	case c.match(token.PRIVATE):
		c.fieldDecl(value.AccessPrivate)
	case c.match(token.PROTECTED):
		c.fieldDecl(value.AccessProtected)
	default:
		c.errorAtCurrent("Expect method or field declaration.")
		c.advance()
	}
}

func (c *Compiler) method() {
	c.consume(token.IDENT, "Expect method name.")
	name := c.prev.Lexeme
	nameConst := c.identifierConstant(name)

	ftype := typeMethod
	if name == value.ConstructorName {
		ftype = typeConstructor
	}
	c.function(name, ftype)

	c.emitOp(OpMethod)
	c.emitByte(nameConst)
}

func (c *Compiler) fieldDecl(access value.Access) {
	c.consume(token.IDENT, "Expect field name.")
	nameConst := c.identifierConstant(c.prev.Lexeme)
	c.consume(token.SEMICOLON, "Expect ';' after field declaration.")

	c.emitOp(OpField)
	c.emitByte(nameConst)
	c.emitByte(byte(access))
}
