package value

import "fmt"

// UpvalueDesc describes, at the CLOSURE call site, where a captured
// variable comes from (spec.md §4.2 CLOSURE operand, §4.3.3 resolveUpvalue):
// either the enclosing function's own local slot, or one of the enclosing
// function's own upvalues (propagating capture across nesting).
type UpvalueDesc struct {
	IsLocal bool
	Index   int
}

// Function is the immutable, compiled representation of a function
// (spec.md §3). It is built once by the compiler and never mutated
// afterwards; Closure is the runtime value that pairs a Function with its
// captured Upvalues.
type Function struct {
	Name      string
	Arity     int
	IsMethod  bool // slot 0 is bound to `this` rather than a parameter name
	Chunk     *Chunk
	Upvalues  []UpvalueDesc
}

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<function %s>", f.Name)
}

// NewFunction allocates a Function Object.
func NewFunction(f *Function) Value {
	return Obj(&Object{Kind: ObjFunction, Func: f})
}

// Native is a host-provided builtin, callable from scripts (spec.md §4.5).
// Arity < 0 means variadic (any argument count is accepted).
type Native struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

func NewNative(n *Native) Value {
	return Obj(&Object{Kind: ObjNative, Native: n})
}

// Upvalue is an indirection cell closing over an outer local (spec.md §3,
// §4.4.5). While Open, Stack points at a live VM stack slot; when Closed,
// the Value is owned directly and Stack is no longer consulted.
//
// Open/Closed is modeled as (stack-index, generation-free pointer-to-slice)
// rather than a raw pointer into the stack, per spec.md §9's caution that
// "the VM must never hold a raw pointer that could be invalidated by stack
// growth": Stack holds a reference to the VM's value slice and SlotIndex the
// index within it, re-resolved on every access.
type Upvalue struct {
	Open      bool
	Stack     *[]Value
	SlotIndex int
	Closed    Value

	// Next links this Upvalue into the VM's open-upvalue list, sorted
	// descending by SlotIndex (spec.md §4.4.5). Nil once Closed.
	Next *Upvalue
}

// Get returns the current value of the upvalue.
func (u *Upvalue) Get() Value {
	if u.Open {
		return (*u.Stack)[u.SlotIndex]
	}
	return u.Closed
}

// Set assigns v as the current value of the upvalue.
func (u *Upvalue) Set(v Value) {
	if u.Open {
		(*u.Stack)[u.SlotIndex] = v
		return
	}
	u.Closed = v
}

// Close converts an open upvalue to a closed one, copying out the live
// stack value it pointed at (spec.md §4.4.5 closeUpvalues).
func (u *Upvalue) Close() {
	if !u.Open {
		return
	}
	u.Closed = (*u.Stack)[u.SlotIndex]
	u.Open = false
	u.Stack = nil
	u.Next = nil
}

func NewUpvalue(u *Upvalue) Value {
	return Obj(&Object{Kind: ObjUpvalue, Upvalue: u})
}

// Closure is the runtime pairing of a Function with its captured Upvalues
// (spec.md §3).
type Closure struct {
	Func     *Function
	Upvalues []*Upvalue
}

func (c *Closure) String() string { return c.Func.String() }

func NewClosure(c *Closure) Value {
	return Obj(&Object{Kind: ObjClosure, Closure: c})
}
